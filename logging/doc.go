// Package logging builds the structured slog logger used across the service.
// Attributes named after personal data (name, email, phone, ssn, password) are
// replaced with *** before they are written, as are key=value pairs for those
// keys inside log messages.
package logging
