// Package credentials decodes HTTP Basic credentials and hashes passwords.
//
// Both halves are leaves: nothing here knows about users, sessions or requests.
// A decode failure is reported as ErrDecode and is meant to be treated exactly like
// an absent credential.
package credentials
