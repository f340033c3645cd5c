// Package config loads the API configuration.
//
// Sources are applied in order, each overriding the previous one:
//
//  1. built-in defaults
//  2. an optional YAML file
//  3. an optional .env file
//  4. the process environment
//
// The recognised environment variables are API_HOST, API_PORT, AUTH_TYPE,
// SESSION_NAME, SESSION_DURATION, SESSION_BACKEND, COOKIE_SECRET,
// DATABASE_DRIVER, DATABASE_DSN, REDIS_ADDR, REDIS_PASSWORD, LOG_LEVEL and
// LOG_FORMAT.
package config
