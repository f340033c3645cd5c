// Package env reads KEY=VALUE pairs from a .env file. Values may be wrapped in
// single or double quotes; an unquoted # starts a comment. Multi-line values
// are not supported.
package env

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

var (
	ErrMissingKey   = errors.New("missing key")
	ErrMissingValue = errors.New("found key but missing value")
	ErrInvalidKey   = errors.New("key contains invalid characters")
	ErrUnterminated = errors.New("unterminated quoted value")
	ErrTrailingText = errors.New("unexpected text after value")
)

// SyntaxError reports the line a parse error occurred on.
type SyntaxError struct {
	Line int
	Err  error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("env: line %d: %s", e.Line, e.Err)
}

func (e *SyntaxError) Unwrap() error {
	return e.Err
}

// ProcessEnv parses the .env file at filename.
func ProcessEnv(filename string) (map[string]string, error) {
	f, err := os.Open(filename)
	if err != nil {
		return map[string]string{}, err
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads .env formatted pairs from r. Later assignments to the same key
// win.
func Parse(r io.Reader) (map[string]string, error) {
	envMap := make(map[string]string)
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		key, value, ok, err := parseLine(scanner.Text())
		if err != nil {
			return envMap, &SyntaxError{Line: lineNo, Err: err}
		}
		if ok {
			envMap[key] = value
		}
	}
	if err := scanner.Err(); err != nil {
		return envMap, err
	}
	return envMap, nil
}

func parseLine(line string) (key, value string, ok bool, err error) {
	line = strings.TrimSpace(strings.TrimSuffix(line, "\r"))
	if line == "" || strings.HasPrefix(line, "#") {
		return "", "", false, nil
	}
	line = strings.TrimPrefix(line, "export ")

	rawKey, rest, found := strings.Cut(line, "=")
	key = strings.TrimSpace(rawKey)
	if !found {
		if key == "" {
			return "", "", false, ErrMissingKey
		}
		return "", "", false, ErrMissingValue
	}
	if key == "" {
		return "", "", false, ErrMissingKey
	}
	if !validKey(key) {
		return "", "", false, ErrInvalidKey
	}

	value, err = parseValue(strings.TrimSpace(rest))
	if err != nil {
		return "", "", false, err
	}
	return key, value, true, nil
}

func parseValue(raw string) (string, error) {
	if raw == "" {
		return "", nil
	}

	if quote := raw[0]; quote == '"' || quote == '\'' {
		end := strings.IndexByte(raw[1:], quote)
		if end < 0 {
			return "", ErrUnterminated
		}
		value := raw[1 : end+1]
		trailing := strings.TrimSpace(raw[end+2:])
		if trailing != "" && !strings.HasPrefix(trailing, "#") {
			return "", ErrTrailingText
		}
		if quote == '"' {
			value = strings.NewReplacer(`\n`, "\n", `\t`, "\t").Replace(value)
		}
		return value, nil
	}

	if i := strings.Index(raw, " #"); i >= 0 {
		raw = raw[:i]
	}
	raw = strings.TrimSpace(raw)
	if strings.ContainsAny(raw, " \t") {
		return "", ErrTrailingText
	}
	return raw, nil
}

func validKey(key string) bool {
	for _, r := range key {
		switch {
		case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '.', r == '-':
		default:
			return false
		}
	}
	return true
}
