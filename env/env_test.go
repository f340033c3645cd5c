package env

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-test/deep"
)

func TestParse(t *testing.T) {
	input := `# settings for the API
API_HOST=0.0.0.0
API_PORT=5000   # trailing comment
export AUTH_TYPE=session_auth

SESSION_NAME="_my_session_id"
COOKIE_SECRET='s3cr#t'
EMPTY=
MESSAGE="line\nbreak"
API_PORT=5001
`
	got, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]string{
		"API_HOST":      "0.0.0.0",
		"API_PORT":      "5001",
		"AUTH_TYPE":     "session_auth",
		"SESSION_NAME":  "_my_session_id",
		"COOKIE_SECRET": "s3cr#t",
		"EMPTY":         "",
		"MESSAGE":       "line\nbreak",
	}
	if diff := deep.Equal(got, want); diff != nil {
		t.Fatal(diff)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
		line  int
	}{
		{"missing key", "=value", ErrMissingKey, 1},
		{"no assignment", "A=1\nJUSTAKEY", ErrMissingValue, 2},
		{"bad key", "MY KEY=1", ErrInvalidKey, 1},
		{"unterminated", `A="open`, ErrUnterminated, 1},
		{"text after quotes", `A="x" y`, ErrTrailingText, 1},
		{"unquoted space", "A=two words", ErrTrailingText, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.input))
			if !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want %v", err, tt.want)
			}
			var syn *SyntaxError
			if !errors.As(err, &syn) || syn.Line != tt.line {
				t.Fatalf("expected a SyntaxError on line %d, got %v", tt.line, err)
			}
		})
	}
}

func TestProcessEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("SESSION_DURATION=60\r\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	got, err := ProcessEnv(path)
	if err != nil {
		t.Fatal(err)
	}
	if got["SESSION_DURATION"] != "60" {
		t.Fatalf("got %v", got)
	}

	if _, err := ProcessEnv(filepath.Join(t.TempDir(), "missing")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("missing file: got %v", err)
	}
}
