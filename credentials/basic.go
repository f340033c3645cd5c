package credentials

import (
	"encoding/base64"
	"errors"
	"strings"
	"unicode/utf8"
)

// BasicScheme is the exact, case-sensitive prefix of a Basic Authorization header.
const BasicScheme = "Basic "

// ErrDecode is returned for any header that cannot be turned into an email and
// password. Callers treat it the same as a missing credential.
var ErrDecode = errors.New("malformed basic credential")

// DecodeBasic extracts the email and password from an Authorization header value
// of the form "Basic <base64(email:password)>". The password is everything after
// the first colon, so it may itself contain colons.
func DecodeBasic(header string) (email string, password string, err error) {
	if !strings.HasPrefix(header, BasicScheme) {
		return "", "", ErrDecode
	}
	encoded := header[len(BasicScheme):]
	if encoded == "" {
		return "", "", ErrDecode
	}

	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", "", ErrDecode
	}
	if !utf8.Valid(raw) {
		return "", "", ErrDecode
	}

	email, password, found := strings.Cut(string(raw), ":")
	if !found {
		return "", "", ErrDecode
	}
	return email, password, nil
}

// EncodeBasic builds an Authorization header value for the given pair.
func EncodeBasic(email, password string) string {
	return BasicScheme + base64.StdEncoding.EncodeToString([]byte(email+":"+password))
}
