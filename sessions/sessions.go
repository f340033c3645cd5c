package sessions

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// maxIdAttempts bounds how often a colliding session id is re-rolled.
const maxIdAttempts = 8

var idPattern = regexp.MustCompile(`^[A-Za-z0-9._:@-]{1,128}$`)

// ValidUserId reports whether id is acceptable as the owner of a session.
func ValidUserId(id string) bool {
	return idPattern.MatchString(id)
}

// IdGenerator mints session ids. The default draws a random UUIDv4 from
// crypto/rand.
type IdGenerator func() (string, error)

func newSessionId() (string, error) {
	uid, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("session: failed to generate id: %w", err)
	}
	return uid.String(), nil
}

func signSessionId(sessionId string, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(sessionId))
	signature := mac.Sum(nil)
	return fmt.Sprintf("%s.%s", sessionId, base64.URLEncoding.EncodeToString(signature))
}

// VerifySessionId checks the signature of a signed session id and returns the
// bare id.
func VerifySessionId(signedSessionId string, secret string) (string, error) {
	sessionId, encodedSignature, err := splitSignedSessionId(signedSessionId)
	if err != nil {
		return "", err
	}
	decodedSignature, err := base64.URLEncoding.DecodeString(encodedSignature)
	if err != nil {
		return "", ErrInvalidSessionSignature
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(sessionId))
	if hmac.Equal(decodedSignature, mac.Sum(nil)) {
		return sessionId, nil
	}
	return "", ErrInvalidSessionSignature
}

func splitSignedSessionId(signedSessionId string) (string, string, error) {
	parts := strings.Split(signedSessionId, ".")
	if len(parts) != 2 || parts[0] == "" {
		return "", "", ErrSignedSessionIdIncorrectLength
	}
	return parts[0], parts[1], nil
}
