package sessions

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func requestWith(c *http.Cookie) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if c != nil {
		r.AddCookie(c)
	}
	return r
}

func TestCookieCodecUnsigned(t *testing.T) {
	codec := &CookieCodec{Name: "_my_session_id"}
	cookie := codec.Issue("abc", time.Time{})

	if cookie.Name != "_my_session_id" || cookie.Value != "abc" || !cookie.HttpOnly {
		t.Fatalf("unexpected cookie %+v", cookie)
	}
	sid, ok := codec.Read(requestWith(cookie))
	if !ok || sid != "abc" {
		t.Fatalf("Read = (%q, %v)", sid, ok)
	}
}

func TestCookieCodecSigned(t *testing.T) {
	codec := &CookieCodec{Secret: "s3cret"}
	cookie := codec.Issue("abc", time.Now().Add(time.Hour))

	if cookie.Name != DefaultCookieName {
		t.Fatalf("cookie name = %q", cookie.Name)
	}
	if cookie.Value == "abc" {
		t.Fatal("signed cookie carries the bare id")
	}
	if sid, ok := codec.Read(requestWith(cookie)); !ok || sid != "abc" {
		t.Fatalf("Read = (%q, %v)", sid, ok)
	}

	forged := &http.Cookie{Name: DefaultCookieName, Value: "abc.AAAA"}
	if _, ok := codec.Read(requestWith(forged)); ok {
		t.Fatal("forged signature accepted")
	}
	if codec.Raw(requestWith(forged)) != "abc.AAAA" {
		t.Fatal("Raw should return the presented value")
	}

	other := &CookieCodec{Secret: "different"}
	if _, ok := other.Read(requestWith(cookie)); ok {
		t.Fatal("cookie signed with another secret accepted")
	}
}

func TestCookieCodecMissing(t *testing.T) {
	codec := &CookieCodec{}
	if _, ok := codec.Read(requestWith(nil)); ok {
		t.Fatal("Read reported a cookie on a bare request")
	}
	if codec.Raw(nil) != "" {
		t.Fatal("Raw(nil) should be empty")
	}
}

func TestCookieCodecClear(t *testing.T) {
	cookie := (&CookieCodec{Name: "sid"}).Clear()
	if cookie.Name != "sid" || cookie.MaxAge != -1 || cookie.Value != "" {
		t.Fatalf("unexpected clear cookie %+v", cookie)
	}
}

func TestVerifySessionIdMalformed(t *testing.T) {
	tests := []struct {
		in   string
		want error
	}{
		{"no-dot", ErrSignedSessionIdIncorrectLength},
		{"a.b.c", ErrSignedSessionIdIncorrectLength},
		{".sig", ErrSignedSessionIdIncorrectLength},
		{"id.!!!", ErrInvalidSessionSignature},
	}
	for _, tt := range tests {
		if _, err := VerifySessionId(tt.in, "k"); !errors.Is(err, tt.want) {
			t.Errorf("VerifySessionId(%q) = %v, want %v", tt.in, err, tt.want)
		}
	}
}

func TestCookieCodecPresent(t *testing.T) {
	codec := &CookieCodec{}
	if codec.Present(requestWith(nil)) {
		t.Fatal("no cookie reported present")
	}
	empty := requestWith(&http.Cookie{Name: DefaultCookieName, Value: ""})
	if !codec.Present(empty) {
		t.Fatal("empty cookie reported absent")
	}
	if codec.Raw(empty) != "" {
		t.Fatalf("Raw = %q", codec.Raw(empty))
	}
}
