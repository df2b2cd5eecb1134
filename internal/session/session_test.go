package session

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func signedToken(t *testing.T, sub string, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": sub,
		"exp": exp.Unix(),
	})
	s, err := token.SignedString([]byte("irrelevant"))
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}
	return s
}

func TestUserIDFromValidToken(t *testing.T) {
	want := uuid.New()
	tok := signedToken(t, want.String(), time.Now().Add(time.Hour))

	p := NewJWTProvider(func() string { return tok })
	got, err := p.UserID()
	if err != nil {
		t.Fatalf("UserID: %v", err)
	}
	if got != want {
		t.Errorf("UserID = %s, want %s", got, want)
	}
}

func TestUserIDFailures(t *testing.T) {
	valid := uuid.New()
	tests := []struct {
		name  string
		token string
	}{
		{"logged out", ""},
		{"garbage", "not-a-jwt"},
		{"expired", signedToken(t, valid.String(), time.Now().Add(-time.Hour))},
		{"non-uuid subject", signedToken(t, "bob", time.Now().Add(time.Hour))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewJWTProvider(func() string { return tt.token })
			if _, err := p.UserID(); !errors.Is(err, ErrNotAuthenticated) {
				t.Errorf("err = %v, want ErrNotAuthenticated", err)
			}
		})
	}
}

func TestExpiryUsesClock(t *testing.T) {
	id := uuid.New()
	tok := signedToken(t, id.String(), time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC))

	restore := nowFunc
	defer func() { nowFunc = restore }()

	nowFunc = func() time.Time { return time.Date(2026, 5, 31, 0, 0, 0, 0, time.UTC) }
	p := NewJWTProvider(func() string { return tok })
	if _, err := p.UserID(); err != nil {
		t.Errorf("token should still be valid: %v", err)
	}

	nowFunc = func() time.Time { return time.Date(2026, 6, 2, 0, 0, 0, 0, time.UTC) }
	if _, err := p.UserID(); !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("expired token accepted: %v", err)
	}
}
