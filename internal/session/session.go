package session

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrNotAuthenticated = errors.New("no authenticated user")

// nowFunc is stubbed in tests.
var nowFunc = time.Now

// Provider resolves the local user. Login and token refresh happen outside
// the chat core; the core only ever asks who the user currently is.
type Provider interface {
	UserID() (uuid.UUID, error)
}

// TokenSource returns the current access token, or "" when logged out.
type TokenSource func() string

// JWTProvider extracts the user id from the stored access token's subject
// claim. Signature verification is the backend's job; an expired or
// malformed token surfaces as ErrNotAuthenticated.
type JWTProvider struct {
	tokens TokenSource
	parser *jwt.Parser
}

func NewJWTProvider(tokens TokenSource) *JWTProvider {
	return &JWTProvider{
		tokens: tokens,
		parser: jwt.NewParser(jwt.WithExpirationRequired()),
	}
}

func (p *JWTProvider) UserID() (uuid.UUID, error) {
	tokenStr := p.tokens()
	if tokenStr == "" {
		return uuid.Nil, ErrNotAuthenticated
	}

	claims := jwt.MapClaims{}
	if _, _, err := p.parser.ParseUnverified(tokenStr, claims); err != nil {
		return uuid.Nil, ErrNotAuthenticated
	}
	if exp, err := claims.GetExpirationTime(); err != nil || exp == nil || exp.Before(nowFunc()) {
		return uuid.Nil, ErrNotAuthenticated
	}

	sub, err := claims.GetSubject()
	if err != nil {
		return uuid.Nil, ErrNotAuthenticated
	}
	userID, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, ErrNotAuthenticated
	}
	return userID, nil
}
