package jwt

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

const (
	claimSessionID = "sid"
	claimType      = "type"
	tokenType      = "portal_session"
)

var ErrInvalidSessionToken = errors.New("invalid session token")

// Service signs the portal session cookie so a browser cannot pick another
// session's id. It carries no user identity.
type Service interface {
	IssueSessionToken(sessionID string) (token string, expiresAt time.Time, err error)
	ParseSessionToken(token string) (sessionID string, err error)
	SessionIDFromClaims(claims map[string]interface{}) (string, error)
	SessionCookie(token string, expiresAt time.Time) *http.Cookie
	TokenFromCookie(r *http.Request) string
	JWTAuth() *jwtauth.JWTAuth
}

type JWTService struct {
	tokenAuth  *jwtauth.JWTAuth
	ttl        time.Duration
	cookieName string
	secure     bool
}

func NewJWTService(secretKey string, ttl time.Duration, cookieName string, secure bool) Service {
	return &JWTService{
		tokenAuth:  jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
		ttl:        ttl,
		cookieName: cookieName,
		secure:     secure,
	}
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func (j *JWTService) IssueSessionToken(sessionID string) (string, time.Time, error) {
	expiresAt := time.Now().Add(j.ttl)
	_, tokenString, err := j.tokenAuth.Encode(map[string]interface{}{
		claimSessionID: sessionID,
		claimType:      tokenType,
		"iat":          time.Now().Unix(),
		"exp":          expiresAt.Unix(),
	})
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// ParseSessionToken verifies signature and expiry and returns the session id.
func (j *JWTService) ParseSessionToken(tokenString string) (string, error) {
	token, err := jwtauth.VerifyToken(j.tokenAuth, tokenString)
	if err != nil {
		return "", err
	}
	claims, err := token.AsMap(context.Background())
	if err != nil {
		return "", err
	}
	return j.SessionIDFromClaims(claims)
}

func (j *JWTService) SessionIDFromClaims(claims map[string]interface{}) (string, error) {
	if t, ok := claims[claimType].(string); !ok || t != tokenType {
		return "", ErrInvalidSessionToken
	}
	sessionID, ok := claims[claimSessionID].(string)
	if !ok || sessionID == "" {
		return "", ErrInvalidSessionToken
	}
	return sessionID, nil
}

func (j *JWTService) SessionCookie(token string, expiresAt time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     j.cookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   j.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// TokenFromCookie is a jwtauth token finder for the session cookie.
func (j *JWTService) TokenFromCookie(r *http.Request) string {
	cookie, err := r.Cookie(j.cookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}
