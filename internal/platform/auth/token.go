package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/rmdhealth/rmd/internal/platform/apperr"
)

const resetPurpose = "reset"

// Claims is the session token payload: a user identity bound to exactly one
// organization. Purpose distinguishes password-reset tokens from session
// tokens so one can never stand in for the other.
type Claims struct {
	jwt.RegisteredClaims
	OrgID   string `json:"org_id,omitempty"`
	Purpose string `json:"purpose,omitempty"`
}

// TokenIssuer signs and verifies the server's own HS256 tokens.
type TokenIssuer struct {
	secret   []byte
	expiry   time.Duration
	resetTTL time.Duration
}

func NewTokenIssuer(secret string, expiry, resetTTL time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), expiry: expiry, resetTTL: resetTTL}
}

// Issue creates a session token embedding the user and organization IDs.
func (t *TokenIssuer) Issue(userID, orgID uuid.UUID) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.expiry)),
		},
		OrgID: orgID.String(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

// IssueReset creates a short-lived password-reset token for the user.
func (t *TokenIssuer) IssueReset(userID uuid.UUID) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.resetTTL)),
		},
		Purpose: resetPurpose,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

func (t *TokenIssuer) parse(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(tok *jwt.Token) (interface{}, error) {
		return t.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !token.Valid {
		return nil, apperr.Unauthorized("invalid or expired token")
	}
	return claims, nil
}

// Verify validates a session token and returns the embedded user and
// organization IDs. Reset tokens are rejected.
func (t *TokenIssuer) Verify(tokenStr string) (userID, orgID uuid.UUID, err error) {
	claims, err := t.parse(tokenStr)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	if claims.Purpose != "" {
		return uuid.Nil, uuid.Nil, apperr.Unauthorized("invalid or expired token")
	}
	userID, uerr := uuid.Parse(claims.Subject)
	orgID, oerr := uuid.Parse(claims.OrgID)
	if uerr != nil || oerr != nil {
		return uuid.Nil, uuid.Nil, apperr.Unauthorized("invalid or expired token")
	}
	return userID, orgID, nil
}

// VerifyReset validates a password-reset token and returns the user ID.
// Session tokens are rejected.
func (t *TokenIssuer) VerifyReset(tokenStr string) (uuid.UUID, error) {
	claims, err := t.parse(tokenStr)
	if err != nil {
		return uuid.Nil, err
	}
	if claims.Purpose != resetPurpose {
		return uuid.Nil, apperr.Unauthorized("invalid or expired reset token")
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, apperr.Unauthorized("invalid or expired reset token")
	}
	return userID, nil
}
