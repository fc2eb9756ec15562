package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Verification failures are split in two so callers can tell an expired
// token (client should try a refresh) from a malformed or forged one
// (client must log in again).
var (
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenMalformed = errors.New("token invalid or malformed")
)

const (
	typeAccess  = "access"
	typeRefresh = "refresh"
)

type Claims struct {
	Email     string `json:"email"`
	Role      string `json:"role,omitempty"`
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

// UserID parses the numeric subject claim.
func (c *Claims) UserID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)

	if err != nil || id <= 0 {
		return 0, ErrTokenMalformed
	}

	return id, nil
}

// Manager signs and verifies the two token kinds. Access and refresh have
// their own secret and TTL; a token signed with one secret never verifies
// with the other.
type Manager struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewManager(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *Manager {
	return &Manager{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

// IssueAccess signs a short-lived access token carrying identity + role.
func (m *Manager) IssueAccess(userID int64, email, role string) (raw string, expiresAt time.Time, err error) {
	now := time.Now().UTC()
	expiresAt = now.Add(m.accessTTL)

	claims := Claims{
		Email:     email,
		Role:      role,
		TokenType: typeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	raw, err = token.SignedString(m.accessSecret)

	return raw, expiresAt, err
}

// IssueRefresh signs a long-lived refresh token. It carries no role; role
// is re-read from the user row when the token is redeemed.
func (m *Manager) IssueRefresh(userID int64, email string) (raw string, expiresAt time.Time, err error) {
	now := time.Now().UTC()
	expiresAt = now.Add(m.refreshTTL)

	claims := Claims{
		Email:     email,
		TokenType: typeRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	raw, err = token.SignedString(m.refreshSecret)

	return raw, expiresAt, err
}

// VerifyAccess validates signature + expiry against the access secret.
func (m *Manager) VerifyAccess(raw string) (*Claims, error) {
	return m.parseAndValidate(raw, m.accessSecret, typeAccess)
}

// VerifyRefresh validates signature + expiry against the refresh secret.
func (m *Manager) VerifyRefresh(raw string) (*Claims, error) {
	return m.parseAndValidate(raw, m.refreshSecret, typeRefresh)
}

func (m *Manager) parseAndValidate(raw string, secret []byte, wantType string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		// Enforce HS256

		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenMalformed
		}
		return secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenMalformed
	}

	claims, ok := token.Claims.(*Claims)

	if !ok || !token.Valid {
		return nil, ErrTokenMalformed
	}

	if claims.TokenType != wantType {
		return nil, ErrTokenMalformed
	}

	return claims, nil
}

// DecodeUnverified extracts claims without checking signature or expiry.
// Logout uses it so an already-expired access token can still name the
// user whose server-side session should be cleared. Never trust the result
// for authorization.
func (m *Manager) DecodeUnverified(raw string) (*Claims, error) {
	parser := jwt.NewParser()

	token, _, err := parser.ParseUnverified(raw, &Claims{})

	if err != nil {
		return nil, ErrTokenMalformed
	}

	claims, ok := token.Claims.(*Claims)

	if !ok {
		return nil, ErrTokenMalformed
	}

	return claims, nil
}
