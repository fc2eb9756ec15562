// Package auth holds the credential and token lifecycle: signup, login,
// refresh rotation, and logout. Handlers map its sentinel errors to HTTP
// statuses.
package auth

import (
	"context"
	"errors"
	"time"

	tokens "github.com/beadworks/storeadmin/internal/auth"
	"github.com/beadworks/storeadmin/internal/domain/user"
	"github.com/beadworks/storeadmin/internal/repo/postgres"
	"github.com/beadworks/storeadmin/internal/security"
)

var (
	ErrEmailTaken          = errors.New("email already registered")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrLoginNotAllowed     = errors.New("role is not allowed to log in")
	ErrUserNotFound        = errors.New("user not found")
	ErrRefreshExpired      = errors.New("refresh token expired")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
)

// UserStore is the minimal user repository needed by the auth service.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (user.User, error)
	GetByID(ctx context.Context, id int64) (user.User, error)
	Create(ctx context.Context, u user.User) (user.User, error)
	UpdateRefreshTokenHash(ctx context.Context, id int64, hash *string) error
	UpdateRefreshTokenHashIfMatch(ctx context.Context, id int64, oldHash, newHash string) (bool, error)
	ClearRefreshTokenHash(ctx context.Context, id int64) error
}

type TokenPair struct {
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
}

type Service struct {
	users  UserStore
	tokens *tokens.Manager
}

func NewService(users UserStore, manager *tokens.Manager) *Service {
	return &Service{users: users, tokens: manager}
}

func (s *Service) Signup(ctx context.Context, req user.SignupRequest) (user.User, error) {
	role := req.Role
	if role == "" {
		role = user.RoleUser
	}

	hash, err := security.HashSecret(req.Password)
	if err != nil {
		return user.User{}, err
	}

	now := time.Now()
	created, err := s.users.Create(ctx, user.User{
		Email:        req.Email,
		PasswordHash: hash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	})

	if err != nil {
		if errors.Is(err, postgres.ErrEmailTaken) {
			return user.User{}, ErrEmailTaken
		}

		return user.User{}, err
	}
	return created, nil
}

// Login authenticates staff accounts only. A USER account with a correct
// password is still refused.
func (s *Service) Login(ctx context.Context, req user.LoginRequest) (user.User, TokenPair, error) {
	u, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, postgres.ErrUserNotFound) {
			return user.User{}, TokenPair{}, ErrInvalidCredentials
		}

		return user.User{}, TokenPair{}, err
	}

	if !security.VerifySecret(u.PasswordHash, req.Password) {
		return user.User{}, TokenPair{}, ErrInvalidCredentials
	}

	if u.Role != user.RoleAdmin && u.Role != user.RoleSubAdmin {
		return user.User{}, TokenPair{}, ErrLoginNotAllowed
	}

	pair, err := s.issueAndStore(ctx, u)
	if err != nil {
		return user.User{}, TokenPair{}, err
	}
	return u, pair, nil
}

func (s *Service) CurrentUser(ctx context.Context, id int64) (user.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, postgres.ErrUserNotFound) {
			return user.User{}, ErrUserNotFound
		}

		return user.User{}, err
	}
	return u, nil
}

// ValidateRefreshToken checks a refresh token against the stored session
// hash without rotating anything.
func (s *Service) ValidateRefreshToken(ctx context.Context, raw string) (user.User, error) {
	u, _, err := s.lookupSession(ctx, raw)
	return u, err
}

// RefreshTokens rotates the session: it verifies the presented token
// against the stored hash, then swaps in the hash of a freshly issued
// refresh token. The swap is compare-and-set on the old hash, so when two
// requests race on the same token exactly one rotation succeeds and the
// loser gets ErrInvalidRefreshToken.
func (s *Service) RefreshTokens(ctx context.Context, raw string) (user.User, TokenPair, error) {
	u, oldHash, err := s.lookupSession(ctx, raw)
	if err != nil {
		return user.User{}, TokenPair{}, err
	}

	pair, err := s.issuePair(u)
	if err != nil {
		return user.User{}, TokenPair{}, err
	}

	newHash, err := security.HashSecret(pair.RefreshToken)
	if err != nil {
		return user.User{}, TokenPair{}, err
	}

	swapped, err := s.users.UpdateRefreshTokenHashIfMatch(ctx, u.ID, oldHash, newHash)
	if err != nil {
		return user.User{}, TokenPair{}, err
	}
	if !swapped {
		return user.User{}, TokenPair{}, ErrInvalidRefreshToken
	}

	return u, pair, nil
}

// Logout drops the stored session hash. Outstanding access tokens keep
// working until they expire; refresh is dead immediately.
func (s *Service) Logout(ctx context.Context, userID int64) error {
	err := s.users.ClearRefreshTokenHash(ctx, userID)
	if errors.Is(err, postgres.ErrUserNotFound) {
		return ErrUserNotFound
	}
	return err
}

func (s *Service) lookupSession(ctx context.Context, raw string) (user.User, string, error) {
	claims, err := s.tokens.VerifyRefresh(raw)
	if err != nil {
		// an expired token is a normal re-login signal, a malformed one
		// is not; callers surface them differently
		if errors.Is(err, tokens.ErrTokenExpired) {
			return user.User{}, "", ErrRefreshExpired
		}
		return user.User{}, "", ErrInvalidRefreshToken
	}

	id, err := claims.UserID()
	if err != nil {
		return user.User{}, "", ErrInvalidRefreshToken
	}

	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, postgres.ErrUserNotFound) {
			return user.User{}, "", ErrInvalidRefreshToken
		}

		return user.User{}, "", err
	}

	if u.RefreshTokenHash == nil || !security.VerifySecret(*u.RefreshTokenHash, raw) {
		return user.User{}, "", ErrInvalidRefreshToken
	}

	return u, *u.RefreshTokenHash, nil
}

func (s *Service) issuePair(u user.User) (TokenPair, error) {
	access, accessExp, err := s.tokens.IssueAccess(u.ID, u.Email, u.Role)
	if err != nil {
		return TokenPair{}, err
	}

	refresh, refreshExp, err := s.tokens.IssueRefresh(u.ID, u.Email)
	if err != nil {
		return TokenPair{}, err
	}

	return TokenPair{
		AccessToken:      access,
		AccessExpiresAt:  accessExp,
		RefreshToken:     refresh,
		RefreshExpiresAt: refreshExp,
	}, nil
}

func (s *Service) issueAndStore(ctx context.Context, u user.User) (TokenPair, error) {
	pair, err := s.issuePair(u)
	if err != nil {
		return TokenPair{}, err
	}

	hash, err := security.HashSecret(pair.RefreshToken)
	if err != nil {
		return TokenPair{}, err
	}

	if err := s.users.UpdateRefreshTokenHash(ctx, u.ID, &hash); err != nil {
		return TokenPair{}, err
	}
	return pair, nil
}
