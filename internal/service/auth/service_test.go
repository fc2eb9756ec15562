package auth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	tokens "github.com/beadworks/storeadmin/internal/auth"
	"github.com/beadworks/storeadmin/internal/domain/user"
	"github.com/beadworks/storeadmin/internal/repo/postgres"
	"github.com/beadworks/storeadmin/internal/security"
)

type memUserStore struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]user.User
}

func newMemUserStore() *memUserStore {
	return &memUserStore{nextID: 1, users: map[int64]user.User{}}
}

func (m *memUserStore) GetByEmail(ctx context.Context, email string) (user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return user.User{}, postgres.ErrUserNotFound
}

func (m *memUserStore) GetByID(ctx context.Context, id int64) (user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return user.User{}, postgres.ErrUserNotFound
	}
	return u, nil
}

func (m *memUserStore) Create(ctx context.Context, u user.User) (user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return user.User{}, postgres.ErrEmailTaken
		}
	}
	u.ID = m.nextID
	m.nextID++
	m.users[u.ID] = u
	return u, nil
}

func (m *memUserStore) UpdateRefreshTokenHash(ctx context.Context, id int64, hash *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return postgres.ErrUserNotFound
	}
	u.RefreshTokenHash = hash
	m.users[id] = u
	return nil
}

func (m *memUserStore) UpdateRefreshTokenHashIfMatch(ctx context.Context, id int64, oldHash, newHash string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok || u.RefreshTokenHash == nil || *u.RefreshTokenHash != oldHash {
		return false, nil
	}
	u.RefreshTokenHash = &newHash
	m.users[id] = u
	return true, nil
}

func (m *memUserStore) ClearRefreshTokenHash(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return postgres.ErrUserNotFound
	}
	u.RefreshTokenHash = nil
	m.users[id] = u
	return nil
}

func newTestService(store *memUserStore) *Service {
	manager := tokens.NewManager("access-secret-for-tests", "refresh-secret-for-tests", 15*time.Minute, 24*time.Hour)
	return NewService(store, manager)
}

func seedAdmin(t *testing.T, store *memUserStore) user.User {
	t.Helper()

	hash, err := security.HashSecret("correct horse battery")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	u, err := store.Create(context.Background(), user.User{
		Email:        "admin@example.com",
		PasswordHash: hash,
		FirstName:    "Ada",
		LastName:     "Admin",
		Role:         user.RoleAdmin,
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	return u
}

func TestSignupDefaultsRoleAndRejectsDuplicateEmail(t *testing.T) {
	store := newMemUserStore()
	svc := newTestService(store)

	created, err := svc.Signup(context.Background(), user.SignupRequest{
		Email:     "new@example.com",
		Password:  "long enough secret",
		FirstName: "New",
		LastName:  "User",
	})
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if created.Role != user.RoleUser {
		t.Fatalf("role = %q, want %q", created.Role, user.RoleUser)
	}
	if created.PasswordHash == "long enough secret" {
		t.Fatal("password stored in plaintext")
	}
	if !security.VerifySecret(created.PasswordHash, "long enough secret") {
		t.Fatal("stored hash does not verify against the password")
	}

	_, err = svc.Signup(context.Background(), user.SignupRequest{
		Email:     "new@example.com",
		Password:  "another secret here",
		FirstName: "Other",
		LastName:  "User",
	})
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("duplicate signup err = %v, want ErrEmailTaken", err)
	}
}

func TestLoginIssuesTokensAndStoresRefreshHash(t *testing.T) {
	store := newMemUserStore()
	svc := newTestService(store)
	admin := seedAdmin(t, store)

	u, pair, err := svc.Login(context.Background(), user.LoginRequest{
		Email:    admin.Email,
		Password: "correct horse battery",
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if u.ID != admin.ID {
		t.Fatalf("user id = %d, want %d", u.ID, admin.ID)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatal("expected both tokens")
	}
	if pair.AccessToken == pair.RefreshToken {
		t.Fatal("access and refresh tokens must differ")
	}

	stored, _ := store.GetByID(context.Background(), admin.ID)
	if stored.RefreshTokenHash == nil {
		t.Fatal("refresh hash not stored")
	}
	if *stored.RefreshTokenHash == pair.RefreshToken {
		t.Fatal("refresh token stored in plaintext")
	}
	if !security.VerifySecret(*stored.RefreshTokenHash, pair.RefreshToken) {
		t.Fatal("stored hash does not verify against issued refresh token")
	}
}

func TestLoginWrongPassword(t *testing.T) {
	store := newMemUserStore()
	svc := newTestService(store)
	admin := seedAdmin(t, store)

	_, _, err := svc.Login(context.Background(), user.LoginRequest{Email: admin.Email, Password: "wrong"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("err = %v, want ErrInvalidCredentials", err)
	}

	_, _, err = svc.Login(context.Background(), user.LoginRequest{Email: "ghost@example.com", Password: "whatever"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown email err = %v, want ErrInvalidCredentials", err)
	}
}

func TestLoginRefusesNonStaffRole(t *testing.T) {
	store := newMemUserStore()
	svc := newTestService(store)

	created, err := svc.Signup(context.Background(), user.SignupRequest{
		Email:     "shopper@example.com",
		Password:  "plain shopper secret",
		FirstName: "Shop",
		LastName:  "Per",
	})
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if created.Role != user.RoleUser {
		t.Fatalf("role = %q", created.Role)
	}

	_, _, err = svc.Login(context.Background(), user.LoginRequest{
		Email:    "shopper@example.com",
		Password: "plain shopper secret",
	})
	if !errors.Is(err, ErrLoginNotAllowed) {
		t.Fatalf("err = %v, want ErrLoginNotAllowed", err)
	}
}

func TestRefreshRotatesAndInvalidatesOldToken(t *testing.T) {
	store := newMemUserStore()
	svc := newTestService(store)
	admin := seedAdmin(t, store)

	_, pair, err := svc.Login(context.Background(), user.LoginRequest{Email: admin.Email, Password: "correct horse battery"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	u, next, err := svc.RefreshTokens(context.Background(), pair.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if u.ID != admin.ID {
		t.Fatalf("user id = %d, want %d", u.ID, admin.ID)
	}
	if next.RefreshToken == pair.RefreshToken {
		t.Fatal("refresh token was not rotated")
	}

	// old token is dead after rotation
	_, _, err = svc.RefreshTokens(context.Background(), pair.RefreshToken)
	if !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("replayed refresh err = %v, want ErrInvalidRefreshToken", err)
	}

	// new token still works
	if _, _, err = svc.RefreshTokens(context.Background(), next.RefreshToken); err != nil {
		t.Fatalf("rotated token refresh: %v", err)
	}
}

func TestConcurrentRefreshOnlyOneWins(t *testing.T) {
	store := newMemUserStore()
	svc := newTestService(store)
	admin := seedAdmin(t, store)

	_, pair, err := svc.Login(context.Background(), user.LoginRequest{Email: admin.Email, Password: "correct horse battery"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	results := make(chan error, 2)
	var wg sync.WaitGroup

	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := svc.RefreshTokens(context.Background(), pair.RefreshToken)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var wins, losses int
	for err := range results {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, ErrInvalidRefreshToken):
			losses++
		default:
			t.Fatalf("unexpected refresh error: %v", err)
		}
	}
	if wins != 1 || losses != 1 {
		t.Fatalf("wins = %d, losses = %d; want exactly one of each", wins, losses)
	}
}

func TestValidateRefreshTokenDoesNotRotate(t *testing.T) {
	store := newMemUserStore()
	svc := newTestService(store)
	admin := seedAdmin(t, store)

	_, pair, err := svc.Login(context.Background(), user.LoginRequest{Email: admin.Email, Password: "correct horse battery"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	for i := 0; i < 2; i++ {
		u, err := svc.ValidateRefreshToken(context.Background(), pair.RefreshToken)
		if err != nil {
			t.Fatalf("validate #%d: %v", i+1, err)
		}
		if u.ID != admin.ID {
			t.Fatalf("user id = %d, want %d", u.ID, admin.ID)
		}
	}
}

func TestLogoutKillsRefresh(t *testing.T) {
	store := newMemUserStore()
	svc := newTestService(store)
	admin := seedAdmin(t, store)

	_, pair, err := svc.Login(context.Background(), user.LoginRequest{Email: admin.Email, Password: "correct horse battery"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if err := svc.Logout(context.Background(), admin.ID); err != nil {
		t.Fatalf("logout: %v", err)
	}

	_, err = svc.ValidateRefreshToken(context.Background(), pair.RefreshToken)
	if !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("validate after logout err = %v, want ErrInvalidRefreshToken", err)
	}
	_, _, err = svc.RefreshTokens(context.Background(), pair.RefreshToken)
	if !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("refresh after logout err = %v, want ErrInvalidRefreshToken", err)
	}
}

func TestRefreshDistinguishesExpiredFromMalformed(t *testing.T) {
	store := newMemUserStore()
	svc := newTestService(store)
	seedAdmin(t, store)

	// log in through a manager whose refresh TTL is already elapsed so the
	// stored session holds an expired token
	expiredManager := tokens.NewManager("access-secret-for-tests", "refresh-secret-for-tests", 15*time.Minute, -time.Minute)
	expiredSvc := NewService(store, expiredManager)

	_, pair, err := expiredSvc.Login(context.Background(), user.LoginRequest{
		Email:    "admin@example.com",
		Password: "correct horse battery",
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	_, _, err = svc.RefreshTokens(context.Background(), pair.RefreshToken)
	if !errors.Is(err, ErrRefreshExpired) {
		t.Fatalf("expired token err = %v, want ErrRefreshExpired", err)
	}

	_, _, err = svc.RefreshTokens(context.Background(), "not.a.jwt")
	if !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("malformed token err = %v, want ErrInvalidRefreshToken", err)
	}
}

func TestRefreshWithGarbageToken(t *testing.T) {
	store := newMemUserStore()
	svc := newTestService(store)
	seedAdmin(t, store)

	_, _, err := svc.RefreshTokens(context.Background(), "not-a-jwt")
	if !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("err = %v, want ErrInvalidRefreshToken", err)
	}
}
