package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"careportal/internal/domain"

	"golang.org/x/crypto/bcrypt"
)

type mockUserRepo struct {
	getByUsernameFn func(ctx context.Context, username string) (*domain.User, error)
	getByIDFn       func(ctx context.Context, id string) (*domain.User, error)
	createFn        func(ctx context.Context, username, passwordHash string) (*domain.User, error)
	ensureFn        func(ctx context.Context, id, username string) (*domain.User, error)
	countFn         func(ctx context.Context) (int, error)
}

func (m *mockUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	if m.getByUsernameFn != nil {
		return m.getByUsernameFn(ctx, username)
	}
	return nil, errors.New("not found")
}

func (m *mockUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, errors.New("not found")
}

func (m *mockUserRepo) Create(ctx context.Context, username, passwordHash string) (*domain.User, error) {
	if m.createFn != nil {
		return m.createFn(ctx, username, passwordHash)
	}
	return &domain.User{ID: "u1", Username: username, PasswordHash: passwordHash}, nil
}

func (m *mockUserRepo) Ensure(ctx context.Context, id, username string) (*domain.User, error) {
	if m.ensureFn != nil {
		return m.ensureFn(ctx, id, username)
	}
	return &domain.User{ID: id, Username: username}, nil
}

func (m *mockUserRepo) Count(ctx context.Context) (int, error) {
	if m.countFn != nil {
		return m.countFn(ctx)
	}
	return 0, nil
}

type mockSessionRepo struct {
	createFn        func(ctx context.Context, s domain.NewSession) error
	getByTokenFn    func(ctx context.Context, token string) (*domain.Session, error)
	deleteFn        func(ctx context.Context, token string) error
	deleteExpiredFn func(ctx context.Context) (int64, error)
}

func (m *mockSessionRepo) Create(ctx context.Context, s domain.NewSession) error {
	if m.createFn != nil {
		return m.createFn(ctx, s)
	}
	return nil
}

func (m *mockSessionRepo) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	if m.getByTokenFn != nil {
		return m.getByTokenFn(ctx, token)
	}
	return nil, errors.New("not found")
}

func (m *mockSessionRepo) Delete(ctx context.Context, token string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, token)
	}
	return nil
}

func (m *mockSessionRepo) DeleteExpired(ctx context.Context) (int64, error) {
	if m.deleteExpiredFn != nil {
		return m.deleteExpiredFn(ctx)
	}
	return 0, nil
}

type upstreamFunc func(ctx context.Context, username, password string) (string, error)

func (f upstreamFunc) Authenticate(ctx context.Context, username, password string) (string, error) {
	return f(ctx, username, password)
}

func TestAuthService_Login_Success(t *testing.T) {
	ctx := context.Background()
	password := "testpass123"
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	now := time.Date(2024, time.July, 1, 12, 0, 0, 0, time.UTC)

	users := &mockUserRepo{
		getByUsernameFn: func(ctx context.Context, username string) (*domain.User, error) {
			return &domain.User{
				ID:           "u1",
				Username:     "testuser",
				PasswordHash: string(hash),
			}, nil
		},
	}

	sessions := &mockSessionRepo{
		createFn: func(ctx context.Context, s domain.NewSession) error {
			if s.UserID != "u1" {
				t.Errorf("expected userID u1, got %s", s.UserID)
			}
			if s.Token == "" {
				t.Error("token should not be empty")
			}
			if s.UserAgent != "agent" || s.IP != "10.0.0.1" {
				t.Errorf("unexpected client binding %q %q", s.UserAgent, s.IP)
			}
			if !s.ExpiresAt.Equal(now.Add(2 * time.Hour)) {
				t.Errorf("unexpected expiry %v", s.ExpiresAt)
			}
			if s.BackendToken != "" {
				t.Errorf("local login must not set a backend token, got %q", s.BackendToken)
			}
			return nil
		},
	}

	svc := NewAuthService(users, sessions, 2*time.Hour).WithClock(func() time.Time { return now })
	token, err := svc.Login(ctx, "testuser", password, "agent", "10.0.0.1")

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if token == "" {
		t.Error("expected token, got empty string")
	}
}

func TestAuthService_Login_InvalidPassword(t *testing.T) {
	ctx := context.Background()
	hash, _ := bcrypt.GenerateFromPassword([]byte("correctpass"), bcrypt.MinCost)

	users := &mockUserRepo{
		getByUsernameFn: func(ctx context.Context, username string) (*domain.User, error) {
			return &domain.User{
				ID:           "u1",
				Username:     "testuser",
				PasswordHash: string(hash),
			}, nil
		},
	}

	svc := NewAuthService(users, &mockSessionRepo{}, 0)

	_, err := svc.Login(ctx, "testuser", "wrongpass", "agent", "")
	if err != ErrInvalidCredentials {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Login_PasswordlessUserRejected(t *testing.T) {
	users := &mockUserRepo{
		getByUsernameFn: func(ctx context.Context, username string) (*domain.User, error) {
			return &domain.User{ID: "u1", Username: username}, nil
		},
	}
	svc := NewAuthService(users, &mockSessionRepo{}, 0)

	if _, err := svc.Login(context.Background(), "ssouser", "", "agent", ""); err != ErrInvalidCredentials {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Login_Upstream(t *testing.T) {
	var created domain.NewSession
	users := &mockUserRepo{
		getByUsernameFn: func(ctx context.Context, username string) (*domain.User, error) {
			return nil, errors.New("not found")
		},
		createFn: func(ctx context.Context, username, passwordHash string) (*domain.User, error) {
			if passwordHash != "" {
				t.Error("provisioned users must not get a local password")
			}
			return &domain.User{ID: "u9", Username: username}, nil
		},
	}
	sessions := &mockSessionRepo{
		createFn: func(ctx context.Context, s domain.NewSession) error {
			created = s
			return nil
		},
	}
	upstream := upstreamFunc(func(ctx context.Context, username, password string) (string, error) {
		if username != "pat@example.com" || password != "pw" {
			return "", domain.ErrAuthExpired
		}
		return "backend-jwt", nil
	})

	svc := NewAuthService(users, sessions, 0).WithUpstream(upstream)

	if _, err := svc.Login(context.Background(), "pat@example.com", "pw", "agent", ""); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if created.UserID != "u9" || created.BackendToken != "backend-jwt" {
		t.Errorf("unexpected session %+v", created)
	}

	if _, err := svc.Login(context.Background(), "pat@example.com", "nope", "agent", ""); err != ErrInvalidCredentials {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Login_UpstreamUnavailable(t *testing.T) {
	boom := errors.New("connection refused")
	svc := NewAuthService(&mockUserRepo{}, &mockSessionRepo{}, 0).WithUpstream(
		upstreamFunc(func(context.Context, string, string) (string, error) { return "", boom }),
	)

	_, err := svc.Login(context.Background(), "a", "b", "agent", "")
	if !errors.Is(err, boom) {
		t.Errorf("expected wrapped upstream error, got %v", err)
	}
}

func TestAuthService_ValidateSession_Valid(t *testing.T) {
	ctx := context.Background()
	token := "validtoken"

	sessions := &mockSessionRepo{
		getByTokenFn: func(ctx context.Context, tok string) (*domain.Session, error) {
			return &domain.Session{
				Token:        token,
				UserID:       "u1",
				BackendToken: "jwt",
				UserAgent:    "agent",
				ExpiresAt:    time.Now().Add(1 * time.Hour),
			}, nil
		},
	}

	users := &mockUserRepo{
		getByIDFn: func(ctx context.Context, id string) (*domain.User, error) {
			return &domain.User{
				ID:       "u1",
				Username: "testuser",
			}, nil
		},
	}

	svc := NewAuthService(users, sessions, 0)
	user, sess, err := svc.ValidateSession(ctx, token, "agent")

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if user.Username != "testuser" {
		t.Errorf("expected username 'testuser', got %s", user.Username)
	}
	if sess.BackendToken != "jwt" {
		t.Errorf("expected the stored backend token, got %q", sess.BackendToken)
	}
}

func TestAuthService_ValidateSession_Expired(t *testing.T) {
	ctx := context.Background()
	token := "expiredtoken"

	deleted := false
	sessions := &mockSessionRepo{
		getByTokenFn: func(ctx context.Context, tok string) (*domain.Session, error) {
			return &domain.Session{
				Token:     token,
				UserID:    "u1",
				UserAgent: "agent",
				ExpiresAt: time.Now().Add(-1 * time.Hour),
			}, nil
		},
		deleteFn: func(ctx context.Context, tok string) error {
			deleted = true
			return nil
		},
	}

	svc := NewAuthService(&mockUserRepo{}, sessions, 0)

	_, _, err := svc.ValidateSession(ctx, token, "agent")
	if err != ErrSessionExpired {
		t.Errorf("expected ErrSessionExpired, got %v", err)
	}
	if !deleted {
		t.Error("expected session to be deleted")
	}
}

func TestAuthService_ValidateSession_UserAgentMismatch(t *testing.T) {
	deleted := false
	sessions := &mockSessionRepo{
		getByTokenFn: func(ctx context.Context, tok string) (*domain.Session, error) {
			return &domain.Session{Token: tok, UserID: "u1", UserAgent: "firefox", ExpiresAt: time.Now().Add(time.Hour)}, nil
		},
		deleteFn: func(ctx context.Context, tok string) error {
			deleted = true
			return nil
		},
	}
	svc := NewAuthService(&mockUserRepo{}, sessions, 0)

	if _, _, err := svc.ValidateSession(context.Background(), "t", "curl"); err != ErrSessionExpired {
		t.Errorf("expected ErrSessionExpired, got %v", err)
	}
	if !deleted {
		t.Error("expected session to be deleted")
	}
}

func TestAuthService_ValidateSession_Unknown(t *testing.T) {
	svc := NewAuthService(&mockUserRepo{}, &mockSessionRepo{}, 0)
	if _, _, err := svc.ValidateSession(context.Background(), "nope", ""); err != ErrSessionNotFound {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestAuthService_CreateInitialUser_Success(t *testing.T) {
	ctx := context.Background()

	users := &mockUserRepo{
		countFn: func(ctx context.Context) (int, error) {
			return 0, nil
		},
		createFn: func(ctx context.Context, username, passwordHash string) (*domain.User, error) {
			if username != "admin" {
				t.Errorf("expected username 'admin', got %s", username)
			}
			if passwordHash == "" {
				t.Error("password hash should not be empty")
			}
			return &domain.User{ID: "u1", Username: username}, nil
		},
	}

	svc := NewAuthService(users, &mockSessionRepo{}, 0)

	err := svc.CreateInitialUser(ctx, "admin", "password123")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestAuthService_CreateInitialUser_UsersExist(t *testing.T) {
	ctx := context.Background()

	users := &mockUserRepo{
		countFn: func(ctx context.Context) (int, error) {
			return 1, nil
		},
	}

	svc := NewAuthService(users, &mockSessionRepo{}, 0)

	err := svc.CreateInitialUser(ctx, "admin", "password123")
	if !errors.Is(err, ErrUsersExist) {
		t.Errorf("expected ErrUsersExist, got %v", err)
	}
}

func TestAuthService_EnsureLocalUser(t *testing.T) {
	ctx := context.Background()

	var gotID, gotName string
	users := &mockUserRepo{
		ensureFn: func(ctx context.Context, id, username string) (*domain.User, error) {
			gotID, gotName = id, username
			return &domain.User{ID: id, Username: username}, nil
		},
	}
	svc := NewAuthService(users, &mockSessionRepo{}, 0)

	u, err := svc.EnsureLocalUser(ctx, "local")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if u.ID != "local" || gotID != "local" || gotName != "local" {
		t.Errorf("unexpected ensure call: user=%+v id=%q username=%q", u, gotID, gotName)
	}

	users.ensureFn = func(ctx context.Context, id, username string) (*domain.User, error) {
		return nil, errors.New("connection refused")
	}
	if _, err := svc.EnsureLocalUser(ctx, "local"); err == nil {
		t.Error("expected the repository error")
	}
}

func TestAuthService_ValidateForwardAuth_ExistingUser(t *testing.T) {
	ctx := context.Background()

	users := &mockUserRepo{
		getByUsernameFn: func(ctx context.Context, username string) (*domain.User, error) {
			return &domain.User{
				ID:       "u1",
				Username: "ssouser",
			}, nil
		},
		createFn: func(ctx context.Context, username, passwordHash string) (*domain.User, error) {
			t.Error("existing user must not be re-created")
			return nil, errors.New("duplicate")
		},
	}

	svc := NewAuthService(users, &mockSessionRepo{}, 0)

	user, err := svc.ValidateForwardAuth(ctx, "ssouser")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if user.Username != "ssouser" {
		t.Errorf("expected username 'ssouser', got %s", user.Username)
	}
}

func TestAuthService_ValidateForwardAuth_NewUser(t *testing.T) {
	ctx := context.Background()

	users := &mockUserRepo{
		getByUsernameFn: func(ctx context.Context, username string) (*domain.User, error) {
			return nil, errors.New("not found")
		},
		createFn: func(ctx context.Context, username, passwordHash string) (*domain.User, error) {
			return &domain.User{
				ID:       "u2",
				Username: username,
			}, nil
		},
	}

	svc := NewAuthService(users, &mockSessionRepo{}, 0)

	user, err := svc.ValidateForwardAuth(ctx, "newssouser")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if user.Username != "newssouser" {
		t.Errorf("expected username 'newssouser', got %s", user.Username)
	}

	if _, err := svc.ValidateForwardAuth(ctx, ""); err == nil {
		t.Error("expected error for empty header")
	}
}

func TestAuthService_LoginWithUser_CreateRace(t *testing.T) {
	calls := 0
	users := &mockUserRepo{
		getByUsernameFn: func(ctx context.Context, username string) (*domain.User, error) {
			calls++
			if calls == 1 {
				return nil, errors.New("not found")
			}
			return &domain.User{ID: "u3", Username: username}, nil
		},
		createFn: func(ctx context.Context, username, passwordHash string) (*domain.User, error) {
			return nil, errors.New("unique violation")
		},
	}
	var sessionUser string
	sessions := &mockSessionRepo{
		createFn: func(ctx context.Context, s domain.NewSession) error {
			sessionUser = s.UserID
			return nil
		},
	}

	svc := NewAuthService(users, sessions, 0)
	if _, err := svc.LoginWithUser(context.Background(), "racer", "agent", ""); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if sessionUser != "u3" {
		t.Errorf("expected session for u3, got %q", sessionUser)
	}
}

func TestAuthService_PurgeExpiredSessions(t *testing.T) {
	sessions := &mockSessionRepo{
		deleteExpiredFn: func(ctx context.Context) (int64, error) { return 4, nil },
	}
	svc := NewAuthService(&mockUserRepo{}, sessions, 0)

	n, err := svc.PurgeExpiredSessions(context.Background())
	if err != nil || n != 4 {
		t.Errorf("expected 4 purged, got %d %v", n, err)
	}
	if svc.TTL() != DefaultSessionTTL {
		t.Errorf("expected default TTL, got %v", svc.TTL())
	}
}
