package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/roomtalk/roomtalk-server/internal/store"
	"github.com/roomtalk/roomtalk-server/internal/store/sqlite"
)

func newTestService(t *testing.T) *Service {
	t.Helper()

	st, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	return NewService(st, &TokenConfig{
		Secret:   []byte("test-secret"),
		Issuer:   "roomtalk-test",
		Audience: "roomtalk-test-clients",
		TTL:      time.Hour,
	})
}

func TestRegisterAndValidateToken(t *testing.T) {
	svc := newTestService(t)

	token, err := svc.Register(context.Background(), "alice", "password1")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate token: %v", err)
	}
	if claims.Username != "alice" || claims.IsGuest {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "alice", "password1"); err != nil {
		t.Fatalf("first register: %v", err)
	}
	_, err := svc.Register(ctx, "alice", "password2")
	if !errors.Is(err, ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

// blindUserStore hides existing users from the pre-insert lookup, forcing
// Register down the path a concurrent registration of the same name takes.
type blindUserStore struct {
	store.UserStore
}

func (b *blindUserStore) GetUserByUsername(ctx context.Context, username string) (*store.User, error) {
	return nil, store.ErrNotFound
}

func TestRegisterConcurrentDuplicateMapsToUserExists(t *testing.T) {
	st, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	ctx := context.Background()

	if _, err := st.CreateUser(ctx, "alice", "hash"); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	svc := NewService(&blindUserStore{UserStore: st}, &TokenConfig{
		Secret:   []byte("test-secret"),
		Issuer:   "roomtalk-test",
		Audience: "roomtalk-test-clients",
		TTL:      time.Hour,
	})

	_, err = svc.Register(ctx, "alice", "password1")
	if !errors.Is(err, ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestRegisterRejectsWeakInput(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "al", "password1"); !errors.Is(err, ErrInvalidUsername) {
		t.Fatalf("expected ErrInvalidUsername, got %v", err)
	}
	if _, err := svc.Register(ctx, "alice", "short"); !errors.Is(err, ErrInvalidPassword) {
		t.Fatalf("expected ErrInvalidPassword, got %v", err)
	}
}

func TestLogin(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "alice", "password1"); err != nil {
		t.Fatalf("register: %v", err)
	}

	token, err := svc.Login(ctx, "alice", "password1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, err := svc.ValidateToken(token); err != nil {
		t.Fatalf("validate login token: %v", err)
	}

	if _, err := svc.Login(ctx, "alice", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Login(ctx, "nobody", "password1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}
}

func TestGuestLogin(t *testing.T) {
	svc := newTestService(t)

	token, sessionID, err := svc.GuestLogin(context.Background())
	if err != nil {
		t.Fatalf("guest login: %v", err)
	}
	if sessionID == "" {
		t.Fatal("empty guest session id")
	}

	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate guest token: %v", err)
	}
	if !claims.IsGuest {
		t.Fatalf("guest claim not set: %+v", claims)
	}
}

func TestValidateTokenRejectsForgery(t *testing.T) {
	svc := newTestService(t)

	other := NewService(nil, &TokenConfig{
		Secret:   []byte("other-secret"),
		Issuer:   "roomtalk-test",
		Audience: "roomtalk-test-clients",
		TTL:      time.Hour,
	})
	forged, err := GenerateToken(other.tokens, 1, "alice", false)
	if err != nil {
		t.Fatalf("generate forged token: %v", err)
	}

	if _, err := svc.ValidateToken(forged); err == nil {
		t.Fatal("token signed with wrong secret accepted")
	}
}
