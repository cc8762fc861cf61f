package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"clubledger/internal/core"
	"clubledger/internal/ledger/memory"
)

func newService(t *testing.T) *Service {
	t.Helper()
	return NewService(memory.New(), "test-secret", time.Hour)
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, " Admin@Example.com ", "longenough", "")
	if err != nil {
		t.Fatal(err)
	}
	if user.Email != "admin@example.com" {
		t.Errorf("Email = %q, want normalized lowercase", user.Email)
	}
	if user.Role != "admin" {
		t.Errorf("Role = %q, want default admin", user.Role)
	}
	if user.PasswordHash == "longenough" {
		t.Error("password stored in plain text")
	}

	token, got, err := svc.Login(ctx, "admin@example.com", "longenough")
	if err != nil {
		t.Fatal(err)
	}
	if token == "" {
		t.Error("expected signed token")
	}
	if got.ID != user.ID {
		t.Errorf("Login user ID = %q, want %q", got.ID, user.ID)
	}
}

func TestLogin_BadCredentials(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "admin@example.com", "longenough", "admin"); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"wrong password", "admin@example.com", "wrong-password"},
		{"unknown email", "nobody@example.com", "longenough"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.Login(ctx, tt.email, tt.password)
			if !errors.Is(err, ErrInvalidCredentials) {
				t.Errorf("got %v, want ErrInvalidCredentials", err)
			}
		})
	}
}

func TestRegister_Validation(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "", "longenough", ""); !core.IsValidation(err) {
		t.Errorf("empty email: got %v, want ValidationError", err)
	}
	if _, err := svc.Register(ctx, "a@b.com", "short", ""); !core.IsValidation(err) {
		t.Errorf("short password: got %v, want ValidationError", err)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "admin@example.com", "longenough", ""); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Register(ctx, "admin@example.com", "otherpassword", ""); !errors.Is(err, core.ErrConflict) {
		t.Errorf("got %v, want ErrConflict", err)
	}
}

func TestVerify(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "admin@example.com", "longenough", "admin")
	if err != nil {
		t.Fatal(err)
	}
	token, _, err := svc.Login(ctx, "admin@example.com", "longenough")
	if err != nil {
		t.Fatal(err)
	}

	claims, err := svc.Verify(token)
	if err != nil {
		t.Fatal(err)
	}
	if claims.Subject != user.ID || claims.Email != "admin@example.com" || claims.Role != "admin" {
		t.Errorf("claims = %+v", claims)
	}
}

func TestVerify_RejectsTampering(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "admin@example.com", "longenough", ""); err != nil {
		t.Fatal(err)
	}
	token, _, err := svc.Login(ctx, "admin@example.com", "longenough")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Verify(token + "x"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("tampered token: got %v, want ErrInvalidToken", err)
	}
	if _, err := svc.Verify("not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("garbage token: got %v, want ErrInvalidToken", err)
	}

	other := NewService(memory.New(), "different-secret", time.Hour)
	if _, err := other.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("wrong secret: got %v, want ErrInvalidToken", err)
	}
}

func TestVerify_Expired(t *testing.T) {
	store := memory.New()
	svc := NewService(store, "test-secret", -time.Minute)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "admin@example.com", "longenough", ""); err != nil {
		t.Fatal(err)
	}
	token, _, err := svc.Login(ctx, "admin@example.com", "longenough")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expired token: got %v, want ErrInvalidToken", err)
	}
}
