package localjwt

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jsricop/vitalgo/internal/ports/auth"
)

func TestTokens_IssueVerify_RoundTrip(t *testing.T) {
	tk, err := New("una-clave-bastante-larga", time.Hour)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	in := auth.Claims{UserID: "user-1", Email: "ana@example.com", Role: auth.RoleParamedic}
	signed, expiresAt, err := tk.Issue(in)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}
	if signed == "" || expiresAt.IsZero() {
		t.Fatalf("expected signed token with expiry")
	}

	out, err := tk.Verify(context.Background(), signed)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if out != in {
		t.Fatalf("claims mismatch: want %+v, got %+v", in, out)
	}
}

func TestTokens_Verify_RejectsExpired(t *testing.T) {
	tk, err := New("una-clave-bastante-larga", time.Hour)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	issued := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	tk.now = func() time.Time { return issued }
	signed, _, err := tk.Issue(auth.Claims{UserID: "user-1"})
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	tk.now = func() time.Time { return issued.Add(2 * time.Hour) }
	if _, err := tk.Verify(context.Background(), signed); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for expired token, got %v", err)
	}
}

func TestTokens_Verify_RejectsOtherSecret(t *testing.T) {
	a, _ := New("clave-del-servicio-a", time.Hour)
	b, _ := New("clave-del-servicio-b", time.Hour)

	signed, _, err := a.Issue(auth.Claims{UserID: "user-1"})
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}
	if _, err := b.Verify(context.Background(), signed); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid with wrong secret, got %v", err)
	}
}

func TestTokens_New_RejectsWeakSecret(t *testing.T) {
	if _, err := New("corta", time.Hour); !errors.Is(err, ErrSecretTooWeak) {
		t.Fatalf("expected ErrSecretTooWeak, got %v", err)
	}
}
