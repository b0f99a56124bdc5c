package emergency

import (
	"strings"
	"testing"
)

func TestNewToken_URLSafe(t *testing.T) {
	tok, err := NewToken()
	if err != nil {
		t.Fatalf("NewToken error: %v", err)
	}
	// 32 bytes en base64 sin padding => 43 caracteres
	if len(tok) != 43 {
		t.Fatalf("expected 43 chars, got %d (%q)", len(tok), tok)
	}
	const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"
	for _, c := range tok {
		if !strings.ContainsRune(alphabet, c) {
			t.Fatalf("token contains non url-safe char %q", c)
		}
	}
}

func TestNewToken_NoCollisions(t *testing.T) {
	seen := make(map[string]struct{}, 10000)
	for i := 0; i < 10000; i++ {
		tok, err := NewToken()
		if err != nil {
			t.Fatalf("NewToken error: %v", err)
		}
		if _, dup := seen[tok]; dup {
			t.Fatalf("duplicate token after %d draws", i)
		}
		seen[tok] = struct{}{}
	}
}

func TestTokenPrefix_NeverWholeToken(t *testing.T) {
	tok, err := NewToken()
	if err != nil {
		t.Fatalf("NewToken error: %v", err)
	}
	p := tokenPrefix(tok)
	if len(p) >= len(tok) {
		t.Fatalf("prefix should truncate, got %q", p)
	}
}
