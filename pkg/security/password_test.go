package security_test

import (
	"strings"
	"testing"

	"github.com/donazulmira/moradores-backend/pkg/config"
	"github.com/donazulmira/moradores-backend/pkg/security"
	"golang.org/x/crypto/bcrypt"
)

var testCfg = config.PasswordConfig{
	ArgonMemoryKB:    32768,
	ArgonTime:        1,
	ArgonParallelism: 1,
	ArgonSaltLen:     16,
	ArgonKeyLen:      32,
}

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := security.HashPassword("senha-segura", testCfg)
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$") {
		t.Fatalf("unexpected hash encoding %q", hash)
	}

	ok, err := security.VerifyPassword("senha-segura", hash)
	if err != nil {
		t.Fatalf("VerifyPassword returned error for valid hash: %v", err)
	}
	if !ok {
		t.Fatal("VerifyPassword failed for the correct password")
	}

	ok, err = security.VerifyPassword("outra-senha", hash)
	if err != nil {
		t.Fatalf("VerifyPassword returned error for invalid password: %v", err)
	}
	if ok {
		t.Fatal("VerifyPassword returned true for incorrect password")
	}
}

func TestHashPasswordSaltsEveryCall(t *testing.T) {
	first, err := security.HashPassword("123456", testCfg)
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	second, err := security.HashPassword("123456", testCfg)
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	if first == second {
		t.Fatal("expected two hashes of the same password to differ")
	}
	if !security.CheckPassword("123456", first) || !security.CheckPassword("123456", second) {
		t.Fatal("both hashes must verify")
	}
}

func TestCheckPasswordBcrypt(t *testing.T) {
	legacy, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	if !security.CheckPassword("admin123", string(legacy)) {
		t.Fatal("expected bcrypt hash to verify")
	}
	if security.CheckPassword("admin124", string(legacy)) {
		t.Fatal("expected bcrypt mismatch")
	}
}

func TestCheckPasswordRejectsGarbage(t *testing.T) {
	cases := []struct{ password, hash string }{
		{"", "$argon2id$v=19$m=8,t=1,p=1$c2FsdA$aGFzaA"},
		{"x", ""},
		{"x", "not-a-hash"},
		{"x", "$argon2id$v=19$m=,t=1,p=1$c2FsdA$aGFzaA"},
		{"x", "$2b$10$short"},
	}
	for _, c := range cases {
		if security.CheckPassword(c.password, c.hash) {
			t.Fatalf("expected mismatch for %q", c.hash)
		}
	}
}

func TestVerifyPasswordBadHash(t *testing.T) {
	if _, err := security.VerifyPassword("irrelevant", "not-a-hash"); err == nil {
		t.Fatal("expected error for malformed hash")
	}
}

func TestNewResetToken(t *testing.T) {
	a, err := security.NewResetToken()
	if err != nil {
		t.Fatalf("NewResetToken: %v", err)
	}
	b, err := security.NewResetToken()
	if err != nil {
		t.Fatalf("NewResetToken: %v", err)
	}
	if len(a) != security.ResetTokenBytes*2 {
		t.Fatalf("expected %d hex chars, got %d", security.ResetTokenBytes*2, len(a))
	}
	if a == b {
		t.Fatal("expected distinct tokens")
	}
}
