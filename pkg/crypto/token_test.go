package crypto

import (
	"encoding/base64"
	"testing"
)

func TestGenerateSecretShouldHonourLength(t *testing.T) {
	for _, n := range []int{0, 16, 48} {
		secret, err := GenerateSecret(n)
		if err != nil {
			t.Fatalf("GenerateSecret(%d) error = %v", n, err)
		}
		raw, err := base64.RawURLEncoding.DecodeString(secret)
		if err != nil {
			t.Fatalf("secret is not base64url: %v", err)
		}
		want := n
		if want == 0 {
			want = DefaultSecretLength
		}
		if len(raw) != want {
			t.Errorf("GenerateSecret(%d) decoded to %d bytes, want %d", n, len(raw), want)
		}
	}
}

func TestGenerateSecretShouldBeUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		s, _ := GenerateSecret(16)
		if seen[s] {
			t.Fatalf("duplicate secret %q", s)
		}
		seen[s] = true
	}
}

func TestHashTokenShouldBeDeterministic(t *testing.T) {
	if HashToken("abc") != HashToken("abc") {
		t.Error("HashToken should be deterministic")
	}
	if HashToken("abc") == HashToken("abd") {
		t.Error("HashToken should differ for different tokens")
	}
	if len(HashToken("abc")) != 64 {
		t.Errorf("HashToken length = %d, want 64", len(HashToken("abc")))
	}
}

func TestFingerprintShouldBeShortPrefixOfHash(t *testing.T) {
	fp := Fingerprint("secret-token")
	if len(fp) != 12 || fp != HashToken("secret-token")[:12] {
		t.Errorf("Fingerprint() = %q", fp)
	}
	if Fingerprint("") != "" {
		t.Error("Fingerprint of empty token should be empty")
	}
}
