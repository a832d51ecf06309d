package localbridge

import (
	"errors"
	"strings"
	"testing"
)

func newFastHasher() *hasher {
	return newHasher(HashConfig{Memory: 8 * 1024, Time: 1, Parallelism: 1})
}

func TestHashRoundTrip(t *testing.T) {
	h := newFastHasher()

	encoded, err := h.hash("correct-password")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	if !strings.HasPrefix(encoded, "$argon2id$") {
		t.Fatalf("expected PHC-format hash, got %q", encoded)
	}

	ok, err := h.verify("correct-password", encoded)
	if err != nil || !ok {
		t.Fatalf("expected verify success, got %v / %v", ok, err)
	}
	ok, err = h.verify("wrong-password", encoded)
	if err != nil || ok {
		t.Fatalf("expected verify failure, got %v / %v", ok, err)
	}
}

func TestHashSaltsDiffer(t *testing.T) {
	h := newFastHasher()

	a, err := h.hash("same-password")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	b, err := h.hash("same-password")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	if a == b {
		t.Fatal("expected distinct salts to yield distinct encodings")
	}
}

func TestVerifyRejectsMalformed(t *testing.T) {
	h := newFastHasher()

	for _, encoded := range []string{"", "plain", "$bcrypt$whatever", "$argon2id$v=19$bad"} {
		if _, err := h.verify("pw", encoded); !errors.Is(err, errHashMalformed) {
			t.Fatalf("verify(%q): expected errHashMalformed, got %v", encoded, err)
		}
	}
}

func TestVerifyHonorsEmbeddedParameters(t *testing.T) {
	// Parameters travel in the encoding, so a hasher configured differently
	// still verifies older hashes.
	old := newHasher(HashConfig{Memory: 16 * 1024, Time: 2, Parallelism: 1})
	encoded, err := old.hash("password123")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}

	ok, err := newFastHasher().verify("password123", encoded)
	if err != nil || !ok {
		t.Fatalf("expected cross-config verify success, got %v / %v", ok, err)
	}
}
