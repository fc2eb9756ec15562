package security

import (
	"strings"
	"testing"
)

func TestHashSecret_VerifyRoundTrip(t *testing.T) {
	hash, err := HashSecret("correct horse battery staple")

	if err != nil {
		t.Fatalf("HashSecret error: %v", err)
	}

	if !strings.HasPrefix(hash, "$argon2id$") {
		t.Fatalf("expected PHC argon2id encoding, got %q", hash)
	}

	if !VerifySecret(hash, "correct horse battery staple") {
		t.Fatalf("expected hash to verify against original input")
	}

	if VerifySecret(hash, "wrong password") {
		t.Fatalf("expected mismatch for wrong input")
	}
}

func TestHashSecret_SaltedPerCall(t *testing.T) {
	first, err := HashSecret("same-input")
	if err != nil {
		t.Fatalf("HashSecret error: %v", err)
	}

	second, err := HashSecret("same-input")
	if err != nil {
		t.Fatalf("HashSecret error: %v", err)
	}

	if first == second {
		t.Fatalf("expected different encodings for repeated calls (random salt)")
	}

	if !VerifySecret(first, "same-input") || !VerifySecret(second, "same-input") {
		t.Fatalf("both encodings should still verify")
	}
}

func TestVerifySecret_MalformedHash(t *testing.T) {
	cases := []string{
		"",
		"not-a-hash",
		"$argon2id$v=19$m=65536,t=3,p=2$only-one-part",
		"$argon2i$v=19$m=65536,t=3,p=2$c2FsdA$a2V5",
		"$argon2id$v=18$m=65536,t=3,p=2$c2FsdA$a2V5",
		"$argon2id$v=19$m=65536,t=3,p=2$!!notb64$a2V5",
	}

	for _, c := range cases {
		if VerifySecret(c, "anything") {
			t.Fatalf("expected false for malformed hash %q", c)
		}
	}
}
