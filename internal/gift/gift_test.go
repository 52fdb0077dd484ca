package gift

import "testing"

func TestHashSolutionNormalizes(t *testing.T) {
	// Case and surrounding whitespace must not decide whether the answer
	// matches; inner spacing still does.
	if hashSolution("Fireflies") != hashSolution("  fireflies  ") {
		t.Error("case and padding should hash identically")
	}
	if hashSolution("fire flies") == hashSolution("fireflies") {
		t.Error("inner whitespace is significant")
	}
}

func TestHashSolutionDiffersPerAnswer(t *testing.T) {
	if hashSolution("rosebud") == hashSolution("rosebuds") {
		t.Error("different answers must hash differently")
	}
}

func TestHashSolutionIsHex(t *testing.T) {
	h := hashSolution("anything")
	if len(h) != 64 {
		t.Errorf("expected a 64-char sha256 hex digest, got %d chars", len(h))
	}
}

func TestValidKindsCoverBilliards(t *testing.T) {
	for _, k := range []string{KindLetters, KindBilliards, KindMemory, KindCrossword, KindJigsaw} {
		if !validKinds[k] {
			t.Errorf("kind %q should be valid", k)
		}
	}
	if validKinds["quiz"] {
		t.Error("unknown kinds must be rejected")
	}
}

func TestNewGiftTokenLengthAndUniqueness(t *testing.T) {
	a, b := newGiftToken(), newGiftToken()
	if len(a) != 24 {
		t.Errorf("expected 24-char hex token, got %d chars", len(a))
	}
	if a == b {
		t.Error("two tokens in a row should differ")
	}
}
