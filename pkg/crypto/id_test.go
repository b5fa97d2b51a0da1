package crypto

import (
	"strings"
	"testing"
)

func TestNewRefreshIDLengthAndAlphabet(t *testing.T) {
	id, err := NewRefreshID()
	if err != nil {
		t.Fatalf("NewRefreshID failed: %v", err)
	}
	if len(id) != idLength {
		t.Errorf("len = %d, want %d", len(id), idLength)
	}
	for _, r := range id {
		if !strings.ContainsRune(idAlphabet, r) {
			t.Errorf("identifier contains %q, outside the alphabet", r)
		}
	}
}

func TestNewRefreshIDUniqueness(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id, err := NewRefreshID()
		if err != nil {
			t.Fatalf("NewRefreshID failed: %v", err)
		}
		if seen[id] {
			t.Fatalf("duplicate identifier %q after %d draws", id, i)
		}
		seen[id] = true
	}
}
