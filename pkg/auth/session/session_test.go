package session

import "testing"

func TestNewIDIsValidAndUnique(t *testing.T) {
	t.Parallel()
	seen := map[string]struct{}{}
	for i := 0; i < 64; i++ {
		id, err := NewID()
		if err != nil {
			t.Fatalf("new id: %v", err)
		}
		if !Valid(id) {
			t.Fatalf("generated id %q should be valid", id)
		}
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = struct{}{}
	}
}

func TestValidRejectsForeignValues(t *testing.T) {
	t.Parallel()
	for _, id := range []string{"", "   ", "short", "has spaces in it", "c2Vzc2lvbg"} {
		if Valid(id) {
			t.Fatalf("%q should be rejected", id)
		}
	}
}
