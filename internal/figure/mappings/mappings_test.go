package mappings

import "testing"

func TestLabel_KnownColumn(t *testing.T) {
	if got := Label("bs"); got != "block size [B]" {
		t.Fatalf("expected 'block size [B]', got %q", got)
	}
	if got := Label("threads"); got != "# of threads" {
		t.Fatalf("unit-less columns must not grow brackets, got %q", got)
	}
}

func TestLabel_UnknownColumnPassesThrough(t *testing.T) {
	if got := Label("made_up_column"); got != "made_up_column" {
		t.Fatalf("expected pass-through, got %q", got)
	}
}
