package memory

import (
	"strings"
	"testing"
)

func TestCStringLen(t *testing.T) {
	mem := NewLinear(1, 1)
	long := strings.Repeat("x", 1000)

	tests := []struct {
		name string
		data string
		want uint32
	}{
		{"empty", "\x00", 0},
		{"short", "prog\x00", 4},
		{"crosses chunks", long + "\x00", 1000},
		{"stops at first nul", "ab\x00cd\x00", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := mem.Write(64, []byte(tt.data)); err != nil {
				t.Fatal(err)
			}
			got, err := CStringLen(mem, 64, 4096)
			if err != nil {
				t.Fatalf("CStringLen: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCStringLen_Unterminated(t *testing.T) {
	mem := NewLinear(1, 1)
	if err := mem.Write(0, []byte(strings.Repeat("y", 64))); err != nil {
		t.Fatal(err)
	}

	if _, err := CStringLen(mem, 0, 32); err == nil {
		t.Error("expected error when limit is reached")
	}

	tail := uint32(65536 - 8)
	if err := mem.Write(tail, []byte("zzzzzzzz")); err != nil {
		t.Fatal(err)
	}
	if _, err := CStringLen(mem, tail, 4096); err == nil {
		t.Error("expected error when memory ends before terminator")
	}
}
