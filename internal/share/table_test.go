package share

import (
	"testing"
)

func TestPathKey(t *testing.T) {
	tests := []struct {
		file     string
		expected string
	}{
		{"/games/My Game.iso", "/My%20Game.iso"},
		{"/games/plain.iso", "/plain.iso"},
		{"relative.cso", "/relative.cso"},
		{"/a/b/c/Two  Spaces.iso", "/Two%20%20Spaces.iso"},
	}

	for _, tt := range tests {
		if got := PathKey(tt.file); got != tt.expected {
			t.Errorf("PathKey(%q) = %q, want %q", tt.file, got, tt.expected)
		}
	}
}

func TestSupported(t *testing.T) {
	tests := []struct {
		name     string
		expected bool
	}{
		{"game.iso", true},
		{"game.ISO", true},
		{"game.cso", true},
		{"game.CsO", true},
		{"game.pbp", false},
		{"game.iso.txt", false},
		{"archive.zip", false},
		{"noext", false},
	}

	for _, tt := range tests {
		if got := Supported(tt.name); got != tt.expected {
			t.Errorf("Supported(%q) = %v, want %v", tt.name, got, tt.expected)
		}
	}
}

func TestBuildTable(t *testing.T) {
	table := BuildTable([]string{
		"/games/My Game.iso",
		"/games/other.cso",
		"/games/readme.txt",
		"/games/save.bin",
	})

	if len(table) != 2 {
		t.Fatalf("expected 2 entries, got %d: %v", len(table), table)
	}
	if table["/My%20Game.iso"] != "/games/My Game.iso" {
		t.Errorf("round-trip failed: %v", table)
	}
	if table["/other.cso"] != "/games/other.cso" {
		t.Errorf("missing cso entry: %v", table)
	}
	if _, ok := table["/readme.txt"]; ok {
		t.Error("unsupported extension leaked into the table")
	}
}

func TestBuildTableEmpty(t *testing.T) {
	if table := BuildTable(nil); len(table) != 0 {
		t.Errorf("expected empty table, got %v", table)
	}
}
