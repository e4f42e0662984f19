package dictionary

import (
	"os"
	"path/filepath"
	"testing"
)

func writeWordlist(t *testing.T, lines ...string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "wordlist.txt")
	content := ""
	for _, l := range lines {
		content += l + "\n"
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
	return path
}

func TestLoad_FiltersByLengthWindow(t *testing.T) {
	path := writeWordlist(t, "a", "cat", "CAT", "extraordinary", "dog", "  spaced  ", "two words")
	d, err := Load(path, 15)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	tests := []struct {
		word string
		want bool
	}{
		{"a", false},      // shorter than MinWordLength
		{"cat", true},     // lowercased duplicate of CAT
		{"dog", true},
		{"spaced", true},  // trimmed
		{"two", false},    // "two words" discarded for embedded whitespace
		{"words", false},
		{"extraordinary", false}, // longer than gridLen-6 = 9
	}
	for _, tt := range tests {
		if got := d.Has(tt.word); got != tt.want {
			t.Errorf("Has(%q) = %v, want %v", tt.word, got, tt.want)
		}
	}
}

func TestLoad_CaseInsensitiveHas(t *testing.T) {
	path := writeWordlist(t, "anchor")
	d, err := Load(path, 15)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if !d.Has("ANCHOR") {
		t.Error("Has() should be case-insensitive")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.txt"), 15); err == nil {
		t.Fatal("expected error for missing dictionary file")
	}
}

func TestLoad_EmptyAfterFiltering(t *testing.T) {
	path := writeWordlist(t, "a", "extraordinarily")
	if _, err := Load(path, 15); err == nil {
		t.Fatal("expected error when no words survive the length window")
	}
}

func TestLoad_Deduplicates(t *testing.T) {
	path := writeWordlist(t, "cat", "cat", "CAT")
	d, err := Load(path, 15)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if d.Len() != 1 {
		t.Errorf("Len() = %d, want 1 after dedup", d.Len())
	}
}
