package ui

import (
	"os"
	"path/filepath"
	"testing"
)

func TestIsTerminal(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "out.pdf"))
	if err != nil {
		t.Fatal(err)
	}
	if isTerminal(f) {
		t.Error("regular file reported as a terminal")
	}

	f.Close()
	if isTerminal(f) {
		t.Error("closed file reported as a terminal")
	}
}
