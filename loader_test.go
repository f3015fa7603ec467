package apophis

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// TestLoadFileExtensionGate checks that only .apop and .apo paths are
// accepted, before the filesystem is consulted.
func TestLoadFileExtensionGate(t *testing.T) {
	for _, path := range []string{"prog.txt", "prog", "prog.rb", "prog.apopx"} {
		_, err := LoadFile(path)
		var ext *InvalidExtensionError
		if !errors.As(err, &ext) {
			t.Errorf("LoadFile(%q) err = %v, want InvalidExtensionError", path, err)
		}
	}
}

// TestLoadFileMissing checks that a missing document surfaces the
// underlying not-found error.
func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "absent.apop"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("err = %v, want wrapped os.ErrNotExist", err)
	}
}

// TestRunFile checks the one-shot load-and-execute path end to end.
func TestRunFile(t *testing.T) {
	for _, ext := range []string{".apop", ".apo"} {
		path := filepath.Join(t.TempDir(), "prog"+ext)
		if err := os.WriteFile(path, []byte(":x = 40\n:print(x + 2)"), 0o644); err != nil {
			t.Fatal(err)
		}
		out, err := NewInterpreter().RunFile(context.Background(), path)
		if err != nil {
			t.Fatalf("RunFile(%s) failed: %v", path, err)
		}
		if out != "42\n" {
			t.Errorf("output = %q, want %q", out, "42\n")
		}
	}
}
