package apophis

import (
	"path/filepath"
	"reflect"
	"testing"
)

// TestEnvironmentNamesSorted checks deterministic name ordering.
func TestEnvironmentNamesSorted(t *testing.T) {
	env := NewEnvironment()
	env.Set("zz", Int(1))
	env.Set("aa", Int(2))
	env.Set("mm", Int(3))
	want := []string{"aa", "mm", "zz"}
	if got := env.Names(); !reflect.DeepEqual(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}
}

// TestSnapshotRoundTrip checks that a snapshot restores every variable
// with its tag intact.
func TestSnapshotRoundTrip(t *testing.T) {
	env := NewEnvironment()
	env.Set("i", Int(-7))
	env.Set("f", Float(2.5))
	env.Set("s", Str("hello"))
	env.Set("b", Bool(true))
	env.Set("n", Null())

	data, err := env.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}

	restored := NewEnvironment()
	if err := restored.RestoreSnapshot(data); err != nil {
		t.Fatalf("RestoreSnapshot failed: %v", err)
	}
	if restored.Len() != env.Len() {
		t.Fatalf("restored %d variables, want %d", restored.Len(), env.Len())
	}
	for _, name := range env.Names() {
		want, _ := env.Get(name)
		got, ok := restored.Get(name)
		if !ok {
			t.Errorf("variable %q missing after restore", name)
			continue
		}
		if got.Tag() != want.Tag() || !got.Equal(want) {
			t.Errorf("variable %q = %v (tag %v), want %v (tag %v)", name, got, got.Tag(), want, want.Tag())
		}
	}
}

// TestRestoreSnapshotGarbage checks that a corrupt payload merges nothing.
func TestRestoreSnapshotGarbage(t *testing.T) {
	env := NewEnvironment()
	env.Set("keep", Int(1))
	if err := env.RestoreSnapshot([]byte("not msgpack")); err == nil {
		t.Fatal("RestoreSnapshot should fail on garbage")
	}
	if env.Len() != 1 {
		t.Errorf("environment mutated by failed restore: %d variables", env.Len())
	}
}

// TestSessionFileRoundTrip checks SaveSession/LoadSession, including the
// missing-file case starting an empty session.
func TestSessionFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.bin")

	env := NewEnvironment()
	env.Set("x", Int(42))
	if err := SaveSession(path, env); err != nil {
		t.Fatalf("SaveSession failed: %v", err)
	}

	loaded := NewEnvironment()
	if err := LoadSession(path, loaded); err != nil {
		t.Fatalf("LoadSession failed: %v", err)
	}
	if v, ok := loaded.Get("x"); !ok || !v.Equal(Int(42)) {
		t.Errorf("loaded x = %v, want 42", v)
	}

	fresh := NewEnvironment()
	if err := LoadSession(filepath.Join(t.TempDir(), "absent.bin"), fresh); err != nil {
		t.Errorf("LoadSession of a missing file should not fail: %v", err)
	}
	if fresh.Len() != 0 {
		t.Errorf("missing session file should load nothing, got %d variables", fresh.Len())
	}
}
