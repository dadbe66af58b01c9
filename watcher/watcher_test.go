package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const deliveryTimeout = 5 * time.Second

func recvSource(t *testing.T, w *Watcher) string {
	t.Helper()
	select {
	case src := <-w.Sources():
		return src
	case <-time.After(deliveryTimeout):
		t.Fatalf("no shader source delivered within %v", deliveryTimeout)
		return ""
	}
}

func expectSilence(t *testing.T, w *Watcher, d time.Duration) {
	t.Helper()
	select {
	case src := <-w.Sources():
		t.Fatalf("unexpected delivery: %q", src)
	case <-time.After(d):
	}
}

func TestDeliversOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shader.glsl")
	if err := os.WriteFile(path, []byte("v1"), 0o644); err != nil {
		t.Fatal(err)
	}

	w, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if err := os.WriteFile(path, []byte("v2"), 0o644); err != nil {
		t.Fatal(err)
	}

	if got := recvSource(t, w); got != "v2" {
		t.Errorf("delivered source = %q, want %q", got, "v2")
	}
}

func TestDeliversOnCreateAfterStart(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shader.glsl")

	// The watched file does not exist yet.
	w, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if err := os.WriteFile(path, []byte("fresh"), 0o644); err != nil {
		t.Fatal(err)
	}

	if got := recvSource(t, w); got != "fresh" {
		t.Errorf("delivered source = %q, want %q", got, "fresh")
	}
}

func TestCoalescesRapidWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shader.glsl")

	w, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	for _, content := range []string{"a", "ab", "abc"} {
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	if got := recvSource(t, w); got != "abc" {
		t.Errorf("delivered source = %q, want the final write %q", got, "abc")
	}
	expectSilence(t, w, 2*debounceWindow)
}

func TestIgnoresSiblingFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shader.glsl")

	w, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	expectSilence(t, w, 2*debounceWindow)
}

func TestLatestContentReplacesUnreadDelivery(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shader.glsl")

	w, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if err := os.WriteFile(path, []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}
	// Let the first delivery land unread, then overwrite.
	time.Sleep(2 * debounceWindow)
	if err := os.WriteFile(path, []byte("new"), 0o644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(2 * debounceWindow)

	if got := recvSource(t, w); got != "new" {
		t.Errorf("delivered source = %q, want only the latest %q", got, "new")
	}
	expectSilence(t, w, debounceWindow)
}
