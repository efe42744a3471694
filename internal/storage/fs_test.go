package storage

import (
	"io"
	"os"
	"strings"
	"testing"
)

func TestFSStoreRoundTrip(t *testing.T) {
	store, err := NewFSStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFSStore: %v", err)
	}

	n, err := store.Put("submissions/a1/essay.pdf", strings.NewReader("hello"))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if n != 5 {
		t.Errorf("Put wrote %d bytes, want 5", n)
	}

	rc, err := store.Get("submissions/a1/essay.pdf")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	data, err := io.ReadAll(rc)
	rc.Close()
	if err != nil || string(data) != "hello" {
		t.Errorf("Get = %q, %v", data, err)
	}

	if err := store.Delete("submissions/a1/essay.pdf"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Get("submissions/a1/essay.pdf"); !os.IsNotExist(err) {
		t.Errorf("Get after delete = %v, want not-exist", err)
	}
}

func TestFSStorePut_EmptyKey(t *testing.T) {
	store, err := NewFSStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFSStore: %v", err)
	}
	if _, err := store.Put("", strings.NewReader("x")); err == nil {
		t.Fatalf("empty key must be rejected")
	}
}
