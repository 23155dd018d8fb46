package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLocalStoreSaveAndDelete(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalStore(dir, "/media/")
	if err != nil {
		t.Fatalf("NewLocalStore() error: %v", err)
	}

	ref, err := s.Save(context.Background(), "images", ".PNG", strings.NewReader("png-bytes"))
	if err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if !strings.HasPrefix(ref, "images/") || !strings.HasSuffix(ref, ".png") {
		t.Errorf("unexpected reference %q", ref)
	}

	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(ref)))
	if err != nil {
		t.Fatalf("blob not written: %v", err)
	}
	if string(data) != "png-bytes" {
		t.Errorf("blob content = %q", data)
	}
	if got := s.URL(ref); got != "/media/"+ref {
		t.Errorf("URL() = %q", got)
	}

	if err := s.Delete(context.Background(), ref); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, filepath.FromSlash(ref))); !os.IsNotExist(err) {
		t.Error("blob should be gone after Delete()")
	}
	// Deleting twice is not an error
	if err := s.Delete(context.Background(), ref); err != nil {
		t.Errorf("second Delete() error: %v", err)
	}
}

func TestLocalStoreRejectsEscapingRefs(t *testing.T) {
	s, err := NewLocalStore(t.TempDir(), "/media")
	if err != nil {
		t.Fatalf("NewLocalStore() error: %v", err)
	}
	for _, ref := range []string{"", "../secret", "images/../../secret", "/abs"} {
		if err := s.Delete(context.Background(), ref); !errors.Is(err, ErrInvalidRef) {
			t.Errorf("Delete(%q) = %v, want ErrInvalidRef", ref, err)
		}
	}
}

func TestLocalStoreSaveCancelled(t *testing.T) {
	s, err := NewLocalStore(t.TempDir(), "/media")
	if err != nil {
		t.Fatalf("NewLocalStore() error: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.Save(ctx, "files", ".txt", strings.NewReader("x")); err == nil {
		t.Error("Save() with a cancelled context should fail")
	}
}
