package objectstore

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDiskStorageUploadAndPublicURL(t *testing.T) {
	dir := t.TempDir()
	store, err := NewDiskStorage(dir, "/static/")
	if err != nil {
		t.Fatalf("NewDiskStorage: %v", err)
	}

	path := "productimg/p-1-123.jpg"
	if err := store.Upload(context.Background(), path, strings.NewReader("jpeg-bytes")); err != nil {
		t.Fatalf("Upload: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "productimg", "p-1-123.jpg"))
	if err != nil {
		t.Fatalf("read uploaded object: %v", err)
	}
	if string(data) != "jpeg-bytes" {
		t.Errorf("unexpected object content %q", data)
	}

	if got := store.PublicURL(path); got != "/static/productimg/p-1-123.jpg" {
		t.Errorf("unexpected public URL %q", got)
	}
}

func TestDiskStorageUploadOverwrites(t *testing.T) {
	store, err := NewDiskStorage(t.TempDir(), "/static")
	if err != nil {
		t.Fatalf("NewDiskStorage: %v", err)
	}

	ctx := context.Background()
	if err := store.Upload(ctx, "img/a.png", strings.NewReader("old")); err != nil {
		t.Fatalf("first Upload: %v", err)
	}
	if err := store.Upload(ctx, "img/a.png", strings.NewReader("new")); err != nil {
		t.Fatalf("second Upload: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(store.baseDir, "img", "a.png"))
	if err != nil {
		t.Fatalf("read object: %v", err)
	}
	if string(data) != "new" {
		t.Errorf("expected overwrite, got %q", data)
	}
}

func TestDiskStorageRejectsEscapingPath(t *testing.T) {
	store, err := NewDiskStorage(t.TempDir(), "/static")
	if err != nil {
		t.Fatalf("NewDiskStorage: %v", err)
	}

	if err := store.Upload(context.Background(), "../outside.txt", strings.NewReader("x")); err == nil {
		t.Fatal("expected error for path escaping storage dir")
	}
	if err := store.Upload(context.Background(), "  ", strings.NewReader("x")); err == nil {
		t.Fatal("expected error for empty path")
	}
}
