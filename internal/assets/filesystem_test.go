package assets

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestNewFilesystemLoader(t *testing.T) {
	t.Parallel()

	t.Run("valid directory", func(t *testing.T) {
		t.Parallel()

		tmpDir := t.TempDir()

		loader, err := NewFilesystemLoader(tmpDir)
		if err != nil {
			t.Fatalf("NewFilesystemLoader() error = %v", err)
		}
		if loader == nil {
			t.Fatal("NewFilesystemLoader() returned nil")
		}
		if !filepath.IsAbs(loader.Root()) {
			t.Errorf("Root() = %q, want absolute", loader.Root())
		}
	})

	t.Run("empty path returns error", func(t *testing.T) {
		t.Parallel()

		_, err := NewFilesystemLoader("")
		if !errors.Is(err, ErrInvalidBasePath) {
			t.Errorf("NewFilesystemLoader(\"\") error = %v, want ErrInvalidBasePath", err)
		}
	})

	t.Run("nonexistent directory returns error", func(t *testing.T) {
		t.Parallel()

		_, err := NewFilesystemLoader(filepath.Join(t.TempDir(), "missing"))
		if !errors.Is(err, ErrInvalidBasePath) {
			t.Errorf("NewFilesystemLoader() error = %v, want ErrInvalidBasePath", err)
		}
		if !errors.Is(err, fs.ErrNotExist) {
			t.Errorf("NewFilesystemLoader() error = %v, want fs.ErrNotExist", err)
		}
	})

	t.Run("file instead of directory returns error", func(t *testing.T) {
		t.Parallel()

		tmpDir := t.TempDir()
		filePath := filepath.Join(tmpDir, "file.txt")
		if err := os.WriteFile(filePath, []byte("test"), 0644); err != nil {
			t.Fatalf("failed to create test file: %v", err)
		}

		_, err := NewFilesystemLoader(filePath)
		if !errors.Is(err, ErrInvalidBasePath) {
			t.Errorf("NewFilesystemLoader() error = %v, want ErrInvalidBasePath", err)
		}
	})
}

func TestFilesystemLoader_LoadTemplate(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	base := "<title>{{ title }}</title>{{ main }}"
	if err := os.WriteFile(filepath.Join(tmpDir, "_base.html"), []byte(base), 0644); err != nil {
		t.Fatalf("failed to write template: %v", err)
	}
	if err := os.MkdirAll(filepath.Join(tmpDir, "layouts"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(tmpDir, "layouts", "post.html"), []byte("post"), 0644); err != nil {
		t.Fatal(err)
	}

	loader, err := NewFilesystemLoader(tmpDir)
	if err != nil {
		t.Fatalf("NewFilesystemLoader() error = %v", err)
	}

	t.Run("loads existing template", func(t *testing.T) {
		t.Parallel()

		got, err := loader.LoadTemplate("_base.html")
		if err != nil {
			t.Fatalf("LoadTemplate() error = %v", err)
		}
		if got != base {
			t.Errorf("LoadTemplate() = %q, want %q", got, base)
		}
	})

	t.Run("loads from sub-directory", func(t *testing.T) {
		t.Parallel()

		got, err := loader.LoadTemplate("layouts/post.html")
		if err != nil {
			t.Fatalf("LoadTemplate() error = %v", err)
		}
		if got != "post" {
			t.Errorf("LoadTemplate() = %q, want %q", got, "post")
		}
	})

	t.Run("missing template wraps not-exist", func(t *testing.T) {
		t.Parallel()

		_, err := loader.LoadTemplate("nope.html")
		if !errors.Is(err, ErrTemplateNotFound) {
			t.Errorf("LoadTemplate() error = %v, want ErrTemplateNotFound", err)
		}
		if !errors.Is(err, fs.ErrNotExist) {
			t.Errorf("LoadTemplate() error = %v, want fs.ErrNotExist", err)
		}
	})

	t.Run("traversal rejected", func(t *testing.T) {
		t.Parallel()

		_, err := loader.LoadTemplate("../outside.html")
		if !errors.Is(err, ErrInvalidTemplateName) {
			t.Errorf("LoadTemplate() error = %v, want ErrInvalidTemplateName", err)
		}
	})
}

func TestFilesystemLoader_SymlinkEscape(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks require privileges on windows")
	}
	t.Parallel()

	outside := t.TempDir()
	secret := filepath.Join(outside, "secret.html")
	if err := os.WriteFile(secret, []byte("secret"), 0644); err != nil {
		t.Fatal(err)
	}

	root := t.TempDir()
	if err := os.Symlink(secret, filepath.Join(root, "link.html")); err != nil {
		t.Fatalf("failed to create symlink: %v", err)
	}

	loader, err := NewFilesystemLoader(root)
	if err != nil {
		t.Fatalf("NewFilesystemLoader() error = %v", err)
	}

	_, err = loader.LoadTemplate("link.html")
	if !errors.Is(err, ErrPathTraversal) {
		t.Errorf("LoadTemplate() error = %v, want ErrPathTraversal", err)
	}
}
