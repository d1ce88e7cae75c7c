package filedb

import (
	"os"
	"path/filepath"
	"testing"
)

func TestAbsolutePath(t *testing.T) {
	db := New("/project")

	tests := []struct {
		in   string
		want string
	}{
		{"main.cpp", "/project/main.cpp"},
		{"sub/point.h", "/project/sub/point.h"},
		{"/usr/include/stdio.h", "/usr/include/stdio.h"},
		{"/usr/include/../include/stdio.h", "/usr/include/stdio.h"},
	}
	for _, tt := range tests {
		got, err := db.AbsolutePath(tt.in)
		if err != nil {
			t.Fatalf("AbsolutePath(%q): %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("AbsolutePath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestOverlayShadowsDisk(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.cpp")
	if err := os.WriteFile(path, []byte("int disk;\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	db := New(dir)

	content, err := db.Text("main.cpp")
	if err != nil {
		t.Fatalf("Text: %v", err)
	}
	if string(content) != "int disk;\n" {
		t.Errorf("disk content = %q", content)
	}

	db.SetOverlay(path, []byte("int buffer;\n"))
	content, err = db.Text("main.cpp")
	if err != nil {
		t.Fatalf("Text with overlay: %v", err)
	}
	if string(content) != "int buffer;\n" {
		t.Errorf("overlay content = %q", content)
	}

	db.RemoveOverlay(path)
	content, err = db.Text("main.cpp")
	if err != nil {
		t.Fatalf("Text after RemoveOverlay: %v", err)
	}
	if string(content) != "int disk;\n" {
		t.Errorf("content after overlay removal = %q", content)
	}
}

func TestMissingFileIsAnError(t *testing.T) {
	db := New(t.TempDir())
	if _, err := db.Text("never.cpp"); err == nil {
		t.Error("Text on a missing file succeeded")
	}
}
