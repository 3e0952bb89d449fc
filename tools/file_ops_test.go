package tools

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestFileWriteThenRead(t *testing.T) {
	dir := t.TempDir()
	write := NewFileWriteTool(dir)
	read := NewFileReadTool(dir)

	res := write.Execute(context.Background(), map[string]any{
		"file_path": "nested/out.txt",
		"content":   "hello world",
	})
	if !res.Success {
		t.Fatalf("write failed: %s", res.Error)
	}

	out, ok := res.Output.(map[string]any)
	if !ok {
		t.Fatalf("unexpected output type %T", res.Output)
	}
	if out["bytes_written"] != 11 {
		t.Errorf("expected 11 bytes written, got %v", out["bytes_written"])
	}

	res = read.Execute(context.Background(), map[string]any{
		"file_path": "nested/out.txt",
	})
	if !res.Success {
		t.Fatalf("read failed: %s", res.Error)
	}
	out = res.Output.(map[string]any)
	if out["content"] != "hello world" {
		t.Errorf("expected round-tripped content, got %v", out["content"])
	}
}

func TestFileReadMissingFile(t *testing.T) {
	read := NewFileReadTool(t.TempDir())
	res := read.Execute(context.Background(), map[string]any{
		"file_path": "does-not-exist.txt",
	})
	if res.Success {
		t.Fatal("expected failure for missing file")
	}
	if res.Error == "" {
		t.Error("expected descriptive error")
	}
}

func TestFileReadMissingArgument(t *testing.T) {
	read := NewFileReadTool(t.TempDir())
	res := read.Execute(context.Background(), map[string]any{})
	if res.Success {
		t.Fatal("expected failure without file_path")
	}
}

func TestFileList(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "b.txt"), []byte("b"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "a.txt"), []byte("a"), 0o644); err != nil {
		t.Fatal(err)
	}

	list := NewFileListTool(dir)
	res := list.Execute(context.Background(), map[string]any{
		"directory_path": ".",
	})
	if !res.Success {
		t.Fatalf("list failed: %s", res.Error)
	}

	out := res.Output.(map[string]any)
	files := out["files"].([]string)
	dirs := out["directories"].([]string)
	if len(files) != 2 || files[0] != "a.txt" || files[1] != "b.txt" {
		t.Errorf("unexpected files: %v", files)
	}
	if len(dirs) != 1 || dirs[0] != "sub" {
		t.Errorf("unexpected directories: %v", dirs)
	}
	if out["total_items"] != 3 {
		t.Errorf("expected 3 total items, got %v", out["total_items"])
	}
}

func TestFileListNotADirectory(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "file.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	list := NewFileListTool(dir)
	res := list.Execute(context.Background(), map[string]any{
		"directory_path": "file.txt",
	})
	if res.Success {
		t.Fatal("expected failure when listing a regular file")
	}
}
