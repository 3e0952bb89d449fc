package tools

import (
	"context"
	"os"
	"path/filepath"
	"sort"
)

// resolvePath resolves a possibly relative path against the workspace root.
func resolvePath(workspace, path string) string {
	if filepath.IsAbs(path) || workspace == "" {
		return path
	}
	return filepath.Join(workspace, path)
}

// FileReadTool reads file contents from the filesystem.
type FileReadTool struct {
	Workspace string
}

// NewFileReadTool creates a FileReadTool rooted at the given workspace.
func NewFileReadTool(workspace string) *FileReadTool {
	return &FileReadTool{Workspace: workspace}
}

func (t *FileReadTool) Name() string { return "read_file" }

func (t *FileReadTool) Description() string {
	return "Read the contents of a file from the filesystem"
}

func (t *FileReadTool) Parameters() []Parameter {
	return []Parameter{
		{Name: "file_path", Type: "string", Description: "The path to the file to read", Required: true},
	}
}

func (t *FileReadTool) Execute(ctx context.Context, args map[string]any) Result {
	path, ok := StringArg(args, "file_path")
	if !ok || path == "" {
		return Errorf("file_path is required")
	}
	resolved := resolvePath(t.Workspace, path)

	data, err := os.ReadFile(resolved)
	if err != nil {
		if os.IsNotExist(err) {
			return Errorf("file not found: %s", path)
		}
		return Errorf("error reading file: %v", err)
	}

	return Ok(map[string]any{
		"file_path": path,
		"content":   string(data),
		"size":      len(data),
	})
}

// FileWriteTool writes content to the filesystem, creating parent
// directories as needed.
type FileWriteTool struct {
	Workspace string
}

// NewFileWriteTool creates a FileWriteTool rooted at the given workspace.
func NewFileWriteTool(workspace string) *FileWriteTool {
	return &FileWriteTool{Workspace: workspace}
}

func (t *FileWriteTool) Name() string { return "write_file" }

func (t *FileWriteTool) Description() string {
	return "Write content to a file on the filesystem"
}

func (t *FileWriteTool) Parameters() []Parameter {
	return []Parameter{
		{Name: "file_path", Type: "string", Description: "The path to the file to write", Required: true},
		{Name: "content", Type: "string", Description: "The content to write to the file", Required: true},
	}
}

func (t *FileWriteTool) Execute(ctx context.Context, args map[string]any) Result {
	path, ok := StringArg(args, "file_path")
	if !ok || path == "" {
		return Errorf("file_path is required")
	}
	content, ok := StringArg(args, "content")
	if !ok {
		return Errorf("content is required")
	}
	resolved := resolvePath(t.Workspace, path)

	if dir := filepath.Dir(resolved); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return Errorf("error creating directory: %v", err)
		}
	}
	if err := os.WriteFile(resolved, []byte(content), 0o644); err != nil {
		return Errorf("error writing file: %v", err)
	}

	return Ok(map[string]any{
		"file_path":     path,
		"bytes_written": len(content),
	})
}

// FileListTool lists entries of a directory, split into files and
// subdirectories.
type FileListTool struct {
	Workspace string
}

// NewFileListTool creates a FileListTool rooted at the given workspace.
func NewFileListTool(workspace string) *FileListTool {
	return &FileListTool{Workspace: workspace}
}

func (t *FileListTool) Name() string { return "list_files" }

func (t *FileListTool) Description() string {
	return "List files and directories in a given path"
}

func (t *FileListTool) Parameters() []Parameter {
	return []Parameter{
		{Name: "directory_path", Type: "string", Description: "The directory path to list files from", Required: true},
	}
}

func (t *FileListTool) Execute(ctx context.Context, args map[string]any) Result {
	path, ok := StringArg(args, "directory_path")
	if !ok || path == "" {
		return Errorf("directory_path is required")
	}
	resolved := resolvePath(t.Workspace, path)

	entries, err := os.ReadDir(resolved)
	if err != nil {
		if os.IsNotExist(err) {
			return Errorf("directory not found: %s", path)
		}
		return Errorf("error listing directory: %v", err)
	}

	files := make([]string, 0)
	directories := make([]string, 0)
	for _, entry := range entries {
		if entry.IsDir() {
			directories = append(directories, entry.Name())
		} else {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)
	sort.Strings(directories)

	return Ok(map[string]any{
		"directory_path": path,
		"files":          files,
		"directories":    directories,
		"total_items":    len(entries),
	})
}
