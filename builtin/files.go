package builtin

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/petal-labs/anther/tool"
)

// FileTools implements the workspace file CRUD tools. Every operation is
// confined to the configured workspace root; filenames must be bare names.
// Concurrent writes to the same filename are last-writer-wins, no locking.
type FileTools struct {
	root string
}

// NewFileTools creates file tools rooted at workspace. The directory is
// created if it does not exist.
func NewFileTools(workspace string) (*FileTools, error) {
	clean := strings.TrimSpace(workspace)
	if clean == "" {
		return nil, fmt.Errorf("builtin: workspace root is required")
	}
	clean = filepath.Clean(clean)
	if err := os.MkdirAll(clean, 0o755); err != nil {
		return nil, fmt.Errorf("builtin: create workspace %q: %w", clean, err)
	}
	return &FileTools{root: clean}, nil
}

// Root returns the workspace root path.
func (f *FileTools) Root() string {
	return f.root
}

// Descriptors returns the registrations for all file tools.
func (f *FileTools) Descriptors() []tool.Descriptor {
	return []tool.Descriptor{
		{
			Name:        "create_file",
			Description: "Create a new file with the given content.",
			Params: []tool.Param{
				{Name: "filename", Type: tool.TypeString, Required: true, Description: "Name of the file to create"},
				{Name: "content", Type: tool.TypeString, Required: true, Description: "Content to write to the file"},
			},
			Handler: f.createFile,
		},
		{
			Name:        "read_file",
			Description: "Read the content of a file.",
			Params: []tool.Param{
				{Name: "filename", Type: tool.TypeString, Required: true, Description: "Name of the file to read"},
			},
			Handler: f.readFile,
		},
		{
			Name:        "list_files",
			Description: "List all files in the workspace directory.",
			Params:      []tool.Param{},
			Handler:     f.listFiles,
		},
		{
			Name:        "delete_file",
			Description: "Delete a file from the workspace.",
			Params: []tool.Param{
				{Name: "filename", Type: tool.TypeString, Required: true, Description: "Name of the file to delete"},
			},
			Handler: f.deleteFile,
		},
	}
}

// resolve validates a filename and joins it under the workspace root.
func (f *FileTools) resolve(filename string) (string, error) {
	if filename == "" {
		return "", tool.InvalidArgumentsError("filename must not be empty")
	}
	if filename != filepath.Base(filename) || filename == "." || filename == ".." {
		return "", tool.InvalidArgumentsError("filename %q must be a bare file name", filename)
	}
	if strings.ContainsAny(filename, `/\`) {
		return "", tool.InvalidArgumentsError("filename %q must not contain path separators", filename)
	}
	return filepath.Join(f.root, filename), nil
}

func (f *FileTools) createFile(_ context.Context, args map[string]any) (map[string]any, error) {
	filename := args["filename"].(string)
	content := args["content"].(string)

	path, err := f.resolve(filename)
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(path); err == nil {
		return nil, tool.NewError(tool.KindHandlerError,
			fmt.Sprintf("file %q already exists", filename), nil)
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("stat %q: %w", filename, err)
	}

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}

	return map[string]any{
		"message": fmt.Sprintf("File %s created successfully", filename),
		"path":    path,
		"size":    len(content),
	}, nil
}

func (f *FileTools) readFile(_ context.Context, args map[string]any) (map[string]any, error) {
	filename := args["filename"].(string)

	path, err := f.resolve(filename)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, tool.NotFoundError("file %q does not exist", filename)
	} else if err != nil {
		return nil, fmt.Errorf("stat %q: %w", filename, err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	return map[string]any{
		"filename": filename,
		"content":  string(content),
		"size":     len(content),
		"modified": info.ModTime().UTC().Format(time.RFC3339),
	}, nil
}

func (f *FileTools) listFiles(_ context.Context, _ map[string]any) (map[string]any, error) {
	entries, err := os.ReadDir(f.root)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}

	// ReadDir returns name-sorted entries, which keeps the listing
	// deterministic even though directory order itself is not stable.
	files := make([]map[string]any, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %q: %w", entry.Name(), err)
		}
		files = append(files, map[string]any{
			"name":     entry.Name(),
			"size":     info.Size(),
			"modified": info.ModTime().UTC().Format(time.RFC3339),
			"path":     filepath.Join(f.root, entry.Name()),
		})
	}

	return map[string]any{
		"files":     files,
		"count":     len(files),
		"workspace": f.root,
	}, nil
}

func (f *FileTools) deleteFile(_ context.Context, args map[string]any) (map[string]any, error) {
	filename := args["filename"].(string)

	path, err := f.resolve(filename)
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, tool.NotFoundError("file %q does not exist", filename)
	} else if err != nil {
		return nil, fmt.Errorf("stat %q: %w", filename, err)
	}

	if err := os.Remove(path); err != nil {
		return nil, fmt.Errorf("failed to delete file: %w", err)
	}

	return map[string]any{
		"message": fmt.Sprintf("File %s deleted successfully", filename),
	}, nil
}
