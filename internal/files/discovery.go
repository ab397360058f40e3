package files

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// FileInfo represents information about a discovered file
type FileInfo struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
	IsDir   bool
}

// Stem returns the file name without its extension, used as the
// measurement name.
func (fi FileInfo) Stem() string {
	return strings.TrimSuffix(fi.Name, filepath.Ext(fi.Name))
}

// Discovery provides file discovery operations
type Discovery struct {
	basePath string
}

// NewDiscovery creates a new file discovery instance
func NewDiscovery(basePath string) *Discovery {
	return &Discovery{basePath: basePath}
}

// FindRecordFiles finds all files with the given extension anywhere under
// the directory tree. Matching is case-insensitive. Results are sorted by
// path so discovery order is stable.
func (d *Discovery) FindRecordFiles(dir string, ext string) ([]FileInfo, error) {
	fullPath := d.resolve(dir)
	wantExt := strings.ToLower(ext)

	var files []FileInfo
	err := filepath.WalkDir(fullPath, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}
		if strings.ToLower(filepath.Ext(entry.Name())) != wantExt {
			return nil
		}
		info, err := entry.Info()
		if err != nil {
			return nil
		}
		files = append(files, FileInfo{
			Path:    path,
			Name:    entry.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
			IsDir:   false,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan directory %s: %w", fullPath, err)
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Path < files[j].Path
	})

	return files, nil
}

// ListDirectories lists all immediate subdirectories of the specified
// directory, sorted by name.
func (d *Discovery) ListDirectories(dir string) ([]FileInfo, error) {
	fullPath := d.resolve(dir)

	entries, err := os.ReadDir(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", fullPath, err)
	}

	var dirs []FileInfo
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		dirs = append(dirs, FileInfo{
			Path:    filepath.Join(fullPath, entry.Name()),
			Name:    entry.Name(),
			ModTime: info.ModTime(),
			IsDir:   true,
		})
	}

	sort.Slice(dirs, func(i, j int) bool {
		return dirs[i].Name < dirs[j].Name
	})

	return dirs, nil
}

// resolve joins dir with the base path unless dir is already absolute.
func (d *Discovery) resolve(dir string) string {
	if filepath.IsAbs(dir) || d.basePath == "" {
		return dir
	}
	if dir == "." {
		return d.basePath
	}
	return filepath.Join(d.basePath, dir)
}
