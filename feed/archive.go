package feed

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Archive persists fetched feed documents on disk so the processing phase
// can run independently of the download phase. Documents are grouped per
// source name and stamped with the fetch time.
type Archive struct {
	root string
}

// NewArchive creates an Archive rooted at dir, creating it if needed.
func NewArchive(dir string) (*Archive, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create archive dir: %w", err)
	}
	return &Archive{root: dir}, nil
}

// Save writes a feed document for the named source and returns its path.
func (a *Archive) Save(source string, raw []byte) (string, error) {
	dir := filepath.Join(a.root, sanitizeSource(source))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create source dir: %w", err)
	}

	// Suffix on collision so two fetches within the same second both survive.
	stamp := time.Now().UTC().Format("20060102_150405")
	path := filepath.Join(dir, fmt.Sprintf("feed_%s.xml", stamp))
	for i := 1; ; i++ {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			break
		}
		path = filepath.Join(dir, fmt.Sprintf("feed_%s_%d.xml", stamp, i))
	}

	if err := os.WriteFile(path, raw, 0644); err != nil {
		return "", fmt.Errorf("write feed file: %w", err)
	}
	return path, nil
}

// List returns the archived document paths for a source, oldest first.
// The timestamped names make lexicographic order chronological.
func (a *Archive) List(source string) ([]string, error) {
	dir := filepath.Join(a.root, sanitizeSource(source))
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".xml") {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// Read returns the raw bytes of an archived document.
func (a *Archive) Read(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// Remove deletes an archived document. Missing files are not an error.
func (a *Archive) Remove(path string) error {
	err := os.Remove(path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// sanitizeSource maps a source name to a directory-safe form.
func sanitizeSource(source string) string {
	replacer := strings.NewReplacer("/", "_", ":", "_", " ", "_", "?", "_", "&", "_")
	return replacer.Replace(source)
}
