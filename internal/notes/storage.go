package notes

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Storage keeps notes as <name>.md files in a directory, mirrored into
// an in-memory map so listing never touches the disk.
type Storage struct {
	dir string

	mu    sync.RWMutex
	notes map[string]string
}

func NewStorage(dir string) *Storage {
	return &Storage{
		dir:   dir,
		notes: make(map[string]string),
	}
}

// Load creates the notes directory if needed and reads every existing
// .md file into memory.
func (s *Storage) Load() error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create notes directory: %w", err)
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("failed to read notes directory: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".md" {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), ".md")
		data, err := os.ReadFile(filepath.Join(s.dir, entry.Name()))
		if err != nil {
			return fmt.Errorf("failed to read note %q: %w", name, err)
		}
		s.notes[name] = string(data)
	}
	return nil
}

// Save writes the note to disk first, then updates the map.
func (s *Storage) Save(name, content string) error {
	path := filepath.Join(s.dir, name+".md")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write note %q: %w", name, err)
	}

	s.mu.Lock()
	s.notes[name] = content
	s.mu.Unlock()
	return nil
}

// List returns all note names, sorted for stable output.
func (s *Storage) List() []string {
	s.mu.RLock()
	names := make([]string, 0, len(s.notes))
	for name := range s.notes {
		names = append(names, name)
	}
	s.mu.RUnlock()

	sort.Strings(names)
	return names
}

// Get returns a note's content and whether it exists.
func (s *Storage) Get(name string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	content, ok := s.notes[name]
	return content, ok
}
