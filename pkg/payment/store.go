package payment

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

const (
	// DefaultRecipientsFileName is used when no path is configured.
	DefaultRecipientsFileName = ".anyspend-recipients.json"

	maxRecents = 10
)

// RecipientStore persists previously used recipient addresses. The widget's
// browser build backs this with localStorage; the CLI uses FileStore.
type RecipientStore interface {
	Recents() ([]string, error)
	Add(addr string) error
}

// FileStore is a JSON-file RecipientStore, most recent first.
type FileStore struct {
	filePath string
	mu       sync.Mutex
	recents  []string
}

type recipientsFile struct {
	Recents []string `json:"recents"`
}

// NewFileStore opens (or lazily creates) a file-backed store. Empty filePath
// defaults to DefaultRecipientsFileName in the home directory.
func NewFileStore(filePath string) (*FileStore, error) {
	if filePath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		filePath = filepath.Join(home, DefaultRecipientsFileName)
	}

	s := &FileStore{filePath: filePath}
	if err := s.load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load recipients: %w", err)
		}
	}
	return s, nil
}

// Recents returns stored addresses, most recent first.
func (s *FileStore) Recents() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, len(s.recents))
	copy(out, s.recents)
	return out, nil
}

// Add records an address as most recently used, deduplicating and keeping at
// most maxRecents entries.
func (s *FileStore) Add(addr string) error {
	if addr == "" {
		return fmt.Errorf("recipient address is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	recents := make([]string, 0, len(s.recents)+1)
	recents = append(recents, addr)
	for _, r := range s.recents {
		if r != addr {
			recents = append(recents, r)
		}
	}
	if len(recents) > maxRecents {
		recents = recents[:maxRecents]
	}
	s.recents = recents

	return s.save()
}

func (s *FileStore) load() error {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		return err
	}

	var f recipientsFile
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("failed to unmarshal recipients: %w", err)
	}
	s.recents = f.Recents
	return nil
}

func (s *FileStore) save() error {
	data, err := json.MarshalIndent(recipientsFile{Recents: s.recents}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal recipients: %w", err)
	}

	dir := filepath.Dir(s.filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	// Write to a temporary file first, then rename for atomic write
	tempFile := s.filePath + ".tmp"
	if err := os.WriteFile(tempFile, data, 0600); err != nil {
		return fmt.Errorf("failed to write recipients: %w", err)
	}
	if err := os.Rename(tempFile, s.filePath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}
