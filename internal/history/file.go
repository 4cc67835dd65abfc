package history

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"github.com/lbianchi/customgpt-go/internal/chat"
	"github.com/lbianchi/customgpt-go/internal/logger"
)

// FileStore keeps the log in a single indented JSON file. Writes go through a
// temp file plus rename so a concurrent reader never sees a partial file, and
// an advisory flock serializes writers that share the same path.
type FileStore struct {
	path          string
	backupOnClear bool
	lock          *flock.Flock
}

func NewFileStore(path string, backupOnClear bool) *FileStore {
	return &FileStore{
		path:          path,
		backupOnClear: backupOnClear,
		lock:          flock.New(path + ".lock"),
	}
}

func (s *FileStore) Load() ([]chat.Message, error) {
	if err := s.lock.Lock(); err != nil {
		return nil, &PersistenceError{Op: "lock", Path: s.path, Err: err}
	}
	defer s.unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []chat.Message{}, nil
	}
	if err != nil {
		return nil, &PersistenceError{Op: "load", Path: s.path, Err: err}
	}
	return s.parse(data)
}

func (s *FileStore) parse(data []byte) ([]chat.Message, error) {
	// Histories written before the versioned envelope are a bare array.
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '[' {
		var messages []chat.Message
		if err := json.Unmarshal(trimmed, &messages); err != nil {
			return nil, &PersistenceError{Op: "load", Path: s.path, Err: err}
		}
		return messages, nil
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, &PersistenceError{Op: "load", Path: s.path, Err: err}
	}
	if env.Version > schemaVersion {
		return nil, &PersistenceError{Op: "load", Path: s.path, Err: fmt.Errorf("unsupported schema version %d", env.Version)}
	}
	if env.Messages == nil {
		env.Messages = []chat.Message{}
	}
	return env.Messages, nil
}

func (s *FileStore) Save(messages []chat.Message) error {
	if err := s.lock.Lock(); err != nil {
		return &PersistenceError{Op: "lock", Path: s.path, Err: err}
	}
	defer s.unlock()
	return s.writeLocked(messages)
}

func (s *FileStore) writeLocked(messages []chat.Message) error {
	if messages == nil {
		messages = []chat.Message{}
	}
	data, err := json.MarshalIndent(envelope{Version: schemaVersion, Messages: messages}, "", "  ")
	if err != nil {
		return &PersistenceError{Op: "save", Path: s.path, Err: err}
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".history-*.json")
	if err != nil {
		return &PersistenceError{Op: "save", Path: s.path, Err: err}
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return &PersistenceError{Op: "save", Path: s.path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return &PersistenceError{Op: "save", Path: s.path, Err: err}
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return &PersistenceError{Op: "save", Path: s.path, Err: err}
	}
	return nil
}

// Clear resets the log to empty. When backup rotation is enabled the previous
// file is kept under a timestamped name instead of being discarded.
func (s *FileStore) Clear() error {
	if err := s.lock.Lock(); err != nil {
		return &PersistenceError{Op: "lock", Path: s.path, Err: err}
	}
	defer s.unlock()

	if s.backupOnClear {
		data, err := os.ReadFile(s.path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			// nothing to rotate
		case err != nil:
			return &PersistenceError{Op: "backup", Path: s.path, Err: err}
		default:
			backup := fmt.Sprintf("%s.%s.bak", s.path, time.Now().UTC().Format("20060102T150405"))
			if err := os.WriteFile(backup, data, 0o644); err != nil {
				return &PersistenceError{Op: "backup", Path: backup, Err: err}
			}
			logger.L.Info("rotated history before clear", "backup", backup)
		}
	}
	return s.writeLocked(nil)
}

func (s *FileStore) unlock() {
	if err := s.lock.Unlock(); err != nil {
		logger.L.Warn("history unlock failed", "path", s.path, "error", err)
	}
}
