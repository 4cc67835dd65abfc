// Package history persists the ordered exchange log. The sole persisted
// representation is the full message sequence; Save is a whole-log overwrite.
package history

import (
	"fmt"

	"github.com/lbianchi/customgpt-go/internal/chat"
)

// Store is the durable log of exchanged messages.
//
// Load returns the persisted sequence, or an empty sequence when nothing has
// been written yet; a read or parse failure surfaces a *PersistenceError so
// "never written" and "corrupt" stay distinguishable. Save atomically
// overwrites the persisted representation. Clear resets it to empty.
type Store interface {
	Load() ([]chat.Message, error)
	Save(messages []chat.Message) error
	Clear() error
}

// PersistenceError reports an I/O or parse failure on load or save.
type PersistenceError struct {
	Op   string
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("history %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// schemaVersion tags the persisted file format.
const schemaVersion = 1

type envelope struct {
	Version  int            `json:"version"`
	Messages []chat.Message `json:"messages"`
}
