package history

import (
	"database/sql"
	"time"

	_ "github.com/glebarez/go-sqlite"

	"github.com/lbianchi/customgpt-go/internal/chat"
)

// SQLiteStore keeps the log in a SQLite database. Save is a transactional
// full overwrite so the table always mirrors the in-memory sequence, matching
// the Store contract of the file backend; the engine serializes writers.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", "file:"+path+"?_busy_timeout=10000")
	if err != nil {
		return nil, &PersistenceError{Op: "open", Path: path, Err: err}
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS messages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		role TEXT NOT NULL,
		content TEXT NOT NULL,
		created_at TEXT NOT NULL
	);`); err != nil {
		db.Close()
		return nil, &PersistenceError{Op: "init", Path: path, Err: err}
	}
	return &SQLiteStore{db: db, path: path}, nil
}

func (s *SQLiteStore) Load() ([]chat.Message, error) {
	rows, err := s.db.Query(`SELECT role, content, created_at FROM messages ORDER BY id ASC;`)
	if err != nil {
		return nil, &PersistenceError{Op: "load", Path: s.path, Err: err}
	}
	defer rows.Close()

	messages := []chat.Message{}
	for rows.Next() {
		var role, content, createdAt string
		if err := rows.Scan(&role, &content, &createdAt); err != nil {
			return nil, &PersistenceError{Op: "load", Path: s.path, Err: err}
		}
		var m chat.Message
		if err := m.Content.UnmarshalJSON([]byte(content)); err != nil {
			return nil, &PersistenceError{Op: "load", Path: s.path, Err: err}
		}
		m.Role = chat.Role(role)
		ts, err := time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, &PersistenceError{Op: "load", Path: s.path, Err: err}
		}
		m.Timestamp = ts
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, &PersistenceError{Op: "load", Path: s.path, Err: err}
	}
	return messages, nil
}

func (s *SQLiteStore) Save(messages []chat.Message) error {
	tx, err := s.db.Begin()
	if err != nil {
		return &PersistenceError{Op: "save", Path: s.path, Err: err}
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM messages;`); err != nil {
		return &PersistenceError{Op: "save", Path: s.path, Err: err}
	}
	for _, m := range messages {
		content, err := m.Content.MarshalJSON()
		if err != nil {
			return &PersistenceError{Op: "save", Path: s.path, Err: err}
		}
		if _, err := tx.Exec(`INSERT INTO messages (role, content, created_at) VALUES (?,?,?);`,
			string(m.Role), string(content), m.Timestamp.UTC().Format(time.RFC3339Nano)); err != nil {
			return &PersistenceError{Op: "save", Path: s.path, Err: err}
		}
	}
	if err := tx.Commit(); err != nil {
		return &PersistenceError{Op: "save", Path: s.path, Err: err}
	}
	return nil
}

func (s *SQLiteStore) Clear() error {
	return s.Save(nil)
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
