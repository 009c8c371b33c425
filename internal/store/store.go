// Package store keeps a SQLite history of finished transcription requests.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"github.com/leonardotrapani/scribebot/internal/chat"
	"github.com/leonardotrapani/scribebot/internal/logging"
	"github.com/leonardotrapani/scribebot/internal/pipeline"
)

var ErrNotFound = errors.New("transcription not found")

// fixed width so created_at sorts as text
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Record is one stored request outcome.
type Record struct {
	ID            int64         `json:"id"`
	RequestID     string        `json:"requestId"`
	ChatID        int64         `json:"chatId"`
	Sender        string        `json:"sender,omitempty"`
	Kind          chat.Kind     `json:"kind,omitempty"`
	Status        string        `json:"status"`
	ErrorKind     string        `json:"errorKind,omitempty"`
	Error         string        `json:"error,omitempty"`
	Text          string        `json:"text"`
	Chunks        int           `json:"chunks"`
	AudioDuration time.Duration `json:"audioDurationNs"`
	Elapsed       time.Duration `json:"elapsedNs"`
	CreatedAt     time.Time     `json:"createdAt"`
}

type Store struct {
	db     *sql.DB
	logger zerolog.Logger
}

// Open creates the database at path, or an in-memory one for ":memory:".
func Open(path string) (*Store, error) {
	logger := logging.WithComponent("store")

	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// one writer at a time; also keeps :memory: on a single connection
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set %q: %w", pragma, err)
		}
	}

	s := &Store{db: db, logger: logger}
	if err := s.initDB(); err != nil {
		db.Close()
		return nil, err
	}
	logger.Info().Str("path", path).Msg("history store opened")
	return s, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) initDB() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS transcriptions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			request_id TEXT NOT NULL UNIQUE,
			chat_id INTEGER NOT NULL,
			sender TEXT,
			kind TEXT,
			status TEXT NOT NULL,
			error_kind TEXT,
			error TEXT,
			content TEXT NOT NULL,
			chunks INTEGER NOT NULL,
			audio_ms INTEGER NOT NULL,
			elapsed_ms INTEGER NOT NULL,
			created_at TEXT NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create transcriptions table: %w", err)
	}

	if _, err := s.db.Exec(`CREATE INDEX IF NOT EXISTS idx_chat_id ON transcriptions(chat_id)`); err != nil {
		return fmt.Errorf("failed to create chat_id index: %w", err)
	}
	if _, err := s.db.Exec(`CREATE INDEX IF NOT EXISTS idx_created_at ON transcriptions(created_at)`); err != nil {
		return fmt.Errorf("failed to create created_at index: %w", err)
	}
	return nil
}

// Record stores a finished request; it satisfies pipeline.Recorder.
func (s *Store) Record(ctx context.Context, o pipeline.Outcome) error {
	created := o.FinishedAt
	if created.IsZero() {
		created = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO transcriptions
		(request_id, chat_id, sender, kind, status, error_kind, error, content, chunks, audio_ms, elapsed_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.RequestID,
		o.ChatID,
		o.Sender,
		string(o.Kind),
		string(o.Status),
		string(o.ErrorKind),
		o.Error,
		o.Text,
		o.Chunks,
		o.AudioDuration.Milliseconds(),
		o.Elapsed.Milliseconds(),
		created.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to insert transcription: %w", err)
	}
	return nil
}

const selectColumns = `SELECT id, request_id, chat_id, sender, kind, status, error_kind, error, content, chunks, audio_ms, elapsed_ms, created_at FROM transcriptions`

// Recent returns the newest records first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, selectColumns+` ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query transcriptions: %w", err)
	}
	return scanAll(rows)
}

// ByChat returns the newest records of one chat first.
func (s *Store) ByChat(ctx context.Context, chatID int64, limit int) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, selectColumns+` WHERE chat_id = ? ORDER BY created_at DESC, id DESC LIMIT ?`, chatID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query transcriptions by chat: %w", err)
	}
	return scanAll(rows)
}

func (s *Store) Get(ctx context.Context, requestID string) (Record, error) {
	rows, err := s.db.QueryContext(ctx, selectColumns+` WHERE request_id = ?`, requestID)
	if err != nil {
		return Record{}, fmt.Errorf("failed to query transcription: %w", err)
	}
	records, err := scanAll(rows)
	if err != nil {
		return Record{}, err
	}
	if len(records) == 0 {
		return Record{}, ErrNotFound
	}
	return records[0], nil
}

func scanAll(rows *sql.Rows) ([]Record, error) {
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var (
			r                          Record
			sender, kind, errKind, msg sql.NullString
			audioMs, elapsedMs         int64
			createdAt                  string
		)
		if err := rows.Scan(
			&r.ID,
			&r.RequestID,
			&r.ChatID,
			&sender,
			&kind,
			&r.Status,
			&errKind,
			&msg,
			&r.Text,
			&r.Chunks,
			&audioMs,
			&elapsedMs,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan transcription: %w", err)
		}

		created, err := time.Parse(timeLayout, createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}
		r.CreatedAt = created
		r.Sender = sender.String
		r.Kind = chat.Kind(kind.String)
		r.ErrorKind = errKind.String
		r.Error = msg.String
		r.AudioDuration = time.Duration(audioMs) * time.Millisecond
		r.Elapsed = time.Duration(elapsedMs) * time.Millisecond
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read transcriptions: %w", err)
	}
	return records, nil
}
