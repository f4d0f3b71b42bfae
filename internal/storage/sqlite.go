package storage

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mironism/helsi/internal"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaFS embed.FS

// SQLiteStorage is the embedded-database backend. Timestamps are stored
// as RFC 3339 strings; survey answers and extracted data as JSON text.
type SQLiteStorage struct {
	db     *sql.DB
	logger internal.Logger
}

func NewSQLiteStorage(dbPath string, logger internal.Logger) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("error enabling foreign keys: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		return nil, fmt.Errorf("error enabling WAL mode: %w", err)
	}

	schema, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return nil, fmt.Errorf("error reading schema file: %w", err)
	}
	if _, err := db.Exec(string(schema)); err != nil {
		return nil, fmt.Errorf("error initializing schema: %w", err)
	}

	return &SQLiteStorage{db: db, logger: logger}, nil
}

func (s *SQLiteStorage) Close() error { return s.db.Close() }

func formatTime(t time.Time) string { return t.UTC().Format(time.RFC3339Nano) }

func parseTime(v string) (time.Time, error) { return time.Parse(time.RFC3339Nano, v) }

// --- UserRepository ---

func (s *SQLiteStorage) GetUser(ctx context.Context) (*internal.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, name, avatar_type, survey_answers, xp, streak, last_log_date, created_at FROM users LIMIT 1`)

	var (
		u           internal.User
		answersJSON string
		lastLog     sql.NullString
		createdAt   string
	)
	if err := row.Scan(&u.ID, &u.Name, &u.AvatarType, &answersJSON, &u.XP, &u.Streak, &lastLog, &createdAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		s.logger.Errorf("failed to query user: %v", err)
		return nil, err
	}
	if err := json.Unmarshal([]byte(answersJSON), &u.SurveyAnswers); err != nil {
		return nil, err
	}
	if lastLog.Valid {
		t, err := parseTime(lastLog.String)
		if err != nil {
			return nil, err
		}
		u.LastLogDate = &t
	}
	t, err := parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	u.CreatedAt = t
	return &u, nil
}

func (s *SQLiteStorage) SaveUser(ctx context.Context, user *internal.User) error {
	answersJSON, err := json.Marshal(user.SurveyAnswers)
	if err != nil {
		return err
	}
	var lastLog interface{}
	if user.LastLogDate != nil {
		lastLog = formatTime(*user.LastLogDate)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO users (id, name, avatar_type, survey_answers, xp, streak, last_log_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			avatar_type = excluded.avatar_type,
			survey_answers = excluded.survey_answers,
			xp = excluded.xp,
			streak = excluded.streak,
			last_log_date = excluded.last_log_date`,
		user.ID, user.Name, user.AvatarType, string(answersJSON), user.XP, user.Streak, lastLog, formatTime(user.CreatedAt))
	if err != nil {
		s.logger.Errorf("failed to save user: %v", err)
	}
	return err
}

// --- LogRepository ---

func (s *SQLiteStorage) AppendLog(ctx context.Context, log *internal.Log) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO logs (id, user_id, timestamp, food, sleep, mood, stress, supplements) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		log.ID, log.UserID, formatTime(log.Timestamp), log.Food, log.Sleep, log.Mood, log.Stress, log.Supplements)
	if err != nil {
		s.logger.Errorf("failed to insert log: %v", err)
	}
	return err
}

func (s *SQLiteStorage) ListLogs(ctx context.Context, userID string) ([]internal.Log, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, user_id, timestamp, food, sleep, mood, stress, supplements FROM logs WHERE user_id = ? ORDER BY rowid`, userID)
	if err != nil {
		s.logger.Errorf("failed to query logs: %v", err)
		return nil, err
	}
	defer rows.Close()

	logs := []internal.Log{}
	for rows.Next() {
		var (
			l  internal.Log
			ts string
		)
		if err := rows.Scan(&l.ID, &l.UserID, &ts, &l.Food, &l.Sleep, &l.Mood, &l.Stress, &l.Supplements); err != nil {
			return nil, err
		}
		t, err := parseTime(ts)
		if err != nil {
			return nil, err
		}
		l.Timestamp = t
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

// --- DocumentRepository ---

func (s *SQLiteStorage) SaveDocument(ctx context.Context, doc *internal.MedicalDocument) error {
	data, err := marshalExtractedData(doc.ExtractedData)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO documents (id, upload_date, user_id, file_name, file_type, file_size, mime_type, processing_status, extracted_data)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		doc.ID, formatTime(doc.UploadDate), doc.UserID, doc.FileName, doc.FileType, doc.FileSize, doc.MimeType, doc.ProcessingStatus, data)
	if err != nil {
		s.logger.Errorf("failed to insert document: %v", err)
	}
	return err
}

func (s *SQLiteStorage) UpdateDocument(ctx context.Context, doc *internal.MedicalDocument) error {
	data, err := marshalExtractedData(doc.ExtractedData)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `UPDATE documents SET processing_status = ?, extracted_data = ? WHERE id = ?`,
		doc.ProcessingStatus, data, doc.ID)
	if err != nil {
		s.logger.Errorf("failed to update document: %v", err)
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("storage: document %s not found", doc.ID)
	}
	return nil
}

func (s *SQLiteStorage) GetDocument(ctx context.Context, id string) (*internal.MedicalDocument, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, upload_date, user_id, file_name, file_type, file_size, mime_type, processing_status, extracted_data FROM documents WHERE id = ?`, id)
	doc, err := scanDocument(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return doc, err
}

func (s *SQLiteStorage) ListDocuments(ctx context.Context, userID string) ([]internal.MedicalDocument, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, upload_date, user_id, file_name, file_type, file_size, mime_type, processing_status, extracted_data FROM documents WHERE user_id = ? ORDER BY rowid`, userID)
	if err != nil {
		s.logger.Errorf("failed to query documents: %v", err)
		return nil, err
	}
	defer rows.Close()

	docs := []internal.MedicalDocument{}
	for rows.Next() {
		doc, err := scanDocument(rows.Scan)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}
	return docs, rows.Err()
}

func marshalExtractedData(data *internal.ExtractedMedicalData) (interface{}, error) {
	if data == nil {
		return nil, nil
	}
	b, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func scanDocument(scan func(dest ...interface{}) error) (*internal.MedicalDocument, error) {
	var (
		d        internal.MedicalDocument
		uploaded string
		data     sql.NullString
	)
	if err := scan(&d.ID, &uploaded, &d.UserID, &d.FileName, &d.FileType, &d.FileSize, &d.MimeType, &d.ProcessingStatus, &data); err != nil {
		return nil, err
	}
	t, err := parseTime(uploaded)
	if err != nil {
		return nil, err
	}
	d.UploadDate = t
	if data.Valid && data.String != "" {
		var extracted internal.ExtractedMedicalData
		if err := json.Unmarshal([]byte(data.String), &extracted); err != nil {
			return nil, err
		}
		d.ExtractedData = &extracted
	}
	return &d, nil
}

// --- Resetter ---

func (s *SQLiteStorage) Reset(ctx context.Context) error {
	for _, table := range []string{"users", "logs", "documents"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			s.logger.Errorf("failed to reset %s: %v", table, err)
			return err
		}
	}
	return nil
}

// --- Compile-time assertions ---
var _ Store = (*SQLiteStorage)(nil)
