package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mironism/helsi/internal"
)

type PostgresStorage struct {
	pool   *pgxpool.Pool
	logger internal.Logger
}

func NewPostgresStorage(dsn string, logger internal.Logger) (*PostgresStorage, error) {
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		logger.Errorf("failed to connect to postgres: %v", err)
		return nil, err
	}
	return &PostgresStorage{pool: pool, logger: logger}, nil
}

func (p *PostgresStorage) Close() error {
	p.pool.Close()
	return nil
}

// --- UserRepository ---

func (p *PostgresStorage) GetUser(ctx context.Context) (*internal.User, error) {
	row := p.pool.QueryRow(ctx, `SELECT id, name, avatar_type, survey_answers, xp, streak, last_log_date, created_at FROM users LIMIT 1`)

	var (
		u           internal.User
		answersJSON []byte
		lastLog     *time.Time
	)
	if err := row.Scan(&u.ID, &u.Name, &u.AvatarType, &answersJSON, &u.XP, &u.Streak, &lastLog, &u.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		p.logger.Errorf("failed to query user: %v", err)
		return nil, err
	}
	if err := json.Unmarshal(answersJSON, &u.SurveyAnswers); err != nil {
		return nil, err
	}
	u.LastLogDate = lastLog
	return &u, nil
}

func (p *PostgresStorage) SaveUser(ctx context.Context, user *internal.User) error {
	answersJSON, err := json.Marshal(user.SurveyAnswers)
	if err != nil {
		return err
	}
	_, err = p.pool.Exec(ctx, `
		INSERT INTO users (id, name, avatar_type, survey_answers, xp, streak, last_log_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			avatar_type = EXCLUDED.avatar_type,
			survey_answers = EXCLUDED.survey_answers,
			xp = EXCLUDED.xp,
			streak = EXCLUDED.streak,
			last_log_date = EXCLUDED.last_log_date`,
		user.ID, user.Name, user.AvatarType, answersJSON, user.XP, user.Streak, user.LastLogDate, user.CreatedAt)
	if err != nil {
		p.logger.Errorf("failed to save user: %v", err)
	}
	return err
}

// --- LogRepository ---

func (p *PostgresStorage) AppendLog(ctx context.Context, log *internal.Log) error {
	_, err := p.pool.Exec(ctx, `INSERT INTO logs (id, user_id, timestamp, food, sleep, mood, stress, supplements) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		log.ID, log.UserID, log.Timestamp, log.Food, log.Sleep, log.Mood, log.Stress, log.Supplements)
	if err != nil {
		p.logger.Errorf("failed to insert log: %v", err)
	}
	return err
}

func (p *PostgresStorage) ListLogs(ctx context.Context, userID string) ([]internal.Log, error) {
	rows, err := p.pool.Query(ctx, `SELECT id, user_id, timestamp, food, sleep, mood, stress, supplements FROM logs WHERE user_id = $1 ORDER BY timestamp, id`, userID)
	if err != nil {
		p.logger.Errorf("failed to query logs: %v", err)
		return nil, err
	}
	defer rows.Close()

	logs := []internal.Log{}
	for rows.Next() {
		var l internal.Log
		if err := rows.Scan(&l.ID, &l.UserID, &l.Timestamp, &l.Food, &l.Sleep, &l.Mood, &l.Stress, &l.Supplements); err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

// --- DocumentRepository ---

func (p *PostgresStorage) SaveDocument(ctx context.Context, doc *internal.MedicalDocument) error {
	data, err := marshalExtractedData(doc.ExtractedData)
	if err != nil {
		return err
	}
	_, err = p.pool.Exec(ctx, `
		INSERT INTO documents (id, upload_date, user_id, file_name, file_type, file_size, mime_type, processing_status, extracted_data)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		doc.ID, doc.UploadDate, doc.UserID, doc.FileName, doc.FileType, doc.FileSize, doc.MimeType, doc.ProcessingStatus, data)
	if err != nil {
		p.logger.Errorf("failed to insert document: %v", err)
	}
	return err
}

func (p *PostgresStorage) UpdateDocument(ctx context.Context, doc *internal.MedicalDocument) error {
	data, err := marshalExtractedData(doc.ExtractedData)
	if err != nil {
		return err
	}
	tag, err := p.pool.Exec(ctx, `UPDATE documents SET processing_status = $1, extracted_data = $2 WHERE id = $3`,
		doc.ProcessingStatus, data, doc.ID)
	if err != nil {
		p.logger.Errorf("failed to update document: %v", err)
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("storage: document %s not found", doc.ID)
	}
	return nil
}

func (p *PostgresStorage) GetDocument(ctx context.Context, id string) (*internal.MedicalDocument, error) {
	row := p.pool.QueryRow(ctx, `SELECT id, upload_date, user_id, file_name, file_type, file_size, mime_type, processing_status, extracted_data FROM documents WHERE id = $1`, id)
	doc, err := scanPgDocument(row.Scan)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		p.logger.Errorf("failed to query document: %v", err)
		return nil, err
	}
	return doc, nil
}

func (p *PostgresStorage) ListDocuments(ctx context.Context, userID string) ([]internal.MedicalDocument, error) {
	rows, err := p.pool.Query(ctx, `SELECT id, upload_date, user_id, file_name, file_type, file_size, mime_type, processing_status, extracted_data FROM documents WHERE user_id = $1 ORDER BY upload_date, id`, userID)
	if err != nil {
		p.logger.Errorf("failed to query documents: %v", err)
		return nil, err
	}
	defer rows.Close()

	docs := []internal.MedicalDocument{}
	for rows.Next() {
		doc, err := scanPgDocument(rows.Scan)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}
	return docs, rows.Err()
}

func scanPgDocument(scan func(dest ...interface{}) error) (*internal.MedicalDocument, error) {
	var (
		d    internal.MedicalDocument
		data []byte
	)
	if err := scan(&d.ID, &d.UploadDate, &d.UserID, &d.FileName, &d.FileType, &d.FileSize, &d.MimeType, &d.ProcessingStatus, &data); err != nil {
		return nil, err
	}
	if len(data) > 0 {
		var extracted internal.ExtractedMedicalData
		if err := json.Unmarshal(data, &extracted); err != nil {
			return nil, err
		}
		d.ExtractedData = &extracted
	}
	return &d, nil
}

// --- Resetter ---

func (p *PostgresStorage) Reset(ctx context.Context) error {
	for _, table := range []string{"users", "logs", "documents"} {
		if _, err := p.pool.Exec(ctx, "DELETE FROM "+table); err != nil {
			p.logger.Errorf("failed to reset %s: %v", table, err)
			return err
		}
	}
	return nil
}

// --- Compile-time assertions ---
var _ Store = (*PostgresStorage)(nil)
