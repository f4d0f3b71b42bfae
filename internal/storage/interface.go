package storage

import (
	"context"

	"github.com/mironism/helsi/internal"
)

// UserRepository holds the single local-session user. GetUser returns
// (nil, nil) when no user exists; a missing record is never an error.
type UserRepository interface {
	GetUser(ctx context.Context) (*internal.User, error)
	SaveUser(ctx context.Context, user *internal.User) error
}

// LogRepository is append-only; logs are returned in insertion order,
// which is also chronological order. A user with no logs yields an
// empty slice, not an error.
type LogRepository interface {
	AppendLog(ctx context.Context, log *internal.Log) error
	ListLogs(ctx context.Context, userID string) ([]internal.Log, error)
}

type DocumentRepository interface {
	SaveDocument(ctx context.Context, doc *internal.MedicalDocument) error
	UpdateDocument(ctx context.Context, doc *internal.MedicalDocument) error
	GetDocument(ctx context.Context, id string) (*internal.MedicalDocument, error)
	ListDocuments(ctx context.Context, userID string) ([]internal.MedicalDocument, error)
}

// Resetter wipes the user together with all logs and documents.
type Resetter interface {
	Reset(ctx context.Context) error
}

// Store is the full persistence surface a backend provides.
type Store interface {
	UserRepository
	LogRepository
	DocumentRepository
	Resetter
	Close() error
}
