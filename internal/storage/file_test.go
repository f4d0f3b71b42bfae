package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/mironism/helsi/internal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFileStorage(t *testing.T, dir string) *FileStorage {
	s, err := NewFileStorage(
		filepath.Join(dir, "user.json"),
		filepath.Join(dir, "logs.json"),
		filepath.Join(dir, "docs.json"),
		internal.NewNopLogger(),
	)
	require.NoError(t, err)
	return s
}

func TestFileStorage_MissingRecordsAreNotErrors(t *testing.T) {
	s := newTestFileStorage(t, t.TempDir())
	defer s.Close()
	ctx := context.Background()

	user, err := s.GetUser(ctx)
	require.NoError(t, err)
	assert.Nil(t, user)

	logs, err := s.ListLogs(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, logs)

	doc, err := s.GetDocument(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, doc)
}

func TestFileStorage_UserRoundTrip(t *testing.T) {
	s := newTestFileStorage(t, t.TempDir())
	defer s.Close()
	ctx := context.Background()

	now := time.Now()
	user := &internal.User{
		ID: "u1", Name: "You", AvatarType: internal.AvatarCalm,
		XP: 30, Streak: 1, LastLogDate: &now, CreatedAt: now,
	}
	require.NoError(t, s.SaveUser(ctx, user))

	got, err := s.GetUser(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, 30, got.XP)

	// Mutating the returned copy must not leak into the store.
	got.XP = 999
	again, err := s.GetUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, 30, again.XP)
}

func TestFileStorage_LogsKeepInsertionOrder(t *testing.T) {
	s := newTestFileStorage(t, t.TempDir())
	defer s.Close()
	ctx := context.Background()

	for i, food := range []string{"Clean", "Mixed", "Heavy"} {
		require.NoError(t, s.AppendLog(ctx, &internal.Log{
			ID: string(rune('a' + i)), UserID: "u1", Timestamp: time.Now(), Food: food,
		}))
	}
	require.NoError(t, s.AppendLog(ctx, &internal.Log{ID: "x", UserID: "other", Food: "Clean"}))

	logs, err := s.ListLogs(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, logs, 3)
	assert.Equal(t, "Clean", logs[0].Food)
	assert.Equal(t, "Mixed", logs[1].Food)
	assert.Equal(t, "Heavy", logs[2].Food)
}

func TestFileStorage_DocumentLifecycle(t *testing.T) {
	s := newTestFileStorage(t, t.TempDir())
	defer s.Close()
	ctx := context.Background()

	doc := &internal.MedicalDocument{
		ID: "d1", UserID: "u1", FileName: "blood_test.pdf",
		FileType: internal.FileTypePDF, ProcessingStatus: internal.StatusProcessing,
		UploadDate: time.Now(),
	}
	require.NoError(t, s.SaveDocument(ctx, doc))

	doc.ProcessingStatus = internal.StatusCompleted
	doc.ExtractedData = &internal.ExtractedMedicalData{
		DocumentType: "Lab Report",
		Biomarkers:   []internal.Biomarker{}, Medications: []internal.Medication{},
		Diagnoses: []string{}, Recommendations: []string{},
	}
	require.NoError(t, s.UpdateDocument(ctx, doc))

	got, err := s.GetDocument(ctx, "d1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, internal.StatusCompleted, got.ProcessingStatus)
	require.NotNil(t, got.ExtractedData)
	assert.Equal(t, "Lab Report", got.ExtractedData.DocumentType)

	assert.Error(t, s.UpdateDocument(ctx, &internal.MedicalDocument{ID: "nope"}))
}

func TestFileStorage_PersistsAcrossRestart(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s := newTestFileStorage(t, dir)
	require.NoError(t, s.SaveUser(ctx, &internal.User{ID: "u1", Name: "You"}))
	require.NoError(t, s.AppendLog(ctx, &internal.Log{ID: "l1", UserID: "u1", Food: "Clean"}))
	require.NoError(t, s.Close())

	reopened := newTestFileStorage(t, dir)
	defer reopened.Close()

	user, err := reopened.GetUser(ctx)
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "u1", user.ID)

	logs, err := reopened.ListLogs(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, logs, 1)
}

func TestFileStorage_Reset(t *testing.T) {
	s := newTestFileStorage(t, t.TempDir())
	defer s.Close()
	ctx := context.Background()

	require.NoError(t, s.SaveUser(ctx, &internal.User{ID: "u1"}))
	require.NoError(t, s.AppendLog(ctx, &internal.Log{ID: "l1", UserID: "u1"}))
	require.NoError(t, s.SaveDocument(ctx, &internal.MedicalDocument{ID: "d1", UserID: "u1"}))

	require.NoError(t, s.Reset(ctx))

	user, err := s.GetUser(ctx)
	require.NoError(t, err)
	assert.Nil(t, user)
	logs, err := s.ListLogs(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, logs)
	docs, err := s.ListDocuments(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, docs)
}
