package storage

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/mironism/helsi/internal"
)

// FileStorage keeps everything in memory and persists each collection
// to its own JSON file through a debounced background worker, so a
// burst of writes collapses into one file write.
type FileStorage struct {
	user     *internal.User
	logs     []*internal.Log                      // insertion order == chronological order
	docs     map[string]*internal.MedicalDocument // id -> document
	docOrder []string                             // upload order
	mu       sync.RWMutex

	userFile string
	logsFile string
	docsFile string

	saveUserChan chan struct{}
	saveLogsChan chan struct{}
	saveDocsChan chan struct{}
	shutdownChan chan struct{}
	saveDelay    time.Duration
	logger       internal.Logger
}

func NewFileStorage(userFile, logsFile, docsFile string, logger internal.Logger) (*FileStorage, error) {
	s := &FileStorage{
		docs:         make(map[string]*internal.MedicalDocument),
		userFile:     userFile,
		logsFile:     logsFile,
		docsFile:     docsFile,
		saveUserChan: make(chan struct{}, 1),
		saveLogsChan: make(chan struct{}, 1),
		saveDocsChan: make(chan struct{}, 1),
		shutdownChan: make(chan struct{}),
		saveDelay:    500 * time.Millisecond,
		logger:       logger,
	}

	for _, f := range []string{userFile, logsFile, docsFile} {
		if dir := filepath.Dir(f); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, err
			}
		}
	}

	if err := s.loadUser(); err != nil {
		logger.Errorf("storage: failed to load user: %v", err)
		return nil, err
	}
	if err := s.loadLogs(); err != nil {
		logger.Errorf("storage: failed to load logs: %v", err)
		return nil, err
	}
	if err := s.loadDocuments(); err != nil {
		logger.Errorf("storage: failed to load documents: %v", err)
		return nil, err
	}

	go s.saveWorker(s.saveUserChan, s.saveUser, "user")
	go s.saveWorker(s.saveLogsChan, s.saveLogs, "logs")
	go s.saveWorker(s.saveDocsChan, s.saveDocuments, "documents")

	return s, nil
}

func decodeJSONFile(path string, out interface{}) error {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer file.Close()

	if err := json.NewDecoder(file).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	return nil
}

func (s *FileStorage) loadUser() error {
	var user *internal.User
	if err := decodeJSONFile(s.userFile, &user); err != nil {
		return err
	}
	s.mu.Lock()
	s.user = user
	s.mu.Unlock()
	return nil
}

func (s *FileStorage) loadLogs() error {
	var logs []*internal.Log
	if err := decodeJSONFile(s.logsFile, &logs); err != nil {
		return err
	}
	s.mu.Lock()
	s.logs = logs
	s.mu.Unlock()
	return nil
}

func (s *FileStorage) loadDocuments() error {
	var docs []*internal.MedicalDocument
	if err := decodeJSONFile(s.docsFile, &docs); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs = make(map[string]*internal.MedicalDocument)
	s.docOrder = s.docOrder[:0]
	for _, d := range docs {
		s.docs[d.ID] = d
		s.docOrder = append(s.docOrder, d.ID)
	}
	return nil
}

func atomicWriteFileJSON(filePath string, data interface{}) error {
	tempFile := filePath + ".tmp"
	f, err := os.Create(tempFile)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		f.Close()
		os.Remove(tempFile)
		return err
	}

	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tempFile)
		return err
	}

	if err := f.Close(); err != nil {
		os.Remove(tempFile)
		return err
	}

	return os.Rename(tempFile, filePath)
}

func (s *FileStorage) saveUser() error {
	s.mu.RLock()
	user := s.user
	s.mu.RUnlock()
	return atomicWriteFileJSON(s.userFile, user)
}

func (s *FileStorage) saveLogs() error {
	s.mu.RLock()
	logs := make([]*internal.Log, len(s.logs))
	copy(logs, s.logs)
	s.mu.RUnlock()
	return atomicWriteFileJSON(s.logsFile, logs)
}

func (s *FileStorage) saveDocuments() error {
	s.mu.RLock()
	docs := make([]*internal.MedicalDocument, 0, len(s.docOrder))
	for _, id := range s.docOrder {
		if d, ok := s.docs[id]; ok {
			docs = append(docs, d)
		}
	}
	s.mu.RUnlock()
	return atomicWriteFileJSON(s.docsFile, docs)
}

func (s *FileStorage) saveWorker(signal chan struct{}, save func() error, name string) {
	timer := time.NewTimer(s.saveDelay)
	defer timer.Stop()

	for {
		select {
		case <-signal:
			timer.Reset(s.saveDelay)
		case <-timer.C:
			if err := save(); err != nil {
				s.logger.Errorf("storage: error saving %s: %v", name, err)
			}
		case <-s.shutdownChan:
			return
		}
	}
}

func signalSave(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}

func (s *FileStorage) Close() error {
	close(s.shutdownChan)

	// Save pending data synchronously on shutdown
	if err := s.saveUser(); err != nil {
		return err
	}
	if err := s.saveLogs(); err != nil {
		return err
	}
	return s.saveDocuments()
}

// --- UserRepository ---

func (s *FileStorage) GetUser(ctx context.Context) (*internal.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil, nil
	}
	u := *s.user
	return &u, nil
}

func (s *FileStorage) SaveUser(ctx context.Context, user *internal.User) error {
	s.mu.Lock()
	u := *user
	s.user = &u
	s.mu.Unlock()
	signalSave(s.saveUserChan)
	return nil
}

// --- LogRepository ---

func (s *FileStorage) AppendLog(ctx context.Context, log *internal.Log) error {
	s.mu.Lock()
	l := *log
	s.logs = append(s.logs, &l)
	s.mu.Unlock()
	signalSave(s.saveLogsChan)
	return nil
}

func (s *FileStorage) ListLogs(ctx context.Context, userID string) ([]internal.Log, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	logs := make([]internal.Log, 0, len(s.logs))
	for _, l := range s.logs {
		if l.UserID == userID {
			logs = append(logs, *l)
		}
	}
	return logs, nil
}

// --- DocumentRepository ---

func (s *FileStorage) SaveDocument(ctx context.Context, doc *internal.MedicalDocument) error {
	s.mu.Lock()
	d := *doc
	if _, exists := s.docs[d.ID]; !exists {
		s.docOrder = append(s.docOrder, d.ID)
	}
	s.docs[d.ID] = &d
	s.mu.Unlock()
	signalSave(s.saveDocsChan)
	return nil
}

func (s *FileStorage) UpdateDocument(ctx context.Context, doc *internal.MedicalDocument) error {
	s.mu.Lock()
	if _, exists := s.docs[doc.ID]; !exists {
		s.mu.Unlock()
		return errors.New("storage: document not found")
	}
	d := *doc
	s.docs[d.ID] = &d
	s.mu.Unlock()
	signalSave(s.saveDocsChan)
	return nil
}

func (s *FileStorage) GetDocument(ctx context.Context, id string) (*internal.MedicalDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.docs[id]
	if !ok {
		return nil, nil
	}
	doc := *d
	return &doc, nil
}

func (s *FileStorage) ListDocuments(ctx context.Context, userID string) ([]internal.MedicalDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	docs := make([]internal.MedicalDocument, 0, len(s.docOrder))
	for _, id := range s.docOrder {
		if d, ok := s.docs[id]; ok && d.UserID == userID {
			docs = append(docs, *d)
		}
	}
	return docs, nil
}

// --- Resetter ---

func (s *FileStorage) Reset(ctx context.Context) error {
	s.mu.Lock()
	s.user = nil
	s.logs = nil
	s.docs = make(map[string]*internal.MedicalDocument)
	s.docOrder = nil
	s.mu.Unlock()
	signalSave(s.saveUserChan)
	signalSave(s.saveLogsChan)
	signalSave(s.saveDocsChan)
	return nil
}

// --- Compile-time assertions ---
var _ Store = (*FileStorage)(nil)
