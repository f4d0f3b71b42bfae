package medical

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mironism/helsi/internal"
	"github.com/mironism/helsi/internal/storage"
)

// ErrProcessingFailed is the generic error surfaced to callers when a
// document cannot be processed. Details stay in the logs.
var ErrProcessingFailed = errors.New("failed to process medical document")

// Upload size and type guards.
const MaxFileSize = 10 << 20 // 10 MB

var allowedMimeTypes = map[string]string{
	"image/jpeg":      internal.FileTypeImage,
	"image/png":       internal.FileTypeImage,
	"image/webp":      internal.FileTypeImage,
	"application/pdf": internal.FileTypePDF,
	"text/plain":      internal.FileTypeLabReport,
}

// FileTypeFor maps a MIME type to the document file type. The second
// return is false for unsupported types.
func FileTypeFor(mimeType string) (string, bool) {
	t, ok := allowedMimeTypes[mimeType]
	return t, ok
}

// Upload is one file handed to the pipeline.
type Upload struct {
	FileName string
	MimeType string
	Size     int64
	Content  []byte
}

// Pipeline runs uploaded documents through text extraction, structured
// data extraction and validation, recording state transitions in the
// document store. Every document ends in completed or failed.
type Pipeline struct {
	docs      storage.DocumentRepository
	logs      storage.LogRepository
	users     storage.UserRepository
	extractor Extractor
	fallback  *DeterministicExtractor
	ocr       OCRClient
	logger    internal.Logger
	now       func() time.Time
}

func NewPipeline(store storage.Store, extractor Extractor, ocr OCRClient, logger internal.Logger) *Pipeline {
	return &Pipeline{
		docs:      store,
		logs:      store,
		users:     store,
		extractor: extractor,
		fallback:  NewDeterministicExtractor(),
		ocr:       ocr,
		logger:    logger,
		now:       time.Now,
	}
}

// Process ingests one upload. The document is persisted in the
// processing state first so a crash mid-extraction leaves a visible
// record, then moved to its terminal state.
func (p *Pipeline) Process(ctx context.Context, up Upload) (*internal.MedicalDocument, error) {
	user, err := p.users.GetUser(ctx)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, internal.ErrNoUser
	}

	fileType, ok := FileTypeFor(up.MimeType)
	if !ok {
		return nil, fmt.Errorf("unsupported file type %q", up.MimeType)
	}
	if up.Size > MaxFileSize {
		return nil, fmt.Errorf("file exceeds the %d MB limit", MaxFileSize>>20)
	}

	doc := &internal.MedicalDocument{
		ID:               uuid.NewString(),
		UploadDate:       p.now(),
		UserID:           user.ID,
		FileName:         up.FileName,
		FileType:         fileType,
		FileSize:         up.Size,
		MimeType:         up.MimeType,
		ProcessingStatus: internal.StatusProcessing,
	}
	if err := p.docs.SaveDocument(ctx, doc); err != nil {
		return nil, err
	}

	data, err := p.extract(ctx, doc, up)
	if err != nil {
		p.logger.Errorf("document %s processing failed: %v", doc.ID, err)
		doc.ProcessingStatus = internal.StatusFailed
		doc.ExtractedData = nil
		if uerr := p.docs.UpdateDocument(ctx, doc); uerr != nil {
			return nil, uerr
		}
		return doc, ErrProcessingFailed
	}

	doc.ProcessingStatus = internal.StatusCompleted
	doc.ExtractedData = data
	if err := p.docs.UpdateDocument(ctx, doc); err != nil {
		return nil, err
	}
	p.logger.Infof("document %s processed: %s, %d biomarkers", doc.ID, data.DocumentType, len(data.Biomarkers))
	return doc, nil
}

func (p *Pipeline) extract(ctx context.Context, doc *internal.MedicalDocument, up Upload) (*internal.ExtractedMedicalData, error) {
	text, err := p.extractText(ctx, doc, up)
	if err != nil {
		return nil, err
	}

	data, err := p.extractor.ExtractMedicalData(ctx, text)
	if err != nil {
		// The deterministic parser backs up the remote model; local
		// extraction has no second line of defense.
		if _, isLocal := p.extractor.(*DeterministicExtractor); isLocal {
			return nil, err
		}
		p.logger.Warnf("remote extraction failed for %s, falling back: %v", doc.ID, err)
		data, err = p.fallback.ExtractMedicalData(ctx, text)
		if err != nil {
			return nil, err
		}
	}

	if err := ValidateExtractedData(data); err != nil {
		return nil, err
	}
	return data, nil
}

// extractText resolves the document to plain text. Lab reports are
// already text; images and PDFs go through OCR, simulated or remote.
func (p *Pipeline) extractText(ctx context.Context, doc *internal.MedicalDocument, up Upload) (string, error) {
	if doc.FileType == internal.FileTypeLabReport {
		text := strings.TrimSpace(string(up.Content))
		if text == "" {
			return "", errors.New("lab report file is empty")
		}
		return text, nil
	}
	return p.ocr.ExtractText(ctx, up.FileName, up.MimeType, up.Content)
}

// ProcessAll ingests a batch sequentially, carrying on past failures so
// one bad file does not sink the rest. The failed documents are still
// returned with their terminal state.
func (p *Pipeline) ProcessAll(ctx context.Context, uploads []Upload) ([]internal.MedicalDocument, error) {
	out := make([]internal.MedicalDocument, 0, len(uploads))
	for _, up := range uploads {
		doc, err := p.Process(ctx, up)
		if err != nil && doc == nil {
			return nil, err
		}
		out = append(out, *doc)
	}
	return out, nil
}

// GenerateMedicalInsights blends the most recent completed document
// with the user's log history. When no usable document exists it
// explains why instead of failing.
func (p *Pipeline) GenerateMedicalInsights(ctx context.Context) (string, error) {
	user, err := p.users.GetUser(ctx)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", internal.ErrNoUser
	}

	docs, err := p.docs.ListDocuments(ctx, user.ID)
	if err != nil {
		return "", err
	}

	var latest *internal.MedicalDocument
	processing := false
	for i := range docs {
		switch docs[i].ProcessingStatus {
		case internal.StatusCompleted:
			if docs[i].ExtractedData == nil {
				continue
			}
			if latest == nil || docs[i].UploadDate.After(latest.UploadDate) {
				latest = &docs[i]
			}
		case internal.StatusProcessing:
			processing = true
		}
	}

	if latest == nil {
		if processing {
			return "Your documents are still being analyzed. Check back in a moment for personalized insights.", nil
		}
		return "Upload a medical document to get personalized insights that connect your lab results with your daily habits.", nil
	}

	logs, err := p.logs.ListLogs(ctx, user.ID)
	if err != nil {
		return "", err
	}

	insight, err := p.extractor.GenerateInsights(ctx, latest.ExtractedData, logs)
	if err != nil {
		if _, isLocal := p.extractor.(*DeterministicExtractor); !isLocal {
			p.logger.Warnf("remote insight generation failed, falling back: %v", err)
			return p.fallback.GenerateInsights(ctx, latest.ExtractedData, logs)
		}
		return "", err
	}
	return insight, nil
}
