package medical

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/mironism/helsi/internal"
	"github.com/mironism/helsi/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *storage.FileStorage {
	dir := t.TempDir()
	s, err := storage.NewFileStorage(
		filepath.Join(dir, "user.json"),
		filepath.Join(dir, "logs.json"),
		filepath.Join(dir, "docs.json"),
		internal.NewNopLogger(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.SaveUser(context.Background(), &internal.User{ID: "u1", Name: "You"}))
	return s
}

func newTestPipeline(t *testing.T, store *storage.FileStorage, extractor Extractor) *Pipeline {
	return NewPipeline(store, extractor, NewSimulatedOCRClient(), internal.NewNopLogger())
}

func TestScenarioSelection(t *testing.T) {
	cases := map[string]string{
		"blood_test.pdf":      "lab",
		"my-lab-results.png":  "lab",
		"heart_checkup.jpg":   "cardiac",
		"Cardiac_Report.pdf":  "cardiac",
		"diabetes_panel.pdf":  "diabetes",
		"glucose-reading.jpg": "diabetes",
		"vitamin_levels.pdf":  "nutrition",
		"nutrition_scan.png":  "nutrition",
		"report.pdf":          "general",
	}
	for fileName, want := range cases {
		assert.Equal(t, want, scenarioFor(fileName), fileName)
	}
}

func TestGenerateSimulatedReport(t *testing.T) {
	text := GenerateSimulatedReport("blood_test.pdf", "application/pdf", time.Now())
	assert.Contains(t, text, "Complete Blood Count & Metabolic Panel")
	assert.Contains(t, text, "Hemoglobin: 13.8 g/dL")
	assert.Contains(t, text, "blood_test.pdf")
}

func TestDeterministicExtraction(t *testing.T) {
	text := GenerateSimulatedReport("blood_test.pdf", "application/pdf", time.Now())
	data, err := NewDeterministicExtractor().ExtractMedicalData(context.Background(), text)
	require.NoError(t, err)

	assert.Equal(t, "Lab Report", data.DocumentType)
	require.NotEmpty(t, data.Biomarkers)

	byName := map[string]internal.Biomarker{}
	for _, b := range data.Biomarkers {
		byName[b.Name] = b
	}
	hb, ok := byName["Hemoglobin"]
	require.True(t, ok)
	assert.Equal(t, 13.8, hb.Value)
	assert.Equal(t, internal.BiomarkerNormal, hb.Status)

	glucose, ok := byName["Glucose"]
	require.True(t, ok)
	assert.Equal(t, 88.0, glucose.Value)

	assert.NotEmpty(t, data.Summary)
	assert.NotEmpty(t, data.Recommendations)
}

func TestDeterministicExtraction_GradesAbnormalValues(t *testing.T) {
	text := "Vitamin D: 22 ng/mL\nCholesterol: 240 mg/dL\nGlucose: 65 mg/dL"
	data, err := NewDeterministicExtractor().ExtractMedicalData(context.Background(), text)
	require.NoError(t, err)

	byName := map[string]string{}
	for _, b := range data.Biomarkers {
		byName[b.Name] = b.Status
	}
	assert.Equal(t, internal.BiomarkerLow, byName["Vitamin D"])
	assert.Equal(t, internal.BiomarkerHigh, byName["Total Cholesterol"])
	assert.Equal(t, internal.BiomarkerLow, byName["Glucose"])

	assert.Contains(t, data.Recommendations, "Increase sun exposure and consider vitamin D supplementation")
}

func TestDeterministicExtraction_Medications(t *testing.T) {
	text := "Prescribed: Metformin 500mg twice daily and Vitamin D3 2000 IU daily"
	data, err := NewDeterministicExtractor().ExtractMedicalData(context.Background(), text)
	require.NoError(t, err)

	names := make([]string, 0, len(data.Medications))
	for _, m := range data.Medications {
		names = append(names, m.Name)
	}
	assert.Contains(t, names, "Vitamin D3")
	assert.Contains(t, names, "Metformin")
}

func TestValidateExtractedData(t *testing.T) {
	valid := &internal.ExtractedMedicalData{
		DocumentType: "Lab Report",
		Biomarkers:   []internal.Biomarker{}, Medications: []internal.Medication{},
		Diagnoses: []string{}, Recommendations: []string{},
	}
	assert.NoError(t, ValidateExtractedData(valid))
	assert.Error(t, ValidateExtractedData(nil))
	assert.Error(t, ValidateExtractedData(&internal.ExtractedMedicalData{DocumentType: "x"}))
	assert.Error(t, ValidateExtractedData(&internal.ExtractedMedicalData{
		Biomarkers: []internal.Biomarker{}, Medications: []internal.Medication{},
		Diagnoses: []string{}, Recommendations: []string{},
	}))
}

func TestPipeline_ProcessCompletes(t *testing.T) {
	store := newTestStore(t)
	p := newTestPipeline(t, store, NewDeterministicExtractor())
	ctx := context.Background()

	doc, err := p.Process(ctx, Upload{
		FileName: "blood_test.pdf",
		MimeType: "application/pdf",
		Size:     1024,
		Content:  []byte("%PDF-1.4"),
	})
	require.NoError(t, err)
	assert.Equal(t, internal.StatusCompleted, doc.ProcessingStatus)
	assert.Equal(t, internal.FileTypePDF, doc.FileType)
	require.NotNil(t, doc.ExtractedData)
	assert.NotEmpty(t, doc.ExtractedData.Biomarkers)

	stored, err := store.GetDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, internal.StatusCompleted, stored.ProcessingStatus)
}

func TestPipeline_RequiresUser(t *testing.T) {
	dir := t.TempDir()
	s, err := storage.NewFileStorage(
		filepath.Join(dir, "user.json"),
		filepath.Join(dir, "logs.json"),
		filepath.Join(dir, "docs.json"),
		internal.NewNopLogger(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	p := newTestPipeline(t, s, NewDeterministicExtractor())
	_, err = p.Process(context.Background(), Upload{FileName: "a.pdf", MimeType: "application/pdf"})
	assert.ErrorIs(t, err, internal.ErrNoUser)
}

func TestPipeline_RejectsUnsupportedType(t *testing.T) {
	store := newTestStore(t)
	p := newTestPipeline(t, store, NewDeterministicExtractor())

	_, err := p.Process(context.Background(), Upload{FileName: "a.gif", MimeType: "image/gif"})
	assert.Error(t, err)
}

// brokenExtractor returns structurally invalid data to exercise the
// validation failure path.
type brokenExtractor struct{}

func (brokenExtractor) ExtractMedicalData(ctx context.Context, text string) (*internal.ExtractedMedicalData, error) {
	return &internal.ExtractedMedicalData{}, nil
}

func (brokenExtractor) GenerateInsights(ctx context.Context, data *internal.ExtractedMedicalData, logs []internal.Log) (string, error) {
	return "", errors.New("unavailable")
}

func TestPipeline_ValidationFailureMarksFailed(t *testing.T) {
	store := newTestStore(t)
	p := newTestPipeline(t, store, brokenExtractor{})
	ctx := context.Background()

	doc, err := p.Process(ctx, Upload{
		FileName: "blood_test.pdf",
		MimeType: "application/pdf",
		Size:     512,
	})
	assert.ErrorIs(t, err, ErrProcessingFailed)
	require.NotNil(t, doc)
	assert.Equal(t, internal.StatusFailed, doc.ProcessingStatus)
	assert.Nil(t, doc.ExtractedData)

	stored, serr := store.GetDocument(ctx, doc.ID)
	require.NoError(t, serr)
	assert.Equal(t, internal.StatusFailed, stored.ProcessingStatus)
	assert.Nil(t, stored.ExtractedData)
}

// failingExtractor simulates a remote model outage; the pipeline should
// fall back to the deterministic parser.
type failingExtractor struct{}

func (failingExtractor) ExtractMedicalData(ctx context.Context, text string) (*internal.ExtractedMedicalData, error) {
	return nil, errors.New("upstream timeout")
}

func (failingExtractor) GenerateInsights(ctx context.Context, data *internal.ExtractedMedicalData, logs []internal.Log) (string, error) {
	return "", errors.New("upstream timeout")
}

func TestPipeline_RemoteFailureFallsBack(t *testing.T) {
	store := newTestStore(t)
	p := newTestPipeline(t, store, failingExtractor{})
	ctx := context.Background()

	doc, err := p.Process(ctx, Upload{
		FileName: "blood_test.pdf",
		MimeType: "application/pdf",
		Size:     512,
	})
	require.NoError(t, err)
	assert.Equal(t, internal.StatusCompleted, doc.ProcessingStatus)
	require.NotNil(t, doc.ExtractedData)
	assert.NotEmpty(t, doc.ExtractedData.Biomarkers)
}

func TestGenerateMedicalInsights(t *testing.T) {
	ctx := context.Background()

	t.Run("no documents", func(t *testing.T) {
		store := newTestStore(t)
		p := newTestPipeline(t, store, NewDeterministicExtractor())
		msg, err := p.GenerateMedicalInsights(ctx)
		require.NoError(t, err)
		assert.Contains(t, msg, "Upload a medical document")
	})

	t.Run("still processing", func(t *testing.T) {
		store := newTestStore(t)
		p := newTestPipeline(t, store, NewDeterministicExtractor())
		require.NoError(t, store.SaveDocument(ctx, &internal.MedicalDocument{
			ID: "d1", UserID: "u1", ProcessingStatus: internal.StatusProcessing,
		}))
		msg, err := p.GenerateMedicalInsights(ctx)
		require.NoError(t, err)
		assert.Contains(t, msg, "still being analyzed")
	})

	t.Run("completed document with logs", func(t *testing.T) {
		store := newTestStore(t)
		p := newTestPipeline(t, store, NewDeterministicExtractor())

		for i := 0; i < 5; i++ {
			require.NoError(t, store.AppendLog(ctx, &internal.Log{
				ID: string(rune('a' + i)), UserID: "u1", Timestamp: time.Now(),
				Sleep: internal.SleepPoor, Supplements: internal.SupplementsSkipped,
			}))
		}

		_, err := p.Process(ctx, Upload{
			FileName: "vitamin_levels.pdf", MimeType: "application/pdf", Size: 256,
		})
		require.NoError(t, err)

		msg, err := p.GenerateMedicalInsights(ctx)
		require.NoError(t, err)
		assert.Contains(t, msg, "Document Analysis")
		assert.Contains(t, msg, "Biomarker Analysis")
		assert.Contains(t, msg, "Lifestyle Connection")
		assert.Contains(t, msg, "Recommendations")
	})
}

func TestFileTypeFor(t *testing.T) {
	for mime, want := range map[string]string{
		"image/jpeg":      internal.FileTypeImage,
		"image/png":       internal.FileTypeImage,
		"application/pdf": internal.FileTypePDF,
		"text/plain":      internal.FileTypeLabReport,
	} {
		got, ok := FileTypeFor(mime)
		require.True(t, ok, mime)
		assert.Equal(t, want, got)
	}
	_, ok := FileTypeFor("video/mp4")
	assert.False(t, ok)
}
