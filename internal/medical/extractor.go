package medical

import (
	"context"

	"github.com/mironism/helsi/internal"
	"github.com/mironism/helsi/internal/config"
)

// Extractor turns raw document text into structured medical data and
// writes user-facing insight narratives from it.
type Extractor interface {
	ExtractMedicalData(ctx context.Context, text string) (*internal.ExtractedMedicalData, error)
	GenerateInsights(ctx context.Context, data *internal.ExtractedMedicalData, logs []internal.Log) (string, error)
}

// NewExtractor selects the extraction strategy once at startup: the
// remote model when a real API key is configured, the deterministic
// parser otherwise. Runtime failures of the remote extractor are
// handled by the pipeline, which always keeps a deterministic fallback.
func NewExtractor(cfg *config.Config, logger internal.Logger) Extractor {
	if cfg.RemoteExtractionEnabled() {
		logger.Infof("medical extraction: using remote model %s", cfg.OpenAIModel)
		return NewRemoteExtractor(cfg, logger)
	}
	logger.Info("medical extraction: no API key configured, using deterministic parser")
	return NewDeterministicExtractor()
}
