package medical

import (
	"errors"

	"github.com/mironism/helsi/internal"
)

// ValidateExtractedData rejects structurally broken extraction output
// before it is persisted. Empty lists are fine; nil lists or a missing
// document type are not.
func ValidateExtractedData(data *internal.ExtractedMedicalData) error {
	if data == nil {
		return errors.New("extracted data is nil")
	}
	if data.DocumentType == "" {
		return errors.New("extracted data has no document type")
	}
	if data.Biomarkers == nil || data.Medications == nil || data.Diagnoses == nil || data.Recommendations == nil {
		return errors.New("extracted data has uninitialized lists")
	}
	return nil
}
