package medical

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/mironism/helsi/internal"
)

// biomarkerSpec describes one recognized biomarker: the pattern that
// captures its value and the reference bounds used to grade it.
type biomarkerSpec struct {
	name    string
	pattern *regexp.Regexp
	unit    string
	refText string
	low     float64 // 0 means no lower bound
	high    float64 // 0 means no upper bound
}

var biomarkerSpecs = []biomarkerSpec{
	{
		name:    "Hemoglobin",
		pattern: regexp.MustCompile(`(?i)hemoglobin:?\s*(\d+\.?\d*)`),
		unit:    "g/dL",
		refText: "12-16",
		low:     12, high: 16,
	},
	{
		name:    "Total Cholesterol",
		pattern: regexp.MustCompile(`(?i)(?:total\s+)?cholesterol:?\s*(\d+\.?\d*)`),
		unit:    "mg/dL",
		refText: "<200",
		high:    200,
	},
	{
		name:    "Vitamin D",
		// Whitespace before the value keeps "Vitamin D3" (a medication
		// name) from matching as a reading.
		pattern: regexp.MustCompile(`(?i)vitamin\s*d:?\s+(\d+\.?\d*)`),
		unit:    "ng/mL",
		refText: "30-100",
		low:     30, high: 100,
	},
	{
		name:    "Glucose",
		pattern: regexp.MustCompile(`(?i)glucose:?\s*(\d+\.?\d*)`),
		unit:    "mg/dL",
		refText: "70-100",
		low:     70, high: 100,
	},
	{
		name:    "Creatinine",
		pattern: regexp.MustCompile(`(?i)creatinine:?\s*(\d+\.?\d*)`),
		unit:    "mg/dL",
		refText: "0.6-1.2",
		low:     0.6, high: 1.2,
	},
}

func gradeBiomarker(spec biomarkerSpec, value float64) string {
	if spec.high > 0 && value > spec.high {
		return internal.BiomarkerHigh
	}
	if spec.low > 0 && value < spec.low {
		return internal.BiomarkerLow
	}
	return internal.BiomarkerNormal
}

// knownMedications are matched by name; dosage and frequency are taken
// from the surrounding text when present.
var knownMedications = []struct {
	pattern *regexp.Regexp
	name    string
	reason  string
}{
	{regexp.MustCompile(`(?i)vitamin\s*d3?\s+(\d+)\s*iu`), "Vitamin D3", "Vitamin D deficiency"},
	{regexp.MustCompile(`(?i)metformin\s*(\d+)?\s*mg`), "Metformin", "Blood sugar management"},
	{regexp.MustCompile(`(?i)atorvastatin\s*(\d+)?\s*mg`), "Atorvastatin", "Cholesterol management"},
}

var diagnosisPhrases = []string{
	"Vitamin D deficiency",
	"Iron deficiency",
	"Hypertension",
	"Hyperlipidemia",
	"Pre-diabetes",
	"Metabolic syndrome",
	"Normal lab values",
	"Good overall health",
}

// DeterministicExtractor parses report text with fixed patterns. It
// never fails and never leaves the process, which makes it the safety
// net behind the remote extractor.
type DeterministicExtractor struct {
	now func() time.Time
}

func NewDeterministicExtractor() *DeterministicExtractor {
	return &DeterministicExtractor{now: time.Now}
}

var _ Extractor = (*DeterministicExtractor)(nil)

func (e *DeterministicExtractor) ExtractMedicalData(ctx context.Context, text string) (*internal.ExtractedMedicalData, error) {
	data := &internal.ExtractedMedicalData{
		DocumentType:    classifyDocument(text),
		Biomarkers:      []internal.Biomarker{},
		Medications:     []internal.Medication{},
		Diagnoses:       []string{},
		Recommendations: []string{},
		ExtractedAt:     e.now(),
	}

	for _, spec := range biomarkerSpecs {
		m := spec.pattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		value, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		data.Biomarkers = append(data.Biomarkers, internal.Biomarker{
			Name:           spec.name,
			Value:          value,
			Unit:           spec.unit,
			ReferenceRange: spec.refText,
			Status:         gradeBiomarker(spec, value),
		})
	}

	for _, med := range knownMedications {
		m := med.pattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		entry := internal.Medication{Name: med.name, Frequency: "Daily", Reason: med.reason}
		if len(m) > 1 && m[1] != "" {
			unit := "mg"
			if med.name == "Vitamin D3" {
				unit = " IU"
			}
			entry.Dosage = m[1] + unit
		}
		data.Medications = append(data.Medications, entry)
	}

	lower := strings.ToLower(text)
	for _, phrase := range diagnosisPhrases {
		if strings.Contains(lower, strings.ToLower(phrase)) {
			data.Diagnoses = append(data.Diagnoses, phrase)
		}
	}

	data.Recommendations = deriveRecommendations(data)
	data.Summary = summarize(data)
	return data, nil
}

func classifyDocument(text string) string {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "blood count") || strings.Contains(lower, "metabolic panel") || strings.Contains(lower, "lab results"):
		return "Lab Report"
	case strings.Contains(lower, "cardiovascular") || strings.Contains(lower, "cardiac"):
		return "Cardiac Assessment"
	case strings.Contains(lower, "diabetes"):
		return "Diabetes Report"
	case strings.Contains(lower, "nutritional"):
		return "Nutritional Assessment"
	default:
		return "Medical Report"
	}
}

func deriveRecommendations(data *internal.ExtractedMedicalData) []string {
	recs := []string{}
	for _, b := range data.Biomarkers {
		switch {
		case b.Name == "Vitamin D" && b.Status == internal.BiomarkerLow:
			recs = append(recs, "Increase sun exposure and consider vitamin D supplementation")
		case b.Name == "Total Cholesterol" && b.Status == internal.BiomarkerHigh:
			recs = append(recs, "Reduce saturated fat intake and increase physical activity")
		case b.Name == "Glucose" && b.Status == internal.BiomarkerHigh:
			recs = append(recs, "Monitor carbohydrate intake and blood sugar levels")
		}
	}
	if len(recs) == 0 {
		recs = append(recs, "Maintain current healthy lifestyle", "Schedule regular check-ups")
	}
	return recs
}

func summarize(data *internal.ExtractedMedicalData) string {
	abnormal := 0
	for _, b := range data.Biomarkers {
		if b.Status != internal.BiomarkerNormal {
			abnormal++
		}
	}
	if len(data.Biomarkers) == 0 {
		return fmt.Sprintf("%s reviewed. No measurable biomarkers were identified in the document text.", data.DocumentType)
	}
	if abnormal == 0 {
		return fmt.Sprintf("%s with %d biomarkers analyzed. All values are within normal ranges.", data.DocumentType, len(data.Biomarkers))
	}
	return fmt.Sprintf("%s with %d biomarkers analyzed. %d value(s) outside normal ranges need attention.", data.DocumentType, len(data.Biomarkers), abnormal)
}

// GenerateInsights composes a sectioned narrative from extracted data
// and the user's recent logs. Deterministic counterpart of the remote
// insight generation.
func (e *DeterministicExtractor) GenerateInsights(ctx context.Context, data *internal.ExtractedMedicalData, logs []internal.Log) (string, error) {
	var b strings.Builder

	fmt.Fprintf(&b, "Document Analysis: %s\n%s\n", data.DocumentType, data.Summary)

	abnormal := []internal.Biomarker{}
	for _, bm := range data.Biomarkers {
		if bm.Status != internal.BiomarkerNormal {
			abnormal = append(abnormal, bm)
		}
	}
	if len(abnormal) > 0 {
		b.WriteString("\nBiomarker Analysis:\n")
		for _, bm := range abnormal {
			fmt.Fprintf(&b, "- %s is %s at %g %s (reference: %s)\n", bm.Name, bm.Status, bm.Value, bm.Unit, bm.ReferenceRange)
		}
	} else if len(data.Biomarkers) > 0 {
		fmt.Fprintf(&b, "\nNormal Results: all %d measured biomarkers are within their reference ranges.\n", len(data.Biomarkers))
	}

	if len(data.Medications) > 0 {
		b.WriteString("\nMedications Identified:\n")
		for _, m := range data.Medications {
			line := "- " + m.Name
			if m.Dosage != "" {
				line += " " + m.Dosage
			}
			if m.Reason != "" {
				line += " (" + m.Reason + ")"
			}
			b.WriteString(line + "\n")
		}
	}

	if len(data.Diagnoses) > 0 {
		b.WriteString("\nMedical Diagnoses:\n")
		for _, d := range data.Diagnoses {
			fmt.Fprintf(&b, "- %s\n", d)
		}
	}

	if section := lifestyleConnection(data, logs); section != "" {
		b.WriteString("\nLifestyle Connection:\n" + section)
	}

	if len(data.Recommendations) > 0 {
		b.WriteString("\nRecommendations:\n")
		for _, r := range data.Recommendations {
			fmt.Fprintf(&b, "- %s\n", r)
		}
	}

	return strings.TrimRight(b.String(), "\n"), nil
}

// lifestyleConnection cross-references the last seven logs against the
// extracted data, tying supplement and sleep habits to lab findings.
func lifestyleConnection(data *internal.ExtractedMedicalData, logs []internal.Log) string {
	recent := logs
	if len(recent) > 7 {
		recent = recent[len(recent)-7:]
	}
	if len(recent) == 0 {
		return ""
	}

	taken, poorSleep := 0, 0
	for _, l := range recent {
		if l.Supplements == internal.SupplementsTaken {
			taken++
		}
		if l.Sleep == internal.SleepPoor {
			poorSleep++
		}
	}

	var lines []string
	lowVitaminD := false
	for _, bm := range data.Biomarkers {
		if bm.Name == "Vitamin D" && bm.Status == internal.BiomarkerLow {
			lowVitaminD = true
		}
	}
	if lowVitaminD {
		if taken >= 5 {
			lines = append(lines, fmt.Sprintf("- You took supplements %d of the last %d days; consistent vitamin D intake should help raise your levels.", taken, len(recent)))
		} else {
			lines = append(lines, fmt.Sprintf("- Your vitamin D is low and supplements were taken only %d of the last %d days. More consistency could help.", taken, len(recent)))
		}
	}
	if poorSleep >= 3 {
		lines = append(lines, fmt.Sprintf("- Poor sleep on %d of the last %d days can slow recovery; your lab results will benefit from better rest.", poorSleep, len(recent)))
	}
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}
