package internal

import "time"

// Avatar archetypes chosen during onboarding.
const (
	AvatarExplorer = "Explorer"
	AvatarCalm     = "Calm"
	AvatarCharger  = "Charger"
)

// Daily log category vocabularies.
const (
	SleepGood = "Good"
	SleepPoor = "Poor"

	MoodHappy   = "Happy"
	MoodNeutral = "Neutral"
	MoodLow     = "Low"

	StressLow    = "Low"
	StressMedium = "Medium"
	StressHigh   = "High"

	SupplementsTaken   = "Taken"
	SupplementsSkipped = "Skipped"
)

// Medical document processing states. A document starts in
// StatusProcessing and moves to exactly one terminal state.
const (
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// Medical document file types.
const (
	FileTypeImage     = "image"
	FileTypePDF       = "pdf"
	FileTypeLabReport = "lab_report"
)

// Biomarker statuses relative to the reference range.
const (
	BiomarkerNormal = "normal"
	BiomarkerHigh   = "high"
	BiomarkerLow    = "low"
)

type SurveyAnswers struct {
	SleepQuality     string `json:"sleep_quality"`
	FatigueFrequency string `json:"fatigue_frequency"`
	TracksHealth     string `json:"tracks_health"`
	MainGoal         string `json:"main_goal"`
}

// User is the single local-session account. At most one User exists in
// the store at a time; it is created by survey completion and destroyed
// only by a full data reset.
type User struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	AvatarType    string        `json:"avatar_type"`
	SurveyAnswers SurveyAnswers `json:"survey_answers"`
	XP            int           `json:"xp"`
	Streak        int           `json:"streak"`
	LastLogDate   *time.Time    `json:"last_log_date,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
}

// Log is one user-submitted daily record. Category fields are optional;
// an empty string means the category was not filled. Logs are
// append-only and stored in insertion (== chronological) order.
type Log struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Timestamp   time.Time `json:"timestamp"`
	Food        string    `json:"food,omitempty"`
	Sleep       string    `json:"sleep,omitempty"`
	Mood        string    `json:"mood,omitempty"`
	Stress      string    `json:"stress,omitempty"`
	Supplements string    `json:"supplements,omitempty"`
}

// CategoriesFilled counts the log's non-empty category fields.
func (l *Log) CategoriesFilled() int {
	n := 0
	for _, v := range []string{l.Food, l.Sleep, l.Mood, l.Stress, l.Supplements} {
		if v != "" {
			n++
		}
	}
	return n
}

// Complete reports whether all five categories are set.
func (l *Log) Complete() bool { return l.CategoriesFilled() == 5 }

type Biomarker struct {
	Name           string  `json:"name"`
	Value          float64 `json:"value"`
	Unit           string  `json:"unit"`
	ReferenceRange string  `json:"reference_range"`
	Status         string  `json:"status"`
}

type Medication struct {
	Name      string `json:"name"`
	Dosage    string `json:"dosage,omitempty"`
	Frequency string `json:"frequency,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

type ExtractedMedicalData struct {
	DocumentType    string       `json:"document_type"`
	Summary         string       `json:"summary"`
	Biomarkers      []Biomarker  `json:"biomarkers"`
	Medications     []Medication `json:"medications"`
	Diagnoses       []string     `json:"diagnoses"`
	Recommendations []string     `json:"recommendations"`
	ExtractedAt     time.Time    `json:"extracted_at"`
}

type MedicalDocument struct {
	ID               string                `json:"id"`
	UploadDate       time.Time             `json:"upload_date"`
	UserID           string                `json:"user_id"`
	FileName         string                `json:"file_name"`
	FileType         string                `json:"file_type"` // image, pdf, lab_report
	FileSize         int64                 `json:"file_size"`
	MimeType         string                `json:"mime_type"`
	ProcessingStatus string                `json:"processing_status"`
	ExtractedData    *ExtractedMedicalData `json:"extracted_data,omitempty"`
}
