package medical

import (
	"fmt"
	"strings"
	"time"
)

// reportScenario is one canned medical report used when OCR is disabled
// or a file type has no extraction path.
type reportScenario struct {
	title           string
	results         []string
	medications     []string
	diagnoses       []string
	recommendations []string
}

var scenarios = map[string]reportScenario{
	"lab": {
		title: "Complete Blood Count & Metabolic Panel",
		results: []string{
			"Hemoglobin: 13.8 g/dL (Normal: 12-16)",
			"White Blood Cells: 7.2 K/uL (Normal: 4.5-11.0)",
			"Platelets: 285 K/uL (Normal: 150-450)",
			"Glucose: 88 mg/dL (Normal: 70-100)",
			"Creatinine: 0.9 mg/dL (Normal: 0.6-1.2)",
			"Total Cholesterol: 192 mg/dL (Normal: <200)",
			"HDL: 45 mg/dL (Normal: >40)",
			"LDL: 125 mg/dL (Normal: <100)",
		},
		medications:     []string{"Multivitamin daily", "Omega-3 1000mg daily"},
		diagnoses:       []string{"Normal lab values", "Mild hyperlipidemia"},
		recommendations: []string{"Continue current diet", "Consider statin therapy", "Annual follow-up"},
	},
	"cardiac": {
		title: "Cardiovascular Assessment",
		results: []string{
			"Blood Pressure: 128/82 mmHg (Elevated)",
			"Heart Rate: 72 bpm (Normal)",
			"EKG: Normal sinus rhythm",
			"Echocardiogram: EF 58% (Normal)",
			"Cholesterol: 210 mg/dL (Borderline high)",
			"Triglycerides: 145 mg/dL (Normal)",
		},
		medications:     []string{"Lisinopril 10mg daily", "Atorvastatin 20mg daily"},
		diagnoses:       []string{"Hypertension", "Hyperlipidemia"},
		recommendations: []string{"Low sodium diet", "Regular exercise", "Blood pressure monitoring", "Cardiology follow-up"},
	},
	"diabetes": {
		title: "Diabetes Management Report",
		results: []string{
			"HbA1c: 6.8% (Pre-diabetes: 5.7-6.4%)",
			"Fasting Glucose: 108 mg/dL (Normal: <100)",
			"2-hour Glucose: 145 mg/dL (Normal: <140)",
			"BMI: 28.5 (Overweight)",
			"Blood Pressure: 135/85 mmHg (Elevated)",
		},
		medications:     []string{"Metformin 500mg twice daily", "Lisinopril 5mg daily"},
		diagnoses:       []string{"Pre-diabetes", "Metabolic syndrome"},
		recommendations: []string{"Weight loss 10-15 lbs", "Low carb diet", "Regular exercise", "Glucose monitoring"},
	},
	"nutrition": {
		title: "Nutritional Assessment",
		results: []string{
			"Vitamin D: 22 ng/mL (Deficient: <30)",
			"B12: 450 pg/mL (Normal: >300)",
			"Folate: 8.5 ng/mL (Normal: >4)",
			"Iron: 85 ug/dL (Normal: 60-170)",
			"Ferritin: 45 ng/mL (Normal: 15-150)",
			"Calcium: 9.8 mg/dL (Normal: 8.5-10.5)",
		},
		medications:     []string{"Vitamin D3 2000 IU daily", "Iron supplement 65mg daily"},
		diagnoses:       []string{"Vitamin D deficiency", "Mild iron deficiency"},
		recommendations: []string{"Sun exposure 15-30 min daily", "Iron-rich foods", "Calcium supplementation"},
	},
	"general": {
		title: "General Health Assessment",
		results: []string{
			"Blood Pressure: 120/80 mmHg (Normal)",
			"Heart Rate: 68 bpm (Normal)",
			"BMI: 24.2 (Normal)",
			"Glucose: 92 mg/dL (Normal)",
			"Cholesterol: 185 mg/dL (Normal)",
			"Vitamin D: 35 ng/mL (Normal)",
		},
		medications:     []string{"Multivitamin daily"},
		diagnoses:       []string{"Good overall health"},
		recommendations: []string{"Maintain current lifestyle", "Annual physical", "Continue preventive care"},
	},
}

// scenarioFor picks a scenario by filename substrings.
func scenarioFor(fileName string) string {
	name := strings.ToLower(fileName)
	switch {
	case strings.Contains(name, "blood") || strings.Contains(name, "lab"):
		return "lab"
	case strings.Contains(name, "heart") || strings.Contains(name, "cardiac"):
		return "cardiac"
	case strings.Contains(name, "diabetes") || strings.Contains(name, "glucose"):
		return "diabetes"
	case strings.Contains(name, "vitamin") || strings.Contains(name, "nutrition"):
		return "nutrition"
	default:
		return "general"
	}
}

// GenerateSimulatedReport renders a deterministic plain-text medical
// report for the given file, varying by filename.
func GenerateSimulatedReport(fileName, mimeType string, now time.Time) string {
	scenario := scenarios[scenarioFor(fileName)]

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", scenario.title)
	b.WriteString("Patient: Health Assessment\n")
	fmt.Fprintf(&b, "Date: %s\n", now.Format("1/2/2006"))
	fmt.Fprintf(&b, "File: %s\n", fileName)
	fmt.Fprintf(&b, "File Type: %s\n\n", mimeType)

	b.WriteString("Lab Results:\n")
	for _, r := range scenario.results {
		fmt.Fprintf(&b, "- %s\n", r)
	}
	b.WriteString("\nMedications:\n")
	for _, m := range scenario.medications {
		fmt.Fprintf(&b, "- %s\n", m)
	}
	b.WriteString("\nDiagnoses:\n")
	for _, d := range scenario.diagnoses {
		fmt.Fprintf(&b, "- %s\n", d)
	}
	b.WriteString("\nRecommendations:\n")
	for _, r := range scenario.recommendations {
		fmt.Fprintf(&b, "- %s\n", r)
	}
	b.WriteString("\nNote: This analysis is based on simulated medical data for demonstration purposes.")
	return b.String()
}
