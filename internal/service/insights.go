package service

import (
	"fmt"
	"math"

	"github.com/mironism/helsi/internal"
)

const insightsWindow = 7

type Trend struct {
	Title     string `json:"title"`
	Category  string `json:"category"` // sleep, stress, mood
	Value     string `json:"value"`
	Direction string `json:"direction"` // up, down
}

type Recommendation struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"` // high, medium, low
}

type Insights struct {
	Recovery        int              `json:"recovery"`
	Strain          int              `json:"strain"`
	SleepScore      int              `json:"sleep_score"`
	Trends          []Trend          `json:"trends"`
	Recommendations []Recommendation `json:"recommendations"`
}

// ComputeInsights derives the dashboard metrics from the trailing
// seven-log window. With fewer than two logs total there is nothing to
// aggregate and the zero value is returned.
//
// Strain uses the weighted formula capped at 21:
// min(21, round((highStress*2 + poorSleep*1.5) * 1.5)).
func ComputeInsights(logs []internal.Log) Insights {
	if len(logs) < 2 {
		return Insights{Trends: []Trend{}, Recommendations: []Recommendation{}}
	}

	recent := logs
	if len(recent) > insightsWindow {
		recent = recent[len(recent)-insightsWindow:]
	}
	window := len(recent)

	goodSleep, poorSleep, lowStress, highStress, happyMood := 0, 0, 0, 0, 0
	for _, l := range recent {
		switch l.Sleep {
		case internal.SleepGood:
			goodSleep++
		case internal.SleepPoor:
			poorSleep++
		}
		switch l.Stress {
		case internal.StressLow:
			lowStress++
		case internal.StressHigh:
			highStress++
		}
		if l.Mood == internal.MoodHappy {
			happyMood++
		}
	}

	recovery := int(math.Round(float64(goodSleep+lowStress+happyMood) / float64(window*3) * 100))
	strain := int(math.Round((float64(highStress)*2 + float64(poorSleep)*1.5) * 1.5))
	if strain > 21 {
		strain = 21
	}
	sleepScore := int(math.Round(float64(goodSleep) / float64(window) * 100))

	trends := []Trend{}
	if goodSleep >= 5 {
		trends = append(trends, Trend{
			Title:     "Strong Sleep Pattern",
			Category:  "sleep",
			Value:     fmt.Sprintf("%d/7 days", goodSleep),
			Direction: "up",
		})
	} else if poorSleep >= 3 {
		trends = append(trends, Trend{
			Title:     "Sleep Needs Attention",
			Category:  "sleep",
			Value:     fmt.Sprintf("%d poor nights", poorSleep),
			Direction: "down",
		})
	}
	if lowStress >= 5 {
		trends = append(trends, Trend{
			Title:     "Stress Under Control",
			Category:  "stress",
			Value:     fmt.Sprintf("%d/7 days", lowStress),
			Direction: "up",
		})
	}
	if happyMood >= 5 {
		trends = append(trends, Trend{
			Title:     "Positive Mood Streak",
			Category:  "mood",
			Value:     fmt.Sprintf("%d/7 days", happyMood),
			Direction: "up",
		})
	}

	recommendations := []Recommendation{}
	if sleepScore < 60 {
		recommendations = append(recommendations, Recommendation{
			Title:       "Prioritize Sleep",
			Description: "Your sleep quality is impacting recovery. Try going to bed 30min earlier.",
			Priority:    "high",
		})
	}
	if highStress >= 3 {
		recommendations = append(recommendations, Recommendation{
			Title:       "Reduce Strain",
			Description: "High stress detected multiple times. Consider meditation or light activity.",
			Priority:    "medium",
		})
	}
	if recovery > 80 {
		recommendations = append(recommendations, Recommendation{
			Title:       "Optimal Recovery",
			Description: "You're recovered! This is a great day for challenging activities.",
			Priority:    "low",
		})
	}

	return Insights{
		Recovery:        recovery,
		Strain:          strain,
		SleepScore:      sleepScore,
		Trends:          trends,
		Recommendations: recommendations,
	}
}
