package service

import (
	"testing"

	"github.com/mironism/helsi/internal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func repeatLogs(n int, template internal.Log) []internal.Log {
	logs := make([]internal.Log, n)
	for i := range logs {
		logs[i] = template
	}
	return logs
}

func TestComputeInsights_TooFewLogs(t *testing.T) {
	out := ComputeInsights([]internal.Log{{Sleep: internal.SleepGood}})
	assert.Equal(t, 0, out.Recovery)
	assert.Equal(t, 0, out.Strain)
	assert.Empty(t, out.Trends)
	assert.Empty(t, out.Recommendations)
}

func TestComputeInsights_PerfectWeek(t *testing.T) {
	logs := repeatLogs(7, internal.Log{
		Sleep: internal.SleepGood, Stress: internal.StressLow, Mood: internal.MoodHappy,
	})
	out := ComputeInsights(logs)

	assert.Equal(t, 100, out.Recovery)
	assert.Equal(t, 0, out.Strain)
	assert.Equal(t, 100, out.SleepScore)

	titles := make([]string, 0, len(out.Trends))
	for _, tr := range out.Trends {
		titles = append(titles, tr.Title)
	}
	assert.Contains(t, titles, "Strong Sleep Pattern")
	assert.Contains(t, titles, "Stress Under Control")
	assert.Contains(t, titles, "Positive Mood Streak")

	require.Len(t, out.Recommendations, 1)
	assert.Equal(t, "Optimal Recovery", out.Recommendations[0].Title)
	assert.Equal(t, "low", out.Recommendations[0].Priority)
}

func TestComputeInsights_RoughWeek(t *testing.T) {
	logs := repeatLogs(7, internal.Log{
		Sleep: internal.SleepPoor, Stress: internal.StressHigh, Mood: internal.MoodLow,
	})
	out := ComputeInsights(logs)

	assert.Equal(t, 0, out.Recovery)
	// (7*2 + 7*1.5) * 1.5 = 36.75, capped at 21
	assert.Equal(t, 21, out.Strain)
	assert.Equal(t, 0, out.SleepScore)

	require.NotEmpty(t, out.Trends)
	assert.Equal(t, "Sleep Needs Attention", out.Trends[0].Title)
	assert.Equal(t, "down", out.Trends[0].Direction)
	assert.Equal(t, "7 poor nights", out.Trends[0].Value)

	titles := make([]string, 0, len(out.Recommendations))
	for _, r := range out.Recommendations {
		titles = append(titles, r.Title)
	}
	assert.Contains(t, titles, "Prioritize Sleep")
	assert.Contains(t, titles, "Reduce Strain")
}

func TestComputeInsights_StrainFormula(t *testing.T) {
	// 2 high stress, 1 poor sleep: (2*2 + 1*1.5) * 1.5 = 8.25 -> 8
	logs := []internal.Log{
		{Stress: internal.StressHigh, Sleep: internal.SleepPoor},
		{Stress: internal.StressHigh, Sleep: internal.SleepGood},
		{Stress: internal.StressLow, Sleep: internal.SleepGood},
	}
	out := ComputeInsights(logs)
	assert.Equal(t, 8, out.Strain)
}

func TestComputeInsights_WindowIsTrailingSeven(t *testing.T) {
	// Ten logs; only the last seven count. First three are poor but fall
	// outside the window.
	logs := append(
		repeatLogs(3, internal.Log{Sleep: internal.SleepPoor, Stress: internal.StressHigh}),
		repeatLogs(7, internal.Log{Sleep: internal.SleepGood, Stress: internal.StressLow, Mood: internal.MoodHappy})...,
	)
	out := ComputeInsights(logs)
	assert.Equal(t, 100, out.Recovery)
	assert.Equal(t, 0, out.Strain)
}

func TestComputeInsights_MixedWindow(t *testing.T) {
	logs := []internal.Log{
		{Sleep: internal.SleepGood, Stress: internal.StressLow, Mood: internal.MoodHappy},
		{Sleep: internal.SleepGood, Stress: internal.StressMedium, Mood: internal.MoodNeutral},
		{Sleep: internal.SleepPoor, Stress: internal.StressHigh, Mood: internal.MoodLow},
		{Sleep: internal.SleepGood, Stress: internal.StressLow, Mood: internal.MoodHappy},
	}
	out := ComputeInsights(logs)

	// goodSleep=3, lowStress=2, happyMood=2 over window 4: 7/12 -> 58
	assert.Equal(t, 58, out.Recovery)
	// (1*2 + 1*1.5) * 1.5 = 5.25 -> 5
	assert.Equal(t, 5, out.Strain)
	assert.Equal(t, 75, out.SleepScore)
}
