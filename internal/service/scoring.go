package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/mironism/helsi/internal"
	"github.com/mironism/helsi/internal/storage"
)

const (
	xpBase          = 10
	xpCompleteBonus = 20
)

type XPGain struct {
	Base   int    `json:"base"`
	Bonus  int    `json:"bonus"`
	Total  int    `json:"total"`
	Reason string `json:"reason"`
}

// CalculateXPGain scores a candidate log. Pure; nothing is persisted.
// The function is total: a log with zero categories still earns the
// base award (submission of empty logs is blocked upstream).
func CalculateXPGain(log *internal.Log) XPGain {
	bonus := 0
	reason := "Log submitted"
	if log.Complete() {
		bonus = xpCompleteBonus
		reason = "All categories filled!"
	}
	return XPGain{
		Base:   xpBase,
		Bonus:  bonus,
		Total:  xpBase + bonus,
		Reason: reason,
	}
}

type StreakStatus struct {
	Current     int        `json:"current"`
	Broken      bool       `json:"broken"`
	LastLogDate *time.Time `json:"last_log_date,omitempty"`
}

func sameCalendarDay(a, b time.Time) bool {
	a = a.In(b.Location())
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

// UpdateStreak advances the consecutive-day counter. Calling it again
// within the same calendar day is a no-op. When less than a full 24h
// has elapsed but the calendar day changed (a log just after midnight),
// the call is treated as same-day: no mutation either way.
func UpdateStreak(ctx context.Context, users storage.UserRepository, now time.Time) (StreakStatus, error) {
	user, err := users.GetUser(ctx)
	if err != nil {
		return StreakStatus{}, err
	}
	if user == nil {
		return StreakStatus{}, internal.ErrNoUser
	}

	if user.LastLogDate == nil {
		// First log ever
		user.Streak = 1
		user.LastLogDate = &now
		if err := users.SaveUser(ctx, user); err != nil {
			return StreakStatus{}, err
		}
		return StreakStatus{Current: 1, Broken: false, LastLogDate: &now}, nil
	}

	last := *user.LastLogDate
	if sameCalendarDay(last, now) {
		return StreakStatus{Current: user.Streak, Broken: false, LastLogDate: user.LastLogDate}, nil
	}

	days := int(now.Sub(last) / (24 * time.Hour))
	switch {
	case days == 1:
		user.Streak++
	case days > 1:
		user.Streak = 1
		user.LastLogDate = &now
		if err := users.SaveUser(ctx, user); err != nil {
			return StreakStatus{}, err
		}
		return StreakStatus{Current: 1, Broken: true, LastLogDate: &now}, nil
	default:
		// Calendar day changed but a full day has not passed; same-day policy.
		return StreakStatus{Current: user.Streak, Broken: false, LastLogDate: user.LastLogDate}, nil
	}

	user.LastLogDate = &now
	if err := users.SaveUser(ctx, user); err != nil {
		return StreakStatus{}, err
	}
	return StreakStatus{Current: user.Streak, Broken: false, LastLogDate: &now}, nil
}

// AddXP adds to the user's cumulative score. No upper bound, no decay.
func AddXP(ctx context.Context, users storage.UserRepository, amount int) error {
	user, err := users.GetUser(ctx)
	if err != nil {
		return err
	}
	if user == nil {
		return internal.ErrNoUser
	}
	user.XP += amount
	return users.SaveUser(ctx, user)
}

type AvatarState struct {
	State string  `json:"state"`
	Color string  `json:"color"`
	Scale float64 `json:"scale"`
}

// Avatar states and their palette tokens.
const (
	AvatarStateHappy     = "Happy"
	AvatarStateNeutral   = "Neutral"
	AvatarStateLow       = "Low"
	AvatarStateEnergized = "Energized"
	AvatarStateTired     = "Tired"
)

const (
	colorNeutral   = "hsl(180, 25%, 65%)"
	colorEnergized = "hsl(145, 55%, 55%)"
	colorHappy     = "hsl(50, 88%, 60%)"
	colorTired     = "hsl(215, 30%, 50%)"
	colorLow       = "hsl(345, 60%, 62%)"
)

// avatarScale is fixed; the avatar no longer grows with the streak.
const avatarScale = 1.0

func defaultAvatarState() AvatarState {
	return AvatarState{State: AvatarStateNeutral, Color: colorNeutral, Scale: avatarScale}
}

// GetAvatarState derives the avatar from the single most recent log.
// Rule order matters; the first match wins.
func GetAvatarState(ctx context.Context, users storage.UserRepository, logs storage.LogRepository) (AvatarState, error) {
	user, err := users.GetUser(ctx)
	if err != nil {
		return AvatarState{}, err
	}
	if user == nil {
		return defaultAvatarState(), nil
	}
	all, err := logs.ListLogs(ctx, user.ID)
	if err != nil {
		return AvatarState{}, err
	}
	if len(all) == 0 {
		return defaultAvatarState(), nil
	}

	recent := all[len(all)-1]
	switch {
	case recent.Mood == internal.MoodHappy && recent.Sleep == internal.SleepGood:
		return AvatarState{State: AvatarStateEnergized, Color: colorEnergized, Scale: avatarScale}, nil
	case recent.Mood == internal.MoodHappy:
		return AvatarState{State: AvatarStateHappy, Color: colorHappy, Scale: avatarScale}, nil
	case recent.Sleep == internal.SleepPoor:
		return AvatarState{State: AvatarStateTired, Color: colorTired, Scale: avatarScale}, nil
	case recent.Mood == internal.MoodLow || recent.Stress == internal.StressHigh:
		return AvatarState{State: AvatarStateLow, Color: colorLow, Scale: avatarScale}, nil
	default:
		return defaultAvatarState(), nil
	}
}

var genericInsights = []string{
	"Your health patterns are taking shape. Keep logging to see clearer insights!",
	"Every log helps build your personalized health profile.",
	"Consistency is key - you're building valuable health data.",
}

// GenerateInsight picks one human-readable message from the last three
// logs, checking patterns in fixed priority order.
func GenerateInsight(ctx context.Context, users storage.UserRepository, logs storage.LogRepository) (string, error) {
	user, err := users.GetUser(ctx)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "Keep logging to unlock personalized insights about your health patterns!", nil
	}
	all, err := logs.ListLogs(ctx, user.ID)
	if err != nil {
		return "", err
	}
	if len(all) < 2 {
		return "Keep logging to unlock personalized insights about your health patterns!", nil
	}

	recent := all
	if len(recent) > 3 {
		recent = recent[len(recent)-3:]
	}

	goodSleep, happyMood, supplements := 0, 0, 0
	anyHighStress, anyPoorSleep := false, false
	for _, l := range recent {
		if l.Sleep == internal.SleepGood {
			goodSleep++
		}
		if l.Sleep == internal.SleepPoor {
			anyPoorSleep = true
		}
		if l.Mood == internal.MoodHappy {
			happyMood++
		}
		if l.Supplements == internal.SupplementsTaken {
			supplements++
		}
		if l.Stress == internal.StressHigh {
			anyHighStress = true
		}
	}

	switch {
	case goodSleep == len(recent) && supplements == len(recent):
		return "Your energy peaks when sleep is good + supplements are consistent.", nil
	case happyMood == len(recent):
		return "You're on a positive streak! Your mood has been consistently good.", nil
	case anyHighStress:
		return "High stress detected in recent logs. Consider our stress management tips.", nil
	case anyPoorSleep:
		return "Poor sleep patterns detected. Focus on sleep hygiene for better energy.", nil
	default:
		return genericInsights[len(all)%len(genericInsights)], nil
	}
}

type ConfidenceLevel struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// GetConfidenceLevel maps total log count to a coarse confidence tier.
func GetConfidenceLevel(logCount int) ConfidenceLevel {
	switch {
	case logCount < 3:
		return ConfidenceLevel{Level: "Low", Message: formatNeedMore(3 - logCount)}
	case logCount < 8:
		return ConfidenceLevel{Level: "Medium", Message: "Getting clearer"}
	default:
		return ConfidenceLevel{Level: "High", Message: "High confidence"}
	}
}

func formatNeedMore(n int) string {
	if n == 1 {
		return "Need 1 more log"
	}
	return fmt.Sprintf("Need %d more logs", n)
}

type LeaderboardEntry struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	XP               int     `json:"xp"`
	Streak           int     `json:"streak"`
	ConsistencyScore float64 `json:"consistency_score"`
	AvatarType       string  `json:"avatar_type"`
}

var leaderboardPeers = []LeaderboardEntry{
	{ID: "friend_1", Name: "Sarah", XP: 180, Streak: 5, ConsistencyScore: 7.5, AvatarType: internal.AvatarCalm},
	{ID: "friend_2", Name: "Mike", XP: 150, Streak: 6, ConsistencyScore: 8, AvatarType: internal.AvatarCharger},
	{ID: "friend_3", Name: "Emma", XP: 220, Streak: 8, ConsistencyScore: 10, AvatarType: internal.AvatarExplorer},
}

// GetLeaderboard ranks the user against the fixed peer set by
// consistency score: distinct calendar days logged plus half a point
// per fully filled log. Empty when no user exists.
func GetLeaderboard(ctx context.Context, users storage.UserRepository, logs storage.LogRepository) ([]LeaderboardEntry, error) {
	user, err := users.GetUser(ctx)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return []LeaderboardEntry{}, nil
	}
	all, err := logs.ListLogs(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	days := map[string]struct{}{}
	complete := 0
	for _, l := range all {
		days[l.Timestamp.Format("2006-01-02")] = struct{}{}
		if l.Complete() {
			complete++
		}
	}

	entries := make([]LeaderboardEntry, 0, 1+len(leaderboardPeers))
	entries = append(entries, LeaderboardEntry{
		ID:               user.ID,
		Name:             user.Name,
		XP:               user.XP,
		Streak:           user.Streak,
		ConsistencyScore: float64(len(days)) + float64(complete)*0.5,
		AvatarType:       user.AvatarType,
	})
	entries = append(entries, leaderboardPeers...)

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].ConsistencyScore > entries[j].ConsistencyScore
	})
	return entries, nil
}
