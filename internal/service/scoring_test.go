package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/mironism/helsi/internal"
	"github.com/mironism/helsi/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupStore(t *testing.T) *storage.FileStorage {
	dir := t.TempDir()
	s, err := storage.NewFileStorage(
		filepath.Join(dir, "user.json"),
		filepath.Join(dir, "logs.json"),
		filepath.Join(dir, "docs.json"),
		internal.NewNopLogger(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func seedUser(t *testing.T, s *storage.FileStorage) *internal.User {
	user := &internal.User{
		ID:         "u1",
		Name:       "You",
		AvatarType: internal.AvatarExplorer,
		CreatedAt:  time.Now(),
	}
	require.NoError(t, s.SaveUser(context.Background(), user))
	return user
}

func TestCalculateXPGain(t *testing.T) {
	partial := &internal.Log{Food: "Clean", Sleep: internal.SleepGood}
	gain := CalculateXPGain(partial)
	assert.Equal(t, 10, gain.Total)
	assert.Equal(t, "Log submitted", gain.Reason)

	complete := &internal.Log{
		Food: "Clean", Sleep: internal.SleepGood, Mood: internal.MoodHappy,
		Stress: internal.StressLow, Supplements: internal.SupplementsTaken,
	}
	gain = CalculateXPGain(complete)
	assert.Equal(t, 30, gain.Total)
	assert.Equal(t, 20, gain.Bonus)
	assert.Equal(t, "All categories filled!", gain.Reason)
}

func TestUpdateStreak_FirstLog(t *testing.T) {
	s := setupStore(t)
	seedUser(t, s)

	status, err := UpdateStreak(context.Background(), s, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 1, status.Current)
	assert.False(t, status.Broken)
	require.NotNil(t, status.LastLogDate)
}

func TestUpdateStreak_SameDayIsNoop(t *testing.T) {
	s := setupStore(t)
	seedUser(t, s)
	now := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)

	_, err := UpdateStreak(context.Background(), s, now)
	require.NoError(t, err)

	later := now.Add(6 * time.Hour)
	status, err := UpdateStreak(context.Background(), s, later)
	require.NoError(t, err)
	assert.Equal(t, 1, status.Current)
	assert.Equal(t, now, *status.LastLogDate)
}

func TestUpdateStreak_NextDayIncrements(t *testing.T) {
	s := setupStore(t)
	seedUser(t, s)
	day1 := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)

	_, err := UpdateStreak(context.Background(), s, day1)
	require.NoError(t, err)
	status, err := UpdateStreak(context.Background(), s, day2)
	require.NoError(t, err)
	assert.Equal(t, 2, status.Current)
	assert.False(t, status.Broken)
}

func TestUpdateStreak_GapResets(t *testing.T) {
	s := setupStore(t)
	seedUser(t, s)
	day1 := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)

	_, err := UpdateStreak(context.Background(), s, day1)
	require.NoError(t, err)
	status, err := UpdateStreak(context.Background(), s, day1.AddDate(0, 0, 3))
	require.NoError(t, err)
	assert.Equal(t, 1, status.Current)
	assert.True(t, status.Broken)
}

func TestUpdateStreak_JustAfterMidnightTreatedAsSameDay(t *testing.T) {
	s := setupStore(t)
	seedUser(t, s)
	evening := time.Date(2026, 8, 29, 23, 30, 0, 0, time.UTC)

	_, err := UpdateStreak(context.Background(), s, evening)
	require.NoError(t, err)

	// Calendar day changed, but under 24h elapsed.
	pastMidnight := evening.Add(2 * time.Hour)
	status, err := UpdateStreak(context.Background(), s, pastMidnight)
	require.NoError(t, err)
	assert.Equal(t, 1, status.Current)
	assert.False(t, status.Broken)
	assert.Equal(t, evening, *status.LastLogDate)
}

func TestUpdateStreak_NoUser(t *testing.T) {
	s := setupStore(t)
	_, err := UpdateStreak(context.Background(), s, time.Now())
	assert.ErrorIs(t, err, internal.ErrNoUser)
}

func TestAddXP(t *testing.T) {
	s := setupStore(t)
	seedUser(t, s)
	ctx := context.Background()

	require.NoError(t, AddXP(ctx, s, 30))
	require.NoError(t, AddXP(ctx, s, 10))
	user, err := s.GetUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, 40, user.XP)
}

func TestGetAvatarState_Precedence(t *testing.T) {
	cases := []struct {
		name  string
		log   internal.Log
		state string
	}{
		{"energized beats happy", internal.Log{Mood: internal.MoodHappy, Sleep: internal.SleepGood}, AvatarStateEnergized},
		{"happy without good sleep", internal.Log{Mood: internal.MoodHappy}, AvatarStateHappy},
		{"tired on poor sleep", internal.Log{Mood: internal.MoodNeutral, Sleep: internal.SleepPoor}, AvatarStateTired},
		{"low on high stress", internal.Log{Stress: internal.StressHigh}, AvatarStateLow},
		{"low mood", internal.Log{Mood: internal.MoodLow}, AvatarStateLow},
		{"default neutral", internal.Log{Food: "Clean"}, AvatarStateNeutral},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := setupStore(t)
			user := seedUser(t, s)
			ctx := context.Background()

			log := tc.log
			log.ID = "l1"
			log.UserID = user.ID
			log.Timestamp = time.Now()
			require.NoError(t, s.AppendLog(ctx, &log))

			avatar, err := GetAvatarState(ctx, s, s)
			require.NoError(t, err)
			assert.Equal(t, tc.state, avatar.State)
			assert.Equal(t, 1.0, avatar.Scale)
		})
	}
}

func TestGetAvatarState_NoLogs(t *testing.T) {
	s := setupStore(t)
	seedUser(t, s)

	avatar, err := GetAvatarState(context.Background(), s, s)
	require.NoError(t, err)
	assert.Equal(t, AvatarStateNeutral, avatar.State)
}

func appendLogs(t *testing.T, s *storage.FileStorage, userID string, logs ...internal.Log) {
	ctx := context.Background()
	for i := range logs {
		logs[i].UserID = userID
		if logs[i].Timestamp.IsZero() {
			logs[i].Timestamp = time.Now().AddDate(0, 0, -(len(logs) - i))
		}
		require.NoError(t, s.AppendLog(ctx, &logs[i]))
	}
}

func TestGenerateInsight_Patterns(t *testing.T) {
	ctx := context.Background()

	t.Run("too few logs", func(t *testing.T) {
		s := setupStore(t)
		seedUser(t, s)
		msg, err := GenerateInsight(ctx, s, s)
		require.NoError(t, err)
		assert.Contains(t, msg, "Keep logging")
	})

	t.Run("good sleep and supplements", func(t *testing.T) {
		s := setupStore(t)
		user := seedUser(t, s)
		appendLogs(t, s, user.ID,
			internal.Log{Sleep: internal.SleepGood, Supplements: internal.SupplementsTaken},
			internal.Log{Sleep: internal.SleepGood, Supplements: internal.SupplementsTaken},
			internal.Log{Sleep: internal.SleepGood, Supplements: internal.SupplementsTaken},
		)
		msg, err := GenerateInsight(ctx, s, s)
		require.NoError(t, err)
		assert.Equal(t, "Your energy peaks when sleep is good + supplements are consistent.", msg)
	})

	t.Run("high stress wins over poor sleep", func(t *testing.T) {
		s := setupStore(t)
		user := seedUser(t, s)
		appendLogs(t, s, user.ID,
			internal.Log{Stress: internal.StressHigh, Sleep: internal.SleepPoor},
			internal.Log{Mood: internal.MoodNeutral},
		)
		msg, err := GenerateInsight(ctx, s, s)
		require.NoError(t, err)
		assert.Contains(t, msg, "High stress detected")
	})

	t.Run("generic rotation", func(t *testing.T) {
		s := setupStore(t)
		user := seedUser(t, s)
		appendLogs(t, s, user.ID,
			internal.Log{Food: "Clean"},
			internal.Log{Food: "Mixed"},
		)
		msg, err := GenerateInsight(ctx, s, s)
		require.NoError(t, err)
		assert.Equal(t, genericInsights[2], msg)
	})
}

func TestGetConfidenceLevel(t *testing.T) {
	assert.Equal(t, ConfidenceLevel{Level: "Low", Message: "Need 3 more logs"}, GetConfidenceLevel(0))
	assert.Equal(t, ConfidenceLevel{Level: "Low", Message: "Need 1 more log"}, GetConfidenceLevel(2))
	assert.Equal(t, "Medium", GetConfidenceLevel(5).Level)
	assert.Equal(t, "High", GetConfidenceLevel(8).Level)
}

func TestGetLeaderboard(t *testing.T) {
	ctx := context.Background()

	t.Run("empty without user", func(t *testing.T) {
		s := setupStore(t)
		entries, err := GetLeaderboard(ctx, s, s)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("ranked by consistency", func(t *testing.T) {
		s := setupStore(t)
		user := seedUser(t, s)
		// 2 distinct days, one complete log: consistency 2.5
		appendLogs(t, s, user.ID,
			internal.Log{
				Timestamp: time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC),
				Food:      "Clean", Sleep: internal.SleepGood, Mood: internal.MoodHappy,
				Stress: internal.StressLow, Supplements: internal.SupplementsTaken,
			},
			internal.Log{Timestamp: time.Date(2026, 8, 29, 9, 0, 0, 0, time.UTC), Food: "Mixed"},
		)

		entries, err := GetLeaderboard(ctx, s, s)
		require.NoError(t, err)
		require.Len(t, entries, 4)
		assert.Equal(t, "Emma", entries[0].Name)
		assert.Equal(t, "Mike", entries[1].Name)
		assert.Equal(t, "Sarah", entries[2].Name)
		assert.Equal(t, user.ID, entries[3].ID)
		assert.Equal(t, 2.5, entries[3].ConsistencyScore)
	})
}

func TestSubmitLog(t *testing.T) {
	s := setupStore(t)
	seedUser(t, s)
	ctx := context.Background()

	body := &LogRequest{
		Food: "Clean", Sleep: "Good", Mood: "Happy", Stress: "Low", Supplements: "Taken",
	}
	require.NoError(t, ValidateLogRequest(body))

	result, err := SubmitLog(ctx, s, s, body, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 30, result.XP.Total)
	assert.Equal(t, 1, result.Streak.Current)
	assert.Equal(t, AvatarStateEnergized, result.Avatar.State)
	assert.NotEmpty(t, result.Insight)

	user, err := s.GetUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, 30, user.XP)
	assert.Equal(t, 1, user.Streak)
}

func TestValidateLogRequest(t *testing.T) {
	assert.ErrorIs(t, ValidateLogRequest(&LogRequest{}), ErrEmptyLog)
	assert.Error(t, ValidateLogRequest(&LogRequest{Food: "Pizza"}))
	assert.NoError(t, ValidateLogRequest(&LogRequest{Mood: "Neutral"}))
}
