package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/mironism/helsi/internal"
	"github.com/mironism/helsi/internal/storage"
)

var validate = validator.New()

// ErrEmptyLog rejects submissions with no category filled.
var ErrEmptyLog = errors.New("at least one category must be filled")

type LogRequest struct {
	Food        string `json:"food,omitempty" validate:"omitempty,oneof=Clean Mixed Heavy Alcohol"`
	Sleep       string `json:"sleep,omitempty" validate:"omitempty,oneof=Good Poor"`
	Mood        string `json:"mood,omitempty" validate:"omitempty,oneof=Happy Neutral Low"`
	Stress      string `json:"stress,omitempty" validate:"omitempty,oneof=Low Medium High"`
	Supplements string `json:"supplements,omitempty" validate:"omitempty,oneof=Taken Skipped"`
}

func ValidateLogRequest(body *LogRequest) error {
	if body.Food == "" && body.Sleep == "" && body.Mood == "" && body.Stress == "" && body.Supplements == "" {
		return ErrEmptyLog
	}
	return validate.Struct(body)
}

// LogResult is everything the UI needs after one submission.
type LogResult struct {
	Log     *internal.Log `json:"log"`
	XP      XPGain        `json:"xp"`
	Streak  StreakStatus  `json:"streak"`
	Avatar  AvatarState   `json:"avatar"`
	Insight string        `json:"insight"`
}

// SubmitLog appends a daily log and applies its gamification effects:
// XP award, streak update, refreshed avatar state and insight.
func SubmitLog(ctx context.Context, users storage.UserRepository, logs storage.LogRepository, body *LogRequest, now time.Time) (*LogResult, error) {
	user, err := users.GetUser(ctx)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, internal.ErrNoUser
	}

	log := &internal.Log{
		ID:          uuid.NewString(),
		UserID:      user.ID,
		Timestamp:   now,
		Food:        body.Food,
		Sleep:       body.Sleep,
		Mood:        body.Mood,
		Stress:      body.Stress,
		Supplements: body.Supplements,
	}

	gain := CalculateXPGain(log)

	if err := logs.AppendLog(ctx, log); err != nil {
		return nil, err
	}
	if err := AddXP(ctx, users, gain.Total); err != nil {
		return nil, err
	}
	streak, err := UpdateStreak(ctx, users, now)
	if err != nil {
		return nil, err
	}
	avatar, err := GetAvatarState(ctx, users, logs)
	if err != nil {
		return nil, err
	}
	insight, err := GenerateInsight(ctx, users, logs)
	if err != nil {
		return nil, err
	}

	return &LogResult{Log: log, XP: gain, Streak: streak, Avatar: avatar, Insight: insight}, nil
}
