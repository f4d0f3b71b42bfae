package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/mironism/helsi/internal"
	"github.com/mironism/helsi/internal/storage"
)

// ErrUserExists guards the single-tenant invariant: survey completion
// while a user already exists is rejected.
var ErrUserExists = errors.New("a user already exists; reset first")

type SurveyRequest struct {
	SleepQuality     string `json:"sleep_quality" validate:"required"`
	FatigueFrequency string `json:"fatigue_frequency" validate:"required"`
	TracksHealth     string `json:"tracks_health" validate:"required"`
	MainGoal         string `json:"main_goal" validate:"required"`
	AvatarType       string `json:"avatar_type" validate:"required,oneof=Explorer Calm Charger"`
}

func ValidateSurveyRequest(body *SurveyRequest) error {
	return validate.Struct(body)
}

// CompleteSurvey creates the session user with zero XP and no streak.
func CompleteSurvey(ctx context.Context, users storage.UserRepository, body *SurveyRequest, now time.Time) (*internal.User, error) {
	existing, err := users.GetUser(ctx)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrUserExists
	}

	user := &internal.User{
		ID:         uuid.NewString(),
		Name:       "You",
		AvatarType: body.AvatarType,
		SurveyAnswers: internal.SurveyAnswers{
			SleepQuality:     body.SleepQuality,
			FatigueFrequency: body.FatigueFrequency,
			TracksHealth:     body.TracksHealth,
			MainGoal:         body.MainGoal,
		},
		XP:        0,
		Streak:    0,
		CreatedAt: now,
	}
	if err := users.SaveUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

type NameRequest struct {
	Name string `json:"name" validate:"required,min=1,max=64"`
}

func ValidateNameRequest(body *NameRequest) error {
	return validate.Struct(body)
}

// UpdateName edits the display name of the current user.
func UpdateName(ctx context.Context, users storage.UserRepository, body *NameRequest) (*internal.User, error) {
	user, err := users.GetUser(ctx)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, internal.ErrNoUser
	}
	user.Name = body.Name
	if err := users.SaveUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// SeedDemoData replaces the store contents with a perfect seven-day
// journey so the UI can be explored without real history.
func SeedDemoData(ctx context.Context, store storage.Store, now time.Time) (*internal.User, error) {
	if err := store.Reset(ctx); err != nil {
		return nil, err
	}

	lastLog := now
	user := &internal.User{
		ID:         "demo_user",
		Name:       "You",
		AvatarType: internal.AvatarExplorer,
		SurveyAnswers: internal.SurveyAnswers{
			SleepQuality:     "Good",
			FatigueFrequency: "Sometimes",
			TracksHealth:     "Sometimes",
			MainGoal:         "Energy",
		},
		XP:          210,
		Streak:      7,
		LastLogDate: &lastLog,
		CreatedAt:   now.AddDate(0, 0, -7),
	}
	if err := store.SaveUser(ctx, user); err != nil {
		return nil, err
	}

	for i := 0; i < 7; i++ {
		log := &internal.Log{
			ID:          uuid.NewString(),
			UserID:      user.ID,
			Timestamp:   now.AddDate(0, 0, -(6 - i)),
			Food:        "Clean",
			Sleep:       internal.SleepGood,
			Mood:        internal.MoodHappy,
			Stress:      internal.StressLow,
			Supplements: internal.SupplementsTaken,
		}
		if err := store.AppendLog(ctx, log); err != nil {
			return nil, err
		}
	}
	return user, nil
}
