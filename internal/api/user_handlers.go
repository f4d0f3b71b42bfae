package api

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mironism/helsi/internal"
	"github.com/mironism/helsi/internal/service"
)

func PostSurvey(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body service.SurveyRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid JSON")
			return
		}

		if err := service.ValidateSurveyRequest(&body); err != nil {
			HandleError(c, app.Logger(), err, 400, "Survey validation failed")
			return
		}

		user, err := service.CompleteSurvey(c.Request.Context(), app.UserRepo(), &body, time.Now())
		if err != nil {
			if errors.Is(err, service.ErrUserExists) {
				HandleError(c, app.Logger(), err, 409, "Survey already completed")
				return
			}
			HandleError(c, app.Logger(), err, 500, "Failed to create user")
			return
		}

		HandleSuccess(c, app.Logger(), user, nil)
	}
}

func GetProfile(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := app.UserRepo().GetUser(c.Request.Context())
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to fetch profile")
			return
		}
		if user == nil {
			HandleError(c, app.Logger(), internal.ErrNoUser, 404, "No profile")
			return
		}

		logs, err := app.LogRepo().ListLogs(c.Request.Context(), user.ID)
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to fetch logs")
			return
		}

		meta := map[string]any{"log_count": len(logs)}
		HandleSuccess(c, app.Logger(), user, meta)
	}
}

func PatchProfileName(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body service.NameRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid JSON")
			return
		}

		if err := service.ValidateNameRequest(&body); err != nil {
			HandleError(c, app.Logger(), err, 400, "Name validation failed")
			return
		}

		user, err := service.UpdateName(c.Request.Context(), app.UserRepo(), &body)
		if err != nil {
			if errors.Is(err, internal.ErrNoUser) {
				HandleError(c, app.Logger(), err, 404, "No profile")
				return
			}
			HandleError(c, app.Logger(), err, 500, "Failed to update name")
			return
		}

		HandleSuccess(c, app.Logger(), user, nil)
	}
}

func DeleteData(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := app.Store().Reset(c.Request.Context()); err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to reset data")
			return
		}
		HandleSuccess(c, app.Logger(), nil, map[string]any{"reset": true})
	}
}
