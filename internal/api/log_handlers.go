package api

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mironism/helsi/internal"
	"github.com/mironism/helsi/internal/service"
)

func PostLog(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body service.LogRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid JSON")
			return
		}

		if err := service.ValidateLogRequest(&body); err != nil {
			HandleError(c, app.Logger(), err, 400, "Log validation failed")
			return
		}

		result, err := service.SubmitLog(c.Request.Context(), app.UserRepo(), app.LogRepo(), &body, time.Now())
		if err != nil {
			if errors.Is(err, internal.ErrNoUser) {
				HandleError(c, app.Logger(), err, 404, "No profile")
				return
			}
			HandleError(c, app.Logger(), err, 500, "Failed to save log")
			return
		}

		HandleSuccess(c, app.Logger(), result, nil)
	}
}

func GetLogs(app App) gin.HandlerFunc {
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

		HandleSuccess(c, app.Logger(), logs, map[string]any{"count": len(logs)})
	}
}
