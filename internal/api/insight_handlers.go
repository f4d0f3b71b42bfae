package api

import (
	"github.com/gin-gonic/gin"
	"github.com/mironism/helsi/internal"
	"github.com/mironism/helsi/internal/service"
)

func GetAvatar(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		avatar, err := service.GetAvatarState(c.Request.Context(), app.UserRepo(), app.LogRepo())
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to derive avatar state")
			return
		}
		HandleSuccess(c, app.Logger(), avatar, nil)
	}
}

func GetInsight(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		insight, err := service.GenerateInsight(c.Request.Context(), app.UserRepo(), app.LogRepo())
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to generate insight")
			return
		}

		logCount := 0
		user, err := app.UserRepo().GetUser(c.Request.Context())
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to fetch profile")
			return
		}
		if user != nil {
			logs, err := app.LogRepo().ListLogs(c.Request.Context(), user.ID)
			if err != nil {
				HandleError(c, app.Logger(), err, 500, "Failed to fetch logs")
				return
			}
			logCount = len(logs)
		}
		confidence := service.GetConfidenceLevel(logCount)

		meta := map[string]any{"confidence": confidence}
		HandleSuccess(c, app.Logger(), gin.H{"insight": insight}, meta)
	}
}

func GetLeaderboard(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		entries, err := service.GetLeaderboard(c.Request.Context(), app.UserRepo(), app.LogRepo())
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to build leaderboard")
			return
		}
		HandleSuccess(c, app.Logger(), entries, nil)
	}
}

func GetInsights(app App) gin.HandlerFunc {
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

		HandleSuccess(c, app.Logger(), service.ComputeInsights(logs), nil)
	}
}
