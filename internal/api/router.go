package api

import (
	"github.com/gin-gonic/gin"
	"github.com/mironism/helsi/internal/auth"
	"github.com/mironism/helsi/internal/config"
)

// NewRouter assembles the full HTTP surface behind the auth middleware.
func NewRouter(app App, provider auth.Provider, cfg *config.Config) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	protected := r.Group("/api")
	protected.Use(auth.AuthMiddleware(provider, cfg))

	protected.POST("/survey", PostSurvey(app))
	protected.GET("/profile", GetProfile(app))
	protected.PATCH("/profile/name", PatchProfileName(app))
	protected.DELETE("/data", DeleteData(app))

	protected.POST("/logs", PostLog(app))
	protected.GET("/logs", GetLogs(app))

	protected.GET("/avatar", GetAvatar(app))
	protected.GET("/insight", GetInsight(app))
	protected.GET("/leaderboard", GetLeaderboard(app))
	protected.GET("/insights", GetInsights(app))

	protected.POST("/documents", PostDocuments(app))
	protected.GET("/documents", GetDocuments(app))
	protected.GET("/documents/insights", GetDocumentInsights(app))

	protected.POST("/demo/seed", PostDemoSeed(app))
	protected.POST("/demo/reset", PostDemoReset(app))

	return r
}
