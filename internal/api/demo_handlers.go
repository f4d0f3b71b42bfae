package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mironism/helsi/internal/service"
)

func PostDemoSeed(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := service.SeedDemoData(c.Request.Context(), app.Store(), time.Now())
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to seed demo data")
			return
		}
		HandleSuccess(c, app.Logger(), user, map[string]any{"seeded": true})
	}
}

func PostDemoReset(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := app.Store().Reset(c.Request.Context()); err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to reset demo data")
			return
		}
		HandleSuccess(c, app.Logger(), nil, map[string]any{"reset": true})
	}
}
