package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"spartan/trainer/internal/service"
)

func SetupRoutes(
	router *gin.Engine,
	athleteService service.AthleteService,
	planService service.PlanService,
	exportService service.ExportService,
) {
	athleteHandler := NewAthleteHandler(athleteService)
	planHandler := NewPlanHandler(planService)
	exportHandler := NewExportHandler(exportService)

	router.Use(RequestIDMiddleware())

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		// --- Athlete Routes ---
		athleteGroup := apiV1.Group("/athletes")
		{
			athleteGroup.POST("", athleteHandler.CreateAthlete)
			athleteGroup.GET("/:id", athleteHandler.GetAthlete)
			athleteGroup.PUT("/:id", athleteHandler.UpdateAthlete)
			athleteGroup.GET("/:id/zones", athleteHandler.GetZones)

			// POST /api/v1/athletes/{id}/plan/regenerate
			athleteGroup.POST("/:id/plan/regenerate", planHandler.RegeneratePlan)
			athleteGroup.GET("/:id/plans", planHandler.ListPlans)
			athleteGroup.GET("/:id/exports", exportHandler.ListExports)
		}

		// --- Plan Routes ---
		planGroup := apiV1.Group("/plans")
		{
			planGroup.POST("/preview", planHandler.PreviewPlan)
			// GET /api/v1/plans/{id}/sessions?from=yyyy-MM-dd&to=yyyy-MM-dd
			planGroup.GET("/:id/sessions", planHandler.GetPlanSessions)
		}
		apiV1.GET("/sessions/:id", planHandler.GetSession)

		// --- Export Routes ---
		exportGroup := apiV1.Group("/exports")
		{
			exportGroup.POST("", exportHandler.CreateExport)
			exportGroup.GET("/:id", exportHandler.GetExport)
		}
	}
}
