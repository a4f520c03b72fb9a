package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"spartan/trainer/internal/domain"
	"spartan/trainer/internal/planner"
	"spartan/trainer/internal/service"
)

type PlanHandler struct {
	planService service.PlanService
}

func NewPlanHandler(planService service.PlanService) *PlanHandler {
	return &PlanHandler{planService: planService}
}

// RegeneratePlan godoc
// @Summary Regenerate the athlete's active plan
// @Description Replaces every session of the active plan with a freshly generated calendar up to the goal race.
// @Tags Plans
// @Accept json
// @Produce json
// @Param id path string true "Athlete ObjectID Hex"
// @Param request body RegeneratePlanRequest false "Optional start date"
// @Success 200 {object} service.RegenerateResult
// @Failure 400 {object} gin.H "Invalid input or no race goal"
// @Failure 404 {object} gin.H "Athlete not found"
// @Router /athletes/{id}/plan/regenerate [post]
func (h *PlanHandler) RegeneratePlan(c *gin.Context) {
	athleteID, ok := objectIDParam(c, "id")
	if !ok {
		abortWithError(c, http.StatusBadRequest, "Invalid athlete ID format.")
		return
	}
	var req RegeneratePlanRequest
	// The body is optional.
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
			return
		}
	}

	result, err := h.planService.RegeneratePlan(c.Request.Context(), athleteID, req.StartDate)
	if err != nil {
		handleServiceError(c, err, "Failed to regenerate plan.")
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *PlanHandler) ListPlans(c *gin.Context) {
	athleteID, ok := objectIDParam(c, "id")
	if !ok {
		abortWithError(c, http.StatusBadRequest, "Invalid athlete ID format.")
		return
	}
	plans, err := h.planService.ListPlans(c.Request.Context(), athleteID)
	if err != nil {
		handleServiceError(c, err, "Failed to retrieve plans.")
		return
	}
	if plans == nil {
		plans = []domain.TrainingPlan{}
	}
	c.JSON(http.StatusOK, plans)
}

// PreviewPlan godoc
// @Summary Generate a plan without saving it
// @Tags Plans
// @Accept json
// @Produce json
// @Param request body PreviewRequest true "Generator input"
// @Success 200 {object} PreviewResponse
// @Failure 400 {object} gin.H "Invalid input"
// @Router /plans/preview [post]
func (h *PlanHandler) PreviewPlan(c *gin.Context) {
	var req PreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	start, err := time.Parse(domain.DateLayout, req.StartDate)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "startDate must be yyyy-MM-dd")
		return
	}
	race, err := time.Parse(domain.DateLayout, req.RaceDate)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "raceDate must be yyyy-MM-dd")
		return
	}
	availability := domain.AvailabilityProfile{
		DaysAvailable:       req.DaysAvailable,
		MaxMinutesByDay:     req.MaxMinutes,
		PreferredLongRunDay: req.PreferredLongRunDay,
		WeekendLongRunAvoid: req.WeekendLongRunAvoid,
	}
	if err := service.ValidateAvailability(availability); err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	res := h.planService.Preview(planner.Input{
		StartDate:             start,
		RaceDate:              race,
		Availability:          availability,
		ThresholdPaceSecPerKm: req.ThresholdPaceSecPerKm,
		ThresholdHrBpm:        req.ThresholdHrBpm,
	})
	c.JSON(http.StatusOK, PreviewResponse{
		TotalWeeks:            res.TotalWeeks,
		Layout:                res.Layout,
		NoAvailableDays:       res.NoAvailableDays,
		HorizonClamped:        res.HorizonClamped,
		ThresholdPaceSecPerKm: res.ThresholdPaceSecPerKm,
		ThresholdHrBpm:        res.ThresholdHrBpm,
		Sessions:              MapSessionsToResponse(res.Sessions),
	})
}

// GetPlanSessions lists a plan's sessions, optionally bounded by the
// inclusive ?from= and ?to= dates.
func (h *PlanHandler) GetPlanSessions(c *gin.Context) {
	planID, ok := objectIDParam(c, "id")
	if !ok {
		abortWithError(c, http.StatusBadRequest, "Invalid plan ID format.")
		return
	}
	sessions, err := h.planService.GetSessions(c.Request.Context(), planID, c.Query("from"), c.Query("to"))
	if err != nil {
		handleServiceError(c, err, "Failed to retrieve sessions.")
		return
	}
	c.JSON(http.StatusOK, MapSessionsToResponse(sessions))
}

func (h *PlanHandler) GetSession(c *gin.Context) {
	sessionID, ok := objectIDParam(c, "id")
	if !ok {
		abortWithError(c, http.StatusBadRequest, "Invalid session ID format.")
		return
	}
	session, err := h.planService.GetSession(c.Request.Context(), sessionID)
	if err != nil {
		handleServiceError(c, err, "Failed to retrieve session.")
		return
	}
	c.JSON(http.StatusOK, MapSessionToResponse(session))
}
