package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"spartan/trainer/internal/domain"
	"spartan/trainer/internal/pace"
	"spartan/trainer/internal/service"
)

type AthleteHandler struct {
	athleteService service.AthleteService
}

func NewAthleteHandler(athleteService service.AthleteService) *AthleteHandler {
	return &AthleteHandler{athleteService: athleteService}
}

// thresholdPace resolves the pace half of a thresholds request.
func (r ThresholdsRequest) thresholdPace() (float64, bool) {
	if r.ThresholdPace == "" {
		return r.ThresholdPaceSecPerKm, true
	}
	p := pace.ParseSecPerKm(r.ThresholdPace)
	return float64(p.Seconds), p.Parsed
}

// CreateAthlete godoc
// @Summary Create an athlete profile
// @Tags Athletes
// @Accept json
// @Produce json
// @Param athlete body CreateAthleteRequest true "Athlete profile"
// @Success 201 {object} domain.Athlete
// @Failure 400 {object} gin.H "Invalid input"
// @Router /athletes [post]
func (h *AthleteHandler) CreateAthlete(c *gin.Context) {
	var req CreateAthleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	paceSec, ok := req.thresholdPace()
	if !ok {
		abortWithError(c, http.StatusBadRequest, "thresholdPace must be M:SS")
		return
	}

	athlete := &domain.Athlete{
		Name:                  req.Name,
		Email:                 req.Email,
		ThresholdPaceSecPerKm: paceSec,
		ThresholdHrBpm:        req.ThresholdHrBpm,
		Availability:          req.Availability,
		Goal:                  req.Goal,
	}
	created, err := h.athleteService.CreateAthlete(c.Request.Context(), athlete)
	if err != nil {
		handleServiceError(c, err, "Failed to create athlete.")
		return
	}
	c.JSON(http.StatusCreated, created)
}

// GetAthlete godoc
// @Summary Get an athlete profile
// @Tags Athletes
// @Produce json
// @Param id path string true "Athlete ObjectID Hex"
// @Success 200 {object} domain.Athlete
// @Failure 404 {object} gin.H "Athlete not found"
// @Router /athletes/{id} [get]
func (h *AthleteHandler) GetAthlete(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		abortWithError(c, http.StatusBadRequest, "Invalid athlete ID format.")
		return
	}
	athlete, err := h.athleteService.GetAthlete(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err, "Failed to retrieve athlete.")
		return
	}
	c.JSON(http.StatusOK, athlete)
}

// UpdateAthlete applies whichever of thresholds, availability and goal the
// body carries.
func (h *AthleteHandler) UpdateAthlete(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		abortWithError(c, http.StatusBadRequest, "Invalid athlete ID format.")
		return
	}
	var req UpdateAthleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Thresholds == nil && req.Availability == nil && req.Goal == nil {
		abortWithError(c, http.StatusBadRequest, "Nothing to update.")
		return
	}

	ctx := c.Request.Context()
	var (
		athlete *domain.Athlete
		err     error
	)
	if req.Thresholds != nil {
		paceSec, ok := req.Thresholds.thresholdPace()
		if !ok {
			abortWithError(c, http.StatusBadRequest, "thresholdPace must be M:SS")
			return
		}
		if athlete, err = h.athleteService.UpdateThresholds(ctx, id, paceSec, req.Thresholds.ThresholdHrBpm); err != nil {
			handleServiceError(c, err, "Failed to update thresholds.")
			return
		}
	}
	if req.Availability != nil {
		if athlete, err = h.athleteService.UpdateAvailability(ctx, id, *req.Availability); err != nil {
			handleServiceError(c, err, "Failed to update availability.")
			return
		}
	}
	if req.Goal != nil {
		if athlete, err = h.athleteService.SetGoal(ctx, id, *req.Goal); err != nil {
			handleServiceError(c, err, "Failed to update goal.")
			return
		}
	}
	c.JSON(http.StatusOK, athlete)
}

// GetZones godoc
// @Summary Get pace and heart-rate zones
// @Tags Athletes
// @Produce json
// @Param id path string true "Athlete ObjectID Hex"
// @Success 200 {object} service.AthleteZones
// @Failure 404 {object} gin.H "Athlete not found"
// @Router /athletes/{id}/zones [get]
func (h *AthleteHandler) GetZones(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		abortWithError(c, http.StatusBadRequest, "Invalid athlete ID format.")
		return
	}
	zones, err := h.athleteService.GetZones(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err, "Failed to compute zones.")
		return
	}
	c.JSON(http.StatusOK, zones)
}

// handleServiceError maps service sentinels to HTTP statuses. Anything
// unrecognised is logged and reported as a 500 with fallback.
func handleServiceError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrValidationFailed),
		errors.Is(err, service.ErrInvalidDate),
		errors.Is(err, service.ErrInvalidExportType),
		errors.Is(err, service.ErrInvalidRange),
		errors.Is(err, service.ErrNoRaceGoal):
		abortWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrAthleteNotFound),
		errors.Is(err, service.ErrPlanNotFound),
		errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, service.ErrExportNotFound),
		errors.Is(err, service.ErrNoSessionsInRange):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrExportNotStored):
		abortWithError(c, http.StatusConflict, err.Error())
	default:
		log.Printf("ERROR: %s %s [%s]: %v", c.Request.Method, c.FullPath(), c.GetString(ContextRequestIDKey), err)
		abortWithError(c, http.StatusInternalServerError, fallback)
	}
}
