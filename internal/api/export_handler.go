package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"spartan/trainer/internal/domain"
	"spartan/trainer/internal/service"
)

const (
	ExportIDHeader          = "X-Export-Id"
	ExportDownloadURLHeader = "X-Export-Download-Url"
)

type ExportHandler struct {
	exportService service.ExportService
}

func NewExportHandler(exportService service.ExportService) *ExportHandler {
	return &ExportHandler{exportService: exportService}
}

// CreateExport godoc
// @Summary Export upcoming sessions of a plan
// @Description Renders the sessions from today through the next week or month and returns the document as an attachment.
// @Tags Exports
// @Accept json
// @Produce json,application/zip
// @Param request body ExportRequest true "Plan, range (week|month) and exportType (json|fit|fit_binary)"
// @Success 200 {file} file "Rendered export document"
// @Failure 400 {object} gin.H "Invalid input"
// @Failure 404 {object} gin.H "Plan not found or no sessions in range"
// @Router /exports [post]
func (h *ExportHandler) CreateExport(c *gin.Context) {
	var req ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	planID, err := primitive.ObjectIDFromHex(req.PlanID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid plan ID format.")
		return
	}

	result, err := h.exportService.Export(c.Request.Context(), service.ExportRequest{
		PlanID: planID,
		Range:  req.Range,
		Type:   req.ExportType,
	})
	if err != nil {
		handleServiceError(c, err, "Failed to export sessions.")
		return
	}

	doc := result.Document
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.FileName))
	c.Header(ExportIDHeader, result.Job.ID.Hex())
	if result.DownloadURL != "" {
		c.Header(ExportDownloadURLHeader, result.DownloadURL)
	}
	c.Data(http.StatusOK, doc.ContentType, doc.Data)
}

// GetExport returns an export job, with a fresh presigned URL when the
// document was uploaded.
func (h *ExportHandler) GetExport(c *gin.Context) {
	jobID, ok := objectIDParam(c, "id")
	if !ok {
		abortWithError(c, http.StatusBadRequest, "Invalid export ID format.")
		return
	}
	ctx := c.Request.Context()
	job, err := h.exportService.GetExport(ctx, jobID)
	if err != nil {
		handleServiceError(c, err, "Failed to retrieve export.")
		return
	}
	resp := ExportJobResponse{ExportJob: job}
	if job.ObjectKey != "" {
		if resp.DownloadURL, err = h.exportService.GetDownloadURL(ctx, jobID); err != nil {
			handleServiceError(c, err, "Failed to generate download URL.")
			return
		}
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ExportHandler) ListExports(c *gin.Context) {
	athleteID, ok := objectIDParam(c, "id")
	if !ok {
		abortWithError(c, http.StatusBadRequest, "Invalid athlete ID format.")
		return
	}
	jobs, err := h.exportService.ListExports(c.Request.Context(), athleteID)
	if err != nil {
		handleServiceError(c, err, "Failed to retrieve exports.")
		return
	}
	if jobs == nil {
		jobs = []domain.ExportJob{}
	}
	c.JSON(http.StatusOK, jobs)
}
