package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mkeller/swu-tracker/backend/internal/csvio"
	"github.com/mkeller/swu-tracker/backend/internal/services"
)

// Uploads larger than this are rejected before parsing.
const maxImportSize = 8 * 1024 * 1024

// ImportsHandler manages CSV import jobs.
type ImportsHandler struct {
	worker *services.ImportWorker
}

func NewImportsHandler(worker *services.ImportWorker) *ImportsHandler {
	return &ImportsHandler{worker: worker}
}

// readCSVBody pulls the CSV payload from the request, accepting either a raw
// body or a multipart "file" field.
func readCSVBody(c *gin.Context) (string, error) {
	if file, err := c.FormFile("file"); err == nil {
		f, err := file.Open()
		if err != nil {
			return "", err
		}
		defer f.Close()
		data, err := io.ReadAll(io.LimitReader(f, maxImportSize))
		return string(data), err
	}

	data, err := io.ReadAll(io.LimitReader(c.Request.Body, maxImportSize))
	return string(data), err
}

// CreateJob accepts a CSV upload and queues it for background processing.
// Only one job may be active at a time.
// POST /api/imports
func (h *ImportsHandler) CreateJob(c *gin.Context) {
	if h.worker.HasActiveJob() {
		c.JSON(http.StatusConflict, gin.H{
			"error": "An import is already in progress. Wait for it to finish or delete it.",
		})
		return
	}

	raw, err := readCSVBody(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read upload: " + err.Error()})
		return
	}
	if raw == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "empty upload"})
		return
	}

	job, err := h.worker.CreateJob(raw, c.Query("source"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create job: " + err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, services.JobResponse(job))
}

// GetJob returns one job's status.
// GET /api/imports/:id
func (h *ImportsHandler) GetJob(c *gin.Context) {
	job, err := h.worker.GetJob(c.Param("id"))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "no such job"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "job lookup failed: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, services.JobResponse(job))
}

// GetCurrentJob returns the active job, if any.
// GET /api/imports/current
func (h *ImportsHandler) GetCurrentJob(c *gin.Context) {
	job, err := h.worker.GetCurrentJob()
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusOK, gin.H{"active": false})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "job lookup failed: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"active": true, "job": services.JobResponse(job)})
}

// DeleteJob removes a job record.
// DELETE /api/imports/:id
func (h *ImportsHandler) DeleteJob(c *gin.Context) {
	if err := h.worker.DeleteJob(c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// Preview parses an upload synchronously without writing anything, so the
// client can show what an import would do.
// POST /api/imports/preview
func (h *ImportsHandler) Preview(c *gin.Context) {
	raw, err := readCSVBody(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read upload: " + err.Error()})
		return
	}

	items, diagnostics, err := csvio.ParseCSV(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items":       items,
		"diagnostics": diagnostics,
		"row_count":   len(items),
	})
}
