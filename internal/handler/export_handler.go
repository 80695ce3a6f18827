package handler

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/aula-planner/internal/models"
	"github.com/noah-isme/aula-planner/internal/service"
	"github.com/noah-isme/aula-planner/pkg/response"
)

type resultExporter interface {
	Export(ctx context.Context, resultID string, format models.ExportFormat) (*service.ExportFile, error)
}

// ExportHandler serves downloads of archived results.
type ExportHandler struct {
	exports resultExporter
}

// NewExportHandler constructs the handler.
func NewExportHandler(exports resultExporter) *ExportHandler {
	return &ExportHandler{exports: exports}
}

// Download godoc
// @Summary Download a solver result
// @Tags Results
// @Produce text/csv
// @Produce application/pdf
// @Param resultId path string true "Result ID"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} binary
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /results/{resultId}/export [get]
func (h *ExportHandler) Download(c *gin.Context) {
	format := models.ExportFormat(strings.ToLower(c.DefaultQuery("format", string(models.ExportFormatCSV))))
	file, err := h.exports.Export(c.Request.Context(), c.Param("resultId"), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Payload)
}
