package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/aula-planner/internal/models"
	appErrors "github.com/noah-isme/aula-planner/pkg/errors"
	"github.com/noah-isme/aula-planner/pkg/export"
)

const assignmentSeparator = " -> "

// Export column headers.
const (
	ColumnIndex     = "#"
	ColumnGroup     = "Group"
	ColumnClassroom = "Classroom"
	ColumnSlot      = "Time slot"
)

type resultReader interface {
	Get(ctx context.Context, id string) (*models.ArchivedResult, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
	ContentType() string
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
	ContentType() string
}

// ExportFile is a rendered download.
type ExportFile struct {
	Filename    string
	ContentType string
	Payload     []byte
}

// ExportService renders archived results as CSV or PDF.
type ExportService struct {
	results resultReader
	csv     csvRenderer
	pdf     pdfRenderer
	logger  *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(results resultReader, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{results: results, csv: csv, pdf: pdf, logger: logger}
}

// Export loads the archived result and renders it in the requested format.
func (s *ExportService) Export(ctx context.Context, resultID string, format models.ExportFormat) (*ExportFile, error) {
	if format != models.ExportFormatCSV && format != models.ExportFormatPDF {
		return nil, appErrors.Clone(appErrors.ErrUnsupportedFormat, fmt.Sprintf("unsupported export format %q", format))
	}
	record, err := s.results.Get(ctx, resultID)
	if err != nil {
		return nil, err
	}

	dataset := BuildAssignmentDataset(record.Response)
	var (
		payload     []byte
		contentType string
	)
	switch format {
	case models.ExportFormatCSV:
		payload, err = s.csv.Render(dataset)
		contentType = s.csv.ContentType()
	case models.ExportFormatPDF:
		payload, err = s.pdf.Render(dataset, "Room assignment")
		contentType = s.pdf.ContentType()
	}
	if err != nil {
		s.logger.Error("render export failed", zap.String("result_id", resultID), zap.String("format", string(format)), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	return &ExportFile{
		Filename:    buildFilename(record.ReceivedAt, format),
		ContentType: contentType,
		Payload:     payload,
	}, nil
}

// BuildAssignmentDataset splits "group -> classroom -> slot" lines into columns.
// Lines in any other shape land whole in the Group column.
func BuildAssignmentDataset(resp models.SolveResponse) export.Dataset {
	rows := make([]map[string]string, 0, len(resp.Assignments))
	for i, line := range resp.Assignments {
		row := map[string]string{ColumnIndex: strconv.Itoa(i + 1)}
		parts := strings.SplitN(line, assignmentSeparator, 3)
		if len(parts) == 3 {
			row[ColumnGroup] = strings.TrimSpace(parts[0])
			row[ColumnClassroom] = strings.TrimSpace(parts[1])
			row[ColumnSlot] = strings.TrimSpace(parts[2])
		} else {
			row[ColumnGroup] = line
		}
		rows = append(rows, row)
	}

	notes := []string{"Solution status: " + resp.Status}
	if resp.ObjectiveValue != nil {
		notes = append(notes, "Objective value (Z): "+FormatObjective(*resp.ObjectiveValue))
	}
	if len(rows) == 0 {
		notes = append(notes, NoAssignmentsMessage)
	}

	return export.Dataset{
		Headers: []string{ColumnIndex, ColumnGroup, ColumnClassroom, ColumnSlot},
		Rows:    rows,
		Notes:   notes,
	}
}

func buildFilename(at time.Time, format models.ExportFormat) string {
	if at.IsZero() {
		at = time.Now()
	}
	return fmt.Sprintf("room_assignment_%s.%s", at.UTC().Format("20060102_150405"), format)
}
