package service

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/aula-planner/internal/models"
	appErrors "github.com/noah-isme/aula-planner/pkg/errors"
	"github.com/noah-isme/aula-planner/pkg/export"
)

type resultStub struct {
	records map[string]*models.ArchivedResult
}

func (s resultStub) Get(_ context.Context, id string) (*models.ArchivedResult, error) {
	record, ok := s.records[id]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrResultNotFound, "")
	}
	return record, nil
}

func newExportServiceForTest(t *testing.T) *ExportService {
	t.Helper()
	stub := resultStub{records: map[string]*models.ArchivedResult{
		"r1": {
			ID:        "r1",
			SessionID: "s1",
			Response: models.SolveResponse{
				Status:         "Optimal",
				ObjectiveValue: floatPtr(3),
				Assignments:    []string{"G1 -> P1_Aula_1 -> 08:00-10:00", "G2 -> P2_Aula_1 -> 10:00-12:00"},
			},
			ReceivedAt: time.Date(2024, 5, 2, 14, 30, 0, 0, time.UTC),
		},
	}}
	return NewExportService(stub, zap.NewNop(), export.NewCSVExporter(), export.NewPDFExporter())
}

func TestExportServiceCSV(t *testing.T) {
	svc := newExportServiceForTest(t)

	file, err := svc.Export(context.Background(), "r1", models.ExportFormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "room_assignment_20240502_143000.csv", file.Filename)
	assert.Equal(t, "text/csv; charset=utf-8", file.ContentType)
	assert.Equal(t, "#,Group,Classroom,Time slot\n1,G1,P1_Aula_1,08:00-10:00\n2,G2,P2_Aula_1,10:00-12:00\n", string(file.Payload))
}

func TestExportServicePDF(t *testing.T) {
	svc := newExportServiceForTest(t)

	file, err := svc.Export(context.Background(), "r1", models.ExportFormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.True(t, bytes.HasPrefix(file.Payload, []byte("%PDF-")))
}

func TestExportServiceErrors(t *testing.T) {
	svc := newExportServiceForTest(t)

	_, err := svc.Export(context.Background(), "r1", models.ExportFormat("xlsx"))
	assert.ErrorIs(t, err, appErrors.ErrUnsupportedFormat)

	_, err = svc.Export(context.Background(), "missing", models.ExportFormatCSV)
	assert.ErrorIs(t, err, appErrors.ErrResultNotFound)
}

func TestBuildAssignmentDataset(t *testing.T) {
	data := BuildAssignmentDataset(models.SolveResponse{
		Status:      "Optimal",
		Assignments: []string{"G1 -> A1 -> Mon 08:00 -> 10:00", "free-form line"},
	})

	require.Len(t, data.Rows, 2)
	assert.Equal(t, map[string]string{ColumnIndex: "1", ColumnGroup: "G1", ColumnClassroom: "A1", ColumnSlot: "Mon 08:00 -> 10:00"}, data.Rows[0])
	assert.Equal(t, map[string]string{ColumnIndex: "2", ColumnGroup: "free-form line"}, data.Rows[1])
	assert.Equal(t, []string{"Solution status: Optimal"}, data.Notes)

	empty := BuildAssignmentDataset(models.SolveResponse{Status: "Infeasible"})
	assert.Empty(t, empty.Rows)
	assert.Equal(t, []string{"Solution status: Infeasible", NoAssignmentsMessage}, empty.Notes)
}
