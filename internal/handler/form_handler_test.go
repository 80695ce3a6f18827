package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/aula-planner/internal/dto"
	"github.com/noah-isme/aula-planner/internal/models"
	"github.com/noah-isme/aula-planner/internal/repository"
	"github.com/noah-isme/aula-planner/internal/service"
	"github.com/noah-isme/aula-planner/internal/solver"
	"github.com/noah-isme/aula-planner/pkg/jobs"
)

type envelope[T any] struct {
	Data  T `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type apiFixture struct {
	t       *testing.T
	router  *gin.Engine
	results *service.ResultService
}

type fixtureOptions struct {
	solverURL string
	runner    service.TaskRunner
}

func newAPIFixture(t *testing.T, opts fixtureOptions) *apiFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	if opts.runner == nil {
		opts.runner = jobs.Inline{}
	}
	metrics := service.NewMetricsService()
	cache := service.NewCacheService(repository.NewMemoryCacheRepository(), metrics, time.Hour, zap.NewNop(), true)
	results := service.NewResultService(cache, time.Hour, zap.NewNop())
	sessions := service.NewSessionService(service.SessionConfig{DefaultFloors: 1, DefaultDelta: 20, DefaultLambda: 1, TTL: time.Hour}, service.SubmissionDeps{
		Solver:  solver.NewClient(opts.solverURL),
		Runner:  opts.runner,
		Archive: results,
		Metrics: metrics,
	}, zap.NewNop())

	router := gin.New()
	RegisterRoutes(router.Group("/api/v1"), NewFormHandler(sessions, nil), NewExportHandler(service.NewExportService(results, zap.NewNop(), nil, nil)))
	return &apiFixture{t: t, router: router, results: results}
}

func (f *apiFixture) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	f.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(f.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, "/api/v1"+path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) envelope[T] {
	t.Helper()
	var out envelope[T]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func (f *apiFixture) createSession() dto.FormView {
	f.t.Helper()
	w := f.do(http.MethodPost, "/sessions", nil)
	require.Equal(f.t, http.StatusCreated, w.Code, w.Body.String())
	return decode[dto.FormView](f.t, w).Data
}

// addRow creates a row under base+collection and fills it in.
func (f *apiFixture) addRow(base, collection string, name, quantity *string) models.Row {
	f.t.Helper()
	w := f.do(http.MethodPost, base+collection, nil)
	require.Equal(f.t, http.StatusCreated, w.Code, w.Body.String())
	row := decode[dto.RowResponse](f.t, w).Data.Row

	w = f.do(http.MethodPatch, base+"/rows/"+row.ID, dto.EditRowRequest{Name: name, Quantity: quantity})
	require.Equal(f.t, http.StatusOK, w.Code, w.Body.String())
	return decode[dto.RowResponse](f.t, w).Data.Row
}

func str(v string) *string {
	return &v
}

// fillForm adds one classroom, one group and one slot with the given values.
func (f *apiFixture) fillForm(sessionID string) {
	f.t.Helper()
	base := "/sessions/" + sessionID
	w := f.do(http.MethodPost, base+"/floors/1/classrooms", nil)
	require.Equal(f.t, http.StatusCreated, w.Code, w.Body.String())
	room := decode[dto.RowResponse](f.t, w).Data.Row
	w = f.do(http.MethodPatch, base+"/rows/"+room.ID, dto.EditRowRequest{Name: str("A1"), Quantity: str("30")})
	require.Equal(f.t, http.StatusOK, w.Code, w.Body.String())

	f.addRow(base, "/groups", str("G1"), str("25"))
	f.addRow(base, "/slots", str("08:00-10:00"), nil)

	delta, lambda := 10.0, 2.0
	w = f.do(http.MethodPut, base+"/parameters", dto.SetParametersRequest{Delta: &delta, Lambda: &lambda})
	require.Equal(f.t, http.StatusOK, w.Code, w.Body.String())
}

func solverStub(t *testing.T, status int, body string, captured *[]map[string]interface{}) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if captured != nil {
			var payload map[string]interface{}
			_ = json.NewDecoder(r.Body).Decode(&payload)
			*captured = append(*captured, payload)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestSolveSuccessFlow(t *testing.T) {
	var captured []map[string]interface{}
	srv := solverStub(t, http.StatusOK, `{"estado":"OPTIMAL","valor_objetivo":12.345,"resultados":["G1 -> A1 -> 08:00-10:00"]}`, &captured)
	f := newAPIFixture(t, fixtureOptions{solverURL: srv.URL})

	view := f.createSession()
	f.fillForm(view.SessionID)

	w := f.do(http.MethodPost, "/sessions/"+view.SessionID+"/solve", nil)
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())

	require.Len(t, captured, 1)
	raw, _ := json.Marshal(captured[0])
	assert.JSONEq(t, `{
		"aulas":[{"nombre":"A1","capacidad":30}],
		"grupos":[{"nombre":"G1","tamano":25}],
		"horarios":["08:00-10:00"],
		"parametros":{"delta":0.1,"lambda":2}
	}`, string(raw))

	w = f.do(http.MethodGet, "/sessions/"+view.SessionID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[dto.FormView](t, w).Data
	assert.Equal(t, models.SubmissionSuccess, got.Submission.Outcome)
	assert.Equal(t, models.DisplaySuccess, got.Submission.Variant)
	assert.Contains(t, got.Submission.Text, "12.35")
	assert.Contains(t, got.Submission.Text, "G1 -> A1 -> 08:00-10:00")
	assert.True(t, got.Control.Enabled)
	assert.Equal(t, "10%", got.Parameters.DeltaLabel)
	require.NotEmpty(t, got.Submission.ResultID)

	w = f.do(http.MethodGet, "/results/"+got.Submission.ResultID+"/export?format=csv", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Disposition"), "room_assignment_")
	assert.Equal(t, "#,Group,Classroom,Time slot\n1,G1,A1,08:00-10:00\n", w.Body.String())
}

func TestSolveValidationFailure(t *testing.T) {
	var captured []map[string]interface{}
	srv := solverStub(t, http.StatusOK, `{}`, &captured)
	f := newAPIFixture(t, fixtureOptions{solverURL: srv.URL})
	view := f.createSession()
	base := "/sessions/" + view.SessionID

	f.addRow(base, "/groups", str("G1"), str("25"))
	f.addRow(base, "/slots", str("08:00-10:00"), nil)
	w := f.do(http.MethodPost, base+"/floors/1/classrooms", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	room := decode[dto.RowResponse](t, w).Data.Row
	w = f.do(http.MethodPatch, base+"/rows/"+room.ID, dto.EditRowRequest{Quantity: str("0")})
	require.Equal(t, http.StatusOK, w.Code)

	w = f.do(http.MethodPost, base+"/solve", nil)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())
	body := decode[dto.FormView](t, w)
	require.NotNil(t, body.Error)
	assert.Equal(t, "INCOMPLETE_FORM", body.Error.Code)
	assert.Equal(t, "You must define at least one classroom, one group, and one valid time slot.", body.Data.Submission.Message)
	assert.Equal(t, models.DisplayError, body.Data.Submission.Variant)
	assert.True(t, body.Data.Control.Enabled)
	assert.Empty(t, captured)
}

func TestSolveServiceErrorReEnablesControl(t *testing.T) {
	srv := solverStub(t, http.StatusBadRequest, `{"error":"infeasible"}`, nil)
	f := newAPIFixture(t, fixtureOptions{solverURL: srv.URL})
	view := f.createSession()
	f.fillForm(view.SessionID)

	w := f.do(http.MethodPost, "/sessions/"+view.SessionID+"/solve", nil)
	require.Equal(t, http.StatusAccepted, w.Code)

	got := decode[dto.FormView](t, f.do(http.MethodGet, "/sessions/"+view.SessionID, nil)).Data
	assert.Equal(t, models.SubmissionFailure, got.Submission.Outcome)
	assert.Equal(t, "infeasible", got.Submission.Text)
	assert.Equal(t, models.SubmitControl{Enabled: true, Label: service.SolveLabel}, got.Control)
}

func TestSolveTransportErrorReEnablesControl(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	f := newAPIFixture(t, fixtureOptions{solverURL: url})
	view := f.createSession()
	f.fillForm(view.SessionID)

	w := f.do(http.MethodPost, "/sessions/"+view.SessionID+"/solve", nil)
	require.Equal(t, http.StatusAccepted, w.Code)

	got := decode[dto.FormView](t, w).Data
	assert.Equal(t, models.SubmissionFailure, got.Submission.Outcome)
	assert.Equal(t, models.DisplayError, got.Submission.Variant)
	assert.True(t, strings.HasPrefix(got.Submission.Text, service.TransportErrorMessage))
	assert.True(t, got.Control.Enabled)
}

type heldRunner struct {
	tasks []jobs.Task
}

func (r *heldRunner) Go(_ string, task jobs.Task) error {
	r.tasks = append(r.tasks, task)
	return nil
}

func TestSolveWhileBusyReturnsConflict(t *testing.T) {
	srv := solverStub(t, http.StatusOK, `{"estado":"Optimal","valor_objetivo":null,"resultados":[]}`, nil)
	runner := &heldRunner{}
	f := newAPIFixture(t, fixtureOptions{solverURL: srv.URL, runner: runner})
	view := f.createSession()
	f.fillForm(view.SessionID)

	w := f.do(http.MethodPost, "/sessions/"+view.SessionID+"/solve", nil)
	require.Equal(t, http.StatusAccepted, w.Code)
	busy := decode[dto.FormView](t, w).Data
	assert.Equal(t, models.SubmitControl{Enabled: false, Busy: true, Label: service.SolvingLabel}, busy.Control)
	assert.Equal(t, models.SubmissionSubmitting, busy.Submission.State)

	w = f.do(http.MethodPost, "/sessions/"+view.SessionID+"/solve", nil)
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "SUBMISSION_IN_FLIGHT", decode[dto.FormView](t, w).Error.Code)

	require.Len(t, runner.tasks, 1)
	runner.tasks[0](context.Background())

	got := decode[dto.FormView](t, f.do(http.MethodGet, "/sessions/"+view.SessionID, nil)).Data
	assert.True(t, got.Control.Enabled)
	assert.Equal(t, "Solution status: Optimal\n--- Optimal assignments ---\nNo assignments found.", got.Submission.Text)
}

func TestFloorRegenerationDiscardsClassrooms(t *testing.T) {
	f := newAPIFixture(t, fixtureOptions{solverURL: "http://127.0.0.1:1"})
	view := f.createSession()
	base := "/sessions/" + view.SessionID

	require.Equal(t, http.StatusCreated, f.do(http.MethodPost, base+"/floors/1/classrooms", nil).Code)
	require.Equal(t, http.StatusCreated, f.do(http.MethodPost, base+"/floors/1/classrooms", nil).Code)

	count := 2
	w := f.do(http.MethodPut, base+"/floors", dto.SetFloorCountRequest{Count: &count})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	got := decode[dto.FormView](t, w).Data
	assert.Equal(t, 2, got.FloorCount)
	for _, floor := range got.Floors {
		assert.Empty(t, floor.Rows)
	}

	w = f.do(http.MethodPost, base+"/floors/2/classrooms", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "P2_Aula_1", decode[dto.RowResponse](t, w).Data.Row.Name)
}

func TestRemoveRowKeepsOrder(t *testing.T) {
	f := newAPIFixture(t, fixtureOptions{solverURL: "http://127.0.0.1:1"})
	view := f.createSession()
	base := "/sessions/" + view.SessionID

	r1 := f.addRow(base, "/groups", str("R1"), str("10"))
	r2 := f.addRow(base, "/groups", str("R2"), str("10"))
	r3 := f.addRow(base, "/groups", str("R3"), str("10"))

	w := f.do(http.MethodDelete, base+"/rows/"+r2.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	groups := decode[dto.FormView](t, w).Data.Groups
	require.Len(t, groups, 2)
	assert.Equal(t, r1.ID, groups[0].ID)
	assert.Equal(t, r3.ID, groups[1].ID)
}

func TestFormHandlerErrors(t *testing.T) {
	f := newAPIFixture(t, fixtureOptions{solverURL: "http://127.0.0.1:1"})
	view := f.createSession()
	base := "/sessions/" + view.SessionID

	cases := []struct {
		name   string
		method string
		path   string
		body   interface{}
		status int
		code   string
	}{
		{name: "unknown session", method: http.MethodGet, path: "/sessions/nope", status: http.StatusNotFound, code: "SESSION_NOT_FOUND"},
		{name: "floor not numeric", method: http.MethodPost, path: base + "/floors/x/classrooms", status: http.StatusBadRequest, code: "VALIDATION_ERROR"},
		{name: "floor out of range", method: http.MethodPost, path: base + "/floors/5/classrooms", status: http.StatusNotFound, code: "FLOOR_NOT_FOUND"},
		{name: "unknown row", method: http.MethodDelete, path: base + "/rows/ghost", status: http.StatusNotFound, code: "ROW_NOT_FOUND"},
		{name: "floors missing count", method: http.MethodPut, path: base + "/floors", body: map[string]interface{}{}, status: http.StatusBadRequest, code: "VALIDATION_ERROR"},
		{name: "delta above range", method: http.MethodPut, path: base + "/parameters", body: map[string]interface{}{"delta": 140}, status: http.StatusBadRequest, code: "VALIDATION_ERROR"},
		{name: "empty parameters", method: http.MethodPut, path: base + "/parameters", body: map[string]interface{}{}, status: http.StatusBadRequest, code: "VALIDATION_ERROR"},
		{name: "unknown export", method: http.MethodGet, path: "/results/nope/export", status: http.StatusNotFound, code: "RESULT_NOT_FOUND"},
		{name: "bad export format", method: http.MethodGet, path: "/results/nope/export?format=xlsx", status: http.StatusBadRequest, code: "UNSUPPORTED_FORMAT"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := f.do(tc.method, tc.path, tc.body)
			require.Equal(t, tc.status, w.Code, w.Body.String())
			body := decode[json.RawMessage](t, w)
			require.NotNil(t, body.Error)
			assert.Equal(t, tc.code, body.Error.Code)
		})
	}
}

func TestDeleteSession(t *testing.T) {
	f := newAPIFixture(t, fixtureOptions{solverURL: "http://127.0.0.1:1"})
	view := f.createSession()

	w := f.do(http.MethodDelete, "/sessions/"+view.SessionID, nil)
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, http.StatusNotFound, f.do(http.MethodGet, "/sessions/"+view.SessionID, nil).Code)
}
