package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/aula-planner/internal/dto"
	"github.com/noah-isme/aula-planner/internal/models"
	"github.com/noah-isme/aula-planner/internal/service"
	appErrors "github.com/noah-isme/aula-planner/pkg/errors"
	"github.com/noah-isme/aula-planner/pkg/logger"
	"github.com/noah-isme/aula-planner/pkg/response"
)

type sessionRegistry interface {
	Create(ctx context.Context) *service.FormSession
	Get(id string) (*service.FormSession, error)
	Delete(ctx context.Context, id string) error
}

// FormHandler translates HTTP calls into form session commands.
type FormHandler struct {
	sessions  sessionRegistry
	validator *validator.Validate
}

// NewFormHandler constructs the handler.
func NewFormHandler(sessions sessionRegistry, validate *validator.Validate) *FormHandler {
	if validate == nil {
		validate = validator.New()
	}
	return &FormHandler{sessions: sessions, validator: validate}
}

// CreateSession godoc
// @Summary Open a new form session
// @Tags Form
// @Produce json
// @Success 201 {object} response.Envelope{data=dto.FormView}
// @Router /sessions [post]
func (h *FormHandler) CreateSession(c *gin.Context) {
	session := h.sessions.Create(c.Request.Context())
	c.Set(logger.SessionKey, session.ID())
	response.Created(c, session.View())
}

// GetSession godoc
// @Summary Current form view
// @Tags Form
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope{data=dto.FormView}
// @Failure 404 {object} response.Envelope
// @Router /sessions/{id} [get]
func (h *FormHandler) GetSession(c *gin.Context) {
	session, ok := loadSession(c, h.sessions)
	if !ok {
		return
	}
	response.JSON(c, http.StatusOK, session.View())
}

// DeleteSession godoc
// @Summary Close a form session
// @Tags Form
// @Param id path string true "Session ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /sessions/{id} [delete]
func (h *FormHandler) DeleteSession(c *gin.Context) {
	id := c.Param("id")
	c.Set(logger.SessionKey, id)
	if err := h.sessions.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// SetFloors godoc
// @Summary Regenerate floor sections
// @Description Rebuilds every floor section. All classroom rows on every floor are discarded.
// @Tags Form
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param payload body dto.SetFloorCountRequest true "Floor count"
// @Success 200 {object} response.Envelope{data=dto.FormView}
// @Router /sessions/{id}/floors [put]
func (h *FormHandler) SetFloors(c *gin.Context) {
	session, ok := loadSession(c, h.sessions)
	if !ok {
		return
	}
	var req dto.SetFloorCountRequest
	if !h.bind(c, &req) {
		return
	}
	h.dispatchView(c, session, models.SetFloorCount{Count: *req.Count})
}

// AddClassroom godoc
// @Summary Add a classroom row to a floor
// @Tags Form
// @Produce json
// @Param id path string true "Session ID"
// @Param floor path int true "Floor number"
// @Success 201 {object} response.Envelope{data=dto.RowResponse}
// @Failure 404 {object} response.Envelope
// @Router /sessions/{id}/floors/{floor}/classrooms [post]
func (h *FormHandler) AddClassroom(c *gin.Context) {
	session, ok := loadSession(c, h.sessions)
	if !ok {
		return
	}
	floor, ok := intParam(c, "floor")
	if !ok {
		return
	}
	h.dispatchRow(c, session, models.AddClassroomRow{Floor: floor}, http.StatusCreated)
}

// AddGroup godoc
// @Summary Add an empty group row
// @Tags Form
// @Produce json
// @Param id path string true "Session ID"
// @Success 201 {object} response.Envelope{data=dto.RowResponse}
// @Router /sessions/{id}/groups [post]
func (h *FormHandler) AddGroup(c *gin.Context) {
	session, ok := loadSession(c, h.sessions)
	if !ok {
		return
	}
	h.dispatchRow(c, session, models.AddGroupRow{}, http.StatusCreated)
}

// AddSlot godoc
// @Summary Add an empty time slot row
// @Tags Form
// @Produce json
// @Param id path string true "Session ID"
// @Success 201 {object} response.Envelope{data=dto.RowResponse}
// @Router /sessions/{id}/slots [post]
func (h *FormHandler) AddSlot(c *gin.Context) {
	session, ok := loadSession(c, h.sessions)
	if !ok {
		return
	}
	h.dispatchRow(c, session, models.AddSlotRow{}, http.StatusCreated)
}

// EditRow godoc
// @Summary Edit a row's name or quantity
// @Tags Form
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param rowId path string true "Row ID"
// @Param payload body dto.EditRowRequest true "Fields to change"
// @Success 200 {object} response.Envelope{data=dto.RowResponse}
// @Router /sessions/{id}/rows/{rowId} [patch]
func (h *FormHandler) EditRow(c *gin.Context) {
	session, ok := loadSession(c, h.sessions)
	if !ok {
		return
	}
	var req dto.EditRowRequest
	if !h.bind(c, &req) {
		return
	}
	h.dispatchRow(c, session, models.EditRow{ID: c.Param("rowId"), Name: req.Name, Quantity: req.Quantity}, http.StatusOK)
}

// RemoveRow godoc
// @Summary Remove a row
// @Tags Form
// @Produce json
// @Param id path string true "Session ID"
// @Param rowId path string true "Row ID"
// @Success 200 {object} response.Envelope{data=dto.FormView}
// @Router /sessions/{id}/rows/{rowId} [delete]
func (h *FormHandler) RemoveRow(c *gin.Context) {
	session, ok := loadSession(c, h.sessions)
	if !ok {
		return
	}
	h.dispatchView(c, session, models.RemoveRow{ID: c.Param("rowId")})
}

// SetParameters godoc
// @Summary Move the delta and/or lambda sliders
// @Tags Form
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param payload body dto.SetParametersRequest true "Slider values"
// @Success 200 {object} response.Envelope{data=dto.FormView}
// @Router /sessions/{id}/parameters [put]
func (h *FormHandler) SetParameters(c *gin.Context) {
	session, ok := loadSession(c, h.sessions)
	if !ok {
		return
	}
	var req dto.SetParametersRequest
	if !h.bind(c, &req) {
		return
	}
	if req.Delta == nil && req.Lambda == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "delta or lambda is required"))
		return
	}
	ctx := c.Request.Context()
	if req.Delta != nil {
		if _, err := session.Dispatch(ctx, models.SetDelta{Percent: *req.Delta}); err != nil {
			response.Error(c, err)
			return
		}
	}
	if req.Lambda != nil {
		if _, err := session.Dispatch(ctx, models.SetLambda{Value: *req.Lambda}); err != nil {
			response.Error(c, err)
			return
		}
	}
	response.JSON(c, http.StatusOK, session.View())
}

// Solve godoc
// @Summary Submit the form to the solver
// @Description Validates synchronously. On success the solver call runs in the background; poll GET /sessions/{id} for the outcome.
// @Tags Form
// @Produce json
// @Param id path string true "Session ID"
// @Success 202 {object} response.Envelope{data=dto.FormView}
// @Failure 409 {object} response.Envelope{data=dto.FormView}
// @Failure 422 {object} response.Envelope{data=dto.FormView}
// @Router /sessions/{id}/solve [post]
func (h *FormHandler) Solve(c *gin.Context) {
	session, ok := loadSession(c, h.sessions)
	if !ok {
		return
	}
	_, err := session.Dispatch(c.Request.Context(), models.Submit{})
	switch {
	case err == nil:
		response.Accepted(c, session.View())
	case errors.Is(err, appErrors.ErrIncompleteForm), errors.Is(err, appErrors.ErrSubmissionInFlight):
		response.ErrorWithData(c, err, session.View())
	default:
		response.Error(c, err)
	}
}

func (h *FormHandler) bind(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload"))
		return false
	}
	if err := h.validator.Struct(dest); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error()))
		return false
	}
	return true
}

func (h *FormHandler) dispatchView(c *gin.Context, session *service.FormSession, cmd models.Command) {
	if _, err := session.Dispatch(c.Request.Context(), cmd); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session.View())
}

func (h *FormHandler) dispatchRow(c *gin.Context, session *service.FormSession, cmd models.Command, status int) {
	row, err := session.Dispatch(c.Request.Context(), cmd)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, status, dto.RowResponse{Row: *row, View: session.View()})
}
