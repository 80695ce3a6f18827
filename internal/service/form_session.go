package service

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/aula-planner/internal/dto"
	"github.com/noah-isme/aula-planner/internal/form"
	"github.com/noah-isme/aula-planner/internal/models"
	appErrors "github.com/noah-isme/aula-planner/pkg/errors"
)

// FormSession is one user's form: the row store plus its submission controller.
// Commands are applied one at a time.
type FormSession struct {
	id        string
	createdAt time.Time
	logger    *zap.Logger

	mu       sync.Mutex
	store    *form.Store
	submit   *SubmissionController
	lastSeen time.Time
}

func newFormSession(id string, store *form.Store, submit *SubmissionController, now time.Time, logger *zap.Logger) *FormSession {
	return &FormSession{
		id:        id,
		createdAt: now,
		logger:    logger.With(zap.String("session_id", id)),
		store:     store,
		submit:    submit,
		lastSeen:  now,
	}
}

// ID returns the session id.
func (s *FormSession) ID() string {
	return s.id
}

// Dispatch applies one command. Row-producing commands return the affected row.
func (s *FormSession) Dispatch(ctx context.Context, cmd models.Command) (*models.Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.logger.Debug("dispatch", zap.String("command", cmd.CommandName()))

	switch c := cmd.(type) {
	case models.SetFloorCount:
		s.store.SetFloorCount(c.Count)
		return nil, nil
	case models.AddClassroomRow:
		row, err := s.store.AddClassroomRow(c.Floor)
		if err != nil {
			return nil, err
		}
		return &row, nil
	case models.AddGroupRow:
		row := s.store.AddGroupRow()
		return &row, nil
	case models.AddSlotRow:
		row := s.store.AddSlotRow()
		return &row, nil
	case models.EditRow:
		row, err := s.store.UpdateRow(c.ID, c.Name, c.Quantity)
		if err != nil {
			return nil, err
		}
		return &row, nil
	case models.RemoveRow:
		return nil, s.store.RemoveRow(c.ID)
	case models.SetDelta:
		return nil, s.store.SetDelta(c.Percent)
	case models.SetLambda:
		return nil, s.store.SetLambda(c.Value)
	case models.Submit:
		return nil, s.submit.Submit(ctx, s.store)
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown command %s", cmd.CommandName()))
	}
}

// View renders the current state for clients.
func (s *FormSession) View() dto.FormView {
	s.mu.Lock()
	floors := s.store.Floors()
	groups := s.store.GroupRows()
	slots := s.store.SlotRows()
	sliders := s.store.Sliders()
	s.mu.Unlock()

	snap := s.submit.Snapshot()
	return dto.FormView{
		SessionID:  s.id,
		FloorCount: len(floors),
		Floors:     floors,
		Groups:     groups,
		Slots:      slots,
		Parameters: dto.ParametersView{
			Delta:       sliders.DeltaPercent,
			DeltaLabel:  DeltaLabel(sliders.DeltaPercent),
			Lambda:      sliders.Lambda,
			LambdaLabel: LambdaLabel(sliders.Lambda),
		},
		Control: snap.Control,
		Submission: dto.SubmissionView{
			State:    snap.State,
			Outcome:  snap.Outcome,
			Attempts: snap.Attempts,
			Variant:  snap.Display.Variant,
			Message:  snap.Display.Message,
			Text:     snap.Display.Text,
			ResultID: snap.Display.ResultID,
		},
	}
}

// Busy reports whether a solver call is in flight.
func (s *FormSession) Busy() bool {
	return s.submit.Busy()
}

func (s *FormSession) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *FormSession) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// DeltaLabel is the delta slider readout, e.g. "25%".
func DeltaLabel(percent float64) string {
	return strconv.FormatFloat(percent, 'f', -1, 64) + "%"
}

// LambdaLabel is the lambda slider readout with two decimals.
func LambdaLabel(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
