// Package form holds the mutable state of one scheduling form: floor sections
// with classroom rows, group rows, time slot rows and the two parameter sliders.
//
// Store is not safe for concurrent use; a form session serializes access to it.
package form

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/noah-isme/aula-planner/internal/models"
	appErrors "github.com/noah-isme/aula-planner/pkg/errors"
)

const (
	MinDeltaPercent = 0
	MaxDeltaPercent = 100
)

// Store is the owned form state (the row store).
type Store struct {
	floors []*section
	groups []*models.Row
	slots  []*models.Row
	delta  float64
	lambda float64
	newID  func() string
}

type section struct {
	number int
	rows   []*models.Row
}

// Option customises a Store.
type Option func(*Store)

// WithIDGenerator overrides row id generation.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// NewStore builds a form with floorCount empty floor sections and the given slider positions.
func NewStore(floorCount int, deltaPercent, lambda float64, opts ...Option) *Store {
	s := &Store{newID: uuid.NewString}
	for _, opt := range opts {
		opt(s)
	}
	s.regenerateFloors(floorCount)
	s.delta = clamp(deltaPercent, MinDeltaPercent, MaxDeltaPercent)
	if isFinite(lambda) {
		s.lambda = lambda
	}
	return s
}

// SetFloorCount rebuilds the floor sections from scratch. Every classroom row on
// every floor is discarded, including floors that survive the change.
func (s *Store) SetFloorCount(count int) {
	s.regenerateFloors(count)
}

func (s *Store) regenerateFloors(count int) {
	if count < 0 {
		count = 0
	}
	s.floors = make([]*section, 0, count)
	for i := 1; i <= count; i++ {
		s.floors = append(s.floors, &section{number: i})
	}
}

// FloorCount returns the number of floor sections.
func (s *Store) FloorCount() int {
	return len(s.floors)
}

// AddClassroomRow appends a classroom row to the floor. The default name is derived from
// the floor's row count before insertion and is never renumbered afterwards.
func (s *Store) AddClassroomRow(floor int) (models.Row, error) {
	sec := s.floor(floor)
	if sec == nil {
		return models.Row{}, appErrors.Clone(appErrors.ErrFloorNotFound, fmt.Sprintf("floor %d does not exist", floor))
	}
	row := &models.Row{
		ID:    s.newID(),
		Kind:  models.RowKindClassroom,
		Floor: floor,
		Name:  DefaultClassroomName(floor, len(sec.rows)+1),
	}
	sec.rows = append(sec.rows, row)
	return *row, nil
}

// DefaultClassroomName is the seed name of a classroom row.
func DefaultClassroomName(floor, index int) string {
	return fmt.Sprintf("P%d_Aula_%d", floor, index)
}

// AddGroupRow appends an empty group row.
func (s *Store) AddGroupRow() models.Row {
	row := &models.Row{ID: s.newID(), Kind: models.RowKindGroup}
	s.groups = append(s.groups, row)
	return *row
}

// AddSlotRow appends an empty time slot row.
func (s *Store) AddSlotRow() models.Row {
	row := &models.Row{ID: s.newID(), Kind: models.RowKindSlot}
	s.slots = append(s.slots, row)
	return *row
}

// RemoveRow deletes the row with the given id from whichever table holds it.
func (s *Store) RemoveRow(id string) error {
	for _, sec := range s.floors {
		if rows, ok := without(sec.rows, id); ok {
			sec.rows = rows
			return nil
		}
	}
	if rows, ok := without(s.groups, id); ok {
		s.groups = rows
		return nil
	}
	if rows, ok := without(s.slots, id); ok {
		s.slots = rows
		return nil
	}
	return rowNotFound(id)
}

// UpdateRow edits a row in place. Nil arguments leave the field unchanged.
func (s *Store) UpdateRow(id string, name, quantity *string) (models.Row, error) {
	row := s.find(id)
	if row == nil {
		return models.Row{}, rowNotFound(id)
	}
	if quantity != nil && row.Kind == models.RowKindSlot {
		return models.Row{}, appErrors.Clone(appErrors.ErrValidation, "time slot rows have no quantity field")
	}
	if name != nil {
		row.Name = *name
	}
	if quantity != nil {
		row.Quantity = *quantity
	}
	return *row, nil
}

// Row returns a copy of the row with the given id.
func (s *Store) Row(id string) (models.Row, bool) {
	row := s.find(id)
	if row == nil {
		return models.Row{}, false
	}
	return *row, true
}

// SetDelta moves the delta slider. Values outside [0,100] are rejected.
func (s *Store) SetDelta(percent float64) error {
	if !isFinite(percent) || percent < MinDeltaPercent || percent > MaxDeltaPercent {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("delta must be between %d and %d percent", MinDeltaPercent, MaxDeltaPercent))
	}
	s.delta = percent
	return nil
}

// SetLambda moves the lambda slider. Any finite value is accepted.
func (s *Store) SetLambda(value float64) error {
	if !isFinite(value) {
		return appErrors.Clone(appErrors.ErrValidation, "lambda must be a finite number")
	}
	s.lambda = value
	return nil
}

// Sliders returns the raw slider positions.
func (s *Store) Sliders() models.SliderValues {
	return models.SliderValues{DeltaPercent: s.delta, Lambda: s.lambda}
}

// Floors returns a copy of every floor section in order.
func (s *Store) Floors() []models.FloorSection {
	out := make([]models.FloorSection, 0, len(s.floors))
	for _, sec := range s.floors {
		out = append(out, models.FloorSection{Number: sec.number, Rows: copyRows(sec.rows)})
	}
	return out
}

// ClassroomRows returns every classroom row in document order: floor by floor, then insertion order.
func (s *Store) ClassroomRows() []models.Row {
	out := make([]models.Row, 0)
	for _, sec := range s.floors {
		out = append(out, copyRows(sec.rows)...)
	}
	return out
}

// GroupRows returns the group rows in insertion order.
func (s *Store) GroupRows() []models.Row {
	return copyRows(s.groups)
}

// SlotRows returns the time slot rows in insertion order.
func (s *Store) SlotRows() []models.Row {
	return copyRows(s.slots)
}

func (s *Store) floor(number int) *section {
	if number < 1 || number > len(s.floors) {
		return nil
	}
	return s.floors[number-1]
}

func (s *Store) find(id string) *models.Row {
	for _, sec := range s.floors {
		for _, row := range sec.rows {
			if row.ID == id {
				return row
			}
		}
	}
	for _, table := range [][]*models.Row{s.groups, s.slots} {
		for _, row := range table {
			if row.ID == id {
				return row
			}
		}
	}
	return nil
}

func without(rows []*models.Row, id string) ([]*models.Row, bool) {
	for i, row := range rows {
		if row.ID == id {
			return append(rows[:i:i], rows[i+1:]...), true
		}
	}
	return rows, false
}

func copyRows(rows []*models.Row) []models.Row {
	out := make([]models.Row, 0, len(rows))
	for _, row := range rows {
		out = append(out, *row)
	}
	return out
}

func rowNotFound(id string) error {
	return appErrors.Clone(appErrors.ErrRowNotFound, fmt.Sprintf("row %s not found", id))
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func clamp(v, lo, hi float64) float64 {
	if !isFinite(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}
