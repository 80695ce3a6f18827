package service

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/aula-planner/internal/form"
	"github.com/noah-isme/aula-planner/internal/models"
	appErrors "github.com/noah-isme/aula-planner/pkg/errors"
)

type formFixture struct {
	t     *testing.T
	store *form.Store
}

func newFormFixture(t *testing.T, floors int, delta, lambda float64) *formFixture {
	t.Helper()
	return &formFixture{t: t, store: form.NewStore(floors, delta, lambda)}
}

func (f *formFixture) classroom(floor int, name, capacity string) models.Row {
	f.t.Helper()
	row, err := f.store.AddClassroomRow(floor)
	require.NoError(f.t, err)
	row, err = f.store.UpdateRow(row.ID, &name, &capacity)
	require.NoError(f.t, err)
	return row
}

func (f *formFixture) group(name, size string) models.Row {
	f.t.Helper()
	row := f.store.AddGroupRow()
	row, err := f.store.UpdateRow(row.ID, &name, &size)
	require.NoError(f.t, err)
	return row
}

func (f *formFixture) slot(label string) models.Row {
	f.t.Helper()
	row := f.store.AddSlotRow()
	row, err := f.store.UpdateRow(row.ID, &label, nil)
	require.NoError(f.t, err)
	return row
}

func TestRequestBuilderBuildsExactPayload(t *testing.T) {
	f := newFormFixture(t, 1, 10, 2)
	f.classroom(1, "A1", "30")
	f.group("G1", "25")
	f.slot("08:00-10:00")

	req, err := NewRequestBuilder(nil).Build(f.store)
	require.NoError(t, err)
	assert.InDelta(t, 0.10, req.Parameters.Delta, 1e-12)

	raw, err := json.Marshal(req)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"aulas":[{"nombre":"A1","capacidad":30}],
		"grupos":[{"nombre":"G1","tamano":25}],
		"horarios":["08:00-10:00"],
		"parametros":{"delta":0.1,"lambda":2}
	}`, string(raw))
}

func TestRequestBuilderDeltaConversion(t *testing.T) {
	f := newFormFixture(t, 1, 25, -1.5)
	f.classroom(1, "A1", "30")
	f.group("G1", "25")
	f.slot("Mon 8-10")

	req, err := NewRequestBuilder(nil).Build(f.store)
	require.NoError(t, err)
	assert.Equal(t, 0.25, req.Parameters.Delta)
	assert.Equal(t, -1.5, req.Parameters.Lambda)
}

func TestRequestBuilderBlocksWhenAnyKindIsEmpty(t *testing.T) {
	cases := []struct {
		name  string
		setup func(f *formFixture)
	}{
		{name: "nothing at all", setup: func(f *formFixture) {}},
		{name: "no classrooms", setup: func(f *formFixture) {
			f.group("G1", "25")
			f.slot("08:00-10:00")
		}},
		{name: "classrooms all invalid", setup: func(f *formFixture) {
			f.classroom(1, "A1", "0")
			f.classroom(1, "", "30")
			f.classroom(1, "A3", "abc")
			f.group("G1", "25")
			f.slot("08:00-10:00")
		}},
		{name: "no groups", setup: func(f *formFixture) {
			f.classroom(1, "A1", "30")
			f.slot("08:00-10:00")
		}},
		{name: "blank slots only", setup: func(f *formFixture) {
			f.classroom(1, "A1", "30")
			f.group("G1", "25")
			f.slot("   ")
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFormFixture(t, 1, 20, 1)
			tc.setup(f)

			_, err := NewRequestBuilder(nil).Build(f.store)
			require.ErrorIs(t, err, appErrors.ErrIncompleteForm)
			assert.Equal(t, "You must define at least one classroom, one group, and one valid time slot.", appErrors.FromError(err).Message)
		})
	}
}

func TestRequestBuilderDropsInvalidRowsButSubmits(t *testing.T) {
	f := newFormFixture(t, 2, 20, 1)
	f.classroom(1, "", "10")
	f.classroom(2, "B1", "40")
	f.group("G1", "-3")
	f.group("G2", "18")
	f.slot("")
	f.slot("10:00-12:00")

	req, err := NewRequestBuilder(nil).Build(f.store)
	require.NoError(t, err)
	assert.Equal(t, []models.ClassroomRecord{{Name: "B1", Capacity: 40}}, req.Classrooms)
	assert.Equal(t, []models.GroupRecord{{Name: "G2", Size: 18}}, req.Groups)
	assert.Equal(t, []models.SlotRecord{{Label: "10:00-12:00"}}, req.Slots)
}

func TestRequestBuilderTruncatesFractionalQuantities(t *testing.T) {
	f := newFormFixture(t, 1, 20, 1)
	f.classroom(1, "A1", "12.5")
	f.group("G1", "1e2")
	f.slot("08:00-10:00")

	req, err := NewRequestBuilder(nil).Build(f.store)
	require.NoError(t, err)
	assert.Equal(t, []models.ClassroomRecord{{Name: "A1", Capacity: 12}}, req.Classrooms)
	assert.Equal(t, []models.GroupRecord{{Name: "G1", Size: 1}}, req.Groups)
}
