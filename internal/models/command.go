package models

// Command is a typed user action against a form session.
type Command interface {
	CommandName() string
}

// SetFloorCount regenerates the floor sections, discarding every classroom row.
type SetFloorCount struct {
	Count int
}

// AddClassroomRow appends a classroom row to one floor.
type AddClassroomRow struct {
	Floor int
}

// AddGroupRow appends an empty group row.
type AddGroupRow struct{}

// AddSlotRow appends an empty time slot row.
type AddSlotRow struct{}

// EditRow changes a row's fields; nil fields are left untouched.
type EditRow struct {
	ID       string
	Name     *string
	Quantity *string
}

// RemoveRow deletes a row from whichever table holds it.
type RemoveRow struct {
	ID string
}

// SetDelta moves the delta slider (percent).
type SetDelta struct {
	Percent float64
}

// SetLambda moves the lambda slider.
type SetLambda struct {
	Value float64
}

// Submit is the Solve button click.
type Submit struct{}

func (SetFloorCount) CommandName() string   { return "set_floor_count" }
func (AddClassroomRow) CommandName() string { return "add_classroom_row" }
func (AddGroupRow) CommandName() string     { return "add_group_row" }
func (AddSlotRow) CommandName() string      { return "add_slot_row" }
func (EditRow) CommandName() string         { return "edit_row" }
func (RemoveRow) CommandName() string       { return "remove_row" }
func (SetDelta) CommandName() string        { return "set_delta" }
func (SetLambda) CommandName() string       { return "set_lambda" }
func (Submit) CommandName() string          { return "submit" }
