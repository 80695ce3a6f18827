package models

// RowKind identifies which table a row belongs to.
type RowKind string

const (
	RowKindClassroom RowKind = "classroom"
	RowKindGroup     RowKind = "group"
	RowKindSlot      RowKind = "slot"
)

// Row is one line of user input. Quantity holds the raw numeric field text
// (capacity or size) and stays empty for slot rows.
type Row struct {
	ID       string  `json:"id"`
	Kind     RowKind `json:"kind"`
	Floor    int     `json:"floor,omitempty"`
	Name     string  `json:"name"`
	Quantity string  `json:"quantity,omitempty"`
}

// FloorSection groups the classroom rows of one building floor.
type FloorSection struct {
	Number int   `json:"number"`
	Rows   []Row `json:"rows"`
}

// SliderValues are the raw slider positions: Delta as a percentage, Lambda as entered.
type SliderValues struct {
	DeltaPercent float64 `json:"delta"`
	Lambda       float64 `json:"lambda"`
}
