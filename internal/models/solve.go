package models

import "encoding/json"

// ClassroomRecord is a validated classroom ready to be sent to the solver.
type ClassroomRecord struct {
	Name     string `json:"nombre" validate:"required"`
	Capacity int    `json:"capacidad" validate:"gt=0"`
}

// GroupRecord is a validated student group.
type GroupRecord struct {
	Name string `json:"nombre" validate:"required"`
	Size int    `json:"tamano" validate:"gt=0"`
}

// SlotRecord is a candidate time slot. It travels as a bare JSON string.
type SlotRecord struct {
	Label string `validate:"required"`
}

// MarshalJSON encodes the slot as its label.
func (s SlotRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Label)
}

// UnmarshalJSON decodes a bare string label.
func (s *SlotRecord) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, &s.Label)
}

// Parameters are the solver tuning knobs. Delta is a fraction (slider percent / 100);
// Lambda is opaque to this service and passed through.
type Parameters struct {
	Delta  float64 `json:"delta"`
	Lambda float64 `json:"lambda"`
}

// SolveRequest is the payload posted to the solver service.
type SolveRequest struct {
	Classrooms []ClassroomRecord `json:"aulas"`
	Groups     []GroupRecord     `json:"grupos"`
	Slots      []SlotRecord      `json:"horarios"`
	Parameters Parameters        `json:"parametros"`
}

// Submittable reports whether every entity kind has at least one record.
func (r SolveRequest) Submittable() bool {
	return len(r.Classrooms) > 0 && len(r.Groups) > 0 && len(r.Slots) > 0
}

// SolveResponse is the solver's reply. Error is set instead of the other fields on failure.
type SolveResponse struct {
	Status         string   `json:"estado"`
	ObjectiveValue *float64 `json:"valor_objetivo"`
	Assignments    []string `json:"resultados"`
	Error          string   `json:"error,omitempty"`
}
