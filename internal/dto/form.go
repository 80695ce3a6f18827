package dto

import "github.com/noah-isme/aula-planner/internal/models"

// SetFloorCountRequest regenerates the floor sections.
type SetFloorCountRequest struct {
	Count *int `json:"count" validate:"required,min=0,max=50"`
}

// EditRowRequest edits a row's text fields. Omitted fields stay unchanged.
type EditRowRequest struct {
	Name     *string `json:"name" validate:"omitempty,max=200"`
	Quantity *string `json:"quantity" validate:"omitempty,max=32"`
}

// SetParametersRequest moves one or both sliders.
type SetParametersRequest struct {
	Delta  *float64 `json:"delta" validate:"omitempty,min=0,max=100"`
	Lambda *float64 `json:"lambda"`
}

// ParametersView is the slider pair with its live readouts.
type ParametersView struct {
	Delta       float64 `json:"delta"`
	DeltaLabel  string  `json:"deltaLabel"`
	Lambda      float64 `json:"lambda"`
	LambdaLabel string  `json:"lambdaLabel"`
}

// SubmissionView is the result area.
type SubmissionView struct {
	State    models.SubmissionState `json:"state"`
	Outcome  models.SubmissionState `json:"outcome,omitempty"`
	Attempts int                    `json:"attempts"`
	Variant  models.DisplayVariant  `json:"variant"`
	Message  string                 `json:"message,omitempty"`
	Text     string                 `json:"text"`
	ResultID string                 `json:"resultId,omitempty"`
}

// FormView is everything a client needs to draw the form.
type FormView struct {
	SessionID  string                `json:"sessionId"`
	FloorCount int                   `json:"floorCount"`
	Floors     []models.FloorSection `json:"floors"`
	Groups     []models.Row          `json:"groups"`
	Slots      []models.Row          `json:"slots"`
	Parameters ParametersView        `json:"parameters"`
	Control    models.SubmitControl  `json:"control"`
	Submission SubmissionView        `json:"submission"`
}

// RowResponse wraps a newly created or edited row together with the refreshed view.
type RowResponse struct {
	Row  models.Row `json:"row"`
	View FormView   `json:"view"`
}
