package models

// SubmissionState is a state of the submission state machine.
type SubmissionState string

const (
	SubmissionIdle             SubmissionState = "IDLE"
	SubmissionCollecting       SubmissionState = "COLLECTING"
	SubmissionValidating       SubmissionState = "VALIDATING"
	SubmissionValidationFailed SubmissionState = "VALIDATION_FAILED"
	SubmissionSubmitting       SubmissionState = "SUBMITTING"
	SubmissionSuccess          SubmissionState = "SUCCESS"
	SubmissionFailure          SubmissionState = "FAILURE"
)

// Terminal reports whether the state ends an attempt.
func (s SubmissionState) Terminal() bool {
	return s == SubmissionValidationFailed || s == SubmissionSuccess || s == SubmissionFailure
}

// DisplayVariant is the visual state of the result area.
type DisplayVariant string

const (
	DisplayNeutral DisplayVariant = "neutral"
	DisplaySuccess DisplayVariant = "success"
	DisplayError   DisplayVariant = "error"
)

// SubmitControl describes the Solve button.
type SubmitControl struct {
	Enabled bool   `json:"enabled"`
	Busy    bool   `json:"busy"`
	Label   string `json:"label"`
}

// ResultDisplay is what the result area shows. Message carries the bare error
// message for error variants; Text is the full rendered output.
type ResultDisplay struct {
	Variant  DisplayVariant `json:"variant"`
	Message  string         `json:"message,omitempty"`
	Text     string         `json:"text"`
	ResultID string         `json:"resultId,omitempty"`
}

// SubmissionSnapshot is a consistent copy of the controller's observable state.
type SubmissionSnapshot struct {
	State    SubmissionState `json:"state"`
	Outcome  SubmissionState `json:"outcome,omitempty"`
	Attempts int             `json:"attempts"`
	Control  SubmitControl   `json:"control"`
	Display  ResultDisplay   `json:"display"`
}
