package service

import (
	"fmt"
	"strings"

	"github.com/noah-isme/aula-planner/internal/models"
)

// User-facing result strings.
const (
	NoAssignmentsMessage  = "No assignments found."
	TransportErrorMessage = "Error processing the request. Make sure the solver service is running."
	networkErrorDetail    = "Network error."
)

// ResultRenderer formats solver outcomes for the result area.
type ResultRenderer struct{}

// Success renders the status, the objective value when present and one assignment per line.
func (ResultRenderer) Success(resp models.SolveResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Solution status: %s\n", resp.Status)
	if resp.ObjectiveValue != nil {
		fmt.Fprintf(&b, "Objective value (Z): %s\n\n", FormatObjective(*resp.ObjectiveValue))
	}
	b.WriteString("--- Optimal assignments ---\n")
	if len(resp.Assignments) == 0 {
		b.WriteString(NoAssignmentsMessage)
	} else {
		b.WriteString(strings.Join(resp.Assignments, "\n"))
	}
	return b.String()
}

// ServiceError renders an error reported by the solver verbatim.
func (ResultRenderer) ServiceError(message string) string {
	return message
}

// TransportError renders a generic message followed by the underlying error text.
func (ResultRenderer) TransportError(err error) string {
	detail := networkErrorDetail
	if err != nil && err.Error() != "" {
		detail = err.Error()
	}
	return TransportErrorMessage + "\n\nDetails: " + detail
}

// ValidationError renders the aggregate validation message.
func (ResultRenderer) ValidationError(message string) string {
	return "Error: " + message
}

// FormatObjective prints the objective with two decimals.
func FormatObjective(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
