package service

import (
	"github.com/noah-isme/aula-planner/internal/models"
	appErrors "github.com/noah-isme/aula-planner/pkg/errors"
)

// RequestBuilder assembles the solver payload and gates submission.
type RequestBuilder struct {
	extractor *Extractor
}

// NewRequestBuilder constructs a RequestBuilder.
func NewRequestBuilder(extractor *Extractor) *RequestBuilder {
	if extractor == nil {
		extractor = NewExtractor(nil)
	}
	return &RequestBuilder{extractor: extractor}
}

// Build reads the rows and sliders and returns a submittable request, or
// ErrIncompleteForm when any of classrooms, groups or slots extracts empty.
func (b *RequestBuilder) Build(src RowSource) (models.SolveRequest, error) {
	sliders := src.Sliders()
	req := models.SolveRequest{
		Classrooms: b.extractor.Classrooms(src.ClassroomRows()),
		Groups:     b.extractor.Groups(src.GroupRows()),
		Slots:      b.extractor.Slots(src.SlotRows()),
		Parameters: models.Parameters{
			Delta:  sliders.DeltaPercent / 100,
			Lambda: sliders.Lambda,
		},
	}
	if !req.Submittable() {
		return models.SolveRequest{}, appErrors.Clone(appErrors.ErrIncompleteForm, "")
	}
	return req, nil
}
