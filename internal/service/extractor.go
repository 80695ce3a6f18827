package service

import (
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/aula-planner/internal/models"
)

// RowSource is the read side of a form's row store.
type RowSource interface {
	ClassroomRows() []models.Row
	GroupRows() []models.Row
	SlotRows() []models.Row
	Sliders() models.SliderValues
}

// Extractor turns raw rows into validated records. Rows that fail validation are
// skipped without error; callers check aggregate emptiness.
type Extractor struct {
	validator *validator.Validate
}

// NewExtractor constructs an Extractor.
func NewExtractor(validate *validator.Validate) *Extractor {
	if validate == nil {
		validate = validator.New()
	}
	return &Extractor{validator: validate}
}

// Classrooms flattens every floor's classroom rows into records, in document order.
func (e *Extractor) Classrooms(rows []models.Row) []models.ClassroomRecord {
	out := make([]models.ClassroomRecord, 0, len(rows))
	for _, row := range rows {
		capacity, ok := parseQuantity(row.Quantity)
		if !ok {
			continue
		}
		record := models.ClassroomRecord{Name: strings.TrimSpace(row.Name), Capacity: capacity}
		if e.validator.Struct(record) != nil {
			continue
		}
		out = append(out, record)
	}
	return out
}

// Groups extracts group records.
func (e *Extractor) Groups(rows []models.Row) []models.GroupRecord {
	out := make([]models.GroupRecord, 0, len(rows))
	for _, row := range rows {
		size, ok := parseQuantity(row.Quantity)
		if !ok {
			continue
		}
		record := models.GroupRecord{Name: strings.TrimSpace(row.Name), Size: size}
		if e.validator.Struct(record) != nil {
			continue
		}
		out = append(out, record)
	}
	return out
}

// Slots extracts time slot records.
func (e *Extractor) Slots(rows []models.Row) []models.SlotRecord {
	out := make([]models.SlotRecord, 0, len(rows))
	for _, row := range rows {
		record := models.SlotRecord{Label: strings.TrimSpace(row.Name)}
		if e.validator.Struct(record) != nil {
			continue
		}
		out = append(out, record)
	}
	return out
}

// parseQuantity reads the leading integer of the trimmed text: "12.5" is 12 and
// "1e2" is 1. Text without leading digits is rejected; positivity is checked by
// the record's validate tag.
func parseQuantity(raw string) (int, bool) {
	s := strings.TrimSpace(raw)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	start := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == start {
		return 0, false
	}
	value, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return value, true
}
