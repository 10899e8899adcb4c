package domain

import "fmt"

type InstrumentID string

const (
	InstrumentPHQ9 InstrumentID = "phq9"
	InstrumentGAD7 InstrumentID = "gad7"
)

// Category is the severity band derived from a screening score.
type Category int

const (
	CategoryMinimal Category = iota
	CategoryMild
	CategoryModerate
	CategoryModeratelySevere
	CategorySevere
)

func (c Category) String() string {
	switch c {
	case CategoryMinimal:
		return "Minimal"
	case CategoryMild:
		return "Mild"
	case CategoryModerate:
		return "Moderate"
	case CategoryModeratelySevere:
		return "Moderately Severe"
	case CategorySevere:
		return "Severe"
	default:
		return fmt.Sprintf("Category(%d)", int(c))
	}
}

// ParseCategory is the inverse of Category.String.
func ParseCategory(s string) (Category, error) {
	for c := CategoryMinimal; c <= CategorySevere; c++ {
		if c.String() == s {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown category %q", s)
}

// ScreeningResult is one scored questionnaire submission.
type ScreeningResult struct {
	UserID       UserID
	InstrumentID InstrumentID
	RawScore     int
	Category     Category
	Timestamp    Timestamp
}
