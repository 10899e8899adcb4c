package screening

import "github.com/PabloGalante/liora-api/internal/domain"

// Instrument is an immutable questionnaire definition.
type Instrument struct {
	id        domain.InstrumentID
	questions []string
}

func (i Instrument) ID() domain.InstrumentID { return i.id }

// Questions returns a copy of the ordered question list.
func (i Instrument) Questions() []string {
	out := make([]string, len(i.questions))
	copy(out, i.questions)
	return out
}

var phq9Questions = []string{
	"Little interest or pleasure in doing things?",
	"Feeling down or hopeless?",
	"Trouble sleeping?",
	"Feeling tired or low energy?",
	"Poor appetite or overeating?",
	"Feeling bad about yourself?",
	"Trouble concentrating?",
	"Restlessness or slowed movement?",
	"Thoughts of self-harm?",
}

var gad7Questions = []string{
	"Feeling nervous or anxious?",
	"Not able to control worrying?",
	"Worrying about many things?",
	"Trouble relaxing?",
	"Restlessness?",
	"Irritability?",
	"Feeling something bad will happen?",
}

// Catalog holds the two supported instruments.
type Catalog struct {
	phq9 Instrument
	gad7 Instrument
}

// NewCatalog builds the PHQ-9 and GAD-7 definitions.
func NewCatalog() *Catalog {
	return &Catalog{
		phq9: Instrument{id: domain.InstrumentPHQ9, questions: append([]string(nil), phq9Questions...)},
		gad7: Instrument{id: domain.InstrumentGAD7, questions: append([]string(nil), gad7Questions...)},
	}
}

// Lookup resolves an instrument id. Anything other than "gad7", including an
// empty or unknown id, resolves to PHQ-9.
func (c *Catalog) Lookup(id string) Instrument {
	if domain.InstrumentID(id) == domain.InstrumentGAD7 {
		return c.gad7
	}
	return c.phq9
}

// Categorize maps a raw score to its severity band. Bands are inclusive:
// 0-4 Minimal, 5-9 Mild, 10-14 Moderate, 15-19 Moderately Severe (PHQ-9 only),
// otherwise Severe.
func Categorize(id domain.InstrumentID, score int) domain.Category {
	switch {
	case score <= 4:
		return domain.CategoryMinimal
	case score <= 9:
		return domain.CategoryMild
	case score <= 14:
		return domain.CategoryModerate
	case score <= 19 && id == domain.InstrumentPHQ9:
		return domain.CategoryModeratelySevere
	default:
		return domain.CategorySevere
	}
}
