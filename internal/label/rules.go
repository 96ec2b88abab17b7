package label

import (
	"regexp"

	"github.com/erazemk/motoinvent/internal/model"
)

// Marker maps a label substring to the model it identifies.
type Marker struct {
	Text    string
	ModelID string
}

// Rules configures a Parser. Behavior differences between label layouts are
// expressed here rather than in code.
type Rules struct {
	// DetectModel enables marker-based model detection.
	DetectModel bool

	// Markers are matched case-insensitively. The parser always tries longer
	// markers first, so "LECHUZA II" wins over "LECHUZA" regardless of order.
	Markers []Marker

	// Models supplies display names for the relaxed name tier.
	Models []model.Model

	// CodePatterns mark a line as a part code when any of them matches.
	CodePatterns []*regexp.Regexp

	// Stopwords disqualify a line as a name. Every marker is a stopword too.
	Stopwords []string

	// RelaxedStopwords replace Stopwords in the relaxed name tier.
	RelaxedStopwords []string

	// MinLineLen drops shorter lines during normalization.
	MinLineLen int

	// NameMaxLen is the exclusive upper length bound of the strict name tier.
	NameMaxLen int

	// RelaxedMinLen and RelaxedMaxLen are the exclusive bounds of the relaxed tier.
	RelaxedMinLen int
	RelaxedMaxLen int
}

var (
	reHyphenated = regexp.MustCompile(`\d+-\d+`)
	reLongNumber = regexp.MustCompile(`\d{6,}`)
	reLongAlnum  = regexp.MustCompile(`[A-Za-z0-9]{8,}`)
	reDigitRun   = regexp.MustCompile(`\d{4,}`)
)

// DefaultMarkers lists the label substrings of every catalog model, with and
// without accents since OCR output drops them inconsistently.
func DefaultMarkers() []Marker {
	return []Marker{
		{Text: "LECHUZA II", ModelID: "lechuza2"},
		{Text: "LECHUZA", ModelID: "lechuza"},
		{Text: "ÁGUILA", ModelID: "aguila"},
		{Text: "AGUILA", ModelID: "aguila"},
		{Text: "CÓNDOR", ModelID: "condor"},
		{Text: "CONDOR", ModelID: "condor"},
		{Text: "CANARIO", ModelID: "canario"},
		{Text: "TUCÁN", ModelID: "tucan"},
		{Text: "TUCAN", ModelID: "tucan"},
	}
}

// DefaultRules returns the rules used for the motorcycle part labels.
func DefaultRules() Rules {
	return Rules{
		DetectModel:      true,
		Markers:          DefaultMarkers(),
		Models:           model.Catalog,
		CodePatterns:     []*regexp.Regexp{reHyphenated, reLongNumber, reLongAlnum},
		Stopwords:        []string{"GENUINE", "PARTS"},
		RelaxedStopwords: []string{"GENUINE"},
		MinLineLen:       2,
		NameMaxLen:       30,
		RelaxedMinLen:    2,
		RelaxedMaxLen:    25,
	}
}
