// Package label turns raw OCR text from a photographed part label into an
// inventory candidate: a part name, a part code and the motorcycle model.
//
// Every step scans lines in their original order and the first match wins.
// Code detection over-matches on purpose; name detection is strict so brand
// and model words are not filed as part names.
package label

import (
	"cmp"
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"
)

// Line is one normalized OCR line offered to the user for selection.
type Line struct {
	Text string `json:"text"`
	// Probable marks lines that look like a part name rather than a number.
	Probable bool `json:"probable"`
}

// Result is the parser's best guess for a single capture. Empty fields mean
// nothing matched.
type Result struct {
	Name    string `json:"name,omitempty"`
	Code    string `json:"code,omitempty"`
	ModelID string `json:"model_id,omitempty"`
	RawText string `json:"raw_text"`
	Lines   []Line `json:"lines"`
}

// Empty reports whether the input had no usable lines at all.
func (r Result) Empty() bool {
	return len(r.Lines) == 0
}

// Parser extracts candidates from OCR text. It holds no mutable state and is
// safe for concurrent use.
type Parser struct {
	rules       Rules
	markers     []Marker
	stopwords   []string
	relaxedStop []string
	modelNames  map[string]string
}

// New builds a parser from rules.
func New(rules Rules) *Parser {
	p := &Parser{
		rules:      rules,
		modelNames: make(map[string]string, len(rules.Models)),
	}

	for _, m := range rules.Markers {
		p.markers = append(p.markers, Marker{Text: strings.ToUpper(m.Text), ModelID: m.ModelID})
	}
	slices.SortStableFunc(p.markers, func(a, b Marker) int {
		return cmp.Compare(utf8.RuneCountInString(b.Text), utf8.RuneCountInString(a.Text))
	})

	for _, w := range rules.Stopwords {
		p.stopwords = append(p.stopwords, strings.ToUpper(w))
	}
	for _, w := range rules.RelaxedStopwords {
		p.relaxedStop = append(p.relaxedStop, strings.ToUpper(w))
	}
	for _, m := range p.markers {
		p.stopwords = append(p.stopwords, m.Text)
		p.relaxedStop = append(p.relaxedStop, m.Text)
	}

	for _, m := range rules.Models {
		p.modelNames[m.ID] = strings.ToUpper(m.DisplayName)
	}

	return p
}

// Default is a parser with DefaultRules.
var Default = New(DefaultRules())

// Parse runs the default parser.
func Parse(text string) Result {
	return Default.Parse(text)
}

// Parse extracts the name, code and model candidates from text.
func (p *Parser) Parse(text string) Result {
	lines := Lines(text, p.rules.MinLineLen)

	res := Result{
		RawText: text,
		Lines:   make([]Line, 0, len(lines)),
	}
	for _, l := range lines {
		res.Lines = append(res.Lines, Line{Text: l, Probable: probable(l)})
	}

	if p.rules.DetectModel {
		res.ModelID = p.detectModel(lines)
	}
	res.Code = p.detectCode(lines)
	res.Name = p.detectName(lines, res.ModelID)

	return res
}

// Lines splits text on line breaks, trims every line and drops lines shorter
// than minLen characters. Order is preserved. Invalid UTF-8 bytes are removed.
func Lines(text string, minLen int) []string {
	text = strings.ToValidUTF8(text, "")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	var out []string
	for _, l := range strings.Split(text, "\n") {
		l = strings.TrimSpace(l)
		if utf8.RuneCountInString(l) < minLen {
			continue
		}
		out = append(out, l)
	}
	return out
}

// IsCode reports whether line looks like a part code under the parser's rules.
func (p *Parser) IsCode(line string) bool {
	return matchesAny(p.rules.CodePatterns, line)
}

func (p *Parser) detectModel(lines []string) string {
	for _, l := range lines {
		upper := strings.ToUpper(l)
		for _, m := range p.markers {
			if strings.Contains(upper, m.Text) {
				return m.ModelID
			}
		}
	}
	return ""
}

func (p *Parser) detectCode(lines []string) string {
	for _, l := range lines {
		if p.IsCode(l) {
			return l
		}
	}
	return ""
}

func (p *Parser) detectName(lines []string, modelID string) string {
	// Strict tier.
	for _, l := range lines {
		n := utf8.RuneCountInString(l)
		if n > 1 && n < p.rules.NameMaxLen && !p.IsCode(l) && !containsAny(l, p.stopwords) {
			return l
		}
	}

	// Relaxed tier: tolerates generic brand words other than the relaxed stoplist.
	relaxed := p.relaxedStop
	if name, ok := p.modelNames[modelID]; ok {
		relaxed = append(slices.Clip(relaxed), name)
	}
	for _, l := range lines {
		n := utf8.RuneCountInString(l)
		if n > p.rules.RelaxedMinLen && n < p.rules.RelaxedMaxLen && !p.IsCode(l) && !containsAny(l, relaxed) {
			return l
		}
	}

	// Last resort: no upper bound.
	for _, l := range lines {
		if utf8.RuneCountInString(l) > 1 && !p.IsCode(l) && !containsAny(l, p.stopwords) {
			return l
		}
	}

	return ""
}

func probable(line string) bool {
	n := utf8.RuneCountInString(line)
	return !reDigitRun.MatchString(line) && n > 1 && n < 30
}

func matchesAny(patterns []*regexp.Regexp, s string) bool {
	for _, re := range patterns {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}

func containsAny(line string, words []string) bool {
	upper := strings.ToUpper(line)
	for _, w := range words {
		if strings.Contains(upper, w) {
			return true
		}
	}
	return false
}
