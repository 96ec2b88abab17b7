package model

// MaxLocationLen is the longest accepted location tag.
const MaxLocationLen = 10

// Item is one inventory line belonging to a model.
//
// JSON field names match the document written by the legacy browser app so
// existing exports load unchanged.
type Item struct {
	ID       string `json:"id"`
	Name     string `json:"nombre"`
	Location string `json:"ubicacion,omitempty"`
	Quantity int    `json:"cantidad"`
}

// DisplayName returns the name prefixed with its bracketed location tag, if any.
func (i Item) DisplayName() string {
	if i.Location == "" {
		return i.Name
	}
	return "[" + i.Location + "] " + i.Name
}
