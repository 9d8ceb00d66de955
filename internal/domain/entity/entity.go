// Package entity holds the entity types exchanged with the NLU collaborator.
package entity

// Raw is an entity exactly as the NLU collaborator extracted it. The type
// name may still encode context (compound tags like "comparador_mas_descuento").
type Raw struct {
	Entity     string  `json:"entity"`
	Value      string  `json:"value"`
	Role       string  `json:"role,omitempty"`
	Group      string  `json:"group,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`
}

// Normalized is an entity after compound tags were collapsed into a canonical
// type with an explicit role and filter group.
type Normalized struct {
	Type       string
	Value      string
	Role       string
	Group      string
	Confidence float64
}

// IsComparator reports whether the entity is a bare comparison operator
// (no operand of its own, it only qualifies a grouped filter).
func (n Normalized) IsComparator() bool {
	return n.Type == "comparador"
}
