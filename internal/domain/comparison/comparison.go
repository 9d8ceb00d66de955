// Package comparison defines the result of comparison detection over turn text.
package comparison

// Type is the comparison family that fired first.
type Type string

// Comparison families, in detection order.
const (
	TypeNumeric  Type = "numeric"
	TypePrice    Type = "price"
	TypeQuality  Type = "quality"
	TypeQuantity Type = "quantity"
	TypeTemporal Type = "temporal"
	TypeSize     Type = "size"
)

// Operator is the comparison direction.
type Operator string

// Supported operators.
const (
	OpGT  Operator = "gt"
	OpLT  Operator = "lt"
	OpEQ  Operator = "eq"
	OpNEQ Operator = "neq"
)

// DateRange holds resolved temporal filters as ISO dates (YYYY-MM-DD).
// From or To may be empty for open-ended ranges.
type DateRange struct {
	From   string `json:"date_from,omitempty"`
	To     string `json:"date_to,omitempty"`
	Period string `json:"period,omitempty"`
}

// IsZero reports whether no dates were resolved.
func (d DateRange) IsZero() bool { return d.From == "" && d.To == "" }

// Result is the outcome of scanning one turn's text.
type Result struct {
	Detected   bool
	Type       Type
	Operator   Operator
	Operand    string
	Temporal   *DateRange
	Groups     []string
	Roles      []string
	Confidence float64
}
