package comparison

import (
	"testing"
	"time"

	domcmp "github.com/nuvet/searchdialog/internal/domain/comparison"
	"github.com/nuvet/searchdialog/internal/domain/entity"
)

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

func TestDetectDiscountComparison(t *testing.T) {
	d := New(nil, nil)

	got := d.Detect("ofertas con descuento mayor a 15%", []entity.Normalized{
		{Type: "descuento", Value: "15%"},
	})

	if !got.Detected {
		t.Fatal("comparison not detected")
	}
	if got.Type != domcmp.TypeNumeric {
		t.Errorf("type = %q, want numeric", got.Type)
	}
	if got.Operator != domcmp.OpGT {
		t.Errorf("operator = %q, want gt", got.Operator)
	}
	if got.Operand != "15%" {
		t.Errorf("operand = %q, want 15%%", got.Operand)
	}
	// numeric weight plus the entity bonus
	if got.Confidence < 0.59 || got.Confidence > 0.61 {
		t.Errorf("confidence = %v, want 0.6", got.Confidence)
	}
}

func TestDetectOperators(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		wantTyp domcmp.Type
		wantOp  domcmp.Operator
	}{
		{"less than", "que tenga menos de 2000", domcmp.TypeNumeric, domcmp.OpLT},
		{"up to", "hasta 500", domcmp.TypeNumeric, domcmp.OpLT},
		{"exactly", "exactamente 20", domcmp.TypeNumeric, domcmp.OpEQ},
		{"different", "distinto de 10", domcmp.TypeNumeric, domcmp.OpNEQ},
		{"quality better", "que sea de mejor calidad", domcmp.TypeQuality, domcmp.OpGT},
		{"quality worse", "peor que el otro", domcmp.TypeQuality, domcmp.OpLT},
		{"cheaper", "más barato que 300", domcmp.TypePrice, domcmp.OpLT},
		{"quantity", "por encima de 10 unidades", domcmp.TypeQuantity, domcmp.OpGT},
	}

	d := New(nil, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := d.Detect(tt.text, nil)
			if !got.Detected {
				t.Fatalf("no comparison detected in %q", tt.text)
			}
			if got.Type != tt.wantTyp || got.Operator != tt.wantOp {
				t.Errorf("got (%s, %s), want (%s, %s)", got.Type, got.Operator, tt.wantTyp, tt.wantOp)
			}
		})
	}
}

func TestFirstFamilyWins(t *testing.T) {
	d := New(nil, nil)

	// Both numeric and quality fire; numeric is first in family order.
	got := d.Detect("mayor a 20 y de mejor calidad", nil)
	if got.Type != domcmp.TypeNumeric {
		t.Errorf("type = %q, want numeric", got.Type)
	}
	if got.Operator != domcmp.OpGT {
		t.Errorf("operator = %q, want gt", got.Operator)
	}
	// Later families still add confidence weight.
	if got.Confidence <= weightNumeric {
		t.Errorf("confidence = %v, want above the numeric weight alone", got.Confidence)
	}
}

func TestConfidenceClamped(t *testing.T) {
	d := New(nil, nil)

	text := "mayor a 20 y más barato que 300 pesos y de mejor calidad y más de 10 unidades comparado con el grupo antibioticos"
	got := d.Detect(text, []entity.Normalized{{Type: "producto", Value: "x"}})

	if !got.Detected {
		t.Fatal("not detected")
	}
	if got.Confidence > 1.0 {
		t.Errorf("confidence = %v, must be clamped to 1.0", got.Confidence)
	}
}

func TestTemporalThisMonth(t *testing.T) {
	now := time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC)
	d := New(fixedClock(now), nil)

	got := d.Detect("ofertas vigentes de este mes", nil)
	if !got.Detected || got.Type != domcmp.TypeTemporal {
		t.Fatalf("got %+v, want temporal detection", got)
	}
	if got.Temporal == nil {
		t.Fatal("temporal filters missing")
	}
	if got.Temporal.From != "2025-03-01" || got.Temporal.To != "2025-03-31" {
		t.Errorf("range = %s..%s, want 2025-03-01..2025-03-31", got.Temporal.From, got.Temporal.To)
	}
}

func TestTemporalLastNDays(t *testing.T) {
	now := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	d := New(fixedClock(now), nil)

	got := d.Detect("ofertas de los últimos 7 días", nil)
	if got.Type != domcmp.TypeTemporal || got.Temporal == nil {
		t.Fatalf("got %+v, want resolved temporal", got)
	}
	if got.Temporal.From != "2025-03-03" || got.Temporal.To != "2025-03-10" {
		t.Errorf("range = %s..%s, want 2025-03-03..2025-03-10", got.Temporal.From, got.Temporal.To)
	}
}

func TestPercentNeverReadAsTemporal(t *testing.T) {
	d := New(nil, nil)

	got := d.Detect("descuento del 15% este mes", nil)
	if got.Type == domcmp.TypeTemporal {
		t.Error("percentage text must not classify as temporal")
	}
}

func TestNoComparison(t *testing.T) {
	d := New(nil, nil)

	got := d.Detect("quiero amoxicilina para perros", nil)
	if got.Detected {
		t.Errorf("unexpected detection: %+v", got)
	}
	if got.Confidence != 0 {
		t.Errorf("confidence = %v, want 0", got.Confidence)
	}
}
