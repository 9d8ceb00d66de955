package normalize

import (
	"testing"

	"github.com/nuvet/searchdialog/internal/domain/entity"
)

func TestNormalizeCompoundTags(t *testing.T) {
	tests := []struct {
		name string
		in   entity.Raw
		want entity.Normalized
	}{
		{
			name: "comparator with context",
			in:   entity.Raw{Entity: "comparador_mas_descuento", Value: "15%"},
			want: entity.Normalized{Type: "comparador", Value: "15%", Role: "gt", Group: "descuento_filter"},
		},
		{
			name: "comparator without context",
			in:   entity.Raw{Entity: "comparador_menos", Value: "2000"},
			want: entity.Normalized{Type: "comparador", Value: "2000", Role: "lt"},
		},
		{
			name: "dash delimited",
			in:   entity.Raw{Entity: "comparador-igual-precio", Value: "500"},
			want: entity.Normalized{Type: "comparador", Value: "500", Role: "eq", Group: "precio_filter"},
		},
		{
			name: "state sub-state",
			in:   entity.Raw{Entity: "estado_vence_pronto", Value: "vence pronto"},
			want: entity.Normalized{Type: "estado", Value: "vence pronto", Role: "vence_pronto"},
		},
		{
			name: "dosage subtype",
			in:   entity.Raw{Entity: "dosis_gramaje", Value: "500mg"},
			want: entity.Normalized{Type: "dosis", Value: "500mg", Role: "gramaje"},
		},
		{
			name: "plain entity untouched",
			in:   entity.Raw{Entity: "producto", Value: "amoxicilina", Role: "new"},
			want: entity.Normalized{Type: "producto", Value: "amoxicilina", Role: "new"},
		},
		{
			name: "unknown operator passes through",
			in:   entity.Raw{Entity: "comparador_cerca", Value: "10"},
			want: entity.Normalized{Type: "comparador_cerca", Value: "10"},
		},
		{
			name: "unknown context passes through",
			in:   entity.Raw{Entity: "comparador_mas_kilometros", Value: "10"},
			want: entity.Normalized{Type: "comparador_mas_kilometros", Value: "10"},
		},
		{
			name: "too many parts passes through",
			in:   entity.Raw{Entity: "comparador_mas_descuento_extra", Value: "10"},
			want: entity.Normalized{Type: "comparador_mas_descuento_extra", Value: "10"},
		},
	}

	n := New(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := n.Normalize([]entity.Raw{tt.in})
			if len(got) != 1 {
				t.Fatalf("got %d entities, want 1", len(got))
			}
			if got[0] != tt.want {
				t.Errorf("normalized = %+v, want %+v", got[0], tt.want)
			}
		})
	}
}

func TestNormalizePreservesCount(t *testing.T) {
	in := []entity.Raw{
		{Entity: "producto", Value: "amoxicilina"},
		{Entity: "comparador_mas_descuento", Value: "15%"},
		{Entity: "estado_nuevo", Value: "nuevo"},
		{Entity: "???", Value: "garbage"},
	}

	got := New(nil).Normalize(in)
	if len(got) != len(in) {
		t.Errorf("count = %d, want %d", len(got), len(in))
	}
}
