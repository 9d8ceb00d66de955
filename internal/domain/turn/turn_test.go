package turn

import (
	"testing"
	"time"

	"github.com/nuvet/searchdialog/internal/domain/spec"
)

func TestExperienceLevel(t *testing.T) {
	tests := []struct {
		name      string
		completed int
		modified  int
		want      string
	}{
		{"empty history", 0, 0, ExperienceNovice},
		{"at threshold", 10, 0, ExperienceNovice},
		{"above threshold", 11, 0, ExperienceExpert},
		{"modified records do not count", 5, 20, ExperienceNovice},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Context
			for i := 0; i < tt.completed; i++ {
				c.History = append(c.History, HistoryRecord{Status: StatusCompleted})
			}
			for i := 0; i < tt.modified; i++ {
				c.History = append(c.History, HistoryRecord{Status: StatusModified})
			}
			if got := c.ExperienceLevel(); got != tt.want {
				t.Errorf("ExperienceLevel = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLastSearch(t *testing.T) {
	var c Context
	if _, ok := c.LastSearch(); ok {
		t.Error("empty history should have no last search")
	}

	c.History = append(c.History,
		HistoryRecord{Kind: spec.KindProduct, Timestamp: time.Now().Add(-time.Hour)},
		HistoryRecord{Kind: spec.KindOffer, Timestamp: time.Now()},
	)
	last, ok := c.LastSearch()
	if !ok || last.Kind != spec.KindOffer {
		t.Errorf("LastSearch = %+v, %v; want offer record", last, ok)
	}
}

func TestIsModificationIntent(t *testing.T) {
	tests := []struct {
		intent string
		want   bool
	}{
		{IntentModifySearch, true},
		{"quitar_filtro", true},
		{"agregar_filtro", true},
		{IntentSearchProduct, false},
		{IntentAffirm, false},
	}

	for _, tt := range tests {
		in := Input{Intent: tt.intent}
		if got := in.IsModificationIntent(); got != tt.want {
			t.Errorf("IsModificationIntent(%q) = %v, want %v", tt.intent, got, tt.want)
		}
	}
}
