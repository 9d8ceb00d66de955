package modification

import (
	"testing"

	"github.com/nuvet/searchdialog/internal/domain/entity"
	dommod "github.com/nuvet/searchdialog/internal/domain/modification"
	"github.com/nuvet/searchdialog/internal/domain/spec"
	"github.com/nuvet/searchdialog/internal/domain/turn"
)

func TestDetectRoleDrivenReplace(t *testing.T) {
	d := New(nil)

	current := spec.New(spec.KindProduct)
	current.Set("producto", spec.Scalar("amoxicilina"))
	current.Set("empresa", spec.Scalar("Holliday"))

	got := d.Detect(SubReplace, "cambiá Holliday por Bayer",
		[]entity.Normalized{
			{Type: "empresa", Value: "Bayer", Role: "new"},
			{Type: "empresa", Value: "Holliday", Role: "old"},
		},
		current, turn.ExperienceNovice,
	)

	if !got.Detected {
		t.Fatal("modification not detected")
	}
	if len(got.Actions) != 1 {
		t.Fatalf("actions = %d, want 1: %+v", len(got.Actions), got.Actions)
	}
	a := got.Actions[0]
	if a.Type != dommod.Replace || a.EntityType != "empresa" ||
		a.OldValue != "Holliday" || a.NewValue != "Bayer" {
		t.Errorf("action = %+v, want replace empresa Holliday->Bayer", a)
	}

	applied, _ := Apply(current, got.Actions)
	if v, _ := applied.Get("empresa"); v.Text() != "Bayer" {
		t.Errorf("empresa after apply = %q, want Bayer", v.Text())
	}
	if v, _ := applied.Get("producto"); v.Text() != "amoxicilina" {
		t.Error("other filters must survive the replace")
	}
}

func TestDetectRemovePlaceholderFilter(t *testing.T) {
	d := New(nil)

	current := spec.New(spec.KindOffer)
	current.Set("descuento", spec.Structured("15%", "gt", "descuento_filter"))

	got := d.Detect(SubRemove, "sacá el descuento",
		[]entity.Normalized{{Type: "filtro", Value: "descuento"}},
		current, turn.ExperienceNovice,
	)

	if len(got.Actions) != 1 {
		t.Fatalf("actions = %+v", got.Actions)
	}
	a := got.Actions[0]
	if a.Type != dommod.RemoveFilter || a.EntityType != "descuento" || a.OldValue != "" {
		t.Errorf("action = %+v, want whole-filter removal of descuento", a)
	}

	applied, notes := Apply(current, got.Actions)
	if applied.Has("descuento") {
		t.Error("descuento should be removed")
	}
	if len(notes) != 0 {
		t.Errorf("unexpected notes: %v", notes)
	}
}

func TestDetectValueScopedRemove(t *testing.T) {
	d := New(nil)

	got := d.Detect(SubRemove, "sacá los gatos",
		[]entity.Normalized{{Type: "animal", Value: "gatos"}},
		spec.New(spec.KindProduct), turn.ExperienceNovice,
	)

	if len(got.Actions) != 1 || got.Actions[0].OldValue != "gatos" {
		t.Fatalf("actions = %+v, want value-scoped removal", got.Actions)
	}
}

func TestDetectAddSkipsBareComparator(t *testing.T) {
	d := New(nil)

	got := d.Detect(SubAdd, "agregá para perros con más descuento",
		[]entity.Normalized{
			{Type: "animal", Value: "perros", Role: "add"},
			{Type: "comparador", Value: "", Role: "gt", Group: "descuento_filter"},
		},
		spec.New(spec.KindOffer), turn.ExperienceNovice,
	)

	if len(got.Actions) != 1 {
		t.Fatalf("actions = %+v, want only the animal addition", got.Actions)
	}
	if got.Actions[0].Type != dommod.AddFilter || got.Actions[0].NewValue != "perros" {
		t.Errorf("action = %+v", got.Actions[0])
	}
}

func TestDetectInvalidEntityForKind(t *testing.T) {
	d := New(nil)

	// descuento belongs to offer searches, not product searches
	got := d.Detect(SubAdd, "agregá 15% de descuento",
		[]entity.Normalized{{Type: "descuento", Value: "15%", Role: "add"}},
		spec.New(spec.KindProduct), turn.ExperienceNovice,
	)

	if len(got.Actions) != 0 {
		t.Errorf("valid actions = %+v, want none", got.Actions)
	}
	if len(got.InvalidEntities) != 1 {
		t.Fatalf("invalid entities = %+v", got.InvalidEntities)
	}
	report := got.InvalidEntities[0]
	if report.EntityType != "descuento" {
		t.Errorf("entity = %q", report.EntityType)
	}
	if len(report.ValidIn) != 1 || report.ValidIn[0] != spec.KindOffer {
		t.Errorf("valid in = %v, want [oferta]", report.ValidIn)
	}
	if !got.NeedsConfirmation || got.ConfirmationReason != "invalid_entities" {
		t.Errorf("confirmation = (%v, %q), want invalid_entities", got.NeedsConfirmation, got.ConfirmationReason)
	}
}

func TestAmbiguityExperienceLevels(t *testing.T) {
	d := New(nil)

	// no role tag: the replace is inferred from the current value, so
	// confidence lands in the medium band where only novices confirm
	current := spec.New(spec.KindProduct)
	current.Set("empresa", spec.Scalar("Holliday"))
	entities := []entity.Normalized{{Type: "empresa", Value: "Bayer"}}

	novice := d.Detect(SubReplace, "mejor de Bayer", entities, current, turn.ExperienceNovice)
	if !novice.NeedsConfirmation || novice.ConfirmationReason != "medium_confidence" {
		t.Errorf("novice confirmation = (%v, %q), want medium_confidence",
			novice.NeedsConfirmation, novice.ConfirmationReason)
	}

	expert := d.Detect(SubReplace, "mejor de Bayer", entities, current, turn.ExperienceExpert)
	if expert.NeedsConfirmation {
		t.Errorf("expert should not confirm a single inferred replace: %q", expert.ConfirmationReason)
	}
}

func TestAmbiguityConjunctionMismatch(t *testing.T) {
	d := New(nil)

	got := d.Detect(SubReplace, "cambiá la empresa y sacá el descuento",
		[]entity.Normalized{
			{Type: "empresa", Value: "Bayer", Role: "new"},
			{Type: "empresa", Value: "Holliday", Role: "old"},
		},
		spec.New(spec.KindOffer), turn.ExperienceNovice,
	)

	if !got.NeedsConfirmation || got.ConfirmationReason != "conjunction_mismatch" {
		t.Errorf("confirmation = (%v, %q), want conjunction_mismatch",
			got.NeedsConfirmation, got.ConfirmationReason)
	}
}

func TestAmbiguityMultipleWithoutConjunction(t *testing.T) {
	d := New(nil)

	got := d.Detect(SubMultiple, "cambiá todo",
		[]entity.Normalized{
			{Type: "empresa", Value: "Bayer", Role: "add"},
			{Type: "animal", Value: "perros", Role: "add"},
		},
		spec.New(spec.KindProduct), turn.ExperienceNovice,
	)

	if !got.NeedsConfirmation || got.ConfirmationReason != "multiple_without_conjunction" {
		t.Errorf("confirmation = (%v, %q)", got.NeedsConfirmation, got.ConfirmationReason)
	}
}

func TestApplyAddIdempotent(t *testing.T) {
	s := spec.New(spec.KindProduct)
	action := dommod.Action{Type: dommod.AddFilter, EntityType: "animal", NewValue: "perros", Confidence: 0.9}

	once, _ := Apply(s, []dommod.Action{action})
	twice, notes := Apply(once, []dommod.Action{action})

	v1, _ := once.Get("animal")
	v2, _ := twice.Get("animal")
	if v1.Text() != v2.Text() {
		t.Errorf("idempotence broken: %q vs %q", v1.Text(), v2.Text())
	}
	if len(notes) != 1 {
		t.Errorf("re-add should leave a note, got %v", notes)
	}
}

func TestApplyRemoveAbsentFilterNotes(t *testing.T) {
	s := spec.New(spec.KindOffer)

	applied, notes := Apply(s, []dommod.Action{
		{Type: dommod.RemoveFilter, EntityType: "descuento", Confidence: 0.9},
	})

	if applied.Len() != 0 {
		t.Errorf("spec changed: %+v", applied)
	}
	if len(notes) != 1 {
		t.Errorf("absent removal should note, got %v", notes)
	}
}

func TestApplyReplacePreservesGroup(t *testing.T) {
	s := spec.New(spec.KindOffer)
	s.Set("descuento", spec.Structured("15%", "gt", "descuento_filter"))

	applied, _ := Apply(s, []dommod.Action{
		{Type: dommod.Replace, EntityType: "descuento", OldValue: "15%", NewValue: "20%", Confidence: 0.9},
	})

	v, _ := applied.Get("descuento")
	if v.Text() != "20%" || v.Role() != "gt" || v.Group() != "descuento_filter" {
		t.Errorf("value = (%q, %q, %q), want (20%%, gt, descuento_filter)", v.Text(), v.Role(), v.Group())
	}
}
