package modification

import (
	"fmt"

	dommod "github.com/nuvet/searchdialog/internal/domain/modification"
	"github.com/nuvet/searchdialog/internal/domain/spec"
)

// Apply reconstructs the search specification by applying validated
// actions in order. Each action is idempotent: re-adding a present value
// or removing an absent filter changes nothing. No-ops are reported as
// informational notes, never errors.
func Apply(current spec.Spec, actions []dommod.Action) (spec.Spec, []string) {
	out := current.Clone()
	var notes []string

	for _, a := range actions {
		switch a.Type {
		case dommod.AddFilter:
			if !out.AddValue(a.EntityType, a.NewValue) {
				notes = append(notes, fmt.Sprintf("%s %q ya estaba en la búsqueda", a.EntityType, a.NewValue))
			}

		case dommod.RemoveFilter:
			if a.OldValue == "" {
				if !out.Delete(a.EntityType) {
					notes = append(notes, fmt.Sprintf("el filtro %s no estaba aplicado", a.EntityType))
				}
				continue
			}
			if !out.RemoveValue(a.EntityType, a.OldValue) {
				notes = append(notes, fmt.Sprintf("%s %q no estaba en la búsqueda", a.EntityType, a.OldValue))
			}

		case dommod.Replace:
			cur, ok := out.Get(a.EntityType)
			if !ok {
				out.Set(a.EntityType, spec.Scalar(a.NewValue))
				notes = append(notes, fmt.Sprintf("no había %s previo, se usó %q directamente", a.EntityType, a.NewValue))
				continue
			}
			// keep role and group so grouped filters survive the replace
			if cur.IsStructured() {
				out.Set(a.EntityType, spec.Structured(a.NewValue, cur.Role(), cur.Group()))
			} else {
				out.Set(a.EntityType, spec.Scalar(a.NewValue))
			}
		}
	}
	return out, notes
}
