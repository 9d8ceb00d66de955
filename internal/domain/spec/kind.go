package spec

// Kind identifies what the user is searching for.
type Kind string

// Supported search kinds.
const (
	KindProduct Kind = "producto"
	KindOffer   Kind = "oferta"
)

// IsValid reports whether the kind is one of the supported values.
func (k Kind) IsValid() bool {
	return k == KindProduct || k == KindOffer
}

// KindFromIntent maps a search intent label to its kind.
// Unknown intents map to the zero Kind.
func KindFromIntent(intent string) Kind {
	switch intent {
	case "buscar_producto":
		return KindProduct
	case "buscar_oferta":
		return KindOffer
	default:
		return ""
	}
}
