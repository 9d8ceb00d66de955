package similarity

// abbreviations expands common clinical and veterinary shorthand to the
// full term it usually stands for. The expansion is matched as a prefix of
// the candidate, so "amoxi" also reaches "amoxicilina 500mg".
var abbreviations = map[string]string{
	"amoxi":  "amoxicilina",
	"doxi":   "doxiciclina",
	"iver":   "ivermectina",
	"dexa":   "dexametasona",
	"keto":   "ketoprofeno",
	"meloxi": "meloxicam",
	"fenben": "fenbendazol",
	"praci":  "praziquantel",
	"compr":  "comprimidos",
	"comp":   "comprimidos",
	"iny":    "inyectable",
	"susp":   "suspension",
	"sol":    "solucion",
	"tab":    "tabletas",
	"caps":   "capsulas",
	"antib":  "antibiotico",
	"antiinf": "antiinflamatorio",
	"antipar": "antiparasitario",
}

// doseUnits are tokens that mark a dosage value.
var doseUnits = []string{"mg", "ml", "kg", "g", "l", "mcg", "ui", "%"}
