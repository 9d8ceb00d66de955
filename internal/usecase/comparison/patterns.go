package comparison

import (
	"regexp"

	domcmp "github.com/nuvet/searchdialog/internal/domain/comparison"
)

var (
	percentRe         = regexp.MustCompile(`\d+\s*%`)
	temporalKeywordRe = regexp.MustCompile(`(?i)\b(?:mes|semana|d[ií]a|año|fecha|periodo|vigente|vence|expira|v[aá]lid[oa]|actual|reciente|nuevo)`)
)

// num captures an amount with an optional percent sign attached.
const num = `(\d+(?:\.\d+)?\s*%?)`

// buildFamilies compiles the six pattern families in detection order.
// Within a family the first pattern that matches decides the operator.
func buildFamilies() []family {
	return []family{
		{
			typ:    domcmp.TypeNumeric,
			weight: weightNumeric,
			patterns: []pattern{
				{domcmp.OpGT, re(`(?:mayor|mas|más|superior|arriba)\s+(?:de|del|al?)\s+` + num)},
				{domcmp.OpGT, re(num + `\s+(?:o|ó)\s+(?:mas|más|mayor)`)},
				{domcmp.OpGT, re(`(?:supera|excede)\s+(?:el\s+)?` + num)},
				{domcmp.OpLT, re(`(?:menor|menos)\s+(?:de|del|al?)\s+` + num)},
				{domcmp.OpLT, re(`(?:hasta|m[aá]ximo|como\s+m[aá]ximo)\s+` + num)},
				{domcmp.OpLT, re(`(?:no\s+m[aá]s\s+de|debajo\s+de)\s+` + num)},
				{domcmp.OpEQ, re(`(?:igual\s+a|exactamente|justo)\s+` + num)},
				{domcmp.OpEQ, re(`(?:de|del)\s+(\d+(?:\.\d+)?\s*%)`)},
				{domcmp.OpNEQ, re(`(?:distinto|diferente)\s+(?:de|a)\s+` + num)},
			},
		},
		{
			typ:    domcmp.TypePrice,
			weight: weightPrice,
			patterns: []pattern{
				{domcmp.OpLT, re(`(?:m[aá]s\s+barato|que\s+cueste\s+menos\s+de|menos)\s+(?:que\s+|de\s+)?(?:\$|pesos?\s*)?` + num)},
				{domcmp.OpGT, re(`(?:m[aá]s\s+caro|arriba\s+de|superior\s+a)\s+(?:\$|pesos?\s*)?` + num)},
				{domcmp.OpGT, re(`(?:m[aá]s|mayor)\s+(?:de|a)\s+(?:\$|pesos?\s*)?` + num + `\s*(?:pesos?|de\s+precio)`)},
				{domcmp.OpEQ, re(`(?:precio|cuesta|vale)\s+(?:\$|pesos?\s*)?` + num)},
			},
		},
		{
			typ:    domcmp.TypeQuality,
			weight: weightQuality,
			patterns: []pattern{
				{domcmp.OpGT, re(`(?:mejor|superior|m[aá]s\s+buen[oa])\s+(?:que|a)\b`)},
				{domcmp.OpGT, re(`(?:de\s+)?(?:mayor|mejor)\s+calidad`)},
				{domcmp.OpLT, re(`(?:peor|inferior|m[aá]s\s+mal[oa])\s+(?:que|a)\b`)},
				{domcmp.OpLT, re(`(?:de\s+)?(?:menor|peor)\s+calidad`)},
				{domcmp.OpEQ, re(`tan\s+buen[oa]\s+como`)},
			},
		},
		{
			typ:    domcmp.TypeQuantity,
			weight: weightQuantity,
			patterns: []pattern{
				{domcmp.OpGT, re(`(?:m[aá]s)\s+de\s+(\d+)\s*(?:unidades?|productos?|items?)\b`)},
				{domcmp.OpGT, re(`(?:por\s+encima\s+de)\s+(\d+)`)},
				{domcmp.OpLT, re(`(?:menos)\s+de\s+(\d+)\s*(?:unidades?|productos?|items?)\b`)},
				{domcmp.OpEQ, re(`(?:exactamente|justo)\s+(\d+)\s*(?:unidades?|productos?)\b`)},
			},
		},
		{
			typ:    domcmp.TypeTemporal,
			weight: weightTemporal,
			patterns: []pattern{
				{domcmp.OpGT, re(`vigente|v[aá]lid[oa]|activ[oa]|en\s+curso`)},
				{domcmp.OpLT, re(`venc[ie]|expira|caduc|antes\s+de|por\s+vencer`)},
				{domcmp.OpEQ, re(`(?:este|del)\s+(mes|año|semana|trimestre)`)},
				{domcmp.OpEQ, re(`(?:en|de|del)\s+(enero|febrero|marzo|abril|mayo|junio|julio|agosto|septiembre|octubre|noviembre|diciembre)`)},
				{domcmp.OpEQ, re(`(?:en|de)\s+(\d{4})\b`)},
				{domcmp.OpEQ, re(`reciente|nuevo|[uú]ltim[oa]s?\s+\d+`)},
			},
		},
		{
			typ:    domcmp.TypeSize,
			weight: weightSize,
			patterns: []pattern{
				{domcmp.OpGT, re(`(?:m[aá]s\s+grande|mayor\s+tama[ñn]o)\s*(?:que|de|a)?\s*` + num + `?`)},
				{domcmp.OpLT, re(`(?:m[aá]s\s+(?:chico|peque[ñn]o)|menor\s+tama[ñn]o)\s*(?:que|de|a)?\s*` + num + `?`)},
				{domcmp.OpEQ, re(`(?:de|del?)\s+(\d+(?:\.\d+)?)\s*(?:ml|l|kg|g|mg|cm|m)\b`)},
			},
		},
	}
}

func re(expr string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)` + expr)
}
