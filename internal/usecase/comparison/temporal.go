package comparison

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	domcmp "github.com/nuvet/searchdialog/internal/domain/comparison"
)

// Clock supplies the current time so relative expressions resolve
// deterministically in tests.
type Clock func() time.Time

const isoDate = "2006-01-02"

var (
	lastNRe = regexp.MustCompile(`(?i)[uú]ltim[oa]s?\s+(\d+)\s+(d[ií]as?|semanas?|meses?)`)
	yearRe  = regexp.MustCompile(`\b(20[2-9]\d)\b`)
)

var monthNames = []struct {
	name  string
	month time.Month
}{
	{"enero", time.January}, {"febrero", time.February}, {"marzo", time.March},
	{"abril", time.April}, {"mayo", time.May}, {"junio", time.June},
	{"julio", time.July}, {"agosto", time.August}, {"septiembre", time.September},
	{"octubre", time.October}, {"noviembre", time.November}, {"diciembre", time.December},
}

// resolveTemporal converts a relative temporal expression into a concrete
// ISO date range anchored at the clock's now. Unresolvable expressions
// return a zero range; detection is unaffected.
func (d *Detector) resolveTemporal(text string) domcmp.DateRange {
	now := time.Now()
	if d.clock != nil {
		now = d.clock()
	}
	lower := strings.ToLower(text)

	switch {
	case strings.Contains(lower, "esta semana"):
		daysSinceMonday := (int(now.Weekday()) + 6) % 7
		start := now.AddDate(0, 0, -daysSinceMonday)
		return domcmp.DateRange{
			From:   start.Format(isoDate),
			To:     start.AddDate(0, 0, 6).Format(isoDate),
			Period: "current_week",
		}

	case strings.Contains(lower, "este mes"):
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return domcmp.DateRange{
			From:   start.Format(isoDate),
			To:     start.AddDate(0, 1, -1).Format(isoDate),
			Period: "current_month",
		}

	case strings.Contains(lower, "reciente") || strings.Contains(lower, "nuevo"):
		return domcmp.DateRange{
			From:   now.AddDate(0, 0, -14).Format(isoDate),
			To:     now.Format(isoDate),
			Period: "recent",
		}

	case lastNRe.MatchString(lower):
		return lastNRange(lower, now)

	case strings.Contains(lower, "vigente") || strings.Contains(lower, "válido") || strings.Contains(lower, "valido"):
		return domcmp.DateRange{From: now.Format(isoDate), Period: "current_and_future"}
	}

	if m := yearRe.FindStringSubmatch(lower); m != nil {
		return domcmp.DateRange{
			From:   m[1] + "-01-01",
			To:     m[1] + "-12-31",
			Period: "year_" + m[1],
		}
	}

	for _, m := range monthNames {
		if strings.Contains(lower, m.name) {
			start := time.Date(now.Year(), m.month, 1, 0, 0, 0, 0, now.Location())
			return domcmp.DateRange{
				From:   start.Format(isoDate),
				To:     start.AddDate(0, 1, -1).Format(isoDate),
				Period: fmt.Sprintf("month_%s_%d", m.name, now.Year()),
			}
		}
	}

	return domcmp.DateRange{}
}

func lastNRange(lower string, now time.Time) domcmp.DateRange {
	m := lastNRe.FindStringSubmatch(lower)
	n, err := strconv.Atoi(m[1])
	if err != nil || n <= 0 {
		return domcmp.DateRange{}
	}

	var start time.Time
	unit := m[2]
	switch {
	case strings.HasPrefix(unit, "d"):
		start = now.AddDate(0, 0, -n)
	case strings.HasPrefix(unit, "semana"):
		start = now.AddDate(0, 0, -7*n)
	default:
		// months approximated as 30 days to match downstream expectations
		start = now.AddDate(0, 0, -30*n)
	}

	return domcmp.DateRange{
		From:   start.Format(isoDate),
		To:     now.Format(isoDate),
		Period: fmt.Sprintf("last_%d_%s", n, unit),
	}
}
