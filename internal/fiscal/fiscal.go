// Package fiscal models the April–March budget year.
package fiscal

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// StartMonth is the first month of a fiscal year.
const StartMonth = time.April

// Zone is the time zone the year boundary is observed in (IST, UTC+05:30).
var Zone = time.FixedZone("IST", 5*60*60+30*60)

// Year is a fiscal year identified by the calendar year it starts in.
type Year struct {
	Start int
}

// Of returns the fiscal year containing t, read on the Zone calendar.
func Of(t time.Time) Year {
	t = t.In(Zone)

	if t.Month() < StartMonth {
		return Year{Start: t.Year() - 1}
	}

	return Year{Start: t.Year()}
}

// Short renders the year as "25-26".
func (y Year) Short() string {
	return fmt.Sprintf("%02d-%02d", y.Start%100, (y.Start+1)%100)
}

// Full renders the year as "2025-2026".
func (y Year) Full() string {
	return fmt.Sprintf("%d-%d", y.Start, y.Start+1)
}

func (y Year) String() string { return y.Short() }

// IsZero reports whether the year is unset.
func (y Year) IsZero() bool { return y.Start == 0 }

// Parse accepts both the full ("2025-2026") and short ("25-26") forms.
// Short years are placed in the 2000s.
func Parse(s string) (Year, error) {
	first, second, ok := strings.Cut(strings.TrimSpace(s), "-")
	if !ok {
		return Year{}, fmt.Errorf("fiscal year %q: expected START-END", s)
	}

	start, err := strconv.Atoi(first)
	if err != nil {
		return Year{}, fmt.Errorf("fiscal year %q: %w", s, err)
	}

	end, err := strconv.Atoi(second)
	if err != nil {
		return Year{}, fmt.Errorf("fiscal year %q: %w", s, err)
	}

	switch {
	case len(first) == 4 && len(second) == 4:
	case len(first) == 2 && len(second) == 2:
		start += 2000
		end += 2000

		if end < start {
			end += 100
		}
	default:
		return Year{}, fmt.Errorf("fiscal year %q: expected YYYY-YYYY or YY-YY", s)
	}

	if end != start+1 {
		return Year{}, fmt.Errorf("fiscal year %q: years must be consecutive", s)
	}

	return Year{Start: start}, nil
}

func (y Year) MarshalText() ([]byte, error) {
	return []byte(y.Short()), nil
}

func (y *Year) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*y = Year{}
		return nil
	}

	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}

	*y = parsed

	return nil
}
