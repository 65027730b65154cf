// Package reference assembles hierarchical proposal reference numbers.
package reference

import (
	"fmt"
	"strings"

	"github.com/MrJamesThe3rd/schemeportal/internal/apperr"
	"github.com/MrJamesThe3rd/schemeportal/internal/fiscal"
	"github.com/MrJamesThe3rd/schemeportal/internal/sequence"
)

// Area classifies a location as panchayat-based or local-body-based.
type Area string

const (
	Rural Area = "rural"
	Urban Area = "urban"
)

// RunningNumber is the pattern of the final reference segment.
var RunningNumber = sequence.TrailingPattern(4)

// Parts are the location codes a reference is built from.
type Parts struct {
	Area             Area
	StateCode        string
	DistrictCode     string
	ConstituencyCode string
	BlockCode        string
	PanchayatCode    string
	LocalBodyType    string
	LocalBodyCode    string
}

// Branch decides whether p describes a rural or an urban location. A
// declared area must agree with the codes present; an undeclared one is
// inferred, and ambiguity fails closed.
func (p Parts) Branch() (Area, error) {
	rural := p.PanchayatCode != ""
	urban := p.LocalBodyType != ""

	switch p.Area {
	case Rural:
		if !rural {
			return "", missing("rural location has no panchayat code")
		}

		return Rural, nil
	case Urban:
		if !urban {
			return "", missing("urban location has no local body type")
		}

		return Urban, nil
	case "":
	default:
		return "", missing(fmt.Sprintf("unknown area type %q", p.Area))
	}

	switch {
	case rural && urban:
		return "", missing("both panchayat code and local body type present")
	case rural:
		return Rural, nil
	case urban:
		return Urban, nil
	}

	return "", missing("neither panchayat code nor local body type present")
}

// Compose renders the reference for p in fiscal year fy:
//
//	rural: state/district/block/constituency/panchayat/fy/nnnn
//	urban: state/district/constituency/localBodyType/localBodyCode/fy/nnnn
func Compose(p Parts, fy fiscal.Year, running int64) (string, error) {
	area, err := p.Branch()
	if err != nil {
		return "", err
	}

	if fy.IsZero() {
		return "", apperr.Invalid("fiscal_year", "is required")
	}

	if running < 1 {
		return "", apperr.Invalid("running_number", "must be positive, got %d", running)
	}

	var segments []string

	switch area {
	case Rural:
		segments = []string{p.StateCode, p.DistrictCode, p.BlockCode, p.ConstituencyCode, p.PanchayatCode}
	case Urban:
		segments = []string{p.StateCode, p.DistrictCode, p.ConstituencyCode, p.LocalBodyType, p.LocalBodyCode}
	}

	for i, s := range segments {
		if strings.TrimSpace(s) == "" {
			return "", missing(fmt.Sprintf("%s reference segment %d is empty", area, i+1))
		}

		if strings.Contains(s, "/") {
			return "", apperr.Invalid("location", "code %q must not contain '/'", s)
		}
	}

	segments = append(segments, fy.Short(), RunningNumber.Format(running))

	return strings.Join(segments, "/"), nil
}

func missing(reason string) error {
	return fmt.Errorf("%w: %s", apperr.ErrMissingLocationContext, reason)
}
