package budget

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/schemeportal/internal/fiscal"
	"github.com/MrJamesThe3rd/schemeportal/internal/sequence"
)

// Head is one sanction event against a district's allocation for a fiscal
// year. Every head in a scope shares the same allocated amount.
type Head struct {
	ID               uuid.UUID
	DistrictID       string
	DistrictCode     string
	DistrictName     string
	FiscalYear       fiscal.Year
	SanctionNo       string
	AllocatedAmount  decimal.Decimal
	AllocatedDate    *time.Time
	SanctionedAmount decimal.Decimal
	SanctionedDate   *time.Time
	ReleasedAmount   decimal.Decimal
	ReleaseDate      *time.Time
	IsDeleted        bool
	CreatedBy        string
	UpdatedBy        string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Scope returns the district and fiscal year the head belongs to.
func (h *Head) Scope() Scope {
	return Scope{DistrictID: h.DistrictID, FiscalYear: h.FiscalYear}
}

// Scope groups the heads whose sanctions draw on one allocation.
type Scope struct {
	DistrictID string
	FiscalYear fiscal.Year
}

// Sequence is the namespace sanction numbers are minted in.
func (s Scope) Sequence() sequence.Scope {
	return sequence.NewScope(sequence.KindBudgetSanction, s.DistrictID, s.FiscalYear.Short())
}

// SanctionPattern renders sanction numbers as "D1/25-26/001".
func SanctionPattern(districtCode string, fy fiscal.Year) sequence.Pattern {
	return sequence.NewPattern(districtCode+"/"+fy.Short()+"/", 3)
}
