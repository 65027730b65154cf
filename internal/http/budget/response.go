package budget

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/schemeportal/internal/budget"
	"github.com/MrJamesThe3rd/schemeportal/internal/fiscal"
)

type headResponse struct {
	ID               uuid.UUID       `json:"id"`
	SanctionNo       string          `json:"sanction_no"`
	DistrictID       string          `json:"district_id"`
	DistrictCode     string          `json:"district_code"`
	DistrictName     string          `json:"district_name,omitempty"`
	FiscalYear       fiscal.Year     `json:"fiscal_year"`
	AllocatedAmount  decimal.Decimal `json:"allocated_amount"`
	AllocatedDate    *time.Time      `json:"allocated_date,omitempty"`
	SanctionedAmount decimal.Decimal `json:"sanctioned_amount"`
	SanctionedDate   *time.Time      `json:"sanctioned_date,omitempty"`
	ReleasedAmount   decimal.Decimal `json:"released_amount"`
	ReleaseDate      *time.Time      `json:"release_date,omitempty"`
	IsDeleted        bool            `json:"is_deleted,omitempty"`
	CreatedBy        string          `json:"created_by"`
	UpdatedBy        string          `json:"updated_by"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

func toResponse(h *budget.Head) headResponse {
	return headResponse{
		ID:               h.ID,
		SanctionNo:       h.SanctionNo,
		DistrictID:       h.DistrictID,
		DistrictCode:     h.DistrictCode,
		DistrictName:     h.DistrictName,
		FiscalYear:       h.FiscalYear,
		AllocatedAmount:  h.AllocatedAmount,
		AllocatedDate:    h.AllocatedDate,
		SanctionedAmount: h.SanctionedAmount,
		SanctionedDate:   h.SanctionedDate,
		ReleasedAmount:   h.ReleasedAmount,
		ReleaseDate:      h.ReleaseDate,
		IsDeleted:        h.IsDeleted,
		CreatedBy:        h.CreatedBy,
		UpdatedBy:        h.UpdatedBy,
		CreatedAt:        h.CreatedAt,
		UpdatedAt:        h.UpdatedAt,
	}
}

func toResponseList(heads []*budget.Head) []headResponse {
	resp := make([]headResponse, len(heads))
	for i, h := range heads {
		resp[i] = toResponse(h)
	}

	return resp
}
