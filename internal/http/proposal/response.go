package proposal

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/schemeportal/internal/fiscal"
	"github.com/MrJamesThe3rd/schemeportal/internal/proposal"
)

type proposalResponse struct {
	ID                    uuid.UUID           `json:"id"`
	ReferenceNo           string              `json:"reference_no"`
	ManualReferenceNo     string              `json:"manual_reference_no,omitempty"`
	Sector                string              `json:"sector"`
	Department            string              `json:"department"`
	RecommenderID         string              `json:"recommender_id"`
	RecommenderType       string              `json:"recommender_type"`
	Location              proposal.Location   `json:"location"`
	Amount                decimal.Decimal     `json:"proposal_amount"`
	PermissibleWorks      []string            `json:"permissible_works"`
	DLCApproved           bool                `json:"dlc_approved"`
	NodalMinisterApproved bool                `json:"nodal_minister_approved"`
	FiscalYear            fiscal.Year         `json:"fiscal_year"`
	ActionType            proposal.ActionType `json:"action_type"`
	AgencyID              string              `json:"agency_id,omitempty"`
	CreatedBy             string              `json:"created_by"`
	UpdatedBy             string              `json:"updated_by"`
	CreatedAt             time.Time           `json:"created_at"`
	UpdatedAt             time.Time           `json:"updated_at"`
}

type projectFields struct {
	ID                    uuid.UUID              `json:"id"`
	ProposalID            uuid.UUID              `json:"proposal_id"`
	ReferenceNo           string                 `json:"reference_no"`
	Sector                string                 `json:"sector"`
	Department            string                 `json:"department"`
	Location              proposal.Location      `json:"location"`
	Amount                decimal.Decimal        `json:"project_amount"`
	PermissibleWorks      []string               `json:"permissible_works"`
	DLCApproved           bool                   `json:"dlc_approved"`
	NodalMinisterApproved bool                   `json:"nodal_minister_approved"`
	FiscalYear            fiscal.Year            `json:"fiscal_year"`
	Status                proposal.ProjectStatus `json:"status"`
	CreatedAt             time.Time              `json:"created_at"`
	UpdatedAt             time.Time              `json:"updated_at"`
}

type progressResponse struct {
	ID                uuid.UUID               `json:"id"`
	ProjectID         uuid.UUID               `json:"project_id"`
	Status            proposal.ProgressStatus `json:"status"`
	Percent           int                     `json:"progress_percent"`
	EstimatedAmount   decimal.Decimal         `json:"estimated_amount"`
	SanctionedAmount  decimal.Decimal         `json:"sanctioned_amount"`
	TransferredAmount decimal.Decimal         `json:"transferred_amount"`
	RemainingAmount   decimal.Decimal         `json:"remaining_amount"`
	AgencyID          string                  `json:"agency_id,omitempty"`
}

type createResponse struct {
	Proposal proposalResponse `json:"proposal"`
	Project  projectFields    `json:"project"`
	Progress progressResponse `json:"progress"`
}

type projectResponse struct {
	projectFields
	Progress progressResponse `json:"progress"`
}

func toProposalResponse(p *proposal.Proposal) proposalResponse {
	return proposalResponse{
		ID:                    p.ID,
		ReferenceNo:           p.ReferenceNo,
		ManualReferenceNo:     p.ManualReferenceNo,
		Sector:                p.Sector,
		Department:            p.Department,
		RecommenderID:         p.RecommenderID,
		RecommenderType:       p.RecommenderType,
		Location:              p.Location,
		Amount:                p.Amount,
		PermissibleWorks:      p.PermissibleWorks,
		DLCApproved:           p.DLCApproved,
		NodalMinisterApproved: p.NodalMinisterApproved,
		FiscalYear:            p.FiscalYear,
		ActionType:            p.ActionType,
		AgencyID:              p.AgencyID,
		CreatedBy:             p.CreatedBy,
		UpdatedBy:             p.UpdatedBy,
		CreatedAt:             p.CreatedAt,
		UpdatedAt:             p.UpdatedAt,
	}
}

func toProjectResponse(p *proposal.Project) projectFields {
	return projectFields{
		ID:                    p.ID,
		ProposalID:            p.ProposalID,
		ReferenceNo:           p.ReferenceNo,
		Sector:                p.Sector,
		Department:            p.Department,
		Location:              p.Location,
		Amount:                p.Amount,
		PermissibleWorks:      p.PermissibleWorks,
		DLCApproved:           p.DLCApproved,
		NodalMinisterApproved: p.NodalMinisterApproved,
		FiscalYear:            p.FiscalYear,
		Status:                p.Status,
		CreatedAt:             p.CreatedAt,
		UpdatedAt:             p.UpdatedAt,
	}
}

func toProgressResponse(p *proposal.Progress) progressResponse {
	return progressResponse{
		ID:                p.ID,
		ProjectID:         p.ProjectID,
		Status:            p.Status,
		Percent:           p.Percent,
		EstimatedAmount:   p.EstimatedAmount,
		SanctionedAmount:  p.SanctionedAmount,
		TransferredAmount: p.TransferredAmount,
		RemainingAmount:   p.RemainingAmount,
		AgencyID:          p.AgencyID,
	}
}
