package proposal

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/schemeportal/internal/fiscal"
	"github.com/MrJamesThe3rd/schemeportal/internal/reference"
)

// ActionType tags the last action taken on a proposal.
type ActionType string

const (
	ActionCreated   ActionType = "created"
	ActionEdited    ActionType = "edited"
	ActionForwarded ActionType = "forwarded"
)

// ProjectStatus is the lifecycle state of a project.
type ProjectStatus string

const (
	ProjectStatusProposed   ProjectStatus = "proposed"
	ProjectStatusSanctioned ProjectStatus = "sanctioned"
	ProjectStatusClosed     ProjectStatus = "closed"
)

// ProgressStatus is the execution state of a project.
type ProgressStatus string

const (
	ProgressNotStarted ProgressStatus = "not_started"
	ProgressInProgress ProgressStatus = "in_progress"
	ProgressCompleted  ProgressStatus = "completed"
	ProgressStalled    ProgressStatus = "stalled"
)

// Location is where a proposal's works take place. Rural locations carry a
// block and panchayat; urban ones a local body and ward.
type Location struct {
	Area             reference.Area `json:"area_type" validate:"omitempty,oneof=rural urban"`
	StateCode        string         `json:"state_code" validate:"required"`
	DistrictID       string         `json:"district_id" validate:"required"`
	DistrictCode     string         `json:"district_code" validate:"required"`
	ConstituencyCode string         `json:"constituency_code" validate:"required"`
	BlockCode        string         `json:"block_code"`
	PanchayatCode    string         `json:"panchayat_code"`
	VillageCode      string         `json:"village_code"`
	LocalBodyType    string         `json:"local_body_type"`
	LocalBodyCode    string         `json:"local_body_code"`
	WardCode         string         `json:"ward_code"`
}

// Parts returns the codes a reference number is built from.
func (l Location) Parts() reference.Parts {
	return reference.Parts{
		Area:             l.Area,
		StateCode:        l.StateCode,
		DistrictCode:     l.DistrictCode,
		ConstituencyCode: l.ConstituencyCode,
		BlockCode:        l.BlockCode,
		PanchayatCode:    l.PanchayatCode,
		LocalBodyType:    l.LocalBodyType,
		LocalBodyCode:    l.LocalBodyCode,
	}
}

// Proposal is a funding request for works at one location.
type Proposal struct {
	ID                    uuid.UUID
	Sector                string
	Department            string
	RecommenderID         string
	RecommenderType       string
	Location              Location
	Amount                decimal.Decimal
	PermissibleWorks      []string
	DLCApproved           bool
	NodalMinisterApproved bool
	ReferenceNo           string
	ManualReferenceNo     string
	FiscalYear            fiscal.Year
	ActionType            ActionType
	AgencyID              string
	CreatedBy             string
	UpdatedBy             string
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// Project mirrors a proposal one to one.
type Project struct {
	ID                    uuid.UUID
	ProposalID            uuid.UUID
	ReferenceNo           string
	Sector                string
	Department            string
	Location              Location
	Amount                decimal.Decimal
	PermissibleWorks      []string
	DLCApproved           bool
	NodalMinisterApproved bool
	FiscalYear            fiscal.Year
	Status                ProjectStatus
	CreatedBy             string
	UpdatedBy             string
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// Progress tracks execution and fund tranches of a project.
type Progress struct {
	ID                uuid.UUID
	ProjectID         uuid.UUID
	ProposalID        uuid.UUID
	Status            ProgressStatus
	Percent           int
	EstimatedAmount   decimal.Decimal
	SanctionedAmount  decimal.Decimal
	TransferredAmount decimal.Decimal
	RemainingAmount   decimal.Decimal
	AgencyID          string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Result is the set of documents a proposal write produces.
type Result struct {
	Proposal *Proposal
	Project  *Project
	Progress *Progress
}
