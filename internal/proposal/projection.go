package proposal

import (
	"slices"

	"github.com/shopspring/decimal"
)

// ProjectFromProposal mirrors p onto a project. prev is the stored project on
// update and nil on create; the fields the project owns (identity, status,
// creation audit) are carried over from it.
func ProjectFromProposal(p *Proposal, prev *Project) *Project {
	proj := &Project{
		Status:    ProjectStatusProposed,
		CreatedBy: p.CreatedBy,
	}

	if prev != nil {
		proj.ID = prev.ID
		proj.Status = prev.Status
		proj.CreatedBy = prev.CreatedBy
		proj.CreatedAt = prev.CreatedAt
		proj.UpdatedAt = prev.UpdatedAt
	}

	proj.ProposalID = p.ID
	proj.ReferenceNo = p.ReferenceNo
	proj.Sector = p.Sector
	proj.Department = p.Department
	proj.Location = p.Location
	proj.Amount = p.Amount
	proj.PermissibleWorks = slices.Clone(p.PermissibleWorks)
	proj.DLCApproved = p.DLCApproved
	proj.NodalMinisterApproved = p.NodalMinisterApproved
	proj.FiscalYear = p.FiscalYear
	proj.UpdatedBy = p.UpdatedBy

	return proj
}

// ProgressFromProposal derives the fund fields of a project's progress from
// p. On create (prev nil) the whole amount is remaining and the agency comes
// from p. On update the execution state and agency are kept from prev and the
// funds already transferred are subtracted.
func ProgressFromProposal(p *Proposal, proj *Project, prev *Progress) *Progress {
	prog := &Progress{
		Status:            ProgressNotStarted,
		TransferredAmount: decimal.Zero,
		AgencyID:          p.AgencyID,
	}

	if prev != nil {
		prog.ID = prev.ID
		prog.Status = prev.Status
		prog.Percent = prev.Percent
		prog.TransferredAmount = prev.TransferredAmount
		prog.AgencyID = prev.AgencyID
		prog.CreatedAt = prev.CreatedAt
		prog.UpdatedAt = prev.UpdatedAt
	}

	prog.ProjectID = proj.ID
	prog.ProposalID = p.ID
	prog.EstimatedAmount = p.Amount
	prog.SanctionedAmount = p.Amount
	prog.RemainingAmount = p.Amount.Sub(prog.TransferredAmount)

	return prog
}
