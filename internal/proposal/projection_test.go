package proposal_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/MrJamesThe3rd/schemeportal/internal/proposal"
)

func storedProposal() *proposal.Proposal {
	return &proposal.Proposal{
		ID:               uuid.New(),
		Sector:           "Roads",
		Department:       "Public Works",
		Location:         ruralParams().Location,
		Amount:           mustDecimal("250000"),
		PermissibleWorks: []string{"cc road"},
		ReferenceNo:      "03/D1/B1/C1/PCH01/25-26/0001",
		AgencyID:         "agency-4",
		CreatedBy:        "u1",
		UpdatedBy:        "u2",
	}
}

func TestProjectFromProposal_Idempotent(t *testing.T) {
	p := storedProposal()

	prev := &proposal.Project{
		ID:        uuid.New(),
		Status:    proposal.ProjectStatusSanctioned,
		CreatedBy: "u1",
		CreatedAt: time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC),
	}

	once := proposal.ProjectFromProposal(p, prev)
	twice := proposal.ProjectFromProposal(p, once)

	assert.Equal(t, once, twice)
	assert.Equal(t, prev.ID, once.ID)
	assert.Equal(t, proposal.ProjectStatusSanctioned, once.Status)
	assert.Equal(t, "u2", once.UpdatedBy)
}

func TestProjectFromProposal_CopiesWorks(t *testing.T) {
	p := storedProposal()
	proj := proposal.ProjectFromProposal(p, nil)

	p.PermissibleWorks[0] = "changed"
	assert.Equal(t, []string{"cc road"}, proj.PermissibleWorks)
	assert.Equal(t, proposal.ProjectStatusProposed, proj.Status)
}

func TestProgressFromProposal(t *testing.T) {
	p := storedProposal()
	proj := proposal.ProjectFromProposal(p, nil)
	proj.ID = uuid.New()

	t.Run("create", func(t *testing.T) {
		prog := proposal.ProgressFromProposal(p, proj, nil)

		assert.Equal(t, proj.ID, prog.ProjectID)
		assert.Equal(t, p.ID, prog.ProposalID)
		assert.True(t, prog.EstimatedAmount.Equal(p.Amount))
		assert.True(t, prog.SanctionedAmount.Equal(p.Amount))
		assert.True(t, prog.RemainingAmount.Equal(p.Amount))
		assert.True(t, prog.TransferredAmount.IsZero())
		assert.Equal(t, "agency-4", prog.AgencyID)
	})

	t.Run("update keeps execution state", func(t *testing.T) {
		prev := &proposal.Progress{
			ID:                uuid.New(),
			Status:            proposal.ProgressInProgress,
			Percent:           40,
			TransferredAmount: mustDecimal("50000"),
			AgencyID:          "agency-2",
		}

		once := proposal.ProgressFromProposal(p, proj, prev)
		twice := proposal.ProgressFromProposal(p, proj, once)

		assert.Equal(t, once, twice)
		assert.Equal(t, proposal.ProgressInProgress, once.Status)
		assert.Equal(t, 40, once.Percent)
		assert.True(t, once.RemainingAmount.Equal(mustDecimal("200000")))
		assert.Equal(t, "agency-2", once.AgencyID, "agency reassigned on the progress record survives")
	})
}
