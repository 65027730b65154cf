package proposal_test

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/schemeportal/internal/apperr"
	"github.com/MrJamesThe3rd/schemeportal/internal/proposal"
	"github.com/MrJamesThe3rd/schemeportal/internal/reference"
	"github.com/MrJamesThe3rd/schemeportal/internal/sequence"
)

var errTxDone = errors.New("transaction already committed or rolled back")

type memState struct {
	proposals map[uuid.UUID]proposal.Proposal
	projects  map[uuid.UUID]proposal.Project  // keyed by proposal id
	progress  map[uuid.UUID]proposal.Progress // keyed by project id
	counters  map[sequence.Scope]int64
	order     []uuid.UUID
}

func (s memState) clone() memState {
	return memState{
		proposals: maps.Clone(s.proposals),
		projects:  maps.Clone(s.projects),
		progress:  maps.Clone(s.progress),
		counters:  maps.Clone(s.counters),
		order:     slices.Clone(s.order),
	}
}

// memRepo is an in-memory proposal store. A transaction works on a copy of
// the committed state and swaps it in on commit.
type memRepo struct {
	mu        sync.Mutex
	state     memState
	failOn    map[string]error
	failTimes map[string]int
	inserted  []uuid.UUID
	begins    int
	commits   int
	rollbacks int
}

func newMemRepo() *memRepo {
	return &memRepo{
		state: memState{
			proposals: make(map[uuid.UUID]proposal.Proposal),
			projects:  make(map[uuid.UUID]proposal.Project),
			progress:  make(map[uuid.UUID]proposal.Progress),
			counters:  make(map[sequence.Scope]int64),
		},
		failOn:    make(map[string]error),
		failTimes: make(map[string]int),
	}
}

var _ proposal.Repository = (*memRepo)(nil)

func (r *memRepo) Begin(context.Context) (proposal.Tx, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.begins++

	if err := r.failOn["Begin"]; err != nil {
		return nil, err
	}

	return &memTx{repo: r, state: r.state.clone()}, nil
}

func (r *memRepo) GetProposal(_ context.Context, id uuid.UUID) (*proposal.Proposal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.state.proposals[id]
	if !ok {
		return nil, apperr.NotFound("proposal", id)
	}

	return &p, nil
}

func (r *memRepo) GetProject(_ context.Context, proposalID uuid.UUID) (*proposal.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.state.projects[proposalID]
	if !ok {
		return nil, apperr.NotFound("project for proposal", proposalID)
	}

	return &p, nil
}

func (r *memRepo) GetProgress(_ context.Context, projectID uuid.UUID) (*proposal.Progress, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.state.progress[projectID]
	if !ok {
		return nil, apperr.NotFound("progress for project", projectID)
	}

	return &p, nil
}

func (r *memRepo) ListProposals(_ context.Context, filter proposal.ListFilter) ([]*proposal.Proposal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*proposal.Proposal

	for _, id := range r.state.order {
		p := r.state.proposals[id]
		if filter.StateCode != "" && p.Location.StateCode != filter.StateCode {
			continue
		}

		out = append(out, &p)
	}

	return out, nil
}

// setTransferred records funds released to a project's agency.
func (r *memRepo) setTransferred(projectID uuid.UUID, amount string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	prog := r.state.progress[projectID]
	prog.TransferredAmount = mustDecimal(amount)
	prog.RemainingAmount = prog.SanctionedAmount.Sub(prog.TransferredAmount)
	r.state.progress[projectID] = prog
}

// setAgency reassigns the agency executing a project.
func (r *memRepo) setAgency(projectID uuid.UUID, agencyID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	prog := r.state.progress[projectID]
	prog.AgencyID = agencyID
	r.state.progress[projectID] = prog
}

type memTx struct {
	repo  *memRepo
	state memState
	done  bool
}

func (t *memTx) fail(op string) error {
	t.repo.mu.Lock()
	defer t.repo.mu.Unlock()

	err := t.repo.failOn[op]
	if err == nil {
		return nil
	}

	// failTimes limits how often op fails; absent means always.
	if n, ok := t.repo.failTimes[op]; ok {
		if n == 0 {
			return nil
		}

		t.repo.failTimes[op] = n - 1
	}

	return err
}

func (t *memTx) Commit() error {
	if t.done {
		return errTxDone
	}

	if err := t.fail("Commit"); err != nil {
		return err
	}

	t.repo.mu.Lock()
	defer t.repo.mu.Unlock()

	t.repo.state = t.state
	t.repo.commits++
	t.done = true

	return nil
}

func (t *memTx) Rollback() error {
	if t.done {
		return errTxDone
	}

	t.repo.mu.Lock()
	defer t.repo.mu.Unlock()

	t.repo.rollbacks++
	t.done = true

	return nil
}

func (t *memTx) Sequences() sequence.Store { return memSequences{tx: t} }

func (t *memTx) GetProposalForUpdate(_ context.Context, id uuid.UUID) (*proposal.Proposal, error) {
	p, ok := t.state.proposals[id]
	if !ok {
		return nil, apperr.NotFound("proposal", id)
	}

	return &p, nil
}

func (t *memTx) GetProject(_ context.Context, proposalID uuid.UUID) (*proposal.Project, error) {
	p, ok := t.state.projects[proposalID]
	if !ok {
		return nil, apperr.NotFound("project for proposal", proposalID)
	}

	return &p, nil
}

func (t *memTx) GetProgress(_ context.Context, projectID uuid.UUID) (*proposal.Progress, error) {
	p, ok := t.state.progress[projectID]
	if !ok {
		return nil, apperr.NotFound("progress for project", projectID)
	}

	return &p, nil
}

func (t *memTx) InsertProposal(_ context.Context, p *proposal.Proposal) error {
	if err := t.fail("InsertProposal"); err != nil {
		return err
	}

	for _, existing := range t.state.proposals {
		if existing.ReferenceNo == p.ReferenceNo {
			return fmt.Errorf("%w on master_proposal_reference_no_key", apperr.ErrDuplicateKey)
		}
	}

	p.ID = uuid.New()
	t.state.proposals[p.ID] = *p
	t.state.order = append(t.state.order, p.ID)

	t.repo.mu.Lock()
	t.repo.inserted = append(t.repo.inserted, p.ID)
	t.repo.mu.Unlock()

	return nil
}

func (t *memTx) InsertProject(_ context.Context, p *proposal.Project) error {
	if err := t.fail("InsertProject"); err != nil {
		return err
	}

	p.ID = uuid.New()
	t.state.projects[p.ProposalID] = *p

	return nil
}

func (t *memTx) InsertProgress(_ context.Context, p *proposal.Progress) error {
	if err := t.fail("InsertProgress"); err != nil {
		return err
	}

	p.ID = uuid.New()
	t.state.progress[p.ProjectID] = *p

	return nil
}

func (t *memTx) UpdateProposal(_ context.Context, p *proposal.Proposal) error {
	if err := t.fail("UpdateProposal"); err != nil {
		return err
	}

	t.state.proposals[p.ID] = *p

	return nil
}

func (t *memTx) UpdateProject(_ context.Context, p *proposal.Project) error {
	if err := t.fail("UpdateProject"); err != nil {
		return err
	}

	t.state.projects[p.ProposalID] = *p

	return nil
}

func (t *memTx) UpdateProgress(_ context.Context, p *proposal.Progress) error {
	if err := t.fail("UpdateProgress"); err != nil {
		return err
	}

	t.state.progress[p.ProjectID] = *p

	return nil
}

// memSequences reads proposal references and counters from a transaction.
type memSequences struct {
	tx *memTx
}

// LastCode returns the reference with the highest running number in scope.
func (m memSequences) LastCode(_ context.Context, scope sequence.Scope) (string, error) {
	parts := scope.Parts()

	var (
		last string
		high int64
	)

	for _, id := range m.tx.state.order {
		p := m.tx.state.proposals[id]
		if p.Location.StateCode != parts[0] || p.FiscalYear.Short() != parts[1] {
			continue
		}

		if n, ok := reference.RunningNumber.Parse(p.ReferenceNo); ok && n > high {
			last, high = p.ReferenceNo, n
		}
	}

	return last, nil
}

func (m memSequences) Bump(_ context.Context, scope sequence.Scope, floor int64) (int64, error) {
	next := max(m.tx.state.counters[scope], floor) + 1
	m.tx.state.counters[scope] = next

	return next, nil
}
