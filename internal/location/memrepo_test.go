package location_test

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/schemeportal/internal/apperr"
	"github.com/MrJamesThe3rd/schemeportal/internal/location"
	"github.com/MrJamesThe3rd/schemeportal/internal/sequence"
)

type memState struct {
	panchayats []location.Panchayat
	villages   []location.Village
}

func (s memState) clone() memState {
	return memState{panchayats: slices.Clone(s.panchayats), villages: slices.Clone(s.villages)}
}

// memRepo keeps committed rows in memory. Transactions copy the state and
// swap it back on commit, so a failed import leaves nothing behind.
type memRepo struct {
	mu        sync.Mutex
	state     memState
	failOn    map[string]error
	begins    int
	commits   int
	rollbacks int
}

func newMemRepo() *memRepo {
	return &memRepo{failOn: make(map[string]error)}
}

var _ location.Repository = (*memRepo)(nil)

func (r *memRepo) Begin(context.Context) (location.Tx, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.begins++

	return &memTx{repo: r, state: r.state.clone()}, nil
}

func (r *memRepo) ListPanchayats(_ context.Context, filter location.PanchayatFilter) ([]*location.Panchayat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*location.Panchayat

	for _, p := range r.state.panchayats {
		if filter.DistrictCode != "" && p.DistrictCode != filter.DistrictCode {
			continue
		}

		if filter.TempOnly && !p.IsTemp {
			continue
		}

		out = append(out, &p)
	}

	return out, nil
}

func (r *memRepo) ListVillages(_ context.Context, panchayatID uuid.UUID) ([]*location.Village, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*location.Village

	for _, v := range r.state.villages {
		if v.PanchayatID == panchayatID {
			out = append(out, &v)
		}
	}

	return out, nil
}

func (r *memRepo) seedPanchayat(p location.Panchayat) location.Panchayat {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}

	r.state.panchayats = append(r.state.panchayats, p)

	return p
}

type memTx struct {
	repo  *memRepo
	state memState
	done  bool
}

func (t *memTx) Sequences() sequence.Store { return memSequences{tx: t} }

func (t *memTx) GetPanchayat(_ context.Context, id uuid.UUID) (*location.Panchayat, error) {
	for _, p := range t.state.panchayats {
		if p.ID == id {
			return &p, nil
		}
	}

	return nil, apperr.NotFound("panchayat", id)
}

func (t *memTx) PanchayatByCode(_ context.Context, code string) (*location.Panchayat, error) {
	for _, p := range t.state.panchayats {
		if p.Code == code {
			return &p, nil
		}
	}

	return nil, apperr.NotFound("panchayat", code)
}

func (t *memTx) InsertPanchayat(_ context.Context, p *location.Panchayat) error {
	if err := t.repo.failOn["InsertPanchayat:"+p.Name]; err != nil {
		return err
	}

	for _, existing := range t.state.panchayats {
		if existing.Code == p.Code {
			return fmt.Errorf("panchayat code %s: %w", p.Code, apperr.ErrDuplicateKey)
		}
	}

	p.ID = uuid.New()
	t.state.panchayats = append(t.state.panchayats, *p)

	return nil
}

func (t *memTx) InsertVillage(_ context.Context, v *location.Village) error {
	for _, existing := range t.state.villages {
		if existing.Code == v.Code {
			return fmt.Errorf("village code %s: %w", v.Code, apperr.ErrDuplicateKey)
		}
	}

	v.ID = uuid.New()
	t.state.villages = append(t.state.villages, *v)

	return nil
}

func (t *memTx) Commit() error {
	t.repo.mu.Lock()
	defer t.repo.mu.Unlock()

	if t.done {
		return errors.New("transaction already closed")
	}

	t.done = true
	t.repo.state = t.state
	t.repo.commits++

	return nil
}

func (t *memTx) Rollback() error {
	t.repo.mu.Lock()
	defer t.repo.mu.Unlock()

	if t.done {
		return nil
	}

	t.done = true
	t.repo.rollbacks++

	return nil
}

// memSequences reads temp codes from the transaction's view of the rows.
type memSequences struct {
	tx *memTx
}

func (s memSequences) LastCode(_ context.Context, scope sequence.Scope) (string, error) {
	var codes []string

	switch scope.Kind {
	case sequence.KindPanchayatTemp:
		for _, p := range s.tx.state.panchayats {
			codes = append(codes, p.Code)
		}
	case sequence.KindVillageTemp:
		for _, v := range s.tx.state.villages {
			codes = append(codes, v.Code)
		}
	default:
		return "", fmt.Errorf("unexpected kind %s", scope.Kind)
	}

	var (
		last    string
		lastNum int64
	)

	for _, c := range codes {
		if n, ok := sequence.TempCode().Parse(c); ok && n > lastNum {
			last, lastNum = c, n
		}
	}

	return last, nil
}

func (memSequences) Bump(context.Context, sequence.Scope, int64) (int64, error) {
	return 0, errors.New("temp codes do not use counters")
}
