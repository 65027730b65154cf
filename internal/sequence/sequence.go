// Package sequence mints monotonic codes inside a namespace (temp location
// codes, sanction numbers, proposal running numbers) without a global lock.
//
// Allocators run inside the caller's transaction: they read through a Store
// bound to that transaction, and the caller persists the resulting code. A
// unique index on the code column remains the last line of defense.
package sequence

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
)

// Kind names a family of codes.
type Kind string

const (
	KindPanchayatTemp     Kind = "panchayat_temp"
	KindVillageTemp       Kind = "village_temp"
	KindBudgetSanction    Kind = "budget_sanction"
	KindProposalReference Kind = "proposal_reference"
)

// Scope is one namespace whose codes must be unique and increasing.
type Scope struct {
	Kind Kind
	Key  string
}

// NewScope joins the parts of a scope key with "/".
func NewScope(kind Kind, parts ...string) Scope {
	return Scope{Kind: kind, Key: strings.Join(parts, "/")}
}

// Parts splits the scope key back into the values it was built from.
func (s Scope) Parts() []string {
	if s.Key == "" {
		return nil
	}

	return strings.Split(s.Key, "/")
}

func (s Scope) String() string {
	if s.Key == "" {
		return string(s.Kind)
	}

	return string(s.Kind) + ":" + s.Key
}

// Pattern renders and parses codes of the form prefix + zero-padded number.
type Pattern struct {
	Prefix string
	Width  int
	expr   *regexp.Regexp
}

// NewPattern matches codes that are exactly prefix followed by digits.
func NewPattern(prefix string, width int) Pattern {
	return Pattern{
		Prefix: prefix,
		Width:  width,
		expr:   regexp.MustCompile(`^` + regexp.QuoteMeta(prefix) + `(\d+)$`),
	}
}

// TrailingPattern matches the last slash-separated numeric segment of a
// hierarchical reference, whatever precedes it.
func TrailingPattern(width int) Pattern {
	return Pattern{
		Width: width,
		expr:  regexp.MustCompile(`(?:^|/)(\d+)$`),
	}
}

// TempCode is the namespace-wide pattern for unofficial location codes.
func TempCode() Pattern { return NewPattern("TEMP-", 6) }

// Format renders n with the pattern's prefix and padding.
func (p Pattern) Format(n int64) string {
	return fmt.Sprintf("%s%0*d", p.Prefix, p.Width, n)
}

// Parse extracts the numeric suffix of code. It reports false when code does
// not follow the pattern.
func (p Pattern) Parse(code string) (int64, bool) {
	if p.expr == nil || code == "" {
		return 0, false
	}

	m := p.expr.FindStringSubmatch(code)
	if m == nil {
		return 0, false
	}

	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, false
	}

	return n, true
}

// Next returns the number following last. A missing or malformed last code
// restarts numbering at 1.
func (p Pattern) Next(last string) int64 {
	n, ok := p.Parse(last)
	if !ok {
		return 1
	}

	return n + 1
}

// Store is the transaction-bound view allocators read and write through.
type Store interface {
	// LastCode returns the most recent stored code in scope, or "" if none.
	LastCode(ctx context.Context, scope Scope) (string, error)
	// Bump atomically advances the scope's counter to max(current, floor)+1
	// and returns the new value.
	Bump(ctx context.Context, scope Scope, floor int64) (int64, error)
}

// Allocator returns the next running number in a scope.
type Allocator interface {
	Next(ctx context.Context, st Store, scope Scope, p Pattern) (int64, error)
}

// NextCode allocates the next number in scope and renders it with p.
func NextCode(ctx context.Context, a Allocator, st Store, scope Scope, p Pattern) (string, error) {
	n, err := a.Next(ctx, st, scope, p)
	if err != nil {
		return "", err
	}

	return p.Format(n), nil
}

// ScanAllocator reads the last stored code and increments it. Two callers in
// the same scope can compute the same number; the unique index turns that
// into a duplicate-key error the caller retries.
type ScanAllocator struct{}

func (ScanAllocator) Next(ctx context.Context, st Store, scope Scope, p Pattern) (int64, error) {
	last, err := st.LastCode(ctx, scope)
	if err != nil {
		return 0, fmt.Errorf("reading last code in %s: %w", scope, err)
	}

	n := p.Next(last)
	allocationsTotal.WithLabelValues(string(scope.Kind), "scan").Inc()

	return n, nil
}

// CounterAllocator advances a dedicated per-scope counter row. The counter
// is seeded from the last stored code so existing numbering continues.
type CounterAllocator struct{}

func (CounterAllocator) Next(ctx context.Context, st Store, scope Scope, p Pattern) (int64, error) {
	last, err := st.LastCode(ctx, scope)
	if err != nil {
		return 0, fmt.Errorf("reading last code in %s: %w", scope, err)
	}

	floor, _ := p.Parse(last)

	n, err := st.Bump(ctx, scope, floor)
	if err != nil {
		return 0, fmt.Errorf("bumping counter for %s: %w", scope, err)
	}

	allocationsTotal.WithLabelValues(string(scope.Kind), "counter").Inc()

	return n, nil
}

// MemoryAllocator keeps one counter per scope in memory. It ignores the
// store and is intended for tests and single-process tools.
type MemoryAllocator struct {
	mu       sync.Mutex
	counters map[Scope]int64
}

func NewMemoryAllocator() *MemoryAllocator {
	return &MemoryAllocator{counters: make(map[Scope]int64)}
}

// Seed sets the last issued number for scope.
func (m *MemoryAllocator) Seed(scope Scope, last int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.counters[scope] = last
}

func (m *MemoryAllocator) Next(_ context.Context, _ Store, scope Scope, _ Pattern) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.counters[scope]++

	return m.counters[scope], nil
}
