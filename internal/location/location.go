// Package location writes the panchayat and village rows that district
// offices add before an official code exists. Such rows get a TEMP-NNNNNN
// code from the location namespace of their kind.
package location

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/schemeportal/internal/sequence"
)

type Panchayat struct {
	ID           uuid.UUID `json:"id"`
	DistrictCode string    `json:"district_code"`
	BlockCode    string    `json:"block_code"`
	Name         string    `json:"name"`
	Code         string    `json:"code"`
	IsTemp       bool      `json:"is_temp"`
	CreatedBy    string    `json:"created_by"`
	CreatedAt    time.Time `json:"created_at"`
}

type Village struct {
	ID          uuid.UUID `json:"id"`
	PanchayatID uuid.UUID `json:"panchayat_id"`
	Name        string    `json:"name"`
	Code        string    `json:"code"`
	IsTemp      bool      `json:"is_temp"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}

// TempScope is the namespace temp codes of kind are drawn from. Temp codes
// are unique per kind across the whole state.
func TempScope(kind sequence.Kind) sequence.Scope {
	return sequence.Scope{Kind: kind}
}

// ImportResult lists the rows created by one import.
type ImportResult struct {
	Layout     Layout       `json:"layout"`
	Charset    string       `json:"charset"`
	Panchayats []*Panchayat `json:"panchayats,omitempty"`
	Villages   []*Village   `json:"villages,omitempty"`
}

// Created is the number of rows written.
func (r *ImportResult) Created() int {
	return len(r.Panchayats) + len(r.Villages)
}
