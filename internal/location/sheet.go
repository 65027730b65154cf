package location

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/MrJamesThe3rd/schemeportal/internal/apperr"
	"github.com/MrJamesThe3rd/schemeportal/internal/encoding"
)

// Layout is the kind of rows an uploaded sheet carries.
type Layout string

const (
	LayoutPanchayats Layout = "panchayats"
	LayoutVillages   Layout = "villages"
)

// Column keys a profile maps header labels onto.
const (
	colDistrictCode  = "district_code"
	colBlockCode     = "block_code"
	colPanchayatCode = "panchayat_code"
	colName          = "name"
	colCode          = "code"
)

// profile describes one accepted header layout. Labels are compared
// case-insensitively after trimming.
type profile struct {
	layout   Layout
	labels   map[string][]string
	required []string
}

// profiles are tried in order, so the village layout, whose header also
// names a panchayat, comes first.
var profiles = []profile{
	{
		layout: LayoutVillages,
		labels: map[string][]string{
			colPanchayatCode: {"panchayat code", "gp code", "gram panchayat code"},
			colName:          {"village name", "village"},
			colCode:          {"village code"},
		},
		required: []string{colPanchayatCode, colName},
	},
	{
		layout: LayoutPanchayats,
		labels: map[string][]string{
			colDistrictCode: {"district code"},
			colBlockCode:    {"block code"},
			colName:         {"panchayat name", "gram panchayat", "gp name"},
			colCode:         {"panchayat code", "gp code"},
		},
		required: []string{colDistrictCode, colBlockCode, colName},
	},
}

var delimiters = []rune{',', ';', '\t'}

// Row is one data line of a sheet. Line is 1-based in the decoded file.
type Row struct {
	Line          int
	DistrictCode  string
	BlockCode     string
	PanchayatCode string
	Name          string
	Code          string
}

type Sheet struct {
	Layout  Layout
	Charset string
	Rows    []Row
}

// ParseSheet decodes r, finds the header row of a known layout (report
// titles and blank lines above it are skipped) and returns the data rows
// beneath it.
func ParseSheet(r io.Reader) (*Sheet, error) {
	utf8r, charset, err := encoding.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("detecting encoding: %w", err)
	}

	raw, err := io.ReadAll(utf8r)
	if err != nil {
		return nil, fmt.Errorf("reading sheet: %w", err)
	}

	for _, comma := range delimiters {
		rows, err := readRecords(raw, comma)
		if err != nil {
			continue
		}

		p, cols, headerIdx, ok := detectProfile(rows)
		if !ok {
			continue
		}

		data, err := extractRows(p, cols, rows[headerIdx+1:])
		if err != nil {
			return nil, err
		}

		return &Sheet{Layout: p.layout, Charset: charset, Rows: data}, nil
	}

	return nil, apperr.Invalid("file", "no known header found: expected panchayat or village columns")
}

// record is one parsed CSV line with its 1-based position in the file.
type record struct {
	line   int
	fields []string
}

func readRecords(raw []byte, comma rune) ([]record, error) {
	reader := csv.NewReader(bytes.NewReader(raw))
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var out []record

	for {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return out, nil
		}

		if err != nil {
			return nil, err
		}

		line, _ := reader.FieldPos(0)
		out = append(out, record{line: line, fields: fields})
	}
}

// colIndex maps column keys to their position in the header row.
type colIndex map[string]int

func detectProfile(rows []record) (*profile, colIndex, int, bool) {
	for rowIdx, row := range rows {
		present := make(map[string]int, len(row.fields))

		for i, cell := range row.fields {
			if label := normalizeLabel(cell); label != "" {
				if _, dup := present[label]; !dup {
					present[label] = i
				}
			}
		}

		for i := range profiles {
			if cols, ok := profiles[i].match(present); ok {
				return &profiles[i], cols, rowIdx, true
			}
		}
	}

	return nil, nil, 0, false
}

func (p *profile) match(present map[string]int) (colIndex, bool) {
	cols := make(colIndex, len(p.labels))

	for key, labels := range p.labels {
		for _, label := range labels {
			if idx, ok := present[label]; ok {
				cols[key] = idx
				break
			}
		}
	}

	for _, key := range p.required {
		if _, ok := cols[key]; !ok {
			return nil, false
		}
	}

	return cols, true
}

// extractRows reads the data rows under the header. Blank lines are
// skipped; a row missing a required cell fails the whole sheet, listing
// every offending line.
func extractRows(p *profile, cols colIndex, rows []record) ([]Row, error) {
	var (
		out     []Row
		invalid apperr.ValidationError
	)

	for _, rec := range rows {
		if blank(rec.fields) {
			continue
		}

		line, fields := rec.line, rec.fields

		row := Row{
			Line:          line,
			DistrictCode:  cell(fields, cols, colDistrictCode),
			BlockCode:     cell(fields, cols, colBlockCode),
			PanchayatCode: cell(fields, cols, colPanchayatCode),
			Name:          cell(fields, cols, colName),
			Code:          cell(fields, cols, colCode),
		}

		for _, key := range p.required {
			if cell(fields, cols, key) == "" {
				invalid.Fields = append(invalid.Fields, apperr.FieldError{
					Field:   fmt.Sprintf("line %d", line),
					Message: "missing " + strings.ReplaceAll(key, "_", " "),
				})
			}
		}

		out = append(out, row)
	}

	if len(invalid.Fields) > 0 {
		return nil, &invalid
	}

	return out, nil
}

func normalizeLabel(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

func cell(fields []string, cols colIndex, key string) string {
	idx, ok := cols[key]
	if !ok || idx >= len(fields) {
		return ""
	}

	return strings.TrimSpace(fields[idx])
}

func blank(fields []string) bool {
	for _, c := range fields {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}

	return true
}
