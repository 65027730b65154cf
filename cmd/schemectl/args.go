package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/schemeportal/internal/fiscal"
)

// amount parses a money flag. An empty value is zero.
func amount(name, raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, nil
	}

	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("--%s: %w", name, err)
	}

	return d, nil
}

// optionalYear parses a fiscal year flag. An empty value is the zero year.
func optionalYear(raw string) (fiscal.Year, error) {
	if raw == "" {
		return fiscal.Year{}, nil
	}

	return fiscal.Parse(raw)
}

// readJSON decodes the file at path, or stdin when path is "-".
func readJSON(path string, v any) error {
	f := os.Stdin

	if path != "-" {
		var err error

		f, err = os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
	}

	dec := json.NewDecoder(f)
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}

	return nil
}
