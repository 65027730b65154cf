package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/schemeportal/internal/apperr"
	"github.com/MrJamesThe3rd/schemeportal/internal/budget"
	"github.com/MrJamesThe3rd/schemeportal/internal/fiscal"
	"github.com/MrJamesThe3rd/schemeportal/internal/location"
	"github.com/MrJamesThe3rd/schemeportal/internal/reference"
	"github.com/MrJamesThe3rd/schemeportal/internal/sequence"
	seqstore "github.com/MrJamesThe3rd/schemeportal/internal/sequence/store"
)

// previewArgs selects the namespace whose next code is shown.
type previewArgs struct {
	Kind         string
	DistrictID   string
	DistrictCode string
	StateCode    string
	FiscalYear   string
}

var (
	preview previewArgs

	sequenceCmd = &cobra.Command{
		Use:   "sequence",
		Short: "Inspect running-number namespaces",
	}

	sequenceNextCmd = &cobra.Command{
		Use:   "next",
		Short: "Show the code the next write in a namespace would receive",
		Long: "Show the code the next write in a namespace would receive.\n" +
			"Nothing is reserved: a concurrent write may take the number first.",
		PreRunE: connect,
		RunE:    runSequenceNext,
	}
)

func init() {
	flags := sequenceNextCmd.Flags()
	flags.StringVar(&preview.Kind, "kind", "", "panchayat_temp, village_temp, budget_sanction or proposal_reference")
	flags.StringVar(&preview.DistrictID, "district-id", "", "district id (budget_sanction)")
	flags.StringVar(&preview.DistrictCode, "district-code", "", "district code (budget_sanction)")
	flags.StringVar(&preview.StateCode, "state", "", "state code (proposal_reference)")
	flags.StringVar(&preview.FiscalYear, "fy", "", "fiscal year (budget_sanction, proposal_reference)")
	_ = sequenceNextCmd.MarkFlagRequired("kind")

	sequenceCmd.AddCommand(sequenceNextCmd)
}

// previewTarget resolves the scope and pattern for a namespace.
func previewTarget(args previewArgs) (sequence.Scope, sequence.Pattern, error) {
	kind := sequence.Kind(args.Kind)

	switch kind {
	case sequence.KindPanchayatTemp, sequence.KindVillageTemp:
		return location.TempScope(kind), sequence.TempCode(), nil
	case sequence.KindBudgetSanction:
		if args.DistrictID == "" || args.DistrictCode == "" {
			return sequence.Scope{}, sequence.Pattern{}, apperr.Invalid("district", "--district-id and --district-code are required")
		}

		fy, err := fiscal.Parse(args.FiscalYear)
		if err != nil {
			return sequence.Scope{}, sequence.Pattern{}, apperr.Invalid("fy", "%v", err)
		}

		scope := budget.Scope{DistrictID: args.DistrictID, FiscalYear: fy}

		return scope.Sequence(), budget.SanctionPattern(args.DistrictCode, fy), nil
	case sequence.KindProposalReference:
		if args.StateCode == "" {
			return sequence.Scope{}, sequence.Pattern{}, apperr.Invalid("state", "--state is required")
		}

		fy, err := fiscal.Parse(args.FiscalYear)
		if err != nil {
			return sequence.Scope{}, sequence.Pattern{}, apperr.Invalid("fy", "%v", err)
		}

		return sequence.NewScope(kind, args.StateCode, fy.Short()), reference.RunningNumber, nil
	default:
		return sequence.Scope{}, sequence.Pattern{}, apperr.Invalid("kind", "unknown sequence kind %q", args.Kind)
	}
}

func runSequenceNext(cmd *cobra.Command, _ []string) error {
	scope, pattern, err := previewTarget(preview)
	if err != nil {
		return err
	}

	st := seqstore.New(current.db)

	last, err := st.LastCode(cmd.Context(), scope)
	if err != nil {
		return err
	}

	next, err := sequence.NextCode(cmd.Context(), sequence.ScanAllocator{}, st, scope, pattern)
	if err != nil {
		return err
	}

	if last == "" {
		last = faintStyle.Render("none")
	}

	printFields(cmd.OutOrStdout(), fmt.Sprintf("sequence %s", scope),
		"last", last,
		"next", next,
	)

	return nil
}
