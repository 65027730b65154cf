package main

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/schemeportal/internal/budget"
	"github.com/MrJamesThe3rd/schemeportal/internal/fiscal"
)

var (
	budgetDistrictID     string
	budgetDistrictCode   string
	budgetDistrictName   string
	budgetFiscalYear     string
	budgetAllocated      string
	budgetSanctioned     string
	budgetReleased       string
	budgetIncludeDeleted bool

	budgetCmd = &cobra.Command{
		Use:   "budget",
		Short: "Manage district budget heads",
	}

	budgetCreateCmd = &cobra.Command{
		Use:     "create",
		Short:   "Record a sanction against a district allocation",
		PreRunE: connect,
		RunE:    runBudgetCreate,
	}

	budgetUpdateCmd = &cobra.Command{
		Use:     "update ID",
		Short:   "Change the amounts of a budget head",
		Args:    cobra.ExactArgs(1),
		PreRunE: connect,
		RunE:    runBudgetUpdate,
	}

	budgetListCmd = &cobra.Command{
		Use:     "list",
		Short:   "List budget heads",
		PreRunE: connect,
		RunE:    runBudgetList,
	}
)

func init() {
	for _, cmd := range []*cobra.Command{budgetCreateCmd, budgetListCmd} {
		cmd.Flags().StringVar(&budgetDistrictID, "district-id", "", "district id")
		cmd.Flags().StringVar(&budgetFiscalYear, "fy", "", "fiscal year, e.g. 25-26 (defaults to the current year on create)")
	}

	budgetCreateCmd.Flags().StringVar(&budgetDistrictCode, "district-code", "", "district code used in the sanction number")
	budgetCreateCmd.Flags().StringVar(&budgetDistrictName, "district-name", "", "district name")
	budgetListCmd.Flags().BoolVar(&budgetIncludeDeleted, "include-deleted", false, "include deleted heads")

	for _, cmd := range []*cobra.Command{budgetCreateCmd, budgetUpdateCmd} {
		cmd.Flags().StringVar(&budgetAllocated, "allocated", "", "allocated amount")
		cmd.Flags().StringVar(&budgetSanctioned, "sanctioned", "", "sanctioned amount")
		cmd.Flags().StringVar(&budgetReleased, "released", "", "released amount")
	}

	budgetUpdateCmd.Flags().StringVar(&budgetDistrictName, "district-name", "", "district name")

	budgetCmd.AddCommand(budgetCreateCmd, budgetUpdateCmd, budgetListCmd)
}

func runBudgetCreate(cmd *cobra.Command, _ []string) error {
	params := budget.CreateParams{
		DistrictID:   budgetDistrictID,
		DistrictCode: budgetDistrictCode,
		DistrictName: budgetDistrictName,
	}

	var err error

	if params.FiscalYear, err = optionalYear(budgetFiscalYear); err != nil {
		return err
	}

	if params.AllocatedAmount, err = amount("allocated", budgetAllocated); err != nil {
		return err
	}

	if params.SanctionedAmount, err = amount("sanctioned", budgetSanctioned); err != nil {
		return err
	}

	if params.ReleasedAmount, err = amount("released", budgetReleased); err != nil {
		return err
	}

	head, err := current.services.Budget.Create(cmd.Context(), current.actor, params)
	if err != nil {
		return err
	}

	printHead(cmd, "budget head created", head)

	return nil
}

func runBudgetUpdate(cmd *cobra.Command, args []string) error {
	id, err := uuid.Parse(args[0])
	if err != nil {
		return err
	}

	var params budget.UpdateParams

	flags := cmd.Flags()

	if flags.Changed("district-name") {
		params.DistrictName = &budgetDistrictName
	}

	for flag, dst := range map[string]**decimal.Decimal{
		"allocated":  &params.AllocatedAmount,
		"sanctioned": &params.SanctionedAmount,
		"released":   &params.ReleasedAmount,
	} {
		if !flags.Changed(flag) {
			continue
		}

		raw, _ := flags.GetString(flag)

		d, err := amount(flag, raw)
		if err != nil {
			return err
		}

		*dst = &d
	}

	head, err := current.services.Budget.Update(cmd.Context(), current.actor, id, params)
	if err != nil {
		return err
	}

	printHead(cmd, "budget head updated", head)

	return nil
}

func runBudgetList(cmd *cobra.Command, _ []string) error {
	filter := budget.ListFilter{DistrictID: budgetDistrictID, IncludeDeleted: budgetIncludeDeleted}

	if budgetFiscalYear != "" {
		fy, err := fiscal.Parse(budgetFiscalYear)
		if err != nil {
			return err
		}

		filter.FiscalYear = &fy
	}

	heads, err := current.services.Budget.List(cmd.Context(), filter)
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(heads))
	for _, h := range heads {
		rows = append(rows, []string{
			h.SanctionNo, h.DistrictCode, h.FiscalYear.Short(),
			h.AllocatedAmount.StringFixed(2), h.SanctionedAmount.StringFixed(2), h.ReleasedAmount.StringFixed(2),
			deletedMark(h.IsDeleted),
		})
	}

	printTable(cmd.OutOrStdout(), []string{"Sanction No", "District", "FY", "Allocated", "Sanctioned", "Released", ""}, rows)

	return nil
}

func printHead(cmd *cobra.Command, title string, h *budget.Head) {
	printFields(cmd.OutOrStdout(), title,
		"id", h.ID.String(),
		"sanction no", h.SanctionNo,
		"district", h.DistrictCode,
		"fiscal year", h.FiscalYear.Short(),
		"allocated", h.AllocatedAmount.StringFixed(2),
		"sanctioned", h.SanctionedAmount.StringFixed(2),
		"released", h.ReleasedAmount.StringFixed(2),
	)
}

func deletedMark(deleted bool) string {
	if deleted {
		return faintStyle.Render("deleted")
	}

	return ""
}
