package main

import (
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/schemeportal/internal/proposal"
)

var (
	proposalFile string

	proposalCmd = &cobra.Command{
		Use:   "proposal",
		Short: "Create and amend proposals",
	}

	proposalCreateCmd = &cobra.Command{
		Use:     "create",
		Short:   "Create a proposal with its project and progress records",
		PreRunE: connect,
		RunE:    runProposalCreate,
	}

	proposalUpdateCmd = &cobra.Command{
		Use:     "update ID",
		Short:   "Patch a proposal and resync its project",
		Args:    cobra.ExactArgs(1),
		PreRunE: connect,
		RunE:    runProposalUpdate,
	}
)

func init() {
	for _, cmd := range []*cobra.Command{proposalCreateCmd, proposalUpdateCmd} {
		cmd.Flags().StringVarP(&proposalFile, "file", "f", "-", "JSON payload, or - for stdin")
	}

	proposalCmd.AddCommand(proposalCreateCmd, proposalUpdateCmd)
}

func runProposalCreate(cmd *cobra.Command, _ []string) error {
	var params proposal.CreateParams
	if err := readJSON(proposalFile, &params); err != nil {
		return err
	}

	res, err := current.services.Proposals.Create(cmd.Context(), current.actor, params)
	if err != nil {
		return err
	}

	printFields(cmd.OutOrStdout(), "proposal created",
		"id", res.Proposal.ID.String(),
		"reference no", res.Proposal.ReferenceNo,
		"fiscal year", res.Proposal.FiscalYear.Short(),
		"amount", res.Proposal.Amount.StringFixed(2),
		"project", res.Project.ID.String(),
		"progress", string(res.Progress.Status),
	)

	return nil
}

func runProposalUpdate(cmd *cobra.Command, args []string) error {
	id, err := uuid.Parse(args[0])
	if err != nil {
		return err
	}

	var params proposal.UpdateParams
	if err := readJSON(proposalFile, &params); err != nil {
		return err
	}

	p, err := current.services.Proposals.Update(cmd.Context(), current.actor, id, params)
	if err != nil {
		return err
	}

	printFields(cmd.OutOrStdout(), "proposal updated",
		"id", p.ID.String(),
		"reference no", p.ReferenceNo,
		"sector", p.Sector,
		"amount", p.Amount.StringFixed(2),
	)

	return nil
}
