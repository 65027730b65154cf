package main

import (
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/schemeportal/internal/location"
)

var (
	locationCmd = &cobra.Command{
		Use:   "location",
		Short: "Manage panchayats and villages",
	}

	locationImportCmd = &cobra.Command{
		Use:   "import FILE",
		Short: "Import panchayats or villages from a CSV sheet",
		Long: "Import panchayats or villages from a CSV sheet.\n" +
			"The layout and character encoding are detected from the file. Rows\n" +
			"without an official code receive the next temporary code. The whole\n" +
			"file is written in one transaction.",
		Args:    cobra.ExactArgs(1),
		PreRunE: connect,
		RunE:    runLocationImport,
	}

	locationListCmd = &cobra.Command{
		Use:     "list",
		Short:   "List panchayats",
		PreRunE: connect,
		RunE:    runLocationList,
	}

	listFilter location.PanchayatFilter
)

func init() {
	flags := locationListCmd.Flags()
	flags.StringVar(&listFilter.DistrictCode, "district-code", "", "district code")
	flags.StringVar(&listFilter.BlockCode, "block-code", "", "block code")
	flags.BoolVar(&listFilter.TempOnly, "temp", false, "only panchayats with temporary codes")

	locationCmd.AddCommand(locationImportCmd, locationListCmd)
}

func runLocationImport(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	res, err := current.services.Locations.Import(cmd.Context(), current.actor, f)
	if err != nil {
		return err
	}

	var rows [][]string

	for _, p := range res.Panchayats {
		rows = append(rows, []string{"panchayat", p.Code, p.Name, tempMark(p.IsTemp)})
	}

	for _, v := range res.Villages {
		rows = append(rows, []string{"village", v.Code, v.Name, tempMark(v.IsTemp)})
	}

	out := cmd.OutOrStdout()
	printTable(out, []string{"Kind", "Code", "Name", ""}, rows)
	printFields(out, "import complete",
		"layout", string(res.Layout),
		"charset", res.Charset,
		"created", strconv.Itoa(res.Created()),
	)

	return nil
}

func runLocationList(cmd *cobra.Command, _ []string) error {
	panchayats, err := current.services.Locations.ListPanchayats(cmd.Context(), listFilter)
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(panchayats))
	for _, p := range panchayats {
		rows = append(rows, []string{p.DistrictCode, p.BlockCode, p.Code, p.Name, tempMark(p.IsTemp)})
	}

	printTable(cmd.OutOrStdout(), []string{"District", "Block", "Code", "Name", ""}, rows)

	return nil
}

func tempMark(temp bool) string {
	if temp {
		return faintStyle.Render("temp")
	}

	return ""
}
