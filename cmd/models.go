package cmd

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/krau/konabreed/registry"
)

func newModelsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "models",
		Aliases: []string{"ls"},
		Short:   "Load the configured adapters and list the ones available",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := start(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer rt.Close()
			_, err = fmt.Fprint(cmd.OutOrStdout(), modelsTable(rt.registry.Describe(), rt.registry.LoadErrors()))
			return err
		},
	}
}

func modelsTable(infos []registry.Info, failed []*registry.LoadError) string {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)

	table.SetHeader([]string{"NAME", "CATEGORY", "INPUT", "CLASSES", "STATUS"})

	table.SetBorder(false)
	table.SetColumnSeparator("")
	table.SetHeaderLine(false)
	table.SetTablePadding("  ")
	table.SetNoWhiteSpace(true)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)

	for _, info := range infos {
		status := "loaded"
		if info.Synthetic {
			status = "demo"
		}
		classes := "-"
		if info.Classes > 0 {
			classes = strconv.Itoa(info.Classes)
		}
		table.Append([]string{info.Name, info.Category, info.InputSize.String(), classes, status})
	}
	for _, le := range failed {
		table.Append([]string{le.Name, "-", "-", "-", fmt.Sprintf("unavailable: %v", le.Err)})
	}

	table.Render()
	return buf.String()
}
