package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rshade/profdiff/internal/engine"
)

type fieldsOutput struct {
	Object string             `json:"object"`
	Fields []engine.DetailRow `json:"fields"`
}

// newFieldsCmd creates the fields command.
func newFieldsCmd(a *app) *cobra.Command {
	var (
		output          string
		differencesOnly bool
	)

	cmd := &cobra.Command{
		Use:   "fields PROFILE1 PROFILE2 OBJECT",
		Short: "Compare field permissions of one object",
		Example: `  # Field permissions on Account
  profdiff fields 00e000000000001 00e000000000002 Account

  # Only differing fields, as JSON
  profdiff fields 00e000000000001 00e000000000002 Contact --differences-only -o json`,
		Args: cobra.ExactArgs(3), //nolint:mnd // profile, profile, object
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateOutput(output); err != nil {
				return err
			}
			if err := engine.ValidatePair(args[0], args[1]); err != nil {
				return err
			}
			object := args[2]

			return a.withService(cmd.Context(), func(svc engine.Service) error {
				rows, err := svc.FetchDetail(cmd.Context(), args[0], args[1], object)
				if err != nil {
					return fmt.Errorf("fetching fields of %s: %w", object, err)
				}
				if differencesOnly {
					rows = differingRows(rows)
				}
				if rows == nil {
					rows = []engine.DetailRow{}
				}

				if output == outputJSON {
					return writeJSON(cmd.OutOrStdout(), fieldsOutput{Object: object, Fields: rows})
				}
				return renderFieldsTable(cmd.OutOrStdout(), object, rows)
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", outputTable, "output format: table or json")
	cmd.Flags().BoolVar(&differencesOnly, "differences-only", false, "show only fields that differ")
	return cmd
}

func differingRows(rows []engine.DetailRow) []engine.DetailRow {
	var out []engine.DetailRow
	for _, r := range rows {
		if r.IsDifferent {
			out = append(out, r)
		}
	}
	return out
}

func renderFieldsTable(w io.Writer, object string, rows []engine.DetailRow) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintf(w, "No field permissions found for %s\n", object)
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, tabwriterPadding, ' ', 0)
	fmt.Fprintln(tw, "FIELD\tPROFILE 1\tPROFILE 2\tDIFF")
	for _, r := range rows {
		marker := ""
		if r.IsDifferent {
			marker = "*"
		}
		label := r.Label
		if label == "" {
			label = r.Key
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", label, r.Left, r.Right, marker)
	}
	return tw.Flush()
}
