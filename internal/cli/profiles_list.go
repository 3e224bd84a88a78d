package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rshade/profdiff/internal/cli/pagination"
	"github.com/rshade/profdiff/internal/engine"
)

// Output formats.
const (
	outputTable = "table"
	outputJSON  = "json"
)

// tabwriterPadding is the minimum padding between table columns.
const tabwriterPadding = 2

type profilesListOutput struct {
	Profiles   []engine.ProfileInfo `json:"profiles"`
	Pagination pagination.Meta      `json:"pagination"`
}

// newProfilesListCmd creates the profiles list command.
func newProfilesListCmd(a *app) *cobra.Command {
	var (
		output  string
		sortStr string
		params  pagination.Params
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List available profiles",
		Example: `  # List all profiles
  profdiff profiles list

  # Second page of 20, sorted by license
  profdiff profiles list --sort license --page 2 --page-size 20 --output json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validateOutput(output); err != nil {
				return err
			}
			if err := params.Validate(); err != nil {
				return err
			}
			field, order, err := pagination.ParseSort(sortStr)
			if err != nil {
				return err
			}
			sorter := pagination.NewProfileSorter()
			if err = sorter.Validate(field); err != nil {
				return err
			}

			return a.withService(cmd.Context(), func(svc engine.Service) error {
				all, listErr := svc.ListProfiles(cmd.Context())
				if listErr != nil {
					return fmt.Errorf("listing profiles: %w", listErr)
				}
				page := pagination.Apply(sorter.Sort(all, field, order), params)

				if output == outputJSON {
					return writeJSON(cmd.OutOrStdout(), profilesListOutput{
						Profiles:   page,
						Pagination: pagination.NewMeta(params, len(all)),
					})
				}
				return renderProfilesTable(cmd.OutOrStdout(), page)
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", outputTable, "output format: table or json")
	cmd.Flags().StringVar(&sortStr, "sort", "", "sort by name, id or license, optionally with :asc or :desc")
	cmd.Flags().IntVar(&params.Limit, "limit", 0, "maximum number of profiles (0 = all)")
	cmd.Flags().IntVar(&params.Offset, "offset", 0, "number of profiles to skip")
	cmd.Flags().IntVar(&params.Page, "page", 0, "page number (requires --page-size)")
	cmd.Flags().IntVar(&params.PageSize, "page-size", 0, "profiles per page")
	return cmd
}

func renderProfilesTable(w io.Writer, profiles []engine.ProfileInfo) error {
	if len(profiles) == 0 {
		_, err := fmt.Fprintln(w, "No profiles found")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, tabwriterPadding, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tLICENSE")
	for _, p := range profiles {
		license := p.LicenseName
		if license == "" {
			license = "N/A"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", p.ID, p.Name, license)
	}
	return tw.Flush()
}

func validateOutput(output string) error {
	switch output {
	case outputTable, outputJSON:
		return nil
	default:
		return fmt.Errorf("unsupported output format: %s", output)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
