package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/rshade/profdiff/internal/config"
	"github.com/rshade/profdiff/internal/engine"
	"github.com/rshade/profdiff/internal/tui"
)

// compareArgCount is the number of positional profile IDs.
const compareArgCount = 2

// defaultRenderWidth is the styled output width when stdout is not a terminal.
const defaultRenderWidth = 100

// errProfilesRequired is returned when a non-interactive compare has no IDs.
var errProfilesRequired = errors.New("two profile IDs are required when not running interactively")

// compareOptions holds the compare command flags.
type compareOptions struct {
	differencesOnly bool
	categories      []string
	expand          []string
	output          string
	plain           bool
	noColor         bool
}

// newCompareCmd creates the compare command.
func newCompareCmd(a *app) *cobra.Command {
	var opts compareOptions

	cmd := &cobra.Command{
		Use:   "compare [PROFILE1 PROFILE2]",
		Short: "Compare two profiles",
		Long: `Compares two profiles across apps, object settings, system permissions,
Apex classes, Visualforce pages and custom permissions.

On a terminal without arguments, an interactive view lets you pick both
profiles, switch categories and expand objects into field permissions.
Otherwise the comparison is printed as a table, a styled summary or JSON.`,
		Example: `  # Interactive comparison
  profdiff compare

  # Differences only, as plain text
  profdiff compare 00e000000000001 00e000000000002 --differences-only --plain

  # Object settings with Account field detail, as JSON
  profdiff compare 00e000000000001 00e000000000002 --category objects --expand Account -o json`,
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) != 0 && len(args) != compareArgCount {
				return fmt.Errorf("accepts 0 or %d profile IDs, received %d", compareArgCount, len(args))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runCompare(cmd, args, opts)
		},
	}

	f := cmd.Flags()
	f.BoolVar(&opts.differencesOnly, "differences-only", false, "show only rows that differ")
	f.StringSliceVar(&opts.categories, "category", nil,
		"limit output to a category (apps, objects, system_permissions, apex_classes, vf_pages, custom_permissions)")
	f.StringSliceVar(&opts.expand, "expand", nil, "include field-level detail for an object (repeatable)")
	f.StringVarP(&opts.output, "output", "o", outputTable, "output format: table or json")
	f.BoolVar(&opts.plain, "plain", false, "plain text output without colors or interaction")
	f.BoolVar(&opts.noColor, "no-color", false, "disable colors")
	return cmd
}

// isInteractiveRun reports whether cmd will start the full-screen TUI.
func isInteractiveRun(cmd *cobra.Command, cfg *config.Config) bool {
	if cmd.Name() != "compare" {
		return false
	}
	output, _ := cmd.Flags().GetString("output")
	if output == outputJSON {
		return false
	}
	plain, _ := cmd.Flags().GetBool("plain")
	noColor, _ := cmd.Flags().GetBool("no-color")
	return tui.DetectOutputMode(plain, noColor || cfg.UI.NoColor, false) == tui.OutputModeInteractive
}

func (a *app) runCompare(cmd *cobra.Command, args []string, opts compareOptions) error {
	if err := validateOutput(opts.output); err != nil {
		return err
	}
	categories, err := parseCategories(opts.categories)
	if err != nil {
		return err
	}
	filter, err := a.filterMode(opts.differencesOnly)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	return a.withService(ctx, func(svc engine.Service) error {
		if isInteractiveRun(cmd, a.cfg) {
			return runInteractiveCompare(ctx, svc, args, filter)
		}
		if len(args) != compareArgCount {
			return errProfilesRequired
		}

		m, compareErr := compareStatic(ctx, svc, args[0], args[1], filter, opts.expand)
		if compareErr != nil {
			return compareErr
		}

		renderOpts := tui.RenderOptions{Categories: categories, Width: tui.TerminalWidth(defaultRenderWidth)}
		return renderComparison(cmd.OutOrStdout(), m, opts, a.cfg, renderOpts)
	})
}

// filterMode returns the filter from --differences-only or the configured default.
func (a *app) filterMode(differencesOnly bool) (tui.FilterMode, error) {
	if differencesOnly {
		return tui.FilterDifferencesOnly, nil
	}
	return tui.ParseFilterMode(a.cfg.UI.DefaultFilter)
}

// compareStatic runs a comparison to completion without a terminal and
// resolves the detail of the expanded objects.
func compareStatic(
	ctx context.Context,
	svc engine.Service,
	id1, id2 string,
	filter tui.FilterMode,
	expand []string,
) (*tui.ComparisonModel, error) {
	m := tui.NewComparisonModel(ctx, svc)
	m.SelectProfile1(id1)
	m.SelectProfile2(id2)
	if !m.CanCompare() {
		return nil, engine.ValidatePair(id1, id2)
	}

	tui.Drive(m, m.StartComparison())
	if m.State() != tui.SessionReady {
		msg := "comparison failed"
		if n := m.Notice(); n != nil {
			msg = n.Message
		}
		return nil, errors.New(msg)
	}

	m.SetFilterMode(filter)
	for _, object := range expand {
		rows := m.ResolveDetail(ctx, engine.CategoryObjects, object)
		logger.Debug().Ctx(ctx).Str("object", object).Int("fields", len(rows)).Msg("expanded object")
	}
	return m, nil
}

func renderComparison(
	w io.Writer,
	m *tui.ComparisonModel,
	opts compareOptions,
	cfg *config.Config,
	renderOpts tui.RenderOptions,
) error {
	if opts.output == outputJSON {
		return tui.RenderJSON(w, m, renderOpts)
	}
	mode := tui.DetectOutputMode(opts.plain, opts.noColor || cfg.UI.NoColor, true)
	if mode == tui.OutputModeStyled {
		return tui.RenderStyled(w, m, renderOpts)
	}
	return tui.RenderPlain(w, m, renderOpts)
}

func runInteractiveCompare(ctx context.Context, svc engine.Service, args []string, filter tui.FilterMode) error {
	m := tui.NewComparisonModel(ctx, svc)
	m.SetFilterMode(filter)
	if len(args) == compareArgCount {
		m.SelectProfile1(args[0])
		m.SelectProfile2(args[1])
		m.CompareOnInit()
	}

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("failed to run interactive TUI: %w", err)
	}
	return nil
}

func parseCategories(names []string) ([]engine.Category, error) {
	categories := make([]engine.Category, 0, len(names))
	for _, name := range names {
		c, err := engine.ParseCategory(name)
		if err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, nil
}
