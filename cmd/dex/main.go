package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/pders01/dex/internal/config"
	"github.com/pders01/dex/internal/debuglog"
	"github.com/pders01/dex/internal/detail"
	"github.com/pders01/dex/internal/pokeapi"
	"github.com/pders01/dex/internal/query"
	"github.com/pders01/dex/internal/tui"
	"github.com/pders01/dex/internal/validation"
)

// Version is the version of the application, set at build time
var Version = "dev"

type rootOptions struct {
	configPath string
	apiURL     string
	logLevel   string
	quiet      bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := newRootCmd().ExecuteContext(ctx)
	_ = debuglog.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "dex",
		Short:         "Terminal Pokédex",
		Long:          "dex browses a Pokédex REST API: an infinite-scrolling list with name and type filters, plus detail pages with stats and evolutions.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			if err := setupFileLogging(cfg, opts.logLevel); err != nil {
				return err
			}
			if !opts.quiet {
				fmt.Fprintln(cmd.OutOrStdout(), tui.Banner(Version))
			}
			return runTUI(cmd.Context(), cfg)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "Path to configuration file")
	flags.StringVar(&opts.apiURL, "api", "", "API base URL (overrides config)")
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error, off")
	flags.BoolVarP(&opts.quiet, "quiet", "q", false, "Skip startup banner")

	root.AddCommand(
		newVersionCmd(),
		newConfigCmd(),
		newTypesCmd(opts),
		newListCmd(opts),
		newShowCmd(opts),
	)
	return root
}

// load reads the config file and applies flag overrides.
func (o *rootOptions) load() (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if o.apiURL != "" {
		cfg.API.BaseURL = o.apiURL
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid --api: %w", err)
		}
	}
	return cfg, nil
}

// client loads the config and builds an API client for one-shot commands.
// Logs go to stderr there since no TUI owns the terminal.
func (o *rootOptions) client(cmd *cobra.Command) (*config.Config, *pokeapi.Client, error) {
	cfg, err := o.load()
	if err != nil {
		return nil, nil, err
	}
	level := o.logLevel
	if level == "" {
		level = "off"
	}
	debuglog.SetupWriter(debuglog.ParseLogLevel(level), cmd.ErrOrStderr())

	client, err := pokeapi.NewClient(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, client, nil
}

func setupFileLogging(cfg *config.Config, flagLevel string) error {
	level := cfg.Log.Level
	if flagLevel != "" {
		level = flagLevel
	}
	lvl := debuglog.ParseLogLevel(level)
	if lvl == debuglog.LevelOff {
		return debuglog.Setup(debuglog.LevelOff)
	}

	path, err := validation.NewPathValidator().LogPath(cfg.Log.File)
	if err != nil {
		return fmt.Errorf("invalid log file: %w", err)
	}
	return debuglog.Setup(lvl, path)
}

func runTUI(ctx context.Context, cfg *config.Config) error {
	client, err := pokeapi.NewClient(cfg)
	if err != nil {
		return err
	}
	debuglog.Infof("starting dex against %s", client.BaseURL())

	app := tui.NewApp(ctx, client, cfg)
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "dex %s\n", Version)
			fmt.Fprintln(out, "Terminal Pokédex")
			fmt.Fprintln(out, "github.com/pders01/dex")
		},
	}
}

func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}

	var path string
	generate := &cobra.Command{
		Use:   "generate",
		Short: "Generate default config file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			target, err := validation.NewPathValidator().ConfigPath(path)
			if err != nil {
				return fmt.Errorf("invalid config path: %w", err)
			}
			if err := config.GenerateDefaultConfig(target); err != nil {
				return fmt.Errorf("failed to generate config: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Generated default configuration at: %s\n", target)
			return nil
		},
	}
	generate.Flags().StringVar(&path, "path", "", "Where to write the file (default ~/.config/dex/config.toml)")

	configCmd.AddCommand(generate)
	return configCmd
}

func newTypesCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List Pokémon types and their ids",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, client, err := opts.client(cmd)
			if err != nil {
				return err
			}
			types, err := client.ListTypes(cmd.Context())
			if err != nil {
				return fmt.Errorf("listing types: %w", err)
			}

			t := newTable("ID", "TYPE")
			for _, typ := range types {
				t.Row(strconv.Itoa(typ.ID), typ.Name)
			}
			fmt.Fprintln(cmd.OutOrStdout(), t.Render())
			return nil
		},
	}
}

type listOptions struct {
	name  string
	types []int
	limit int
	page  int
	all   bool
}

func newListCmd(opts *rootOptions) *cobra.Command {
	lo := &listOptions{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List Pokémon with optional name and type filters",
		Example: `  dex list --name chu
  dex list --type 3 --type 4 --limit 10
  dex list --all`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, client, err := opts.client(cmd)
			if err != nil {
				return err
			}
			if lo.limit == 0 {
				lo.limit = cfg.List.DefaultLimit
			}
			if lo.limit < 0 || lo.page < 1 {
				return fmt.Errorf("--limit and --page must be positive")
			}
			if lo.all && lo.page != 1 {
				return fmt.Errorf("--all always starts at page 1")
			}

			results, complete, err := fetchList(cmd.Context(), client, lo)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(results) == 0 {
				fmt.Fprintln(out, tui.MsgEmpty)
				return nil
			}
			t := newTable("#", "NAME", "TYPES")
			for _, p := range results {
				t.Row(p.Number(), p.Name, strings.Join(p.TypeNames(), ", "))
			}
			fmt.Fprintln(out, t.Render())
			if complete {
				fmt.Fprintln(out, tui.MsgAllLoaded(len(results)))
			} else {
				fmt.Fprintln(out, tui.MsgLoadedCount(len(results), lo.page))
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&lo.name, "name", "", "Name substring filter")
	f.IntSliceVar(&lo.types, "type", nil, "Type id filter (repeatable, see 'dex types')")
	f.IntVar(&lo.limit, "limit", 0, "Page size (default from config)")
	f.IntVar(&lo.page, "page", 1, "Page to fetch")
	f.BoolVar(&lo.all, "all", false, "Follow pages until the last one")
	return cmd
}

// fetchList returns the requested page, or every page with --all. complete
// reports whether the last page was reached.
func fetchList(ctx context.Context, client pokeapi.Lister, lo *listOptions) ([]pokeapi.Pokemon, bool, error) {
	ctrl := query.New(lo.limit)
	ctrl.SetName(lo.name)
	ctrl.SetTypes(lo.types)
	req := ctrl.Start()

	if !lo.all {
		q := req.Query()
		q.Page = lo.page
		items, err := client.ListPokemons(ctx, q)
		if err != nil {
			return nil, false, fmt.Errorf("listing page %d: %w", lo.page, err)
		}
		return items, len(items) < q.Limit, nil
	}

	for {
		items, err := client.ListPokemons(ctx, req.Query())
		ctrl.Apply(req, items, err)
		if err != nil {
			return nil, false, fmt.Errorf("listing page %d: %w", req.Page, err)
		}
		next, ok := ctrl.Advance()
		if !ok {
			return ctrl.Results(), ctrl.EndOfData(), nil
		}
		req = next
	}
}

func newShowCmd(opts *rootOptions) *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one Pokémon's detail page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil || id < 1 {
				return fmt.Errorf("invalid pokédex id %q", args[0])
			}
			cfg, client, err := opts.client(cmd)
			if err != nil {
				return err
			}

			page := detail.NewFetcher(client).Fetch(cmd.Context(), id)
			if page.Failed {
				return fmt.Errorf("%s: %w", page.Message(), page.Err)
			}

			md := page.Markdown()
			if raw {
				fmt.Fprint(cmd.OutOrStdout(), md)
				return nil
			}
			r, err := glamour.NewTermRenderer(
				glamour.WithAutoStyle(),
				glamour.WithWordWrap(cfg.UI.Detail.WordWrapMaxWidth),
			)
			if err != nil {
				return fmt.Errorf("initializing renderer: %w", err)
			}
			rendered, err := r.Render(md)
			if err != nil {
				return fmt.Errorf("rendering detail: %w", err)
			}
			fmt.Fprint(cmd.OutOrStdout(), rendered)
			return nil
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "Print markdown without rendering")
	return cmd
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(tui.SeparatorStyle).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return tui.HeaderStyle.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Headers(headers...)
}
