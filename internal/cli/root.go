// Package cli wires the ticketprefix command tree.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/wahlandcase/ticketprefix/internal/app"
	"github.com/wahlandcase/ticketprefix/internal/apperror"
	"github.com/wahlandcase/ticketprefix/internal/config"
	"github.com/wahlandcase/ticketprefix/internal/git"
	"github.com/wahlandcase/ticketprefix/internal/logger"
	"github.com/wahlandcase/ticketprefix/internal/ui"
)

// Version is set at build time with -ldflags "-X .../internal/cli.Version=..."
var Version = "dev"

// globalFlags are shared by every subcommand
type globalFlags struct {
	configPath string
	logLevel   string
	noColor    bool
	dir        string
}

// env is what a command needs after flags are parsed
type env struct {
	cfg *config.Config
	log *slog.Logger
}

func (g *globalFlags) setup() (*env, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return nil, err
	}

	level := cfg.Logging.Level
	if g.logLevel != "" {
		level = g.logLevel
	}
	log := logger.Setup(level, cfg.Logging.Format)
	ui.SetColorMode(cfg.UI.Color, g.noColor)

	return &env{cfg: cfg, log: log}, nil
}

func (g *globalFlags) openRepo(e *env) (*git.Repo, error) {
	if g.dir != "" {
		return git.Open(g.dir, e.cfg.Git.Remote, e.log)
	}
	return git.OpenCurrent(e.cfg.Git.Remote, e.log)
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	g := &globalFlags{}
	var opts app.Options
	var yes bool

	cmd := &cobra.Command{
		Use:   "ticketprefix",
		Short: "Prefix the commit subjects of a feature branch with its ticket",
		Long: "ticketprefix rewrites the commits your branch added since it left the base branch\n" +
			"so every subject carries a ticket such as JIRA-123. The ticket comes from the branch\n" +
			"name unless --ticket or --prefix is given. Use --dry-run to preview.",
		Example: "  ticketprefix --dry-run\n" +
			"  ticketprefix --ticket JIRA-123 --yes\n" +
			"  ticketprefix --replace --force",
		SilenceErrors: true,
		SilenceUsage:  true,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return apperror.Usage("unexpected argument %q", args[0])
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.Ticket != "" && opts.Prefix != "" {
				return apperror.Usage("--ticket and --prefix cannot be used together")
			}

			e, err := g.setup()
			if err != nil {
				return err
			}
			repo, err := g.openRepo(e)
			if err != nil {
				return err
			}

			var confirm app.Confirmer = app.NewTeaConfirmer(stdin, stderr)
			if yes {
				confirm = app.AutoConfirm{}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			return app.NewRunner(e.cfg, repo, confirm, stdout, e.log).Run(ctx, opts)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&g.configPath, "config", "", "Config file (default: $TICKETPREFIX_CONFIG or the user config dir)")
	pf.StringVar(&g.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	pf.BoolVar(&g.noColor, "no-color", false, "Disable colored output")
	pf.StringVarP(&g.dir, "dir", "C", "", "Run as if started in this directory")

	f := cmd.Flags()
	f.StringVarP(&opts.Ticket, "ticket", "t", "", "Ticket to use instead of the one in the branch name")
	f.StringVarP(&opts.Prefix, "prefix", "p", "", "Free-form prefix, used as-is without validation")
	f.StringVarP(&opts.Base, "base", "b", "", "Base branch (default: first of git.base_branches that exists)")
	f.BoolVarP(&opts.Replace, "replace", "r", false, "Replace existing tickets instead of skipping those commits")
	f.BoolVarP(&opts.DryRun, "dry-run", "n", false, "Show what would change without rewriting")
	f.BoolVarP(&opts.Force, "force", "f", false, "Allow rewriting a branch that exists on the remote")
	f.BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")

	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return apperror.Usage("%v", err)
	})
	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	cmd.AddCommand(newHookCmd(g))
	cmd.AddCommand(newConfigCmd(g))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// Run executes the command line and returns the process exit code
func Run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cmd := newRootCmd(stdin, stdout, stderr)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return apperror.ExitSuccess
	}

	fmt.Fprintf(stderr, "Error: %v\n", err)
	if hint := apperror.HintFor(err); hint != "" {
		fmt.Fprintf(stderr, "Hint: %s\n", hint)
	}
	if apperror.ExitCode(err) == apperror.ExitUsage {
		fmt.Fprintf(stderr, "Run '%s --help' for usage.\n", cmd.CommandPath())
	}
	return apperror.ExitCode(err)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print ticketprefix version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "ticketprefix version %s\n", Version)
		},
	}
}
