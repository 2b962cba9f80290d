package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wahlandcase/ticketprefix/internal/apperror"
	"github.com/wahlandcase/ticketprefix/internal/hooks"
)

func newHookCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hook",
		Short: "Manage the git hooks that keep new commits prefixed",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "install [hook...]",
		Short: "Install hooks into the current repository (default: all)",
		Long: "Install writes a marked section into each hook file. Content outside\n" +
			"the section is kept, so existing hooks keep working.\n\n" +
			"Hooks: " + strings.Join(hooks.Names, ", "),
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := hookNames(args)
			if err != nil {
				return err
			}
			e, err := g.setup()
			if err != nil {
				return err
			}
			repo, err := g.openRepo(e)
			if err != nil {
				return err
			}

			installed, err := hooks.Install(repo.GitDir(), names)
			for _, path := range installed {
				fmt.Fprintf(cmd.OutOrStdout(), "%s Installed %s\n", status("success"), path)
			}
			return err
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "uninstall [hook...]",
		Short: "Remove the managed section from hooks (default: all)",
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := hookNames(args)
			if err != nil {
				return err
			}
			e, err := g.setup()
			if err != nil {
				return err
			}
			repo, err := g.openRepo(e)
			if err != nil {
				return err
			}

			removed, err := hooks.Uninstall(repo.GitDir(), names)
			for _, path := range removed {
				fmt.Fprintf(cmd.OutOrStdout(), "%s Removed %s\n", status("removed"), path)
			}
			if err == nil && len(removed) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No ticketprefix hooks installed")
			}
			return err
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:    "run <hook> [args...]",
		Short:  "Run a hook (called from the installed hook scripts)",
		Hidden: true,
		Args:   cobra.MinimumNArgs(1),
		// git passes hook arguments through verbatim
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			name, rest := args[0], args[1:]
			if !hooks.IsKnown(name) {
				return apperror.Usage("unknown hook %q", name)
			}
			e, err := g.setup()
			if err != nil {
				return err
			}
			repo, err := g.openRepo(e)
			if err != nil {
				return err
			}
			h := hooks.NewHandler(e.cfg, repo, e.log)

			switch name {
			case "commit-msg":
				if len(rest) < 1 {
					return apperror.Usage("commit-msg needs the message file path")
				}
				return h.CommitMsg(rest[0])
			case "prepare-commit-msg":
				if len(rest) < 1 {
					return apperror.Usage("prepare-commit-msg needs the message file path")
				}
				source := ""
				if len(rest) > 1 {
					source = rest[1]
				}
				return h.PrepareCommitMsg(rest[0], source)
			default:
				return h.PrePush(cmd.InOrStdin())
			}
		},
	})

	return cmd
}

func hookNames(args []string) ([]string, error) {
	if len(args) == 0 {
		return hooks.Names, nil
	}
	for _, name := range args {
		if !hooks.IsKnown(name) {
			return nil, apperror.Usage("unknown hook %q (known: %s)", name, strings.Join(hooks.Names, ", "))
		}
	}
	return args, nil
}
