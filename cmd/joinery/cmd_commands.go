package main

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/chazu/joinery/pkg/command"
	"github.com/chazu/joinery/pkg/session"
	"github.com/spf13/cobra"
)

func (c *cli) commandsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "commands",
		Short: "List the join commands",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tMENU\tDESCRIPTION")
			for _, d := range command.All() {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", d.ID, d.MenuText, d.ToolTip)
			}
			return tw.Flush()
		},
	}
}

func (c *cli) runCmd() *cobra.Command {
	var (
		selection []string
		write     bool
	)
	cmd := &cobra.Command{
		Use:   "run COMMAND_ID FILE",
		Short: "Run a join command on selected objects of a document",
		Long: `Runs a join command as if the objects given with --select were
selected in the document, in order: the first is the base, the second the
tool. The new feature is printed; with --write it is saved to FILE.`,
		Example: `  joinery run Part_CutoutFeature examples/pegboard.joinery --select board,peg`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, ok := command.Lookup(args[0]); !ok {
				return fmt.Errorf("unknown command %q; see joinery commands", args[0])
			}
			_, s, err := c.open(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			return runCommand(cmd.Context(), cmd, s, args[0], args[1], selection, write)
		},
	}
	cmd.Flags().StringSliceVarP(&selection, "select", "s", nil, "objects to select, base first")
	cmd.Flags().BoolVarP(&write, "write", "w", false, "save the document after the command")
	return cmd
}

func runCommand(ctx context.Context, cmd *cobra.Command, s *session.Session, id, path string, selection []string, write bool) error {
	u, err := s.Load(ctx, path)
	if err != nil {
		return err
	}
	if len(u.Errors) > 0 {
		printUpdate(cmd.ErrOrStderr(), u)
		return fmt.Errorf("%s does not evaluate", path)
	}
	if err := s.Select(selection...); err != nil {
		return err
	}

	name, err := s.RunCommand(ctx, id)
	if err != nil {
		return err
	}
	if name == "" {
		return fmt.Errorf("%s did nothing: select exactly two objects, got %s", id, strings.Join(selection, ", "))
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "created %s\n", name)
	printUpdate(out, s.Last())
	if write {
		if err := s.Save(); err != nil {
			return err
		}
		fmt.Fprintf(out, "saved %s\n", path)
	}
	return nil
}
