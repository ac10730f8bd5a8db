package main

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/chazu/joinery/pkg/session"
	"github.com/spf13/cobra"
)

func (c *cli) evalCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "eval FILE",
		Short: "Evaluate a document and report every object",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, s, err := c.open(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			u, err := s.Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printUpdate(cmd.OutOrStdout(), u)
			if !u.OK() {
				return errors.New("document has errors")
			}
			return nil
		},
	}
}

// printUpdate writes a table of objects followed by errors and warnings.
func printUpdate(out io.Writer, u *session.Update) {
	for _, e := range u.Errors {
		fmt.Fprintf(out, "error: %s\n", e.Error())
	}
	for _, w := range u.Warnings {
		fmt.Fprintf(out, "warning: %s\n", w.Message)
	}
	if u.Result == nil {
		return
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "OBJECT\tKIND\tSTATE\tVOLUME\tVISIBLE")
	for _, o := range u.Result.Documents() {
		state := o.Status.State.String()
		if o.Status.Stale {
			state += " (stale)"
		}
		vol := "-"
		if o.Solid != nil {
			vol = fmt.Sprintf("%.3f", o.Solid.Volume())
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%t\n", o.Node.Name, o.Node.Kind, state, vol, !o.Node.Hidden)
	}
	_ = tw.Flush()

	for _, o := range u.Result.Failed() {
		fmt.Fprintf(out, "%s: %v\n", o.Node.Name, o.Status.Err)
	}
}
