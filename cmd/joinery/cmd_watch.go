package main

import (
	"fmt"

	"github.com/chazu/joinery/pkg/session"
	"github.com/spf13/cobra"
)

func (c *cli) watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch FILE",
		Short: "Re-evaluate a document every time it is saved",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, s, err := c.open(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			u, err := s.Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printUpdate(out, u)

			return s.Watch(cmd.Context(), args[0], func(u *session.Update, err error) {
				if err != nil {
					fmt.Fprintf(out, "reload failed: %v\n", err)
					return
				}
				fmt.Fprintf(out, "--- reloaded %s\n", args[0])
				printUpdate(out, u)
			})
		},
	}
}
