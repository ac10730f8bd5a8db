package main

import (
	"fmt"

	"github.com/chazu/joinery/pkg/kernel"
	"github.com/chazu/joinery/pkg/recompute"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func (c *cli) exportCmd() *cobra.Command {
	var (
		object string
		out    string
		format string
	)
	cmd := &cobra.Command{
		Use:   "export FILE",
		Short: "Export one object's solid as STL or 3MF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := kernel.ParseFormat(format)
			if err != nil {
				return err
			}
			k, s, err := c.open(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			exp, ok := k.(kernel.Exporter)
			if !ok {
				return fmt.Errorf("kernel %q cannot export", c.cfg.Kernel.Backend)
			}

			u, err := s.Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if len(u.Errors) > 0 {
				printUpdate(cmd.ErrOrStderr(), u)
				return fmt.Errorf("%s does not evaluate", args[0])
			}
			o := u.Result.Get(object)
			if o == nil {
				return fmt.Errorf("no object named %q", object)
			}
			if o.Status.State != recompute.Valid {
				return fmt.Errorf("%s is %s: %w", object, o.Status.State, o.Status.Err)
			}

			if err := exp.Export(o.Solid, out, f); err != nil {
				return err
			}
			c.logger.Info("exported", zap.String("object", object), zap.String("path", out), zap.String("format", string(f)))
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&object, "object", "o", "", "object to export")
	cmd.Flags().StringVar(&out, "out", "", "output file")
	cmd.Flags().StringVarP(&format, "format", "f", string(kernel.FormatSTL), "output format: stl or 3mf")
	_ = cmd.MarkFlagRequired("object")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}
