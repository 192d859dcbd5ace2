package cli

import (
	"encoding/json"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/worktime/pkg/arrange"
	"github.com/matzehuels/worktime/pkg/errors"
)

func (c *CLI) arrangeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "arrange [file]",
		Short: "Lay out label boxes so they do not overlap",
		Long: `Lay out label boxes so they do not overlap.

Reads a JSON request from file, or from stdin when file is omitted or "-":

  {"total_width": 1000, "boxes": [{"position": 50, "width": 200}]}

Positions are percentages (0-100) of total_width. The result lists each
box's left edge as a CSS percentage, in input order.`,
		Example: `  echo '{"total_width":1000,"boxes":[{"position":50,"width":200},{"position":52,"width":200}]}' | worktime arrange`,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.config()
			if err != nil {
				return err
			}

			in := cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}

			req, err := decodeArrangeRequest(in)
			if err != nil {
				return err
			}

			p := newProgress(loggerFromContext(ctx))
			opts := append(cfg.Arrange.Options(), arrange.WithLogger(loggerFromContext(ctx)))
			res, err := req.Solve(ctx, opts...)
			if err != nil {
				return err
			}
			p.done("Arranged boxes")

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		},
	}
}

func decodeArrangeRequest(r io.Reader) (arrange.Request, error) {
	var req arrange.Request
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return req, errors.Wrap(errors.ErrCodeInvalidLayout, err, "decode arrange request")
	}
	return req, nil
}
