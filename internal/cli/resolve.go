package cli

import (
	"fmt"

	"github.com/lakequery/hogql/internal/config"
	"github.com/lakequery/hogql/pkg/funcreg"
	"github.com/lakequery/hogql/pkg/parser"
	"github.com/lakequery/hogql/pkg/resolve"
	"github.com/spf13/cobra"
)

func newResolveCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "resolve <query>",
		Short: "resolve a HogQL query under the strict dialect and print its typed shape",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			node, err := parser.ParseSelect(args[0])
			if err != nil {
				return fmt.Errorf("parse: %w", err)
			}

			ctx := newResolveContext()
			typed, err := resolve.ResolveTypes(node, ctx, resolve.Strict)
			if err != nil {
				return err
			}

			return renderResolved(cmd.OutOrStdout(), typed, ctx, format)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "o", "table", "output format: table or json")
	return cmd
}

func newCheckCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "check <query>",
		Short: "resolve a HogQL query under the lenient dialect, reporting diagnostics instead of failing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			node, err := parser.ParseSelect(args[0])
			if err != nil {
				return fmt.Errorf("parse: %w", err)
			}

			ctx := newResolveContext()
			typed, err := resolve.ResolveTypes(node, ctx, resolve.Lenient)
			if err != nil {
				return err
			}

			return renderResolved(cmd.OutOrStdout(), typed, ctx, format)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "o", "table", "output format: table or json")
	return cmd
}

// newResolveContext builds a resolve.Context from the loaded Config and
// the bundled sample catalog, wiring CohortVia through to
// resolve.Modifiers (spec.md §6's modifiers.inCohortVia).
func newResolveContext() *resolve.Context {
	c := currentConfig()
	ctx := resolve.NewContext(bundledCatalog())
	ctx.TeamID = c.TeamID
	if c.MaxViewDepth > 0 {
		ctx.MaxViewDepth = c.MaxViewDepth
	}
	ctx.Logger = currentLogger()
	ctx.Funcs = funcreg.NewStandard()
	if c.InCohortVia == config.CohortViaLeftJoin {
		ctx.Modifiers.InCohortVia = resolve.CohortLeftJoin
	} else {
		ctx.Modifiers.InCohortVia = resolve.CohortSubquery
	}
	return ctx
}
