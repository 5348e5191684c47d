package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/lakequery/hogql/pkg/parser"
	"github.com/lakequery/hogql/pkg/resolve"
	"github.com/spf13/cobra"
)

func newReplCmd() *cobra.Command {
	var lenient bool
	cmd := &cobra.Command{
		Use:   "repl",
		Short: "interactive REPL: type a HogQL query, see its resolved/annotated AST and any diagnostics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runREPL(cmd, lenient)
		},
	}
	cmd.Flags().BoolVar(&lenient, "lenient", false, "resolve under the lenient dialect instead of strict")
	return cmd
}

// runREPL is grounded on the teacher's query REPL
// (internal/cli/commands/query_repl.go): chzyer/readline for history
// and tab-completion, dot-commands for meta operations, semicolon as
// the statement terminator for multi-line input.
func runREPL(cmd *cobra.Command, lenient bool) error {
	dialect := resolve.Strict
	if lenient {
		dialect = resolve.Lenient
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "hogql> ",
		AutoComplete:    replCompleter(),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
	})
	if err != nil {
		return fmt.Errorf("repl: initializing: %w", err)
	}
	defer func() { _ = rl.Close() }()

	fmt.Fprintf(cmd.OutOrStdout(), "hogql REPL (%s dialect)\n", dialect)
	fmt.Fprintln(cmd.OutOrStdout(), "Type .help for commands, .quit to exit")

	var buf strings.Builder
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			buf.Reset()
			rl.SetPrompt("hogql> ")
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, ".") {
			if line == ".quit" || line == ".exit" {
				return nil
			}
			if line == ".help" {
				printREPLHelp(cmd.OutOrStdout())
				continue
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "unknown command: %s (type .help for commands)\n", line)
			continue
		}

		buf.WriteString(line)
		if !strings.HasSuffix(line, ";") {
			buf.WriteString(" ")
			rl.SetPrompt("    ...> ")
			continue
		}
		rl.SetPrompt("hogql> ")

		query := strings.TrimSuffix(buf.String(), ";")
		buf.Reset()

		if err := evalAndRenderQuery(cmd, query, dialect); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		}
		fmt.Fprintln(cmd.OutOrStdout())
	}
}

func evalAndRenderQuery(cmd *cobra.Command, query string, dialect resolve.Dialect) error {
	node, err := parser.ParseSelect(query)
	if err != nil {
		return fmt.Errorf("parse: %w", err)
	}
	ctx := newResolveContext()
	typed, err := resolve.ResolveTypes(node, ctx, dialect)
	if err != nil {
		return err
	}
	return renderResolved(cmd.OutOrStdout(), typed, ctx, "table")
}

func printREPLHelp(w io.Writer) {
	fmt.Fprint(w, `
Commands:
  .help           Show this help message
  .quit / .exit   Exit the REPL

Tips:
  - Queries must end with a semicolon (;)
  - Use arrow keys to navigate history
`)
}

func replCompleter() *readline.PrefixCompleter {
	return readline.NewPrefixCompleter(
		readline.PcItem("SELECT"),
		readline.PcItem("FROM"),
		readline.PcItem("WHERE"),
		readline.PcItem(".help"),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
	)
}
