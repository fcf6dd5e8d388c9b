package main

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"modgen/internal/cdecl"
	"modgen/internal/config"
	"modgen/internal/literal"
	"modgen/internal/macro"
)

var classifyCmd = &cobra.Command{
	Use:   "classify [flags] <body>...",
	Short: "Classify macro bodies and evaluate constant expressions",
	Long: `Classify each argument as a macro body. Bodies may refer to macros given
with --define NAME=BODY, which are resolved the way a unit resolves them.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runClassify,
}

func init() {
	classifyCmd.Flags().StringArrayP("define", "D", nil, "define a macro NAME[=BODY] visible to the bodies")
}

func runClassify(cmd *cobra.Command, args []string) error {
	defines, err := cmd.Flags().GetStringArray("define")
	if err != nil {
		return fmt.Errorf("failed to get define flag: %w", err)
	}
	unit, err := defineUnit(defines)
	if err != nil {
		return err
	}
	failed := classifyBodies(cmd.OutOrStdout(), unit, args)
	if failed > 0 {
		return fmt.Errorf("%d of %d bodies could not be classified", failed, len(args))
	}
	return nil
}

func defineUnit(defines []string) (*cdecl.Unit, error) {
	unit := cdecl.NewUnit("<command line>")
	for _, def := range defines {
		m, err := config.ParseDefine(def)
		if err != nil {
			return nil, fmt.Errorf("--define: %w", err)
		}
		if err := unit.AddMacro(m); err != nil {
			return nil, err
		}
	}
	return unit, nil
}

// classifyBodies prints one row per body and returns how many failed.
func classifyBodies(out io.Writer, unit *cdecl.Unit, bodies []string) int {
	resolver := macro.NewResolver(unit, literal.Default)
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "BODY\tKIND\tVALUE\tCODE")
	failed := 0
	for _, body := range bodies {
		v, err := resolver.Evaluate(body)
		if err != nil {
			failed++
			fmt.Fprintf(tw, "%s\t-\t%s\t%s\n", body, err, errorCode(err))
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t\n", body, v.Kind, v.String())
	}
	_ = tw.Flush() //nolint:errcheck
	return failed
}

func errorCode(err error) string {
	var merr *macro.Error
	if errors.As(err, &merr) {
		return merr.Code().ID()
	}
	return "-"
}
