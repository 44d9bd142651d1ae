package cmd

import (
	"fmt"
	"os"

	"github.com/ifj25/ifjc/internal/driver"
	"github.com/spf13/cobra"
)

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse IFJ25 source and print the resulting AST",
	Long: `Run the lexer and parser only, without semantic analysis or code
generation, and print an s-expression dump of the resulting AST (mirrors
the teacher's cmd parse.go). On failure it exits with the diagnostic's
own code: 1 for a lexical error, 2 for a syntax error, and the semantic
codes (3, 4, 5, 10) the parser itself detects, such as a redefinition or
a call to an already-declared function with the wrong arguments.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	in, file, closeFn, err := openInput(args)
	if err != nil {
		return err
	}
	defer closeFn()

	root, _, _, perr := driver.Parse(in, file)
	if perr != nil {
		fmt.Fprintln(os.Stderr, perr.Format(true))
		os.Exit(perr.ExitCode())
	}

	fmt.Println(root.String())
	return nil
}
