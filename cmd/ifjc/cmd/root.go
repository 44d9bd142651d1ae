// Package cmd is the Cobra command tree for ifjc, mirroring the
// teacher's cmd/dwscript/cmd package: one file per subcommand, a shared
// rootCmd with persistent flags, and an Execute entry point main.go
// calls.
package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/ifj25/ifjc/internal/driver"
	"github.com/spf13/cobra"
)

var (
	// Version information, set by build flags the way the teacher's
	// cmd/dwscript does.
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "ifjc [file]",
	Short: "IFJ25 to IFJcode25 compiler",
	Long: `ifjc compiles IFJ25 source to IFJcode25, the stack-based textual
intermediate representation consumed by the IFJ25 reference interpreter.

With no arguments, source is read from standard input and the compiled
program is written to standard output; diagnostics go to standard error.
A filename argument reads from that file instead.`,
	Args:    cobra.MaximumNArgs(1),
	Version: Version,
	RunE:    runCompile,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
}

// openInput resolves the source argument: a filename if given, stdin
// otherwise (spec §6, AMBIENT STACK's "falling back to stdin" note).
func openInput(args []string) (io.Reader, string, func(), error) {
	if len(args) == 0 {
		return os.Stdin, "<stdin>", func() {}, nil
	}
	f, err := os.Open(args[0])
	if err != nil {
		return nil, "", nil, fmt.Errorf("failed to open %s: %w", args[0], err)
	}
	return f, args[0], func() { f.Close() }, nil
}

func runCompile(cmd *cobra.Command, args []string) error {
	verbose, _ := cmd.Flags().GetBool("verbose")

	in, file, closeFn, err := openInput(args)
	if err != nil {
		return err
	}
	defer closeFn()

	if verbose {
		fmt.Fprintf(os.Stderr, "compiling %s...\n", file)
	}

	if cerr := driver.Compile(in, os.Stdout, file); cerr != nil {
		fmt.Fprintln(os.Stderr, cerr.Format(true))
		os.Exit(cerr.ExitCode())
	}
	return nil
}
