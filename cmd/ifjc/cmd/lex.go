package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/ifj25/ifjc/internal/lexer"
	"github.com/spf13/cobra"
	"golang.org/x/text/width"
)

var showPos bool

var lexCmd = &cobra.Command{
	Use:   "lex [file]",
	Short: "Tokenize IFJ25 source and print one token per line",
	Long: `Run only the lexer and print the resulting token stream, one token
per line (mirrors the teacher's cmd lex.go). Useful for golden-file
testing of tokenization in isolation, including the prologue tokens
themselves.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLex,
}

func init() {
	rootCmd.AddCommand(lexCmd)
	lexCmd.Flags().BoolVar(&showPos, "show-pos", false, "show token positions (line:column)")
}

func runLex(cmd *cobra.Command, args []string) error {
	in, file, closeFn, err := openInput(args)
	if err != nil {
		return err
	}
	defer closeFn()

	l := lexer.New(in, file)
	for {
		tok, lerr := l.Next()
		if lerr != nil {
			fmt.Fprintln(os.Stderr, lerr.Format(true))
			os.Exit(lerr.ExitCode())
		}
		printToken(tok)
		if tok.Type == lexer.EOF {
			break
		}
	}
	return nil
}

// printToken renders one token for the `ifjc lex` dump. Any payload
// string is run through golang.org/x/text/width.Fold so a source file
// containing fullwidth-form characters (a legal IDENT byte sequence is
// undefined for anything above ASCII, but string literal contents are
// unrestricted) prints in its canonical narrow form rather than however
// the terminal happens to render the raw bytes.
func printToken(tok lexer.Token) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%-12s", tok.Type)
	if tok.HasPayload {
		fmt.Fprintf(&sb, " %q", width.Fold.String(tok.Literal()))
	}
	if showPos {
		fmt.Fprintf(&sb, " @%d:%d", tok.Line, tok.Column)
	}
	fmt.Println(sb.String())
}
