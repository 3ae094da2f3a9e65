// Command quill is the native quill CLI entry point.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"git.sr.ht/~sircmpwn/getopt"
	"github.com/fatih/color"
	"github.com/peterh/liner"

	"github.com/quillang/quill/pkg/diagnostics"
	"github.com/quillang/quill/pkg/evaluator"
	"github.com/quillang/quill/pkg/printer"
	"github.com/quillang/quill/pkg/quote"
	"github.com/quillang/quill/pkg/reader"
	"github.com/quillang/quill/pkg/verbs"
)

const historyFile = ".quill_history"

var (
	errText   = color.New(color.FgRed).SprintFunc()
	envText   = color.New(color.FgBlue).SprintFunc()
	valueText = color.New(color.FgGreen).SprintFunc()
)

func main() {
	if len(os.Args) < 2 {
		os.Exit(cmdRepl(nil))
	}

	cmd := os.Args[1]
	switch cmd {
	case "repl":
		os.Exit(cmdRepl(os.Args[2:]))
	case "run":
		os.Exit(cmdRun(os.Args[2:]))
	case "check":
		os.Exit(cmdCheck(os.Args[2:]))
	case "help", "--help", "-h":
		fmt.Println("usage: quill [repl | run <file> | check <file>]")
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		os.Exit(1)
	}
}

func cmdRun(args []string) int {
	jsonOut := false
	pretty := false
	opts, optind, err := getopt.Getopts(args, "jp")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	for _, opt := range opts {
		switch opt.Option {
		case 'j':
			jsonOut = true
		case 'p':
			pretty = true
		}
	}
	args = args[optind:]
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: quill run [-j] [-p] <file>")
		return 1
	}

	src, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	forms, diags := reader.ReadAll(string(src))
	if len(diags) > 0 {
		fmt.Fprintln(os.Stderr, diagnostics.FormatDiagnostics(diags, pretty))
		return 1
	}

	ev := verbs.DefaultEvaluator()
	env := evaluator.NewGlobalEnv()
	var last evaluator.Value
	for _, form := range forms {
		rewritten, err := quote.Rewrite(ev, form, env)
		if err != nil {
			return reportError(err, pretty)
		}
		last, err = ev.Eval(rewritten, env)
		if err != nil {
			return reportError(err, pretty)
		}
	}
	if last != nil {
		if jsonOut {
			b, err := evaluator.ValueToJSON(last)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				return 1
			}
			fmt.Println(string(b))
		} else {
			fmt.Println(formatResult(last, false))
		}
	}
	return 0
}

func cmdCheck(args []string) int {
	pretty := false
	opts, optind, err := getopt.Getopts(args, "p")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	for _, opt := range opts {
		if opt.Option == 'p' {
			pretty = true
		}
	}
	args = args[optind:]
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: quill check [-p] <file>")
		return 1
	}

	src, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	_, diags := reader.ReadAll(string(src))
	if len(diags) > 0 {
		fmt.Fprintln(os.Stderr, diagnostics.FormatDiagnostics(diags, pretty))
		return 1
	}
	fmt.Println("ok")
	return 0
}

func reportError(err error, pretty bool) int {
	var rt *evaluator.RuntimeError
	if errors.As(err, &rt) {
		fmt.Fprintln(os.Stderr, diagnostics.FormatDiagnostic(rt.Diag(), pretty))
		return 1
	}
	fmt.Fprintln(os.Stderr, err)
	return 1
}

func cmdRepl(_ []string) int {
	fmt.Println("quill quasiquotation playground (:quit to exit)")

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}

	ev := verbs.DefaultEvaluator()
	env := evaluator.NewGlobalEnv()

	for {
		code, ok := readByParseProbe(ln, "quill> ", "  ... ")
		if !ok {
			fmt.Println()
			return 0
		}
		trimmed := strings.TrimSpace(code)
		if trimmed == "" {
			continue
		}
		if trimmed == ":quit" {
			return 0
		}

		form, diags := reader.Read(code)
		if len(diags) > 0 {
			fmt.Fprintln(os.Stderr, errText(diagnostics.FormatDiagnostics(diags, true)))
			continue
		}
		rewritten, err := quote.Rewrite(ev, form, env)
		if err != nil {
			printREPLError(err)
			continue
		}
		val, err := ev.Eval(rewritten, env)
		if err != nil {
			printREPLError(err)
			continue
		}
		fmt.Println(formatResult(val, true))
		ln.AppendHistory(strings.ReplaceAll(code, "\n", " "))
	}
}

func printREPLError(err error) {
	var rt *evaluator.RuntimeError
	if errors.As(err, &rt) {
		fmt.Fprintln(os.Stderr, errText(diagnostics.FormatDiagnostic(rt.Diag(), true)))
		return
	}
	fmt.Fprintln(os.Stderr, errText(err.Error()))
}

func formatResult(v evaluator.Value, colored bool) string {
	switch x := v.(type) {
	case *evaluator.Quosure:
		out := printer.DisplayQuosure(x)
		if colored {
			out = strings.Replace(out, x.Env.Label(), envText(x.Env.Label()), 1)
		}
		return out
	case *evaluator.Handle:
		if t, ok := verbs.AsTable(v); ok {
			return verbs.FormatTable(t)
		}
		return printer.FormatValue(x)
	default:
		out := printer.FormatValue(v)
		if colored {
			out = valueText(out)
		}
		return out
	}
}

// readByParseProbe accumulates lines until the reader stops reporting
// an incomplete form.
func readByParseProbe(ln *liner.State, prompt, cont string) (string, bool) {
	var b strings.Builder
	for {
		var line string
		var err error
		if b.Len() == 0 {
			line, err = ln.Prompt(prompt)
		} else {
			line, err = ln.Prompt(cont)
		}
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if err != nil {
			return "", true
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if strings.TrimSpace(src) == "" {
			return src, true
		}
		if _, diags := reader.Read(src); reader.IsIncomplete(diags) {
			continue
		}
		return src, true
	}
}
