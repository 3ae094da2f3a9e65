// Package diagnostics defines quill diagnostic types for reader,
// rewrite, and evaluation errors.
package diagnostics

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Diagnostic code constants.
const (
	ELex             = "E_LEX"
	EParse           = "E_PARSE"
	EUnbound         = "E_UNBOUND"
	EInvalidUnquote  = "E_INVALID_UNQUOTE"
	EAmbiguousTarget = "E_AMBIGUOUS_TARGET"
	ESpliceType      = "E_SPLICE_TYPE"
	EStaleCapture    = "E_STALE_CAPTURE"
	EUnknownOp       = "E_UNKNOWN_OP"
	EOpArgs          = "E_OP_ARGS"
	EType            = "E_TYPE"
)

// Diagnostic represents a reader, rewrite, or evaluation diagnostic.
type Diagnostic struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Line    int    `json:"line,omitempty"`
	Col     int    `json:"col,omitempty"`
	Hint    string `json:"hint,omitempty"`
}

// MakeDiag creates a new Diagnostic.
func MakeDiag(code, message string, line, col int, hint string) Diagnostic {
	return Diagnostic{
		Code:    code,
		Message: message,
		Line:    line,
		Col:     col,
		Hint:    hint,
	}
}

// FormatDiagnostic formats a single diagnostic for display.
func FormatDiagnostic(d Diagnostic, pretty bool) string {
	if !pretty {
		b, _ := json.Marshal(d)
		return string(b)
	}
	out := fmt.Sprintf("error[%s]: %s", d.Code, d.Message)
	if d.Line > 0 {
		out += fmt.Sprintf("\n  --> %d:%d", d.Line, d.Col)
	}
	if d.Hint != "" {
		out += fmt.Sprintf("\n  hint: %s", d.Hint)
	}
	return out
}

// FormatDiagnostics formats a slice of diagnostics for display.
func FormatDiagnostics(diags []Diagnostic, pretty bool) string {
	if !pretty {
		b, _ := json.Marshal(diags)
		return string(b)
	}
	parts := make([]string, len(diags))
	for i, d := range diags {
		parts[i] = FormatDiagnostic(d, true)
	}
	return strings.Join(parts, "\n\n")
}
