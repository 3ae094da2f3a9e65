package reader

import (
	"fmt"

	"github.com/quillang/quill/pkg/diagnostics"
)

// tokenize splits src into tokens. Whitespace and commas separate
// tokens; ';' comments run to end of line.
func tokenize(src string) ([]token, []diagnostics.Diagnostic) {
	var tokens []token
	var diags []diagnostics.Diagnostic
	line, col := 1, 1

	pos := 0
	for pos < len(src) {
		c := src[pos]
		switch {
		case c == '\n':
			pos++
			line++
			col = 1

		case c == ' ' || c == '\t' || c == '\r' || c == ',':
			pos++
			col++

		case c == ';':
			for pos < len(src) && src[pos] != '\n' {
				pos++
			}

		case c == '(':
			tokens = append(tokens, token{typ: tokLParen, text: "(", line: line, col: col})
			pos++
			col++

		case c == ')':
			tokens = append(tokens, token{typ: tokRParen, text: ")", line: line, col: col})
			pos++
			col++

		case c == '!' && pos+1 < len(src) && src[pos+1] == '!':
			if pos+2 < len(src) && src[pos+2] == '!' {
				tokens = append(tokens, token{typ: tokSplice, text: "!!!", line: line, col: col})
				pos += 3
				col += 3
			} else {
				tokens = append(tokens, token{typ: tokUnquote, text: "!!", line: line, col: col})
				pos += 2
				col += 2
			}

		case c == ':' && pos+1 < len(src) && src[pos+1] == '=':
			// ":=" is the name-substitution operator, a symbol.
			tokens = append(tokens, token{typ: tokSymbol, text: ":=", line: line, col: col})
			pos += 2
			col += 2

		case c == ':':
			start := pos + 1
			end := start
			for end < len(src) && isSymbolChar(src[end]) {
				end++
			}
			if end == start {
				diags = append(diags, diagnostics.MakeDiag(diagnostics.ELex,
					"expected a name after ':'", line, col, ""))
				return nil, diags
			}
			tokens = append(tokens, token{typ: tokKeyword, text: src[start:end], line: line, col: col})
			col += end - pos
			pos = end

		case c == '"':
			text, next, err := lexString(src, pos)
			if err != nil {
				diags = append(diags, diagnostics.MakeDiag(diagnostics.ELex, err.Error(), line, col, ""))
				return nil, diags
			}
			tokens = append(tokens, token{typ: tokString, text: text, line: line, col: col})
			col += next - pos
			pos = next

		case c >= '0' && c <= '9' || (c == '-' && pos+1 < len(src) && src[pos+1] >= '0' && src[pos+1] <= '9'):
			end := pos + 1
			for end < len(src) && (src[end] >= '0' && src[end] <= '9' || src[end] == '.' || src[end] == 'e' || src[end] == 'E' || src[end] == '+' || src[end] == '-') {
				end++
			}
			tokens = append(tokens, token{typ: tokNumber, text: src[pos:end], line: line, col: col})
			col += end - pos
			pos = end

		case isSymbolChar(c):
			end := pos
			for end < len(src) && isSymbolChar(src[end]) {
				end++
			}
			tokens = append(tokens, token{typ: tokSymbol, text: src[pos:end], line: line, col: col})
			col += end - pos
			pos = end

		default:
			diags = append(diags, diagnostics.MakeDiag(diagnostics.ELex,
				fmt.Sprintf("unexpected character %q", string(c)), line, col, ""))
			return nil, diags
		}
	}
	return tokens, diags
}

func lexString(src string, pos int) (string, int, error) {
	var out []byte
	wasSlash := false
	for i := pos + 1; i < len(src); i++ {
		c := src[i]
		if wasSlash {
			switch c {
			case 'n':
				out = append(out, '\n')
			case 't':
				out = append(out, '\t')
			case '"':
				out = append(out, '"')
			case '\\':
				out = append(out, '\\')
			default:
				out = append(out, c)
			}
			wasSlash = false
			continue
		}
		switch c {
		case '\\':
			wasSlash = true
		case '"':
			return string(out), i + 1, nil
		default:
			out = append(out, c)
		}
	}
	return "", pos, fmt.Errorf("unterminated string")
}

func isSymbolChar(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	case c == '_' || c == '.' || c == '-' || c == '+' || c == '*' || c == '/' ||
		c == '<' || c == '>' || c == '=' || c == '?':
		return true
	}
	return false
}
