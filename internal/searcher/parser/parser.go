// Package parser turns boolean query strings into postfix (RPN) token
// sequences via the shunting-yard algorithm. Operators are the literal
// tokens AND, OR, NOT (case-sensitive); parentheses group; every other token
// is a search term.
package parser

import "strings"

const (
	OpAnd = "AND"
	OpOr  = "OR"
	OpNot = "NOT"
)

// precedence orders the operators: NOT binds tightest, OR loosest, so
// `a AND b OR c` parses as `(a AND b) OR c`.
var precedence = map[string]int{
	OpNot: 3,
	OpAnd: 2,
	OpOr:  1,
}

// IsOperator reports whether tok is one of AND, OR, NOT.
func IsOperator(tok string) bool {
	_, ok := precedence[tok]
	return ok
}

// Tokenize splits a query into terms, operators, and parentheses. Parens are
// padded with spaces first so they always come out as separate tokens.
func Tokenize(query string) []string {
	query = strings.ReplaceAll(query, "(", " ( ")
	query = strings.ReplaceAll(query, ")", " ) ")
	return strings.Fields(query)
}

// ToPostfix converts an infix token sequence to postfix. A stray `)` without
// a matching `(` is silently dropped, matching the reference behavior of the
// original pipeline.
func ToPostfix(tokens []string) []string {
	output := make([]string, 0, len(tokens))
	var stack []string

	for _, tok := range tokens {
		switch {
		case tok == "(":
			stack = append(stack, tok)
		case tok == ")":
			for len(stack) > 0 && stack[len(stack)-1] != "(" {
				output = append(output, stack[len(stack)-1])
				stack = stack[:len(stack)-1]
			}
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		case IsOperator(tok):
			for len(stack) > 0 {
				top := stack[len(stack)-1]
				if top == "(" || precedence[top] < precedence[tok] {
					break
				}
				// NOT is right-associative: stacked NOTs stay put so
				// `NOT NOT t` nests instead of underflowing.
				if tok == OpNot && precedence[top] == precedence[tok] {
					break
				}
				output = append(output, top)
				stack = stack[:len(stack)-1]
			}
			stack = append(stack, tok)
		default:
			output = append(output, tok)
		}
	}

	for len(stack) > 0 {
		output = append(output, stack[len(stack)-1])
		stack = stack[:len(stack)-1]
	}
	return output
}

// Parse tokenizes a query and returns its postfix form.
func Parse(query string) []string {
	return ToPostfix(Tokenize(query))
}
