package token

import (
	"fmt"
)

const (
	EOF = -(iota + 1)
	Error
	Identifier
	String
	Integer
	Float
)

const (
	Comma  = ','
	Dot    = '.'
	LParen = '('
	RParen = ')'
	LBrace = '{'
	RBrace = '}'
)

var names = map[rune]string{
	EOF:        "end of input",
	Error:      "error",
	Identifier: "identifier",
	String:     "string",
	Integer:    "integer",
	Float:      "float",
}

func Format(r rune) string {
	if r > 0 {
		return fmt.Sprintf("rune %c", r)
	}
	if s, ok := names[r]; ok {
		return s
	}
	return fmt.Sprintf("token %d", r)
}
