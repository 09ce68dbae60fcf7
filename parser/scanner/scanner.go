package scanner

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"unicode"

	"github.com/leftmike/cubist/parser/token"
)

type Position struct {
	Filename string
	Line     int
	Column   int
}

type ScanCtx struct {
	Token      rune
	Error      error
	Identifier string
	// Quoted is set when the identifier was enclosed in square brackets.
	Quoted  bool
	String  string
	Integer int64
	Float   float64
	Position
}

type Scanner struct {
	initialized bool
	rr          io.RuneReader
	unread      bool
	read        rune
	filename    string
	line        int
	column      int
	buffer      bytes.Buffer
}

func (pos Position) String() string {
	s := pos.Filename
	if pos.Line > 0 {
		s += fmt.Sprintf(":%d:%d", pos.Line, pos.Column)
	}
	return s
}

func (s *Scanner) Init(rr io.RuneReader, fn string) {
	if s.initialized {
		panic("scanner already initialized")
	}
	s.initialized = true

	s.rr = rr
	s.filename = fn
	s.line = 1
}

func (s *Scanner) Scan(sctx *ScanCtx) {
	s.buffer.Reset()
	sctx.Filename = s.filename
	sctx.Line = s.line
	sctx.Column = s.column
	sctx.Quoted = false
	sctx.Token = s.scan(sctx)
}

func (s *Scanner) scan(sctx *ScanCtx) rune {
SkipWhitespace:
	r := s.readRune(sctx)

	for {
		if r < 0 {
			return r
		}
		if !unicode.IsSpace(r) {
			break
		}

		r = s.readRune(sctx)
	}

	if r == '-' || r == '/' {
		if r2 := s.readRune(sctx); r2 == r {
			if !s.skipLine(sctx) {
				return token.EOF
			}
			goto SkipWhitespace
		} else if r == '/' && r2 == '*' {
			var p rune
			for {
				r2 = s.readRune(sctx)
				if r2 < 0 {
					sctx.Error = fmt.Errorf("scanner: comment missing terminating */")
					return token.Error
				}
				if p == '*' && r2 == '/' {
					break
				}
				p = r2
			}
			goto SkipWhitespace
		} else if r2 == token.Error {
			return r2
		} else if r2 != token.EOF {
			s.unreadRune()
		}
	}

	sctx.Column = s.column
	sctx.Line = s.line

	if unicode.IsLetter(r) || r == '_' {
		return s.scanIdentifier(sctx, r)
	} else if unicode.IsDigit(r) {
		return s.scanNumber(sctx, r, 1)
	} else if r == '-' {
		r = s.readRune(sctx)
		if unicode.IsDigit(r) {
			return s.scanNumber(sctx, r, -1)
		}
		sctx.Error = fmt.Errorf("scanner: unexpected character '-'")
		return token.Error
	} else if r == '[' {
		return s.scanQuotedIdentifier(sctx)
	} else if r == '\'' || r == '"' {
		return s.scanString(sctx, r)
	}

	switch r {
	case token.Comma, token.Dot, token.LParen, token.RParen, token.LBrace, token.RBrace:
		return r
	}

	sctx.Error = fmt.Errorf("scanner: unexpected character '%c'", r)
	return token.Error
}

func (s *Scanner) skipLine(sctx *ScanCtx) bool {
	for {
		r := s.readRune(sctx)
		if r < 0 {
			return false
		}
		if r == '\n' {
			return true
		}
	}
}

func (s *Scanner) readRune(sctx *ScanCtx) rune {
	if s.unread {
		s.unread = false
		return s.read
	}

	var err error
	s.read, _, err = s.rr.ReadRune()
	if err == io.EOF {
		s.read = token.EOF
		return token.EOF
	} else if err != nil {
		sctx.Error = err
		s.read = token.Error
		return token.Error
	}

	if s.read == '\n' {
		s.line += 1
		s.column = 0
	} else {
		s.column += 1
	}

	return s.read
}

func (s *Scanner) unreadRune() {
	s.unread = true
}

func (s *Scanner) scanIdentifier(sctx *ScanCtx, r rune) rune {
	for {
		s.buffer.WriteRune(r)
		r = s.readRune(sctx)
		if r == token.EOF {
			break
		} else if r == token.Error {
			return token.Error
		}
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' && r != '$' {
			s.unreadRune()
			break
		}
	}

	sctx.Identifier = s.buffer.String()
	return token.Identifier
}

func (s *Scanner) scanNumber(sctx *ScanCtx, r rune, sign int64) rune {
	dbl := false
	for {
		s.buffer.WriteRune(r)
		r = s.readRune(sctx)
		if r == token.EOF {
			break
		} else if r == token.Error {
			return token.Error
		}
		if !dbl && r == '.' {
			dbl = true
		} else if !unicode.IsDigit(r) {
			s.unreadRune()
			break
		}
	}

	var err error
	if dbl {
		sctx.Float, err = strconv.ParseFloat(s.buffer.String(), 64)
	} else {
		sctx.Integer, err = strconv.ParseInt(s.buffer.String(), 10, 64)
	}
	if err != nil {
		sctx.Error = err
		return token.Error
	}
	if dbl {
		sctx.Float *= float64(sign)
		return token.Float
	}
	sctx.Integer *= sign
	return token.Integer
}

// scanQuotedIdentifier scans [name]; a ']' in the name is written as "]]".
func (s *Scanner) scanQuotedIdentifier(sctx *ScanCtx) rune {
	for {
		r := s.readRune(sctx)
		if r == token.EOF {
			sctx.Error = fmt.Errorf("scanner: quoted identifier missing terminating ']'")
			return token.Error
		}
		if r == token.Error {
			return token.Error
		}
		if r == ']' {
			r = s.readRune(sctx)
			if r != ']' {
				if r == token.Error {
					return token.Error
				} else if r != token.EOF {
					s.unreadRune()
				}
				break
			}
		}
		s.buffer.WriteRune(r)
	}

	sctx.Identifier = s.buffer.String()
	sctx.Quoted = true
	return token.Identifier
}

// scanString scans a string delimited by delim; a delim in the string is written twice.
func (s *Scanner) scanString(sctx *ScanCtx, delim rune) rune {
	for {
		r := s.readRune(sctx)
		if r == token.EOF {
			sctx.Error = fmt.Errorf("scanner: string missing terminating %c", delim)
			return token.Error
		}
		if r == token.Error {
			return token.Error
		}
		if r == delim {
			r = s.readRune(sctx)
			if r != delim {
				if r == token.Error {
					return token.Error
				} else if r != token.EOF {
					s.unreadRune()
				}
				break
			}
		}
		s.buffer.WriteRune(r)
	}

	sctx.String = s.buffer.String()
	return token.String
}
