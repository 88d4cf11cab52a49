package pdfgraph

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// maxNesting bounds array/dictionary recursion on hostile input.
const maxNesting = 256

// lexer parses PDF objects from a byte slice starting at pos.
type lexer struct {
	data []byte
	pos  int
}

func isWhitespace(c byte) bool {
	switch c {
	case 0, '\t', '\n', '\f', '\r', ' ':
		return true
	}
	return false
}

func isDelimiter(c byte) bool {
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

func isRegular(c byte) bool {
	return !isWhitespace(c) && !isDelimiter(c)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// skipSpace advances past whitespace and comments.
func (l *lexer) skipSpace() {
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		switch {
		case isWhitespace(c):
			l.pos++
		case c == '%':
			for l.pos < len(l.data) && l.data[l.pos] != '\n' && l.data[l.pos] != '\r' {
				l.pos++
			}
		default:
			return
		}
	}
}

// token reads a run of regular characters at the current position.
func (l *lexer) token() string {
	start := l.pos
	for l.pos < len(l.data) && isRegular(l.data[l.pos]) {
		l.pos++
	}
	return string(l.data[start:l.pos])
}

// peekKeyword returns the next regular token without consuming it.
func (l *lexer) peekKeyword() string {
	l.skipSpace()
	save := l.pos
	kw := l.token()
	l.pos = save
	return kw
}

// readKeyword consumes and returns the next regular token.
func (l *lexer) readKeyword() string {
	l.skipSpace()
	return l.token()
}

func (l *lexer) expectKeyword(want string) error {
	start := l.pos
	if got := l.readKeyword(); got != want {
		return fmt.Errorf("%w: expected %q, got %q at offset %d", ErrSyntax, want, got, start)
	}
	return nil
}

// readUint reads a non-negative decimal integer token.
func (l *lexer) readUint() (int, error) {
	l.skipSpace()
	start := l.pos
	tok := l.token()
	n, err := strconv.Atoi(tok)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: expected unsigned integer at offset %d, got %q", ErrSyntax, start, tok)
	}
	return n, nil
}

// parseObject parses one direct object.
func (l *lexer) parseObject(depth int) (Object, error) {
	if depth > maxNesting {
		return nil, fmt.Errorf("%w: nesting too deep at offset %d", ErrSyntax, l.pos)
	}
	l.skipSpace()
	if l.pos >= len(l.data) {
		return nil, fmt.Errorf("%w: unexpected end of data", ErrSyntax)
	}

	c := l.data[l.pos]
	switch {
	case c == '/':
		return l.parseName()
	case c == '(':
		return l.parseLiteral()
	case c == '<':
		if l.pos+1 < len(l.data) && l.data[l.pos+1] == '<' {
			return l.parseDict(depth)
		}
		return l.parseHex()
	case c == '[':
		return l.parseArray(depth)
	case c == '+' || c == '-' || c == '.' || isDigit(c):
		return l.parseNumberOrRef()
	}

	start := l.pos
	switch kw := l.token(); kw {
	case "true":
		return Boolean(true), nil
	case "false":
		return Boolean(false), nil
	case "null":
		return Null{}, nil
	case "":
		return nil, fmt.Errorf("%w: unexpected %q at offset %d", ErrSyntax, c, start)
	default:
		l.pos = start
		return nil, fmt.Errorf("%w: unexpected keyword %q at offset %d", ErrSyntax, kw, start)
	}
}

func (l *lexer) parseName() (Object, error) {
	l.pos++ // '/'
	raw := l.token()
	if strings.IndexByte(raw, '#') < 0 {
		return Name(raw), nil
	}
	out := make([]byte, 0, len(raw))
	for i := 0; i < len(raw); i++ {
		if raw[i] == '#' && i+2 < len(raw) {
			if v, err := strconv.ParseUint(raw[i+1:i+3], 16, 8); err == nil {
				out = append(out, byte(v))
				i += 2
				continue
			}
		}
		out = append(out, raw[i])
	}
	return Name(out), nil
}

func (l *lexer) parseLiteral() (Object, error) {
	start := l.pos
	l.pos++ // '('
	var buf []byte
	depth := 1
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		l.pos++
		switch c {
		case '(':
			depth++
			buf = append(buf, c)
		case ')':
			depth--
			if depth == 0 {
				return String{Value: buf}, nil
			}
			buf = append(buf, c)
		case '\r':
			buf = append(buf, '\n')
			if l.pos < len(l.data) && l.data[l.pos] == '\n' {
				l.pos++
			}
		case '\\':
			buf = l.parseEscape(buf)
		default:
			buf = append(buf, c)
		}
	}
	return nil, fmt.Errorf("%w: unterminated string at offset %d", ErrSyntax, start)
}

// parseEscape decodes the escape sequence following a backslash.
func (l *lexer) parseEscape(buf []byte) []byte {
	if l.pos >= len(l.data) {
		return buf
	}
	c := l.data[l.pos]
	l.pos++
	switch c {
	case 'n':
		return append(buf, '\n')
	case 'r':
		return append(buf, '\r')
	case 't':
		return append(buf, '\t')
	case 'b':
		return append(buf, '\b')
	case 'f':
		return append(buf, '\f')
	case '\r':
		if l.pos < len(l.data) && l.data[l.pos] == '\n' {
			l.pos++
		}
		return buf
	case '\n':
		return buf
	}
	if c >= '0' && c <= '7' {
		v := int(c - '0')
		for i := 0; i < 2 && l.pos < len(l.data); i++ {
			d := l.data[l.pos]
			if d < '0' || d > '7' {
				break
			}
			v = v*8 + int(d-'0')
			l.pos++
		}
		return append(buf, byte(v))
	}
	// Unknown escapes and \( \) \\ keep the character itself.
	return append(buf, c)
}

func (l *lexer) parseHex() (Object, error) {
	start := l.pos
	l.pos++ // '<'
	var digits []byte
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		l.pos++
		switch {
		case c == '>':
			if len(digits)%2 == 1 {
				digits = append(digits, '0')
			}
			out := make([]byte, len(digits)/2)
			for i := range out {
				out[i] = unhex(digits[2*i])<<4 | unhex(digits[2*i+1])
			}
			return String{Value: out, Hex: true}, nil
		case isWhitespace(c):
		case isHexDigit(c):
			digits = append(digits, c)
		default:
			return nil, fmt.Errorf("%w: invalid hex string at offset %d", ErrSyntax, start)
		}
	}
	return nil, fmt.Errorf("%w: unterminated hex string at offset %d", ErrSyntax, start)
}

func isHexDigit(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func unhex(c byte) byte {
	switch {
	case isDigit(c):
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}

func (l *lexer) parseArray(depth int) (Object, error) {
	start := l.pos
	l.pos++ // '['
	arr := Array{}
	for {
		l.skipSpace()
		if l.pos >= len(l.data) {
			return nil, fmt.Errorf("%w: unterminated array at offset %d", ErrSyntax, start)
		}
		if l.data[l.pos] == ']' {
			l.pos++
			return arr, nil
		}
		obj, err := l.parseObject(depth + 1)
		if err != nil {
			return nil, err
		}
		arr = append(arr, obj)
	}
}

func (l *lexer) parseDict(depth int) (Object, error) {
	start := l.pos
	l.pos += 2 // '<<'
	d := Dict{}
	for {
		l.skipSpace()
		if l.pos >= len(l.data) {
			return nil, fmt.Errorf("%w: unterminated dictionary at offset %d", ErrSyntax, start)
		}
		if l.data[l.pos] == '>' && l.pos+1 < len(l.data) && l.data[l.pos+1] == '>' {
			l.pos += 2
			return d, nil
		}
		if l.data[l.pos] != '/' {
			return nil, fmt.Errorf("%w: dictionary key must be a name at offset %d", ErrSyntax, l.pos)
		}
		key, _ := l.parseName()
		value, err := l.parseObject(depth + 1)
		if err != nil {
			return nil, err
		}
		// A null value is equivalent to an absent entry.
		if _, isNull := value.(Null); isNull {
			continue
		}
		d[key.(Name)] = value
	}
}

// parseNumberOrRef parses a number, or an indirect reference "ID Gen R".
func (l *lexer) parseNumberOrRef() (Object, error) {
	start := l.pos
	tok := l.token()
	if id, err := strconv.Atoi(tok); err == nil {
		if isDigit(tok[0]) {
			if ref, ok := l.tryRef(id); ok {
				return ref, nil
			}
		}
		return Integer(id), nil
	}

	f, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid number %q at offset %d", ErrSyntax, tok, start)
	}
	return Real(f), nil
}

// tryRef looks ahead for "Gen R" after an object number and restores the
// position when the lookahead does not match.
func (l *lexer) tryRef(id int) (Ref, bool) {
	save := l.pos
	l.skipSpace()
	genTok := l.token()
	gen, err := strconv.Atoi(genTok)
	if err != nil || genTok == "" || !isDigit(genTok[0]) {
		l.pos = save
		return Ref{}, false
	}
	l.skipSpace()
	if l.pos < len(l.data) && l.data[l.pos] == 'R' &&
		(l.pos+1 == len(l.data) || !isRegular(l.data[l.pos+1])) {
		l.pos++
		return Ref{ID: id, Gen: gen}, true
	}
	l.pos = save
	return Ref{}, false
}

// lengthResolver returns the integer value of an indirect /Length.
type lengthResolver func(Ref) (int, bool)

// parseIndirect parses "ID Gen obj ... endobj", including stream data.
func (l *lexer) parseIndirect(resolve lengthResolver) (id, gen int, obj Object, err error) {
	if id, err = l.readUint(); err != nil {
		return 0, 0, nil, err
	}
	if gen, err = l.readUint(); err != nil {
		return 0, 0, nil, err
	}
	if err = l.expectKeyword("obj"); err != nil {
		return 0, 0, nil, err
	}
	if obj, err = l.parseObject(0); err != nil {
		return 0, 0, nil, err
	}

	if l.peekKeyword() == "stream" {
		d, ok := obj.(Dict)
		if !ok {
			return 0, 0, nil, fmt.Errorf("%w: stream without dictionary in object %d", ErrSyntax, id)
		}
		l.skipSpace()
		l.pos += len("stream")
		if l.pos < len(l.data) && l.data[l.pos] == '\r' {
			l.pos++
		}
		if l.pos < len(l.data) && l.data[l.pos] == '\n' {
			l.pos++
		}
		data, err := l.streamData(d, resolve)
		if err != nil {
			return 0, 0, nil, fmt.Errorf("object %d: %w", id, err)
		}
		obj = &Stream{Dict: d, Data: data}
	}

	if l.peekKeyword() == "endobj" {
		l.readKeyword()
	}
	return id, gen, obj, nil
}

// streamData returns the raw stream bytes starting at the current position
// and leaves the lexer after "endstream". A wrong /Length falls back to
// searching for the endstream keyword.
func (l *lexer) streamData(d Dict, resolve lengthResolver) ([]byte, error) {
	start := l.pos
	length := -1
	switch v := d["Length"].(type) {
	case Integer:
		length = int(v)
	case Ref:
		if resolve != nil {
			if n, ok := resolve(v); ok {
				length = n
			}
		}
	}

	if length >= 0 && length <= len(l.data)-start {
		probe := &lexer{data: l.data, pos: start + length}
		if probe.readKeyword() == "endstream" {
			l.pos = probe.pos
			return l.data[start : start+length], nil
		}
	}

	idx := bytes.Index(l.data[start:], []byte("endstream"))
	if idx < 0 {
		return nil, fmt.Errorf("%w: unterminated stream at offset %d", ErrSyntax, start)
	}
	end := start + idx
	if end > start && l.data[end-1] == '\n' {
		end--
	}
	if end > start && l.data[end-1] == '\r' {
		end--
	}
	l.pos = start + idx + len("endstream")
	return l.data[start:end], nil
}
