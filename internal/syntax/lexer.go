package syntax

import (
	"strings"

	"github.com/sadopc/sqlhint/internal/dialect"
)

// Token is a lexical token. From and To are byte offsets into the text.
type Token struct {
	Kind Kind
	From int
	To   int
}

// Text returns the source text of the token.
func (t Token) Text(src string) string {
	return src[t.From:t.To]
}

// Tokenize splits text into tokens following the lexical rules of d.
// Whitespace is dropped; comments are kept. A nil dialect means
// dialect.StandardSQL.
func Tokenize(text string, d *dialect.Dialect) []Token {
	if d == nil {
		d = dialect.StandardSQL
	}
	l := &lexer{input: text, d: d, spec: d.Spec()}
	var toks []Token
	for {
		tok, ok := l.next()
		if !ok {
			return toks
		}
		toks = append(toks, tok)
	}
}

// lexer scans one text. pos is the offset of the next unread byte.
type lexer struct {
	input string
	pos   int
	d     *dialect.Dialect
	spec  dialect.Spec
}

const eof = -1

// peek returns the byte n positions past the read offset, or eof.
func (l *lexer) peek(n int) int {
	i := l.pos + n
	if i < 0 || i >= len(l.input) {
		return eof
	}
	return int(l.input[i])
}

func (l *lexer) cur() int { return l.peek(0) }

func (l *lexer) advance(n int) {
	l.pos += n
	if l.pos > len(l.input) {
		l.pos = len(l.input)
	}
}

func isSpace(ch int) bool {
	return ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n'
}

func isDigit(ch int) bool { return ch >= '0' && ch <= '9' }

func isHexDigit(ch int) bool {
	return isDigit(ch) || ch >= 'a' && ch <= 'f' || ch >= 'A' && ch <= 'F'
}

// isWord reports whether ch can be part of a word. Bytes of multi-byte UTF-8
// sequences count as word bytes.
func isWord(ch int) bool {
	return ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z' || isDigit(ch) || ch == '_' || ch >= 0x80
}

func (l *lexer) next() (Token, bool) {
	for isSpace(l.cur()) {
		l.advance(1)
	}
	start := l.pos
	if start >= len(l.input) {
		return Token{}, false
	}
	kind := l.scan()
	if l.pos == start {
		// never stall on a byte nothing claims
		l.advance(1)
		kind = Punctuation
	}
	return Token{Kind: kind, From: start, To: l.pos}, true
}

// scan consumes one token starting at l.pos and returns its kind. Branches
// that turn out not to apply rewind to the start and fall through.
func (l *lexer) scan() Kind {
	start := l.pos
	ch, nx := l.cur(), l.peek(1)
	l.advance(1)

	switch {
	case ch == '$' && l.spec.DoubleDollarQuotedStrings:
		tag := l.readWord()
		if l.cur() == '$' {
			l.advance(1)
			l.readDollarQuoted(tag)
			return String
		}
		l.pos = start + 1

	case ch == '\'' || ch == '"' && l.spec.DoubleQuotedStrings:
		l.readQuoted(byte(ch), l.spec.BackslashEscapes)
		return String

	case ch == '#' && l.spec.HashComments, ch == '/' && nx == '/' && l.spec.SlashComments:
		l.readLine()
		return LineComment

	case ch == '-' && nx == '-' && (!l.spec.SpaceAfterDashes || l.peek(1) == ' '):
		l.readLine()
		return LineComment

	case ch == '/' && nx == '*':
		l.advance(1)
		l.readBlockComment()
		return BlockComment

	case (ch == 'e' || ch == 'E') && nx == '\'':
		l.advance(1)
		l.readQuoted('\'', true)
		return String

	case (ch == 'n' || ch == 'N') && nx == '\'' && l.spec.CharSetCasts:
		l.advance(1)
		l.readQuoted('\'', l.spec.BackslashEscapes)
		return String

	case ch == '_' && l.spec.CharSetCasts:
		for i := 0; ; i++ {
			if l.cur() == '\'' && i > 1 {
				l.advance(1)
				l.readQuoted('\'', l.spec.BackslashEscapes)
				return String
			}
			if !isWord(l.cur()) || l.cur() == '_' {
				break
			}
			l.advance(1)
		}
		l.pos = start + 1

	case (ch == 'q' || ch == 'Q') && nx == '\'' && l.spec.PLSQLQuotingMechanism &&
		l.peek(1) != eof && !isSpace(l.peek(1)):
		open := byte(l.peek(1))
		l.advance(2)
		l.readPLSQLQuoted(open)
		return String
	}

	if ch == '[' && l.d.IsIdentifierQuote('[') {
		l.readQuoted(']', false)
		return QuotedIdentifier
	}

	switch ch {
	case '(':
		return ParenL
	case ')':
		return ParenR
	case '{':
		return BraceL
	case '}':
		return BraceR
	case '[':
		return BracketL
	case ']':
		return BracketR
	case ';':
		return Semi
	}

	switch {
	case ch == '0' && nx == 'b' && l.spec.UnquotedBitLiterals:
		l.advance(1)
		l.readBits(0)
		return Bits

	case (ch == 'b' || ch == 'B') && (nx == '\'' || nx == '"'):
		l.advance(1)
		if l.spec.TreatBitsAsBytes {
			l.readQuoted(byte(nx), l.spec.BackslashEscapes)
			return Bytes
		}
		l.readBits(byte(nx))
		return Bits

	case ch == '0' && (nx == 'x' || nx == 'X'), (ch == 'x' || ch == 'X') && nx == '\'':
		quoted := nx == '\''
		l.advance(1)
		for isHexDigit(l.cur()) {
			l.advance(1)
		}
		if quoted && l.cur() == '\'' {
			l.advance(1)
		}
		return Number

	case ch == '.' && isDigit(nx):
		l.readNumber(true)
		return Number

	case ch == '.':
		return Dot

	case isDigit(ch):
		l.readNumber(false)
		return Number

	case ch < 0x80 && l.d.IsOperatorChar(byte(ch)):
		for c := l.cur(); c != eof && c < 0x80 && l.d.IsOperatorChar(byte(c)); c = l.cur() {
			l.advance(1)
		}
		return Operator

	case ch < 0x80 && l.d.IsSpecialVarChar(byte(ch)):
		if l.cur() == ch {
			l.advance(1)
		}
		l.readWordOrQuoted()
		return SpecialVar

	case ch < 0x80 && l.d.IsIdentifierQuote(byte(ch)):
		l.readQuoted(byte(ch), false)
		return QuotedIdentifier

	case ch == ':' || ch == ',':
		return Punctuation

	case isWord(ch):
		l.readWord()
		return l.classifyWord(start)
	}

	return Punctuation
}

// classifyWord decides the kind of the word from start to l.pos. A word
// next to a dot is always a name.
func (l *lexer) classifyWord(start int) Kind {
	if l.cur() == '.' || start > 0 && l.input[start-1] == '.' {
		return Identifier
	}
	c, ok := l.d.Word(strings.ToLower(l.input[start:l.pos]))
	if !ok {
		return Identifier
	}
	switch c {
	case dialect.Keyword:
		return Keyword
	case dialect.Type:
		return Type
	case dialect.Builtin:
		return Builtin
	case dialect.Bool:
		return Bool
	case dialect.Null:
		return Null
	}
	return Identifier
}

func (l *lexer) readWord() string {
	start := l.pos
	for isWord(l.cur()) {
		l.advance(1)
	}
	return l.input[start:l.pos]
}

func (l *lexer) readWordOrQuoted() {
	switch q := l.cur(); q {
	case '\'', '"', '`':
		l.advance(1)
		l.readQuoted(byte(q), false)
	default:
		l.readWord()
	}
}

// readQuoted reads up to and including the closing quote. Unterminated
// literals run to the end of the input.
func (l *lexer) readQuoted(quote byte, backslashEscapes bool) {
	escaped := false
	for {
		c := l.cur()
		if c == eof {
			return
		}
		if c == int(quote) && !escaped {
			l.advance(1)
			return
		}
		escaped = backslashEscapes && !escaped && c == '\\'
		l.advance(1)
	}
}

func (l *lexer) readDollarQuoted(tag string) {
	for {
		c := l.cur()
		if c == eof {
			return
		}
		l.advance(1)
		if c != '$' {
			continue
		}
		if strings.HasPrefix(l.input[l.pos:], tag+"$") {
			l.advance(len(tag) + 1)
			return
		}
	}
}

func (l *lexer) readPLSQLQuoted(open byte) {
	closing := open
	if i := strings.IndexByte("[{<(", open); i >= 0 {
		closing = "]}>)"[i]
	}
	for {
		c := l.cur()
		if c == eof {
			return
		}
		if c == int(closing) && l.peek(1) == '\'' {
			l.advance(2)
			return
		}
		l.advance(1)
	}
}

func (l *lexer) readBits(quote byte) {
	for c := l.cur(); c == '0' || c == '1'; c = l.cur() {
		l.advance(1)
	}
	if quote != 0 && l.cur() == int(quote) {
		l.advance(1)
	}
}

func (l *lexer) readNumber(sawDot bool) {
	for {
		c := l.cur()
		if c == '.' {
			if sawDot {
				break
			}
			sawDot = true
		} else if !isDigit(c) {
			break
		}
		l.advance(1)
	}
	if c := l.cur(); c == 'e' || c == 'E' {
		l.advance(1)
		if c := l.cur(); c == '+' || c == '-' {
			l.advance(1)
		}
		for isDigit(l.cur()) {
			l.advance(1)
		}
	}
}

func (l *lexer) readLine() {
	for c := l.cur(); c != eof && c != '\n'; c = l.cur() {
		l.advance(1)
	}
}

// readBlockComment reads a possibly nested block comment after the opening
// "/*".
func (l *lexer) readBlockComment() {
	for depth := 1; depth > 0; {
		c := l.cur()
		if c == eof {
			return
		}
		l.advance(1)
		switch {
		case c == '*' && l.cur() == '/':
			l.advance(1)
			depth--
		case c == '/' && l.cur() == '*':
			l.advance(1)
			depth++
		}
	}
}
