package at

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Tokenizer errors
var (
	ErrPrefixMismatch    = errors.New("line does not start with the expected prefix")
	ErrNoMoreTokens      = errors.New("no more tokens")
	ErrUnterminatedQuote = errors.New("unterminated quoted string")
	ErrMalformedToken    = errors.New("malformed token")
	ErrNotANumber        = errors.New("not a number")
)

// TokenKind is the variant of a Token.
type TokenKind byte

// All token kinds
const (
	BareString TokenKind = iota
	QuotedString
	Integer
)

func (k TokenKind) String() string {
	switch k {
	case BareString:
		return "bare string"
	case QuotedString:
		return "quoted string"
	case Integer:
		return "integer"
	default:
		return "unknown"
	}
}

// Token is one comma separated field of a response line.
type Token struct {
	Kind TokenKind
	Text string
	Int  int
}

// TokenizeStart checks that the line starts with the given prefix and returns the remainder.
func TokenizeStart(line string, prefix string) (string, error) {
	if !strings.HasPrefix(line, prefix) {
		return "", fmt.Errorf("%w: %q expected in %q", ErrPrefixMismatch, prefix, line)
	}
	return line[len(prefix):], nil
}

// HasMore reports whether the remainder contains another token.
func HasMore(rest string) bool {
	return rest != ""
}

// NextToken extracts the next field from the remainder. Quoted fields keep commas, unquoted
// fields that consist only of a decimal number are returned as Integer.
func NextToken(rest string) (Token, string, error) {
	if rest == "" {
		return Token{}, "", ErrNoMoreTokens
	}
	s := strings.TrimLeft(rest, " ")

	if strings.HasPrefix(s, `"`) {
		end := strings.IndexByte(s[1:], '"')
		if end == -1 {
			return Token{}, "", fmt.Errorf("%w: %s", ErrUnterminatedQuote, s)
		}
		text := s[1 : end+1]
		tail := strings.TrimLeft(s[end+2:], " ")
		switch {
		case tail == "":
			return Token{Kind: QuotedString, Text: text}, "", nil
		case tail[0] == ',':
			return Token{Kind: QuotedString, Text: text}, nextField(tail[1:]), nil
		default:
			return Token{}, "", fmt.Errorf("%w: %s", ErrMalformedToken, s)
		}
	}

	var text string
	var tail string
	if comma := strings.IndexByte(s, ','); comma == -1 {
		text = s
	} else {
		text = s[:comma]
		tail = nextField(s[comma+1:])
	}
	text = strings.TrimRight(text, " ")

	if n, err := strconv.Atoi(text); err == nil {
		return Token{Kind: Integer, Text: text, Int: n}, tail, nil
	}
	return Token{Kind: BareString, Text: text}, tail, nil
}

// nextField keeps an empty trailing field visible: "1," has two fields, the second one empty.
func nextField(s string) string {
	if s == "" {
		return " "
	}
	return s
}

// NextString extracts the next field as string, regardless if it is quoted or not.
func NextString(rest string) (string, string, error) {
	token, tail, err := NextToken(rest)
	if err != nil {
		return "", rest, err
	}
	return token.Text, tail, nil
}

// NextInt extracts the next field as decimal integer.
func NextInt(rest string) (int, string, error) {
	token, tail, err := NextToken(rest)
	if err != nil {
		return 0, rest, err
	}
	if token.Kind != Integer {
		return 0, rest, fmt.Errorf("%w: %q", ErrNotANumber, token.Text)
	}
	return token.Int, tail, nil
}

// NextHexInt extracts the next field as hexadecimal integer.
func NextHexInt(rest string) (int, string, error) {
	token, tail, err := NextToken(rest)
	if err != nil {
		return 0, rest, err
	}
	n, err := strconv.ParseInt(token.Text, 16, 64)
	if err != nil {
		return 0, rest, fmt.Errorf("%w: %q", ErrNotANumber, token.Text)
	}
	return int(n), tail, nil
}

// SkipNext drops the next field.
func SkipNext(rest string) (string, error) {
	_, tail, err := NextToken(rest)
	if err != nil {
		return rest, err
	}
	return tail, nil
}

// Tokenize splits the given line into all its tokens after the prefix.
func Tokenize(line string, prefix string) ([]Token, error) {
	rest, err := TokenizeStart(line, prefix)
	if err != nil {
		return nil, err
	}
	var result []Token
	for HasMore(rest) {
		var token Token
		token, rest, err = NextToken(rest)
		if err != nil {
			return nil, err
		}
		result = append(result, token)
	}
	return result, nil
}

// Scanner walks through the tokens of one line. The first error sticks, all following
// calls return zero values.
type Scanner struct {
	rest string
	err  error
}

// NewScanner starts scanning the given line after the prefix.
func NewScanner(line string, prefix string) *Scanner {
	rest, err := TokenizeStart(line, prefix)
	return &Scanner{rest: rest, err: err}
}

// Text returns the next field as string.
func (s *Scanner) Text() string {
	if s.err != nil {
		return ""
	}
	var result string
	result, s.rest, s.err = NextString(s.rest)
	return result
}

// Int returns the next field as decimal integer.
func (s *Scanner) Int() int {
	if s.err != nil {
		return 0
	}
	var result int
	result, s.rest, s.err = NextInt(s.rest)
	return result
}

// Skip drops the next field.
func (s *Scanner) Skip() {
	if s.err != nil {
		return
	}
	s.rest, s.err = SkipNext(s.rest)
}

// More reports whether another field is available.
func (s *Scanner) More() bool {
	return s.err == nil && HasMore(s.rest)
}

// Err returns the first error that occurred.
func (s *Scanner) Err() error {
	return s.err
}
