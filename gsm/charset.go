package gsm

import (
	"context"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"github.com/ftl/atmodem/at"
)

// Charset is the TE character set according to [27.007] 5.5. It converts text parameters
// between UTF-8 and the representation that is used along the AT interface.
type Charset struct {
	Name     string
	encoding encoding.Encoding
	hex      bool
}

// Character sets that pass text through unchanged. GSM only works for the ASCII subset of the
// GSM 7 bit default alphabet.
var (
	IRA  = Charset{Name: "IRA", encoding: encoding.Nop}
	GSM  = Charset{Name: "GSM", encoding: encoding.Nop}
	UTF8 = Charset{Name: "UTF-8", encoding: encoding.Nop}
)

// UCS2 transfers 16 bit characters as hex string
var UCS2 = Charset{Name: "UCS2", encoding: unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM), hex: true}

// CharsetsByName contains all supported character sets by their name in AT+CSCS.
var CharsetsByName = map[string]Charset{
	IRA.Name:  IRA,
	GSM.Name:  GSM,
	UTF8.Name: UTF8,
	UCS2.Name: UCS2,
	"HEX":     {Name: "HEX", encoding: encoding.Nop, hex: true},
	"8859-1":  {Name: "8859-1", encoding: charmap.ISO8859_1},
	"8859-2":  {Name: "8859-2", encoding: charmap.ISO8859_2},
	"8859-3":  {Name: "8859-3", encoding: charmap.ISO8859_3},
	"8859-4":  {Name: "8859-4", encoding: charmap.ISO8859_4},
	"8859-5":  {Name: "8859-5", encoding: charmap.ISO8859_5},
	"8859-6":  {Name: "8859-6", encoding: charmap.ISO8859_6},
	"8859-7":  {Name: "8859-7", encoding: charmap.ISO8859_7},
	"8859-8":  {Name: "8859-8", encoding: charmap.ISO8859_8},
	"8859-9":  {Name: "8859-9", encoding: charmap.ISO8859_9},
	"8859-10": {Name: "8859-10", encoding: charmap.ISO8859_10},
	"8859-13": {Name: "8859-13", encoding: charmap.ISO8859_13},
	"8859-14": {Name: "8859-14", encoding: charmap.ISO8859_14},
	"8859-15": {Name: "8859-15", encoding: charmap.ISO8859_15},
	"PCCP437": {Name: "PCCP437", encoding: charmap.CodePage437},
	"PCCP850": {Name: "PCCP850", encoding: charmap.CodePage850},
	"PCCP852": {Name: "PCCP852", encoding: charmap.CodePage852},
	"PCCP866": {Name: "PCCP866", encoding: charmap.CodePage866},
}

// CharsetByName returns the Charset with the given name
func CharsetByName(name string) (Charset, error) {
	sanitized := strings.ToUpper(strings.TrimSpace(name))
	result, ok := CharsetsByName[sanitized]
	if !ok {
		return Charset{}, fmt.Errorf("%w: unsupported character set %s", ErrInvalidArgument, name)
	}
	return result, nil
}

func (c Charset) String() string {
	return c.Name
}

// Encode converts the given UTF-8 text into the representation of this character set.
func (c Charset) Encode(s string) (string, error) {
	encoded, err := c.codec().NewEncoder().String(s)
	if err != nil {
		return "", fmt.Errorf("cannot encode %q as %s: %w", s, c.Name, err)
	}
	if c.hex {
		return BinaryToHex([]byte(encoded)), nil
	}
	return encoded, nil
}

// Decode converts the given text from the representation of this character set into UTF-8.
func (c Charset) Decode(s string) (string, error) {
	raw := []byte(s)
	if c.hex {
		var err error
		raw, err = HexToBinary(s)
		if err != nil {
			return "", fmt.Errorf("cannot decode %q as %s: %w", s, c.Name, err)
		}
	}
	decoded, err := c.codec().NewDecoder().Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("cannot decode %q as %s: %w", s, c.Name, err)
	}
	return string(decoded), nil
}

func (c Charset) codec() encoding.Encoding {
	if c.encoding == nil {
		return encoding.Nop
	}
	return c.encoding
}

var hexSanitizer = regexp.MustCompile(`\s+`)

// HexToBinary converts the hex representation used along the AT interface for binary data into a slice of bytes
func HexToBinary(s string) ([]byte, error) {
	sanitized := hexSanitizer.ReplaceAllString(s, "")
	return hex.DecodeString(sanitized)
}

// BinaryToHex converts a slice of bytes into the hex representation used along the AT interface for binary data
func BinaryToHex(data []byte) string {
	return strings.ToUpper(hex.EncodeToString(data))
}

// SetCharacterSet selects the TE character set according to [27.007] 5.5 and uses it for all
// following text parameters.
func (m *Modem) SetCharacterSet(ctx context.Context, name string) error {
	charset, err := CharsetByName(name)
	if err != nil {
		return err
	}
	// the name itself is always sent in the character set that is currently active
	encodedName, err := m.charset.Encode(charset.Name)
	if err != nil {
		return err
	}
	err = m.channel.Send(ctx, fmt.Sprintf(`AT+CSCS="%s"`, encodedName))
	if err != nil {
		return err
	}
	m.charset = charset
	return nil
}

// GetCharacterSet reads the TE character set according to [27.007] 5.5.
func (m *Modem) GetCharacterSet(ctx context.Context) (Charset, error) {
	line, err := m.singleLine(ctx, "AT+CSCS?", "+CSCS:")
	if err != nil {
		return Charset{}, err
	}
	s := at.NewScanner(line, "+CSCS:")
	name := s.Text()
	if s.Err() != nil {
		return Charset{}, unexpectedResponse(line, s.Err())
	}
	decodedName, err := m.charset.Decode(name)
	if err != nil {
		return Charset{}, unexpectedResponse(line, err)
	}
	return CharsetByName(decodedName)
}
