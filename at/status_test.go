package at

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseFinal(t *testing.T) {
	tt := []struct {
		line  string
		final bool
		kind  Kind
		code  int
	}{
		{line: "OK", final: true, kind: NoError},
		{line: "ERROR", final: true, kind: GenericError},
		{line: "NO CARRIER", final: true, kind: GenericError},
		{line: "BUSY", final: true, kind: GenericError},
		{line: "NO ANSWER", final: true, kind: GenericError},
		{line: "NO DIALTONE", final: true, kind: GenericError},
		{line: "+CME ERROR: 10", final: true, kind: CMEError, code: 10},
		{line: "+CMS ERROR: 304", final: true, kind: CMSError, code: 304},
		{line: "+CME Error: 35", final: true, kind: CMEError, code: 35},
		{line: "+CME ERROR: SIM not inserted", final: true, kind: GenericError},
		{line: "+CSQ: 15,2", final: false},
		{line: "OKAY", final: false},
		{line: "RING", final: false},
		{line: "> ", final: false},
	}
	for _, tc := range tt {
		t.Run(tc.line, func(t *testing.T) {
			final, err := ParseFinal(tc.line)

			assert.Equal(t, tc.final, final)
			if !tc.final {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, tc.kind, KindOf(err))
			if tc.code != 0 {
				var atErr *Error
				assert.True(t, errors.As(err, &atErr))
				assert.Equal(t, tc.code, atErr.Code)
			}
		})
	}
}

func TestError_Is(t *testing.T) {
	err := fmt.Errorf("AT+CPIN?: %w", NewCMEError(10))

	assert.ErrorIs(t, err, ErrCME)
	assert.ErrorIs(t, err, NewCMEError(10))
	assert.NotErrorIs(t, err, NewCMEError(11))
	assert.NotErrorIs(t, err, ErrCMS)
	assert.NotErrorIs(t, err, ErrTimeout)
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("port unplugged")
	err := &Error{Kind: ChannelClosed, Err: cause}

	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "channel closed: port unplugged", err.Error())
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, NoError, KindOf(nil))
	assert.Equal(t, Timeout, KindOf(ErrTimeout))
	assert.Equal(t, GenericError, KindOf(errors.New("something")))
}
