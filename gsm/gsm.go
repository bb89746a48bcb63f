/*
The package gsm implements the commands of a generic GSM modem on top of an at.Channel.

References:
  [V.25ter] ITU-T V.25ter, Serial asynchronous automatic dialling and control
  [27.005]  3GPP TS 27.005, Use of DTE-DCE interface for SMS and CBS
  [27.007]  3GPP TS 27.007, AT command set for User Equipment
*/
package gsm

//go:generate go tool mockgen -destination=mock_channel_test.go -package=gsm github.com/ftl/atmodem/at Channel

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ftl/atmodem/at"
)

var (
	ErrUnexpectedResponse = errors.New("unexpected response")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrSIMNotReady        = errors.New("SIM not ready")
)

// CME error codes according to [27.007] 9.2.1 that are interpreted by this package
const (
	CMEPhoneFailure   = 0
	CMENotAllowed     = 3
	CMENotSupported   = 4
	CMESIMNotInserted = 10
	CMESIMPINRequired = 11
	CMESIMPUKRequired = 12
	CMESIMFailure     = 13
	CMESIMBusy        = 14
	CMEIncorrectPIN   = 16
)

// Timeouts for the different classes of commands.
type Timeouts struct {
	Default       time.Duration
	SMSPrompt     time.Duration
	SMSCompletion time.Duration
	Read          time.Duration
}

// DefaultTimeouts returns the timeouts that work with most modems.
func DefaultTimeouts() Timeouts {
	return Timeouts{
		Default:       5 * time.Second,
		SMSPrompt:     5 * time.Second,
		SMSCompletion: 180 * time.Second,
		Read:          10 * time.Second,
	}
}

const (
	defaultRetryAttempts = 10
	defaultRetryDelay    = 500 * time.Millisecond
)

// Option configures a Modem.
type Option func(*Modem)

func WithTimeouts(timeouts Timeouts) Option {
	return func(m *Modem) {
		m.timeouts = timeouts
	}
}

// WithCharset selects the codec for text parameters. It must match the character set that is
// configured in the modem with SetCharacterSet.
func WithCharset(charset Charset) Option {
	return func(m *Modem) {
		m.charset = charset
	}
}

// WithRetryAttempts sets how often Sync and WaitForSIMReady try before they give up.
func WithRetryAttempts(attempts uint, delay time.Duration) Option {
	return func(m *Modem) {
		if attempts == 0 {
			attempts = 1
		}
		m.retryAttempts = attempts
		m.retryDelay = delay
	}
}

// New returns a Modem that uses the given channel.
func New(channel at.Channel, opts ...Option) *Modem {
	result := &Modem{
		channel:       channel,
		timeouts:      DefaultTimeouts(),
		charset:       IRA,
		retryAttempts: defaultRetryAttempts,
		retryDelay:    defaultRetryDelay,
	}
	for _, opt := range opts {
		opt(result)
	}
	return result
}

// Modem provides the commands of a generic GSM modem.
type Modem struct {
	channel       at.Channel
	timeouts      Timeouts
	charset       Charset
	retryAttempts uint
	retryDelay    time.Duration
}

// Charset returns the codec that is currently used for text parameters.
func (m *Modem) Charset() Charset {
	return m.charset
}

func (m *Modem) singleLine(ctx context.Context, command string, prefix string) (string, error) {
	response, err := m.channel.SendSingleLine(ctx, command, prefix, m.timeouts.Default)
	if err != nil {
		return "", err
	}
	line, ok := response.First()
	if !ok {
		return "", fmt.Errorf("%w: no %s line received for %s", ErrUnexpectedResponse, prefix, command)
	}
	return line, nil
}

func unexpectedResponse(line string, err error) error {
	return fmt.Errorf("%w %q: %v", ErrUnexpectedResponse, line, err)
}
