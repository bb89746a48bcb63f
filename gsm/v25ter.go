package gsm

import (
	"context"
	"strings"
	"time"

	"github.com/ftl/atmodem/at"
)

// AnswerIncomingCall according to [V.25ter] 6.3.5
func (m *Modem) AnswerIncomingCall(ctx context.Context) error {
	return m.channel.Send(ctx, "ATA")
}

// DisableEcho according to [V.25ter] 6.2.4
func (m *Modem) DisableEcho(ctx context.Context) error {
	return m.channel.Send(ctx, "ATE0")
}

// GetProductIdentificationInformation according to [V.25ter] 6.1.3
func (m *Modem) GetProductIdentificationInformation(ctx context.Context) (ProductIdentification, error) {
	response, err := m.channel.SendMultiLine(ctx, "ATI", m.timeouts.Default)
	if err != nil {
		return ProductIdentification{}, err
	}
	return ProductIdentification{Information: strings.Join(response.Intermediates, "\n")}, nil
}

const voiceCallEndPrefix = "VOICE CALL: END:"

// Hangup terminates the current voice call. The modem may report the duration of the call.
func (m *Modem) Hangup(ctx context.Context) (CallDetails, error) {
	response, err := m.channel.SendSingleLine(ctx, "AT+CHUP", "VOICE CALL:", m.timeouts.Default)
	if err != nil {
		return CallDetails{}, err
	}
	line, ok := response.First()
	if !ok {
		return CallDetails{}, nil
	}

	s := at.NewScanner(line, voiceCallEndPrefix)
	seconds := s.Int()
	if s.Err() != nil {
		return CallDetails{}, unexpectedResponse(line, s.Err())
	}
	return CallDetails{Duration: time.Duration(seconds) * time.Second}, nil
}
