package gsm

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/avast/retry-go"

	"github.com/ftl/atmodem/at"
)

// Sync sends AT until the modem answers with OK. Use it to get a modem that was left in an
// unknown state into a defined state.
func (m *Modem) Sync(ctx context.Context) error {
	return retry.Do(func() error {
		return m.channel.Send(ctx, "AT")
	},
		retry.Context(ctx),
		retry.Attempts(m.retryAttempts),
		retry.Delay(m.retryDelay),
		retry.DelayType(retry.FixedDelay),
		retry.RetryIf(func(err error) bool {
			return !errors.Is(err, at.ErrClosed) && ctx.Err() == nil
		}),
		retry.OnRetry(func(n uint, err error) {
			log.Printf("sync attempt %d failed: %v", n+1, err)
		}),
		retry.LastErrorOnly(true),
	)
}

// GetSimStatus according to [27.007] 8.3
func (m *Modem) GetSimStatus(ctx context.Context) (SimStatus, error) {
	line, err := m.singleLine(ctx, "AT+CPIN?", "+CPIN:")
	if errors.Is(err, at.NewCMEError(CMESIMNotInserted)) {
		return SimAbsent, nil
	}
	if err != nil {
		return SimNotReady, err
	}

	s := at.NewScanner(line, "+CPIN:")
	code := s.Text()
	if s.Err() != nil {
		return SimNotReady, unexpectedResponse(line, s.Err())
	}

	switch code {
	case "READY":
		return SimReady, nil
	case "SIM PIN":
		return SimPIN, nil
	case "SIM PUK":
		return SimPUK, nil
	case "PH-NET PIN":
		return SimNetworkPersonalization, nil
	default:
		// other lock types are not supported, the SIM is not usable
		return SimAbsent, nil
	}
}

// EnterSimPin according to [27.007] 8.3
func (m *Modem) EnterSimPin(ctx context.Context, pin PIN) error {
	if err := pin.Validate(); err != nil {
		return err
	}
	encodedPIN, err := m.charset.Encode(string(pin))
	if err != nil {
		return err
	}
	return m.channel.Send(ctx, fmt.Sprintf(`AT+CPIN="%s"`, encodedPIN))
}

// WaitForSIMReady polls the SIM status until the SIM is ready. It gives up immediately if the SIM
// is absent or locked.
func (m *Modem) WaitForSIMReady(ctx context.Context) error {
	return retry.Do(func() error {
		status, err := m.GetSimStatus(ctx)
		switch {
		case errors.Is(err, at.ErrClosed):
			return retry.Unrecoverable(err)
		case err != nil:
			return err
		case status == SimReady:
			return nil
		case status == SimNotReady:
			return fmt.Errorf("%w: %s", ErrSIMNotReady, status)
		default:
			return retry.Unrecoverable(fmt.Errorf("%w: %s", ErrSIMNotReady, status))
		}
	},
		retry.Context(ctx),
		retry.Attempts(m.retryAttempts),
		retry.Delay(m.retryDelay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
	)
}

// GetSignalStrength according to [27.007] 8.5
func (m *Modem) GetSignalStrength(ctx context.Context) (SignalStrength, error) {
	line, err := m.singleLine(ctx, "AT+CSQ", "+CSQ:")
	if err != nil {
		return SignalStrength{}, err
	}

	s := at.NewScanner(line, "+CSQ:")
	result := SignalStrength{
		RSSI: s.Int(),
		BER:  s.Int(),
	}
	if s.Err() != nil {
		return SignalStrength{}, unexpectedResponse(line, s.Err())
	}
	return result, nil
}

// GetBatteryStatus according to [27.007] 8.4
func (m *Modem) GetBatteryStatus(ctx context.Context) (BatteryStatus, error) {
	line, err := m.singleLine(ctx, "AT+CBC", "+CBC:")
	if err != nil {
		return BatteryStatus{}, err
	}

	s := at.NewScanner(line, "+CBC:")
	result := BatteryStatus{
		Status:      BatteryChargeStatus(s.Int()),
		ChargeLevel: s.Int(),
	}
	if s.Err() != nil {
		return BatteryStatus{}, unexpectedResponse(line, s.Err())
	}
	return result, nil
}

// SetDateTime according to [27.007] 8.15
func (m *Modem) SetDateTime(ctx context.Context, t time.Time) error {
	return m.channel.Send(ctx, fmt.Sprintf(`AT+CCLK="%s"`, FormatTimestamp(t)))
}

// GetDateTime according to [27.007] 8.15
func (m *Modem) GetDateTime(ctx context.Context) (time.Time, error) {
	line, err := m.singleLine(ctx, "AT+CCLK?", "+CCLK:")
	if err != nil {
		return time.Time{}, err
	}

	s := at.NewScanner(line, "+CCLK:")
	timestamp := s.Text()
	if s.Err() != nil {
		return time.Time{}, unexpectedResponse(line, s.Err())
	}
	result, err := ParseTimestamp(timestamp)
	if err != nil {
		return time.Time{}, unexpectedResponse(line, err)
	}
	return result, nil
}

const timestampLayout = "06/01/02,15:04:05"

// ParseTimestamp parses the "yy/MM/dd,hh:mm:ss±zz" format, where zz is the offset to UTC in quarters of an hour.
func ParseTimestamp(s string) (time.Time, error) {
	if len(s) < len(timestampLayout)+2 {
		return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
	}
	local, err := time.Parse(timestampLayout, s[:len(timestampLayout)])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	quarters, err := strconv.Atoi(s[len(timestampLayout):])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time zone in timestamp %q: %w", s, err)
	}

	zone := time.FixedZone("", quarters*15*60)
	return time.Date(local.Year(), local.Month(), local.Day(), local.Hour(), local.Minute(), local.Second(), 0, zone), nil
}

// FormatTimestamp formats the given time as "yy/MM/dd,hh:mm:ss±zz".
func FormatTimestamp(t time.Time) string {
	_, offset := t.Zone()
	return t.Format(timestampLayout) + fmt.Sprintf("%+03d", offset/(15*60))
}
