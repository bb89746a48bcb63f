package gsm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ftl/atmodem/at"
)

func TestParseEvent(t *testing.T) {
	tt := []struct {
		desc     string
		value    at.Unsolicited
		expected interface{}
		invalid  bool
	}{
		{
			desc:     "ring",
			value:    at.Unsolicited{Line1: "RING"},
			expected: IncomingCall{},
		},
		{
			desc:     "missed call",
			value:    at.Unsolicited{Line1: "MISSED_CALL: 11:56AM +4712345678"},
			expected: MissedCall{Time: "11:56AM", Number: "+4712345678"},
		},
		{
			desc:     "new message indication",
			value:    at.Unsolicited{Line1: `+CMTI: "SM",3`},
			expected: SmsReceived{Storage: StorageSM, Index: 3},
		},
		{
			desc:     "status report indication",
			value:    at.Unsolicited{Line1: `+CDSI: "SR",12`},
			expected: SmsStatusReportReceived{Storage: StorageSR, Index: 12},
		},
		{
			desc:  "delivered message in text mode",
			value: at.Unsolicited{Line1: `+CMT: "+4712345678",,"21/03/04,12:30:45+04"`, Line2: "Hello"},
			expected: SmsDelivered{
				Header:   `+CMT: "+4712345678",,"21/03/04,12:30:45+04"`,
				Body:     "Hello",
				Sender:   "+4712345678",
				Received: time.Date(2021, time.March, 4, 12, 30, 45, 0, time.FixedZone("", 3600)),
			},
		},
		{
			desc:  "delivered message in pdu mode",
			value: at.Unsolicited{Line1: "+CMT: ,24", Line2: "07911326040000F0040B911346610089F60000208062917314080CC8F71D14969741F977FD07"},
			expected: SmsDelivered{
				Header: "+CMT: ,24",
				Body:   "07911326040000F0040B911346610089F60000208062917314080CC8F71D14969741F977FD07",
			},
		},
		{
			desc:    "malformed new message indication",
			value:   at.Unsolicited{Line1: `+CMTI: "SM`},
			invalid: true,
		},
		{
			desc:    "malformed missed call",
			value:   at.Unsolicited{Line1: "MISSED_CALL: 11:56AM"},
			invalid: true,
		},
		{
			desc:    "unknown",
			value:   at.Unsolicited{Line1: "+CREG: 1"},
			invalid: true,
		},
	}
	for _, tc := range tt {
		t.Run(tc.desc, func(t *testing.T) {
			actual, err := ParseEvent(tc.value)
			if tc.invalid {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.expected, actual)
		})
	}
}

func TestParseEvent_Unknown(t *testing.T) {
	_, err := ParseEvent(at.Unsolicited{Line1: "+CREG: 1"})

	assert.ErrorIs(t, err, ErrUnknownEvent)
}

func TestNotifier(t *testing.T) {
	var incomingCalls int
	var missedCalls []MissedCall
	var received []SmsReceived
	var reports []SmsStatusReportReceived
	var delivered []SmsDelivered
	var unknown []at.Unsolicited

	notifier := NewNotifier().
		WithIncomingCallCallback(func(IncomingCall) { incomingCalls++ }).
		WithMissedCallCallback(func(e MissedCall) { missedCalls = append(missedCalls, e) }).
		WithSmsReceivedCallback(func(e SmsReceived) { received = append(received, e) }).
		WithSmsStatusReportReceivedCallback(func(e SmsStatusReportReceived) { reports = append(reports, e) }).
		WithSmsDeliveredCallback(func(e SmsDelivered) { delivered = append(delivered, e) }).
		WithUnknownEventCallback(func(u at.Unsolicited) { unknown = append(unknown, u) })

	notifier.Handle(at.Unsolicited{Line1: "RING"})
	notifier.Handle(at.Unsolicited{Line1: "RING"})
	notifier.Handle(at.Unsolicited{Line1: "MISSED_CALL: 11:56AM +4712345678"})
	notifier.Handle(at.Unsolicited{Line1: `+CMTI: "ME",1`})
	notifier.Handle(at.Unsolicited{Line1: `+CDSI: "SR",2`})
	notifier.Handle(at.Unsolicited{Line1: "+CMT: ,24", Line2: "0791"})
	notifier.Handle(at.Unsolicited{Line1: "+CREG: 1"})

	assert.Equal(t, 2, incomingCalls)
	assert.Equal(t, []MissedCall{{Time: "11:56AM", Number: "+4712345678"}}, missedCalls)
	assert.Equal(t, []SmsReceived{{Storage: StorageME, Index: 1}}, received)
	assert.Equal(t, []SmsStatusReportReceived{{Storage: StorageSR, Index: 2}}, reports)
	assert.Equal(t, []SmsDelivered{{Header: "+CMT: ,24", Body: "0791"}}, delivered)
	assert.Equal(t, []at.Unsolicited{{Line1: "+CREG: 1"}}, unknown)
}

func TestNotifier_WithoutCallbacks(t *testing.T) {
	notifier := NewNotifier()

	assert.NoError(t, notifier.Put(at.Unsolicited{Line1: "RING"}))
	assert.Error(t, notifier.Put(at.Unsolicited{Line1: "+CREG: 1"}))
}
