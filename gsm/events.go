package gsm

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/ftl/atmodem/at"
)

// ErrUnknownEvent indicates an unsolicited notification that this package does not decode.
var ErrUnknownEvent = errors.New("unknown event")

// IncomingCall is indicated by RING.
type IncomingCall struct{}

// MissedCall is indicated by MISSED_CALL: <time> <number>.
type MissedCall struct {
	Time   string
	Number PhoneNumber
}

// SmsReceived is indicated by +CMTI: <mem>,<index> according to [27.005] 3.4.1.
type SmsReceived struct {
	Storage Storage
	Index   int
}

// SmsStatusReportReceived is indicated by +CDSI: <mem>,<index> according to [27.005] 3.4.1.
type SmsStatusReportReceived struct {
	Storage Storage
	Index   int
}

// SmsDelivered is a message that is routed directly to the TE with +CMT: according to [27.005] 3.4.1.
// In text mode, the sender and the timestamp are decoded from the header line. In PDU mode, the body
// contains the PDU as hex string.
type SmsDelivered struct {
	Header   string
	Body     string
	Sender   PhoneNumber
	Received time.Time
}

// ParseEvent decodes the given unsolicited notification.
func ParseEvent(u at.Unsolicited) (interface{}, error) {
	switch {
	case u.Line1 == "RING":
		return IncomingCall{}, nil
	case strings.HasPrefix(u.Line1, "MISSED_CALL:"):
		return parseMissedCall(u.Line1)
	case strings.HasPrefix(u.Line1, "+CMTI:"):
		storage, index, err := parseStorageIndex(u.Line1, "+CMTI:")
		if err != nil {
			return nil, err
		}
		return SmsReceived{Storage: storage, Index: index}, nil
	case strings.HasPrefix(u.Line1, "+CDSI:"):
		storage, index, err := parseStorageIndex(u.Line1, "+CDSI:")
		if err != nil {
			return nil, err
		}
		return SmsStatusReportReceived{Storage: storage, Index: index}, nil
	case strings.HasPrefix(u.Line1, "+CMT:"):
		return parseSmsDelivered(u), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownEvent, u.Line1)
	}
}

func parseMissedCall(line string) (MissedCall, error) {
	rest, err := at.TokenizeStart(line, "MISSED_CALL:")
	if err != nil {
		return MissedCall{}, unexpectedResponse(line, err)
	}
	fields := strings.Fields(rest)
	if len(fields) != 2 {
		return MissedCall{}, unexpectedResponse(line, at.ErrMalformedToken)
	}
	return MissedCall{Time: fields[0], Number: PhoneNumber(fields[1])}, nil
}

func parseStorageIndex(line string, prefix string) (Storage, int, error) {
	s := at.NewScanner(line, prefix)
	storage := s.Text()
	index := s.Int()
	if s.Err() != nil {
		return "", 0, unexpectedResponse(line, s.Err())
	}
	return Storage(storage), index, nil
}

func parseSmsDelivered(u at.Unsolicited) SmsDelivered {
	result := SmsDelivered{
		Header: u.Line1,
		Body:   u.Line2,
	}

	s := at.NewScanner(u.Line1, "+CMT:")
	sender := s.Text()
	s.Skip()
	timestamp := s.Text()
	if s.Err() != nil {
		return result
	}
	received, err := ParseTimestamp(timestamp)
	if err != nil {
		return result
	}
	result.Sender = PhoneNumber(sender)
	result.Received = received
	return result
}

type IncomingCallCallback func(IncomingCall)
type MissedCallCallback func(MissedCall)
type SmsReceivedCallback func(SmsReceived)
type SmsStatusReportReceivedCallback func(SmsStatusReportReceived)
type SmsDeliveredCallback func(SmsDelivered)
type UnknownEventCallback func(at.Unsolicited)

// Notifier decodes unsolicited notifications and dispatches the events to the registered callbacks.
type Notifier struct {
	incomingCallCallback            IncomingCallCallback
	missedCallCallback              MissedCallCallback
	smsReceivedCallback             SmsReceivedCallback
	smsStatusReportReceivedCallback SmsStatusReportReceivedCallback
	smsDeliveredCallback            SmsDeliveredCallback
	unknownEventCallback            UnknownEventCallback
}

func NewNotifier() *Notifier {
	return &Notifier{}
}

func (n *Notifier) WithIncomingCallCallback(callback IncomingCallCallback) *Notifier {
	n.incomingCallCallback = callback
	return n
}

func (n *Notifier) WithMissedCallCallback(callback MissedCallCallback) *Notifier {
	n.missedCallCallback = callback
	return n
}

func (n *Notifier) WithSmsReceivedCallback(callback SmsReceivedCallback) *Notifier {
	n.smsReceivedCallback = callback
	return n
}

func (n *Notifier) WithSmsStatusReportReceivedCallback(callback SmsStatusReportReceivedCallback) *Notifier {
	n.smsStatusReportReceivedCallback = callback
	return n
}

func (n *Notifier) WithSmsDeliveredCallback(callback SmsDeliveredCallback) *Notifier {
	n.smsDeliveredCallback = callback
	return n
}

// WithUnknownEventCallback registers a callback for all notifications that cannot be decoded.
func (n *Notifier) WithUnknownEventCallback(callback UnknownEventCallback) *Notifier {
	n.unknownEventCallback = callback
	return n
}

// Put decodes the given notification and calls the matching callback.
func (n *Notifier) Put(u at.Unsolicited) error {
	event, err := ParseEvent(u)
	if err != nil {
		if n.unknownEventCallback != nil {
			n.unknownEventCallback(u)
		}
		return err
	}

	switch e := event.(type) {
	case IncomingCall:
		if n.incomingCallCallback != nil {
			n.incomingCallCallback(e)
		}
	case MissedCall:
		if n.missedCallCallback != nil {
			n.missedCallCallback(e)
		}
	case SmsReceived:
		if n.smsReceivedCallback != nil {
			n.smsReceivedCallback(e)
		}
	case SmsStatusReportReceived:
		if n.smsStatusReportReceivedCallback != nil {
			n.smsStatusReportReceivedCallback(e)
		}
	case SmsDelivered:
		if n.smsDeliveredCallback != nil {
			n.smsDeliveredCallback(e)
		}
	default:
		return fmt.Errorf("unexpected event type %T", e)
	}
	return nil
}

// Handle is Put for the use as handler of unsolicited notifications. Notifications that cannot be
// decoded are logged.
func (n *Notifier) Handle(u at.Unsolicited) {
	err := n.Put(u)
	if err != nil && !errors.Is(err, ErrUnknownEvent) {
		log.Printf("cannot decode unsolicited notification: %v", err)
	}
}
