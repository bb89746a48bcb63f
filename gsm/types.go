package gsm

import (
	"fmt"
	"strings"
	"time"
)

// PhoneNumber in international (+4712345678) or national format
type PhoneNumber string

func (n PhoneNumber) Validate() error {
	s := strings.TrimPrefix(string(n), "+")
	if s == "" {
		return fmt.Errorf("%w: empty phone number", ErrInvalidArgument)
	}
	for _, c := range s {
		if !strings.ContainsRune("0123456789*#", c) {
			return fmt.Errorf("%w: invalid phone number %s", ErrInvalidArgument, n)
		}
	}
	return nil
}

// PIN is the personal identification number of a SIM card.
type PIN string

func (p PIN) Validate() error {
	if len(p) < 4 || len(p) > 8 {
		return fmt.Errorf("%w: a PIN has 4 to 8 digits", ErrInvalidArgument)
	}
	for _, c := range p {
		if c < '0' || c > '9' {
			return fmt.Errorf("%w: a PIN has only digits", ErrInvalidArgument)
		}
	}
	return nil
}

// SmsTextFormat according to [27.005] 3.2.3
type SmsTextFormat int

const (
	PDUMode SmsTextFormat = iota
	TextMode
)

// SmsStatus according to [27.005] 3.1, <stat> in text mode
type SmsStatus int

const (
	ReceivedUnread SmsStatus = iota
	ReceivedRead
	StoredUnsent
	StoredSent
	AllSms
)

// SmsStatusesByName maps all SMS status values by their text mode representation
var SmsStatusesByName = map[string]SmsStatus{
	"REC UNREAD": ReceivedUnread,
	"REC READ":   ReceivedRead,
	"STO UNSENT": StoredUnsent,
	"STO SENT":   StoredSent,
	"ALL":        AllSms,
}

// SmsStatusByName returns the SmsStatus with the given name
func SmsStatusByName(name string) (SmsStatus, error) {
	sanitized := strings.ToUpper(strings.TrimSpace(name))
	result, ok := SmsStatusesByName[sanitized]
	if !ok {
		return 0, fmt.Errorf("%w: invalid SMS status %s", ErrInvalidArgument, name)
	}
	return result, nil
}

func (s SmsStatus) String() string {
	for k, v := range SmsStatusesByName {
		if v == s {
			return k
		}
	}
	return "UNKNOWN"
}

// SimStatus is derived from the response to AT+CPIN?
type SimStatus int

const (
	SimNotReady SimStatus = iota
	SimAbsent
	SimReady
	SimPIN
	SimPUK
	SimNetworkPersonalization
)

func (s SimStatus) String() string {
	switch s {
	case SimNotReady:
		return "not ready"
	case SimAbsent:
		return "absent"
	case SimReady:
		return "ready"
	case SimPIN:
		return "PIN required"
	case SimPUK:
		return "PUK required"
	case SimNetworkPersonalization:
		return "network personalization PIN required"
	default:
		return "unknown"
	}
}

// SignalStrength according to [27.007] 8.5
type SignalStrength struct {
	RSSI int
	BER  int
}

const unknownSignalValue = 99

// Known reports whether the modem could measure the RSSI.
func (s SignalStrength) Known() bool {
	return s.RSSI != unknownSignalValue
}

// DBM converts the RSSI value into dBm.
func (s SignalStrength) DBM() int {
	return -113 + 2*s.RSSI
}

func (s SignalStrength) String() string {
	if !s.Known() {
		return "unknown"
	}
	return fmt.Sprintf("%d dBm (rssi %d, ber %d)", s.DBM(), s.RSSI, s.BER)
}

// BatteryChargeStatus according to [27.007] 8.4
type BatteryChargeStatus int

const (
	PoweredByBattery BatteryChargeStatus = iota
	BatteryConnectedNotPowered
	NoBattery
	PowerFault
)

func (s BatteryChargeStatus) String() string {
	switch s {
	case PoweredByBattery:
		return "powered by battery"
	case BatteryConnectedNotPowered:
		return "battery connected, not powered by it"
	case NoBattery:
		return "no battery"
	case PowerFault:
		return "power fault"
	default:
		return "unknown"
	}
}

type BatteryStatus struct {
	Status BatteryChargeStatus
	// ChargeLevel in percent
	ChargeLevel int
}

// Storage is a message storage according to [27.005] 3.1, <mem1>
type Storage string

const (
	StorageME Storage = "ME"
	StorageMT Storage = "MT"
	StorageSM Storage = "SM"
	StorageSR Storage = "SR"
)

func (s Storage) Validate() error {
	switch s {
	case StorageME, StorageMT, StorageSM, StorageSR:
		return nil
	default:
		return fmt.Errorf("%w: invalid message storage %q", ErrInvalidArgument, string(s))
	}
}

type MessageStorageStatus struct {
	Storage Storage
	Used    int
	Total   int
}

func (s MessageStorageStatus) String() string {
	return fmt.Sprintf("%s (used: %d, total: %d)", s.Storage, s.Used, s.Total)
}

// SmsDeleteFlag according to [27.005] 3.5.4
type SmsDeleteFlag int

const (
	// DeleteIndex deletes the message at the given index.
	DeleteIndex SmsDeleteFlag = iota
	// DeleteRead deletes all read messages.
	DeleteRead
	// DeleteReadAndSent deletes all read and all sent messages.
	DeleteReadAndSent
	// DeleteReadSentAndUnsent deletes all read and all stored messages, sent or not.
	DeleteReadSentAndUnsent
	// DeleteAll deletes all messages, including the unread ones.
	DeleteAll
)

func (f SmsDeleteFlag) Validate() error {
	if f < DeleteIndex || f > DeleteAll {
		return fmt.Errorf("%w: invalid delete flag %d", ErrInvalidArgument, f)
	}
	return nil
}

type SupportedDeleteSmsValues struct {
	Indexes []int
	Flags   []SmsDeleteFlag
}

type Sms struct {
	Status   SmsStatus
	Sender   PhoneNumber
	Received time.Time
	Message  string
}

func (s Sms) String() string {
	return fmt.Sprintf("SMS from %s at %s (%s):\n%s", s.Sender, s.Received.Format(time.RFC3339), s.Status, s.Message)
}

type SmsWithIndex struct {
	Index int
	Sms
}

type SmsReference struct {
	MessageReference int
}

type CallDetails struct {
	Duration time.Duration
}

type ProductIdentification struct {
	Information string
}

func (p ProductIdentification) String() string {
	return p.Information
}
