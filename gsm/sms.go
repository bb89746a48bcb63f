package gsm

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ftl/atmodem/at"
)

// ErrSmsNotFound indicates that the requested message storage slot is empty.
var ErrSmsNotFound = errors.New("no SMS found")

// SetSmsMessageFormat according to [27.005] 3.2.3
func (m *Modem) SetSmsMessageFormat(ctx context.Context, format SmsTextFormat) error {
	if format != PDUMode && format != TextMode {
		return fmt.Errorf("%w: invalid message format %d", ErrInvalidArgument, format)
	}
	return m.channel.Send(ctx, fmt.Sprintf("AT+CMGF=%d", format))
}

// GetPreferredMessageStorage according to [27.005] 3.2.2
func (m *Modem) GetPreferredMessageStorage(ctx context.Context) ([]MessageStorageStatus, error) {
	line, err := m.singleLine(ctx, "AT+CPMS?", "+CPMS:")
	if err != nil {
		return nil, err
	}

	result := make([]MessageStorageStatus, 0, 3)
	s := at.NewScanner(line, "+CPMS:")
	for s.More() {
		name := s.Text()
		used := s.Int()
		total := s.Int()
		if s.Err() != nil {
			break
		}
		storage, err := m.charset.Decode(name)
		if err != nil {
			return nil, unexpectedResponse(line, err)
		}
		result = append(result, MessageStorageStatus{Storage: Storage(storage), Used: used, Total: total})
	}
	if s.Err() != nil {
		return nil, unexpectedResponse(line, s.Err())
	}
	if len(result) == 0 {
		return nil, unexpectedResponse(line, at.ErrNoMoreTokens)
	}
	return result, nil
}

// SetPreferredMessageStorage according to [27.005] 3.2.2. The storages are used in this order for
// reading and deleting, writing and sending, and receiving. At least the first one must be given.
func (m *Modem) SetPreferredMessageStorage(ctx context.Context, storages ...Storage) ([]MessageStorageStatus, error) {
	if len(storages) < 1 || len(storages) > 3 {
		return nil, fmt.Errorf("%w: one to three message storages required", ErrInvalidArgument)
	}
	parameters := make([]string, len(storages))
	for i, storage := range storages {
		if err := storage.Validate(); err != nil {
			return nil, err
		}
		encoded, err := m.charset.Encode(string(storage))
		if err != nil {
			return nil, err
		}
		parameters[i] = strconv.Quote(encoded)
	}

	line, err := m.singleLine(ctx, "AT+CPMS="+strings.Join(parameters, ","), "+CPMS:")
	if err != nil {
		return nil, err
	}

	result := make([]MessageStorageStatus, 0, 3)
	s := at.NewScanner(line, "+CPMS:")
	for s.More() {
		status := MessageStorageStatus{
			Used:  s.Int(),
			Total: s.Int(),
		}
		if s.Err() != nil {
			break
		}
		if len(result) < len(storages) {
			status.Storage = storages[len(result)]
		}
		result = append(result, status)
	}
	if s.Err() != nil {
		return nil, unexpectedResponse(line, s.Err())
	}
	return result, nil
}

// SetNewSmsIndication according to [27.005] 3.4.1
func (m *Modem) SetNewSmsIndication(ctx context.Context, mode, mt, bm, ds, bfr int) error {
	switch {
	case mode < 0 || mode > 2:
		return fmt.Errorf("%w: mode must be in 0..2", ErrInvalidArgument)
	case mt < 0 || mt > 3:
		return fmt.Errorf("%w: mt must be in 0..3", ErrInvalidArgument)
	case bm != 0 && bm != 2:
		return fmt.Errorf("%w: bm must be 0 or 2", ErrInvalidArgument)
	case ds < 0 || ds > 2:
		return fmt.Errorf("%w: ds must be in 0..2", ErrInvalidArgument)
	case bfr < 0 || bfr > 1:
		return fmt.Errorf("%w: bfr must be in 0..1", ErrInvalidArgument)
	}
	return m.channel.Send(ctx, fmt.Sprintf("AT+CNMI=%d,%d,%d,%d,%d", mode, mt, bm, ds, bfr))
}

// SendSms in text mode according to [27.005] 3.5.1
func (m *Modem) SendSms(ctx context.Context, number PhoneNumber, message string) (SmsReference, error) {
	if err := number.Validate(); err != nil {
		return SmsReference{}, err
	}
	encodedNumber, err := m.charset.Encode(string(number))
	if err != nil {
		return SmsReference{}, err
	}
	encodedMessage, err := m.charset.Encode(message)
	if err != nil {
		return SmsReference{}, err
	}

	request := fmt.Sprintf(`AT+CMGS="%s"`, encodedNumber)
	response, err := m.channel.SendTwoPhase(ctx, request, encodedMessage, "+CMGS:", m.timeouts.SMSPrompt, m.timeouts.SMSCompletion)
	if err != nil {
		return SmsReference{}, err
	}
	line, ok := response.First()
	if !ok {
		return SmsReference{}, fmt.Errorf("%w: no message reference received", ErrUnexpectedResponse)
	}

	s := at.NewScanner(line, "+CMGS:")
	reference := s.Int()
	if s.Err() != nil {
		return SmsReference{}, unexpectedResponse(line, s.Err())
	}
	return SmsReference{MessageReference: reference}, nil
}

// ReadSms in text mode according to [27.005] 3.4.3. If markAsRead is false, the status of the
// message is left unchanged.
func (m *Modem) ReadSms(ctx context.Context, index int, markAsRead bool) (Sms, error) {
	request := fmt.Sprintf("AT+CMGR=%d,%d", index, readMode(markAsRead))
	response, err := m.channel.SendMultiLine(ctx, request, m.timeouts.Read)
	if err != nil {
		return Sms{}, err
	}
	if len(response.Intermediates) == 0 {
		return Sms{}, fmt.Errorf("%w at index %d", ErrSmsNotFound, index)
	}

	header := response.Intermediates[0]
	s := at.NewScanner(header, "+CMGR:")
	sms, err := m.parseSmsHeader(s)
	if err != nil {
		return Sms{}, unexpectedResponse(header, err)
	}
	sms.Message, err = m.charset.Decode(strings.Join(response.Intermediates[1:], "\n"))
	if err != nil {
		return Sms{}, err
	}
	return sms, nil
}

// ListSms in text mode according to [27.005] 3.4.2
func (m *Modem) ListSms(ctx context.Context, status SmsStatus, markAsRead bool) ([]SmsWithIndex, error) {
	encodedStatus, err := m.charset.Encode(status.String())
	if err != nil {
		return nil, err
	}
	request := fmt.Sprintf(`AT+CMGL="%s",%d`, encodedStatus, readMode(markAsRead))
	response, err := m.channel.SendMultiLine(ctx, request, m.timeouts.Read)
	if err != nil {
		return nil, err
	}

	result := make([]SmsWithIndex, 0, len(response.Intermediates)/2)
	var current *SmsWithIndex
	var body []string
	flush := func() error {
		if current == nil {
			body = nil
			return nil
		}
		message, err := m.charset.Decode(strings.Join(body, "\n"))
		if err != nil {
			return err
		}
		current.Message = message
		result = append(result, *current)
		current = nil
		body = nil
		return nil
	}

	for _, line := range response.Intermediates {
		if !strings.HasPrefix(line, "+CMGL:") {
			body = append(body, line)
			continue
		}
		if err := flush(); err != nil {
			return nil, err
		}

		s := at.NewScanner(line, "+CMGL:")
		index := s.Int()
		sms, err := m.parseSmsHeader(s)
		if err != nil {
			return nil, unexpectedResponse(line, err)
		}
		current = &SmsWithIndex{Index: index, Sms: sms}
	}
	if err := flush(); err != nil {
		return nil, err
	}

	return result, nil
}

// parseSmsHeader reads <stat>,<oa>,[<alpha>],<scts> of a text mode header line.
func (m *Modem) parseSmsHeader(s *at.Scanner) (Sms, error) {
	statusName := s.Text()
	sender := s.Text()
	s.Skip()
	timestamp := s.Text()
	if s.Err() != nil {
		return Sms{}, s.Err()
	}

	status, err := SmsStatusByName(statusName)
	if err != nil {
		return Sms{}, err
	}
	decodedSender, err := m.charset.Decode(sender)
	if err != nil {
		return Sms{}, err
	}
	received, err := ParseTimestamp(timestamp)
	if err != nil {
		return Sms{}, err
	}

	return Sms{
		Status:   status,
		Sender:   PhoneNumber(decodedSender),
		Received: received,
	}, nil
}

func readMode(markAsRead bool) int {
	if markAsRead {
		return 0
	}
	return 1
}

// TestDeleteSms reads the supported values of AT+CMGD according to [27.005] 3.5.4
func (m *Modem) TestDeleteSms(ctx context.Context) (SupportedDeleteSmsValues, error) {
	line, err := m.singleLine(ctx, "AT+CMGD=?", "+CMGD:")
	if err != nil {
		return SupportedDeleteSmsValues{}, err
	}
	rest, err := at.TokenizeStart(line, "+CMGD:")
	if err != nil {
		return SupportedDeleteSmsValues{}, unexpectedResponse(line, err)
	}

	lists, err := parseParenthesizedLists(rest)
	if err != nil {
		return SupportedDeleteSmsValues{}, unexpectedResponse(line, err)
	}
	if len(lists) != 2 {
		return SupportedDeleteSmsValues{}, unexpectedResponse(line, fmt.Errorf("%d lists instead of 2", len(lists)))
	}
	indexes, err := parseIntRanges(lists[0])
	if err != nil {
		return SupportedDeleteSmsValues{}, unexpectedResponse(line, err)
	}
	flags, err := parseIntRanges(lists[1])
	if err != nil {
		return SupportedDeleteSmsValues{}, unexpectedResponse(line, err)
	}

	result := SupportedDeleteSmsValues{
		Indexes: indexes,
		Flags:   make([]SmsDeleteFlag, len(flags)),
	}
	for i, flag := range flags {
		result.Flags[i] = SmsDeleteFlag(flag)
	}
	return result, nil
}

// DeleteSms according to [27.005] 3.5.4. Without a flag, only the message at the given index is deleted.
func (m *Modem) DeleteSms(ctx context.Context, index int, flag *SmsDeleteFlag) error {
	request := fmt.Sprintf("AT+CMGD=%d", index)
	if flag != nil {
		if err := flag.Validate(); err != nil {
			return err
		}
		request += fmt.Sprintf(",%d", *flag)
	}
	return m.channel.Send(ctx, request)
}

// parseParenthesizedLists splits "(1,2),(0-4)" into "1,2" and "0-4".
func parseParenthesizedLists(s string) ([]string, error) {
	var result []string
	s = strings.TrimSpace(s)
	for s != "" {
		if s[0] != '(' {
			return nil, fmt.Errorf("%w: %s", at.ErrMalformedToken, s)
		}
		end := strings.IndexByte(s, ')')
		if end == -1 {
			return nil, fmt.Errorf("%w: %s", at.ErrMalformedToken, s)
		}
		result = append(result, s[1:end])
		s = strings.TrimSpace(s[end+1:])
		s = strings.TrimSpace(strings.TrimPrefix(s, ","))
	}
	return result, nil
}

// maxRangeValues limits the number of values a list of ranges expands to.
const maxRangeValues = 10000

// parseIntRanges expands "1,3-5" into 1, 3, 4, 5.
func parseIntRanges(s string) ([]int, error) {
	result := []int{}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		dash := strings.IndexByte(part, '-')
		if dash == -1 {
			n, err := strconv.Atoi(part)
			if err != nil {
				return nil, fmt.Errorf("%w: %s", at.ErrNotANumber, part)
			}
			result = append(result, n)
			continue
		}
		first, err := strconv.Atoi(strings.TrimSpace(part[:dash]))
		if err != nil {
			return nil, fmt.Errorf("%w: %s", at.ErrNotANumber, part)
		}
		last, err := strconv.Atoi(strings.TrimSpace(part[dash+1:]))
		if err != nil {
			return nil, fmt.Errorf("%w: %s", at.ErrNotANumber, part)
		}
		if last >= first && last-first >= maxRangeValues-len(result) {
			return nil, fmt.Errorf("range %s exceeds %d values", part, maxRangeValues)
		}
		for i := first; i <= last; i++ {
			result = append(result, i)
		}
	}
	return result, nil
}
