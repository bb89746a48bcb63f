/*
The package at contains the vocabulary shared by the AT command channel and the layers that use it:
the final status grammar and error model, the response and notification types, the capability
interface of a channel, and a tokenizer for the payload of response lines.

References:
  [V.25ter] ITU-T V.25ter, Serial asynchronous automatic dialling and control
  [27.005]  3GPP TS 27.005, Use of DTE-DCE interface for SMS and CBS
  [27.007]  3GPP TS 27.007, AT command set for User Equipment
*/
package at

import (
	"context"
	"time"
)

// Response of a command that was resolved by a final status line.
type Response struct {
	// Intermediates are the payload lines preceding the final status line, in the order of arrival.
	Intermediates []string
	// Final is the final status line.
	Final string
}

// First returns the first intermediate line, or false if there is none.
func (r Response) First() (string, bool) {
	if len(r.Intermediates) == 0 {
		return "", false
	}
	return r.Intermediates[0], true
}

// Unsolicited is a notification that is not attributable to any command.
// Some notifications consist of a header line and a details line.
type Unsolicited struct {
	Line1 string
	Line2 string
}

// HasLine2 reports whether this notification spans two lines.
func (u Unsolicited) HasLine2() bool {
	return u.Line2 != ""
}

// Lines returns all lines of the notification.
func (u Unsolicited) Lines() []string {
	if u.HasLine2() {
		return []string{u.Line1, u.Line2}
	}
	return []string{u.Line1}
}

// Channel is the set of operations the domain layer needs to talk to a modem.
// A zero timeout selects the channel's default timeout.
type Channel interface {
	// Send a command that is answered only by a final status line.
	Send(ctx context.Context, command string) error
	// SendSingleLine sends a command that is answered by at most one line starting with the given prefix.
	SendSingleLine(ctx context.Context, command string, prefix string, timeout time.Duration) (Response, error)
	// SendMultiLine sends a command that is answered by any number of lines.
	SendMultiLine(ctx context.Context, command string, timeout time.Duration) (Response, error)
	// SendTwoPhase sends a command, waits for the data entry prompt, sends the payload, and waits for the final status line.
	SendTwoPhase(ctx context.Context, command string, payload string, prefix string, promptTimeout time.Duration, completionTimeout time.Duration) (Response, error)
}

// ChannelFuncs adapts a set of functions to the Channel interface. Nil functions
// fail with ErrClosed.
type ChannelFuncs struct {
	SendFunc           func(ctx context.Context, command string) error
	SendSingleLineFunc func(ctx context.Context, command string, prefix string, timeout time.Duration) (Response, error)
	SendMultiLineFunc  func(ctx context.Context, command string, timeout time.Duration) (Response, error)
	SendTwoPhaseFunc   func(ctx context.Context, command string, payload string, prefix string, promptTimeout time.Duration, completionTimeout time.Duration) (Response, error)
}

func (f ChannelFuncs) Send(ctx context.Context, command string) error {
	if f.SendFunc == nil {
		return ErrClosed
	}
	return f.SendFunc(ctx, command)
}

func (f ChannelFuncs) SendSingleLine(ctx context.Context, command string, prefix string, timeout time.Duration) (Response, error) {
	if f.SendSingleLineFunc == nil {
		return Response{}, ErrClosed
	}
	return f.SendSingleLineFunc(ctx, command, prefix, timeout)
}

func (f ChannelFuncs) SendMultiLine(ctx context.Context, command string, timeout time.Duration) (Response, error) {
	if f.SendMultiLineFunc == nil {
		return Response{}, ErrClosed
	}
	return f.SendMultiLineFunc(ctx, command, timeout)
}

func (f ChannelFuncs) SendTwoPhase(ctx context.Context, command string, payload string, prefix string, promptTimeout time.Duration, completionTimeout time.Duration) (Response, error) {
	if f.SendTwoPhaseFunc == nil {
		return Response{}, ErrClosed
	}
	return f.SendTwoPhaseFunc(ctx, command, payload, prefix, promptTimeout, completionTimeout)
}
