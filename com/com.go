package com

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/ftl/atmodem/at"
)

const (
	defaultTimeout     = 5 * time.Second
	defaultPromptDelay = 25 * time.Millisecond
)

// DefaultTwoLineUnsolicited are the prefixes of unsolicited notifications that are followed by a details line.
// +CDS: spans two lines only in PDU mode, add it with WithTwoLineUnsolicited if the modem runs in PDU mode.
var DefaultTwoLineUnsolicited = []string{"+CMT:", "+CBM:"}

// Option configures a COM instance.
type Option func(*COM)

// WithTrace traces all communications to the given writer.
func WithTrace(tracer io.Writer) Option {
	return func(c *COM) {
		c.tracer = tracer
	}
}

// WithLogger sets the logger for protocol anomalies. The default is log.Default().
func WithLogger(logger *log.Logger) Option {
	return func(c *COM) {
		c.logger = logger
	}
}

// WithDefaultTimeout sets the timeout for commands that are issued without an explicit timeout.
func WithDefaultTimeout(timeout time.Duration) Option {
	return func(c *COM) {
		c.defaultTimeout = timeout
	}
}

// WithPromptDelay sets the pause between receiving the prompt and sending the payload of a two-phase command.
func WithPromptDelay(delay time.Duration) Option {
	return func(c *COM) {
		c.promptDelay = delay
	}
}

// WithTwoLineUnsolicited replaces the prefixes of unsolicited notifications that span two lines.
func WithTwoLineUnsolicited(prefixes ...string) Option {
	return func(c *COM) {
		c.twoLinePrefixes = make([]string, len(prefixes))
		for i, prefix := range prefixes {
			c.twoLinePrefixes[i] = strings.ToUpper(prefix)
		}
	}
}

// NewWithTrace creates a new COM instance that traces all communications to a second writer.
func NewWithTrace(device io.ReadWriter, tracer io.Writer, opts ...Option) *COM {
	return New(device, append(opts, WithTrace(tracer))...)
}

// New creates a new COM instance using the given io.ReadWriter to communicate with the modem.
// The COM owns the device: if it is an io.Closer, it is closed when the COM closes.
func New(device io.ReadWriter, opts ...Option) *COM {
	result := &COM{
		device:          device,
		commands:        make(chan *command),
		closing:         make(chan struct{}),
		stopped:         make(chan struct{}),
		closed:          make(chan struct{}),
		router:          newRouter(),
		logger:          log.Default(),
		defaultTimeout:  defaultTimeout,
		promptDelay:     defaultPromptDelay,
		twoLinePrefixes: DefaultTwoLineUnsolicited,
	}
	for _, opt := range opts {
		opt(result)
	}

	lines, readErrs := readLoop(device)
	go result.run(lines, readErrs)

	return result
}

// COM allows to communicate with a modem using AT commands. Only one command is
// in flight at any time, all other commands wait in the order they were issued.
type COM struct {
	device   io.ReadWriter
	commands chan *command
	router   *router

	closing   chan struct{}
	closeOnce sync.Once
	stopped   chan struct{} // no more commands are accepted
	closed    chan struct{} // shutdown is complete
	err       error
	closeErr  error

	tracer          io.Writer
	logger          *log.Logger
	defaultTimeout  time.Duration
	promptDelay     time.Duration
	twoLinePrefixes []string
}

func (c *COM) run(lines <-chan line, readErrs <-chan error) {
	c.trace("****\n* SESSION START\n****\n")

	var activeCommand *command
	var activeUnsolicited *at.Unsolicited
	var deadline *time.Timer
	var timeout <-chan time.Time
	var pacing <-chan time.Time

	stopTimer := func() {
		if deadline != nil {
			deadline.Stop()
			deadline = nil
		}
		timeout = nil
	}
	startTimer := func(d time.Duration) {
		stopTimer()
		deadline = time.NewTimer(d)
		timeout = deadline.C
	}
	defer stopTimer()

	for {
		var commands <-chan *command
		var commandCancelled <-chan struct{}
		if activeCommand == nil {
			commands = c.commands
		} else {
			commandCancelled = activeCommand.Cancelled()
		}

		select {
		case l, valid := <-lines:
			if !valid {
				c.shutdown(activeCommand, lines, <-readErrs)
				return
			}
			c.tracef("rx:  %s\nhex: %X\n--\n", l.text, l.text)

			switch {
			case activeUnsolicited != nil:
				activeUnsolicited.Line2 = l.text
				c.router.Put(*activeUnsolicited)
				activeUnsolicited = nil
			case l.prompt:
				if activeCommand != nil && activeCommand.AddPrompt() {
					stopTimer()
					pacing = time.After(c.promptDelay)
					break
				}
				c.logger.Printf("unexpected prompt, no command is waiting for it")
				c.router.Put(at.Unsolicited{Line1: l.text})
			case c.isTwoLineUnsolicited(l.text):
				activeUnsolicited = &at.Unsolicited{Line1: l.text}
			case activeCommand != nil && activeCommand.AddLine(l.text):
			default:
				c.router.Put(at.Unsolicited{Line1: l.text})
			}
		case cmd := <-commands:
			if err := cmd.ctx.Err(); err != nil {
				cmd.Abort(err)
				break
			}
			if err := c.transmit(cmd.request + at.CRLF); err != nil {
				cmd.Abort(&at.Error{Kind: at.ChannelClosed, Err: err})
				break
			}
			cmd.state = cmd.initialState()
			activeCommand = cmd
			startTimer(cmd.timeout)
		case <-pacing:
			pacing = nil
			if err := c.transmit(activeCommand.payload + at.CtrlZ + at.CRLF); err != nil {
				activeCommand.Abort(&at.Error{Kind: at.ChannelClosed, Err: err})
				break
			}
			startTimer(activeCommand.completionTimeout)
		case <-timeout:
			timeout = nil
			c.logger.Printf("%s timed out", activeCommand.request)
			activeCommand.Abort(&at.Error{Kind: at.Timeout, Err: fmt.Errorf("no response to %s", activeCommand.request)})
		case <-commandCancelled:
			activeCommand.Abort(activeCommand.ctx.Err())
		case <-c.closing:
			c.shutdown(activeCommand, lines, nil)
			return
		}

		if activeCommand != nil && activeCommand.Complete() {
			activeCommand = nil
			pacing = nil
			stopTimer()
		}
	}
}

// shutdown resolves all outstanding commands, releases the device, and waits for the reader and the router.
func (c *COM) shutdown(activeCommand *command, lines <-chan line, readErr error) {
	c.err = readErr
	close(c.stopped)
	closedErr := &at.Error{Kind: at.ChannelClosed, Err: readErr}
	if activeCommand != nil {
		activeCommand.Abort(closedErr)
	}
	for pending := true; pending; {
		select {
		case cmd := <-c.commands:
			cmd.Abort(closedErr)
		default:
			pending = false
		}
	}

	if closer, ok := c.device.(io.Closer); ok {
		c.closeErr = closer.Close()
		for range lines {
		}
	} else {
		go func() {
			for range lines {
			}
		}()
	}

	c.router.Stop()
	c.trace("****\n* SESSION END\n****\n")
	close(c.closed)
}

func (c *COM) transmit(text string) error {
	c.tracef("tx:  %s\nhex: %X\n--\n", text, text)
	_, err := c.device.Write([]byte(text))
	if err != nil {
		c.logger.Printf("cannot write to device: %v", err)
	}
	return err
}

func (c *COM) isTwoLineUnsolicited(line string) bool {
	upper := strings.ToUpper(line)
	for _, prefix := range c.twoLinePrefixes {
		if strings.HasPrefix(upper, prefix) {
			return true
		}
	}
	return false
}

// Close shuts the COM down. All outstanding commands fail with at.ErrClosed. Close returns after
// the device is closed and all goroutines of the COM are finished.
func (c *COM) Close() error {
	c.closeOnce.Do(func() {
		close(c.closing)
	})
	<-c.closed
	return c.closeErr
}

// Closed reports whether the COM is closed, either explicitly or because the device failed.
func (c *COM) Closed() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}

// Done is closed when the COM is closed.
func (c *COM) Done() <-chan struct{} {
	return c.closed
}

// Err returns the read error that terminated the COM, nil if the COM is still open or was closed explicitly.
func (c *COM) Err() error {
	select {
	case <-c.closed:
		return c.err
	default:
		return nil
	}
}

// OnUnsolicited registers a handler for unsolicited notifications and returns a function to remove it again.
// Handlers are called one after another on a dedicated goroutine. They may issue commands, but must not call Close.
func (c *COM) OnUnsolicited(handler UnsolicitedHandler) func() {
	return c.router.Subscribe(handler)
}

// Send a command that is answered only by a final status line, using the default timeout.
func (c *COM) Send(ctx context.Context, request string) error {
	_, err := c.do(newCommand(ctx, noPayload, request, "", c.timeoutOrDefault(0)))
	return err
}

// SendSingleLine sends a command that is answered by at most one line starting with the given prefix.
func (c *COM) SendSingleLine(ctx context.Context, request string, prefix string, timeout time.Duration) (at.Response, error) {
	return c.do(newCommand(ctx, singleLine, request, prefix, c.timeoutOrDefault(timeout)))
}

// SendMultiLine sends a command that is answered by any number of lines.
func (c *COM) SendMultiLine(ctx context.Context, request string, timeout time.Duration) (at.Response, error) {
	return c.do(newCommand(ctx, multiLine, request, "", c.timeoutOrDefault(timeout)))
}

// SendTwoPhase sends the command, waits for the prompt, sends the payload terminated by Ctrl-Z,
// and waits for the final status line. Both phases time out independently.
func (c *COM) SendTwoPhase(ctx context.Context, request string, payload string, prefix string, promptTimeout time.Duration, completionTimeout time.Duration) (at.Response, error) {
	cmd := newCommand(ctx, twoPhase, request, prefix, c.timeoutOrDefault(promptTimeout))
	cmd.payload = payload
	cmd.completionTimeout = c.timeoutOrDefault(completionTimeout)
	return c.do(cmd)
}

// AT sends the request and returns all lines of the response. On failure, no lines are returned.
func (c *COM) AT(ctx context.Context, request string) ([]string, error) {
	response, err := c.SendMultiLine(ctx, request, 0)
	if err != nil {
		return nil, err
	}
	return response.Intermediates, nil
}

// ATs sends the given requests one after another and stops at the first failure.
func (c *COM) ATs(ctx context.Context, requests ...string) error {
	for _, request := range requests {
		_, err := c.AT(ctx, request)
		if err != nil {
			return fmt.Errorf("%s failed: %w", request, err)
		}
	}
	return nil
}

func (c *COM) timeoutOrDefault(timeout time.Duration) time.Duration {
	if timeout <= 0 {
		return c.defaultTimeout
	}
	return timeout
}

func (c *COM) do(cmd *command) (at.Response, error) {
	if cmd.ctx == nil {
		cmd.ctx = context.Background()
	}

	select {
	case <-c.stopped:
		return at.Response{}, c.closedError()
	default:
	}

	select {
	case c.commands <- cmd:
	case <-cmd.ctx.Done():
		return at.Response{}, cmd.ctx.Err()
	case <-c.stopped:
		return at.Response{}, c.closedError()
	}

	select {
	case result := <-cmd.done:
		return result.response, result.err
	case <-c.stopped:
		select {
		case result := <-cmd.done:
			return result.response, result.err
		default:
			return at.Response{}, c.closedError()
		}
	}
}

func (c *COM) closedError() error {
	return &at.Error{Kind: at.ChannelClosed, Err: c.err}
}

func (c *COM) trace(args ...interface{}) {
	if c.tracer == nil {
		return
	}
	fmt.Fprint(c.tracer, args...)
}

func (c *COM) tracef(format string, args ...interface{}) {
	if c.tracer == nil {
		return
	}
	fmt.Fprintf(c.tracer, format, args...)
}
