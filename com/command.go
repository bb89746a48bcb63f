package com

import (
	"context"
	"strings"
	"time"

	"github.com/ftl/atmodem/at"
)

type mode int

const (
	noPayload mode = iota
	singleLine
	multiLine
	twoPhase
)

type state int

const (
	awaitingFinal state = iota
	awaitingPrompt
	awaitingFinalAfterPrompt
	resolved
)

type result struct {
	response at.Response
	err      error
}

type command struct {
	ctx               context.Context
	request           string
	payload           string
	prefix            string
	mode              mode
	timeout           time.Duration
	completionTimeout time.Duration

	state         state
	intermediates []string
	done          chan result
}

func newCommand(ctx context.Context, mode mode, request string, prefix string, timeout time.Duration) *command {
	return &command{
		ctx:     ctx,
		request: request,
		prefix:  prefix,
		mode:    mode,
		timeout: timeout,
		done:    make(chan result, 1),
	}
}

func (c *command) initialState() state {
	if c.mode == twoPhase {
		return awaitingPrompt
	}
	return awaitingFinal
}

// AddLine feeds a line to the command and reports whether the command consumed it.
// Lines that are not consumed belong to the unsolicited path.
func (c *command) AddLine(line string) bool {
	if c.state == resolved {
		return false
	}

	if final, err := at.ParseFinal(line); final {
		c.resolve(strings.TrimSpace(line), err)
		return true
	}

	if c.isEcho(line) {
		return true
	}

	switch c.mode {
	case singleLine, twoPhase:
		if c.prefix != "" && len(c.intermediates) == 0 && strings.HasPrefix(line, c.prefix) {
			c.intermediates = append(c.intermediates, line)
			return true
		}
	case multiLine:
		c.intermediates = append(c.intermediates, line)
		return true
	}
	return false
}

func (c *command) isEcho(line string) bool {
	switch c.state {
	case awaitingFinal, awaitingPrompt:
		return line == c.request
	case awaitingFinalAfterPrompt:
		return line == c.payload || line == c.request
	default:
		return false
	}
}

// AddPrompt feeds the data entry prompt to the command and reports whether the command consumed it.
func (c *command) AddPrompt() bool {
	if c.state != awaitingPrompt {
		return false
	}
	c.state = awaitingFinalAfterPrompt
	return true
}

func (c *command) resolve(final string, err error) {
	if c.state == resolved {
		return
	}
	c.state = resolved
	response := at.Response{
		Intermediates: c.intermediates,
		Final:         final,
	}
	if err != nil && !isCodedError(err) {
		response = at.Response{Final: final}
	}
	c.done <- result{response: response, err: err}
}

// Abort resolves the command without a final status line; any intermediates are dropped.
func (c *command) Abort(err error) {
	c.intermediates = nil
	c.resolve("", err)
}

func (c *command) Complete() bool {
	return c.state == resolved
}

func (c *command) Cancelled() <-chan struct{} {
	if c.ctx == nil {
		return nil
	}
	return c.ctx.Done()
}

func isCodedError(err error) bool {
	switch at.KindOf(err) {
	case at.CMEError, at.CMSError:
		return true
	default:
		return false
	}
}
