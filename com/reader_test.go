package com

import (
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestReadLoop_CloseDevice(t *testing.T) {
	device := NewInMemory()
	lines, errs := readLoop(device)
	device.Close()

	_, valid := <-lines

	assert.False(t, valid)
	assert.Equal(t, io.EOF, <-errs)
}

func TestReadLoop_ReadLine(t *testing.T) {
	device := NewInMemory()
	lines, errs := readLoop(device)

	go func() {
		time.Sleep(10 * time.Millisecond)
		device.Respond("hello\r\n\nworld")
	}()

	firstLine, valid := <-lines

	assert.True(t, valid)
	assert.Equal(t, line{text: "hello"}, firstLine)

	device.Close()
	lastLine, valid := <-lines

	assert.True(t, valid)
	assert.Equal(t, line{text: "world"}, lastLine)

	_, valid = <-lines

	assert.False(t, valid)
	assert.Equal(t, io.EOF, <-errs)
}

func TestReadLoop_Framing(t *testing.T) {
	tt := []struct {
		desc     string
		chunks   []string
		expected []line
	}{
		{
			desc:     "crlf framed",
			chunks:   []string{"\r\nOK\r\n"},
			expected: []line{{text: "OK"}},
		},
		{
			desc:     "blank lines are dropped",
			chunks:   []string{"\r\n\r\n+CBC: 2,75\r\n\r\n\r\nOK\r\n"},
			expected: []line{{text: "+CBC: 2,75"}, {text: "OK"}},
		},
		{
			desc:     "carriage return only",
			chunks:   []string{"RING\rRING\r"},
			expected: []line{{text: "RING"}, {text: "RING"}},
		},
		{
			desc:     "line split across reads",
			chunks:   []string{"+CS", "Q: 15", ",2\r\nO", "K\r\n"},
			expected: []line{{text: "+CSQ: 15,2"}, {text: "OK"}},
		},
		{
			desc:     "prompt",
			chunks:   []string{"\r\n> "},
			expected: []line{{text: "> ", prompt: true}},
		},
		{
			desc:     "prompt split across reads",
			chunks:   []string{"\r\n>", " "},
			expected: []line{{text: "> ", prompt: true}},
		},
		{
			desc:     "line starting like a prompt",
			chunks:   []string{"+CMGR: \"REC READ\",\"+4712345678\",,\"21/03/04,12:30:45+04\"\r\n> quoted\r\n"},
			expected: []line{{text: "+CMGR: \"REC READ\",\"+4712345678\",,\"21/03/04,12:30:45+04\""}, {text: "> quoted"}},
		},
		{
			desc:     "line starting like a prompt split after the prompt",
			chunks:   []string{"\r\n> quoted", " text\r\n"},
			expected: []line{{text: "> quoted text"}},
		},
		{
			desc:     "terminated prompt",
			chunks:   []string{"\r\n> \r\n"},
			expected: []line{{text: "> ", prompt: true}},
		},
		{
			desc:     "control characters are dropped",
			chunks:   []string{"M\x00sg\x1a\r\n"},
			expected: []line{{text: "Msg"}},
		},
	}
	for _, tc := range tt {
		t.Run(tc.desc, func(t *testing.T) {
			device := NewInMemory()
			defer device.Close()
			lines, _ := readLoop(device)

			go func() {
				for _, chunk := range tc.chunks {
					device.Respond(chunk)
					time.Sleep(10 * time.Millisecond)
				}
			}()

			actual := make([]line, 0, len(tc.expected))
			for len(actual) < len(tc.expected) {
				select {
				case l := <-lines:
					actual = append(actual, l)
				case <-time.After(time.Second):
					t.Fatalf("timeout, got %v", actual)
				}
			}
			assert.Equal(t, tc.expected, actual)
		})
	}
}

type failingReader struct {
	data string
	err  error
}

func (r *failingReader) Read(p []byte) (int, error) {
	n := copy(p, r.data)
	return n, r.err
}

func TestReadLoop_ReadError(t *testing.T) {
	readErr := errors.New("device unplugged")
	lines, errs := readLoop(&failingReader{data: "+CSQ: 1", err: readErr})

	partial, valid := <-lines
	assert.True(t, valid)
	assert.Equal(t, "+CSQ: 1", partial.text)

	_, valid = <-lines
	assert.False(t, valid)
	assert.Equal(t, readErr, <-errs)
}
