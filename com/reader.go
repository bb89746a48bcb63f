package com

import (
	"io"

	"github.com/ftl/atmodem/at"
)

const readBufferSize = 1024

// line is one logical line received from the modem, or the data entry prompt.
type line struct {
	text   string
	prompt bool
}

func (l line) String() string {
	return l.text
}

// readLoop splits the byte stream of the modem into lines. The prompt "> " is not terminated,
// it is reported as soon as it is complete and nothing follows it in the same read. When the reader fails, the pending partial line is
// flushed, the error is reported on the second channel, and the lines channel is closed.
func readLoop(r io.Reader) (<-chan line, <-chan error) {
	lines := make(chan line, 1)
	errs := make(chan error, 1)
	go func() {
		defer close(lines)
		buf := make([]byte, readBufferSize)
		currentLine := make([]byte, 0, readBufferSize)
		for {
			n, err := r.Read(buf)

			for i, b := range buf[0:n] {
				switch {
				case b == '\n' || b == '\r':
					if len(currentLine) == 0 {
						continue
					}
					text := string(currentLine)
					lines <- line{text: text, prompt: text == at.Prompt}
					currentLine = currentLine[:0]
				case b < ' ':
					continue
				default:
					currentLine = append(currentLine, b)
					// the modem waits after the prompt, a line that continues is payload
					if i == n-1 && string(currentLine) == at.Prompt {
						lines <- line{text: at.Prompt, prompt: true}
						currentLine = currentLine[:0]
					}
				}
			}

			if err != nil {
				if len(currentLine) > 0 {
					lines <- line{text: string(currentLine)}
				}
				errs <- err
				return
			}
		}
	}()
	return lines, errs
}
