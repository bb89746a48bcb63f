package com

import (
	"io"
	"sync"
	"time"
)

const writeSignalBufferSize = 16

// NewInMemory returns an in-memory device that can stand in for a modem in tests.
func NewInMemory() *InMemory {
	return &InMemory{
		readBuffer:  []byte{},
		writeBuffer: []byte{},
		readLock:    new(sync.RWMutex),
		writeLock:   new(sync.RWMutex),
		writeSignal: make(chan []byte, writeSignalBufferSize),
		closed:      make(chan struct{}),
	}
}

// InMemory is an io.ReadWriteCloser. Data prepared with PrepareRead is returned by Read,
// everything written is recorded and announced on a buffered signal channel.
type InMemory struct {
	readBuffer     []byte
	writeBuffer    []byte
	readLock       *sync.RWMutex
	writeLock      *sync.RWMutex
	writeSignal    chan []byte
	closeOnce      sync.Once
	closed         chan struct{}
	closeWhenEmpty bool
}

func (rw *InMemory) Close() error {
	rw.closeOnce.Do(func() {
		close(rw.closed)
	})
	return nil
}

func (rw *InMemory) WaitUntilClosed() {
	<-rw.closed
}

func (rw *InMemory) Read(p []byte) (int, error) {
	for {
		rw.readLock.RLock()
		available := len(rw.readBuffer) > 0
		rw.readLock.RUnlock()
		if available {
			break
		}
		select {
		case <-rw.closed:
			return 0, io.EOF
		case <-time.After(5 * time.Millisecond):
			continue
		}
	}

	select {
	case <-rw.closed:
		return 0, io.EOF
	default:
	}

	rw.readLock.Lock()
	defer rw.readLock.Unlock()
	n := copy(p, rw.readBuffer)
	rw.readBuffer = rw.readBuffer[n:]
	if rw.closeWhenEmpty && len(rw.readBuffer) == 0 {
		rw.Close()
	}
	return n, nil
}

// PrepareRead appends the given bytes to the data returned by Read.
func (rw *InMemory) PrepareRead(p []byte) {
	rw.readLock.Lock()
	defer rw.readLock.Unlock()

	rw.readBuffer = append(rw.readBuffer, p...)
}

// Respond is a short-cut for PrepareRead with a string.
func (rw *InMemory) Respond(s string) {
	rw.PrepareRead([]byte(s))
}

func (rw *InMemory) IsReadEmpty() bool {
	rw.readLock.RLock()
	defer rw.readLock.RUnlock()

	return len(rw.readBuffer) == 0
}

// CloseWhenEmpty closes the device as soon as all prepared data was read.
func (rw *InMemory) CloseWhenEmpty(value bool) {
	rw.readLock.Lock()
	defer rw.readLock.Unlock()

	rw.closeWhenEmpty = value
}

func (rw *InMemory) Write(p []byte) (int, error) {
	select {
	case <-rw.closed:
		return 0, io.ErrClosedPipe
	default:
	}

	rw.writeLock.Lock()
	defer rw.writeLock.Unlock()

	rw.writeBuffer = append(rw.writeBuffer, p...)
	written := make([]byte, len(p))
	copy(written, p)
	select {
	case rw.writeSignal <- written:
	default:
	}
	return len(p), nil
}

// Written returns everything that was written so far.
func (rw *InMemory) Written() []byte {
	rw.writeLock.RLock()
	defer rw.writeLock.RUnlock()

	result := make([]byte, len(rw.writeBuffer))
	copy(result, rw.writeBuffer)
	return result
}

func (rw *InMemory) ClearWrite() {
	rw.writeLock.Lock()
	defer rw.writeLock.Unlock()

	rw.writeBuffer = []byte{}
}

// WaitUntilWritten blocks until the next write that was not yet awaited.
func (rw *InMemory) WaitUntilWritten() {
	<-rw.writeSignal
}

// NextWrite returns the next write that was not yet awaited, or false if nothing is written within the timeout.
func (rw *InMemory) NextWrite(timeout time.Duration) (string, bool) {
	select {
	case written := <-rw.writeSignal:
		return string(written), true
	case <-time.After(timeout):
		return "", false
	}
}
