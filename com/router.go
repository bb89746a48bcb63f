package com

import (
	"sync"

	"github.com/ftl/atmodem/at"
)

// UnsolicitedHandler is called for each unsolicited notification.
type UnsolicitedHandler func(at.Unsolicited)

// router delivers unsolicited notifications in order on its own goroutine. Put never blocks,
// so the correlator is never held up by a slow handler, and handlers may issue commands.
type router struct {
	mu       sync.Mutex
	queue    []at.Unsolicited
	handlers map[int]UnsolicitedHandler
	nextID   int
	signal   chan struct{}
	stop     chan struct{}
	stopped  chan struct{}
}

func newRouter() *router {
	r := &router{
		handlers: make(map[int]UnsolicitedHandler),
		signal:   make(chan struct{}, 1),
		stop:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
	go r.run()
	return r
}

func (r *router) Put(u at.Unsolicited) {
	r.mu.Lock()
	r.queue = append(r.queue, u)
	r.mu.Unlock()

	select {
	case r.signal <- struct{}{}:
	default:
	}
}

func (r *router) Subscribe(handler UnsolicitedHandler) func() {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.nextID
	r.nextID++
	r.handlers[id] = handler

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.handlers, id)
	}
}

// Stop delivers all pending notifications and waits until the dispatch goroutine is done.
func (r *router) Stop() {
	select {
	case <-r.stop:
	default:
		close(r.stop)
	}
	<-r.stopped
}

func (r *router) run() {
	defer close(r.stopped)
	for {
		select {
		case <-r.signal:
			r.dispatchAll()
		case <-r.stop:
			r.dispatchAll()
			return
		}
	}
}

func (r *router) dispatchAll() {
	for {
		r.mu.Lock()
		if len(r.queue) == 0 {
			r.mu.Unlock()
			return
		}
		next := r.queue[0]
		r.queue = r.queue[1:]
		handlers := make([]UnsolicitedHandler, 0, len(r.handlers))
		for id := 0; id < r.nextID; id++ {
			if handler, ok := r.handlers[id]; ok {
				handlers = append(handlers, handler)
			}
		}
		r.mu.Unlock()

		for _, handler := range handlers {
			handler(next)
		}
	}
}
