package ircd

import (
	"net"
	"sync"
	"time"

	"github.com/emberircd/emberd/internal/socketengine"
)

// acceptQueue hands accepted net.Conns from the listener's accept goroutine
// to listenerHandler.HandleEvent, which runs on the event-loop goroutine.
// This is what keeps acceptConn (which touches Server state) off the accept
// goroutine.
type acceptQueue struct {
	mu    sync.Mutex
	conns []net.Conn
}

func newAcceptQueue() *acceptQueue {
	return &acceptQueue{}
}

func (q *acceptQueue) push(c net.Conn) {
	q.mu.Lock()
	q.conns = append(q.conns, c)
	q.mu.Unlock()
}

func (q *acceptQueue) pop() net.Conn {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.conns) == 0 {
		return nil
	}
	c := q.conns[0]
	q.conns = q.conns[1:]
	return c
}

// listenerHandler implements socketengine.Handler for one listening socket.
type listenerHandler struct {
	fd     int
	server *Server
	class  string
	queue  *acceptQueue
}

func (l *listenerHandler) GetFD() int { return l.fd }

func (l *listenerHandler) HandleEvent(kind socketengine.EventKind) {
	if kind != socketengine.EventRead {
		return
	}
	if c := l.queue.pop(); c != nil {
		l.server.acceptConn(c, l.class)
	}
}

func (l *listenerHandler) acceptLoop(ln net.Listener, engine *socketengine.Engine) {
	for {
		c, err := ln.Accept()
		if err != nil {
			return
		}
		l.queue.push(c)
		engine.Notify(l.fd, socketengine.EventRead, engine.GenerationFor(l.fd))
	}
}

// tickHandler drives the once-per-second background tick (§4.H) through
// the same readiness-dispatch contract as every other handler, so the tick
// body runs on the event-loop goroutine without a separate select case.
type tickHandler struct {
	fd     int
	server *Server
}

func (t *tickHandler) GetFD() int { return t.fd }

func (t *tickHandler) HandleEvent(kind socketengine.EventKind) {
	t.server.tick()
}

func (t *tickHandler) run(engine *socketengine.Engine, done <-chan struct{}) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			engine.Notify(t.fd, socketengine.EventRead, engine.GenerationFor(t.fd))
		}
	}
}
