package ircd

import (
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/emberircd/emberd/internal/socketengine"
	"github.com/pkg/errors"
)

var errSendQExceeded = errors.New("SendQ exceeded")

// Conn is the buffered connection I/O layer (§4.C). Reader and writer
// goroutines never touch Server/User/Channel state directly; they only
// move bytes and report readiness through the socket engine, preserving
// the single-owner-goroutine guarantee for everything downstream of
// HandleEvent.
type Conn struct {
	fd     int
	raw    net.Conn
	server *Server
	user   *User

	recvCap int64
	sendCap int64

	lineCh  chan string
	errCh   chan string // close/error reason, buffered 1
	sendCh  chan []byte
	sendLen int64 // atomic

	closeOnce sync.Once
	closed    atomic.Bool
}

func newConn(server *Server, fd int, raw net.Conn, recvCap, sendCap int64) *Conn {
	if recvCap <= 0 {
		recvCap = 8192
	}
	if sendCap <= 0 {
		sendCap = 1 << 20
	}
	c := &Conn{
		fd:      fd,
		raw:     raw,
		server:  server,
		recvCap: recvCap,
		sendCap: sendCap,
		lineCh:  make(chan string, 256),
		errCh:   make(chan string, 1),
		sendCh:  make(chan []byte, 4096),
	}
	return c
}

// GetFD implements socketengine.Handler.
func (c *Conn) GetFD() int { return c.fd }

// HandleEvent implements socketengine.Handler. It always runs on the
// Server's single event-loop goroutine (the goroutine driving
// Engine.Dispatch), so this is the one place per connection that is safe
// to touch Server/User/Channel state from.
func (c *Conn) HandleEvent(kind socketengine.EventKind) {
	switch kind {
	case socketengine.EventRead:
		select {
		case line := <-c.lineCh:
			c.server.onLine(c.user, line)
		default:
		}
	case socketengine.EventError:
		reason := "Connection reset by peer"
		select {
		case r := <-c.errCh:
			reason = r
		default:
		}
		c.server.QuitUser(c.user, reason, "")
	}
}

func (c *Conn) notify(kind socketengine.EventKind) {
	gen := c.server.engine.GenerationFor(c.fd)
	c.server.engine.Notify(c.fd, kind, gen)
}

// start launches the reader and writer goroutines. Must be called once,
// after the Conn has been registered with the engine.
func (c *Conn) start() {
	go c.readLoop()
	go c.writeLoop()
}

func (c *Conn) readLoop() {
	scratch := make([]byte, 4096)
	var recvq []byte

	for {
		n, err := c.raw.Read(scratch)
		if n > 0 {
			recvq = append(recvq, scratch[:n]...)

			for {
				idx, width := indexLineEnd(recvq)
				if idx < 0 {
					break
				}
				line := string(recvq[:idx])
				recvq = recvq[idx+width:]
				if trimmed := trimLine(line); trimmed != "" {
					// Block rather than drop: a dispatcher that's behind
					// applies backpressure straight to the reader, which stops
					// draining the socket, so the client sees TCP backpressure
					// instead of silently losing lines. The RecvQ-exceeded
					// check below bounds only the unterminated tail of recvq.
					c.lineCh <- trimmed
					c.notify(socketengine.EventRead)
				}
			}

			if int64(len(recvq)) > c.recvCap {
				c.fail("RecvQ exceeded")
				return
			}
		}
		if err != nil {
			c.fail(readErrorReason(err))
			return
		}
	}
}

func (c *Conn) writeLoop() {
	for b := range c.sendCh {
		atomic.AddInt64(&c.sendLen, -int64(len(b)))
		if _, err := c.raw.Write(b); err != nil {
			c.fail("Write error")
			return
		}
	}
}

func (c *Conn) fail(reason string) {
	select {
	case c.errCh <- reason:
	default:
	}
	c.notify(socketengine.EventError)
}

// maybeQueueMessage encodes msg (without trailing CRLF) and enqueues it for
// the writer goroutine, enforcing the class SendQ cap (§4.C).
func (c *Conn) maybeQueueMessage(line string) error {
	if c.closed.Load() {
		return nil
	}
	b := []byte(line + "\r\n")
	if atomic.LoadInt64(&c.sendLen)+int64(len(b)) > c.sendCap {
		return errSendQExceeded
	}
	atomic.AddInt64(&c.sendLen, int64(len(b)))
	select {
	case c.sendCh <- b:
	default:
		atomic.AddInt64(&c.sendLen, -int64(len(b)))
		return errSendQExceeded
	}
	return nil
}

// closeAbortive discards any queued outbound data, writes a best-effort
// final ERROR line (giving up after one second if the peer is not
// reading), and closes the socket. Called only from QuitUser, on the
// event-loop goroutine.
func (c *Conn) closeAbortive(reason string) {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		_ = c.raw.SetWriteDeadline(time.Now().Add(time.Second))
		_, _ = c.raw.Write([]byte("ERROR :Closing link: " + reason + "\r\n"))
		c.server.engine.Del(c.fd)
		_ = c.raw.Close()
	})
}

func indexLineEnd(b []byte) (idx int, width int) {
	for i, ch := range b {
		if ch == '\n' {
			if i > 0 && b[i-1] == '\r' {
				return i - 1, 2
			}
			return i, 1
		}
		if ch == '\r' {
			if i+1 < len(b) && b[i+1] == '\n' {
				return i, 2
			}
			return i, 1
		}
	}
	return -1, 0
}

func trimLine(s string) string {
	for len(s) > 0 && (s[len(s)-1] == '\r' || s[len(s)-1] == '\n') {
		s = s[:len(s)-1]
	}
	return s
}

func readErrorReason(err error) string {
	if err.Error() == "EOF" {
		return "Client closed connection"
	}
	return "Connection reset by peer"
}
