// Package ircd implements the core: user/channel state, the command
// dispatcher, mode application, and the background tick, all owned by a
// single event-loop goroutine per SPEC_FULL.md §5.
package ircd

import (
	"crypto/tls"
	"fmt"
	"log"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/emberircd/emberd/internal/config"
	"github.com/emberircd/emberd/internal/hooks"
	"github.com/emberircd/emberd/internal/ircstring"
	"github.com/emberircd/emberd/internal/metrics"
	"github.com/emberircd/emberd/internal/socketengine"
	"github.com/emberircd/emberd/internal/xline"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// Server is the Catbox-equivalent: it owns every User and Channel, the
// X-line store, the event bus, and the socket engine.
type Server struct {
	Name    string
	Network string
	Created time.Time

	cfg *config.Config

	users    map[string]*User    // folded nick -> user
	uuids    map[string]*User    // uuid -> user
	channels map[string]*Channel // folded name -> channel

	localClones  map[string]int
	globalClones map[string]int

	unregisteredCount int
	alreadySentID     uint64
	uidCounter        uint64

	cull []*User

	Hooks    *hooks.Bus
	XLines   *xline.Store
	BanCache *xline.BanCache
	Metrics  *metrics.Metrics
	engine   *socketengine.Engine

	commands map[string]*Command

	nextFD int
	fdMu   sync.Mutex

	logger *log.Logger

	listeners []net.Listener
	done      chan struct{}
}

// New builds a Server from a loaded configuration. It does not start
// listening; call Listen for each configured listener and then Run.
func New(cfg *config.Config, logger *log.Logger, reg prometheus.Registerer) *Server {
	if logger == nil {
		logger = log.Default()
	}
	ircstring.SetActive(ircstring.ByName(cfg.Options.CaseMapping))

	s := &Server{
		Name:         cfg.ServerName,
		Network:      cfg.Network,
		Created:      time.Now(),
		cfg:          cfg,
		users:        make(map[string]*User),
		uuids:        make(map[string]*User),
		channels:     make(map[string]*Channel),
		localClones:  make(map[string]int),
		globalClones: make(map[string]int),
		Hooks:        hooks.New(),
		XLines:       xline.NewStore(),
		BanCache:     xline.NewBanCache(),
		Metrics:      metrics.New(reg),
		engine:       socketengine.New(0),
		logger:       logger,
		done:         make(chan struct{}),
	}
	s.commands = buildCommandTable()

	if cfg.BanSeed != "" {
		if err := xline.LoadSeed(s.XLines, cfg.BanSeed); err != nil {
			s.logf("error loading ban seed: %+v", err)
		}
	}

	return s
}

func (s *Server) logf(format string, args ...interface{}) {
	s.logger.Printf("[ircd] "+format, args...)
}

// Listen starts accepting on one configured listener. The accept loop
// itself runs off the event-loop goroutine; it only enqueues accepted
// connections and notifies the engine, per the Go-native rendition of
// §4.B's readiness model.
func (s *Server) Listen(lc config.Listener) error {
	var ln net.Listener
	var err error

	addr := net.JoinHostPort(lc.Address, strconv.Itoa(lc.Port))
	if lc.TLS {
		cert, cerr := tls.LoadX509KeyPair(lc.CertPEM, lc.KeyPEM)
		if cerr != nil {
			return errors.Wrapf(cerr, "error loading TLS keypair for listener %s", addr)
		}
		ln, err = tls.Listen("tcp", addr, &tls.Config{Certificates: []tls.Certificate{cert}})
	} else {
		ln, err = net.Listen("tcp", addr)
	}
	if err != nil {
		return errors.Wrapf(err, "error starting listener %s", addr)
	}

	s.listeners = append(s.listeners, ln)

	fd := s.allocFD()
	lh := &listenerHandler{fd: fd, server: s, class: lc.Class, queue: newAcceptQueue()}
	s.engine.Add(lh, socketengine.WantReadFast)

	go lh.acceptLoop(ln, s.engine)
	return nil
}

func (s *Server) allocFD() int {
	s.fdMu.Lock()
	defer s.fdMu.Unlock()
	s.nextFD++
	return s.nextFD
}

// Run drives the single event-loop goroutine: the background tick and
// every connection's readiness events all funnel through engine.Dispatch.
func (s *Server) Run() {
	tickFD := s.allocFD()
	th := &tickHandler{fd: tickFD, server: s}
	s.engine.Add(th, socketengine.WantReadFast)
	go th.run(s.engine, s.done)

	for {
		select {
		case <-s.done:
			return
		default:
			s.engine.Dispatch(true)
			s.drainCull()
		}
	}
}

// Shutdown stops the event loop and closes all listeners.
func (s *Server) Shutdown() {
	close(s.done)
	for _, ln := range s.listeners {
		_ = ln.Close()
	}
	s.engine.Close()
}

// acceptConn is invoked from the event-loop goroutine (via listenerHandler)
// for every newly accepted connection; it is the Accept(fd, ...) operation
// of §4.D.
func (s *Server) acceptConn(raw net.Conn, className string) {
	class := s.cfg.FindClass(className)
	if class == nil && len(s.cfg.Connect) > 0 {
		class = &s.cfg.Connect[0]
	}

	var recvCap, sendCap int64
	if class != nil {
		recvCap = int64(class.RecvQMax)
		sendCap = int64(class.SendQMax)
	}

	fd := s.allocFD()
	conn := newConn(s, fd, raw, recvCap, sendCap)

	host, _, _ := net.SplitHostPort(raw.RemoteAddr().String())
	u := newUser(s.newUID(), conn)
	u.Ident = "unknown"
	u.Host = host
	u.RealHost = host
	u.IP = host
	u.Server = s.Name
	u.Class = class
	if class != nil {
		u.NPing = time.Now().Add(time.Duration(class.PingInterval) * time.Second)
		u.LastPing = true
	}
	conn.user = u

	// Store under nick=uuid until registration assigns a real nick (§4.D
	// step 1).
	u.listKey = ircstring.FoldNick(u.UUID)
	s.users[u.listKey] = u
	s.uuids[u.UUID] = u
	s.unregisteredCount++

	s.addLocalClone(u.IP)
	s.addGlobalClone(u.IP)

	if class != nil && class.MaxConns > 0 && s.localClones[cloneKey(u.IP)] > class.MaxConns {
		s.Metrics.CloneRejections.Inc()
		s.QuitUser(u, "Too many connections from your host", "")
		return
	}

	u.Exempt = s.XLines.Matches(xline.KindEline, u) != nil

	if hit := s.BanCache.GetHit(u.IP); hit != nil {
		s.Metrics.BanCacheHits.WithLabelValues(string(hit.Kind)).Inc()
		if hit.Kind != "" && !u.Exempt {
			s.QuitUser(u, hit.Reason, "")
			return
		}
	} else if line := s.XLines.Matches(xline.KindZline, u); line != nil && !u.Exempt {
		s.Metrics.XLineHits.WithLabelValues(string(line.Kind)).Inc()
		s.BanCache.AddHit(u.IP, line.Kind, line.Reason, time.Hour)
		line.Apply(u)
		return
	} else {
		s.BanCache.AddHit(u.IP, "", "", time.Hour)
	}

	s.engine.Add(conn, socketengine.WantReadFast|socketengine.WantWriteFast)
	conn.start()

	s.Hooks.Broadcast(hooks.OnUserInit, u)
	s.Hooks.Broadcast(hooks.OnSetUserIP, u)

	s.Metrics.ConnectionsAccepted.Inc()
	s.Metrics.ConnectionsActive.Inc()
}

func (s *Server) newUID() string {
	s.uidCounter++
	raw := uuid.New()
	var seed uint64
	for _, b := range raw[:8] {
		seed = seed<<8 | uint64(b)
	}
	return fmt.Sprintf("%s%06X", shortServerTag(s.Name), (seed+s.uidCounter)%0xFFFFFF)
}

func shortServerTag(name string) string {
	tag := strings.ToUpper(name)
	if len(tag) >= 3 {
		return tag[:3]
	}
	for len(tag) < 3 {
		tag += "X"
	}
	return tag
}

// onLine is F's entry point (§4.F step 1): parse, locate, check, execute.
func (s *Server) onLine(u *User, line string) {
	if u == nil || u.Quitting {
		return
	}
	s.dispatch(u, line)
}

// QuitUser is the universal cancellation primitive (§4.D, §5).
func (s *Server) QuitUser(u *User, reason string, operReason string) {
	if u == nil || u.Quitting {
		return
	}
	u.Quitting = true

	if u.Class != nil && u.Class.MaxQuitLen > 0 && len(reason) > u.Class.MaxQuitLen {
		reason = reason[:u.Class.MaxQuitLen]
	}

	if u.conn != nil {
		u.conn.closeAbortive(fmt.Sprintf("(%s) [%s]", u.MatchHost(), reason))
	}

	if u.Registered == RegAll {
		s.Hooks.Broadcast(hooks.OnUserQuit, u)
		s.broadcastToCommonChannels(u, fmt.Sprintf(":%s QUIT :%s", u.Prefix(), reason))
	} else {
		s.unregisteredCount--
	}

	s.Hooks.Broadcast(hooks.OnUserDisconnect, u)
	if u.Registered == RegAll {
		s.serverNotice('q', fmt.Sprintf("Client exiting: %s (%s) [%s]", u.Nick, u.MatchHost(), reason))
	}

	for folded, ch := range u.channels {
		ch.removeMember(u)
		if ch.memberCount() == 0 {
			delete(s.channels, folded)
		}
	}

	if s.users[u.listKey] == u {
		delete(s.users, u.listKey)
	} else {
		s.logf("invariant violation: quitting user %s not found under its folded nick", u.UUID)
	}
	delete(s.uuids, u.UUID)

	s.removeLocalClone(u.IP)
	s.removeGlobalClone(u.IP)

	u.ext.DisposeAll()
	s.Metrics.ConnectionsActive.Dec()

	s.cull = append(s.cull, u)
}

func (s *Server) drainCull() {
	s.cull = s.cull[:0]
}

func (s *Server) addLocalClone(ip string)  { s.localClones[cloneKey(ip)]++ }
func (s *Server) addGlobalClone(ip string) { s.globalClones[cloneKey(ip)]++ }

func (s *Server) removeLocalClone(ip string) {
	k := cloneKey(ip)
	s.localClones[k]--
	if s.localClones[k] <= 0 {
		delete(s.localClones, k)
	}
}

func (s *Server) removeGlobalClone(ip string) {
	k := cloneKey(ip)
	s.globalClones[k]--
	if s.globalClones[k] <= 0 {
		delete(s.globalClones, k)
	}
}

// broadcastToCommonChannels sends line to every local user sharing at
// least one channel with u, each user receiving it at most once.
func (s *Server) broadcastToCommonChannels(u *User, line string) {
	seen := map[string]bool{u.UUID: true}
	for _, ch := range u.channels {
		for _, m := range ch.members {
			if seen[m.user.UUID] {
				continue
			}
			seen[m.user.UUID] = true
			m.user.send(line)
		}
	}
}

// broadcastToChannel sends line to every member of ch except exclude (pass
// nil to include everyone).
func (s *Server) broadcastToChannel(ch *Channel, exclude *User, line string) {
	for _, m := range ch.members {
		if exclude != nil && m.user.UUID == exclude.UUID {
			continue
		}
		m.user.send(line)
	}
}

// serverNotice sends a NOTICE from the server to every oper whose snomask
// includes flag.
func (s *Server) serverNotice(flag byte, text string) {
	for _, u := range s.users {
		if u.Oper && containsByte(u.Snomask, flag) {
			u.send(fmt.Sprintf(":%s NOTICE %s :*** Notice -- %s", s.Name, u.Nick, text))
		}
	}
}

func containsByte(s string, b byte) bool {
	for i := 0; i < len(s); i++ {
		if s[i] == b {
			return true
		}
	}
	return false
}

func (s *Server) findUser(nick string) *User {
	return s.users[ircstring.FoldNick(nick)]
}

func (s *Server) findChannel(name string) *Channel {
	return s.channels[ircstring.FoldChannel(name)]
}

func (s *Server) getOrCreateChannel(name string) (*Channel, bool) {
	folded := ircstring.FoldChannel(name)
	if ch, ok := s.channels[folded]; ok {
		return ch, false
	}
	ch := newChannel(name)
	s.channels[folded] = ch
	return ch, true
}

// Rehash reloads configuration from path, leaving the running config in
// place on any parse error (§6).
func (s *Server) Rehash(path string) error {
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	s.cfg = cfg
	ircstring.SetActive(ircstring.ByName(cfg.Options.CaseMapping))
	s.Hooks.Broadcast(hooks.OnRehash, s)
	return nil
}
