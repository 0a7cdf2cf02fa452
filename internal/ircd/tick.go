package ircd

import (
	"fmt"
	"time"

	"github.com/emberircd/emberd/internal/hooks"
)

// tick runs once per second from the event loop (§4.H).
func (s *Server) tick() {
	now := time.Now()

	for _, u := range s.snapshotUsers() {
		if u.Quitting {
			continue
		}

		if u.Class != nil && u.Class.CommandRate > 0 {
			u.FloodPenalty -= u.Class.CommandRate
			if u.FloodPenalty < 0 {
				u.FloodPenalty = 0
			}
		}

		if u.Registered == RegAll && !u.NPing.IsZero() && now.After(u.NPing) {
			if !u.LastPing {
				elapsed := 120
				if u.Class != nil && u.Class.PingInterval > 0 {
					elapsed = u.Class.PingInterval
				}
				s.QuitUser(u, fmt.Sprintf("Ping timeout: %d seconds", elapsed), "")
				continue
			}
			u.send(fmt.Sprintf(":%s PING :%s", s.Name, s.Name))
			u.LastPing = false
			interval := 120
			if u.Class != nil && u.Class.PingInterval > 0 {
				interval = u.Class.PingInterval
			}
			u.NPing = now.Add(time.Duration(interval) * time.Second)
		}

		if u.Registered == RegNickUser && s.allModulesReportReady(u) {
			s.fullConnect(u)
			continue
		}

		if u.Registered != RegAll && u.Class != nil && u.Class.RegTimeout > 0 {
			if now.After(u.Signon.Add(time.Duration(u.Class.RegTimeout) * time.Second)) {
				s.QuitUser(u, "Registration timeout", "")
			}
		}
	}

	s.garbageCollect()
	s.BanCache.Sweep()
}

// allModulesReportReady fires OnCheckReady as a first-result hook; the
// user is ready to be promoted only if every subscriber passes through.
func (s *Server) allModulesReportReady(u *User) bool {
	return s.Hooks.FirstResult(hooks.OnCheckReady, u) == hooks.Passthru
}

// garbageCollect resets the broadcast-dedup counter and purges expired
// channel invites (§4.H).
func (s *Server) garbageCollect() {
	s.alreadySentID = 0
	for _, u := range s.uuids {
		u.alreadySent = 0
	}
	for _, ch := range s.channels {
		ch.purgeExpiredInvites()
	}
}

// snapshotUsers copies the live user set so tick can QuitUser (which
// mutates s.users) while iterating.
func (s *Server) snapshotUsers() []*User {
	out := make([]*User, 0, len(s.uuids))
	for _, u := range s.uuids {
		out = append(out, u)
	}
	return out
}
