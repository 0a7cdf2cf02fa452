package ircd

import (
	"testing"

	"github.com/emberircd/emberd/internal/config"
)

func TestOperCommandRejectsUnknownName(t *testing.T) {
	srv := newTestServer(t)
	c := connectClient(t, srv)
	register(t, c, "alice")

	c.send("OPER nobody anything")
	c.expect(" 464 ")
}

func TestOperCommandRejectsWrongPassword(t *testing.T) {
	srv := newTestServer(t)
	srv.cfg.Opers = append(srv.cfg.Opers, config.Oper{
		Name:         "root",
		PasswordHash: "$2a$10$deadbeefdeadbeefdeadbeuXYZXYZXYZXYZXYZXYZXYZXYZXYZXYZ",
		Class:        "opers",
		Privileges:   []string{"kill", "gline"},
	})

	c := connectClient(t, srv)
	register(t, c, "alice")

	c.send("OPER root totally-wrong-password")
	c.expect(" 464 ")

	u := srv.findUser("alice")
	if u.Oper {
		t.Fatalf("a bcrypt mismatch must never grant operator status")
	}
}
