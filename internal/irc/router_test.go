package irc

import (
	"strings"
	"testing"

	"github.com/ergochat/irc-go/ircmsg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgy1/trackr/internal/auth"
)

var serverNUH = ircmsg.NUH{Name: "Server1", User: "srv", Host: "srv.users.newdomain.org"}

// routerSetup builds a client with moderation enabled and a recognized
// server in the channel, before any announcement has been seen.
func routerSetup(t *testing.T) (*Client, *fakeSender) {
	t.Helper()
	cfg := testConfig(t, "secret: hunter2\nnew_domain: newdomain.org\nlegacy_domains: [old1.net]\n")
	c, out, _ := newTestClient(t, cfg)
	c.tracker.OnNames(testChannel, []string{"@Admin", "+Server1", "Plain"})
	return c, out
}

func loginLines(out *fakeSender) []string {
	var lines []string
	for _, l := range out.to("Server1") {
		if strings.HasPrefix(l, "login trackr ") {
			lines = append(lines, l)
		}
	}
	return lines
}

func TestSnapshotPopulatesRosterAndStartsLogin(t *testing.T) {
	c, out := routerSetup(t)

	c.handleMessage(testChannel, serverNUH, "Players: alice, bob")

	srv, ok := c.registry.Get("Server1")
	require.True(t, ok)
	assert.Equal(t, []string{"alice", "bob"}, srv.Roster.Names())
	assert.Equal(t, auth.StatusPending, srv.Login.Status)

	want := "login trackr " + auth.DerivePassword("Server1", serverNUH.Host, "hunter2", auth.ModeCurrent)
	require.NotEmpty(t, out.to("Server1"))
	assert.Equal(t, want, out.to("Server1")[0])
}

func TestSnapshotDoesNotRestartLogin(t *testing.T) {
	c, out := routerSetup(t)

	c.handleMessage(testChannel, serverNUH, "Players: alice")
	c.handleMessage(testChannel, serverNUH, "Players: alice, bob")

	assert.Len(t, loginLines(out), 1, "only the first snapshot triggers a login")
}

func TestIncorrectPasswordWalksFallbackChain(t *testing.T) {
	c, out := routerSetup(t)

	c.handleMessage(testChannel, serverNUH, "Players: alice")
	srv, _ := c.registry.Get("Server1")

	// Host has three dot segments and one legacy domain: three distinct
	// credentials (the legacy derivation against the substituted host
	// collides with the own-host legacy one and is skipped).
	for i := 0; i < 2; i++ {
		c.handleMessage(testChannel, serverNUH, "Incorrect password, or the account does not exist.")
		assert.Equal(t, auth.StatusPending, srv.Login.Status)
	}

	attempts := loginLines(out)
	require.Len(t, attempts, 3)
	seen := map[string]bool{}
	for _, a := range attempts {
		assert.False(t, seen[a], "fallback credentials never repeat")
		seen[a] = true
	}

	c.handleMessage(testChannel, serverNUH, "Incorrect password, or the account does not exist.")
	assert.Equal(t, auth.StatusFailed, srv.Login.Status)
	assert.Len(t, loginLines(out), 3, "an exhausted chain sends nothing further")
}

func TestUnsolicitedIncorrectPasswordIgnored(t *testing.T) {
	c, out := routerSetup(t)

	// No login was ever sent: a stray rejection line (someone else's
	// failed login relayed by the server) must not start one.
	c.registry.Ensure("Server1", serverNUH.Host)
	c.handleMessage(testChannel, serverNUH, "Incorrect password, or the account does not exist.")

	assert.Empty(t, loginLines(out))
	srv, _ := c.registry.Get("Server1")
	assert.Equal(t, auth.StatusNone, srv.Login.Status)
}

func TestLoginSuccessRotatesPasswordOnce(t *testing.T) {
	c, out := routerSetup(t)

	c.handleMessage(testChannel, serverNUH, "Players: alice")
	c.handleMessage(testChannel, serverNUH, "You are now logged in as trackr.")

	srv, _ := c.registry.Get("Server1")
	assert.Equal(t, auth.StatusOK, srv.Login.Status)

	rotation := "cmd setpassword trackr " + auth.DerivePassword("Server1", serverNUH.Host, "hunter2", auth.ModeCurrent)
	assert.Contains(t, out.to("Server1"), rotation)

	// A duplicate success line must not rotate again.
	c.handleMessage(testChannel, serverNUH, "You are now logged in as trackr.")
	count := 0
	for _, l := range out.to("Server1") {
		if l == rotation {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestJoinLeaveEventsUpdateRoster(t *testing.T) {
	c, _ := routerSetup(t)

	c.handleMessage(testChannel, serverNUH, "Players: alice")
	c.handleMessage(testChannel, serverNUH, "*** carol joined the game.")
	c.handleMessage(testChannel, serverNUH, "*** alice left the game.")

	srv, _ := c.registry.Get("Server1")
	assert.Equal(t, []string{"carol"}, srv.Roster.Names())
}

func TestRelayedLinesAreNotAnnouncements(t *testing.T) {
	c, _ := routerSetup(t)

	c.handleMessage(testChannel, serverNUH, "Players: alice")
	c.handleMessage(testChannel, serverNUH, "<mallory> Players: evil1, evil2")

	srv, _ := c.registry.Get("Server1")
	assert.Equal(t, []string{"alice"}, srv.Roster.Names(), "relayed chat cannot forge a snapshot")
}

func TestUnrelatedChatterIgnored(t *testing.T) {
	c, out := routerSetup(t)

	c.handleMessage(testChannel, ircmsg.NUH{Name: "Plain", User: "u", Host: "users/plain"}, "Players: fake")
	_, ok := c.registry.Get("Plain")
	assert.False(t, ok, "non-servers never get a roster")
	assert.Empty(t, out.sent)
}

func TestUnwrapRelay(t *testing.T) {
	cases := []struct {
		in   string
		nick string
		rest string
		ok   bool
	}{
		{"<alice> hello there", "alice", "hello there", true},
		{"<a> hi", "a", "hi", true},
		{"<\x034alice> hi", "\x034alice", "hi", true},
		{"<> hi", "", "", false},
		{"<*status> hi", "", "", false},
		{"no brackets here", "", "", false},
		{"<alice>", "", "", false},
	}
	for _, tc := range cases {
		nick, rest, ok := unwrapRelay(tc.in)
		assert.Equal(t, tc.ok, ok, tc.in)
		if tc.ok {
			assert.Equal(t, tc.nick, nick, tc.in)
			assert.Equal(t, tc.rest, rest, tc.in)
		}
	}
}

func TestPlayersAliasAndCooldown(t *testing.T) {
	c, out := routerSetup(t)
	c.handleMessage(testChannel, serverNUH, "Players: alice, bob")

	user := ircmsg.NUH{Name: "Plain", User: "u", Host: "users/plain"}
	out.reset()

	c.handleMessage(testChannel, user, ".players")
	lines := out.to(testChannel)
	require.Len(t, lines, 2)
	assert.Equal(t, "Players on \x02Server1\x02: alice, bob", lines[0])
	assert.Equal(t, "Total: \x022 players\x02 across \x021 active server\x02 (and 0 inactive servers).", lines[1])

	// Second request inside the window gets one notice, the third none.
	c.handleMessage(testChannel, user, ",players")
	c.handleMessage(testChannel, user, ".players")
	lines = out.to(testChannel)
	require.Len(t, lines, 3)
	assert.Equal(t, "Plain: You can only run \x02,players\x02 once every \x0215 seconds\x02.", lines[2])
}

func TestPMOnlyAllowsAdminLogin(t *testing.T) {
	c, out := routerSetup(t)
	c.registry.Ensure("Server1", serverNUH.Host)

	admin := ircmsg.NUH{Name: "Admin", User: "u", Host: "users/edgy1"}
	plain := ircmsg.NUH{Name: "Plain", User: "u", Host: "users/plain"}

	c.handleMessage("trackr", plain, ",players")
	assert.Equal(t, []string{"You may not execute commands in PMs."}, out.to("Plain"))

	out.reset()
	c.handleMessage("trackr", plain, ",login Server1 pw")
	assert.Equal(t, []string{"Permission denied!"}, out.to("Plain"))

	out.reset()
	c.handleMessage("trackr", admin, ",login Server1")
	assert.Equal(t, []string{"Invalid syntax! Syntax: login <server> <password>"}, out.to("Admin"))

	out.reset()
	c.handleMessage("trackr", admin, ",login nobody pw")
	assert.Equal(t, []string{`What's a "nobody"?`}, out.to("Admin"))

	out.reset()
	c.handleMessage("trackr", admin, ",login Server1 hunterpw")
	assert.Equal(t, []string{"login trackr hunterpw"}, out.to("Server1"))
	assert.Equal(t, []string{"I will attempt to log in."}, out.to("Admin"))

	srv, _ := c.registry.Get("Server1")
	assert.Equal(t, auth.StatusPending, srv.Login.Status)
}

func TestBadServersListsUnauthenticated(t *testing.T) {
	c, out := routerSetup(t)
	c.handleMessage(testChannel, serverNUH, "Players: alice")

	user := ircmsg.NUH{Name: "Plain", User: "u", Host: "users/plain"}
	out.reset()
	c.handleMessage(testChannel, user, ",badservers")
	require.Len(t, out.to(testChannel), 1)
	assert.Equal(t, "Plain: Servers I am not logged into: Server1", out.to(testChannel)[0])

	c.handleMessage(testChannel, serverNUH, "You are now logged in as trackr.")
	out.reset()
	c.handleMessage(testChannel, user, ",badservers")
	assert.Equal(t, "Plain: Servers I am not logged into: (none)", out.to(testChannel)[0])
}

func TestModLogShowsAuditEntries(t *testing.T) {
	c, out := routerSetup(t)
	c.handleMessage(testChannel, serverNUH, "Players: sam")
	srv, _ := c.registry.Get("Server1")
	srv.Login.Confirm()

	c.moderate(testChannel, adminNUH, "kick", "sam bye")

	out.reset()
	c.handleMessage(testChannel, adminNUH, ",modlog 1")
	notices := out.to("Admin")
	require.Len(t, notices, 2)
	assert.Equal(t, "The last \x021\x02 moderation actions:", notices[0])
	assert.Contains(t, notices[1], "Admin -> kick sam@Server1")
}

func TestModLogRequiresRank(t *testing.T) {
	c, out := routerSetup(t)
	plain := ircmsg.NUH{Name: "Plain", User: "u", Host: "users/plain"}

	c.handleMessage(testChannel, plain, ",modlog")
	assert.Equal(t, []string{"Plain: Permission denied!"}, out.to(testChannel))
}

func TestDieObeysAdminsOnly(t *testing.T) {
	c, out := routerSetup(t)

	plain := ircmsg.NUH{Name: "Plain", User: "u", Host: "users/plain"}
	c.handleMessage(testChannel, plain, ",die")
	require.Len(t, out.to(testChannel), 1, "non-admins get a retort")

	shutdown := false
	c.OnShutdown = func() { shutdown = true }
	c.handleMessage(testChannel, adminNUH, ",die")
	assert.True(t, shutdown)
}
