package irc

import (
	"fmt"
	"math/rand"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ergochat/irc-go/ircmsg"

	"github.com/edgy1/trackr/internal/auth"
)

// pacingDelay separates the per-server lines of a roster listing.
const pacingDelay = 500 * time.Millisecond

// cmdPlayers lists every server's players in the channel, paced so the
// bot does not flood, and gated by the per-channel cooldown.
func (c *Client) cmdPlayers(channel, nick string) {
	ok, notify := c.cooldowns.Begin(channel)
	if !ok {
		if notify {
			c.out.Privmsg(channel, fmt.Sprintf("%s: You can only run \x02%splayers\x02 once every \x02%d seconds\x02.",
				nick, c.cfg.Prefix, c.cfg.Cooldown))
		}
		return
	}

	var total, inactive, totalPlayers int
	for _, srvNick := range c.channelServers(channel) {
		srv, ok := c.registry.Get(srvNick)
		if !ok || srv.Roster.Len() == 0 {
			inactive++
			continue
		}
		total++
		totalPlayers += srv.Roster.Len()
		c.out.Privmsg(channel, fmt.Sprintf("Players on \x02%s\x02: %s",
			srv.Nick, strings.Join(srv.Roster.Names(), ", ")))

		// The listing itself consumes cooldown time; account for it as
		// we go, not at the end.
		c.cooldowns.Advance(channel, pacingDelay)
		c.pace(pacingDelay)
	}

	c.out.Privmsg(channel, fmt.Sprintf("Total: \x02%d player%s\x02 across \x02%d active server%s\x02 (and %d inactive server%s).",
		totalPlayers, plural(totalPlayers), total, plural(total), inactive, plural(inactive)))
}

// cmdBadServers lists the servers the bot is not logged into.
func (c *Client) cmdBadServers(channel, nick string) {
	var bad []string
	for _, srvNick := range c.channelServers(channel) {
		srv, ok := c.registry.Get(srvNick)
		if !ok || srv.Login.Status != auth.StatusOK {
			bad = append(bad, srvNick)
		}
	}
	sort.Slice(bad, func(i, j int) bool {
		return strings.ToLower(bad[i]) < strings.ToLower(bad[j])
	})
	if len(bad) == 0 {
		bad = append(bad, "(none)")
	}
	c.out.Privmsg(channel, fmt.Sprintf("%s: Servers I am not logged into: %s", nick, strings.Join(bad, ", ")))
}

// cmdLogin is the PM-only manual login override.
func (c *Client) cmdLogin(nick, param string) {
	parts := strings.SplitN(param, " ", 2)
	if len(parts) != 2 {
		c.out.Privmsg(nick, "Invalid syntax! Syntax: login <server> <password>")
		return
	}
	sid, password := parts[0], parts[1]

	if !c.tracker.InAnyChannel(sid) {
		c.out.Privmsg(nick, fmt.Sprintf("What's a %q?", sid))
		return
	}
	srv, ok := c.registry.Get(sid)
	if !ok {
		c.out.Privmsg(nick, fmt.Sprintf("%q is not a server!", sid))
		return
	}

	srv.Login.Begin(0)
	c.out.Privmsg(srv.Nick, "login trackr "+password)
	c.out.Privmsg(nick, "I will attempt to log in.")
}

// cmdModLog shows the most recent moderation audit entries.
func (c *Client) cmdModLog(channel string, from ircmsg.NUH, param string) {
	if !c.isAdmin(channel, from.Name) {
		c.out.Privmsg(channel, from.Name+": Permission denied!")
		return
	}

	count := 10
	if trimmed := strings.TrimSpace(param); trimmed != "" {
		if n, err := strconv.Atoi(trimmed); err == nil && n > 0 {
			count = n
		}
	}

	c.mu.Lock()
	entries := append([]string(nil), c.audit...)
	c.mu.Unlock()

	c.out.Notice(from.Name, fmt.Sprintf("The last \x02%d\x02 moderation actions:", count))
	for i := 0; i < count && i < len(entries); i++ {
		c.out.Notice(from.Name, entries[i])
	}
}

var dieRetorts = []string{
	"But I don't want to die.",
	"No.",
	"Resistance is futile.",
	"Sorry, what was that?",
	"You know I could ignore you all day.",
	"I'm going to pretend you didn't say that.",
	"die: Singular form of dice.",
}

// cmdDie shuts the bot down for admins and sasses everyone else.
func (c *Client) cmdDie(channel string, from ircmsg.NUH, display string) {
	if c.cfg.IsAdminAccount(from.Host) {
		c.log.Info().Str("by", display).Msg("shutdown ordered")
		c.Quit(fmt.Sprintf("%s ordered me to die- wait, why did I listen?", display))
		if c.OnShutdown != nil {
			c.OnShutdown()
		}
		return
	}
	c.out.Privmsg(channel, fmt.Sprintf("%s: %s", display, dieRetorts[rand.Intn(len(dieRetorts))]))
}
