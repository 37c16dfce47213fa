package irc

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/ergochat/irc-go/ircmsg"

	"github.com/edgy1/trackr/internal/auth"
	"github.com/edgy1/trackr/internal/track"
)

// handleMessage classifies an inbound line as a command, a server
// announcement, or a login reply, and dispatches it. Unrecognized lines
// are silently ignored; the chat stream carries unrelated chatter.
func (c *Client) handleMessage(target string, from ircmsg.NUH, text string) {
	display := from.Name

	// Lines relayed from in-game chat arrive as "<player> text" from
	// the server's own nick.
	if strings.HasPrefix(text, "<") {
		if inner, rest, ok := unwrapRelay(text); ok {
			display = inner + "@" + from.Name
			text = rest
		}
	}

	// ".players" is a conventional alias regardless of the prefix.
	if strings.HasPrefix(text, ".players") {
		text = c.cfg.Prefix + text[1:]
	}

	if strings.HasPrefix(text, c.cfg.Prefix) {
		c.handleCommand(target, from, display, text[len(c.cfg.Prefix):])
		return
	}

	// Everything else is only meaningful when it comes straight from a
	// recognized server.
	if display != from.Name || !c.isServer(target, from.Name) {
		return
	}
	c.handleAnnouncement(from, text)
}

// unwrapRelay splits a relayed in-game line "<nick> text" into its
// parts. The first character inside the brackets must be alphanumeric
// or a color code, matching how the bridges render player names.
func unwrapRelay(text string) (nick, rest string, ok bool) {
	parts := strings.SplitN(text, " ", 2)
	if len(parts) != 2 || len(parts[0]) < 3 || !strings.HasSuffix(parts[0], ">") {
		return "", "", false
	}
	first := rune(parts[0][1])
	if first != '\x03' && !unicode.IsLetter(first) && !unicode.IsDigit(first) {
		return "", "", false
	}
	return parts[0][1 : len(parts[0])-1], strings.TrimSpace(parts[1]), true
}

func (c *Client) handleCommand(target string, from ircmsg.NUH, display, line string) {
	fields := strings.SplitN(line, " ", 2)
	cmd := strings.ToLower(fields[0])
	param := ""
	if len(fields) > 1 {
		param = fields[1]
	}

	if strings.EqualFold(target, c.currentNick()) {
		c.handlePrivateCommand(from, cmd, param)
		return
	}

	switch cmd {
	case "players":
		c.cmdPlayers(target, display)
	case "kick", "mute", "unmute", "tempmute", "tempban", "unban", "warn":
		c.out.Privmsg(target, display+": "+c.moderate(target, from, cmd, param))
	case "badservers":
		c.cmdBadServers(target, display)
	case "modlog":
		c.cmdModLog(target, from, param)
	case "die":
		c.cmdDie(target, from, display)
	}
}

// handlePrivateCommand processes a command sent in PM. Only the manual
// login override is allowed there, and only for configured admins.
func (c *Client) handlePrivateCommand(from ircmsg.NUH, cmd, param string) {
	if cmd != "login" {
		c.out.Privmsg(from.Name, "You may not execute commands in PMs.")
		return
	}
	if !c.cfg.IsAdminAccount(from.Host) {
		c.out.Privmsg(from.Name, "Permission denied!")
		return
	}
	c.cmdLogin(from.Name, param)
}

// handleAnnouncement reconciles roster announcements and drives the
// login state machine from a recognized server's lines.
func (c *Client) handleAnnouncement(from ircmsg.NUH, text string) {
	server := c.registry.Ensure(from.Name, from.Host)

	if name, joined, ok := track.ParseEvent(text); ok {
		if joined {
			server.Roster.Add(name)
		} else {
			server.Roster.Remove(name)
		}
		return
	}

	if names, ok := track.ParseSnapshot(text); ok {
		server.Roster.ApplySnapshot(names)

		// First snapshot from an unattempted server triggers the login.
		if server.Login.Status == auth.StatusNone && c.cfg.ModerationEnabled() {
			cred, _ := c.chain(server).Credential(0)
			server.Login.Begin(0)
			c.log.Debug().Str("server", server.Nick).Msg("logging in")
			c.out.Privmsg(server.Nick, "login trackr "+cred)
		}
		return
	}

	if strings.HasPrefix(text, "You are now logged in as") {
		if server.Login.Confirm() {
			// Migrate the server onto the current-mode credential. A
			// legacy credential may have been the one that worked.
			cred, _ := c.chain(server).Credential(0)
			c.out.Privmsg(server.Nick, "cmd setpassword trackr "+cred)
			c.out.Privmsg(server.Nick, `cmd /lua irc.say("[trackr] Logged in!")`)
		}
		c.log.Info().Str("server", server.Nick).Msg("logged in")
		return
	}

	if strings.HasPrefix(text, "Incorrect password") {
		// Only a reply to a login we actually sent drives the fallback
		// chain; servers complain about other clients' logins too.
		if server.Login.Status != auth.StatusPending {
			c.log.Debug().Str("server", server.Nick).Msg("ignoring unsolicited incorrect-password line")
			return
		}
		if cred, retry := server.Login.Reject(c.chain(server)); retry {
			c.log.Debug().Str("server", server.Nick).Int("attempt", server.Login.Attempt).
				Msg("incorrect password, trying fallback credential")
			c.out.Privmsg(server.Nick, "login trackr "+cred)
			return
		}
		c.log.Warn().Str("server", server.Nick).Msg("incorrect password, fallback chain exhausted")
		c.logAudit(fmt.Sprintf("login to %s failed: all credentials rejected", server.Nick))
	}
}

// chain builds the credential fallback chain for a server from its
// current identity and the configured legacy domains.
func (c *Client) chain(s *track.Server) *auth.Chain {
	return &auth.Chain{
		Name:          s.Nick,
		Host:          s.Host,
		Secret:        c.cfg.Secret,
		LegacyEnabled: c.cfg.LegacyPasswords,
		NewDomain:     c.cfg.NewDomain,
		LegacyDomains: c.cfg.LegacyDomains,
	}
}
