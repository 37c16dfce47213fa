package irc

import (
	"fmt"
	"strings"

	"github.com/ergochat/irc-go/ircmsg"

	"github.com/edgy1/trackr/internal/auth"
	"github.com/edgy1/trackr/internal/duration"
	"github.com/edgy1/trackr/internal/track"
)

// Duration ceilings per action kind, enforced here rather than in the
// parser.
const (
	maxTempmuteSecs = 7200    // 2 hours
	maxTempbanSecs  = 2592000 // a 30-day month
)

// moderate runs a moderation command and always returns a user-visible
// reply; operational errors never escape this boundary.
func (c *Client) moderate(channel string, from ircmsg.NUH, cmd, param string) string {
	reply, err := c.dispatchModeration(channel, from, cmd, param)
	if err != nil {
		return err.Error()
	}
	return reply
}

// dispatchModeration resolves the target, authorizes the invoker and
// dispatches the remote action.
func (c *Client) dispatchModeration(channel string, from ircmsg.NUH, cmd, param string) (string, error) {
	if !c.cfg.ModerationEnabled() {
		return "", modErr(ErrModerationDisabled, "Moderation commands are disabled (no secret is configured).")
	}
	if !c.isAdmin(channel, from.Name) {
		return "", modErr(ErrPermissionDenied, "Permission denied!")
	}

	parts := strings.SplitN(strings.TrimSpace(param), " ", 2)
	target := strings.ToLower(parts[0])
	rest := ""
	if len(parts) > 1 {
		rest = parts[1]
	}
	if target == "" {
		return "", modErr(ErrBadSyntax, "Syntax: %s <player>[@server] ...", cmd)
	}

	server, victim, err := c.resolveTarget(channel, cmd, target)
	if err != nil {
		return "", err
	}

	if server.Login.Status != auth.StatusOK {
		return "", modErr(ErrNotLoggedIn, "I am not logged into %s!", server.Nick)
	}

	player, ok := server.Roster.Get(victim)
	if !ok {
		// Only unban reaches this point: banned players are by
		// definition not on the roster.
		player = &track.Player{Name: victim, Warnings: c.cfg.Warnings}
	}

	reply, err := c.applyAction(server, player, from.Name, cmd, rest)
	if err != nil {
		return "", err
	}

	c.logAudit(fmt.Sprintf("%s -> %s %s@%s", from.Name, cmd, player.Name, server.Nick))
	if reply == "" {
		reply = fmt.Sprintf("Attempted to %s %s.", cmd, player.Name)
	}
	return reply, nil
}

// resolveTarget maps a "player" or "player@server" token to a server
// and player name. Without a server qualifier the player must be on
// exactly one roster in the channel.
func (c *Client) resolveTarget(channel, cmd, target string) (*track.Server, string, error) {
	if victim, sid, qualified := strings.Cut(target, "@"); qualified {
		srv, ok := c.registry.Get(sid)
		if !ok || !c.tracker.InChannel(channel, srv.Nick) {
			return nil, "", modErr(ErrUnknownServer, "The server %q does not exist!", sid)
		}
		// unban may name a player who is (by definition) not present.
		if cmd != "unban" && !srv.Roster.Has(victim) {
			return nil, "", modErr(ErrUnknownPlayer, "The player %q is not in %s.", victim, srv.Nick)
		}
		return srv, victim, nil
	}

	var found *track.Server
	for _, nick := range c.channelServers(channel) {
		srv, ok := c.registry.Get(nick)
		if !ok || !srv.Roster.Has(target) {
			continue
		}
		if found != nil {
			return nil, "", modErr(ErrAmbiguousPlayer, "Error: That player is in multiple servers!")
		}
		found = srv
	}
	if found == nil {
		return nil, "", modErr(ErrUnknownPlayer, "Unknown player!")
	}
	return found, target, nil
}

func (c *Client) applyAction(server *track.Server, player *track.Player, sender, cmd, rest string) (string, error) {
	switch cmd {
	case "kick":
		c.msgServer(server, kickLine(player.Name, sender, rest))
	case "mute":
		c.msgServer(server, muteLine(player.Name))
	case "unmute":
		c.msgServer(server, unmuteLine(player.Name))
	case "unban":
		c.msgServer(server, unbanLine(player.Name))
	case "tempmute":
		token := strings.TrimSpace(rest)
		if token == "" {
			token = "5" // 5 minutes
		}
		secs, err := c.boundedDuration(token, maxTempmuteSecs, "You cannot tempmute someone for over 2 hours!")
		if err != nil {
			return "", err
		}
		c.msgServer(server, tempmuteScript(player.Name, secs))
	case "tempban":
		token, reason, ok := strings.Cut(strings.TrimSpace(rest), " ")
		if !ok || strings.TrimSpace(reason) == "" {
			return "", modErr(ErrBadSyntax, "Syntax: tempban <player>[@server] <duration> <reason>")
		}
		secs, err := c.boundedDuration(token, maxTempbanSecs, "You cannot tempban someone for over a month!")
		if err != nil {
			return "", err
		}
		c.msgServer(server, tempbanLine(player.Name, secs, sender, strings.TrimSpace(reason)))
	case "warn":
		return c.warnPlayer(server, player, sender, rest), nil
	}
	return "", nil
}

func (c *Client) boundedDuration(token string, max int, tooLong string) (int, error) {
	secs, err := duration.Parse(token)
	if err != nil {
		return 0, modErr(ErrInvalidDuration, "Error: Invalid duration!")
	}
	if secs > max {
		return 0, modErr(ErrDurationTooLong, "Error: %s", tooLong)
	}
	return secs, nil
}

// warnPlayer decrements the warning counter and reports the remainder;
// once the counter hits zero the player is tempmuted for 30 minutes and
// the counter resets.
func (c *Client) warnPlayer(server *track.Server, player *track.Player, sender, msg string) string {
	var tail string
	if player.Warnings > 0 {
		tail = fmt.Sprintf("%d warning%s left until you get temp-muted.", player.Warnings, plural(player.Warnings))
		player.Warnings--
	} else {
		c.msgServer(server, tempmuteScript(player.Name, 1800))
		tail = "been temporarily muted for 30 minutes."
		player.Warnings = c.cfg.Warnings
	}

	popup := fmt.Sprintf("%s\n -- %s\n\nYou have %s", msg, sender, tail)
	c.msgServer(server, warnPopupScript(player.Name, popup))

	return player.Name + " has " + strings.ReplaceAll(tail, "you", "they")
}

func (c *Client) msgServer(server *track.Server, line string) {
	c.out.Privmsg(server.Nick, line)
}
