package irc

import (
	"crypto/tls"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ergochat/irc-go/ircevent"
	"github.com/ergochat/irc-go/ircmsg"
	"github.com/rs/zerolog"

	"github.com/edgy1/trackr/internal/config"
	"github.com/edgy1/trackr/internal/state"
	"github.com/edgy1/trackr/internal/storage"
	"github.com/edgy1/trackr/internal/track"
)

// Version information (set at build time or here)
var (
	Version   = "1.0.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// snapshotRequest asks a server for its full player list.
const snapshotRequest = "players - If you are a human, please ignore this."

// sender is the outbound half of the IRC connection. Tests substitute a
// recording fake.
type sender interface {
	Privmsg(target, message string) error
	Notice(target, message string) error
	SendRaw(message string) error
}

// Client represents the IRC bot client
type Client struct {
	conn *ircevent.Connection
	out  sender
	cfg  *config.Config
	log  *zerolog.Logger

	registry  *track.Registry
	tracker   *state.Tracker
	cooldowns *cooldowns
	pace      func(time.Duration)

	mu    sync.Mutex
	audit []string

	// Shutdown callback
	OnShutdown func()
}

// NewClient creates a new IRC client
func NewClient(cfg *config.Config, logger *zerolog.Logger) (*Client, error) {
	c := &Client{
		cfg:       cfg,
		log:       logger,
		registry:  track.NewRegistry(cfg.Warnings),
		tracker:   state.New(),
		cooldowns: newCooldowns(time.Duration(cfg.Cooldown)*time.Second, systemClock{}),
		pace:      time.Sleep,
	}

	// Load the audit log
	var err error
	c.audit, err = storage.LoadAudit(cfg.DataDir)
	if err != nil {
		logger.Warn().Err(err).Msg("could not load audit log")
	}

	// Create IRC connection
	conn := &ircevent.Connection{
		Server:      fmt.Sprintf("%s:%d", cfg.Server, cfg.Port),
		Nick:        cfg.Nick,
		User:        cfg.Username,
		RealName:    cfg.IRCName,
		QuitMessage: "Shutting down",
		Debug:       false,
		UseTLS:      cfg.UseTLS,
		TLSConfig:   &tls.Config{},
	}
	c.conn = conn
	c.out = conn

	// Register handlers
	c.registerHandlers()

	return c, nil
}

func (c *Client) registerHandlers() {
	// Connected (end of MOTD)
	c.conn.AddCallback("376", c.onConnect)
	c.conn.AddCallback("422", c.onConnect) // MOTD missing is also "connected"

	// Messages
	c.conn.AddCallback("PRIVMSG", c.onPrivMsg)

	// Channel membership
	c.conn.AddCallback("JOIN", c.onJoin)
	c.conn.AddCallback("PART", c.onPart)
	c.conn.AddCallback("KICK", c.onKick)
	c.conn.AddCallback("QUIT", c.onQuit)
	c.conn.AddCallback("NICK", c.onNick)
	c.conn.AddCallback("MODE", c.onMode)
	c.conn.AddCallback("353", c.onNames)    // RPL_NAMREPLY
	c.conn.AddCallback("366", c.onNamesEnd) // RPL_ENDOFNAMES

	// Nick issues
	c.conn.AddCallback("432", c.onNickHeld)  // ERR_ERRONEUSNICKNAME
	c.conn.AddCallback("433", c.onNickInUse) // ERR_NICKNAMEINUSE

	// CTCP VERSION
	c.conn.AddCallback("CTCP_VERSION", c.onCtcpVersion)
}

// Connect initiates the IRC connection
func (c *Client) Connect() error {
	return c.conn.Connect()
}

// Loop runs the IRC event loop (blocking)
func (c *Client) Loop() {
	c.conn.Loop()
}

// Quit disconnects from IRC with the given farewell message.
func (c *Client) Quit(message string) {
	if c.conn != nil {
		if message != "" {
			c.conn.QuitMessage = message
		}
		c.conn.Quit()
	}
}

func (c *Client) currentNick() string {
	if c.conn != nil {
		return c.conn.CurrentNick()
	}
	return c.cfg.Nick
}

func (c *Client) onConnect(e ircmsg.Message) {
	c.log.Info().Msg("connected to IRC server")

	// State from a previous connection is stale
	c.tracker.Reset()

	// Identify to NickServ
	if c.cfg.NickPass != "" {
		c.out.Privmsg("NickServ", fmt.Sprintf("IDENTIFY %s %s", c.cfg.Nick, c.cfg.NickPass))
	}

	for _, channel := range c.cfg.Channels {
		c.conn.Join(channel)
	}

	c.log.Info().Msg("bot initialization complete")
}

func (c *Client) onPrivMsg(e ircmsg.Message) {
	if len(e.Params) < 2 {
		return
	}
	nuh, err := e.NUH()
	if err != nil {
		return
	}
	c.handleMessage(e.Params[0], nuh, e.Params[1])
}

func (c *Client) onJoin(e ircmsg.Message) {
	if len(e.Params) < 1 {
		return
	}
	channel := e.Params[0]
	nick := e.Nick()
	c.tracker.OnJoin(channel, nick)

	if strings.EqualFold(nick, c.currentNick()) {
		// Wait for the NAMES reply before requesting snapshots; the
		// membership modes arrive there.
		return
	}

	if c.isServer(channel, nick) {
		nuh, err := e.NUH()
		if err != nil {
			return
		}
		c.registry.Reset(nick, nuh.Host)
		c.out.Privmsg(nick, snapshotRequest)
	}
}

func (c *Client) onPart(e ircmsg.Message) {
	if len(e.Params) < 1 {
		return
	}
	channel := e.Params[0]
	nick := e.Nick()
	if strings.EqualFold(nick, c.currentNick()) {
		c.tracker.Drop(channel)
		return
	}
	c.tracker.OnPart(channel, nick)
	if !c.tracker.InAnyChannel(nick) {
		c.registry.Remove(nick)
	}
}

func (c *Client) onKick(e ircmsg.Message) {
	if len(e.Params) < 2 {
		return
	}
	channel := e.Params[0]
	victim := e.Params[1]
	if strings.EqualFold(victim, c.currentNick()) {
		c.tracker.Drop(channel)
		return
	}
	c.tracker.OnKick(channel, victim)
	if !c.tracker.InAnyChannel(victim) {
		c.registry.Remove(victim)
	}
}

func (c *Client) onQuit(e ircmsg.Message) {
	nick := e.Nick()
	c.tracker.OnQuit(nick)
	c.registry.Remove(nick)
}

func (c *Client) onNick(e ircmsg.Message) {
	if len(e.Params) < 1 {
		return
	}
	oldNick := e.Nick()
	newNick := e.Params[0]
	c.tracker.OnNick(oldNick, newNick)
	// The roster and login state follow the identity, not the nick.
	c.registry.Rename(oldNick, newNick)
}

func (c *Client) onMode(e ircmsg.Message) {
	// MODE <target> <modes> [args...]
	if len(e.Params) < 2 || !strings.HasPrefix(e.Params[0], "#") {
		return
	}
	channel := e.Params[0]
	args := e.Params[2:]

	// With mode-letter recognition a server is voiced after its JOIN,
	// so recognition can happen here rather than in onJoin.
	before := make(map[string]bool, len(args))
	for _, arg := range args {
		before[arg] = c.isServer(channel, arg)
	}

	c.tracker.OnMode(channel, e.Params[1], args)

	for _, arg := range args {
		if !before[arg] && c.isServer(channel, arg) {
			c.registry.Reset(arg, "")
			c.out.Privmsg(arg, snapshotRequest)
		}
	}
}

func (c *Client) onNames(e ircmsg.Message) {
	// 353 <me> <symbol> <channel> :<prefixed nicks>
	if len(e.Params) < 4 {
		return
	}
	c.tracker.OnNames(e.Params[2], strings.Fields(e.Params[3]))
}

func (c *Client) onNamesEnd(e ircmsg.Message) {
	// 366 <me> <channel> :End of /NAMES list
	if len(e.Params) < 2 {
		return
	}
	channel := e.Params[1]

	// The bot (re)joined: every recognized server gets a fresh roster
	// and a snapshot request.
	for _, nick := range c.channelServers(channel) {
		c.registry.Reset(nick, "")
		c.out.Privmsg(nick, snapshotRequest)
	}
}

func (c *Client) onNickHeld(e ircmsg.Message) {
	if c.cfg.Alternate == "" || c.conn.CurrentNick() == c.cfg.Alternate {
		return
	}
	c.log.Warn().Str("alternate", c.cfg.Alternate).Msg("nick is held, switching to alternate")
	c.conn.SetNick(c.cfg.Alternate)

	// Schedule nick recovery
	go func() {
		time.Sleep(15 * time.Second)
		c.out.Privmsg("NickServ", fmt.Sprintf("RELEASE %s %s", c.cfg.Nick, c.cfg.NickPass))
		time.Sleep(2 * time.Second)
		c.conn.SetNick(c.cfg.Nick)
	}()
}

func (c *Client) onNickInUse(e ircmsg.Message) {
	if c.cfg.Alternate == "" || c.conn.CurrentNick() == c.cfg.Alternate {
		return
	}
	c.log.Warn().Str("alternate", c.cfg.Alternate).Msg("nick in use, switching to alternate")
	c.conn.SetNick(c.cfg.Alternate)

	// Schedule nick recovery
	go func() {
		time.Sleep(15 * time.Second)
		c.out.Privmsg("NickServ", fmt.Sprintf("GHOST %s %s", c.cfg.Nick, c.cfg.NickPass))
		time.Sleep(2 * time.Second)
		c.conn.SetNick(c.cfg.Nick)
	}()
}

func (c *Client) onCtcpVersion(e ircmsg.Message) {
	nick := e.Nick()
	reply := fmt.Sprintf("trackr %s (built %s, commit %s)", Version, BuildDate, GitCommit)
	c.out.SendRaw(fmt.Sprintf("NOTICE %s :\x01VERSION %s\x01", nick, reply))
}

// isServer reports whether an identity is a recognized game server in a
// channel: the explicit server list when configured, the recognition
// mode letter when the channel is tracked, and otherwise whether the
// identity already carries a roster.
func (c *Client) isServer(channel, nick string) bool {
	if len(c.cfg.ServerList) > 0 {
		for _, s := range c.cfg.ServerList {
			if s == nick || strings.EqualFold(s, nick) {
				return true
			}
		}
		return false
	}
	if c.tracker.HasChannel(channel) {
		return c.tracker.HasMode(channel, nick, c.cfg.ServerMode[0])
	}
	_, ok := c.registry.Get(nick)
	return ok
}

// isAdmin reports whether a nick holds one of the three authorizing
// ranks on the channel.
func (c *Client) isAdmin(channel, nick string) bool {
	return c.tracker.HasAnyMode(channel, nick, "oaq")
}

// channelServers returns the recognized server nicks in a channel,
// sorted case-insensitively.
func (c *Client) channelServers(channel string) []string {
	var servers []string
	for _, nick := range c.tracker.Members(channel) {
		if c.isServer(channel, nick) {
			servers = append(servers, nick)
		}
	}
	return servers
}

func (c *Client) logAudit(entry string) {
	timestamp := time.Now().UTC().Format("Mon Jan 02, 2006 at 15:04:05 GMT")
	full := fmt.Sprintf("%s: %s", timestamp, entry)

	c.mu.Lock()
	c.audit = storage.AddEntry(c.audit, full)
	entries := append([]string(nil), c.audit...)
	c.mu.Unlock()

	if err := storage.SaveAudit(c.cfg.DataDir, entries); err != nil {
		c.log.Error().Err(err).Msg("error saving audit log")
	}
}
