package irc

// This file contains documentation for the IRC event handlers.
// The actual handler implementations are split across:
// - client.go: Connection lifecycle, membership tracking, audit log
// - router.go: Line classification and the announcement/login handlers
// - commands.go: Channel and PM command implementations
// - moderate.go: The moderation command processor

/*
Handler Summary:

Connection Events:
- 376/422 (onConnect): End of MOTD / MOTD missing - bot is connected
  - Resets tracked channel state
  - Identifies to NickServ
  - Joins the configured channels

Messages:
- PRIVMSG (onPrivMsg): Routed through handleMessage
  - Unwraps lines relayed from in-game chat ("<player> text")
  - Prefix commands: players, kick/mute/unmute/tempmute/tempban/unban/
    warn, badservers, modlog, die; PM allows only the admin login
    override
  - Remaining lines from recognized servers drive roster reconciliation
    (join/leave events, full snapshots) and the login state machine
    ("You are now logged in as", "Incorrect password")
  - Everything else is ignored as unrelated chatter

Channel Membership:
- JOIN (onJoin): Tracks membership; a joining server gets a fresh
  roster and a snapshot request
- 353/366 (onNames/onNamesEnd): NAMES merging; at end-of-NAMES every
  recognized server in the channel gets a fresh roster and a snapshot
  request (covers the bot's own joins and rejoins)
- PART/KICK/QUIT: Membership removal; identities no longer visible
  anywhere drop their roster and login state
- NICK (onNick): Re-keys membership and the server registry so rosters
  follow the identity across renames
- MODE (onMode): Tracks status-mode changes (server recognition uses
  the configured mode letter, admin checks use o/a/q); an identity
  newly recognized as a server here gets a fresh roster and a snapshot
  request, since the recognition mode lands after its JOIN

Nick Issues:
- 432 (onNickHeld): ERR_ERRONEUSNICKNAME - Nick is held
  - Switches to alternate nick, schedules RELEASE and recovery
- 433 (onNickInUse): ERR_NICKNAMEINUSE - Nick in use
  - Switches to alternate nick, schedules GHOST and recovery

CTCP:
- CTCP_VERSION: Responds with bot version information
*/
