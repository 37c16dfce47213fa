package track

import (
	"strings"
	"sync"

	"github.com/edgy1/trackr/internal/auth"
)

// Server is a recognized game-server identity on the chat network. The
// identity object survives nick changes: the registry re-keys it, so
// the roster and login state follow the connection, not the display
// nick.
type Server struct {
	Nick   string
	Host   string
	Roster *Roster
	Login  auth.Login
}

// Registry is the identity-keyed store of recognized servers.
type Registry struct {
	mu       sync.RWMutex
	servers  map[string]*Server
	warnings int
}

// NewRegistry returns an empty registry whose rosters use the given
// per-player warning budget.
func NewRegistry(warnings int) *Registry {
	return &Registry{
		servers:  make(map[string]*Server),
		warnings: warnings,
	}
}

// Get looks up a server by nick, case-insensitively.
func (g *Registry) Get(nick string) (*Server, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	s, ok := g.servers[strings.ToLower(nick)]
	return s, ok
}

// Ensure returns the server for a nick, creating it with a fresh roster
// on first recognition. A non-empty host updates the stored host.
func (g *Registry) Ensure(nick, host string) *Server {
	g.mu.Lock()
	defer g.mu.Unlock()
	key := strings.ToLower(nick)
	s, ok := g.servers[key]
	if !ok {
		s = &Server{Nick: nick, Roster: NewRoster(g.warnings)}
		g.servers[key] = s
	}
	if host != "" {
		s.Host = host
	}
	return s
}

// Reset gives a server a fresh roster and clears its login state, as
// when the bot rejoins a channel or the server reconnects.
func (g *Registry) Reset(nick, host string) *Server {
	s := g.Ensure(nick, host)
	g.mu.Lock()
	defer g.mu.Unlock()
	s.Roster = NewRoster(g.warnings)
	s.Login.Reset()
	return s
}

// Rename moves a server to a new nick, keeping its roster and login
// state attached to the same identity.
func (g *Registry) Rename(oldNick, newNick string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	oldKey := strings.ToLower(oldNick)
	s, ok := g.servers[oldKey]
	if !ok {
		return
	}
	delete(g.servers, oldKey)
	s.Nick = newNick
	g.servers[strings.ToLower(newNick)] = s
}

// Remove drops a server and its roster, as when the identity leaves or
// disconnects.
func (g *Registry) Remove(nick string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.servers, strings.ToLower(nick))
}
