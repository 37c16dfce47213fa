// Package track owns the per-server player rosters and the registry of
// recognized servers.
package track

import (
	"sort"
	"strings"
)

// Player is a name on one server carrying a warning counter. The same
// name on two servers is two unrelated players.
type Player struct {
	Name     string
	Warnings int
}

// Roster maps case-insensitive player names to players for one server.
// It reflects the most recent snapshot line, adjusted by incremental
// join/leave lines, until the next snapshot supersedes it.
type Roster struct {
	players  map[string]*Player
	warnings int // initial warning budget for new players
}

// NewRoster returns an empty roster whose new players start with the
// given warning budget.
func NewRoster(warnings int) *Roster {
	return &Roster{
		players:  make(map[string]*Player),
		warnings: warnings,
	}
}

// Add inserts a player if absent and returns it. Existing players keep
// their warning counters.
func (r *Roster) Add(name string) *Player {
	if name == "" {
		return nil
	}
	key := strings.ToLower(name)
	if p, ok := r.players[key]; ok {
		return p
	}
	p := &Player{Name: name, Warnings: r.warnings}
	r.players[key] = p
	return p
}

// Remove deletes a player. Removing an untracked name is a no-op.
func (r *Roster) Remove(name string) bool {
	key := strings.ToLower(name)
	if _, ok := r.players[key]; !ok {
		return false
	}
	delete(r.players, key)
	return true
}

// Get looks up a player case-insensitively.
func (r *Roster) Get(name string) (*Player, bool) {
	p, ok := r.players[strings.ToLower(name)]
	return p, ok
}

// Has reports whether a name is tracked.
func (r *Roster) Has(name string) bool {
	_, ok := r.players[strings.ToLower(name)]
	return ok
}

// Len returns the number of tracked players.
func (r *Roster) Len() int {
	return len(r.players)
}

// Names returns the tracked display names, sorted.
func (r *Roster) Names() []string {
	names := make([]string, 0, len(r.players))
	for _, p := range r.players {
		names = append(names, p.Name)
	}
	sort.Strings(names)
	return names
}

// ApplySnapshot makes the given name list authoritative: names are
// inserted or preserved (keeping warning counters for players already
// present), then every tracked player absent from the list is removed.
func (r *Roster) ApplySnapshot(names []string) {
	keep := make(map[string]bool, len(names))
	for _, name := range names {
		if name == "" {
			continue
		}
		r.Add(name)
		keep[strings.ToLower(name)] = true
	}
	for key := range r.players {
		if !keep[key] {
			delete(r.players, key)
		}
	}
}
