// Package state tracks channel membership and prefix modes, backing the
// "is this identity a server here" and "does this identity hold an
// authorizing rank" queries.
package state

import (
	"sort"
	"strings"
	"sync"
)

// prefixModes maps NAMES reply prefixes to the mode letters they stand for.
var prefixModes = map[byte]byte{'~': 'q', '&': 'a', '@': 'o', '%': 'h', '+': 'v'}

// statusModes are channel modes that grant a prefix to a nick argument.
const statusModes = "qaohv"

// listArgModes are other modes that consume an argument and are skipped.
const listArgModes = "beIk"

type member struct {
	nick  string
	modes map[byte]bool
}

type channel struct {
	members map[string]*member
}

// Tracker holds per-channel membership. All methods are safe for
// concurrent use.
type Tracker struct {
	mu       sync.RWMutex
	channels map[string]*channel
}

func New() *Tracker {
	return &Tracker{channels: make(map[string]*channel)}
}

// Reset drops all tracked state, as on reconnect.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.channels = make(map[string]*channel)
}

func (t *Tracker) channelLocked(name string) *channel {
	key := strings.ToLower(name)
	ch, ok := t.channels[key]
	if !ok {
		ch = &channel{members: make(map[string]*member)}
		t.channels[key] = ch
	}
	return ch
}

// OnNames merges a NAMES reply entry list ("@op +voiced plain ...")
// into the channel.
func (t *Tracker) OnNames(channelName string, names []string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	ch := t.channelLocked(channelName)
	for _, entry := range names {
		var modes []byte
		for len(entry) > 0 {
			mode, ok := prefixModes[entry[0]]
			if !ok {
				break
			}
			modes = append(modes, mode)
			entry = entry[1:]
		}
		if entry == "" {
			continue
		}
		m := ch.member(entry)
		for _, mode := range modes {
			m.modes[mode] = true
		}
	}
}

func (ch *channel) member(nick string) *member {
	key := strings.ToLower(nick)
	m, ok := ch.members[key]
	if !ok {
		m = &member{nick: nick, modes: make(map[byte]bool)}
		ch.members[key] = m
	}
	return m
}

// OnJoin records a nick joining a channel.
func (t *Tracker) OnJoin(channelName, nick string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.channelLocked(channelName).member(nick)
}

// OnPart removes a nick from a channel.
func (t *Tracker) OnPart(channelName, nick string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if ch, ok := t.channels[strings.ToLower(channelName)]; ok {
		delete(ch.members, strings.ToLower(nick))
	}
}

// OnKick is a part initiated by someone else.
func (t *Tracker) OnKick(channelName, nick string) {
	t.OnPart(channelName, nick)
}

// OnQuit removes a nick from every channel.
func (t *Tracker) OnQuit(nick string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	key := strings.ToLower(nick)
	for _, ch := range t.channels {
		delete(ch.members, key)
	}
}

// OnNick re-keys a member in every channel, keeping its modes.
func (t *Tracker) OnNick(oldNick, newNick string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	oldKey := strings.ToLower(oldNick)
	newKey := strings.ToLower(newNick)
	for _, ch := range t.channels {
		if m, ok := ch.members[oldKey]; ok {
			delete(ch.members, oldKey)
			m.nick = newNick
			ch.members[newKey] = m
		}
	}
}

// OnMode applies a channel mode change ("+v-o nick1 nick2"). Only
// status modes are tracked; other argument-taking modes are skipped so
// the argument cursor stays aligned.
func (t *Tracker) OnMode(channelName, modes string, args []string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	ch, ok := t.channels[strings.ToLower(channelName)]
	if !ok {
		return
	}

	adding := true
	arg := 0
	for i := 0; i < len(modes); i++ {
		switch mode := modes[i]; {
		case mode == '+':
			adding = true
		case mode == '-':
			adding = false
		case strings.IndexByte(statusModes, mode) >= 0:
			if arg >= len(args) {
				return
			}
			m := ch.member(args[arg])
			arg++
			if adding {
				m.modes[mode] = true
			} else {
				delete(m.modes, mode)
			}
		case strings.IndexByte(listArgModes, mode) >= 0, mode == 'l' && adding:
			arg++
		}
	}
}

// Drop forgets a channel entirely, as when the bot itself parts.
func (t *Tracker) Drop(channelName string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.channels, strings.ToLower(channelName))
}

// HasChannel reports whether the channel is tracked.
func (t *Tracker) HasChannel(channelName string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.channels[strings.ToLower(channelName)]
	return ok
}

// InChannel reports whether a nick is a member of the channel.
func (t *Tracker) InChannel(channelName, nick string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	ch, ok := t.channels[strings.ToLower(channelName)]
	if !ok {
		return false
	}
	_, ok = ch.members[strings.ToLower(nick)]
	return ok
}

// InAnyChannel reports whether a nick is visible in any tracked channel.
func (t *Tracker) InAnyChannel(nick string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	key := strings.ToLower(nick)
	for _, ch := range t.channels {
		if _, ok := ch.members[key]; ok {
			return true
		}
	}
	return false
}

// HasMode reports whether a nick holds a status mode on the channel.
func (t *Tracker) HasMode(channelName, nick string, mode byte) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	ch, ok := t.channels[strings.ToLower(channelName)]
	if !ok {
		return false
	}
	m, ok := ch.members[strings.ToLower(nick)]
	return ok && m.modes[mode]
}

// HasAnyMode reports whether a nick holds any of the given status modes.
func (t *Tracker) HasAnyMode(channelName, nick, modes string) bool {
	for i := 0; i < len(modes); i++ {
		if t.HasMode(channelName, nick, modes[i]) {
			return true
		}
	}
	return false
}

// Members returns the display nicks in a channel, sorted
// case-insensitively.
func (t *Tracker) Members(channelName string) []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	ch, ok := t.channels[strings.ToLower(channelName)]
	if !ok {
		return nil
	}
	nicks := make([]string, 0, len(ch.members))
	for _, m := range ch.members {
		nicks = append(nicks, m.nick)
	}
	sort.Slice(nicks, func(i, j int) bool {
		return strings.ToLower(nicks[i]) < strings.ToLower(nicks[j])
	})
	return nicks
}
