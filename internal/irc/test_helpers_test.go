package irc

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/edgy1/trackr/internal/config"
	"github.com/edgy1/trackr/internal/state"
	"github.com/edgy1/trackr/internal/track"
)

type sentLine struct {
	kind   string
	target string
	text   string
}

// fakeSender records outbound lines instead of writing to a connection.
type fakeSender struct {
	mu   sync.Mutex
	sent []sentLine
}

func (f *fakeSender) Privmsg(target, message string) error {
	f.record(sentLine{"PRIVMSG", target, message})
	return nil
}

func (f *fakeSender) Notice(target, message string) error {
	f.record(sentLine{"NOTICE", target, message})
	return nil
}

func (f *fakeSender) SendRaw(message string) error {
	f.record(sentLine{"RAW", "", message})
	return nil
}

func (f *fakeSender) record(l sentLine) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, l)
}

// to returns every message sent to a target, case-insensitively.
func (f *fakeSender) to(target string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var lines []string
	for _, l := range f.sent {
		if strings.EqualFold(l.target, target) {
			lines = append(lines, l.text)
		}
	}
	return lines
}

func (f *fakeSender) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = nil
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func testConfig(t *testing.T, extra string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	content := `
server: irc.example.org
port: 6697
nick: trackr
channels: ["#edgy1"]
prefix: ","
admins: [edgy1]
data_dir: ` + dir + "\n" + extra
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	cfg, err := config.Load(path)
	require.NoError(t, err)
	return cfg
}

func newTestClient(t *testing.T, cfg *config.Config) (*Client, *fakeSender, *fakeClock) {
	t.Helper()
	out := &fakeSender{}
	clk := &fakeClock{now: time.Unix(1700000000, 0)}
	logger := zerolog.Nop()
	c := &Client{
		cfg:       cfg,
		log:       &logger,
		out:       out,
		registry:  track.NewRegistry(cfg.Warnings),
		tracker:   state.New(),
		cooldowns: newCooldowns(time.Duration(cfg.Cooldown)*time.Second, clk),
		pace:      func(time.Duration) {},
	}
	return c, out, clk
}
