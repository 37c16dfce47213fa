package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testChain() *Chain {
	return &Chain{
		Name:          "Server1",
		Host:          "srv.users.newdomain.org",
		Secret:        "s3cret",
		LegacyEnabled: true,
		NewDomain:     "newdomain.org",
		LegacyDomains: []string{"old1.net", "old2.net"},
	}
}

func TestChainOrderAndDistinctness(t *testing.T) {
	chain := testChain()

	seen := map[string]int{}
	slot := -1
	var creds []string
	for {
		cred, next, ok := chain.Next(slot)
		if !ok {
			break
		}
		if prev, dup := seen[cred]; dup {
			t.Fatalf("slot %d repeats credential of slot %d", next, prev)
		}
		seen[cred] = next
		creds = append(creds, cred)
		slot = next
	}

	// current + legacy on own host, then one current-mode credential
	// per domain. The legacy derivations against the substituted hosts
	// collapse into the own-host legacy credential (the first two dot
	// segments are identical) and are skipped.
	assert.Len(t, creds, 4)

	// Deterministic: a second walk yields the same sequence.
	slot = -1
	for i := 0; ; i++ {
		cred, next, ok := chain.Next(slot)
		if !ok {
			break
		}
		assert.Equal(t, creds[i], cred)
		slot = next
	}
}

func TestChainLegacyDisabled(t *testing.T) {
	chain := testChain()
	chain.LegacyEnabled = false

	cred, slot, ok := chain.Next(-1)
	require.True(t, ok)
	assert.Equal(t, 0, slot)
	assert.NotEmpty(t, cred)

	_, _, ok = chain.Next(0)
	assert.False(t, ok, "fallback must be exhausted when the legacy flag is off")
}

func TestChainShortHostSkipsOwnLegacySlot(t *testing.T) {
	chain := testChain()
	chain.Host = "newdomain.org" // two dot segments: legacy == current

	_, slot, ok := chain.Next(0)
	require.True(t, ok)
	assert.Equal(t, 2, slot, "slot 1 is skipped, domain substitutions still run")
}

func TestChainUnmatchedDomainExhaustsAfterOwnHost(t *testing.T) {
	chain := testChain()
	chain.Host = "srv.users.elsewhere.org"

	_, slot, ok := chain.Next(0)
	require.True(t, ok)
	assert.Equal(t, 1, slot)

	_, _, ok = chain.Next(1)
	assert.False(t, ok)
}

func TestLoginFallbackSequence(t *testing.T) {
	chain := testChain()
	var login Login

	cred0, ok := chain.Credential(0)
	require.True(t, ok)
	login.Begin(0)
	assert.Equal(t, StatusPending, login.Status)

	// Three distinct fallback credentials remain after slot 0.
	tried := map[string]bool{cred0: true}
	for i := 0; i < 3; i++ {
		cred, retry := login.Reject(chain)
		require.True(t, retry, "attempt %d", i)
		assert.False(t, tried[cred], "credential repeated on attempt %d", i)
		tried[cred] = true
		assert.Equal(t, StatusPending, login.Status)
	}

	_, retry := login.Reject(chain)
	assert.False(t, retry)
	assert.Equal(t, StatusFailed, login.Status)
}

func TestLoginConfirmRotation(t *testing.T) {
	var login Login
	login.Begin(0)
	assert.True(t, login.Confirm(), "success while pending rotates the stored credential")
	assert.Equal(t, StatusOK, login.Status)

	// A duplicate success reply does not re-send rotation.
	assert.False(t, login.Confirm())

	login.Reset()
	assert.Equal(t, StatusNone, login.Status)
	assert.Equal(t, 0, login.Attempt)
}
