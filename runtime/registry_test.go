package runtime

import (
	"fmt"
	"pad-lab/domain"
	"pad-lab/errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Claim_AssignsPaletteColor(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	connID := uuid.NewString()

	// Given no participant is registered
	req.Empty(registry.Sessions)

	// When a connection claims a name
	participant, err := registry.Claim(connID, "alice")

	// Then the claim succeeds with a color from the fixed palette
	req.NoError(err)
	req.Equal("alice", participant.ID)
	req.Contains(domain.Palette, participant.Color)
	req.Len(registry.Sessions, 1)
}

func TestRegistry_Claim_TrimsDesiredName(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()

	participant, err := registry.Claim(uuid.NewString(), "  alice  ")

	req.NoError(err)
	req.Equal("alice", participant.ID)
}

func TestRegistry_Claim_RejectsEmptyName(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()

	for _, name := range []string{"", "  ", "\t\n"} {
		_, err := registry.Claim(uuid.NewString(), name)
		req.ErrorIs(err, errors.ErrEmptyIdentity)
	}
	req.Empty(registry.Sessions)
}

func TestRegistry_Claim_RejectsTakenIdentity(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()

	// Given alice is already registered
	_, err := registry.Claim(uuid.NewString(), "alice")
	req.NoError(err)

	// When another connection claims the same identity
	_, err = registry.Claim(uuid.NewString(), "alice")

	// Then the claim is rejected and no state changed
	req.ErrorIs(err, errors.ErrIdentityTaken)
	req.Len(registry.Sessions, 1)
}

func TestRegistry_Claim_IsCaseSensitive(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()

	_, err := registry.Claim(uuid.NewString(), "alice")
	req.NoError(err)

	_, err = registry.Claim(uuid.NewString(), "Alice")
	req.NoError(err)
	req.Len(registry.Sessions, 2)
}

func TestRegistry_Release_FreesIdentityForReclaim(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	connID := uuid.NewString()

	// Given alice is registered
	_, err := registry.Claim(connID, "alice")
	req.NoError(err)

	// When the owning connection releases
	released, named := registry.Release(connID)
	req.True(named)
	req.Equal("alice", released.ID)

	// Then a new connection may claim the identity again
	_, err = registry.Claim(uuid.NewString(), "alice")
	req.NoError(err)
}

func TestRegistry_Release_UnnamedConnectionIsNoop(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()

	// When releasing a connection that never claimed a name
	_, named := registry.Release(uuid.NewString())

	// Then nothing happens
	req.False(named)
	req.Empty(registry.Sessions)
}

func TestRegistry_FindByIdentity(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()

	claimed, err := registry.Claim(uuid.NewString(), "alice")
	req.NoError(err)

	found, ok := registry.FindByIdentity("alice")
	req.True(ok)
	req.Equal(claimed, found)

	_, ok = registry.FindByIdentity("bob")
	req.False(ok)
}

func TestRegistry_ConcurrentClaims_KeepIdentityUnique(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()

	// When many connections race for the same identity
	const racers = 50
	var wg sync.WaitGroup
	successes := make(chan domain.Participant, racers)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			if p, err := registry.Claim(fmt.Sprintf("conn-%d", n), "alice"); err == nil {
				successes <- p
			}
		}(i)
	}
	wg.Wait()
	close(successes)

	// Then exactly one of them holds it
	req.Len(successes, 1)
	req.Len(registry.Sessions, 1)
}
