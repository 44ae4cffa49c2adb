package flash

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTake_ReadOnce(t *testing.T) {
	s := NewStore(clockwork.NewFakeClock())
	s.Put("sess-1", Message{Text: "Inventory of 3 plugins delivered", Severity: Success})

	msg, ok := s.Take("sess-1")
	require.True(t, ok)
	assert.Equal(t, Success, msg.Severity)
	assert.Equal(t, "Inventory of 3 plugins delivered", msg.Text)

	_, ok = s.Take("sess-1")
	assert.False(t, ok, "second read finds nothing")
}

func TestPut_Overwrites(t *testing.T) {
	s := NewStore(clockwork.NewFakeClock())
	s.Put("sess-1", Message{Text: "first", Severity: Error})
	s.Put("sess-1", Message{Text: "second", Severity: Success})

	msg, ok := s.Take("sess-1")
	require.True(t, ok)
	assert.Equal(t, "second", msg.Text)
	assert.Equal(t, 0, s.Len())
}

func TestTake_SessionsAreIsolated(t *testing.T) {
	s := NewStore(clockwork.NewFakeClock())
	s.Put("a", Message{Text: "for a"})

	_, ok := s.Take("b")
	assert.False(t, ok)
	_, ok = s.Take("a")
	assert.True(t, ok)
}

func TestTake_Expires(t *testing.T) {
	clock := clockwork.NewFakeClock()
	s := NewStore(clock)
	s.Put("sess-1", Message{Text: "late"})

	clock.Advance(TTL - time.Second)
	s.Put("sess-2", Message{Text: "fresh"})
	clock.Advance(time.Second)

	_, ok := s.Take("sess-1")
	assert.False(t, ok, "message older than TTL is gone")
	_, ok = s.Take("sess-2")
	assert.True(t, ok)
}

func TestSweep(t *testing.T) {
	clock := clockwork.NewFakeClock()
	s := NewStore(clock)
	s.Put("old", Message{Text: "old"})
	clock.Advance(TTL)
	s.Put("new", Message{Text: "new"})

	assert.Equal(t, 1, s.Sweep())
	assert.Equal(t, 1, s.Len())
}
