package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"screening-agent/internal/domain"
)

func TestStore_Create_RegistersSeededSession(t *testing.T) {
	s := NewStore()

	sess := s.Create("You are an interviewer.", "Understood.")
	require.NotEmpty(t, sess.ID)
	require.False(t, sess.CreatedAt.IsZero())
	require.Equal(t, 1, s.Count())

	d := sess.Dialogue()
	require.Len(t, d, 2)
	require.Equal(t, "You are an interviewer.", d[0].Parts[0].Text)
	require.Equal(t, "Understood.", d[1].Parts[0].Text)
}

func TestStore_Create_UniqueIDs(t *testing.T) {
	s := NewStore()
	a := s.Create("i", "a")
	b := s.Create("i", "a")
	require.NotEqual(t, a.ID, b.ID)
	require.Equal(t, 2, s.Count())
}

func TestStore_Acquire_Unknown(t *testing.T) {
	s := NewStore()
	_, _, err := s.Acquire("missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestStore_Acquire_ReturnsSameSession(t *testing.T) {
	s := NewStore()
	created := s.Create("i", "a")

	got, release, err := s.Acquire(created.ID)
	require.NoError(t, err)
	defer release()
	require.Same(t, created, got)
}

func TestStore_Acquire_SerializesAccess(t *testing.T) {
	s := NewStore()
	sess := s.Create("i", "a")

	_, release, err := s.Acquire(sess.ID)
	require.NoError(t, err)

	acquired := make(chan struct{})
	go func() {
		got, rel, err := s.Acquire(sess.ID)
		if err == nil {
			got.AppendExchange(
				domain.TurnEntry{Speaker: domain.RoleUser, Content: "second"},
				domain.TurnEntry{Speaker: domain.RoleAssistant, Content: "reply"},
			)
			rel()
		}
		close(acquired)
	}()

	// the second Acquire must block until the first release
	select {
	case <-acquired:
		t.Fatal("second Acquire completed while the session was held")
	case <-time.After(50 * time.Millisecond):
	}

	sess.AppendExchange(
		domain.TurnEntry{Speaker: domain.RoleUser, Content: "first"},
		domain.TurnEntry{Speaker: domain.RoleAssistant, Content: "reply"},
	)
	release()

	select {
	case <-acquired:
	case <-time.After(2 * time.Second):
		t.Fatal("second Acquire never completed after release")
	}

	log := sess.TurnLog()
	require.Len(t, log, 4)
	require.Equal(t, "first", log[0].Content)
	require.Equal(t, "second", log[2].Content)
}

func TestStore_Remove(t *testing.T) {
	s := NewStore()
	sess := s.Create("i", "a")

	require.NoError(t, s.Remove(sess.ID))
	require.Equal(t, 0, s.Count())

	_, _, err := s.Acquire(sess.ID)
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, s.Remove(sess.ID), ErrNotFound)
}

func TestStore_Count_Empty(t *testing.T) {
	require.Equal(t, 0, NewStore().Count())
}
