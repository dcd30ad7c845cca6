package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalPair(t *testing.T) {
	a, b := CanonicalPair(5, 2)
	assert.Equal(t, int64(2), a)
	assert.Equal(t, int64(5), b)

	a, b = CanonicalPair(2, 5)
	assert.Equal(t, int64(2), a)
	assert.Equal(t, int64(5), b)
}

func TestRoomHasParticipant(t *testing.T) {
	room := &Room{ID: 1, UserA: 2, UserB: 5}

	assert.True(t, room.HasParticipant(2))
	assert.True(t, room.HasParticipant(5))
	assert.False(t, room.HasParticipant(9))
}
