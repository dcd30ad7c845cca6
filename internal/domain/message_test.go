package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateContent(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr error
	}{
		{name: "plain", in: "hello", want: "hello"},
		{name: "trimmed", in: "  hello \n", want: "hello"},
		{name: "empty", in: "", wantErr: ErrEmptyContent},
		{name: "whitespace only", in: " \t\n ", wantErr: ErrEmptyContent},
		{name: "too large", in: strings.Repeat("a", MaxMessageSize+1), wantErr: ErrMessageTooLarge},
		{name: "at limit", in: strings.Repeat("a", MaxMessageSize), want: strings.Repeat("a", MaxMessageSize)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateContent(tt.in)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewMessageView(t *testing.T) {
	ts := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	msg := &Message{
		ID:             7,
		RoomID:         42,
		SenderID:       3,
		SenderUsername: "alice",
		Content:        "hello",
		Timestamp:      ts,
	}

	view := NewMessageView(msg)
	assert.Equal(t, int64(7), view.ID)
	assert.Equal(t, int64(42), view.Room)
	assert.Equal(t, int64(3), view.Sender)
	assert.Equal(t, "alice", view.SenderUsername)
	require.NotNil(t, view.Timestamp)
	assert.Equal(t, "2025-03-14T09:26:53Z", *view.Timestamp)
}

func TestNewMessageViewNullTimestamp(t *testing.T) {
	view := NewMessageView(&Message{ID: 1, RoomID: 1, SenderID: 1, Content: "x"})
	assert.Nil(t, view.Timestamp)
}
