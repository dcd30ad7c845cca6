package domain

import "errors"

var (
	ErrEmptyContent        = errors.New("empty message content")
	ErrMessageTooLarge     = errors.New("message too large")
	ErrRoomNotFound        = errors.New("room not found")
	ErrListingNotFound     = errors.New("listing not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrSenderInvalid       = errors.New("sender invalid")
	ErrNotParticipant      = errors.New("sender not a room participant")
	ErrInvalidCounterparty = errors.New("invalid counterparty")
)
