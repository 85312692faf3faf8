package domain

import "errors"

var (
	ErrRoomNotFound      = errors.New("room not found")
	ErrRoomExists        = errors.New("room already exists")
	ErrDeviceNotFound    = errors.New("device not found")
	ErrInvalidTransition = errors.New("invalid room status transition")
	ErrEmptyMessage      = errors.New("empty message")
)
