package models

import "errors"

// Custom errors
var (
	ErrNotFound            = errors.New("record not found")
	ErrPlayerNotFound      = errors.New("player not found in directory")
	ErrEmptyHistory        = errors.New("player has no game history")
	ErrInsufficientHistory = errors.New("no feature-eligible games in history")
)
