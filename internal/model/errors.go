package model

import "errors"

var (
	ErrOutOfBounds        = errors.New("position out of bounds")
	ErrIllegalCommitment  = errors.New("turn is not legal")
	ErrInvariantViolation = errors.New("resolution invariant violated")

	ErrGameFull       = errors.New("game is full")
	ErrGameOver       = errors.New("game is over")
	ErrPlayerNotFound = errors.New("player not in game")
	ErrUnknownPiece   = errors.New("unknown piece")
	ErrPieceDead      = errors.New("piece is dead")
	ErrNotYourPiece   = errors.New("piece does not belong to player")
	ErrNotEnemyPiece  = errors.New("predictions target enemy pieces only")
	ErrPlayerReady    = errors.New("player is ready, unready before changing commitments")
	ErrAlreadyQueued  = errors.New("player already in queue")
)
