package apperror

import "errors"

var (
	ErrGameNotFound = errors.New("game not found")
	ErrInvalidCell  = errors.New("invalid cell index")
	ErrInvalidPly   = errors.New("invalid ply index")
	ErrCorruptGame  = errors.New("game history is corrupt")
)
