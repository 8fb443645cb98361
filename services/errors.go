package services

import "errors"

var (
	ErrNotFound         = errors.New("requested resource not found")
	ErrValidationFailed = errors.New("validation failed")

	ErrTurmaNotFound   = errors.New("turma not found")
	ErrMatchNotFound   = errors.New("match not found")
	ErrAthleteNotFound = errors.New("athlete not found")
	ErrBracketNotFound = errors.New("bracket not found")

	ErrSameTurma            = errors.New("a match needs two different turmas")
	ErrForfeitSideRequired  = errors.New("a forfeit must name one of the two turmas as the forfeiting side")
	ErrPenaltyValueMismatch = errors.New("nao_calouro takes a fine, every other penalty takes points")
	ErrBracketLocked        = errors.New("bracket already has results and cannot be reseeded")
	ErrBracketNotSeeded     = errors.New("bracket has not been seeded")
	ErrEmptyRoster          = errors.New("roster file lists no turmas")

	ErrStorageNotConfigured = errors.New("object storage is not configured")

	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrForbiddenOperation   = errors.New("operation not allowed for the current user")
)
