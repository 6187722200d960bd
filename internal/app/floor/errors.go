package floor

import (
	"errors"

	"tableflow/internal/sessions"
	"tableflow/internal/tables"
)

var (
	ErrInvalidRequest   = errors.New("invalid_request")
	ErrInvalidCloseTime = tables.ErrInvalidCloseTime

	ErrTableNotFound       = tables.ErrTableNotFound
	ErrTableAlreadyOpen    = tables.ErrTableAlreadyOpen
	ErrTableNotOpen        = tables.ErrTableNotOpen
	ErrInvalidRegime       = tables.ErrInvalidRegime
	ErrSessionNotFound     = sessions.ErrSessionNotFound
	ErrSessionNotDeletable = sessions.ErrSessionNotDeletable
)
