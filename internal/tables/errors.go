package tables

import "errors"

var (
	ErrTableNotFound     = errors.New("table_not_found")
	ErrTableAlreadyOpen  = errors.New("table_already_open")
	ErrTableNotOpen      = errors.New("table_not_open")
	ErrInvalidRegime     = errors.New("invalid_regime")
	ErrInvalidCloseTime  = errors.New("invalid_close_time")
	ErrUnsupportedFormat = errors.New("unsupported_snapshot_format")
)
