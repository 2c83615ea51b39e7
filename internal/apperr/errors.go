// Package apperr holds the sentinel errors shared by the service and
// transport layers. Callers wrap them with %w and classify with errors.Is.
package apperr

import "errors"

var (
	ErrInvalidJSON    = errors.New("invalid json")
	ErrInvalidRequest = errors.New("invalid request")
	ErrItemNotFound   = errors.New("item not found")
	ErrLaunch         = errors.New("launch failed")
	ErrStore          = errors.New("store failure")
	ErrConfig         = errors.New("config failure")
	ErrProvider       = errors.New("provider failure")
)
