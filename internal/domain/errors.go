package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidCoordinate   = errors.New("invalid coordinate")
	ErrPositionUnavailable = errors.New("position unavailable")
	ErrNetworkFailure      = errors.New("network failure")
	ErrMapNotReady         = errors.New("map not ready")
	ErrShelterNotFound     = errors.New("shelter not found")
)

// PositionErrorCode mirrors the failure codes reported by device
// geolocation APIs.
type PositionErrorCode int

const (
	PermissionDenied    PositionErrorCode = 1
	PositionUnavailable PositionErrorCode = 2
	PositionTimeout     PositionErrorCode = 3
)

func (c PositionErrorCode) String() string {
	switch c {
	case PermissionDenied:
		return "permission_denied"
	case PositionUnavailable:
		return "position_unavailable"
	case PositionTimeout:
		return "timeout"
	default:
		return fmt.Sprintf("code_%d", int(c))
	}
}

// PositionError is the failure a position source reports for a watch.
// It always matches ErrPositionUnavailable with errors.Is.
type PositionError struct {
	Code    PositionErrorCode
	Message string
}

func (e *PositionError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("position error: %s", e.Code)
	}
	return fmt.Sprintf("position error: %s: %s", e.Code, e.Message)
}

func (e *PositionError) Unwrap() error { return ErrPositionUnavailable }
