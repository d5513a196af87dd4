package store

import (
	"errors"
	"fmt"
)

// StoreError represents a rejected store operation.
//
// Editing errors are always recovered locally: the operation is a no-op,
// no notification fires, and no command should be recorded for it. None
// of these errors ever crosses the real-time boundary - evaluation
// returns a caller default instead of failing.
type StoreError struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Owner identifies the affected lane or clip, when known.
	Owner OwnerID

	// Point identifies the affected point, when known.
	Point PointID
}

// ErrorCode categorizes store errors.
type ErrorCode string

const (
	// ErrCodePointNotFound indicates an operation on an unknown point ID.
	ErrCodePointNotFound ErrorCode = "POINT_NOT_FOUND"

	// ErrCodeUnknownOwner indicates an operation against a lane or clip
	// ID the store has never seen (or has already removed).
	ErrCodeUnknownOwner ErrorCode = "UNKNOWN_OWNER"

	// ErrCodeWrongCurveType indicates a handle edit on a non-Bezier point
	// or a tension edit on a non-Linear point.
	ErrCodeWrongCurveType ErrorCode = "WRONG_CURVE_TYPE"
)

// Error implements the error interface.
func (e *StoreError) Error() string {
	switch {
	case e.Owner != "" && e.Point != "":
		return fmt.Sprintf("%s: %s (owner=%s, point=%s)", e.Code, e.Message, e.Owner, e.Point)
	case e.Point != "":
		return fmt.Sprintf("%s: %s (point=%s)", e.Code, e.Message, e.Point)
	case e.Owner != "":
		return fmt.Sprintf("%s: %s (owner=%s)", e.Code, e.Message, e.Owner)
	default:
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
}

// IsPointNotFound reports whether err is a point-not-found error.
// Uses errors.As to handle wrapped errors.
func IsPointNotFound(err error) bool {
	var se *StoreError
	return errors.As(err, &se) && se.Code == ErrCodePointNotFound
}

// IsUnknownOwner reports whether err is an unknown-owner error.
func IsUnknownOwner(err error) bool {
	var se *StoreError
	return errors.As(err, &se) && se.Code == ErrCodeUnknownOwner
}

// IsWrongCurveType reports whether err is a wrong-curve-type error.
func IsWrongCurveType(err error) bool {
	var se *StoreError
	return errors.As(err, &se) && se.Code == ErrCodeWrongCurveType
}

func newPointNotFound(id PointID) *StoreError {
	return &StoreError{
		Code:    ErrCodePointNotFound,
		Message: "no point with this id",
		Point:   id,
	}
}

func newUnknownOwner(id OwnerID) *StoreError {
	return &StoreError{
		Code:    ErrCodeUnknownOwner,
		Message: "no lane or clip with this id",
		Owner:   id,
	}
}

func newWrongCurveType(id PointID, want string) *StoreError {
	return &StoreError{
		Code:    ErrCodeWrongCurveType,
		Message: fmt.Sprintf("operation requires a %s point", want),
		Point:   id,
	}
}
