package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Load errors
	ErrParse       = errors.New("unreadable incident source")
	ErrDataQuality = errors.New("data quality check failed")

	// Caller errors
	ErrInvalidDimension = errors.New("invalid numeric dimension")
	ErrInvalidGroupKey  = errors.New("invalid group key")
	ErrUnknownChart     = errors.New("unknown chart")
)

// Error constructors with context
func NewParseError(source string, err error) error {
	if err == nil {
		return fmt.Errorf("%w: %s", ErrParse, source)
	}
	return fmt.Errorf("%w: %s: %v", ErrParse, source, err)
}

func NewMissingColumnsError(source string, columns []string) error {
	return fmt.Errorf("%w: %s: missing required columns %v", ErrParse, source, columns)
}

func NewDataQualityError(column string, reason string) error {
	return fmt.Errorf("%w: column %s: %s", ErrDataQuality, column, reason)
}

func NewInvalidDimensionError(dim string) error {
	if dim == "" {
		return fmt.Errorf("%w: at least one dimension is required", ErrInvalidDimension)
	}
	return fmt.Errorf("%w: %q", ErrInvalidDimension, dim)
}

func NewDuplicateDimensionError(dim string) error {
	return fmt.Errorf("%w: %q listed more than once", ErrInvalidDimension, dim)
}

func NewInvalidGroupKeyError(key string) error {
	return fmt.Errorf("%w: %q", ErrInvalidGroupKey, key)
}

func NewGroupKeyCountError(n int) error {
	return fmt.Errorf("%w: expected 1 to 3 group keys, got %d", ErrInvalidGroupKey, n)
}

func NewUnknownChartError(name string) error {
	return fmt.Errorf("%w: %q", ErrUnknownChart, name)
}

// Error checking helpers
func IsLoadError(err error) bool {
	return errors.Is(err, ErrParse) || errors.Is(err, ErrDataQuality)
}

func IsCallerError(err error) bool {
	return errors.Is(err, ErrInvalidDimension) ||
		errors.Is(err, ErrInvalidGroupKey) ||
		errors.Is(err, ErrUnknownChart)
}
