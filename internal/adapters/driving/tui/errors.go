package tui

import "errors"

// ErrMissingLibraryService is returned when the library service is not provided.
var ErrMissingLibraryService = errors.New("tui: library service is required")

// ErrMissingDeliveryService is returned when the delivery service is not provided.
var ErrMissingDeliveryService = errors.New("tui: delivery service is required")

// ErrInvalidPorts is returned when ports validation fails.
var ErrInvalidPorts = errors.New("tui: invalid ports configuration")
