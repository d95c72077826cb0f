package dsp

import "errors"

var (
	// ErrKindMismatch is returned when connecting a signal outlet to a
	// message inlet or vice versa.
	ErrKindMismatch = errors.New("portlet kinds do not match")

	// ErrUnknownTable is returned when binding to a table name that was
	// never declared.
	ErrUnknownTable = errors.New("unknown table")

	// ErrDuplicateTable is returned when declaring a table whose name is
	// already taken in the same scope.
	ErrDuplicateTable = errors.New("duplicate table")

	// ErrCyclicSignalGraph is returned by the scheduler when the signal
	// connections form a cycle; no block can be rendered.
	ErrCyclicSignalGraph = errors.New("cyclic signal graph")

	// ErrInvalidControlArgument is reported (logged) when a control message
	// has a non-numeric token where a number is required or an invalid
	// position. The message is ignored and the object keeps its state.
	ErrInvalidControlArgument = errors.New("invalid control argument")

	ErrUnknownObjectType = errors.New("unknown object type")
	ErrPortletIndex      = errors.New("portlet index out of range")
	ErrNotConnected      = errors.New("not connected")
	ErrAlreadyConnected  = errors.New("already connected")
	ErrBadArgument       = errors.New("bad creation argument")
)
