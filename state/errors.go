package state

import "errors"

var (
	ErrUnknownDocument = errors.New("unknown document")
	ErrNoTree          = errors.New("document has no syntax tree")
	ErrParseFailure    = errors.New("parser produced no tree")
)
