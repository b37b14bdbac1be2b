package core

import "errors"

// Dictionary errors.
var (
	ErrNotFound      = errors.New("term not found")
	ErrAlreadyExists = errors.New("definition already exists")
	ErrNotRemoved    = errors.New("definition is not removed")
	ErrInvalidEntry  = errors.New("invalid entry")
	ErrReadOnly      = errors.New("dictionary is in read-only mode")
)

// Sync errors. None of them is fatal to the command that triggered the sync.
var (
	ErrNoNetwork       = errors.New("network unavailable")
	ErrTransport       = errors.New("remote request failed")
	ErrDecompress      = errors.New("decompression failed")
	ErrParse           = errors.New("malformed remote payload")
	ErrDiffUnavailable = errors.New("remote diff unavailable")
	ErrSyncDisabled    = errors.New("synchronization is not configured")
)
