package domain

import "errors"

var (
	// ErrTransport reports an unreachable remote or a non-2xx response.
	ErrTransport = errors.New("transport failure")
	// ErrNoDataAvailable reports that categories cannot be derived from the cache.
	ErrNoDataAvailable = errors.New("no data available")
	// ErrDeleteFailed reports a rejected or failed remote deletion.
	ErrDeleteFailed = errors.New("delete failed")
	// ErrCreateFailed reports a rejected or failed remote creation.
	ErrCreateFailed = errors.New("create failed")
	// ErrTemplateUnavailable reports a dialog template that never loaded.
	ErrTemplateUnavailable = errors.New("template unavailable")
	// ErrUnauthenticated reports a mutation attempted without a session.
	ErrUnauthenticated = errors.New("not authenticated")
)
