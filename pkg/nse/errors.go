package nse

import "errors"

var (
	// ErrSession means the cookie handshake itself failed. The manager
	// retries the handshake once internally; this surfaces after that.
	ErrSession = errors.New("session handshake failed")

	// ErrRejected means the provider refused a request even after one
	// session renewal. Block pages served with HTTP 200 count as rejection.
	ErrRejected = errors.New("request rejected by provider")

	// ErrCatalogFetch wraps any failure while downloading or parsing an
	// instrument master list. A suspiciously small payload is a fetch
	// failure, not an empty catalog.
	ErrCatalogFetch = errors.New("catalog fetch failed")

	// ErrContract marks a derivative token that does not match the
	// documented grammar.
	ErrContract = errors.New("malformed contract token")
)
