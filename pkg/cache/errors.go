package cache

import (
	"errors"

	dgerrors "github.com/matzehuels/dotgraph/pkg/errors"
)

// ErrUnknownBackend is returned by [Open] for an unsupported backend name.
var ErrUnknownBackend = errors.New("unknown cache backend")

// unavailable wraps a connection or setup failure of a backend.
func unavailable(backend string, err error) error {
	return dgerrors.Wrap(dgerrors.ErrCodeCacheUnavailable, err, "%s cache", backend)
}
