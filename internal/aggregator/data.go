package aggregator

import (
	"net/url"

	"github.com/rohmanhakim/store-insights/internal/fetcher"
	"github.com/rohmanhakim/store-insights/internal/source"
)

// sourceSet holds the probe outcome of every kind for one run.
type sourceSet map[source.Kind]source.RawSource

// get never returns an unknown status: kinds that were not probed read as
// not found.
func (s sourceSet) get(kind source.Kind) source.RawSource {
	if raw, ok := s[kind]; ok {
		return raw
	}
	return source.Missing(kind, url.URL{}, fetcher.StatusNotFound)
}
