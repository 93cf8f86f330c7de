package evds

import (
	"errors"
	"fmt"

	"evds/frame"
	"evds/period"
)

var (
	// ErrMissingKey reports a request attempted without an API key.
	ErrMissingKey = errors.New("evds: api key is required (EVDS_KEY)")
	// ErrBadRequestParam reports a request parameter outside the service's
	// vocabulary, rejected before any URL is built.
	ErrBadRequestParam = errors.New("evds: bad request parameter")
	// ErrEmptyResponse reports a response body with no data rows where the
	// metadata pipeline needed at least the header.
	ErrEmptyResponse = errors.New("evds: empty response")

	// ErrMissingColumn and ErrUnknownTimeLayout re-export the collaborators'
	// sentinels so callers can errors.Is against this package alone.
	ErrMissingColumn     = frame.ErrMissingColumn
	ErrUnknownTimeLayout = period.ErrUnknownLayout
)

// StatusError reports a non-2xx response from the service.
type StatusError struct {
	Code int
	URL  string
	Body string
}

func (e *StatusError) Error() string {
	detail, ok := statusDetail[e.Code]
	if !ok {
		detail = "unexpected status"
	}
	return fmt.Sprintf("evds: request failed (%d %s): %s", e.Code, detail, e.URL)
}

// statusDetail documents the statuses the service is known to answer with.
var statusDetail = map[int]string{
	400: "bad request; malformed series list or date range",
	403: "forbidden; invalid or revoked API key",
	404: "unknown endpoint or data group code",
	500: "internal server error",
	503: "service unavailable",
}
