package visits

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the query engine. Handlers map these onto HTTP
// statuses; everything else is treated as a store failure.
var (
	ErrParkNotFound   = errors.New("park not found")
	ErrRegionNotFound = errors.New("region not found")
	ErrNoData         = errors.New("no data available")
)

// InvalidParamError reports a request parameter that failed validation before
// any aggregation ran. Field names the offending parameter.
type InvalidParamError struct {
	Field  string
	Reason string
}

func (e *InvalidParamError) Error() string {
	return fmt.Sprintf("invalid parameter %s: %s", e.Field, e.Reason)
}

func invalidParam(field, reason string) error {
	return &InvalidParamError{Field: field, Reason: reason}
}
