package rate

import (
	"context"
	"errors"
)

// ErrUnavailable covers every fetch failure: network, non-200, missing
// element, unparsable number. Callers log and move on; it never escalates.
var ErrUnavailable = errors.New("exchange rate unavailable")

// Source provides the latest USD/KRW rate.
type Source interface {
	Fetch(ctx context.Context) (float64, error)
}
