package store

import (
	"context"
	"database/sql/driver"
	"errors"
	"net"

	"go.mongodb.org/mongo-driver/mongo"

	"storefront/api/apperr"
)

// storeError maps a driver failure onto the error taxonomy: timeouts and
// connection faults become Unavailable, anything else Internal.
func storeError(msg string, err error) error {
	if isUnavailable(err) {
		return apperr.Unavailable(msg, err)
	}
	return apperr.Internal(msg, err)
}

func isUnavailable(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) || errors.Is(err, driver.ErrBadConn) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return mongo.IsTimeout(err) || mongo.IsNetworkError(err)
}
