package repository

import (
	appErrors "chembot/pkg/errors"
)

// wrapStore maps a raw client error onto the domain taxonomy. Timeouts,
// closed clients and network failures all read as an unavailable store;
// redis.Nil is never passed here, callers translate it to NotFound
// themselves.
func wrapStore(err error, message string) error {
	if err == nil {
		return nil
	}
	return appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, message)
}

func wrapIntegrity(err error, message string) error {
	return appErrors.Wrap(err, appErrors.ErrDataIntegrity.Code, appErrors.ErrDataIntegrity.Status, message)
}
