// Package sqlxrepos implements the core repositories on Postgres via sqlx.
// Core models carry no persistence tags; each repository maps rows through
// its own db-tagged struct.
package sqlxrepos

import (
	"github.com/lib/pq"
	"github.com/pkg/errors"
)

const uniqueViolation = pq.ErrorCode("23505")

// wrapDup translates a Postgres unique_violation into the owning package's
// already-exists sentinel so callers can treat duplicates as benign.
func wrapDup(err, sentinel error) error {
	if pqErr, ok := errors.Cause(err).(*pq.Error); ok && pqErr.Code == uniqueViolation {
		return sentinel
	}
	return err
}
