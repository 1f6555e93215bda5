package store

import (
	"errors"

	"github.com/lib/pq"

	"claimflow/pkg/platform/sentinel"
)

const uniqueViolation = "23505"

// translate maps driver errors onto sentinel errors.
func translate(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return sentinel.ErrConflict
	}
	return err
}
