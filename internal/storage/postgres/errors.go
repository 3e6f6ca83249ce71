package postgres

import (
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"almanac/internal/domain"
)

const (
	codeUniqueViolation   = "23505"
	codeInvalidTextFormat = "22P02"
)

// mapError translates driver errors into domain sentinels. Malformed UUIDs
// can never match a row, so they surface as ErrNotFound.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case codeUniqueViolation:
			return domain.ErrDuplicate
		case codeInvalidTextFormat:
			return domain.ErrNotFound
		}
	}
	return err
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
