package repository

import (
	"database/sql"
	"errors"
	"strings"

	"radsync/internal/domain"
)

func mapDBError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return &domain.NotFoundError{Message: "resource not found"}
	}
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return &domain.ConflictError{Message: "resource already exists"}
	}
	return err
}

// validTable guards against attribute table names reaching SQL by
// interpolation. Only the two known tables are accepted.
func validTable(table domain.AttributeTable) (string, error) {
	switch table {
	case domain.TableCheck, domain.TableReply:
		return string(table), nil
	default:
		return "", domain.ErrValidation("unknown attribute table %q", table)
	}
}
