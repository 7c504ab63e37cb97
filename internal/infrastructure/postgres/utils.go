package postgres

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return strings.Contains(err.Error(), "23505")
}

// isInvalidText verifica si Postgres rechazó un literal mal formado (22P02), p. ej. un id que no es UUID.
func isInvalidText(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "22P02" // invalid_text_representation
}

// filterBuilder arma cláusulas WHERE con placeholders posicionales ($1, $2, ...).
type filterBuilder struct {
	clauses []string
	args    []any
}

func (b *filterBuilder) add(clause string, arg any) {
	b.args = append(b.args, arg)
	b.clauses = append(b.clauses, fmt.Sprintf(clause, len(b.args)))
}

func (b *filterBuilder) where() string {
	if len(b.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(b.clauses, " AND ")
}

// page agrega LIMIT/OFFSET como los dos siguientes placeholders.
func (b *filterBuilder) page(limit, offset int) string {
	b.args = append(b.args, limit, offset)
	n := len(b.args)
	return fmt.Sprintf(" LIMIT $%d OFFSET $%d", n-1, n)
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func fromNull(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
