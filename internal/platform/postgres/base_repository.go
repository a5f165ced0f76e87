package postgres

import (
	"context"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/philly/postboard/internal/platform/validator"
)

// Querier is satisfied by *pgxpool.Pool, *pgxpool.Conn and pgx.Tx
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, arguments ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, arguments ...any) pgx.Row
}

// BaseRepository bundles a querier with a statement builder using $n placeholders
type BaseRepository struct {
	DB Querier
	SB sq.StatementBuilderType
}

// NewBaseRepository creates a base repository over db
func NewBaseRepository(db Querier) BaseRepository {
	return BaseRepository{
		DB: db,
		SB: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// WithTx returns a copy of the repository bound to tx
func (b BaseRepository) WithTx(tx pgx.Tx) BaseRepository {
	return BaseRepository{
		DB: tx,
		SB: b.SB,
	}
}

// QuoteIdentifier validates name and returns it double-quoted.
func QuoteIdentifier(name string) (string, error) {
	if err := validator.ValidateIdentifier(name); err != nil {
		return "", fmt.Errorf("identifier %q: %w", name, err)
	}
	return pgx.Identifier{name}.Sanitize(), nil
}

// QuoteIdentifiers quotes every name, failing on the first invalid one.
func QuoteIdentifiers(names []string) ([]string, error) {
	quoted := make([]string, 0, len(names))
	for _, name := range names {
		q, err := QuoteIdentifier(name)
		if err != nil {
			return nil, err
		}
		quoted = append(quoted, q)
	}
	return quoted, nil
}

// QuoteList joins quoted identifiers for use in a column list.
func QuoteList(names []string) (string, error) {
	quoted, err := QuoteIdentifiers(names)
	if err != nil {
		return "", err
	}
	return strings.Join(quoted, ", "), nil
}
