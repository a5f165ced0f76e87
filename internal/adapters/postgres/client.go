// Package postgres is the hosted backend: a PostgreSQL database reached with
// pgx, with realtime changes delivered by LISTEN/NOTIFY.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"sort"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/philly/postboard/internal/adapters/changefeed"
	"github.com/philly/postboard/internal/platform/events"
	"github.com/philly/postboard/internal/platform/postgres"
	"github.com/philly/postboard/internal/posts/ports"
)

// ErrInvalidDirection is returned for a sort direction other than ASC or DESC.
var ErrInvalidDirection = errors.New("invalid sort direction")

// Client implements ports.Client on a PostgreSQL pool
type Client struct {
	postgres.BaseRepository
	pool *pgxpool.Pool
	hub  *changefeed.Hub
}

// NewClient creates a client on pool. Push notifications come from hub,
// which the Realtime listener feeds.
func NewClient(pool *pgxpool.Pool, hub *changefeed.Hub) *Client {
	return &Client{
		BaseRepository: postgres.NewBaseRepository(pool),
		pool:           pool,
		hub:            hub,
	}
}

// FetchOrdered selects columns of every row of table ordered by orderBy
func (c *Client) FetchOrdered(ctx context.Context, table string, columns []string, orderBy string, dir ports.Direction) ([]ports.Row, error) {
	query, args, err := buildFetchQuery(c.SB, table, columns, orderBy, dir)
	if err != nil {
		return nil, fmt.Errorf("Client.FetchOrdered: build query: %w", err)
	}

	rows, err := c.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("Client.FetchOrdered: %w", translateError(err))
	}
	maps, err := pgx.CollectRows(rows, pgx.RowToMap)
	if err != nil {
		return nil, fmt.Errorf("Client.FetchOrdered: %w", translateError(err))
	}

	result := make([]ports.Row, 0, len(maps))
	for _, m := range maps {
		result = append(result, ports.Row(m))
	}
	return result, nil
}

// InsertRow inserts fields into table and returns the requested columns
func (c *Client) InsertRow(ctx context.Context, table string, fields map[string]any, returning []string) (ports.Row, error) {
	query, args, err := buildInsertQuery(c.SB, table, fields, returning)
	if err != nil {
		return nil, fmt.Errorf("Client.InsertRow: build query: %w", err)
	}

	rows, err := c.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("Client.InsertRow: %w", translateError(err))
	}
	row, err := pgx.CollectExactlyOneRow(rows, pgx.RowToMap)
	if err != nil {
		return nil, fmt.Errorf("Client.InsertRow: %w", translateError(err))
	}
	return ports.Row(row), nil
}

// SubscribeChanges registers handler for changes of table
func (c *Client) SubscribeChanges(ctx context.Context, table string, kinds []events.ChangeKind, handler ports.ChangeHandler) (ports.Subscription, error) {
	if _, err := postgres.QuoteIdentifier(table); err != nil {
		return nil, fmt.Errorf("Client.SubscribeChanges: %w", err)
	}
	return c.hub.Subscribe(ctx, table, kinds, handler)
}

// Ping checks that the database answers
func (c *Client) Ping(ctx context.Context) error {
	if err := c.pool.Ping(ctx); err != nil {
		return fmt.Errorf("Client.Ping: %w", translateError(err))
	}
	return nil
}

func buildFetchQuery(sb sq.StatementBuilderType, table string, columns []string, orderBy string, dir ports.Direction) (string, []any, error) {
	if dir != ports.Ascending && dir != ports.Descending {
		return "", nil, fmt.Errorf("%w: %q", ErrInvalidDirection, dir)
	}
	qTable, err := postgres.QuoteIdentifier(table)
	if err != nil {
		return "", nil, err
	}
	qColumns, err := postgres.QuoteIdentifiers(columns)
	if err != nil {
		return "", nil, err
	}
	if len(qColumns) == 0 {
		qColumns = []string{"*"}
	}
	qOrder, err := postgres.QuoteIdentifier(orderBy)
	if err != nil {
		return "", nil, err
	}

	return sb.Select(qColumns...).
		From(qTable).
		OrderBy(qOrder + " " + string(dir)).
		ToSql()
}

func buildInsertQuery(sb sq.StatementBuilderType, table string, fields map[string]any, returning []string) (string, []any, error) {
	if len(fields) == 0 {
		return "", nil, errors.New("no fields to insert")
	}
	qTable, err := postgres.QuoteIdentifier(table)
	if err != nil {
		return "", nil, err
	}

	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	qNames, err := postgres.QuoteIdentifiers(names)
	if err != nil {
		return "", nil, err
	}
	values := make([]any, 0, len(names))
	for _, name := range names {
		values = append(values, fields[name])
	}

	qb := sb.Insert(qTable).Columns(qNames...).Values(values...)
	if len(returning) > 0 {
		list, err := postgres.QuoteList(returning)
		if err != nil {
			return "", nil, err
		}
		qb = qb.Suffix("RETURNING " + list)
	}
	return qb.ToSql()
}

// translateError turns errors reported by the server into ServiceErrors so
// the message can be shown as is.
func translateError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return &ports.ServiceError{Message: pgErr.Message, Code: pgErr.Code, Inner: err}
	}
	return err
}

var (
	_ ports.Client = (*Client)(nil)
	_ ports.Pinger = (*Client)(nil)
)
