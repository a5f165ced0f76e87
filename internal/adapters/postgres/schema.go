package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/philly/postboard/internal/platform/logger"
	"github.com/philly/postboard/internal/platform/postgres"
	"github.com/philly/postboard/internal/platform/validator"
)

// SchemaSeeder creates the posts table and its notify trigger when missing.
type SchemaSeeder struct {
	tm      postgres.TransactionManager
	logger  logger.Logger
	table   string
	channel string
}

// NewSchemaSeeder creates a seeder for table notifying on channel
func NewSchemaSeeder(tm postgres.TransactionManager, logger logger.Logger, table, channel string) *SchemaSeeder {
	return &SchemaSeeder{tm: tm, logger: logger, table: table, channel: channel}
}

// Name returns the name of the seeder for logging
func (s *SchemaSeeder) Name() string { return "schema" }

// Seed applies every statement in one transaction. Statements are idempotent.
func (s *SchemaSeeder) Seed(ctx context.Context) error {
	statements, err := SchemaStatements(s.table, s.channel)
	if err != nil {
		return fmt.Errorf("SchemaSeeder.Seed: %w", err)
	}

	return postgres.WithinTx(ctx, s.tm, func(ctx context.Context, tx pgx.Tx) error {
		for _, stmt := range statements {
			if _, err := tx.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("SchemaSeeder.Seed: %w", translateError(err))
			}
		}
		s.logger.Info(ctx, "schema ensured", "table", s.table, "channel", s.channel, "statements", len(statements))
		return nil
	})
}

// SchemaStatements returns the DDL for table and its change trigger. The
// trigger notifies with the row id only; pg_notify rejects payloads of 8000
// bytes or more and the error would abort the write.
func SchemaStatements(table, channel string) ([]string, error) {
	if err := validator.ValidateIdentifiers(table, channel); err != nil {
		return nil, err
	}
	qTable := pgx.Identifier{table}.Sanitize()
	qIndex := pgx.Identifier{table + "_created_at_idx"}.Sanitize()
	qFunc := pgx.Identifier{table + "_notify_change"}.Sanitize()

	return []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id bigint GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
	content text NOT NULL CHECK (length(btrim(content)) > 0),
	created_at timestamptz NOT NULL DEFAULT now()
)`, qTable),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s (created_at DESC)`, qIndex, qTable),
		fmt.Sprintf(`CREATE OR REPLACE FUNCTION %s() RETURNS trigger
LANGUAGE plpgsql AS $$
BEGIN
	PERFORM pg_notify('%s', json_build_object(
		'table', TG_TABLE_NAME,
		'type', TG_OP,
		'id', CASE WHEN TG_OP = 'DELETE' THEN OLD.id ELSE NEW.id END,
		'commit_timestamp', to_char(now() AT TIME ZONE 'UTC', 'YYYY-MM-DD"T"HH24:MI:SS.US"Z"')
	)::text);
	RETURN NULL;
END;
$$`, qFunc, channel),
		fmt.Sprintf(`CREATE OR REPLACE TRIGGER %s
AFTER INSERT OR UPDATE OR DELETE ON %s
FOR EACH ROW EXECUTE FUNCTION %s()`, qFunc, qTable, qFunc),
	}, nil
}
