package relstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/Afinucci/Design-Copilot-sub000/pkg/facility"
	"github.com/Afinucci/Design-Copilot-sub000/pkg/relations"
)

// sqlStore holds the queries shared by the SQL backends. bind renders the
// n-th (1-based) placeholder.
type sqlStore struct {
	db     *sql.DB
	schema string
	bind   func(n int) string
}

// SQLiteStore keeps rules in a SQLite database.
type SQLiteStore struct {
	*sqlStore
}

// PostgresStore keeps rules in a PostgreSQL database.
type PostgresStore struct {
	*sqlStore
}

// OpenSQLite opens (creating if needed) a SQLite rule database.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", "file:"+path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)")
	if err != nil {
		return nil, fmt.Errorf("open rule db: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping rule db: %w", err)
	}
	return NewSQLiteStore(db), nil
}

// NewSQLiteStore wraps an open SQLite handle.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{&sqlStore{db: db, schema: SQLiteSchema, bind: func(int) string { return "?" }}}
}

// OpenPostgres connects to PostgreSQL.
func OpenPostgres(dsn string, maxConns int) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if maxConns > 0 {
		db.SetMaxOpenConns(maxConns)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return NewPostgresStore(db), nil
}

// NewPostgresStore wraps an open PostgreSQL handle.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{&sqlStore{db: db, schema: PostgresSchema, bind: func(n int) string { return fmt.Sprintf("$%d", n) }}}
}

// Close closes the database.
func (s *sqlStore) Close() error {
	return s.db.Close()
}

// Migrate creates the relationship table if it does not exist.
func (s *sqlStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, s.schema); err != nil {
		return fmt.Errorf("migrate room_relationships: %w", err)
	}
	return nil
}

// Query returns the rules for fromType -> toType, highest priority first.
func (s *sqlStore) Query(ctx context.Context, fromType, toType string) ([]relations.Rule, error) {
	q := fmt.Sprintf(`SELECT relationship_type, priority, flow_type, flow_direction, reason
		FROM room_relationships
		WHERE from_type = %s AND to_type = %s
		ORDER BY priority DESC, relationship_type`, s.bind(1), s.bind(2))

	rows, err := s.db.QueryContext(ctx, q, relations.NormalizeType(fromType), relations.NormalizeType(toType))
	if err != nil {
		return nil, fmt.Errorf("query room_relationships: %w", err)
	}
	defer rows.Close()

	var out []relations.Rule
	for rows.Next() {
		var (
			typ, flowType, flowDir, reason string
			priority                       int
		)
		if err := rows.Scan(&typ, &priority, &flowType, &flowDir, &reason); err != nil {
			return nil, fmt.Errorf("scan room_relationships: %w", err)
		}
		out = append(out, relations.Rule{
			FromType:      fromType,
			ToType:        toType,
			Type:          facility.RelationshipType(typ),
			Priority:      priority,
			FlowType:      facility.FlowType(flowType),
			FlowDirection: facility.FlowDirection(flowDir),
			Reason:        reason,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate room_relationships: %w", err)
	}
	return out, nil
}

// Import inserts rules in one transaction. With replace set, existing rows
// are removed first. It returns the number of rows written.
func (s *sqlStore) Import(ctx context.Context, rules []relations.Rule, replace bool) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if replace {
		if _, err := tx.ExecContext(ctx, `DELETE FROM room_relationships`); err != nil {
			return 0, fmt.Errorf("clear room_relationships: %w", err)
		}
	}

	insert := fmt.Sprintf(`INSERT INTO room_relationships
		(id, from_type, to_type, relationship_type, priority, flow_type, flow_direction, reason)
		VALUES (%s, %s, %s, %s, %s, %s, %s, %s)`,
		s.bind(1), s.bind(2), s.bind(3), s.bind(4), s.bind(5), s.bind(6), s.bind(7), s.bind(8))

	for _, r := range rules {
		_, err := tx.ExecContext(ctx, insert,
			uuid.New().String(),
			relations.NormalizeType(r.FromType),
			relations.NormalizeType(r.ToType),
			string(r.Type),
			facility.ClampPriority(r.Priority),
			string(r.FlowType),
			string(r.FlowDirection),
			r.Reason,
		)
		if err != nil {
			return 0, fmt.Errorf("insert rule %s -> %s: %w", r.FromType, r.ToType, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return len(rules), nil
}
