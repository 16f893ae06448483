package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"gtdash/domain/core"
	"gtdash/domain/incident"
	"gtdash/ports"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// incidentSource reads the incident table from Postgres. It only ever issues
// a single SELECT; nothing is written.
type incidentSource struct {
	db    *sqlx.DB
	table string
	query string
}

// NewIncidentSource creates a read-only source over a table or view exposing
// the required incident columns.
func NewIncidentSource(db *sqlx.DB, table string) (ports.IncidentSourcePort, error) {
	query, err := buildSelectQuery(table, incident.RequiredColumns)
	if err != nil {
		return nil, err
	}
	return &incidentSource{db: db, table: table, query: query}, nil
}

// Connect opens a Postgres connection pool and verifies it with a ping.
func Connect(ctx context.Context, url string) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

func (s *incidentSource) Describe() string {
	return "postgres:" + s.table
}

// ReadTable runs the select and returns every row as text cells. NULLs
// become empty cells, which the cleaner treats as missing.
func (s *incidentSource) ReadTable(ctx context.Context) (*incident.RawTable, error) {
	start := time.Now()
	rows, err := s.db.QueryxContext(ctx, s.query)
	if err != nil {
		return nil, core.NewParseError(s.Describe(), fmt.Errorf("failed to query incidents: %w", err))
	}
	defer rows.Close()

	columns := incident.RequiredColumns
	table := &incident.RawTable{
		Source:  s.Describe(),
		Headers: append([]string(nil), columns...),
	}

	cells := make([]sql.NullString, len(columns))
	dest := make([]interface{}, len(columns))
	for i := range cells {
		dest[i] = &cells[i]
	}

	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, core.NewParseError(s.Describe(), fmt.Errorf("failed to scan incident: %w", err))
		}
		row := make([]string, len(columns))
		for i, c := range cells {
			if c.Valid {
				row[i] = c.String
			}
		}
		table.Rows = append(table.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, core.NewParseError(s.Describe(), fmt.Errorf("failed to iterate incidents: %w", err))
	}

	log.Printf("[IncidentSource] Read %d rows from %s in %s", len(table.Rows), s.table, time.Since(start))
	return table, nil
}

// buildSelectQuery renders a SELECT casting every column to text so that
// the same cleaning path serves files and databases.
func buildSelectQuery(table string, columns []string) (string, error) {
	if !identifierPattern.MatchString(table) {
		return "", core.NewParseError(table, fmt.Errorf("invalid table identifier"))
	}

	parts := strings.Split(table, ".")
	for i, p := range parts {
		parts[i] = pq.QuoteIdentifier(p)
	}

	selects := make([]string, len(columns))
	for i, col := range columns {
		q := pq.QuoteIdentifier(col)
		selects[i] = fmt.Sprintf("%s::text AS %s", q, q)
	}

	return fmt.Sprintf("SELECT %s FROM %s", strings.Join(selects, ", "), strings.Join(parts, ".")), nil
}
