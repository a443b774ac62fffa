// Package sqlite stores evidence maps as JSON documents in a local SQLite
// database.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/ShabiDHM/advocatus-sub001/domain/core/aggregates"
	"github.com/ShabiDHM/advocatus-sub001/domain/core/valueobjects"
	"github.com/ShabiDHM/advocatus-sub001/infrastructure/persistence"
	pkgerrors "github.com/ShabiDHM/advocatus-sub001/pkg/errors"
)

const schema = `
CREATE TABLE IF NOT EXISTS evidence_maps (
	case_id    TEXT PRIMARY KEY,
	document   TEXT NOT NULL,
	node_count INTEGER NOT NULL,
	edge_count INTEGER NOT NULL,
	version    INTEGER NOT NULL,
	updated_at TEXT NOT NULL
);
`

// Repository is a single-table document store
type Repository struct {
	db     *sql.DB
	logger *zap.Logger
}

// Open opens or creates the database at path. Use ":memory:" for a throwaway
// store.
func Open(path string, logger *zap.Logger) (*Repository, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// One connection keeps ":memory:" databases shared and serializes writers
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return &Repository{db: db, logger: logger}, nil
}

// Close closes the database
func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *Repository) Load(ctx context.Context, caseID valueobjects.CaseID) (*aggregates.EvidenceMap, error) {
	var doc string
	err := r.db.QueryRowContext(ctx,
		"SELECT document FROM evidence_maps WHERE case_id = ?",
		caseID.String(),
	).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkgerrors.Wrapf(pkgerrors.ErrEvidenceMapNotFound, "case %s", caseID)
	}
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("load evidence map", err)
	}

	var rec persistence.MapRecord
	if err := json.Unmarshal([]byte(doc), &rec); err != nil {
		return nil, pkgerrors.NewDatabaseError("decode evidence map", err)
	}
	return rec.ToAggregate()
}

func (r *Repository) Save(ctx context.Context, m *aggregates.EvidenceMap) error {
	rec := persistence.ToRecord(m)
	doc, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode evidence map: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO evidence_maps (case_id, document, node_count, edge_count, version, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(case_id) DO UPDATE SET
			document = excluded.document,
			node_count = excluded.node_count,
			edge_count = excluded.edge_count,
			version = excluded.version,
			updated_at = excluded.updated_at`,
		rec.CaseID, string(doc), len(rec.Nodes), len(rec.Edges), rec.Version,
		rec.UpdatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return pkgerrors.NewDatabaseError("save evidence map", err)
	}

	r.logger.Debug("Evidence map stored",
		zap.String("caseID", rec.CaseID),
		zap.Int("bytes", len(doc)))
	return nil
}

func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
