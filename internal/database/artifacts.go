package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jamesruggles/scanledger/internal/filters"
)

func (db *DB) ListArtifacts(ctx context.Context, f filters.ArtifactFilters) ([]Artifact, error) {
	q := ArtifactQuery(f)
	var artifacts []Artifact
	if err := db.SelectContext(ctx, &artifacts, q.Text, q.Args...); err != nil {
		return nil, fmt.Errorf("list artifacts: %w", err)
	}
	return artifacts, nil
}

// GetArtifact loads an artifact by id whether or not it is soft-deleted.
func (db *DB) GetArtifact(ctx context.Context, id int64) (*Artifact, error) {
	a := &Artifact{}
	err := db.GetContext(ctx, a, `SELECT `+artifactColumns+` FROM Artifacts WHERE ID = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get artifact: %w", err)
	}
	return a, nil
}

// ListArtifactOptions returns the non-deleted artifacts a scan may reference.
func (db *DB) ListArtifactOptions(ctx context.Context) ([]ArtifactOption, error) {
	var opts []ArtifactOption
	err := db.SelectContext(ctx, &opts,
		`SELECT ID, BusinessUnit, Rapid7App, CheckmarxProduct, MendProduct, MendProject
		 FROM Artifacts WHERE Deleted = 0 ORDER BY BusinessUnit, ID`)
	if err != nil {
		return nil, fmt.Errorf("list artifact options: %w", err)
	}
	return opts, nil
}

func (db *DB) CreateArtifact(ctx context.Context, a *Artifact) error {
	res, err := db.ExecContext(ctx,
		`INSERT INTO Artifacts (
			BusinessUnit, AlteraProduct, Rapid7App, CheckmarxProduct, MendProduct, MendProject, Owner,
			SCAScans, SASTScans, DASTScans, RecentSCA, RecentSCAOK, RecentSAST, RecentSASTOK,
			RecentDAST, RecentDASTOK, RecentLOC, Deleted
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0)`,
		a.BusinessUnit, a.AlteraProduct, a.Rapid7App, a.CheckmarxProduct, a.MendProduct, a.MendProject, a.Owner,
		a.SCAScans, a.SASTScans, a.DASTScans, a.RecentSCA, a.RecentSCAOK, a.RecentSAST, a.RecentSASTOK,
		a.RecentDAST, a.RecentDASTOK, a.RecentLOC,
	)
	if err != nil {
		return fmt.Errorf("insert artifact: %w", classify(err))
	}
	a.ID, _ = res.LastInsertId()
	a.Deleted = 0
	return nil
}

// UpdateArtifact replaces every mutable column of the artifact with id a.ID.
func (db *DB) UpdateArtifact(ctx context.Context, a *Artifact) error {
	res, err := db.ExecContext(ctx,
		`UPDATE Artifacts SET
			BusinessUnit = ?, AlteraProduct = ?, Rapid7App = ?, CheckmarxProduct = ?, MendProduct = ?,
			MendProject = ?, Owner = ?, SCAScans = ?, SASTScans = ?, DASTScans = ?,
			RecentSCA = ?, RecentSCAOK = ?, RecentSAST = ?, RecentSASTOK = ?,
			RecentDAST = ?, RecentDASTOK = ?, RecentLOC = ?
		 WHERE ID = ?`,
		a.BusinessUnit, a.AlteraProduct, a.Rapid7App, a.CheckmarxProduct, a.MendProduct,
		a.MendProject, a.Owner, a.SCAScans, a.SASTScans, a.DASTScans,
		a.RecentSCA, a.RecentSCAOK, a.RecentSAST, a.RecentSASTOK,
		a.RecentDAST, a.RecentDASTOK, a.RecentLOC,
		a.ID,
	)
	if err != nil {
		return fmt.Errorf("update artifact: %w", classify(err))
	}
	return expectRow(res, "update artifact")
}

// SoftDeleteArtifact flags the artifact as deleted. Its scans are left alone.
func (db *DB) SoftDeleteArtifact(ctx context.Context, id int64) error {
	res, err := db.ExecContext(ctx, `UPDATE Artifacts SET Deleted = 1 WHERE ID = ?`, id)
	if err != nil {
		return fmt.Errorf("delete artifact: %w", classify(err))
	}
	return expectRow(res, "delete artifact")
}

func (db *DB) GetStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}
	err := db.GetContext(ctx, stats,
		`SELECT
			(SELECT COUNT(*) FROM Artifacts WHERE Deleted = 0) AS artifacts,
			(SELECT COUNT(DISTINCT BusinessUnit) FROM Artifacts WHERE Deleted = 0) AS business_units,
			(SELECT COUNT(*) FROM Scans) AS scans`)
	if err != nil {
		return nil, fmt.Errorf("get stats: %w", err)
	}
	return stats, nil
}

func expectRow(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}
