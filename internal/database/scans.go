package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jamesruggles/scanledger/internal/filters"
)

// ListScans returns the scan listing for f. With MostRecentOnly set, only the
// latest scan per (artifact, tool, type) survives.
func (db *DB) ListScans(ctx context.Context, f filters.ScanFilters) ([]ScanRow, error) {
	q := ScanQuery(f)
	var rows []ScanRow
	if err := db.SelectContext(ctx, &rows, q.Text, q.Args...); err != nil {
		return nil, fmt.Errorf("list scans: %w", err)
	}
	if f.MostRecentOnly {
		rows = LatestPerTriple(rows)
	}
	return rows, nil
}

// ListScansByArtifact returns every scan of one artifact, newest first.
func (db *DB) ListScansByArtifact(ctx context.Context, artifactID int64) ([]Scan, error) {
	var scans []Scan
	err := db.SelectContext(ctx, &scans,
		`SELECT `+scanColumns+` FROM Scans WHERE ArtifactID = ? ORDER BY ScanDateTime DESC, ID DESC`, artifactID)
	if err != nil {
		return nil, fmt.Errorf("list scans by artifact: %w", err)
	}
	return scans, nil
}

func (db *DB) GetScan(ctx context.Context, id int64) (*Scan, error) {
	s := &Scan{}
	err := db.GetContext(ctx, s, `SELECT `+scanColumns+` FROM Scans WHERE ID = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get scan: %w", err)
	}
	return s, nil
}

func (db *DB) CreateScan(ctx context.Context, s *Scan) error {
	res, err := db.ExecContext(ctx,
		`INSERT INTO Scans (
			ArtifactID, ScanTool, ScanType, ScanDateTime, ScanRepeatCount,
			Critical, High, Medium, CriticalNP, HighNP, MediumNP
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ArtifactID, s.ScanTool, s.ScanType, s.ScanDateTime, s.ScanRepeatCount,
		s.Critical, s.High, s.Medium, s.CriticalNP, s.HighNP, s.MediumNP,
	)
	if err != nil {
		return fmt.Errorf("insert scan: %w", classify(err))
	}
	s.ID, _ = res.LastInsertId()
	return nil
}

// UpdateScan replaces every mutable column of the scan with id s.ID.
func (db *DB) UpdateScan(ctx context.Context, s *Scan) error {
	res, err := db.ExecContext(ctx,
		`UPDATE Scans SET
			ArtifactID = ?, ScanTool = ?, ScanType = ?, ScanDateTime = ?, ScanRepeatCount = ?,
			Critical = ?, High = ?, Medium = ?, CriticalNP = ?, HighNP = ?, MediumNP = ?
		 WHERE ID = ?`,
		s.ArtifactID, s.ScanTool, s.ScanType, s.ScanDateTime, s.ScanRepeatCount,
		s.Critical, s.High, s.Medium, s.CriticalNP, s.HighNP, s.MediumNP,
		s.ID,
	)
	if err != nil {
		return fmt.Errorf("update scan: %w", classify(err))
	}
	return expectRow(res, "update scan")
}

// DeleteScan removes the scan row.
func (db *DB) DeleteScan(ctx context.Context, id int64) error {
	res, err := db.ExecContext(ctx, `DELETE FROM Scans WHERE ID = ?`, id)
	if err != nil {
		return fmt.Errorf("delete scan: %w", classify(err))
	}
	return expectRow(res, "delete scan")
}
