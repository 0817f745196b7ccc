package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"tidyspot/internal/model"
)

type checkStore struct {
	db *sql.DB
}

const checkColumns = `id, spot_id, timestamp, status, to_sort, looking_good,
	notes, error, latency_ms, analysis, xp_earned`

func (s *checkStore) Create(ctx context.Context, c *model.Check) (*model.Check, error) {
	if c.SpotID == 0 {
		return nil, fmt.Errorf("%w: check requires spot_id", model.ErrValidation)
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Timestamp.IsZero() {
		c.Timestamp = time.Now().UTC()
	}
	toSort := c.ToSort
	if toSort == nil {
		toSort = []model.ToSortItem{}
	}
	lookingGood := c.LookingGood
	if lookingGood == nil {
		lookingGood = []string{}
	}
	toSortJSON, err := json.Marshal(toSort)
	if err != nil {
		return nil, err
	}
	lookingGoodJSON, err := json.Marshal(lookingGood)
	if err != nil {
		return nil, err
	}
	var analysis interface{}
	if len(c.Analysis) > 0 {
		analysis = string(c.Analysis)
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO checks
		(id, spot_id, timestamp, status, to_sort, looking_good, notes, error,
		 latency_ms, analysis, xp_earned)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.SpotID, c.Timestamp.UTC().Format(time.RFC3339Nano), c.Status,
		string(toSortJSON), string(lookingGoodJSON), c.Notes, c.Error,
		c.LatencyMs, analysis, c.XPEarned)
	if err != nil {
		return nil, err
	}
	c.ToSort = toSort
	c.LookingGood = lookingGood
	return c, nil
}

func (s *checkStore) Get(ctx context.Context, spotID int64, checkID string) (*model.Check, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+checkColumns+` FROM checks WHERE spot_id = ? AND id = ?`,
		spotID, checkID)
	return scanCheck(row)
}

func (s *checkStore) ListBySpot(ctx context.Context, spotID int64, limit, offset int) ([]*model.Check, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+checkColumns+` FROM checks
		 WHERE spot_id = ? ORDER BY timestamp DESC LIMIT ? OFFSET ?`,
		spotID, limit, offset)
	if err != nil {
		return nil, err
	}
	return collectChecks(rows)
}

func (s *checkStore) ListSince(ctx context.Context, spotID int64, since time.Time) ([]*model.Check, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+checkColumns+` FROM checks
		 WHERE spot_id = ? AND timestamp >= ? ORDER BY timestamp ASC`,
		spotID, since.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return nil, err
	}
	return collectChecks(rows)
}

func (s *checkStore) UpdateNotes(ctx context.Context, spotID int64, checkID, notes string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE checks SET notes = ? WHERE spot_id = ? AND id = ?`,
		notes, spotID, checkID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *checkStore) UpdateItems(ctx context.Context, spotID int64, checkID string, items []model.ToSortItem) error {
	if items == nil {
		items = []model.ToSortItem{}
	}
	itemsJSON, err := json.Marshal(items)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE checks SET to_sort = ? WHERE spot_id = ? AND id = ?`,
		string(itemsJSON), spotID, checkID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *checkStore) Delete(ctx context.Context, spotID int64, checkID string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM checks WHERE spot_id = ? AND id = ?`, spotID, checkID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *checkStore) DeleteBySpot(ctx context.Context, spotID int64) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM checks WHERE spot_id = ?`, spotID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func collectChecks(rows *sql.Rows) ([]*model.Check, error) {
	defer func() { _ = rows.Close() }()
	var out []*model.Check
	for rows.Next() {
		c, err := scanCheck(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func scanCheck(row rowScanner) (*model.Check, error) {
	var (
		c        model.Check
		ts       string
		toSort   string
		good     string
		analysis sql.NullString
	)
	err := row.Scan(&c.ID, &c.SpotID, &ts, &c.Status, &toSort, &good,
		&c.Notes, &c.Error, &c.LatencyMs, &analysis, &c.XPEarned)
	if err == sql.ErrNoRows {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	t, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return nil, fmt.Errorf("parse check timestamp: %w", err)
	}
	c.Timestamp = t
	if err := json.Unmarshal([]byte(toSort), &c.ToSort); err != nil {
		return nil, fmt.Errorf("parse to_sort: %w", err)
	}
	if err := json.Unmarshal([]byte(good), &c.LookingGood); err != nil {
		return nil, fmt.Errorf("parse looking_good: %w", err)
	}
	if analysis.Valid && analysis.String != "" {
		c.Analysis = json.RawMessage(analysis.String)
	}
	return &c, nil
}
