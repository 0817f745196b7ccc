package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"tidyspot/internal/model"
)

type cameraStore struct {
	db *sql.DB
}

func (s *cameraStore) Create(ctx context.Context, c *model.Camera) (*model.Camera, error) {
	if c.URL == "" {
		return nil, fmt.Errorf("%w: camera url required", model.ErrValidation)
	}
	switch c.CameraType {
	case "rtsp", "mjpeg", "onvif":
	default:
		return nil, fmt.Errorf("%w: unsupported camera_type %q", model.ErrValidation, c.CameraType)
	}
	if c.ID == "" {
		// The prefix routes the identifier to the owning adapter.
		c.ID = c.CameraType + "_" + uuid.NewString()[:8]
	}
	c.Enabled = true
	_, err := s.db.ExecContext(ctx, `INSERT INTO cameras
		(id, name, url, camera_type, username, password, enabled)
		VALUES (?, ?, ?, ?, ?, ?, 1)`,
		c.ID, c.Name, c.URL, c.CameraType, c.Username, c.Password)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *cameraStore) Get(ctx context.Context, id string) (*model.Camera, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, name, url, camera_type,
		username, password, enabled FROM cameras WHERE id = ?`, id)
	var (
		c       model.Camera
		enabled int
	)
	err := row.Scan(&c.ID, &c.Name, &c.URL, &c.CameraType, &c.Username,
		&c.Password, &enabled)
	if err == sql.ErrNoRows {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	c.Enabled = enabled != 0
	return &c, nil
}

func (s *cameraStore) List(ctx context.Context) ([]*model.Camera, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, url, camera_type,
		username, password, enabled FROM cameras ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []*model.Camera
	for rows.Next() {
		var (
			c       model.Camera
			enabled int
		)
		if err := rows.Scan(&c.ID, &c.Name, &c.URL, &c.CameraType,
			&c.Username, &c.Password, &enabled); err != nil {
			return nil, err
		}
		c.Enabled = enabled != 0
		out = append(out, &c)
	}
	return out, rows.Err()
}

func (s *cameraStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM cameras WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}
