// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package library catalogs video items and their streams in SQLite.
package library

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ManuGH/animcover/internal/domain/media"
	"github.com/ManuGH/animcover/internal/persistence/sqlite"
)

var (
	ErrNotFound    = errors.New("item not found")
	ErrInvalidPath = errors.New("invalid item path")
)

var migrations = []string{
	`
	CREATE TABLE items (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		path TEXT NOT NULL UNIQUE,
		container TEXT NOT NULL DEFAULT '',
		protocol TEXT NOT NULL CHECK(protocol IN ('file', 'http')),
		video_type TEXT NOT NULL CHECK(video_type IN ('file', 'dvd', 'bluray', 'iso')),
		is_shortcut INTEGER NOT NULL DEFAULT 0,
		is_placeholder INTEGER NOT NULL DEFAULT 0,
		is_complete INTEGER NOT NULL DEFAULT 1,
		video_3d_format TEXT NOT NULL DEFAULT '',
		run_time_ticks INTEGER NOT NULL DEFAULT 0,
		default_video_stream_index INTEGER,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE media_streams (
		item_id TEXT NOT NULL REFERENCES items(id) ON DELETE CASCADE,
		stream_index INTEGER NOT NULL,
		type TEXT NOT NULL,
		codec TEXT NOT NULL DEFAULT '',
		width INTEGER NOT NULL DEFAULT 0,
		height INTEGER NOT NULL DEFAULT 0,
		is_interlaced INTEGER NOT NULL DEFAULT 0,
		color_transfer TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (item_id, stream_index)
	);

	CREATE INDEX idx_media_streams_type ON media_streams(item_id, type);
	`,
}

// Store provides SQLite persistence for items and their streams.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// NewStore opens the database at dbPath and runs migrations.
func NewStore(ctx context.Context, dbPath string) (*Store, error) {
	db, err := sqlite.Open(ctx, dbPath, sqlite.DefaultConfig())
	if err != nil {
		return nil, err
	}
	if err := sqlite.Migrate(ctx, db, migrations); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// UpsertItem stores item and replaces its streams atomically.
func (s *Store) UpsertItem(ctx context.Context, item media.Item, streams []media.MediaStream) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var defaultIdx sql.NullInt64
	if item.DefaultVideoStreamIndex != nil {
		defaultIdx = sql.NullInt64{Int64: int64(*item.DefaultVideoStreamIndex), Valid: true}
	}

	_, err = tx.ExecContext(ctx, `
	INSERT INTO items (id, name, path, container, protocol, video_type, is_shortcut, is_placeholder,
		is_complete, video_3d_format, run_time_ticks, default_video_stream_index, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		name = excluded.name,
		path = excluded.path,
		container = excluded.container,
		protocol = excluded.protocol,
		video_type = excluded.video_type,
		is_shortcut = excluded.is_shortcut,
		is_placeholder = excluded.is_placeholder,
		is_complete = excluded.is_complete,
		video_3d_format = excluded.video_3d_format,
		run_time_ticks = excluded.run_time_ticks,
		default_video_stream_index = excluded.default_video_stream_index,
		updated_at = excluded.updated_at
	`,
		item.ID,
		item.Name,
		item.Path,
		item.Container,
		string(item.Protocol),
		string(item.VideoType),
		item.IsShortcut,
		item.IsPlaceholder,
		item.IsCompleteMedia,
		item.Video3DFormat,
		media.RunTimeTicks(item.RunTime),
		defaultIdx,
		s.now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("upsert item %s: %w", item.ID, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM media_streams WHERE item_id = ?`, item.ID); err != nil {
		return fmt.Errorf("clear streams: %w", err)
	}
	for _, st := range streams {
		_, err := tx.ExecContext(ctx, `
		INSERT INTO media_streams (item_id, stream_index, type, codec, width, height, is_interlaced, color_transfer)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, item.ID, st.Index, string(st.Type), st.Codec, st.Width, st.Height, st.IsInterlaced, st.ColorTransfer)
		if err != nil {
			return fmt.Errorf("insert stream %d: %w", st.Index, err)
		}
	}

	return tx.Commit()
}

const itemColumns = `id, name, path, container, protocol, video_type, is_shortcut, is_placeholder,
	is_complete, video_3d_format, run_time_ticks, default_video_stream_index`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (media.Item, error) {
	var (
		it         media.Item
		protocol   string
		videoType  string
		ticks      int64
		defaultIdx sql.NullInt64
	)
	err := row.Scan(&it.ID, &it.Name, &it.Path, &it.Container, &protocol, &videoType,
		&it.IsShortcut, &it.IsPlaceholder, &it.IsCompleteMedia, &it.Video3DFormat, &ticks, &defaultIdx)
	if err != nil {
		return media.Item{}, err
	}
	it.Protocol = media.Protocol(protocol)
	it.VideoType = media.VideoType(videoType)
	it.RunTime = media.FromTicks(ticks)
	if defaultIdx.Valid {
		it.DefaultVideoStreamIndex = media.IntPtr(int(defaultIdx.Int64))
	}
	return it, nil
}

// GetItem returns the item with the given ID or ErrNotFound.
func (s *Store) GetItem(ctx context.Context, id string) (*media.Item, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM items WHERE id = ?`, id)
	it, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &it, nil
}

// ListItems returns all items ordered by name.
func (s *Store) ListItems(ctx context.Context) ([]media.Item, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+itemColumns+` FROM items ORDER BY name, id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	items := []media.Item{}
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// DeleteItem removes an item and its streams.
func (s *Store) DeleteItem(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// GetMediaStreams returns the streams of q.ItemID, filtered by exact index
// and/or type when set, ordered by index.
func (s *Store) GetMediaStreams(ctx context.Context, q media.StreamQuery) ([]media.MediaStream, error) {
	var (
		where = []string{"item_id = ?"}
		args  = []any{q.ItemID}
	)
	if q.Index != nil {
		where = append(where, "stream_index = ?")
		args = append(args, *q.Index)
	}
	if q.Type != "" {
		where = append(where, "type = ?")
		args = append(args, string(q.Type))
	}

	query := `
	SELECT item_id, stream_index, type, codec, width, height, is_interlaced, color_transfer
	FROM media_streams
	WHERE ` + strings.Join(where, " AND ") + `
	ORDER BY stream_index
	`
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	streams := []media.MediaStream{}
	for rows.Next() {
		var (
			st  media.MediaStream
			typ string
		)
		if err := rows.Scan(&st.ItemID, &st.Index, &typ, &st.Codec, &st.Width, &st.Height, &st.IsInterlaced, &st.ColorTransfer); err != nil {
			return nil, err
		}
		st.Type = media.StreamType(typ)
		streams = append(streams, st)
	}
	return streams, rows.Err()
}
