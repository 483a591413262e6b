package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrSmartPlaylist is returned when items are added to or removed from a
// rule-based playlist, whose membership is computed, not stored.
var ErrSmartPlaylist = errors.New("smart playlists do not have explicit items")

// ErrManualPlaylist is returned when rules are attached to a playlist whose
// membership is explicit.
var ErrManualPlaylist = errors.New("manual playlists do not have rules")

// ErrNotFound covers lookups of playlists, collections, and tracks that do
// not exist.
var ErrNotFound = errors.New("not found")

// CreatePlaylist makes a new playlist of the given type ("manual",
// "smart", or "auto"). Auto playlists behave like manual ones.
func (d *Database) CreatePlaylist(name, description, playlistType string) (*Playlist, error) {
	switch playlistType {
	case PlaylistManual, PlaylistSmart, PlaylistAuto:
	default:
		return nil, fmt.Errorf("invalid playlist type %q", playlistType)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	ts := now()
	res, err := d.db.Exec(
		`INSERT INTO playlists (name, description, playlist_type, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		name, nullString(description), playlistType, ts, ts)
	if err != nil {
		return nil, fmt.Errorf("failed to create playlist: %w", err)
	}

	id, _ := res.LastInsertId()
	created, _ := time.Parse(time.RFC3339, ts)
	return &Playlist{
		ID:          id,
		Name:        name,
		Description: description,
		Type:        playlistType,
		CreatedAt:   created,
		UpdatedAt:   created,
	}, nil
}

// GetPlaylists lists all playlists with their stored item counts. Smart
// playlist counts reflect stored rules, not evaluated membership.
func (d *Database) GetPlaylists() ([]Playlist, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	rows, err := d.db.Query(
		`SELECT p.id, p.name, p.description, p.playlist_type,
			(SELECT COUNT(*) FROM playlist_items i WHERE i.playlist_id = p.id),
			p.created_at, p.updated_at
		 FROM playlists p
		 ORDER BY p.name COLLATE NOCASE`)
	if err != nil {
		return nil, fmt.Errorf("failed to list playlists: %w", err)
	}
	defer rows.Close()

	var playlists []Playlist
	for rows.Next() {
		p, err := scanPlaylist(rows)
		if err != nil {
			return nil, err
		}
		playlists = append(playlists, *p)
	}
	return playlists, rows.Err()
}

// GetPlaylist returns one playlist or ErrNotFound.
func (d *Database) GetPlaylist(id int64) (*Playlist, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return d.getPlaylist(id)
}

func (d *Database) getPlaylist(id int64) (*Playlist, error) {
	row := d.db.QueryRow(
		`SELECT p.id, p.name, p.description, p.playlist_type,
			(SELECT COUNT(*) FROM playlist_items i WHERE i.playlist_id = p.id),
			p.created_at, p.updated_at
		 FROM playlists p WHERE p.id = ?`, id)
	p, err := scanPlaylist(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("playlist %d: %w", id, ErrNotFound)
	}
	return p, err
}

// UpdatePlaylist renames a playlist and replaces its description.
func (d *Database) UpdatePlaylist(id int64, name, description string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	res, err := d.db.Exec(
		`UPDATE playlists SET name = ?, description = ?, updated_at = ? WHERE id = ?`,
		name, nullString(description), now(), id)
	if err != nil {
		return fmt.Errorf("failed to update playlist: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("playlist %d: %w", id, ErrNotFound)
	}
	return nil
}

// DeletePlaylist removes the playlist; items and rules cascade.
func (d *Database) DeletePlaylist(id int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	res, err := d.db.Exec(`DELETE FROM playlists WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete playlist: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("playlist %d: %w", id, ErrNotFound)
	}
	return nil
}

// AddPlaylistItem appends a media record to a manual playlist.
func (d *Database) AddPlaylistItem(playlistID, mediaID int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	p, err := d.getPlaylist(playlistID)
	if err != nil {
		return err
	}
	if p.Type == PlaylistSmart {
		return ErrSmartPlaylist
	}

	_, err = d.db.Exec(
		`INSERT INTO playlist_items (playlist_id, media_id, position, added_at)
		 VALUES (?, ?,
			(SELECT COALESCE(MAX(position), 0) + 1 FROM playlist_items WHERE playlist_id = ?),
			?)
		 ON CONFLICT(playlist_id, media_id) DO NOTHING`,
		playlistID, mediaID, playlistID, now())
	if err != nil {
		return fmt.Errorf("failed to add playlist item: %w", err)
	}
	return nil
}

// RemovePlaylistItem drops a media record from a manual playlist.
func (d *Database) RemovePlaylistItem(playlistID, mediaID int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	p, err := d.getPlaylist(playlistID)
	if err != nil {
		return err
	}
	if p.Type == PlaylistSmart {
		return ErrSmartPlaylist
	}

	_, err = d.db.Exec(
		`DELETE FROM playlist_items WHERE playlist_id = ? AND media_id = ?`,
		playlistID, mediaID)
	if err != nil {
		return fmt.Errorf("failed to remove playlist item: %w", err)
	}
	return nil
}

// ReorderPlaylist rewrites the positions of a manual playlist to match the
// given media ID order. IDs not in the playlist are ignored.
func (d *Database) ReorderPlaylist(playlistID int64, mediaIDs []int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	p, err := d.getPlaylist(playlistID)
	if err != nil {
		return err
	}
	if p.Type == PlaylistSmart {
		return ErrSmartPlaylist
	}

	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin reorder: %w", err)
	}
	defer tx.Rollback()

	for i, mediaID := range mediaIDs {
		if _, err := tx.Exec(
			`UPDATE playlist_items SET position = ? WHERE playlist_id = ? AND media_id = ?`,
			i+1, playlistID, mediaID); err != nil {
			return fmt.Errorf("failed to reorder playlist: %w", err)
		}
	}
	if _, err := tx.Exec(
		`UPDATE playlists SET updated_at = ? WHERE id = ?`, now(), playlistID); err != nil {
		return fmt.Errorf("failed to touch playlist: %w", err)
	}
	return tx.Commit()
}

// GetPlaylistMedia resolves a playlist to its media records. Manual
// playlists return stored items in position order; smart playlists compile
// their rules and return matches in title order.
func (d *Database) GetPlaylistMedia(playlistID int64) ([]MediaRecord, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	p, err := d.getPlaylist(playlistID)
	if err != nil {
		return nil, err
	}

	if p.Type == PlaylistSmart {
		rules, err := d.getPlaylistRules(playlistID)
		if err != nil {
			return nil, err
		}
		query, args := compileRuleQuery(rules)
		return d.queryMedia(query, args...)
	}

	return d.queryMedia(
		`SELECT `+prefixedMediaColumns("m")+`
		 FROM media_files m
		 JOIN playlist_items i ON i.media_id = m.id
		 WHERE i.playlist_id = ? AND m.is_deleted = 0
		 ORDER BY i.position`, playlistID)
}

// AddPlaylistRule stores a rule on a smart playlist. The rule is stored as
// entered; one that does not compile simply matches nothing.
func (d *Database) AddPlaylistRule(playlistID int64, field, operator, value string) (*PlaylistRule, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	p, err := d.getPlaylist(playlistID)
	if err != nil {
		return nil, err
	}
	if p.Type != PlaylistSmart {
		return nil, fmt.Errorf("playlist %d: %w", playlistID, ErrManualPlaylist)
	}

	res, err := d.db.Exec(
		`INSERT INTO playlist_rules (playlist_id, field, operator, value)
		 VALUES (?, ?, ?, ?)`,
		playlistID, field, operator, value)
	if err != nil {
		return nil, fmt.Errorf("failed to add playlist rule: %w", err)
	}
	id, _ := res.LastInsertId()
	return &PlaylistRule{ID: id, PlaylistID: playlistID, Field: field, Operator: operator, Value: value}, nil
}

// GetPlaylistRules lists the stored rules of a playlist.
func (d *Database) GetPlaylistRules(playlistID int64) ([]PlaylistRule, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return d.getPlaylistRules(playlistID)
}

func (d *Database) getPlaylistRules(playlistID int64) ([]PlaylistRule, error) {
	rows, err := d.db.Query(
		`SELECT id, playlist_id, field, operator, value
		 FROM playlist_rules WHERE playlist_id = ? ORDER BY id`, playlistID)
	if err != nil {
		return nil, fmt.Errorf("failed to list playlist rules: %w", err)
	}
	defer rows.Close()

	var rules []PlaylistRule
	for rows.Next() {
		var r PlaylistRule
		if err := rows.Scan(&r.ID, &r.PlaylistID, &r.Field, &r.Operator, &r.Value); err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}
	return rules, rows.Err()
}

// DeletePlaylistRule removes one stored rule.
func (d *Database) DeletePlaylistRule(ruleID int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	res, err := d.db.Exec(`DELETE FROM playlist_rules WHERE id = ?`, ruleID)
	if err != nil {
		return fmt.Errorf("failed to delete playlist rule: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("rule %d: %w", ruleID, ErrNotFound)
	}
	return nil
}

func scanPlaylist(row rowScanner) (*Playlist, error) {
	var (
		p           Playlist
		description sql.NullString
		createdAt   string
		updatedAt   string
	)
	err := row.Scan(&p.ID, &p.Name, &description, &p.Type, &p.ItemCount,
		&createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	p.Description = description.String
	if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
		p.CreatedAt = t
	}
	if t, err := time.Parse(time.RFC3339, updatedAt); err == nil {
		p.UpdatedAt = t
	}
	return &p, nil
}
