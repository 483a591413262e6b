package database

import (
	"database/sql"
	"fmt"
	"time"
)

// CreateCollection makes a new named collection. Names are unique.
func (d *Database) CreateCollection(name, description string) (*Collection, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	ts := now()
	res, err := d.db.Exec(
		`INSERT INTO collections (name, description, created_at) VALUES (?, ?, ?)`,
		name, nullString(description), ts)
	if err != nil {
		return nil, fmt.Errorf("failed to create collection: %w", err)
	}

	id, _ := res.LastInsertId()
	created, _ := time.Parse(time.RFC3339, ts)
	return &Collection{ID: id, Name: name, Description: description, CreatedAt: created}, nil
}

// GetCollections lists all collections with item counts, by name.
func (d *Database) GetCollections() ([]Collection, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	rows, err := d.db.Query(
		`SELECT c.id, c.name, c.description,
			(SELECT COUNT(*) FROM collection_items i WHERE i.collection_id = c.id),
			c.created_at
		 FROM collections c
		 ORDER BY c.name COLLATE NOCASE`)
	if err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}
	defer rows.Close()

	var collections []Collection
	for rows.Next() {
		c, err := scanCollection(rows)
		if err != nil {
			return nil, err
		}
		collections = append(collections, *c)
	}
	return collections, rows.Err()
}

// GetCollection returns one collection or ErrNotFound.
func (d *Database) GetCollection(id int64) (*Collection, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	row := d.db.QueryRow(
		`SELECT c.id, c.name, c.description,
			(SELECT COUNT(*) FROM collection_items i WHERE i.collection_id = c.id),
			c.created_at
		 FROM collections c WHERE c.id = ?`, id)
	c, err := scanCollection(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("collection %d: %w", id, ErrNotFound)
	}
	return c, err
}

// DeleteCollection removes the collection; membership rows cascade.
func (d *Database) DeleteCollection(id int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	res, err := d.db.Exec(`DELETE FROM collections WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete collection: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("collection %d: %w", id, ErrNotFound)
	}
	return nil
}

// AddToCollection adds a media record; already-present records are a no-op.
func (d *Database) AddToCollection(collectionID, mediaID int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	_, err := d.db.Exec(
		`INSERT INTO collection_items (collection_id, media_id, added_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT(collection_id, media_id) DO NOTHING`,
		collectionID, mediaID, now())
	if err != nil {
		return fmt.Errorf("failed to add to collection: %w", err)
	}
	return nil
}

// RemoveFromCollection drops a media record from the collection.
func (d *Database) RemoveFromCollection(collectionID, mediaID int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	_, err := d.db.Exec(
		`DELETE FROM collection_items WHERE collection_id = ? AND media_id = ?`,
		collectionID, mediaID)
	if err != nil {
		return fmt.Errorf("failed to remove from collection: %w", err)
	}
	return nil
}

// GetCollectionMedia lists a collection's live records in the order they
// were added.
func (d *Database) GetCollectionMedia(collectionID int64) ([]MediaRecord, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return d.queryMedia(
		`SELECT `+prefixedMediaColumns("m")+`
		 FROM media_files m
		 JOIN collection_items i ON i.media_id = m.id
		 WHERE i.collection_id = ? AND m.is_deleted = 0
		 ORDER BY i.added_at, i.id`, collectionID)
}

func scanCollection(row rowScanner) (*Collection, error) {
	var (
		c           Collection
		description sql.NullString
		createdAt   string
	)
	if err := row.Scan(&c.ID, &c.Name, &description, &c.ItemCount, &createdAt); err != nil {
		return nil, err
	}
	c.Description = description.String
	if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
		c.CreatedAt = t
	}
	return &c, nil
}
