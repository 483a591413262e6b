package database

import (
	"strings"
)

// FilterCriteria is the ad-hoc browse filter. Nil or empty fields are
// ignored; everything set is ANDed together. Slices within one field are
// ORed (any matching codec, kind, or resolution bucket).
type FilterCriteria struct {
	Kinds         []string `json:"media_types,omitempty"`
	MinYear       *int     `json:"min_year,omitempty"`
	MaxYear       *int     `json:"max_year,omitempty"`
	MinDuration   *int64   `json:"min_duration,omitempty"`
	MaxDuration   *int64   `json:"max_duration,omitempty"`
	Codecs        []string `json:"codecs,omitempty"`
	Resolutions   []string `json:"resolutions,omitempty"`
	WatchedOnly   bool     `json:"watched_only,omitempty"`
	UnwatchedOnly bool     `json:"unwatched_only,omitempty"`
	Limit         int      `json:"limit,omitempty"`
	Offset        int      `json:"offset,omitempty"`
}

// resolutionPatterns maps each named bucket to the LIKE patterns it covers.
// An unknown bucket contributes a matches-nothing clause instead of being
// dropped, so a typo narrows results rather than widening them.
var resolutionPatterns = map[string][]string{
	"4k":    {"%2160%", "%4K%"},
	"1080p": {"%1080%"},
	"720p":  {"%720%"},
	"sd":    {"%480%", "%576%"},
}

// FilterMedia runs the compiled criteria, newest first.
func (d *Database) FilterMedia(c FilterCriteria) ([]MediaRecord, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	conditions := []string{"is_deleted = 0"}
	var args []interface{}

	if len(c.Kinds) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(c.Kinds)), ", ")
		conditions = append(conditions, "media_type IN ("+placeholders+")")
		for _, k := range c.Kinds {
			args = append(args, k)
		}
	}
	if c.MinYear != nil {
		conditions = append(conditions, "year >= ?")
		args = append(args, *c.MinYear)
	}
	if c.MaxYear != nil {
		conditions = append(conditions, "year <= ?")
		args = append(args, *c.MaxYear)
	}
	if c.MinDuration != nil {
		conditions = append(conditions, "duration >= ?")
		args = append(args, *c.MinDuration)
	}
	if c.MaxDuration != nil {
		conditions = append(conditions, "duration <= ?")
		args = append(args, *c.MaxDuration)
	}
	if len(c.Codecs) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(c.Codecs)), ", ")
		conditions = append(conditions, "codec IN ("+placeholders+")")
		for _, codec := range c.Codecs {
			args = append(args, codec)
		}
	}
	if len(c.Resolutions) > 0 {
		var res []string
		for _, bucket := range c.Resolutions {
			patterns, ok := resolutionPatterns[strings.ToLower(bucket)]
			if !ok {
				res = append(res, "1 = 0")
				continue
			}
			for _, p := range patterns {
				res = append(res, "resolution LIKE ?")
				args = append(args, p)
			}
		}
		conditions = append(conditions, "("+strings.Join(res, " OR ")+")")
	}
	if c.WatchedOnly {
		conditions = append(conditions,
			"id IN (SELECT media_id FROM playback_state WHERE watched = 1)")
	}
	if c.UnwatchedOnly {
		conditions = append(conditions,
			"id NOT IN (SELECT media_id FROM playback_state WHERE watched = 1)")
	}

	query := `SELECT ` + mediaColumns + ` FROM media_files WHERE ` +
		strings.Join(conditions, " AND ") +
		` ORDER BY indexed_at DESC, id DESC`
	if c.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, c.Limit)
		if c.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, c.Offset)
		}
	}

	return d.queryMedia(query, args...)
}
