package domain

import (
	"errors"
	"sort"
	"strings"
	"time"
)

// Post is a single message on the board. ID and CreatedAt are assigned by the
// backend service when the row is inserted; the board never edits a post.
type Post struct {
	ID        int64
	Content   string
	CreatedAt time.Time
}

// ErrEmptyContent is returned when content is empty or whitespace only.
var ErrEmptyContent = errors.New("content is required")

// NormalizeContent trims surrounding whitespace and rejects empty input.
func NormalizeContent(content string) (string, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return "", ErrEmptyContent
	}
	return trimmed, nil
}

// NewerThan reports whether p sorts before other in a newest-first feed.
// Ties on CreatedAt fall back to the higher ID, which the backend hands out
// monotonically.
func (p Post) NewerThan(other Post) bool {
	if !p.CreatedAt.Equal(other.CreatedAt) {
		return p.CreatedAt.After(other.CreatedAt)
	}
	return p.ID > other.ID
}

// SortNewestFirst orders posts by CreatedAt descending, in place.
func SortNewestFirst(posts []Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].NewerThan(posts[j])
	})
}

// Dedupe drops every post whose ID already appeared earlier in the slice.
// The input is not modified.
func Dedupe(posts []Post) []Post {
	seen := make(map[int64]struct{}, len(posts))
	out := make([]Post, 0, len(posts))
	for _, p := range posts {
		if _, ok := seen[p.ID]; ok {
			continue
		}
		seen[p.ID] = struct{}{}
		out = append(out, p)
	}
	return out
}
