package ports

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/philly/postboard/internal/posts/domain"
)

// DefaultPostsTable is the table holding posts on the backend.
const DefaultPostsTable = "posts"

// Column names of the posts table
const (
	ColumnID        = "id"
	ColumnContent   = "content"
	ColumnCreatedAt = "created_at"
)

// PostColumns is the projection read and returned for every post.
var PostColumns = []string{ColumnID, ColumnContent, ColumnCreatedAt}

// ErrMalformedRow is returned when a row cannot be decoded into a Post.
var ErrMalformedRow = errors.New("malformed post row")

type postRecord struct {
	ID        int64     `mapstructure:"id"`
	Content   string    `mapstructure:"content"`
	CreatedAt time.Time `mapstructure:"created_at"`
}

// DecodePost converts a backend row into a Post. It accepts native driver
// values (int64, time.Time) as well as the JSON shapes delivered by push
// payloads (float64 ids, RFC 3339 timestamps).
func DecodePost(row Row) (domain.Post, error) {
	var rec postRecord
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeHookFunc(time.RFC3339Nano),
		WeaklyTypedInput: true,
		Result:           &rec,
	})
	if err != nil {
		return domain.Post{}, fmt.Errorf("DecodePost: build decoder: %w", err)
	}
	if err := decoder.Decode(map[string]any(row)); err != nil {
		return domain.Post{}, fmt.Errorf("%w: %v", ErrMalformedRow, err)
	}
	if rec.ID == 0 || rec.CreatedAt.IsZero() {
		return domain.Post{}, fmt.Errorf("%w: missing id or created_at", ErrMalformedRow)
	}
	return domain.Post(rec), nil
}

// DecodePosts decodes every row, stopping at the first malformed one.
func DecodePosts(rows []Row) ([]domain.Post, error) {
	posts := make([]domain.Post, 0, len(rows))
	for i, row := range rows {
		post, err := DecodePost(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		posts = append(posts, post)
	}
	return posts, nil
}

// NewPostFields is the insert payload for a post with the given content.
func NewPostFields(content string) map[string]any {
	return map[string]any{ColumnContent: content}
}
