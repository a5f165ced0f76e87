package domain_test

import (
	"testing"
	"time"

	"github.com/philly/postboard/internal/posts/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeContent(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr error
	}{
		{name: "plain", in: "hello", want: "hello"},
		{name: "trims", in: "  hello world \n", want: "hello world"},
		{name: "empty", in: "", wantErr: domain.ErrEmptyContent},
		{name: "spaces only", in: "   ", wantErr: domain.ErrEmptyContent},
		{name: "tabs and newlines", in: "\t\n", wantErr: domain.ErrEmptyContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := domain.NormalizeContent(tt.in)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSortNewestFirst(t *testing.T) {
	t0 := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	posts := []domain.Post{
		{ID: 1, CreatedAt: t0},
		{ID: 3, CreatedAt: t0.Add(2 * time.Minute)},
		{ID: 2, CreatedAt: t0.Add(time.Minute)},
		{ID: 4, CreatedAt: t0.Add(2 * time.Minute)}, // same instant as 3, higher id wins
	}

	domain.SortNewestFirst(posts)

	ids := make([]int64, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}
	assert.Equal(t, []int64{4, 3, 2, 1}, ids)
}

func TestDedupe(t *testing.T) {
	posts := []domain.Post{{ID: 2, Content: "first"}, {ID: 1}, {ID: 2, Content: "second"}}

	got := domain.Dedupe(posts)

	require.Len(t, got, 2)
	assert.Equal(t, "first", got[0].Content)
	assert.Len(t, posts, 3)
}
