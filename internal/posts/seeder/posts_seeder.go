package seeder

import (
	"context"
	"fmt"
	"os"

	"github.com/philly/postboard/internal/platform/logger"
	"github.com/philly/postboard/internal/posts/domain"
	"github.com/philly/postboard/internal/posts/ports"
	"gopkg.in/yaml.v3"
)

// Fixture is one demo post as written in the seed file
type Fixture struct {
	Content string `yaml:"content"`
}

type fixtureFile struct {
	Posts []Fixture `yaml:"posts"`
}

// PostsSeeder inserts demo posts from a YAML file into an empty board
type PostsSeeder struct {
	client ports.Client
	logger logger.Logger
	path   string
	table  string
}

// NewPostsSeeder creates a seeder reading fixtures from path
func NewPostsSeeder(client ports.Client, logger logger.Logger, path, table string) *PostsSeeder {
	if table == "" {
		table = ports.DefaultPostsTable
	}
	return &PostsSeeder{
		client: client,
		logger: logger,
		path:   path,
		table:  table,
	}
}

// Name returns the name of this seeder
func (s *PostsSeeder) Name() string {
	return "PostsSeeder"
}

// Seed inserts every fixture in file order. A board that already holds posts
// is left untouched.
func (s *PostsSeeder) Seed(ctx context.Context) error {
	fixtures, err := LoadFixtures(s.path)
	if err != nil {
		return err
	}

	existing, err := s.client.FetchOrdered(ctx, s.table, []string{ports.ColumnID}, ports.ColumnID, ports.Ascending)
	if err != nil {
		return fmt.Errorf("failed to check existing posts: %w", err)
	}
	if len(existing) > 0 {
		s.logger.Info(ctx, "posts already present, skipping fixtures", "count", len(existing))
		return nil
	}

	for i, f := range fixtures {
		content, err := domain.NormalizeContent(f.Content)
		if err != nil {
			return fmt.Errorf("fixture %d: %w", i, err)
		}
		if _, err := s.client.InsertRow(ctx, s.table, ports.NewPostFields(content), ports.PostColumns); err != nil {
			return fmt.Errorf("failed to insert fixture %d: %w", i, err)
		}
	}
	s.logger.Info(ctx, "seeded posts", "count", len(fixtures), "file", s.path)
	return nil
}

// LoadFixtures reads and parses a seed file
func LoadFixtures(path string) ([]Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	return ParseFixtures(data)
}

// ParseFixtures decodes the YAML document {posts: [{content: ...}]}
func ParseFixtures(data []byte) ([]Fixture, error) {
	var file fixtureFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	return file.Posts, nil
}
