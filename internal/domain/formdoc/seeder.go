package formdoc

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charlievieth/fastwalk"
	"go.uber.org/zap"
)

// DefaultPattern matches the document files the seeder loads.
const DefaultPattern = "**/*.{yaml,yml,json}"

// SeedResult counts the documents of one seeding run.
type SeedResult struct {
	Loaded int
	Failed int
	// Errors maps a failed file, relative to the directory, to its error.
	Errors map[string]error
}

// Seeder loads form documents from a directory into a library
type Seeder struct {
	library *Library
	dir     string
	pattern string
	logger  *zap.Logger
}

// NewSeeder creates a seeder for the files of dir matching pattern, a
// doublestar pattern relative to dir.
func NewSeeder(library *Library, dir, pattern string, logger *zap.Logger) *Seeder {
	if pattern == "" {
		pattern = DefaultPattern
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Seeder{library: library, dir: dir, pattern: pattern, logger: logger}
}

// Seed loads every matching document. A missing directory is not an error;
// a document that fails to load is counted and logged without stopping the
// run.
func (s *Seeder) Seed(ctx context.Context) (SeedResult, error) {
	result := SeedResult{Errors: make(map[string]error)}
	if !doublestar.ValidatePattern(s.pattern) {
		return result, fmt.Errorf("invalid pattern %q", s.pattern)
	}

	s.logger.Info("Seeding forms", zap.String("dir", s.dir), zap.String("pattern", s.pattern))
	if _, err := os.Stat(s.dir); errors.Is(err, os.ErrNotExist) {
		s.logger.Warn("Forms directory not found", zap.String("dir", s.dir))
		return result, nil
	}

	files, err := s.find(ctx)
	if err != nil {
		return result, err
	}

	for _, rel := range files {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if err := s.load(rel); err != nil {
			s.logger.Warn("Failed to load form", zap.String("file", rel), zap.Error(err))
			result.Errors[rel] = err
			result.Failed++
			continue
		}
		s.logger.Debug("Loaded form", zap.String("file", rel))
		result.Loaded++
	}

	s.logger.Info("Seeding complete", zap.Int("loaded", result.Loaded), zap.Int("failed", result.Failed))
	return result, nil
}

// find walks the directory concurrently and returns the matching files in
// lexical order, so later files win name collisions deterministically.
func (s *Seeder) find(ctx context.Context) ([]string, error) {
	var (
		mu    sync.Mutex
		files []string
	)
	conf := fastwalk.Config{Follow: false}
	err := fastwalk.Walk(&conf, s.dir, func(p string, d os.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err != nil || d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(s.dir, p)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if ok, _ := doublestar.Match(s.pattern, rel); !ok {
			return nil
		}
		mu.Lock()
		files = append(files, rel)
		mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", s.dir, err)
	}
	sort.Strings(files)
	return files, nil
}

func (s *Seeder) load(rel string) error {
	data, err := os.ReadFile(filepath.Join(s.dir, filepath.FromSlash(rel)))
	if err != nil {
		return err
	}
	_, err = s.library.AddBytes(data, rel)
	return err
}
