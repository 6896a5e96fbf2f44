// Package id generates sortable identifiers for form submissions.
//
// Submission ids are prefixed ULIDs ("sub_01J..."): they sort by creation
// time, so logs and stored submissions order naturally, and the prefix
// keeps them recognisable next to request ids.
package id

import (
	"crypto/rand"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// SubmissionID identifies one processed form submission.
type SubmissionID string

// SubmissionPrefix prefixes every SubmissionID.
const SubmissionPrefix = "sub"

// Generator generates ULIDs with optional prefixes. Ids generated within
// the same millisecond increase monotonically.
type Generator struct {
	mu      sync.Mutex
	entropy io.Reader
	now     func() time.Time
}

var (
	defaultGenerator *Generator
	once             sync.Once
)

// Default returns the shared generator.
func Default() *Generator {
	once.Do(func() {
		defaultGenerator = NewGenerator()
	})
	return defaultGenerator
}

// NewGenerator creates a generator seeded from crypto/rand.
func NewGenerator() *Generator {
	return NewGeneratorWithEntropy(rand.Reader)
}

// NewGeneratorWithEntropy creates a generator with a custom entropy source.
func NewGeneratorWithEntropy(entropy io.Reader) *Generator {
	return &Generator{
		entropy: ulid.Monotonic(entropy, 0),
		now:     time.Now,
	}
}

// Generate creates a new ULID.
func (g *Generator) Generate() ulid.ULID {
	g.mu.Lock()
	defer g.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(g.now()), g.entropy)
}

// GenerateWithPrefix creates a prefixed ULID string.
func (g *Generator) GenerateWithPrefix(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, g.Generate())
}

// NewSubmissionID generates a new submission id.
func NewSubmissionID() SubmissionID {
	return SubmissionID(Default().GenerateWithPrefix(SubmissionPrefix))
}

func (id SubmissionID) String() string { return string(id) }

// Time returns the creation time encoded in the id.
func (id SubmissionID) Time() (time.Time, error) {
	_, u, err := Split(string(id))
	if err != nil {
		return time.Time{}, err
	}
	return ulid.Time(u.Time()), nil
}

// Split separates a prefixed id into its prefix and ULID.
func Split(s string) (string, ulid.ULID, error) {
	prefix, raw, ok := strings.Cut(s, "_")
	if !ok {
		return "", ulid.ULID{}, fmt.Errorf("id %q has no prefix", s)
	}
	u, err := ulid.Parse(raw)
	if err != nil {
		return "", ulid.ULID{}, fmt.Errorf("id %q: %w", s, err)
	}
	return prefix, u, nil
}

// IsValid checks if s is a bare ULID.
func IsValid(s string) bool {
	_, err := ulid.Parse(s)
	return err == nil
}
