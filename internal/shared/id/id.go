// Package id generates the identifiers attached to a scan run.
//
// IDs are prefixed ULIDs ("run_01J..."), so they sort by creation time and
// read clearly in logs and reports.
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

// RunID identifies one start/stop cycle of the pipeline
type RunID string

// RunPrefix is prepended to every RunID
const RunPrefix = "run"

// Generator generates ULIDs with optional prefixes
type Generator struct {
	entropy   io.Reader
	entropyMu sync.Mutex // Protects entropy reader
	now       func() time.Time
}

var (
	defaultGenerator *Generator
	once             sync.Once
)

// Default returns the singleton generator instance
func Default() *Generator {
	once.Do(func() {
		defaultGenerator = NewGenerator()
	})
	return defaultGenerator
}

// NewGenerator creates a new ULID generator
func NewGenerator() *Generator {
	return &Generator{
		entropy: ulid.Monotonic(rand.Reader, 0),
		now:     time.Now,
	}
}

// NewGeneratorWithEntropy creates a generator with custom entropy and clock.
// Useful for testing with deterministic output.
func NewGeneratorWithEntropy(entropy io.Reader, now func() time.Time) *Generator {
	if now == nil {
		now = time.Now
	}
	return &Generator{
		entropy: entropy,
		now:     now,
	}
}

// Generate creates a new ULID
func (g *Generator) Generate() ulid.ULID {
	g.entropyMu.Lock()
	defer g.entropyMu.Unlock()

	return ulid.MustNew(ulid.Timestamp(g.now()), g.entropy)
}

// GenerateWithPrefix creates a prefixed ULID string
func (g *Generator) GenerateWithPrefix(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, g.Generate().String())
}

// NewRunID generates a new run ID from the default generator
func NewRunID() RunID {
	return RunID(Default().GenerateWithPrefix(RunPrefix))
}

// NewRunID generates a new run ID from g
func (g *Generator) NewRunID() RunID {
	return RunID(g.GenerateWithPrefix(RunPrefix))
}

func (id RunID) String() string { return string(id) }

// Timestamp returns the creation time encoded in the run ID
func (id RunID) Timestamp() (time.Time, error) {
	raw, ok := strings.CutPrefix(string(id), RunPrefix+"_")
	if !ok {
		return time.Time{}, fmt.Errorf("run id %q: missing %s_ prefix", id, RunPrefix)
	}
	parsed, err := ulid.Parse(raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("run id %q: %w", id, err)
	}
	return ulid.Time(parsed.Time()), nil
}

// IsValid checks if an ID string is a valid prefixed run ID
func IsValid(id string) bool {
	_, err := RunID(id).Timestamp()
	return err == nil
}
