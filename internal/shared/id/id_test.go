package id

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestGenerate(t *testing.T) {
	gen := NewGenerator()

	id1 := gen.Generate()
	id2 := gen.Generate()

	if id1.String() == id2.String() {
		t.Error("Generated IDs should be unique")
	}
}

func TestNewRunIDFormat(t *testing.T) {
	id := NewRunID()

	if !strings.HasPrefix(id.String(), RunPrefix+"_") {
		t.Errorf("ID should start with '%s_', got: %s", RunPrefix, id)
	}

	parts := strings.Split(id.String(), "_")
	if len(parts) != 2 {
		t.Fatalf("Prefixed ID should have format 'prefix_ulid', got: %s", id)
	}
	if len(parts[1]) != 26 {
		t.Errorf("ULID should be 26 characters, got %d", len(parts[1]))
	}
	if !IsValid(id.String()) {
		t.Errorf("run id should be valid: %s", id)
	}
}

func TestRunIDTimestamp(t *testing.T) {
	at := time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC)
	gen := NewGeneratorWithEntropy(bytes.NewReader(make([]byte, 64)), func() time.Time { return at })

	id := gen.NewRunID()
	ts, err := id.Timestamp()
	if err != nil {
		t.Fatalf("Timestamp failed: %v", err)
	}
	if !ts.Equal(at) {
		t.Errorf("Expected %v, got %v", at, ts)
	}
}

func TestIsValidRejectsMalformed(t *testing.T) {
	tests := []string{
		"",
		"run_",
		"run_not-a-ulid",
		"01ARZ3NDEKTSV4RRFFQ69G5FAV",
		"app_01ARZ3NDEKTSV4RRFFQ69G5FAV",
	}

	for _, tt := range tests {
		if IsValid(tt) {
			t.Errorf("expected %q to be invalid", tt)
		}
	}
}

func TestConcurrentGeneration(t *testing.T) {
	gen := NewGenerator()

	const workers = 8
	const perWorker = 100

	var mu sync.Mutex
	seen := make(map[string]bool, workers*perWorker)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				id := gen.NewRunID().String()
				mu.Lock()
				seen[id] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if len(seen) != workers*perWorker {
		t.Errorf("Expected %d unique IDs, got %d", workers*perWorker, len(seen))
	}
}
