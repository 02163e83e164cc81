package procs

import "context"

// StaticSource walks a fixed list of records.
type StaticSource struct {
	records []*Record
}

// NewStaticSource creates a source over records, walked in slice order.
func NewStaticSource(records ...*Record) *StaticSource {
	return &StaticSource{records: records}
}

// Walk implements Source.
func (s *StaticSource) Walk(ctx context.Context, fn func(*Record) bool) error {
	for _, r := range s.records {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !fn(r) {
			return nil
		}
	}
	return nil
}

// Len returns the number of records.
func (s *StaticSource) Len() int {
	return len(s.records)
}
