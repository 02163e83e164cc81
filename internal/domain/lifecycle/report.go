package lifecycle

import (
	"fmt"
	"os"
	"time"

	"github.com/bytedance/sonic"

	"github.com/GriffinCanCode/procwatch/internal/shared/utils"
)

// Report is the final aggregate emitted by Stop.
type Report struct {
	RunID        string           `json:"run_id"`
	TargetUID    uint32           `json:"target_uid"`
	Produced     int64            `json:"produced"`
	Consumed     int64            `json:"consumed"`
	TotalElapsed time.Duration    `json:"total_elapsed_ns"`
	Elapsed      string           `json:"total_elapsed"`
	PerConsumer  map[string]int64 `json:"per_consumer"`
	StartedAt    time.Time        `json:"started_at"`
	StoppedAt    time.Time        `json:"stopped_at"`
	State        string           `json:"state"`
	ScanError    string           `json:"scan_error,omitempty"`
}

// TotalElapsedHMS formats TotalElapsed as HH:MM:SS.
func (r *Report) TotalElapsedHMS() string {
	return utils.FormatHMS(r.TotalElapsed)
}

// Summary is the final log line.
func (r *Report) Summary() string {
	return fmt.Sprintf("The total elapsed time of all processes for UID %d is %s", r.TargetUID, r.TotalElapsedHMS())
}

// WriteJSON writes the report to path as indented JSON.
func (r *Report) WriteJSON(path string) error {
	data, err := sonic.ConfigStd.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
