// Package storage persists scan run history in a local bbolt database.
package storage

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"

	"github.com/yairfalse/kartta/types"
)

var bucketRuns = []byte("runs")

// RunRecord is the durable summary of one scan run. Individual
// resources are not persisted, only per-service tallies.
type RunRecord struct {
	StartedAt        time.Time        `json:"started_at"`
	Duration         time.Duration    `json:"duration"`
	TotalResources   int              `json:"total_resources"`
	TotalMonthlyCost float64          `json:"total_monthly_cost"`
	Services         []ServiceSummary `json:"services"`
}

// ServiceSummary is one service's slice of a run.
type ServiceSummary struct {
	Service       string  `json:"service"`
	Count         int     `json:"count"`
	MonthlyCost   float64 `json:"monthly_cost"`
	FailedRegions int     `json:"failed_regions,omitempty"`
	Failed        bool    `json:"failed,omitempty"`
}

// History is an append-only log of scan runs backed by bbolt.
type History struct {
	db *bbolt.DB
}

// Open opens (or creates) the history database at path. Parent
// directories are created as needed.
func Open(path string) (*History, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}

	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketRuns)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init history bucket: %w", err)
	}

	return &History{db: db}, nil
}

// Close releases the database file.
func (h *History) Close() error {
	return h.db.Close()
}

// RecordRun appends a summary of the report, keyed by its start time so
// records iterate in chronological order.
func (h *History) RecordRun(report types.ScanReport) error {
	record := summarize(report)

	value, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal run record: %w", err)
	}

	err = h.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketRuns)
		return bucket.Put(runKey(record.StartedAt), value)
	})
	if err != nil {
		return fmt.Errorf("store run record: %w", err)
	}
	return nil
}

// ListRuns returns up to limit most recent runs, newest first. A
// non-positive limit returns everything.
func (h *History) ListRuns(limit int) ([]RunRecord, error) {
	var records []RunRecord

	err := h.db.View(func(tx *bbolt.Tx) error {
		cursor := tx.Bucket(bucketRuns).Cursor()
		for k, v := cursor.Last(); k != nil; k, v = cursor.Prev() {
			if limit > 0 && len(records) >= limit {
				break
			}
			var record RunRecord
			if err := json.Unmarshal(v, &record); err != nil {
				return fmt.Errorf("decode run record: %w", err)
			}
			records = append(records, record)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

func summarize(report types.ScanReport) RunRecord {
	record := RunRecord{
		StartedAt:        report.StartedAt,
		Duration:         report.Duration,
		TotalResources:   report.TotalResources(),
		TotalMonthlyCost: report.TotalMonthlyCost(),
	}
	for _, svc := range report.Services {
		record.Services = append(record.Services, ServiceSummary{
			Service:       svc.Service,
			Count:         svc.Count,
			MonthlyCost:   svc.Cost,
			FailedRegions: len(svc.FailedRegions()),
			Failed:        svc.Failed(),
		})
	}
	return record
}

// runKey orders records by start time; nanosecond keys keep back-to-back
// runs distinct.
func runKey(startedAt time.Time) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, uint64(startedAt.UnixNano()))
	return key
}
