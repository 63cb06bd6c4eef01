package store

import (
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleRun(id string, created time.Time) *RunRecord {
	return &RunRecord{
		ID:            id,
		Filename:      "orders.csv",
		CreatedAt:     created,
		RowCount:      120,
		CustomerCount: 30,
		ClusterCount:  4,
		Mapping: map[string]string{
			"client_identifier": "CustomerID",
			"sale_date":         "TransactionDate",
			"gross_amount":      "TransactionAmount",
		},
		Warnings:   []string{"Unparseable TransactionAmount values detected: 2 rows (1.7%)."},
		ResultPath: "/tmp/exports/result.csv",
	}
}

func TestSaveRunRoundTrip(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	created := time.Date(2024, 3, 10, 9, 30, 0, 0, time.UTC)
	run := sampleRun("run-1", created)
	segments := []SegmentRecord{
		{
			CustomerID:               "C001",
			RecencyDays:              14,
			Frequency:                6,
			Monetary:                 980.5,
			TenureYears:              1.2,
			AverageOrderValue:        163.42,
			PurchaseFrequencyPerYear: 5,
			LTV:                      980.52,
			Cluster:                  0,
			Segment:                  "Champions",
			Churn:                    "No",
		},
		{
			CustomerID: "C002",
			Frequency:  1,
			Cluster:    2,
			Segment:    "Hibernating",
			Churn:      "Yes",
		},
	}

	if err := s.SaveRun(run, segments); err != nil {
		t.Fatalf("SaveRun() error: %v", err)
	}

	got, err := s.GetRun("run-1")
	if err != nil {
		t.Fatalf("GetRun() error: %v", err)
	}
	if got.Filename != "orders.csv" || got.CustomerCount != 30 {
		t.Errorf("GetRun() = %+v", got)
	}
	if got.Mapping["gross_amount"] != "TransactionAmount" {
		t.Errorf("mapping not preserved: %v", got.Mapping)
	}
	if len(got.Warnings) != 1 {
		t.Errorf("warnings not preserved: %v", got.Warnings)
	}

	segs, err := s.GetSegments("run-1")
	if err != nil {
		t.Fatalf("GetSegments() error: %v", err)
	}
	if len(segs) != 2 {
		t.Fatalf("GetSegments() returned %d rows, want 2", len(segs))
	}
	if segs[0].CustomerID != "C001" || segs[0].Segment != "Champions" {
		t.Errorf("first segment = %+v", segs[0])
	}
	if segs[1].Churn != "Yes" {
		t.Errorf("second segment churn = %q, want Yes", segs[1].Churn)
	}
}

func TestListRunsOrdering(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"run-a", "run-b", "run-c"} {
		run := sampleRun(id, base.Add(time.Duration(i)*time.Hour))
		if err := s.SaveRun(run, nil); err != nil {
			t.Fatalf("SaveRun(%s) error: %v", id, err)
		}
	}

	runs, err := s.ListRuns()
	if err != nil {
		t.Fatalf("ListRuns() error: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("ListRuns() returned %d runs, want 3", len(runs))
	}
	if runs[0].ID != "run-c" || runs[2].ID != "run-a" {
		t.Errorf("runs not ordered newest-first: %s, %s, %s", runs[0].ID, runs[1].ID, runs[2].ID)
	}

	count, err := s.CountRuns()
	if err != nil {
		t.Fatalf("CountRuns() error: %v", err)
	}
	if count != 3 {
		t.Errorf("CountRuns() = %d, want 3", count)
	}
}

func TestLastRunTimeEmpty(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	last, err := s.LastRunTime()
	if err != nil {
		t.Fatalf("LastRunTime() error: %v", err)
	}
	if !last.IsZero() {
		t.Errorf("LastRunTime() on empty store = %v, want zero", last)
	}
}

func TestSaveRunDuplicateID(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	run := sampleRun("dup", time.Now().UTC())
	if err := s.SaveRun(run, nil); err != nil {
		t.Fatalf("first SaveRun() error: %v", err)
	}
	if err := s.SaveRun(run, nil); err == nil {
		t.Error("duplicate SaveRun() succeeded, want error")
	}
}
