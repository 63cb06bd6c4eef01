package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// RunRecord 一次分析运行的落库记录
type RunRecord struct {
	ID            string            `json:"id"`
	Filename      string            `json:"filename"`
	CreatedAt     time.Time         `json:"createdAt"`
	RowCount      int               `json:"rowCount"`
	CustomerCount int               `json:"customerCount"`
	ClusterCount  int               `json:"clusterCount"`
	Mapping       map[string]string `json:"mapping"`
	Warnings      []string          `json:"warnings"`
	ResultPath    string            `json:"resultPath"`
}

// SegmentRecord 单个客户的分群结果
type SegmentRecord struct {
	RunID                    string  `json:"runId"`
	CustomerID               string  `json:"customerId"`
	RecencyDays              float64 `json:"recencyDays"`
	Frequency                int     `json:"frequency"`
	Monetary                 float64 `json:"monetary"`
	TenureYears              float64 `json:"tenureYears"`
	AverageOrderValue        float64 `json:"averageOrderValue"`
	PurchaseFrequencyPerYear float64 `json:"purchaseFrequencyPerYear"`
	LTV                      float64 `json:"ltv"`
	Cluster                  int     `json:"cluster"`
	Segment                  string  `json:"segment"`
	Churn                    string  `json:"churn"`
}

// SaveRun 保存运行记录及其客户分群（单事务）
func (s *Store) SaveRun(run *RunRecord, segments []SegmentRecord) error {
	mappingJSON, err := json.Marshal(run.Mapping)
	if err != nil {
		return fmt.Errorf("failed to marshal mapping: %w", err)
	}
	warningsJSON, err := json.Marshal(run.Warnings)
	if err != nil {
		return fmt.Errorf("failed to marshal warnings: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO analysis_runs
			(id, filename, created_at, row_count, customer_count, cluster_count, mapping, warnings, result_path)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.Filename, run.CreatedAt, run.RowCount, run.CustomerCount,
		run.ClusterCount, string(mappingJSON), string(warningsJSON), run.ResultPath)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO customer_segments
			(run_id, customer_id, recency_days, frequency, monetary, tenure_years,
			 avg_order_value, purchase_freq_year, ltv, cluster, segment, churn)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare segment insert: %w", err)
	}
	defer stmt.Close()

	for _, seg := range segments {
		_, err = stmt.Exec(run.ID, seg.CustomerID, seg.RecencyDays, seg.Frequency,
			seg.Monetary, seg.TenureYears, seg.AverageOrderValue,
			seg.PurchaseFrequencyPerYear, seg.LTV, seg.Cluster, seg.Segment, seg.Churn)
		if err != nil {
			return fmt.Errorf("failed to insert segment for %s: %w", seg.CustomerID, err)
		}
	}

	return tx.Commit()
}

// ListRuns 按创建时间倒序返回运行记录
func (s *Store) ListRuns() ([]RunRecord, error) {
	rows, err := s.db.Query(`
		SELECT id, filename, created_at, row_count, customer_count, cluster_count, mapping, warnings, result_path
		FROM analysis_runs
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// GetRun 按 ID 查询运行记录
func (s *Store) GetRun(id string) (*RunRecord, error) {
	row := s.db.QueryRow(`
		SELECT id, filename, created_at, row_count, customer_count, cluster_count, mapping, warnings, result_path
		FROM analysis_runs
		WHERE id = ?
	`, id)
	return scanRun(row)
}

// GetSegments 查询某次运行的全部客户分群
func (s *Store) GetSegments(runID string) ([]SegmentRecord, error) {
	rows, err := s.db.Query(`
		SELECT run_id, customer_id, recency_days, frequency, monetary, tenure_years,
		       avg_order_value, purchase_freq_year, ltv, cluster, segment, churn
		FROM customer_segments
		WHERE run_id = ?
		ORDER BY customer_id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query segments: %w", err)
	}
	defer rows.Close()

	var segments []SegmentRecord
	for rows.Next() {
		var seg SegmentRecord
		err := rows.Scan(&seg.RunID, &seg.CustomerID, &seg.RecencyDays, &seg.Frequency,
			&seg.Monetary, &seg.TenureYears, &seg.AverageOrderValue,
			&seg.PurchaseFrequencyPerYear, &seg.LTV, &seg.Cluster, &seg.Segment, &seg.Churn)
		if err != nil {
			return nil, fmt.Errorf("failed to scan segment: %w", err)
		}
		segments = append(segments, seg)
	}
	return segments, rows.Err()
}

// CountRuns 运行总数
func (s *Store) CountRuns() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM analysis_runs`).Scan(&count)
	return count, err
}

// LastRunTime 最近一次运行时间，无记录时返回零值
func (s *Store) LastRunTime() (time.Time, error) {
	var last time.Time
	err := s.db.QueryRow(`
		SELECT created_at FROM analysis_runs
		ORDER BY created_at DESC LIMIT 1
	`).Scan(&last)
	if err == sql.ErrNoRows {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}
	return last, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*RunRecord, error) {
	var run RunRecord
	var mappingJSON, warningsJSON string
	err := row.Scan(&run.ID, &run.Filename, &run.CreatedAt, &run.RowCount,
		&run.CustomerCount, &run.ClusterCount, &mappingJSON, &warningsJSON, &run.ResultPath)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}
	if err := json.Unmarshal([]byte(mappingJSON), &run.Mapping); err != nil {
		return nil, fmt.Errorf("failed to unmarshal mapping: %w", err)
	}
	if err := json.Unmarshal([]byte(warningsJSON), &run.Warnings); err != nil {
		return nil, fmt.Errorf("failed to unmarshal warnings: %w", err)
	}
	return &run, nil
}
