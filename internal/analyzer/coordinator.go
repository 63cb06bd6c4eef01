package analyzer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/kamalu-chioma/OpenRFM/internal/dataset"
	"github.com/kamalu-chioma/OpenRFM/internal/rfm"
	"github.com/kamalu-chioma/OpenRFM/internal/schema"
	"github.com/kamalu-chioma/OpenRFM/internal/store"
)

// DerivedAmountColumn 由 Quantity × UnitPrice 衍生出的金额列名
const DerivedAmountColumn = "__calculated_amount"

// Coordinator 分析协调器：读取文件、推断列、计算 RFM、聚类并落库
type Coordinator struct {
	store     *store.Store
	engine    *schema.Engine
	exportDir string
	logger    *log.Logger
}

// NewCoordinator 创建分析协调器
func NewCoordinator(st *store.Store, exportDir string, logger *log.Logger) *Coordinator {
	return &Coordinator{
		store:     st,
		engine:    schema.NewEngine(nil),
		exportDir: exportDir,
		logger:    logger,
	}
}

// Options 分析选项
type Options struct {
	FilePath    string
	Filename    string // 原始上传文件名，仅用于展示
	ClusterSize int    // 0 表示自动（肘部法）
	MaxClusters int    // 自动选簇时的上限
}

// ProgressEvent 进度事件
type ProgressEvent struct {
	Type      string      `json:"type"`      // start/info/warning/done/error
	Message   string      `json:"message"`   // 事件消息
	Data      interface{} `json:"data"`      // 附加数据
	Timestamp time.Time   `json:"timestamp"` // 时间戳
}

// Result 单次分析结果
type Result struct {
	RunID          string                `json:"runId"`
	Filename       string                `json:"filename"`
	RowCount       int                   `json:"rowCount"`
	CustomerCount  int                   `json:"customerCount"`
	ClusterCount   int                   `json:"clusterCount"`
	Mapping        map[string]string     `json:"mapping"`
	Warnings       []string              `json:"warnings"`
	CoercionRatios schema.CoercionRatios `json:"coercionRatios"`
	Segments       []store.SegmentRecord `json:"segments"`
	ResultPath     string                `json:"-"`
}

// Analyze 执行分析，返回进度通道
func (c *Coordinator) Analyze(opts Options) <-chan ProgressEvent {
	progressChan := make(chan ProgressEvent, 100)

	go func() {
		defer close(progressChan)
		c.doAnalyze(opts, progressChan)
	}()

	return progressChan
}

// doAnalyze 执行分析逻辑
func (c *Coordinator) doAnalyze(opts Options, progressChan chan ProgressEvent) {
	c.sendProgress(progressChan, ProgressEvent{
		Type:    "start",
		Message: "开始分析交易文件",
		Data: map[string]string{
			"filename": opts.Filename,
		},
		Timestamp: time.Now(),
	})

	table, err := dataset.Load(opts.FilePath)
	if err != nil {
		c.fail(progressChan, fmt.Sprintf("读取文件失败: %v", err), nil)
		return
	}

	c.sendProgress(progressChan, ProgressEvent{
		Type:    "info",
		Message: fmt.Sprintf("读取 %d 行 × %d 列", table.RowCount(), len(table.Columns)),
		Data: map[string]int{
			"rows":    table.RowCount(),
			"columns": len(table.Columns),
		},
		Timestamp: time.Now(),
	})

	derived := c.deriveAmount(table, progressChan)

	std, diag, err := c.engine.InferAndStandardize(table, c.logger)
	if err != nil {
		var infErr *schema.InferenceError
		if errors.As(err, &infErr) {
			c.fail(progressChan, infErr.Error(), infErr.Details())
			return
		}
		c.fail(progressChan, fmt.Sprintf("列推断失败: %v", err), nil)
		return
	}

	if derived {
		// 衍生列只是推断的候选，不向调用方暴露
		std.Extra.DropColumn(DerivedAmountColumn)
	}

	c.sendProgress(progressChan, ProgressEvent{
		Type:    "info",
		Message: "列推断完成",
		Data: map[string]interface{}{
			"mapping":  diag.Mapping,
			"warnings": diag.Warnings,
		},
		Timestamp: time.Now(),
	})
	for _, warning := range diag.Warnings {
		c.sendProgress(progressChan, ProgressEvent{
			Type:      "warning",
			Message:   warning,
			Timestamp: time.Now(),
		})
	}

	metrics := rfm.Compute(std, time.Now())
	if len(metrics) < 2 {
		c.fail(progressChan, fmt.Sprintf("有效客户不足：需要至少 2 个客户进行分群，当前 %d 个", len(metrics)), nil)
		return
	}

	c.sendProgress(progressChan, ProgressEvent{
		Type:    "info",
		Message: fmt.Sprintf("RFM 指标计算完成: %d 个客户", len(metrics)),
		Data: map[string]int{
			"customers": len(metrics),
		},
		Timestamp: time.Now(),
	})

	scaled := rfm.ScaleColumns(rfm.FeatureMatrix(metrics))

	k := opts.ClusterSize
	if k <= 0 {
		maxK := opts.MaxClusters
		if maxK <= 0 {
			maxK = 10
		}
		k = rfm.OptimalClusters(scaled, maxK, rfm.ClusterSeed)
		c.sendProgress(progressChan, ProgressEvent{
			Type:      "info",
			Message:   fmt.Sprintf("肘部法选定簇数: %d", k),
			Timestamp: time.Now(),
		})
	}
	if k > len(metrics) {
		k = len(metrics)
	}

	km := rfm.KMeans(scaled, k, rfm.ClusterSeed)
	seg := rfm.Segment(scaled, km.Labels, k)

	runID := uuid.New().String()
	segments := make([]store.SegmentRecord, len(metrics))
	for i, m := range metrics {
		segments[i] = store.SegmentRecord{
			RunID:                    runID,
			CustomerID:               m.CustomerID,
			RecencyDays:              m.RecencyDays,
			Frequency:                m.Frequency,
			Monetary:                 m.Monetary,
			TenureYears:              m.TenureYears,
			AverageOrderValue:        m.AverageOrderValue,
			PurchaseFrequencyPerYear: m.PurchaseFrequencyPerYear,
			LTV:                      m.LTV,
			Cluster:                  km.Labels[i],
			Segment:                  seg.Segments[i],
			Churn:                    seg.Churn[i],
		}
	}

	resultPath, err := c.writeResultCSV(runID, segments)
	if err != nil {
		c.fail(progressChan, fmt.Sprintf("写出结果文件失败: %v", err), nil)
		return
	}

	run := &store.RunRecord{
		ID:            runID,
		Filename:      opts.Filename,
		CreatedAt:     time.Now().UTC(),
		RowCount:      std.Rows,
		CustomerCount: len(metrics),
		ClusterCount:  k,
		Mapping:       diag.Mapping,
		Warnings:      diag.Warnings,
		ResultPath:    resultPath,
	}
	if err := c.store.SaveRun(run, segments); err != nil {
		c.fail(progressChan, fmt.Sprintf("保存分析结果失败: %v", err), nil)
		return
	}

	c.sendProgress(progressChan, ProgressEvent{
		Type:    "done",
		Message: "分析完成",
		Data: &Result{
			RunID:          runID,
			Filename:       opts.Filename,
			RowCount:       std.Rows,
			CustomerCount:  len(metrics),
			ClusterCount:   k,
			Mapping:        diag.Mapping,
			Warnings:       diag.Warnings,
			CoercionRatios: diag.CoercionRatios,
			Segments:       segments,
			ResultPath:     resultPath,
		},
		Timestamp: time.Now(),
	})
}

// deriveAmount 当同时存在 Quantity 与 UnitPrice 列时，
// 追加乘积列作为金额推断的候选。返回是否追加成功。
func (c *Coordinator) deriveAmount(table *dataset.Table, progressChan chan ProgressEvent) bool {
	qty, ok := table.Column("Quantity")
	if !ok {
		return false
	}
	price, ok := table.Column("UnitPrice")
	if !ok {
		return false
	}
	if table.HasColumn(DerivedAmountColumn) {
		return false
	}

	cells := make([]dataset.Cell, len(qty.Cells))
	for i := range qty.Cells {
		if !qty.Cells[i].Valid || !price.Cells[i].Valid {
			continue
		}
		q, qok := schema.ParseNumber(qty.Cells[i].Value)
		p, pok := schema.ParseNumber(price.Cells[i].Value)
		if !qok || !pok {
			continue
		}
		cells[i] = dataset.Cell{
			Value: strconv.FormatFloat(q*p, 'f', -1, 64),
			Valid: true,
		}
	}

	if err := table.AddColumn(&dataset.Column{Name: DerivedAmountColumn, Cells: cells}); err != nil {
		return false
	}

	c.sendProgress(progressChan, ProgressEvent{
		Type:      "info",
		Message:   "检测到 Quantity 与 UnitPrice，已生成衍生金额列",
		Timestamp: time.Now(),
	})
	return true
}

// writeResultCSV 将分群结果写为 CSV，返回文件路径
func (c *Coordinator) writeResultCSV(runID string, segments []store.SegmentRecord) (string, error) {
	if err := os.MkdirAll(c.exportDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create export dir: %w", err)
	}

	path := filepath.Join(c.exportDir, fmt.Sprintf("rfm_%s.csv", runID))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create result file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{
		"CustomerID", "RecencyDays", "Frequency", "Monetary", "TenureYears",
		"AvgOrderValue", "PurchaseFreqPerYear", "LTV", "Cluster", "Segment", "Churn",
	}
	if err := w.Write(header); err != nil {
		return "", fmt.Errorf("failed to write header: %w", err)
	}

	rows := make([]store.SegmentRecord, len(segments))
	copy(rows, segments)
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].CustomerID < rows[j].CustomerID })

	for _, seg := range rows {
		record := []string{
			seg.CustomerID,
			formatFloat(seg.RecencyDays),
			strconv.Itoa(seg.Frequency),
			formatFloat(seg.Monetary),
			formatFloat(seg.TenureYears),
			formatFloat(seg.AverageOrderValue),
			formatFloat(seg.PurchaseFrequencyPerYear),
			formatFloat(seg.LTV),
			strconv.Itoa(seg.Cluster),
			seg.Segment,
			seg.Churn,
		}
		if err := w.Write(record); err != nil {
			return "", fmt.Errorf("failed to write record: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("failed to flush result file: %w", err)
	}
	return path, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// fail 发送错误事件并记录日志
func (c *Coordinator) fail(ch chan ProgressEvent, message string, data interface{}) {
	if c.logger != nil {
		c.logger.Printf("分析失败: %s", message)
	}
	c.sendProgress(ch, ProgressEvent{
		Type:      "error",
		Message:   message,
		Data:      data,
		Timestamp: time.Now(),
	})
}

// sendProgress 发送进度事件
func (c *Coordinator) sendProgress(ch chan ProgressEvent, event ProgressEvent) {
	select {
	case ch <- event:
	default:
		// 通道已满，丢弃事件
	}
}
