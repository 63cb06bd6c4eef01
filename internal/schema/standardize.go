package schema

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/kamalu-chioma/OpenRFM/internal/dataset"
)

// InferAndStandardize 推断并标准化表格。
// 不修改调用方传入的表；logger 为 nil 时警告只进诊断信息。
// 处理顺序固定为 CustomerID、TransactionDate、TransactionAmount。
func (e *Engine) InferAndStandardize(table *dataset.Table, logger *log.Logger) (*StandardTable, *Diagnostics, error) {
	mapping, _, err := e.Infer(table)
	if err != nil {
		return nil, nil, err
	}

	work := table.Clone()
	renameMap := make(map[string]string, len(mapping)) // 源列 -> 目标列
	for role, source := range mapping {
		renameMap[source] = string(role)
	}
	for _, col := range work.Columns {
		if target, ok := renameMap[col.Name]; ok {
			col.Name = target
		}
	}

	rows := work.RowCount()
	diag := &Diagnostics{
		Mapping:       renameMap,
		SourceColumns: mapping,
		Warnings:      []string{},
	}

	std := &StandardTable{Rows: rows}

	// CustomerID：转字符串并去空白，空串视为缺失
	idCol, _ := work.Column(string(RoleCustomerID))
	std.CustomerID = make([]string, rows)
	std.IDValid = make([]bool, rows)
	blankIDs := 0
	for i, cell := range idCol.Cells {
		trimmed := strings.TrimSpace(cell.Value)
		if !cell.Valid || trimmed == "" {
			blankIDs++
			continue
		}
		std.CustomerID[i] = trimmed
		std.IDValid[i] = true
	}
	e.recordWarning(diag, logger, "Blank CustomerID values detected", blankIDs, rows)

	// TransactionDate：解析为时间戳，失败即缺失
	dateCol, _ := work.Column(string(RoleTransactionDate))
	rawDates := make([]string, rows)
	for i, cell := range dateCol.Cells {
		if cell.Valid {
			rawDates[i] = cell.Value
		}
	}
	parsed, parsedOK, _ := parseDates(rawDates)
	std.Date = make([]time.Time, rows)
	std.DateValid = make([]bool, rows)
	validDates := 0
	for i := range parsed {
		if parsedOK[i] {
			std.Date[i] = parsed[i]
			std.DateValid[i] = true
			validDates++
		}
	}
	dateRatio := ratioOf(validDates, rows)
	e.recordWarning(diag, logger, "Rows with unparseable TransactionDate", rows-validDates, rows)

	// TransactionAmount：数值解析，失败计为 0 而不是丢弃
	amountCol, _ := work.Column(string(RoleTransactionAmount))
	raw := make([]string, rows)
	for i, cell := range amountCol.Cells {
		if cell.Valid {
			raw[i] = cell.Value
		}
	}
	nums, ok, _ := parseNumerics(raw)
	std.Amount = make([]float64, rows)
	validAmounts := 0
	for i := range nums {
		if ok[i] {
			std.Amount[i] = nums[i]
			validAmounts++
		}
	}
	amountRatio := ratioOf(validAmounts, rows)
	e.recordWarning(diag, logger, "Rows with non-numeric TransactionAmount", rows-validAmounts, rows)

	diag.CoercionRatios = CoercionRatios{
		TransactionDate:   round3(dateRatio),
		TransactionAmount: round3(amountRatio),
	}

	// 未映射的源列原样保留
	std.Extra = dataset.NewTable()
	for _, col := range work.Columns {
		switch col.Name {
		case string(RoleCustomerID), string(RoleTransactionDate), string(RoleTransactionAmount):
			continue
		}
		_ = std.Extra.AddColumn(col)
	}

	return std, diag, nil
}

// recordWarning 按 "消息: N rows (P%)." 格式追加警告
func (e *Engine) recordWarning(diag *Diagnostics, logger *log.Logger, message string, count, total int) {
	if count <= 0 {
		return
	}
	percentage := 0.0
	if total > 0 {
		percentage = float64(count) / float64(total) * 100
	}
	warning := fmt.Sprintf("%s: %d rows (%.1f%%).", message, count, percentage)
	diag.Warnings = append(diag.Warnings, warning)
	if logger != nil {
		logger.Printf("%s", warning)
	}
}

func ratioOf(count, total int) float64 {
	if total == 0 {
		return 0.0
	}
	return float64(count) / float64(total)
}
