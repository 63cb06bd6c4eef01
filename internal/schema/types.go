// Package schema 从任意表格数据中推断 RFM 核心列。
//
// 打分系统综合列名相似度（正则 + 模糊匹配）与值分布统计，
// 将陌生数据集映射为下游 RFM 流水线期望的标准结构。
package schema

import (
	"fmt"
	"strings"
	"time"

	"github.com/kamalu-chioma/OpenRFM/internal/dataset"
)

// Role 标准目标列
type Role string

const (
	RoleCustomerID        Role = "CustomerID"
	RoleTransactionDate   Role = "TransactionDate"
	RoleTransactionAmount Role = "TransactionAmount"
)

// TargetRoles 固定的三个目标列，顺序即标准化处理顺序
var TargetRoles = []Role{RoleCustomerID, RoleTransactionDate, RoleTransactionAmount}

// ColumnScore 候选列得分，Components 保留各子项便于解释
type ColumnScore struct {
	Column     string             `json:"column"`
	Score      float64            `json:"score"`
	Components map[string]float64 `json:"components"`
}

// Mapping 目标列 -> 源列名
type Mapping map[Role]string

// CoercionRatios 标准化时各字段的成功转换比例
type CoercionRatios struct {
	TransactionDate   float64 `json:"TransactionDate"`
	TransactionAmount float64 `json:"TransactionAmount"`
}

// Diagnostics 单次推断的诊断信息，返回后不再修改
type Diagnostics struct {
	Mapping        map[string]string `json:"mapping"`        // 源列 -> 目标列
	SourceColumns  map[Role]string   `json:"source_columns"` // 目标列 -> 源列
	Warnings       []string          `json:"warnings"`
	CoercionRatios CoercionRatios    `json:"coercion_ratios"`
}

// StandardTable 标准化结果：三个目标列已转换为标准类型，
// 其余源列原样保留在 Extra 中
type StandardTable struct {
	Rows       int
	CustomerID []string
	IDValid    []bool
	Date       []time.Time
	DateValid  []bool
	Amount     []float64
	Extra      *dataset.Table
}

// Suggestion 推断失败时对单个目标列的建议
type Suggestion struct {
	BestColumn string             `json:"best_column"`
	Score      float64            `json:"score"`
	Components map[string]float64 `json:"components"`
}

// InferenceError 必需目标列无法解析时返回的错误。
// Suggestions 以目标列为键，无任何候选列时值为 nil。
type InferenceError struct {
	Missing     []Role
	Suggestions map[Role]*Suggestion
}

func (e *InferenceError) Error() string {
	names := make([]string, len(e.Missing))
	for i, role := range e.Missing {
		names[i] = string(role)
	}
	return fmt.Sprintf(
		"Unable to infer required columns: %s. Please rename the relevant fields or supply mapping hints.",
		strings.Join(names, ", "),
	)
}

// Details 错误详情，供 API 层序列化返回
func (e *InferenceError) Details() map[string]any {
	return map[string]any{"suggestions": e.Suggestions}
}
