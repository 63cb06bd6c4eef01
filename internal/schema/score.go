package schema

import (
	"math"
	"strings"

	"github.com/kamalu-chioma/OpenRFM/internal/dataset"
)

// Engine 模式推断引擎。无内部状态，可并发使用。
type Engine struct {
	vocab *Vocabulary
}

// NewEngine 创建引擎，vocab 为 nil 时使用内置词表
func NewEngine(vocab *Vocabulary) *Engine {
	if vocab == nil {
		vocab = DefaultVocabulary()
	}
	return &Engine{vocab: vocab}
}

// round3 子得分统一保留三位小数
func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

// scoreColumn 对单列按目标类型打分，固定三种打分过程
func (e *Engine) scoreColumn(role Role, col *dataset.Column) ColumnScore {
	values := col.NonMissing()
	if len(values) == 0 {
		return ColumnScore{
			Column:     col.Name,
			Score:      0.0,
			Components: map[string]float64{"non_null_ratio": 0.0},
		}
	}

	switch role {
	case RoleCustomerID:
		return e.scoreCustomerID(col.Name, values)
	case RoleTransactionDate:
		return e.scoreTransactionDate(col.Name, values)
	default:
		return e.scoreTransactionAmount(col.Name, values)
	}
}

// nameComponents 列名相似度与正则加分，两个子项所有目标通用
func (e *Engine) nameComponents(columnName string, role Role, components map[string]float64) float64 {
	nameScore := e.nameSimilarity(columnName, role)
	regexScore := e.regexBonus(columnName, role)
	components["name_similarity"] = round3(nameScore)
	components["regex_bonus"] = round3(regexScore)
	return math.Min(0.3, nameScore*0.3) + regexScore
}

// scoreCustomerID 客户标识打分：唯一度越高越像标识列
func (e *Engine) scoreCustomerID(columnName string, values []string) ColumnScore {
	components := map[string]float64{}
	score := e.nameComponents(columnName, RoleCustomerID, components)

	distinct := map[string]struct{}{}
	for _, v := range values {
		distinct[v] = struct{}{}
	}
	uniqueRatio := float64(len(distinct)) / float64(len(values))
	score += math.Min(uniqueRatio, 1.0) * 0.5
	components["unique_ratio"] = round3(uniqueRatio)

	// 几乎全数值且唯一度低，更像金额/数量列
	_, _, numericRatio := parseNumerics(values)
	components["numeric_ratio"] = round3(numericRatio)
	if numericRatio > 0.9 && uniqueRatio < 0.3 {
		score *= 0.6
	}

	return ColumnScore{Column: columnName, Score: math.Min(score, 1.0), Components: components}
}

// scoreTransactionDate 交易日期打分：按可解析为日期的比例加分
func (e *Engine) scoreTransactionDate(columnName string, values []string) ColumnScore {
	components := map[string]float64{}
	score := e.nameComponents(columnName, RoleTransactionDate, components)

	_, _, validRatio := parseDates(values)
	components["valid_datetime_ratio"] = round3(validRatio)
	if validRatio >= 0.7 {
		score += 0.6
	} else if validRatio >= 0.4 {
		score += 0.35
	}

	// 数值列且日期解析率低，大概率是金额
	_, _, numericRatio := parseNumerics(values)
	if numericRatio > 0.8 && validRatio < 0.4 {
		score *= 0.5
	}

	return ColumnScore{Column: columnName, Score: math.Min(score, 1.0), Components: components}
}

// scoreTransactionAmount 交易金额打分：数值解析率 + 正值占比
func (e *Engine) scoreTransactionAmount(columnName string, values []string) ColumnScore {
	components := map[string]float64{}
	score := e.nameComponents(columnName, RoleTransactionAmount, components)

	nums, ok, validRatio := parseNumerics(values)
	components["valid_numeric_ratio"] = round3(validRatio)
	if validRatio >= 0.7 {
		score += 0.6
	} else if validRatio >= 0.5 {
		score += 0.4
	}

	if validRatio > 0 {
		positive, parsed := 0, 0
		for i, n := range nums {
			if !ok[i] {
				continue
			}
			parsed++
			if n > 0 {
				positive++
			}
		}
		positiveRatio := 0.0
		if parsed > 0 {
			positiveRatio = float64(positive) / float64(parsed)
		}
		components["positive_ratio"] = round3(positiveRatio)
		if positiveRatio >= 0.7 {
			score += 0.1
		}
	}

	// 像日期的列降权
	_, _, dateRatio := parseDates(values)
	if dateRatio > 0.4 && validRatio < 0.5 {
		score *= 0.4
	}

	// 数量/件数类列名直接降权
	cleaned := normalizeColumnName(columnName)
	for _, keyword := range e.vocab.NegativeAmount {
		if strings.Contains(cleaned, keyword) {
			score *= 0.5
			break
		}
	}

	return ColumnScore{Column: columnName, Score: math.Min(score, 1.0), Components: components}
}
