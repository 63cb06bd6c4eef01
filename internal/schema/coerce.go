package schema

import (
	"strconv"
	"strings"
	"time"
)

// numericReplacer 去掉千分位与货币符号，括号负数转为负号
var numericReplacer = strings.NewReplacer(",", "", "$", "", "(", "-", ")", "")

// cleanNumeric 数值解析前的清洗
func cleanNumeric(value string) string {
	return strings.TrimSpace(numericReplacer.Replace(value))
}

// ParseNumber 解析单个数值，支持千分位、货币符号与括号负数
func ParseNumber(value string) (float64, bool) {
	n, err := strconv.ParseFloat(cleanNumeric(value), 64)
	return n, err == nil
}

// parseNumerics 整列批量数值解析，返回解析结果与成功比例
func parseNumerics(values []string) (nums []float64, ok []bool, ratio float64) {
	nums = make([]float64, len(values))
	ok = make([]bool, len(values))
	if len(values) == 0 {
		return nums, ok, 0.0
	}

	valid := 0
	for i, value := range values {
		n, err := strconv.ParseFloat(cleanNumeric(value), 64)
		if err == nil {
			nums[i] = n
			ok[i] = true
			valid++
		}
	}
	return nums, ok, float64(valid) / float64(len(values))
}

// dateLayouts 依次尝试的日期格式，ISO 优先，月在日前（与参考实现一致）
var dateLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"2006/01/02",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
	"01/02/2006",
	"1/2/2006",
	"2006.01.02",
	"02-Jan-2006",
	"2-Jan-2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"20060102",
	"2006-01",
}

// parseDates 整列批量日期解析。
// 缓存上一次命中的格式，整列同构时只需一次格式探测。
func parseDates(values []string) (times []time.Time, ok []bool, ratio float64) {
	times = make([]time.Time, len(values))
	ok = make([]bool, len(values))
	if len(values) == 0 {
		return times, ok, 0.0
	}

	valid := 0
	lastLayout := ""
	for i, value := range values {
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			continue
		}
		if lastLayout != "" {
			if ts, err := time.Parse(lastLayout, trimmed); err == nil {
				times[i] = ts
				ok[i] = true
				valid++
				continue
			}
		}
		for _, layout := range dateLayouts {
			if layout == lastLayout {
				continue
			}
			if ts, err := time.Parse(layout, trimmed); err == nil {
				times[i] = ts
				ok[i] = true
				valid++
				lastLayout = layout
				break
			}
		}
	}
	return times, ok, float64(valid) / float64(len(values))
}
