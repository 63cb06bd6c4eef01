// Package rfm 计算客户级 RFM 指标并做分群打标。
package rfm

import (
	"sort"
	"time"

	"github.com/kamalu-chioma/OpenRFM/internal/schema"
)

const daysPerYear = 365.25

// CustomerMetrics 单个客户的行为指标
type CustomerMetrics struct {
	CustomerID               string    `json:"customerId"`
	FirstPurchase            time.Time `json:"firstPurchase"`
	LastPurchase             time.Time `json:"lastPurchase"`
	RecencyDays              float64   `json:"recencyDays"`
	Frequency                int       `json:"frequency"`
	Monetary                 float64   `json:"monetary"`
	TenureDays               float64   `json:"tenureDays"`
	TenureYears              float64   `json:"tenureYears"`
	AverageOrderValue        float64   `json:"averageOrderValue"`
	PurchaseFrequencyPerYear float64   `json:"purchaseFrequencyPerYear"`
	LTV                      float64   `json:"ltv"`
}

// LTV 客户生命周期价值：
// 平均客单价 × 年购买频次 × 在册年数
func LTV(averageOrderValue, purchaseFrequencyPerYear, tenureYears float64) float64 {
	return averageOrderValue * purchaseFrequencyPerYear * tenureYears
}

// Compute 从标准化表计算每个客户的 RFM 指标。
// CustomerID 或 TransactionDate 缺失的行直接剔除；
// 结果按 CustomerID 升序排列，保证输出可复现。
func Compute(std *schema.StandardTable, now time.Time) []CustomerMetrics {
	type bucket struct {
		first, last time.Time
		count       int
		monetary    float64
	}

	buckets := map[string]*bucket{}
	for i := 0; i < std.Rows; i++ {
		if !std.IDValid[i] || !std.DateValid[i] {
			continue
		}
		id := std.CustomerID[i]
		b, ok := buckets[id]
		if !ok {
			b = &bucket{first: std.Date[i], last: std.Date[i]}
			buckets[id] = b
		}
		if std.Date[i].Before(b.first) {
			b.first = std.Date[i]
		}
		if std.Date[i].After(b.last) {
			b.last = std.Date[i]
		}
		b.count++
		b.monetary += std.Amount[i]
	}

	ids := make([]string, 0, len(buckets))
	for id := range buckets {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	metrics := make([]CustomerMetrics, 0, len(ids))
	for _, id := range ids {
		b := buckets[id]

		recency := float64(int(now.Sub(b.last).Hours() / 24))
		tenureDays := float64(int(now.Sub(b.first).Hours() / 24))
		if tenureDays < 1 {
			tenureDays = 1
		}
		tenureYears := tenureDays / daysPerYear

		aov := 0.0
		if b.count > 0 {
			aov = b.monetary / float64(b.count)
		}

		// 年频次的在册时长下限为一天，避免除零
		denomYears := tenureYears
		if denomYears < 1/daysPerYear {
			denomYears = 1 / daysPerYear
		}
		pfy := float64(b.count) / denomYears

		metrics = append(metrics, CustomerMetrics{
			CustomerID:               id,
			FirstPurchase:            b.first,
			LastPurchase:             b.last,
			RecencyDays:              recency,
			Frequency:                b.count,
			Monetary:                 b.monetary,
			TenureDays:               tenureDays,
			TenureYears:              tenureYears,
			AverageOrderValue:        aov,
			PurchaseFrequencyPerYear: pfy,
			LTV:                      LTV(aov, pfy, tenureYears),
		})
	}
	return metrics
}
