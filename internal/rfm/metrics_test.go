package rfm

import (
	"math"
	"testing"
	"time"

	"github.com/kamalu-chioma/OpenRFM/internal/schema"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func stdFixture() *schema.StandardTable {
	return &schema.StandardTable{
		Rows:       5,
		CustomerID: []string{"A", "A", "B", "", "B"},
		IDValid:    []bool{true, true, true, false, true},
		Date: []time.Time{
			day(2023, time.January, 1),
			day(2023, time.March, 1),
			day(2023, time.February, 1),
			day(2023, time.February, 2),
			{},
		},
		DateValid: []bool{true, true, true, true, false},
		Amount:    []float64{100, 50, 200, 10, 999},
	}
}

func TestCompute_GroupsAndDropsInvalidRows(t *testing.T) {
	t.Parallel()

	now := day(2023, time.April, 1)
	metrics := Compute(stdFixture(), now)

	// 缺失 ID 的行和缺失日期的行都不参与
	if len(metrics) != 2 {
		t.Fatalf("want 2 customers, got %d", len(metrics))
	}

	a := metrics[0]
	if a.CustomerID != "A" {
		t.Fatalf("metrics not sorted by id: %v", a.CustomerID)
	}
	if a.Frequency != 2 || a.Monetary != 150 {
		t.Fatalf("customer A: freq=%d monetary=%v", a.Frequency, a.Monetary)
	}
	if a.RecencyDays != 31 {
		t.Fatalf("customer A recency = %v, want 31", a.RecencyDays)
	}
	if a.TenureDays != 90 {
		t.Fatalf("customer A tenure = %v, want 90", a.TenureDays)
	}
	if a.AverageOrderValue != 75 {
		t.Fatalf("customer A aov = %v", a.AverageOrderValue)
	}

	b := metrics[1]
	if b.Frequency != 1 || b.Monetary != 200 {
		t.Fatalf("customer B: freq=%d monetary=%v", b.Frequency, b.Monetary)
	}
}

func TestCompute_LTVFormula(t *testing.T) {
	t.Parallel()

	now := day(2023, time.April, 1)
	metrics := Compute(stdFixture(), now)
	for _, m := range metrics {
		want := m.AverageOrderValue * m.PurchaseFrequencyPerYear * m.TenureYears
		if math.Abs(m.LTV-want) > 1e-9 {
			t.Fatalf("customer %s ltv = %v, want %v", m.CustomerID, m.LTV, want)
		}
	}
}

func TestCompute_TenureFloor(t *testing.T) {
	t.Parallel()

	std := &schema.StandardTable{
		Rows:       1,
		CustomerID: []string{"X"},
		IDValid:    []bool{true},
		Date:       []time.Time{day(2023, time.April, 1)},
		DateValid:  []bool{true},
		Amount:     []float64{10},
	}

	// 当天购买的客户在册天数下限为 1
	metrics := Compute(std, day(2023, time.April, 1))
	if metrics[0].TenureDays != 1 {
		t.Fatalf("tenure = %v, want 1", metrics[0].TenureDays)
	}
	if metrics[0].PurchaseFrequencyPerYear <= 0 {
		t.Fatalf("purchase frequency = %v", metrics[0].PurchaseFrequencyPerYear)
	}
}

func TestLTV(t *testing.T) {
	t.Parallel()

	if got := LTV(100, 12, 2); got != 2400 {
		t.Fatalf("LTV = %v, want 2400", got)
	}
	if got := LTV(0, 12, 2); got != 0 {
		t.Fatalf("LTV with zero aov = %v", got)
	}
}
