package rfm

import "sort"

// segmentNames 固定分群词表，按平均 Recency 升序依次分配
var segmentNames = []string{
	"Loyal Customers",
	"At Risk Customers",
	"Occasional Buyers",
	"Lost Customers",
	"High-Value Customers",
	"Low-Value Customers",
	"New & Engaged Customers",
	"Big Spenders",
	"Mid-Value Customers",
}

const segmentOther = "Other"

// churn 判定中视为已流失/稳定的分群
var (
	churnYesSegments = map[string]bool{
		"At Risk Customers": true,
		"Lost Customers":    true,
	}
	churnNoSegments = map[string]bool{
		"Loyal Customers":         true,
		"New & Engaged Customers": true,
		"Big Spenders":            true,
	}
)

// ClusterSummary 各簇的缩放后 R/F/M 均值
type ClusterSummary struct {
	Recency   []float64
	Frequency []float64
	Monetary  []float64
}

// Segmentation 分群结果
type Segmentation struct {
	Labels   map[int]string // 簇 -> 分群名
	Segments []string       // 逐客户分群名
	Churn    []string       // 逐客户流失预判 Yes/No/Maybe
	Summary  ClusterSummary
}

// Segment 依据缩放特征与聚类标签给客户命名分群并预判流失
func Segment(scaled [][]float64, labels []int, k int) Segmentation {
	summary := summarize(scaled, labels, k)

	// 按平均 Recency 升序排定簇次序，保证命名稳定
	order := make([]int, k)
	for c := range order {
		order[c] = c
	}
	sort.SliceStable(order, func(i, j int) bool {
		return summary.Recency[order[i]] < summary.Recency[order[j]]
	})

	names := make(map[int]string, k)
	for rank, cluster := range order {
		if rank < len(segmentNames) {
			names[cluster] = segmentNames[rank]
		} else {
			names[cluster] = segmentOther
		}
	}

	medianRecency := median(summary.Recency)
	medianFrequency := median(summary.Frequency)

	segments := make([]string, len(labels))
	churn := make([]string, len(labels))
	for i, cluster := range labels {
		segment := names[cluster]
		segments[i] = segment

		switch {
		case churnYesSegments[segment]:
			churn[i] = "Yes"
		case scaled[i][0] > medianRecency && scaled[i][1] < medianFrequency:
			churn[i] = "Yes"
		case churnNoSegments[segment]:
			churn[i] = "No"
		default:
			churn[i] = "Maybe"
		}
	}

	return Segmentation{Labels: names, Segments: segments, Churn: churn, Summary: summary}
}

func summarize(scaled [][]float64, labels []int, k int) ClusterSummary {
	summary := ClusterSummary{
		Recency:   make([]float64, k),
		Frequency: make([]float64, k),
		Monetary:  make([]float64, k),
	}
	counts := make([]int, k)
	for i, cluster := range labels {
		summary.Recency[cluster] += scaled[i][0]
		summary.Frequency[cluster] += scaled[i][1]
		summary.Monetary[cluster] += scaled[i][2]
		counts[cluster]++
	}
	for c := 0; c < k; c++ {
		if counts[c] == 0 {
			continue
		}
		summary.Recency[c] /= float64(counts[c])
		summary.Frequency[c] /= float64(counts[c])
		summary.Monetary[c] /= float64(counts[c])
	}
	return summary
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}
