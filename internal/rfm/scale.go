package rfm

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// FeatureMatrix 提取聚类特征 [Recency, Frequency, Monetary]
func FeatureMatrix(metrics []CustomerMetrics) [][]float64 {
	points := make([][]float64, len(metrics))
	for i, m := range metrics {
		points[i] = []float64{m.RecencyDays, float64(m.Frequency), m.Monetary}
	}
	return points
}

// ScaleColumns 按列做 z-score 标准化，返回新矩阵。
// 标准差为 0 的列按 1 处理（只平移不缩放）。
func ScaleColumns(points [][]float64) [][]float64 {
	if len(points) == 0 {
		return nil
	}
	dims := len(points[0])

	scaled := make([][]float64, len(points))
	for i := range points {
		scaled[i] = make([]float64, dims)
	}

	col := make([]float64, len(points))
	for d := 0; d < dims; d++ {
		for i := range points {
			col[i] = points[i][d]
		}
		mean := stat.Mean(col, nil)

		// 总体标准差（与参考实现的标准化一致，不是样本标准差）
		variance := 0.0
		for _, v := range col {
			variance += (v - mean) * (v - mean)
		}
		std := math.Sqrt(variance / float64(len(col)))
		if std == 0 {
			std = 1
		}

		for i := range points {
			scaled[i][d] = (points[i][d] - mean) / std
		}
	}
	return scaled
}
