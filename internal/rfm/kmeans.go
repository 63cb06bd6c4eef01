package rfm

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
)

// ClusterSeed 固定随机种子，保证同一输入两次运行结果一致
const ClusterSeed = 42

const maxKMeansIterations = 100

// KMeansResult 聚类结果
type KMeansResult struct {
	Labels    []int
	Centroids [][]float64
	Inertia   float64
}

// KMeans 带种子的 k-means（k-means++ 初始化）
func KMeans(points [][]float64, k int, seed int64) KMeansResult {
	if k > len(points) {
		k = len(points)
	}
	rng := rand.New(rand.NewSource(seed))
	centroids := seedCentroids(points, k, rng)
	labels := make([]int, len(points))

	for iter := 0; iter < maxKMeansIterations; iter++ {
		changed := false
		for i, p := range points {
			best := nearestCentroid(p, centroids)
			if labels[i] != best {
				labels[i] = best
				changed = true
			}
		}

		// 重算质心；空簇保留原质心
		dims := len(points[0])
		sums := make([][]float64, k)
		counts := make([]int, k)
		for c := range sums {
			sums[c] = make([]float64, dims)
		}
		for i, p := range points {
			floats.Add(sums[labels[i]], p)
			counts[labels[i]]++
		}
		for c := range centroids {
			if counts[c] == 0 {
				continue
			}
			for d := range centroids[c] {
				centroids[c][d] = sums[c][d] / float64(counts[c])
			}
		}

		if !changed && iter > 0 {
			break
		}
	}

	inertia := 0.0
	for i, p := range points {
		d := floats.Distance(p, centroids[labels[i]], 2)
		inertia += d * d
	}

	return KMeansResult{Labels: labels, Centroids: centroids, Inertia: inertia}
}

// OptimalClusters 肘部法选择聚类数：
// 对 k=2..min(maxK, 样本数) 计算失真度，取相邻差值最大处 + 2。
// 不先按样本数收紧上限的话，k 超过样本数后失真度不再变化，
// 平坦尾部的零差值会干扰 argmax。
func OptimalClusters(points [][]float64, maxK int, seed int64) int {
	if maxK > len(points) {
		maxK = len(points)
	}
	if maxK < 2 {
		return 2
	}
	var distortions []float64
	for k := 2; k <= maxK; k++ {
		distortions = append(distortions, KMeans(points, k, seed).Inertia)
	}
	if len(distortions) < 2 {
		return 2
	}

	bestIdx, bestDiff := 0, math.Inf(-1)
	for i := 0; i+1 < len(distortions); i++ {
		if diff := distortions[i+1] - distortions[i]; diff > bestDiff {
			bestDiff = diff
			bestIdx = i
		}
	}
	return bestIdx + 2
}

// seedCentroids k-means++ 初始化
func seedCentroids(points [][]float64, k int, rng *rand.Rand) [][]float64 {
	centroids := make([][]float64, 0, k)
	first := points[rng.Intn(len(points))]
	centroids = append(centroids, append([]float64(nil), first...))

	distSq := make([]float64, len(points))
	for len(centroids) < k {
		total := 0.0
		for i, p := range points {
			d := floats.Distance(p, centroids[nearestCentroid(p, centroids)], 2)
			distSq[i] = d * d
			total += distSq[i]
		}

		// 所有点与质心重合时退化为均匀抽样
		if total == 0 {
			next := points[rng.Intn(len(points))]
			centroids = append(centroids, append([]float64(nil), next...))
			continue
		}

		target := rng.Float64() * total
		acc := 0.0
		chosen := len(points) - 1
		for i, d := range distSq {
			acc += d
			if acc >= target {
				chosen = i
				break
			}
		}
		centroids = append(centroids, append([]float64(nil), points[chosen]...))
	}
	return centroids
}

func nearestCentroid(p []float64, centroids [][]float64) int {
	best, bestDist := 0, math.Inf(1)
	for c, centroid := range centroids {
		if d := floats.Distance(p, centroid, 2); d < bestDist {
			best = c
			bestDist = d
		}
	}
	return best
}
