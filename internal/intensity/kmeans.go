package intensity

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
)

// KMeans is a one-dimensional k-means model over ventilation values.
type KMeans struct {
	Centroids []float64
}

// FitKMeans clusters the values into k clusters: k-means++ seeding followed
// by Lloyd iterations, capped at maxIter. Seeding and iteration draw from a
// local random source, so a fixed seed reproduces the same model.
func FitKMeans(values []float64, k int, seed int64, maxIter int) (*KMeans, error) {
	if k < 1 {
		return nil, fmt.Errorf("cluster count %d out of range", k)
	}
	if len(values) < k {
		return nil, fmt.Errorf("%d values cannot form %d clusters", len(values), k)
	}

	rng := rand.New(rand.NewSource(seed))
	centroids := seedCentroids(values, k, rng)

	assign := make([]int, len(values))
	for i := range assign {
		assign[i] = -1
	}
	for iter := 0; iter < maxIter; iter++ {
		changed := false
		for i, v := range values {
			if c := nearest(centroids, v); c != assign[i] {
				assign[i] = c
				changed = true
			}
		}
		if !changed {
			break
		}

		// Recompute means. A cluster that lost all points keeps its centroid.
		sums := make([]float64, k)
		counts := make([]int, k)
		for i, v := range values {
			sums[assign[i]] += v
			counts[assign[i]]++
		}
		for c := range centroids {
			if counts[c] > 0 {
				centroids[c] = sums[c] / float64(counts[c])
			}
		}
	}

	return &KMeans{Centroids: centroids}, nil
}

// seedCentroids picks initial centroids with k-means++ weighting: the first
// uniformly at random, each subsequent one with probability proportional to
// its squared distance from the nearest centroid chosen so far.
func seedCentroids(values []float64, k int, rng *rand.Rand) []float64 {
	centroids := make([]float64, 0, k)
	centroids = append(centroids, values[rng.Intn(len(values))])

	d2 := make([]float64, len(values))
	for len(centroids) < k {
		var total float64
		for i, v := range values {
			min := math.MaxFloat64
			for _, c := range centroids {
				d := v - c
				if dd := d * d; dd < min {
					min = dd
				}
			}
			d2[i] = min
			total += min
		}
		if total == 0 {
			// Every value coincides with an existing centroid.
			centroids = append(centroids, values[rng.Intn(len(values))])
			continue
		}
		r := rng.Float64() * total
		picked := len(values) - 1
		for i, w := range d2 {
			r -= w
			if r <= 0 {
				picked = i
				break
			}
		}
		centroids = append(centroids, values[picked])
	}
	return centroids
}

// nearest returns the index of the closest centroid, lowest index on ties.
func nearest(centroids []float64, v float64) int {
	best := 0
	bestDist := math.Abs(v - centroids[0])
	for c := 1; c < len(centroids); c++ {
		if d := math.Abs(v - centroids[c]); d < bestDist {
			best = c
			bestDist = d
		}
	}
	return best
}

// K returns the number of clusters.
func (m *KMeans) K() int { return len(m.Centroids) }

// Predict returns the cluster of the nearest centroid.
func (m *KMeans) Predict(v float64) int {
	return nearest(m.Centroids, v)
}

// PredictAll assigns every value to its nearest centroid.
func (m *KMeans) PredictAll(values []float64) []int {
	out := make([]int, len(values))
	for i, v := range values {
		out[i] = m.Predict(v)
	}
	return out
}

// RelabelByMean renumbers cluster assignments so clusters are ordered by
// ascending mean value: 0 becomes the lowest-ventilation cluster. Only
// clusters that actually hold points participate in the ranking, so the
// returned ids are dense in [0, clusters present).
func RelabelByMean(values []float64, assign []int, k int) []int {
	sums := make([]float64, k)
	counts := make([]int, k)
	for i, c := range assign {
		sums[c] += values[i]
		counts[c]++
	}

	present := make([]int, 0, k)
	for c := 0; c < k; c++ {
		if counts[c] > 0 {
			present = append(present, c)
		}
	}
	sort.Slice(present, func(a, b int) bool {
		ma := sums[present[a]] / float64(counts[present[a]])
		mb := sums[present[b]] / float64(counts[present[b]])
		return ma < mb
	})

	mapping := make(map[int]int, len(present))
	for rank, c := range present {
		mapping[c] = rank
	}
	out := make([]int, len(assign))
	for i, c := range assign {
		out[i] = mapping[c]
	}
	return out
}
