package cluster

import (
	"errors"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
)

// k-means parameters. The seed is fixed so that two runs over the same
// batch produce identical partitions.
const (
	kmeansSeed     = 42
	kmeansRestarts = 10
	kmeansMaxIter  = 300
	kmeansTol      = 1e-6
)

var errDegenerateInput = errors.New("cluster: degenerate input for k-means")

// kmeansResult holds the best partition found across restarts.
type kmeansResult struct {
	labels  []int
	centers [][]float64
	inertia float64
}

// runKMeans partitions the rows of vectors into k groups. It runs
// kmeansRestarts seeded k-means++ initializations and keeps the run
// with the lowest within-cluster sum of squares.
func runKMeans(vectors [][]float64, k int) (*kmeansResult, error) {
	n := len(vectors)
	if n == 0 || k < 1 || k > n {
		return nil, errDegenerateInput
	}
	for _, row := range vectors {
		for _, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, errors.New("cluster: non-finite value in feature matrix")
			}
		}
	}

	rng := rand.New(rand.NewSource(kmeansSeed))
	best := &kmeansResult{inertia: math.Inf(1)}
	for restart := 0; restart < kmeansRestarts; restart++ {
		res := kmeansOnce(vectors, k, rng)
		if res.inertia < best.inertia {
			best = res
		}
	}
	return best, nil
}

// kmeansOnce runs a single k-means pass: k-means++ seeding, then
// alternating assignment and center updates until convergence or the
// iteration cap.
func kmeansOnce(vectors [][]float64, k int, rng *rand.Rand) *kmeansResult {
	dims := len(vectors[0])
	centers := seedCenters(vectors, k, rng)
	labels := make([]int, len(vectors))

	var inertia float64
	for iter := 0; iter < kmeansMaxIter; iter++ {
		// Assignment step
		inertia = 0
		for i, row := range vectors {
			best, bestDist := 0, math.Inf(1)
			for c, center := range centers {
				if d := squaredDistance(row, center); d < bestDist {
					best, bestDist = c, d
				}
			}
			labels[i] = best
			inertia += bestDist
		}

		// Update step
		next := make([][]float64, k)
		counts := make([]int, k)
		for c := range next {
			next[c] = make([]float64, dims)
		}
		for i, row := range vectors {
			floats.Add(next[labels[i]], row)
			counts[labels[i]]++
		}
		shift := 0.0
		for c := range next {
			if counts[c] == 0 {
				// Re-seed an emptied center on a random point.
				copy(next[c], vectors[rng.Intn(len(vectors))])
			} else {
				floats.Scale(1/float64(counts[c]), next[c])
			}
			shift += squaredDistance(next[c], centers[c])
		}
		centers = next
		if shift < kmeansTol {
			break
		}
	}

	return &kmeansResult{labels: labels, centers: centers, inertia: inertia}
}

// seedCenters picks k initial centers with the k-means++ strategy:
// each new center is drawn with probability proportional to its
// squared distance from the nearest existing center.
func seedCenters(vectors [][]float64, k int, rng *rand.Rand) [][]float64 {
	centers := make([][]float64, 0, k)
	first := make([]float64, len(vectors[0]))
	copy(first, vectors[rng.Intn(len(vectors))])
	centers = append(centers, first)

	dists := make([]float64, len(vectors))
	for len(centers) < k {
		total := 0.0
		for i, row := range vectors {
			d := math.Inf(1)
			for _, center := range centers {
				if sd := squaredDistance(row, center); sd < d {
					d = sd
				}
			}
			dists[i] = d
			total += d
		}

		var idx int
		if total == 0 {
			// All points coincide with existing centers.
			idx = rng.Intn(len(vectors))
		} else {
			target := rng.Float64() * total
			acc := 0.0
			for i, d := range dists {
				acc += d
				if acc >= target {
					idx = i
					break
				}
			}
		}
		next := make([]float64, len(vectors[idx]))
		copy(next, vectors[idx])
		centers = append(centers, next)
	}
	return centers
}

// silhouetteScore computes the mean silhouette coefficient over all
// points: (b-a)/max(a,b) where a is the mean intra-cluster distance
// and b the mean distance to the nearest other cluster. Returns 0 for
// inputs where the score is undefined (single cluster, singleton
// batch).
func silhouetteScore(vectors [][]float64, labels []int) float64 {
	n := len(vectors)
	if n < 2 {
		return 0
	}

	clusters := make(map[int][]int)
	for i, l := range labels {
		clusters[l] = append(clusters[l], i)
	}
	if len(clusters) < 2 {
		return 0
	}

	total := 0.0
	for i, row := range vectors {
		own := labels[i]

		var a float64
		if members := clusters[own]; len(members) > 1 {
			for _, j := range members {
				if j != i {
					a += floats.Distance(row, vectors[j], 2)
				}
			}
			a /= float64(len(members) - 1)
		} else {
			// Singleton clusters contribute a zero silhouette.
			continue
		}

		b := math.Inf(1)
		for l, members := range clusters {
			if l == own {
				continue
			}
			sum := 0.0
			for _, j := range members {
				sum += floats.Distance(row, vectors[j], 2)
			}
			if mean := sum / float64(len(members)); mean < b {
				b = mean
			}
		}

		if m := math.Max(a, b); m > 0 {
			total += (b - a) / m
		}
	}

	return total / float64(n)
}

func squaredDistance(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
