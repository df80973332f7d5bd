package spread

import "github.com/UnknownOlympus/meridian/internal/geo"

// Cluster partitions points into ordered groups.
//
// Points are scanned in input order. The first unconsumed point becomes the pivot of a new
// cluster, and every later unconsumed point within thresholdKm of that pivot joins it.
// Membership is decided against the pivot only, so two non-pivot members may be farther
// apart than thresholdKm, and the result depends on input order.
func Cluster[T any](points []Point[T], thresholdKm float64) [][]Point[T] {
	clusters := make([][]Point[T], 0, len(points))
	consumed := make([]bool, len(points))

	for i := range points {
		if consumed[i] {
			continue
		}
		consumed[i] = true
		pivot := points[i].LatLng()
		group := []Point[T]{points[i]}

		for j := i + 1; j < len(points); j++ {
			if consumed[j] {
				continue
			}
			if geo.Distance(pivot, points[j].LatLng()) <= thresholdKm {
				group = append(group, points[j])
				consumed[j] = true
			}
		}

		clusters = append(clusters, group)
	}

	return clusters
}

// FanOut places the members of one cluster evenly on a ring of radius ringKm around the
// original position of its first member. Member i lands at bearing i*360/n, the pivot
// included. A single-member cluster is returned as is.
func FanOut[T any](cluster []Point[T], ringKm float64) []Point[T] {
	out := make([]Point[T], len(cluster))
	copy(out, cluster)

	n := len(cluster)
	if n <= 1 {
		return out
	}

	pivot := cluster[0]
	for i := range out {
		bearing := float64(i) * 360 / float64(n)
		lat, lng := geo.Destination(pivot.Lat, pivot.Lng, bearing, ringKm)

		out[i].Origin = &Origin{
			Lat:   cluster[i].Lat,
			Lng:   cluster[i].Lng,
			Index: i,
			Size:  n,
		}
		out[i].Lat = lat
		out[i].Lng = lng
	}

	return out
}

// Spread clusters points with thresholdKm and fans every cluster out on a ringKm ring.
// The result has the same length as points, in cluster order then member order.
// The input slice is not modified.
//
// Spread is a one-shot transform: feeding its output back in generally moves points again.
func Spread[T any](points []Point[T], thresholdKm, ringKm float64) []Point[T] {
	out := make([]Point[T], 0, len(points))

	for _, cluster := range Cluster(points, thresholdKm) {
		out = append(out, FanOut(cluster, ringKm)...)
	}

	return out
}
