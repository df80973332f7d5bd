package spread_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/UnknownOlympus/meridian/internal/geo"
	"github.com/UnknownOlympus/meridian/internal/spread"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	Name   string
	Rating float64
}

func pt(name string, lat, lng float64) spread.Point[record] {
	return spread.Point[record]{Lat: lat, Lng: lng, Payload: record{Name: name}}
}

func names(points []spread.Point[record]) []string {
	out := make([]string, 0, len(points))
	for _, p := range points {
		out = append(out, p.Payload.Name)
	}
	return out
}

func angleDiff(a, b float64) float64 {
	return math.Abs(math.Mod(a-b+540, 360) - 180)
}

func TestCluster(t *testing.T) {
	t.Run("empty input", func(t *testing.T) {
		clusters := spread.Cluster[record](nil, spread.DefaultThresholdKm)

		assert.Empty(t, clusters)
	})

	t.Run("groups by distance to pivot only", func(t *testing.T) {
		// b and c are each ~20 km from a but ~40 km from each other.
		aLat, aLng := 0.0, 0.0
		bLat, bLng := geo.Destination(aLat, aLng, 90, 20)
		cLat, cLng := geo.Destination(aLat, aLng, 270, 20)
		points := []spread.Point[record]{pt("a", aLat, aLng), pt("b", bLat, bLng), pt("c", cLat, cLng)}

		clusters := spread.Cluster(points, 25)

		require.Len(t, clusters, 1)
		assert.Equal(t, []string{"a", "b", "c"}, names(clusters[0]))
		assert.Greater(t, geo.Distance(clusters[0][1].LatLng(), clusters[0][2].LatLng()), 25.0)
	})

	t.Run("no transitive chaining", func(t *testing.T) {
		// a-b and b-c are 20 km apart, a-c is 40 km.
		bLat, bLng := geo.Destination(0, 0, 90, 20)
		cLat, cLng := geo.Destination(0, 0, 90, 40)
		points := []spread.Point[record]{pt("a", 0, 0), pt("b", bLat, bLng), pt("c", cLat, cLng)}

		clusters := spread.Cluster(points, 25)

		require.Len(t, clusters, 2)
		assert.Equal(t, []string{"a", "b"}, names(clusters[0]))
		assert.Equal(t, []string{"c"}, names(clusters[1]))
	})

	t.Run("pivot depends on input order", func(t *testing.T) {
		bLat, bLng := geo.Destination(0, 0, 90, 20)
		cLat, cLng := geo.Destination(0, 0, 90, 40)
		points := []spread.Point[record]{pt("b", bLat, bLng), pt("a", 0, 0), pt("c", cLat, cLng)}

		clusters := spread.Cluster(points, 25)

		require.Len(t, clusters, 1)
		assert.Equal(t, []string{"b", "a", "c"}, names(clusters[0]))
	})

	t.Run("non-positive threshold", func(t *testing.T) {
		points := []spread.Point[record]{pt("a", 10, 10), pt("b", 10, 10), pt("c", 10.001, 10)}

		zero := spread.Cluster(points, 0)
		require.Len(t, zero, 2)
		assert.Equal(t, []string{"a", "b"}, names(zero[0]))

		negative := spread.Cluster(points, -1)
		assert.Len(t, negative, 3)
	})

	t.Run("partition and pivot bound laws", func(t *testing.T) {
		rng := rand.New(rand.NewSource(42))
		points := make([]spread.Point[record], 0, 120)
		for i := range 120 {
			points = append(points, pt(string(rune('A'+i%26))+string(rune('0'+i/26)),
				40+rng.Float64(), -74+rng.Float64()))
		}

		const threshold = 30.0
		clusters := spread.Cluster(points, threshold)

		seen := make(map[string]int)
		for _, c := range clusters {
			require.NotEmpty(t, c)
			for i, q := range c {
				seen[q.Payload.Name]++
				if i > 0 {
					assert.LessOrEqual(t, geo.Distance(c[0].LatLng(), q.LatLng()), threshold)
				}
			}
		}

		require.Len(t, seen, len(points))
		for _, p := range points {
			assert.Equal(t, 1, seen[p.Payload.Name])
		}
	})
}

func TestFanOut(t *testing.T) {
	t.Run("singleton passthrough", func(t *testing.T) {
		in := pt("solo", 48.8566, 2.3522)

		out := spread.FanOut([]spread.Point[record]{in}, spread.DefaultRingKm)

		require.Len(t, out, 1)
		assert.Equal(t, in, out[0])
		assert.Nil(t, out[0].Origin)
	})

	t.Run("ring placement", func(t *testing.T) {
		cluster := []spread.Point[record]{
			pt("p", 35.6762, 139.6503),
			pt("q", 35.6800, 139.6600),
			pt("r", 35.6700, 139.6400),
			pt("s", 35.6762, 139.6503),
		}
		pivot := cluster[0].LatLng()

		out := spread.FanOut(cluster, 12)

		require.Len(t, out, len(cluster))
		for i, p := range out {
			require.NotNil(t, p.Origin)
			assert.Equal(t, i, p.Origin.Index)
			assert.Equal(t, len(cluster), p.Origin.Size)
			assert.Equal(t, cluster[i].Lat, p.Origin.Lat)
			assert.Equal(t, cluster[i].Lng, p.Origin.Lng)
			assert.Equal(t, cluster[i].Payload, p.Payload)

			assert.InDelta(t, 12, geo.Distance(pivot, p.LatLng()), 1e-6)
			assert.InDelta(t, 0, angleDiff(float64(i)*90, geo.Bearing(pivot, p.LatLng())), 1e-6)
		}
	})

	t.Run("does not touch the input", func(t *testing.T) {
		cluster := []spread.Point[record]{pt("p", 1, 1), pt("q", 1, 1)}

		_ = spread.FanOut(cluster, 12)

		assert.Equal(t, []spread.Point[record]{pt("p", 1, 1), pt("q", 1, 1)}, cluster)
	})
}

func TestSpread(t *testing.T) {
	t.Run("empty input gives empty output", func(t *testing.T) {
		out := spread.Spread([]spread.Point[record]{}, spread.DefaultThresholdKm, spread.DefaultRingKm)

		require.NotNil(t, out)
		assert.Empty(t, out)
	})

	t.Run("three nearby points form one ring", func(t *testing.T) {
		bLat, bLng := geo.Destination(43.263, -2.935, 45, 1.0)
		cLat, cLng := geo.Destination(43.263, -2.935, 200, 0.9)
		points := []spread.Point[record]{pt("a", 43.263, -2.935), pt("b", bLat, bLng), pt("c", cLat, cLng)}
		pivot := points[0].LatLng()

		out := spread.Spread(points, 25, 12)

		require.Len(t, out, 3)
		for i, want := range []float64{0, 120, 240} {
			assert.InDelta(t, 12, geo.Distance(pivot, out[i].LatLng()), 1e-6)
			assert.InDelta(t, 0, angleDiff(want, geo.Bearing(pivot, out[i].LatLng())), 1e-6)
			require.NotNil(t, out[i].Origin)
			assert.Equal(t, points[i].Lat, out[i].Origin.Lat)
			assert.Equal(t, points[i].Lng, out[i].Origin.Lng)
			assert.Equal(t, points[i].Source(), out[i].Source())
		}
	})

	t.Run("distant points stay where they are", func(t *testing.T) {
		bLat, bLng := geo.Destination(10, 10, 0, 40)
		points := []spread.Point[record]{pt("a", 10, 10), pt("b", bLat, bLng)}

		out := spread.Spread(points, 25, 12)

		assert.Equal(t, points, out)
	})

	t.Run("output follows cluster order", func(t *testing.T) {
		points := []spread.Point[record]{
			pt("london-1", 51.5074, -0.1278),
			pt("paris", 48.8566, 2.3522),
			pt("london-2", 51.5074, -0.1278),
		}

		out := spread.Spread(points, 25, 12)

		assert.Equal(t, []string{"london-1", "london-2", "paris"}, names(out))
		assert.Nil(t, out[2].Origin)
	})

	t.Run("cardinality for any threshold and ring", func(t *testing.T) {
		points := []spread.Point[record]{
			pt("a", 0, 0), pt("b", 0, 0), pt("c", 0.1, 0.1), pt("d", -33.9, 18.4), pt("e", 0, 0),
		}

		for _, threshold := range []float64{0, 1, 25, 1000, 30000} {
			for _, ring := range []float64{0, 1, 12, 500} {
				assert.Len(t, spread.Spread(points, threshold, ring), len(points))
			}
		}
	})

	t.Run("not a fixed point", func(t *testing.T) {
		points := []spread.Point[record]{pt("a", 0, 0), pt("b", 0, 0)}

		once := spread.Spread(points, 25, 12)
		twice := spread.Spread(once, 25, 12)

		assert.NotEqual(t, once[1].LatLng(), twice[1].LatLng())
		// The second pass records the first pass positions as the originals.
		assert.Equal(t, once[1].LatLng(), twice[1].Source())
	})
}
