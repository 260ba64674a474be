package journey

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/facet-data/exposure.report/internal/exposure"
)

func samplesAt(points ...[2]float64) []exposure.TrajectorySample {
	out := make([]exposure.TrajectorySample, len(points))
	for i, p := range points {
		out[i] = exposure.TrajectorySample{TrackKey: "track-1", TSMs: int64(i * 1000), X: p[0], Z: p[1]}
	}
	return out
}

func TestDominantRegion(t *testing.T) {
	t.Parallel()

	defaults := exposure.DefaultContextPriority()

	t.Run("most hits wins", func(t *testing.T) {
		t.Parallel()
		regions := []exposure.Region{
			{RegionID: "r-aisle", Name: "Aisle 3", Vertices: square(0, 0, 10, 10)},
			{RegionID: "r-promo", Name: "Promo Endcap", Vertices: square(20, 0, 30, 10)},
		}
		samples := samplesAt([2]float64{5, 5}, [2]float64{6, 5}, [2]float64{25, 5})

		dom := DominantRegion(samples, regions, defaults)
		require.NotNil(t, dom)
		assert.Equal(t, "r-aisle", dom.Region.RegionID)
		assert.Equal(t, 2, dom.Hits)
		assert.Equal(t, exposure.PhaseAisle, dom.Phase)
	})

	t.Run("nonzero count beats zero", func(t *testing.T) {
		t.Parallel()
		regions := []exposure.Region{
			{RegionID: "r-q", Name: "Checkout Queue 1", Vertices: square(0, 0, 10, 10)},
		}
		// Half the samples inside, half in open space.
		samples := samplesAt([2]float64{5, 5}, [2]float64{50, 50}, [2]float64{6, 6}, [2]float64{60, 60})

		dom := DominantRegion(samples, regions, defaults)
		require.NotNil(t, dom)
		assert.Equal(t, "Checkout Queue 1", dom.Region.Name)
		assert.Equal(t, 2, dom.Hits)
		assert.Equal(t, exposure.PhaseCheckout, dom.Phase)
	})

	t.Run("hit tie broken by phase priority regardless of order", func(t *testing.T) {
		t.Parallel()
		// Two overlapping regions covering the same samples: equal hits.
		queueRegion := exposure.Region{RegionID: "r-queue", Name: "Queue West", Vertices: square(0, 0, 10, 10)}
		aisleRegion := exposure.Region{RegionID: "r-aisle", Name: "Aisle 9", Vertices: square(0, 0, 10, 10)}
		samples := samplesAt([2]float64{5, 5}, [2]float64{2, 2})

		for _, regions := range [][]exposure.Region{
			{queueRegion, aisleRegion},
			{aisleRegion, queueRegion},
		} {
			dom := DominantRegion(samples, regions, defaults)
			require.NotNil(t, dom)
			assert.Equal(t, "r-queue", dom.Region.RegionID, "queue outranks aisle in the default priority")
		}
	})

	t.Run("full tie broken by region id", func(t *testing.T) {
		t.Parallel()
		a := exposure.Region{RegionID: "r-a", Name: "Aisle 1", Vertices: square(0, 0, 10, 10)}
		b := exposure.Region{RegionID: "r-b", Name: "Aisle 2", Vertices: square(0, 0, 10, 10)}
		samples := samplesAt([2]float64{5, 5})

		for _, regions := range [][]exposure.Region{{a, b}, {b, a}} {
			dom := DominantRegion(samples, regions, defaults)
			require.NotNil(t, dom)
			assert.Equal(t, "r-a", dom.Region.RegionID)
		}
	})

	t.Run("overlapping regions each collect the sample", func(t *testing.T) {
		t.Parallel()
		outer := exposure.Region{RegionID: "r-outer", Name: "Aisle Zone", Vertices: square(0, 0, 20, 20)}
		inner := exposure.Region{RegionID: "r-inner", Name: "Queue Pocket", Vertices: square(5, 5, 10, 10)}
		// Two samples in the overlap, one only in the outer region.
		samples := samplesAt([2]float64{6, 6}, [2]float64{7, 7}, [2]float64{15, 15})

		dom := DominantRegion(samples, []exposure.Region{inner, outer}, defaults)
		require.NotNil(t, dom)
		assert.Equal(t, "r-outer", dom.Region.RegionID)
		assert.Equal(t, 3, dom.Hits)
	})

	t.Run("nil when nothing matches", func(t *testing.T) {
		t.Parallel()
		regions := []exposure.Region{
			{RegionID: "r-1", Name: "Aisle 1", Vertices: square(0, 0, 10, 10)},
		}
		assert.Nil(t, DominantRegion(samplesAt([2]float64{50, 50}), regions, defaults))
		assert.Nil(t, DominantRegion(nil, regions, defaults))
		assert.Nil(t, DominantRegion(samplesAt([2]float64{5, 5}), nil, defaults))
	})

	t.Run("empty polygon never matches", func(t *testing.T) {
		t.Parallel()
		regions := []exposure.Region{
			{RegionID: "r-bad", Name: "Broken Region", Vertices: nil},
			{RegionID: "r-ok", Name: "Aisle 1", Vertices: square(0, 0, 10, 10)},
		}
		dom := DominantRegion(samplesAt([2]float64{5, 5}), regions, defaults)
		require.NotNil(t, dom)
		assert.Equal(t, "r-ok", dom.Region.RegionID)
	})
}
