package cache

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hclin/camradar/internal/camera"
)

func summaries() []camera.Summary {
	return []camera.Summary{
		{ID: "A1", Name: "民族路口", SnapshotURL: "s1.jpg"},
		{ID: "B2", Name: "B2", SnapshotURL: "s2.jpg", LiveFeedURL: "live2"},
	}
}

func TestMergeSummariesIdempotent(t *testing.T) {
	t.Parallel()

	s := New()
	require.Equal(t, 2, s.MergeSummaries(summaries()))
	require.Equal(t, 0, s.MergeSummaries(summaries()), "re-merging the same list adds nothing")

	sums, details := s.Len()
	require.Equal(t, 2, sums)
	require.Equal(t, 0, details)
}

func TestMergeSummariesFirstSeenWins(t *testing.T) {
	t.Parallel()

	s := New()
	s.MergeSummaries([]camera.Summary{{ID: "A1", Name: "first", SnapshotURL: "s1.jpg"}})
	s.MergeSummaries([]camera.Summary{{ID: "A1", Name: "second", SnapshotURL: "other.jpg"}})

	sum, ok := s.Summary("A1")
	require.True(t, ok)
	require.Equal(t, "first", sum.Name)
	require.Equal(t, "s1.jpg", sum.SnapshotURL)
}

func TestMergeSummariesSkipsEmptyID(t *testing.T) {
	t.Parallel()

	s := New()
	require.Equal(t, 0, s.MergeSummaries([]camera.Summary{{Name: "nameless"}}))
}

func TestPutDetailEnrichesSummary(t *testing.T) {
	t.Parallel()

	s := New()
	s.MergeSummaries([]camera.Summary{{ID: "A1", Name: "A1", SnapshotURL: "s1.jpg"}})
	s.PutDetail(camera.Detail{
		ID:          "A1",
		Coords:      camera.Coords{Lat: 22.6273, Lon: 120.3014},
		Name:        "民族路口",
		SnapshotURL: "snap/A1.jpg",
		LiveFeedURL: "live-a1",
	})

	sum, ok := s.Summary("A1")
	require.True(t, ok)
	require.Equal(t, "live-a1", sum.LiveFeedURL, "empty live feed is enriched in place")
	require.Equal(t, "民族路口", sum.Name, "id-only name is enriched in place")
	require.Equal(t, "s1.jpg", sum.SnapshotURL, "summary snapshot is never overwritten")
}

func TestPutDetailKeepsExistingSummaryValues(t *testing.T) {
	t.Parallel()

	s := New()
	s.MergeSummaries([]camera.Summary{{ID: "A1", Name: "scraped name", LiveFeedURL: "scraped-live"}})
	s.PutDetail(camera.Detail{
		ID:          "A1",
		Coords:      camera.Coords{Lat: 1, Lon: 2},
		Name:        "other name",
		LiveFeedURL: "other-live",
	})

	sum, _ := s.Summary("A1")
	require.Equal(t, "scraped name", sum.Name)
	require.Equal(t, "scraped-live", sum.LiveFeedURL)
}

func TestPutDetailWriteOnce(t *testing.T) {
	t.Parallel()

	s := New()
	s.PutDetail(camera.Detail{ID: "A1", Coords: camera.Coords{Lat: 22.6273, Lon: 120.3014}})
	s.PutDetail(camera.Detail{ID: "A1", Coords: camera.Coords{Lat: 99, Lon: 99}})

	d, ok := s.Detail("A1")
	require.True(t, ok)
	require.InDelta(t, 22.6273, d.Coords.Lat, 1e-9, "coordinates never change within a session")
}

func TestLookupPrefersDetail(t *testing.T) {
	t.Parallel()

	s := New()
	s.MergeSummaries([]camera.Summary{{ID: "A1", Name: "summary name"}})

	rec, ok := s.Lookup("A1")
	require.True(t, ok)
	require.False(t, rec.Resolved())
	require.Equal(t, "summary name", rec.Name)

	s.PutDetail(camera.Detail{
		ID:     "A1",
		Coords: camera.Coords{Lat: 22.6273, Lon: 120.3014},
		Name:   "detail name",
	})
	rec, ok = s.Lookup("A1")
	require.True(t, ok)
	require.True(t, rec.Resolved())
	require.InDelta(t, 22.6273, rec.Coords.Lat, 1e-9)
}

func TestLookupUnknownID(t *testing.T) {
	t.Parallel()

	s := New()
	_, ok := s.Lookup("nope")
	require.False(t, ok)
}
