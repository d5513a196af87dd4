package rt

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waveline/automation/internal/curve"
	"github.com/waveline/automation/internal/store"
	"github.com/waveline/automation/internal/testutil"
)

func newLane(t *testing.T) (*store.Store, store.OwnerID) {
	t.Helper()
	st := store.New(store.WithIDGenerator(testutil.NewSequence("pt")))
	lane := st.CreateLane("volume")
	return st, store.OwnerID(lane)
}

func TestSampler_TracksCommittedEdits(t *testing.T) {
	st, owner := newLane(t)
	s := New(st)
	defer s.Close()

	assert.Equal(t, 0.5, s.Value(owner, 2, 0.5), "empty curve samples the default")

	_, err := st.AddPoint(owner, 0, 0.2, curve.Linear)
	require.NoError(t, err)
	_, err = st.AddPoint(owner, 4, 0.8, curve.Linear)
	require.NoError(t, err)

	assert.InDelta(t, 0.5, s.Value(owner, 2, 0), 1e-12)
	assert.Equal(t, 0.2, s.Value(owner, -1, 0), "flat hold before the first point")
}

func TestSampler_UnknownOwnerSamplesDefault(t *testing.T) {
	st, _ := newLane(t)
	s := New(st)
	defer s.Close()

	assert.Equal(t, 0.7, s.Value("missing", 0, 0.7))
}

func TestSampler_IgnoresDragPreviews(t *testing.T) {
	st, owner := newLane(t)
	s := New(st)
	defer s.Close()

	id, err := st.AddPoint(owner, 0, 0.2, curve.Linear)
	require.NoError(t, err)
	v := s.Version()

	require.NoError(t, st.SetPreview(id, 0, 0.9))

	assert.Equal(t, 0.2, s.Value(owner, 0, 0), "playback never sees uncommitted drags")
	assert.Equal(t, v, s.Version(), "a preview is not a publication")
}

func TestSampler_IgnoresVisibilityChanges(t *testing.T) {
	st, owner := newLane(t)
	s := New(st)
	defer s.Close()
	v := s.Version()

	require.NoError(t, st.SetLaneVisible(store.LaneID(owner), false))

	assert.Equal(t, v, s.Version(), "visibility is a render concern")
}

func TestSampler_VersionStrictlyIncreases(t *testing.T) {
	st, owner := newLane(t)
	s := New(st)
	defer s.Close()

	versions := []int64{s.Version()}
	_, err := st.AddPoint(owner, 0, 0.2, curve.Linear)
	require.NoError(t, err)
	versions = append(versions, s.Version())
	id, err := st.AddPoint(owner, 4, 0.8, curve.Linear)
	require.NoError(t, err)
	versions = append(versions, s.Version())
	st.DeletePoints([]store.PointID{id})
	versions = append(versions, s.Version())

	for i := 1; i < len(versions); i++ {
		assert.Greater(t, versions[i], versions[i-1])
	}
}

func TestSampler_LaneRemovalDropsCurve(t *testing.T) {
	st, owner := newLane(t)
	s := New(st)
	defer s.Close()

	_, err := st.AddPoint(owner, 0, 0.3, curve.Linear)
	require.NoError(t, err)
	require.NoError(t, st.RemoveLane(store.LaneID(owner)))

	assert.Equal(t, 0.5, s.Value(owner, 0, 0.5), "a removed lane samples the default again")
}

func TestSampler_CloseStopsUpdates(t *testing.T) {
	st, owner := newLane(t)
	s := New(st)

	_, err := st.AddPoint(owner, 0, 0.2, curve.Linear)
	require.NoError(t, err)
	s.Close()

	_, err = st.AddPoint(owner, 4, 0.8, curve.Linear)
	require.NoError(t, err)

	assert.Equal(t, 0.2, s.Value(owner, 4, 0), "the last snapshot stays frozen after Close")
}

func TestSampler_ConcurrentReadsDuringEdits(t *testing.T) {
	st, owner := newLane(t)
	s := New(st)
	defer s.Close()

	_, err := st.AddPoint(owner, 0, 0, curve.Linear)
	require.NoError(t, err)
	_, err = st.AddPoint(owner, 10, 1, curve.Linear)
	require.NoError(t, err)

	stop := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				v := s.Value(owner, 5, -1)
				// Whatever snapshot the read hits, the curve endpoints
				// pin the midpoint into [0, 1].
				assert.GreaterOrEqual(t, v, 0.0)
				assert.LessOrEqual(t, v, 1.0)
			}
		}()
	}

	// The edit thread keeps republishing while the readers sample.
	for i := 0; i < 500; i++ {
		_, err := st.AddPoint(owner, 5, float64(i%2), curve.Linear)
		require.NoError(t, err)
	}
	close(stop)
	wg.Wait()

	assert.GreaterOrEqual(t, s.Version(), int64(500))
}
