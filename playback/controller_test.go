package playback

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/yhkl-dev/PreviewCLI/domain"
	"github.com/yhkl-dev/PreviewCLI/metrics"
	"github.com/yhkl-dev/PreviewCLI/player"
	"github.com/yhkl-dev/PreviewCLI/player/playertest"
)

func makeTracks(n int) []domain.Track {
	tracks := make([]domain.Track, n)
	for i := range tracks {
		tracks[i] = domain.Track{
			ID:         fmt.Sprintf("%d", i+1),
			Title:      fmt.Sprintf("Song %d", i+1),
			Artist:     "Artist",
			PreviewURL: fmt.Sprintf("https://p/%d.m4a", i+1),
		}
	}
	return tracks
}

func newController(t *testing.T, n int, opts ...Option) (*Controller, *playertest.Fake) {
	t.Helper()
	fake := playertest.New()
	c := NewController(fake, opts...)
	if n > 0 {
		c.LoadList(makeTracks(n))
	}
	return c, fake
}

func TestNewControllerIsEmpty(t *testing.T) {
	c, _ := newController(t, 0)
	s := c.State()
	if s.Status != domain.StatusEmpty || s.Index != -1 || s.Track != nil {
		t.Errorf("Expected empty state, got %+v", s)
	}
	if s.Duration != domain.DefaultPreviewDuration {
		t.Errorf("Expected default duration, got %v", s.Duration)
	}
}

func TestLoadListAutoplaysFirstTrack(t *testing.T) {
	c, fake := newController(t, 3)

	s := c.State()
	if s.Index != 0 || s.Status != domain.StatusPlaying {
		t.Fatalf("Expected first track playing, got index %d status %s", s.Index, s.Status)
	}
	if fake.Source != "https://p/1.m4a" {
		t.Errorf("Expected first preview loaded, got %q", fake.Source)
	}
	if s.Length != 3 {
		t.Errorf("Expected length 3, got %d", s.Length)
	}
}

func TestLoadListAutoplayBlocked(t *testing.T) {
	fake := playertest.New()
	fake.PlayErr = errors.New("autoplay not allowed")
	c := NewController(fake)
	c.LoadList(makeTracks(2))

	s := c.State()
	if s.Index != 0 || s.Status != domain.StatusStopped {
		t.Errorf("Expected first track selected but stopped, got %+v", s)
	}
}

func TestLoadEmptyListClearsSelection(t *testing.T) {
	c, fake := newController(t, 3)
	c.LoadList(nil)

	s := c.State()
	if s.Status != domain.StatusEmpty || s.Index != -1 {
		t.Errorf("Expected empty state, got %+v", s)
	}
	if fake.IsPlaying() {
		t.Errorf("Resource should be paused after an empty list")
	}
	if fake.Subscribers() != 0 {
		t.Errorf("Expected no listeners, got %d", fake.Subscribers())
	}
}

func TestLoadListCopiesInput(t *testing.T) {
	tracks := makeTracks(2)
	c, _ := newController(t, 0)
	c.LoadList(tracks)
	tracks[0].Title = "changed"

	if got := c.State().Track.Title; got != "Song 1" {
		t.Errorf("Controller list must not alias caller slice, got %q", got)
	}
}

func TestNextAndPreviousBoundaries(t *testing.T) {
	c, fake := newController(t, 3)

	if c.Previous() {
		t.Errorf("Previous on first track should be a no-op")
	}
	if c.State().Index != 0 || fake.LoadCount() != 1 {
		t.Errorf("Previous on first track must not reload")
	}

	if !c.Next() || !c.Next() {
		t.Fatalf("Next should move forward twice")
	}
	if c.State().Index != 2 {
		t.Fatalf("Expected index 2, got %d", c.State().Index)
	}

	if c.Next() {
		t.Errorf("Next on last track should be a no-op")
	}
	if c.State().Index != 2 || fake.LoadCount() != 3 {
		t.Errorf("Next on last track must not reload, loads=%d", fake.LoadCount())
	}

	if !c.Previous() || c.State().Index != 1 {
		t.Errorf("Previous should move back to index 1")
	}
}

func TestNextOnEmptyList(t *testing.T) {
	c, _ := newController(t, 0)
	if c.Next() || c.Previous() {
		t.Errorf("Navigation on empty list should be a no-op")
	}
}

func TestTrackChangeResetsPosition(t *testing.T) {
	c, fake := newController(t, 3)
	fake.Emit(player.Event{Kind: player.EventPosition, Value: 12 * time.Second})
	fake.Emit(player.Event{Kind: player.EventDuration, Value: 29 * time.Second})

	if c.State().Position != 12*time.Second {
		t.Fatalf("Expected position 12s, got %v", c.State().Position)
	}

	c.Next()
	s := c.State()
	if s.Position != 0 {
		t.Errorf("Expected position reset to 0, got %v", s.Position)
	}
	if s.Duration != domain.DefaultPreviewDuration {
		t.Errorf("Expected default duration, got %v", s.Duration)
	}
}

func TestSelectIndex(t *testing.T) {
	c, fake := newController(t, 5)

	if err := c.SelectIndex(3); err != nil {
		t.Fatalf("SelectIndex returned error: %v", err)
	}
	if c.State().Index != 3 || fake.Source != "https://p/4.m4a" {
		t.Errorf("Expected track 4 loaded, got index %d source %q", c.State().Index, fake.Source)
	}

	for _, i := range []int{-1, 5} {
		if err := c.SelectIndex(i); !errors.Is(err, ErrIndexOutOfRange) {
			t.Errorf("SelectIndex(%d): expected ErrIndexOutOfRange, got %v", i, err)
		}
	}
	if c.State().Index != 3 {
		t.Errorf("Failed selection must not move the index")
	}
}

func TestToggleParity(t *testing.T) {
	c, fake := newController(t, 2)
	before := c.State().Status

	for i := 1; i <= 4; i++ {
		if err := c.TogglePlayPause(); err != nil {
			t.Fatalf("Toggle %d returned error: %v", i, err)
		}
		playing := c.State().IsPlaying()
		if fake.IsPlaying() != playing {
			t.Errorf("Toggle %d: resource and controller disagree", i)
		}
		if (i%2 == 0) != (c.State().Status == before) {
			t.Errorf("Toggle %d: unexpected status %s", i, c.State().Status)
		}
	}
}

func TestToggleWithoutTrack(t *testing.T) {
	c, _ := newController(t, 0)
	if err := c.TogglePlayPause(); !errors.Is(err, ErrNoTrack) {
		t.Errorf("Expected ErrNoTrack, got %v", err)
	}
}

func TestToggleFailureKeepsStatus(t *testing.T) {
	c, fake := newController(t, 1)
	fake.PauseErr = errors.New("device busy")

	if err := c.TogglePlayPause(); err == nil {
		t.Fatalf("Expected pause error to surface")
	}
	if !c.State().IsPlaying() {
		t.Errorf("Status must not change when the resource refuses")
	}
}

func TestSeek(t *testing.T) {
	c, fake := newController(t, 1)

	if err := c.Seek(-3 * time.Second); err != nil {
		t.Fatalf("Seek returned error: %v", err)
	}
	if got := fake.Seeks[len(fake.Seeks)-1]; got != 0 {
		t.Errorf("Negative seek should target 0, got %v", got)
	}

	if err := c.Seek(10 * time.Second); err != nil {
		t.Fatalf("Seek returned error: %v", err)
	}
	if c.State().Position != 10*time.Second {
		t.Errorf("Expected mirrored position 10s, got %v", c.State().Position)
	}

	c.Seek(time.Minute)
	if c.State().Position != c.State().Duration {
		t.Errorf("Position past the end should clamp to duration, got %v", c.State().Position)
	}

	c.Seek(10 * time.Second)
	c.SeekBy(5 * time.Second)
	if got := fake.Seeks[len(fake.Seeks)-1]; got != 15*time.Second {
		t.Errorf("SeekBy should target 15s, got %v", got)
	}
}

func TestSeekWithoutTrack(t *testing.T) {
	c, _ := newController(t, 0)
	if err := c.Seek(time.Second); !errors.Is(err, ErrNoTrack) {
		t.Errorf("Expected ErrNoTrack, got %v", err)
	}
}

func TestSingleListenerAcrossTrackChanges(t *testing.T) {
	c, fake := newController(t, 4)
	c.Next()
	c.Next()
	c.SelectIndex(0)
	c.LoadList(makeTracks(2))

	if n := fake.Subscribers(); n != 1 {
		t.Errorf("Expected exactly one listener, got %d", n)
	}
}

func TestStaleEventsAreIgnored(t *testing.T) {
	fake := playertest.New()
	c := NewController(fake)
	c.LoadList(makeTracks(3))

	var stale player.Listener
	unsubscribe := fake.Subscribe(func(ev player.Event) { stale(ev) })
	defer unsubscribe()
	staleID := c.binding
	stale = func(ev player.Event) { c.handleEvent(staleID, ev) }

	c.Next()
	fake.Emit(player.Event{Kind: player.EventEnded})

	// the live binding advanced once; the stale one must not add a second step
	if got := c.State().Index; got != 2 {
		t.Fatalf("Expected index 2 after a single end-of-track, got %d", got)
	}

	c.handleEvent(staleID, player.Event{Kind: player.EventPosition, Value: 20 * time.Second})
	if c.State().Position != 0 {
		t.Errorf("Stale position event changed state")
	}
}

func TestEndOfTrackAdvances(t *testing.T) {
	c, fake := newController(t, 3)

	fake.Emit(player.Event{Kind: player.EventEnded})
	s := c.State()
	if s.Index != 1 || s.Status != domain.StatusPlaying {
		t.Errorf("Expected advance to track 2 playing, got %+v", s)
	}
	if fake.Source != "https://p/2.m4a" {
		t.Errorf("Expected second preview loaded, got %q", fake.Source)
	}
}

func TestEndOfLastTrackStops(t *testing.T) {
	c, fake := newController(t, 2)
	c.Next()

	fake.Emit(player.Event{Kind: player.EventEnded})
	s := c.State()
	if s.Index != 1 || s.Status != domain.StatusStopped {
		t.Errorf("Expected stop on last track, got %+v", s)
	}
	if s.Position != s.Duration {
		t.Errorf("Expected position at end, got %v", s.Position)
	}
}

func TestEndStopPolicy(t *testing.T) {
	c, fake := newController(t, 3, WithEndPolicy(EndStop))

	fake.Emit(player.Event{Kind: player.EventEnded})
	s := c.State()
	if s.Index != 0 || s.Status != domain.StatusStopped {
		t.Errorf("Expected stop on first track, got %+v", s)
	}
}

func TestLoadFailureLeavesTrackSelected(t *testing.T) {
	fake := playertest.New()
	c := NewController(fake)
	fake.LoadErr = errors.New("unreachable")
	c.LoadList(makeTracks(2))

	s := c.State()
	if s.Index != 0 || s.Status != domain.StatusStopped {
		t.Errorf("Expected selected but stopped, got %+v", s)
	}
	if fake.Subscribers() != 0 {
		t.Errorf("No listener should be attached to a failed source")
	}

	fake.LoadErr = nil
	if !c.Next() || fake.Subscribers() != 1 {
		t.Errorf("Next should recover once the source loads")
	}
}

func TestDurationEvents(t *testing.T) {
	c, fake := newController(t, 1)

	fake.Emit(player.Event{Kind: player.EventDuration, Value: 0})
	if c.State().Duration != domain.DefaultPreviewDuration {
		t.Errorf("Zero duration must be ignored")
	}
	fake.Emit(player.Event{Kind: player.EventDuration, Value: 29500 * time.Millisecond})
	if c.State().Duration != 29500*time.Millisecond {
		t.Errorf("Expected reported duration, got %v", c.State().Duration)
	}
}

func TestSubscribeReceivesChanges(t *testing.T) {
	c, fake := newController(t, 0)

	var kinds []ChangeKind
	unsubscribe := c.Subscribe(func(ch Change) {
		kinds = append(kinds, ch.Kind)
		// callbacks run outside the lock
		_ = c.State()
	})

	c.LoadList(makeTracks(2))
	if len(kinds) == 0 || kinds[0] != ListChanged {
		t.Fatalf("Expected ListChanged first, got %v", kinds)
	}

	kinds = nil
	fake.Emit(player.Event{Kind: player.EventPosition, Value: time.Second})
	if len(kinds) != 1 || kinds[0] != PositionChanged {
		t.Errorf("Expected one PositionChanged, got %v", kinds)
	}

	unsubscribe()
	kinds = nil
	c.Next()
	if len(kinds) != 0 {
		t.Errorf("Unsubscribed callback still called: %v", kinds)
	}
}

func TestCloseDetaches(t *testing.T) {
	c, fake := newController(t, 2)
	c.Close()

	if fake.Subscribers() != 0 || fake.IsPlaying() {
		t.Errorf("Close should detach and pause")
	}
	fake.Emit(player.Event{Kind: player.EventEnded})
	if c.State().Index != 0 {
		t.Errorf("Events after Close must be ignored")
	}
}

func TestCloseLogsPauseFailure(t *testing.T) {
	log, hook := logtest.NewNullLogger()
	c, fake := newController(t, 1, WithLogger(log))
	fake.PauseErr = errors.New("device gone")
	c.Close()

	entry := hook.LastEntry()
	if entry == nil || entry.Level != logrus.WarnLevel || entry.Data[logrus.ErrorKey] != fake.PauseErr {
		t.Errorf("Pause failure on Close should be logged, got %+v", entry)
	}
	if c.State().IsPlaying() {
		t.Errorf("Controller should report stopped after Close")
	}
}

func TestTransportMetrics(t *testing.T) {
	m := metrics.New()
	c, _ := newController(t, 3, WithMetrics(m))
	c.Next()
	c.Next()
	c.Next()

	if got := testutil.ToFloat64(m.TransportActions.WithLabelValues("next")); got != 2 {
		t.Errorf("Expected 2 next actions, got %v", got)
	}
	if got := testutil.ToFloat64(m.PreviewsStarted); got != 3 {
		t.Errorf("Expected 3 previews started, got %v", got)
	}
}

func TestParseEndPolicy(t *testing.T) {
	cases := map[string]EndPolicy{"": EndAdvance, "advance": EndAdvance, "stop": EndStop}
	for in, want := range cases {
		got, err := ParseEndPolicy(in)
		if err != nil || got != want {
			t.Errorf("ParseEndPolicy(%q) = %v, %v", in, got, err)
		}
	}
	_, err := ParseEndPolicy("loop")
	if err == nil || err.Error() != `unknown end-of-track policy "loop"` {
		t.Errorf("Expected error naming the policy, got %v", err)
	}
}
