package mpvplayer

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/wildeyedskies/go-mpv/mpv"
)

// Reply userdata for observed properties, echoed back on property events
const (
	ObserveTimePos uint64 = iota + 1
	ObserveDuration
)

type Mpvplayer struct {
	*mpv.Mpv
	EventChannel chan *mpv.Event

	mu sync.Mutex
	// loads counts loadfile commands; started is the value loads had when
	// mpv last reported a file start
	loads   uint64
	started uint64
}

func (m *Mpvplayer) GetProgress() (float64, error) {
	pos, err := m.GetProperty("time-pos", mpv.FORMAT_DOUBLE)
	if err != nil {
		return 0, err
	}
	v, ok := pos.(float64)
	if !ok {
		return 0, fmt.Errorf("time-pos: unexpected type %T", pos)
	}
	return v, nil
}

func (m *Mpvplayer) GetDuration() (float64, error) {
	duration, err := m.GetProperty("duration", mpv.FORMAT_DOUBLE)
	if err != nil {
		return 0, err
	}
	v, ok := duration.(float64)
	if !ok {
		return 0, fmt.Errorf("duration: unexpected type %T", duration)
	}
	return v, nil
}

// Load replaces the current file with playURL and leaves it paused
func (m *Mpvplayer) Load(playURL string) error {
	if err := m.SetPaused(true); err != nil {
		return err
	}
	m.beginLoad()
	if err := m.Command([]string{"loadfile", playURL, "replace"}); err != nil {
		m.abortLoad()
		return err
	}
	return nil
}

func (m *Mpvplayer) beginLoad() {
	m.mu.Lock()
	m.loads++
	m.mu.Unlock()
}

func (m *Mpvplayer) abortLoad() {
	m.mu.Lock()
	m.loads--
	m.mu.Unlock()
}

// MarkStarted records that mpv began playing the most recently loaded file
func (m *Mpvplayer) MarkStarted() {
	m.mu.Lock()
	m.started = m.loads
	m.mu.Unlock()
}

// EndedCurrent reports whether an end-file event means the current file
// played out. Replaced or stopped files do not count, and neither does a
// file that ended before a newer load was issued.
func (m *Mpvplayer) EndedCurrent(reason mpv.EndFileReason) bool {
	if reason != mpv.END_FILE_REASON_EOF && reason != mpv.END_FILE_REASON_ERROR {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.started == m.loads
}

func (m *Mpvplayer) SeekAbsolute(seconds float64) error {
	return m.Command([]string{"seek", strconv.FormatFloat(seconds, 'f', 3, 64), "absolute"})
}

func (m *Mpvplayer) SetPaused(paused bool) error {
	value := "no"
	if paused {
		value = "yes"
	}
	return m.SetPropertyString("pause", value)
}

// CreateMPVInstance starts an audio-only libmpv instance that stays alive
// between files and reports position and duration changes.
func CreateMPVInstance() (*mpv.Mpv, error) {
	mpvInstance := mpv.Create()

	mpvInstance.SetOptionString("audio-display", "no")
	mpvInstance.SetOptionString("video", "no")
	mpvInstance.SetOptionString("idle", "yes")
	mpvInstance.SetOptionString("terminal", "no")

	err := mpvInstance.Initialize()
	if err != nil {
		mpvInstance.TerminateDestroy()
		return nil, err
	}

	if err := mpvInstance.ObserveProperty(ObserveTimePos, "time-pos", mpv.FORMAT_DOUBLE); err != nil {
		mpvInstance.TerminateDestroy()
		return nil, fmt.Errorf("observe time-pos: %w", err)
	}
	if err := mpvInstance.ObserveProperty(ObserveDuration, "duration", mpv.FORMAT_DOUBLE); err != nil {
		mpvInstance.TerminateDestroy()
		return nil, fmt.Errorf("observe duration: %w", err)
	}
	return mpvInstance, nil
}
