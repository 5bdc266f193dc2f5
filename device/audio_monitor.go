// Package device watches the audio output and reports when an external
// output such as headphones goes away, so playback can pause instead of
// falling back to the speakers.
package device

import (
	"context"
	"encoding/json"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yhkl-dev/PreviewCLI/logging"
)

type AudioDeviceType int

const (
	AudioDeviceUnknown    AudioDeviceType = iota
	AudioDeviceBuiltIn                    // Built-in speakers
	AudioDeviceBluetooth                  // Bluetooth audio device
	AudioDeviceUSB                        // USB audio device
	AudioDeviceHDMI                       // HDMI audio
	AudioDeviceHeadphones                 // Wired headphones
)

func (t AudioDeviceType) External() bool {
	switch t {
	case AudioDeviceBluetooth, AudioDeviceUSB, AudioDeviceHDMI, AudioDeviceHeadphones:
		return true
	}
	return false
}

type AudioDeviceInfo struct {
	Name       string
	DeviceType AudioDeviceType
	Transport  string
}

// Probe returns the current default output, or nil when it is unknown
type Probe func(ctx context.Context) *AudioDeviceInfo

type AudioMonitor struct {
	checkInterval time.Duration
	probe         Probe
	onDisconnect  func()
	log           logrus.FieldLogger
	last          *AudioDeviceInfo
}

// NewAudioMonitor returns a monitor calling onDisconnect when the output
// moves from an external device to anything else. A nil probe selects the
// platform probe; on platforms without one the monitor does nothing.
func NewAudioMonitor(probe Probe, onDisconnect func(), log logrus.FieldLogger) *AudioMonitor {
	if probe == nil && runtime.GOOS == "darwin" {
		probe = systemProfilerProbe
	}
	return &AudioMonitor{
		checkInterval: time.Second,
		probe:         probe,
		onDisconnect:  onDisconnect,
		log:           logging.OrDiscard(log).WithField("component", "device"),
	}
}

// Run polls the output device until ctx is done
func (m *AudioMonitor) Run(ctx context.Context) {
	if m.probe == nil {
		m.log.Info("audio monitor disabled: unsupported platform")
		return
	}

	m.last = m.probe(ctx)
	if m.last != nil {
		m.log.WithFields(logrus.Fields{"device": m.last.Name, "external": m.last.DeviceType.External()}).Info("initial audio device")
	}

	ticker := time.NewTicker(m.checkInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			m.check(ctx)
		case <-ctx.Done():
			m.log.Debug("audio monitor stopped")
			return
		}
	}
}

func (m *AudioMonitor) check(ctx context.Context) {
	current := m.probe(ctx)
	if current == nil {
		return
	}
	if disconnected(m.last, current) {
		m.log.WithFields(logrus.Fields{"from": m.last.Name, "to": current.Name}).Info("external audio output disconnected")
		if m.onDisconnect != nil {
			m.onDisconnect()
		}
	}
	m.last = current
}

func disconnected(prev, current *AudioDeviceInfo) bool {
	if prev == nil || !prev.DeviceType.External() {
		return false
	}
	return !deviceNameMatches(prev.Name, current.Name)
}

func systemProfilerProbe(ctx context.Context) *AudioDeviceInfo {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	output, err := exec.CommandContext(ctx, "system_profiler", "SPAudioDataType", "-json").Output()
	if err != nil {
		return nil
	}
	records, err := parseAudioDeviceRecords(output)
	if err != nil {
		return nil
	}
	return selectCurrentDevice(records)
}

type audioDeviceRecord struct {
	Name            string
	Transport       string
	IsDefaultOutput bool
	IsConnected     bool
}

func selectCurrentDevice(records []audioDeviceRecord) *AudioDeviceInfo {
	var fallback *AudioDeviceInfo
	for _, rec := range records {
		info := &AudioDeviceInfo{
			Name:       rec.Name,
			DeviceType: detectDeviceType(rec.Name, rec.Transport),
			Transport:  rec.Transport,
		}
		if rec.IsDefaultOutput && rec.IsConnected {
			return info
		}
		if fallback == nil && (rec.IsDefaultOutput || rec.IsConnected) {
			fallback = info
		}
	}
	return fallback
}

var nameHints = []struct {
	kind  AudioDeviceType
	words []string
}{
	{AudioDeviceBluetooth, []string{"bluetooth", "airpods", "beats", "bose", "jabra", "sennheiser", "jbl", "sony wh", "sony wf"}},
	{AudioDeviceBuiltIn, []string{"built-in", "internal", "macbook", "imac", "mac mini", "speakers"}},
	{AudioDeviceUSB, []string{"usb", "dac", "audio interface"}},
	{AudioDeviceHDMI, []string{"hdmi", "displayport", "display audio"}},
	{AudioDeviceHeadphones, []string{"headphone", "headset"}},
}

func detectDeviceType(name, transport string) AudioDeviceType {
	switch strings.ToLower(strings.TrimSpace(transport)) {
	case "bluetooth", "wireless", "ble", "coreaudio_device_type_bluetooth":
		return AudioDeviceBluetooth
	case "usb", "usb audio", "coreaudio_device_type_usb":
		return AudioDeviceUSB
	case "hdmi", "displayport", "thunderbolt", "coreaudio_device_type_hdmi":
		return AudioDeviceHDMI
	case "built-in", "internal", "coreaudio_device_type_builtin":
		return AudioDeviceBuiltIn
	case "headphone", "headset", "line out", "analog":
		return AudioDeviceHeadphones
	}

	lower := strings.ToLower(name)
	for _, hint := range nameHints {
		for _, w := range hint.words {
			if strings.Contains(lower, w) {
				return hint.kind
			}
		}
	}
	return AudioDeviceUnknown
}

func deviceNameMatches(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

func parseAudioDeviceRecords(data []byte) ([]audioDeviceRecord, error) {
	var root struct {
		Entries []struct {
			Items []map[string]any `json:"_items"`
		} `json:"SPAudioDataType"`
	}
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, err
	}

	var records []audioDeviceRecord
	for _, entry := range root.Entries {
		for _, item := range entry.Items {
			name := stringValue(item, "_name", "name")
			if name == "" {
				continue
			}
			_, isDefault := truthy(item,
				"coreaudio_default_audio_output_device",
				"coreaudio_device_is_default_output",
				"default_output_device",
			)
			found, isConnected := truthy(item,
				"coreaudio_device_is_alive",
				"device_is_connected",
				"connected",
			)
			records = append(records, audioDeviceRecord{
				Name:            name,
				Transport:       stringValue(item, "coreaudio_device_transport", "transport"),
				IsDefaultOutput: isDefault,
				IsConnected:     isConnected || !found,
			})
		}
	}
	return records, nil
}

func stringValue(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := m[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// truthy reports whether any key was present and whether its value was true.
// system_profiler uses strings like "spaudio_yes" as well as booleans.
func truthy(m map[string]any, keys ...string) (found, value bool) {
	for _, k := range keys {
		v, ok := m[k]
		if !ok {
			continue
		}
		switch t := v.(type) {
		case bool:
			return true, t
		case string:
			s := strings.ToLower(t)
			return true, s == "yes" || s == "true" || s == "1" || strings.HasSuffix(s, "_yes")
		}
	}
	return false, false
}
