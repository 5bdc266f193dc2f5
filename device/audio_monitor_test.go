package device

import (
	"context"
	"testing"
)

const profilerJSON = `{
  "SPAudioDataType": [
    {
      "_name": "Devices",
      "_items": [
        {
          "_name": "MacBook Pro Speakers",
          "coreaudio_device_transport": "coreaudio_device_type_builtin"
        },
        {
          "_name": "AirPods Pro",
          "coreaudio_device_transport": "coreaudio_device_type_bluetooth",
          "coreaudio_default_audio_output_device": "spaudio_yes"
        },
        {
          "coreaudio_device_transport": "coreaudio_device_type_usb"
        }
      ]
    }
  ]
}`

func TestParseAudioDeviceRecords(t *testing.T) {
	records, err := parseAudioDeviceRecords([]byte(profilerJSON))
	if err != nil {
		t.Fatalf("parse returned error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("Expected 2 named devices, got %d", len(records))
	}
	if records[0].IsDefaultOutput || !records[1].IsDefaultOutput {
		t.Errorf("Default output flags wrong: %+v", records)
	}

	current := selectCurrentDevice(records)
	if current == nil || current.Name != "AirPods Pro" {
		t.Fatalf("Expected AirPods as current device, got %+v", current)
	}
	if current.DeviceType != AudioDeviceBluetooth || !current.DeviceType.External() {
		t.Errorf("Expected external bluetooth device, got %v", current.DeviceType)
	}
}

func TestParseAudioDeviceRecordsInvalid(t *testing.T) {
	if _, err := parseAudioDeviceRecords([]byte("not json")); err == nil {
		t.Errorf("Expected error for invalid JSON")
	}
}

func TestDetectDeviceType(t *testing.T) {
	cases := []struct {
		name, transport string
		want            AudioDeviceType
	}{
		{"MacBook Pro Speakers", "", AudioDeviceBuiltIn},
		{"Something", "bluetooth", AudioDeviceBluetooth},
		{"Bose QC45", "", AudioDeviceBluetooth},
		{"External Headphones", "", AudioDeviceHeadphones},
		{"LG HDMI", "", AudioDeviceHDMI},
		{"Mystery", "", AudioDeviceUnknown},
	}
	for _, tc := range cases {
		if got := detectDeviceType(tc.name, tc.transport); got != tc.want {
			t.Errorf("detectDeviceType(%q, %q) = %v, want %v", tc.name, tc.transport, got, tc.want)
		}
	}
}

func TestCheckCallsOnDisconnect(t *testing.T) {
	devices := []*AudioDeviceInfo{
		{Name: "AirPods Pro", DeviceType: AudioDeviceBluetooth},
		{Name: "AirPods Pro", DeviceType: AudioDeviceBluetooth},
		nil,
		{Name: "MacBook Pro Speakers", DeviceType: AudioDeviceBuiltIn},
		{Name: "AirPods Pro", DeviceType: AudioDeviceBluetooth},
	}
	step := 0
	probe := func(ctx context.Context) *AudioDeviceInfo {
		d := devices[step]
		step++
		return d
	}

	calls := 0
	m := NewAudioMonitor(probe, func() { calls++ }, nil)
	m.last = probe(context.Background())
	for range devices[1:] {
		m.check(context.Background())
	}

	if calls != 1 {
		t.Errorf("Expected exactly one disconnect, got %d", calls)
	}
}

func TestRunWithoutProbeReturns(t *testing.T) {
	m := NewAudioMonitor(nil, nil, nil)
	m.probe = nil
	m.Run(context.Background())
}
