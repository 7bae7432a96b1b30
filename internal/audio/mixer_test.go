package audio_test

import (
	"testing"

	"btvol/internal/audio"
	"btvol/internal/logging"
	"btvol/internal/testsupport"
)

type recordingListener struct {
	calls [][]string
}

func (l *recordingListener) AudioOutputsChanged(addresses []string) {
	l.calls = append(l.calls, addresses)
}

func newMixer(t *testing.T) *audio.Mixer {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	return audio.NewMixer(cfg, logging.NewNop())
}

func TestMixerStartsAtHalfScale(t *testing.T) {
	mixer := newMixer(t)
	if got := mixer.CurrentVolume(); got != 7 {
		t.Fatalf("CurrentVolume = %d, want 7", got)
	}
}

func TestSetVolumeRejectsOutOfRange(t *testing.T) {
	mixer := newMixer(t)
	if err := mixer.SetVolume(-1, false); err == nil {
		t.Fatal("expected error for level below min")
	}
	if err := mixer.SetVolume(16, false); err == nil {
		t.Fatal("expected error for level above max")
	}
	if err := mixer.SetVolume(15, true); err != nil {
		t.Fatalf("SetVolume(15): %v", err)
	}
	if got := mixer.CurrentVolume(); got != 15 {
		t.Fatalf("CurrentVolume = %d, want 15", got)
	}
}

func TestSetActiveOutputsNotifiesListeners(t *testing.T) {
	mixer := newMixer(t)
	listener := &recordingListener{}
	mixer.Subscribe(listener)

	mixer.SetActiveOutputs([]string{"AA:BB:CC:DD:EE:FF"})

	if len(listener.calls) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(listener.calls))
	}
	if got := listener.calls[0]; len(got) != 1 || got[0] != "AA:BB:CC:DD:EE:FF" {
		t.Fatalf("unexpected addresses: %v", got)
	}
	if outputs := mixer.ActiveOutputs(); len(outputs) != 1 {
		t.Fatalf("ActiveOutputs = %v", outputs)
	}
}

func TestDeviceVolumeBehaviorRoundTrip(t *testing.T) {
	mixer := newMixer(t)
	if _, ok := mixer.DeviceVolumeBehavior("AA:BB:CC:DD:EE:FF"); ok {
		t.Fatal("expected no behavior before set")
	}
	if err := mixer.SetDeviceVolumeBehavior("AA:BB:CC:DD:EE:FF", audio.BehaviorHostControlled); err != nil {
		t.Fatalf("SetDeviceVolumeBehavior: %v", err)
	}
	behavior, ok := mixer.DeviceVolumeBehavior("AA:BB:CC:DD:EE:FF")
	if !ok || behavior != audio.BehaviorHostControlled {
		t.Fatalf("behavior = %v, %v", behavior, ok)
	}
}

func TestBehaviorString(t *testing.T) {
	if audio.BehaviorHostControlled.String() != "host-controlled" {
		t.Fatal("unexpected host-controlled label")
	}
	if audio.BehaviorLocallyVariable.String() != "locally-variable" {
		t.Fatal("unexpected locally-variable label")
	}
}
