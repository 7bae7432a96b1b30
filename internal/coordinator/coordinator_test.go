package coordinator_test

import (
	"strings"
	"sync"
	"testing"

	"btvol/internal/audio"
	"btvol/internal/coordinator"
	"btvol/internal/devstore"
	"btvol/internal/logging"
	"btvol/internal/testsupport"
	"btvol/internal/transport"
	"btvol/internal/volume"
)

const (
	addrHeadset = "AA:BB:CC:DD:EE:FF"
	addrSpeaker = "11:22:33:44:55:66"
)

type fakeSystem struct {
	mu        sync.Mutex
	level     int
	showUI    []bool
	behaviors map[string]audio.Behavior
}

func newFakeSystem() *fakeSystem {
	return &fakeSystem{behaviors: make(map[string]audio.Behavior)}
}

func (f *fakeSystem) MaxVolume() int { return 15 }
func (f *fakeSystem) MinVolume() int { return 0 }

func (f *fakeSystem) CurrentVolume() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.level
}

func (f *fakeSystem) SetVolume(level int, showUI bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.level = level
	f.showUI = append(f.showUI, showUI)
	return nil
}

func (f *fakeSystem) SetDeviceVolumeBehavior(address string, behavior audio.Behavior) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.behaviors[address] = behavior
	return nil
}

func (f *fakeSystem) behavior(address string) (audio.Behavior, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	behavior, ok := f.behaviors[address]
	return behavior, ok
}

type fakeTransport struct {
	mu   sync.Mutex
	msgs []transport.Message
}

func (f *fakeTransport) SendVolumeChanged(address string, protocolVolume int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = append(f.msgs, transport.Message{Address: address, Volume: protocolVolume})
	return nil
}

func (f *fakeTransport) messages() []transport.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]transport.Message(nil), f.msgs...)
}

func mustRange(t *testing.T) volume.Range {
	t.Helper()
	rng, err := volume.NewRange(0, 15)
	if err != nil {
		t.Fatalf("NewRange: %v", err)
	}
	return rng
}

func newCoordinator(t *testing.T) (*coordinator.Coordinator, *fakeSystem, *fakeTransport, *devstore.Store) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	system := newFakeSystem()
	sender := &fakeTransport{}
	c := coordinator.New(mustRange(t), store, system, sender, logging.NewNop())
	return c, system, sender, store
}

func TestConnectActivateConfirmSendsExactlyOneRealignment(t *testing.T) {
	c, system, sender, _ := newCoordinator(t)

	c.DeviceConnected(addrHeadset, "WH-1000XM4", true)
	c.SetActiveDevice(addrHeadset)
	c.AudioOutputsChanged([]string{addrHeadset})

	msgs := sender.messages()
	if len(msgs) != 1 {
		t.Fatalf("expected exactly 1 volume message, got %d: %v", len(msgs), msgs)
	}
	// Default volume is 15/2 = 7, which is protocol ceil(7*127/15) = 60.
	if msgs[0].Address != addrHeadset || msgs[0].Volume != 60 {
		t.Fatalf("unexpected message: %+v", msgs[0])
	}
	if behavior, ok := system.behavior(addrHeadset); !ok || behavior != audio.BehaviorHostControlled {
		t.Fatalf("behavior = %v, %v; want host-controlled", behavior, ok)
	}
}

func TestFirstConnectionRecordsName(t *testing.T) {
	c, _, _, store := newCoordinator(t)

	c.DeviceConnected(addrHeadset, "WH-1000XM4", true)

	if name := store.Name(addrHeadset); name != "WH-1000XM4" {
		t.Fatalf("stored name = %q, want WH-1000XM4", name)
	}
	devices := c.Snapshot().Devices
	if len(devices) != 1 || devices[0].Name != "WH-1000XM4" {
		t.Fatalf("snapshot devices = %+v", devices)
	}
}

func TestIntentWithoutConfirmationHasNoSideEffects(t *testing.T) {
	c, system, sender, _ := newCoordinator(t)

	c.DeviceConnected(addrHeadset, "WH-1000XM4", true)
	c.SetActiveDevice(addrHeadset)

	if msgs := sender.messages(); len(msgs) != 0 {
		t.Fatalf("unexpected messages before confirmation: %v", msgs)
	}
	if _, ok := system.behavior(addrHeadset); ok {
		t.Fatal("routing behavior applied before confirmation")
	}
}

func TestConfirmationBeforeCapabilityDefersUntilConnect(t *testing.T) {
	c, _, sender, _ := newCoordinator(t)

	c.SetActiveDevice(addrHeadset)
	c.AudioOutputsChanged([]string{addrHeadset})
	if msgs := sender.messages(); len(msgs) != 0 {
		t.Fatalf("switch ran without capability entry: %v", msgs)
	}

	// The late capability report completes the deferred switch.
	c.DeviceConnected(addrHeadset, "WH-1000XM4", true)
	if msgs := sender.messages(); len(msgs) != 1 {
		t.Fatalf("expected deferred switch to send 1 message, got %v", msgs)
	}
	if state := c.Snapshot().RouteState; state != "confirmed" {
		t.Fatalf("route state after deferred switch = %q", state)
	}
}

func TestConfirmationForOtherDeviceIgnored(t *testing.T) {
	c, _, sender, _ := newCoordinator(t)

	c.DeviceConnected(addrHeadset, "WH-1000XM4", true)
	c.SetActiveDevice(addrHeadset)
	c.AudioOutputsChanged([]string{addrSpeaker})

	if msgs := sender.messages(); len(msgs) != 0 {
		t.Fatalf("unexpected messages: %v", msgs)
	}
}

func TestVolumeSurvivesDisconnectAndReconnect(t *testing.T) {
	c, _, sender, _ := newCoordinator(t)

	c.DeviceConnected(addrHeadset, "WH-1000XM4", true)
	c.SetVolume(addrHeadset, 100) // floor(100*15/127) = 11

	c.DeviceDisconnected(addrHeadset)
	if c.AbsoluteVolumeSupported(addrHeadset) {
		t.Fatal("capability survived disconnect")
	}

	c.DeviceConnected(addrHeadset, "WH-1000XM4", true)
	c.SetActiveDevice(addrHeadset)
	c.AudioOutputsChanged([]string{addrHeadset})

	msgs := sender.messages()
	if len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %v", msgs)
	}
	// Stored system volume 11 realigns as protocol ceil(11*127/15) = 94.
	if msgs[0].Volume != 94 {
		t.Fatalf("realigned volume = %d, want 94", msgs[0].Volume)
	}
}

func TestForgetRemovesRecordDurably(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store, err := devstore.Open(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	system := newFakeSystem()
	sender := &fakeTransport{}
	c := coordinator.New(mustRange(t), store, system, sender, logging.NewNop())

	c.DeviceConnected(addrHeadset, "WH-1000XM4", true)
	c.SetVolume(addrHeadset, 80)
	c.DeviceDisconnected(addrHeadset)
	c.Forget(addrHeadset)

	store.Flush()
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened := testsupport.MustOpenStore(t, cfg)
	if _, ok := reopened.Volume(addrHeadset); ok {
		t.Fatal("forgotten device resurrected by reload")
	}
}

func TestDuplicateNotificationShortCircuits(t *testing.T) {
	c, _, sender, _ := newCoordinator(t)

	c.SendVolumeChanged(addrHeadset, 9)
	c.SendVolumeChanged(addrHeadset, 9)

	if msgs := sender.messages(); len(msgs) != 1 {
		t.Fatalf("expected exactly 1 message, got %d", len(msgs))
	}
}

func TestSetVolumeShowsUIOnlyOnChange(t *testing.T) {
	c, system, _, _ := newCoordinator(t)

	c.DeviceConnected(addrHeadset, "WH-1000XM4", true) // seeds stored volume 7
	c.SetVolume(addrHeadset, 60)                       // floor(60*15/127) = 7, unchanged
	c.SetVolume(addrHeadset, 127)                      // 15, changed

	if len(system.showUI) != 2 {
		t.Fatalf("expected 2 SetVolume calls, got %d", len(system.showUI))
	}
	if system.showUI[0] {
		t.Error("UI shown for unchanged volume")
	}
	if !system.showUI[1] {
		t.Error("UI not shown for changed volume")
	}
	if system.CurrentVolume() != 15 {
		t.Errorf("level = %d, want 15", system.CurrentVolume())
	}
}

func TestVariableDeviceSwitchSendsNoMessage(t *testing.T) {
	c, system, sender, _ := newCoordinator(t)

	c.DeviceConnected(addrSpeaker, "Car Stereo", false)
	c.SetActiveDevice(addrSpeaker)
	c.AudioOutputsChanged([]string{addrSpeaker})

	if msgs := sender.messages(); len(msgs) != 0 {
		t.Fatalf("variable-volume device received messages: %v", msgs)
	}
	if behavior, ok := system.behavior(addrSpeaker); !ok || behavior != audio.BehaviorLocallyVariable {
		t.Fatalf("behavior = %v, %v; want locally-variable", behavior, ok)
	}
}

func TestRepeatedIntentIsNoOp(t *testing.T) {
	c, _, _, _ := newCoordinator(t)

	c.SetActiveDevice(addrHeadset)
	c.SetActiveDevice(addrHeadset)

	requests := 0
	for _, event := range c.Snapshot().Events {
		if strings.Contains(event, "active device request") {
			requests++
		}
	}
	if requests != 1 {
		t.Fatalf("expected 1 intent event, got %d", requests)
	}
}

func TestClearingIntentIgnoresLaterConfirmations(t *testing.T) {
	c, _, sender, _ := newCoordinator(t)

	c.DeviceConnected(addrHeadset, "WH-1000XM4", true)
	c.SetActiveDevice(addrHeadset)
	c.SetActiveDevice("")
	c.AudioOutputsChanged([]string{addrHeadset})

	if msgs := sender.messages(); len(msgs) != 0 {
		t.Fatalf("cleared intent still acted on confirmation: %v", msgs)
	}
}

func TestSnapshotAndDump(t *testing.T) {
	c, _, _, _ := newCoordinator(t)

	c.DeviceConnected(addrHeadset, "WH-1000XM4", true)
	c.DeviceConnected(addrSpeaker, "A name well over fourteen runes", false)
	c.DeviceDisconnected(addrSpeaker)
	c.SetActiveDevice(addrHeadset)
	c.AudioOutputsChanged([]string{addrHeadset})

	snapshot := c.Snapshot()
	if snapshot.ActiveDevice != addrHeadset {
		t.Fatalf("active device = %q", snapshot.ActiveDevice)
	}
	if snapshot.RouteState != "confirmed" {
		t.Fatalf("route state = %q", snapshot.RouteState)
	}
	if len(snapshot.Devices) != 2 {
		t.Fatalf("device rows = %d", len(snapshot.Devices))
	}
	for _, device := range snapshot.Devices {
		switch device.Address {
		case addrHeadset:
			if device.Capability != "true" {
				t.Errorf("headset capability = %q", device.Capability)
			}
		case addrSpeaker:
			if device.Capability != "NotConnected" {
				t.Errorf("disconnected capability = %q", device.Capability)
			}
		}
	}

	dump := c.Dump()
	if !strings.Contains(dump, "Device Address") || !strings.Contains(dump, "AbsVol") {
		t.Fatalf("dump missing table header:\n%s", dump)
	}
	if !strings.Contains(dump, "A name well...") {
		t.Fatalf("dump does not truncate long names:\n%s", dump)
	}
	if !strings.Contains(dump, "Volume Events:") {
		t.Fatalf("dump missing event log:\n%s", dump)
	}
}
