package coordinator

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"btvol/internal/textutil"
)

const displayNameWidth = 14

// DeviceInfo is one row of the diagnostic device table.
type DeviceInfo struct {
	Address    string `json:"address"`
	Name       string `json:"name"`
	Volume     int    `json:"volume"`
	Capability string `json:"capability"`
}

// Snapshot is a point-in-time view of coordinator state for diagnostics.
type Snapshot struct {
	ActiveDevice string       `json:"active_device"`
	RouteState   string       `json:"route_state"`
	SystemVolume int          `json:"system_volume"`
	Devices      []DeviceInfo `json:"devices"`
	Events       []string     `json:"events"`
}

// Snapshot captures the active route, current system volume, the per-device
// table, and the recent volume events.
func (c *Coordinator) Snapshot() Snapshot {
	c.mu.Lock()
	target := c.target
	state := c.state.String()
	capability := func(address string) string {
		if absolute, ok := c.caps[address]; ok {
			return strconv.FormatBool(absolute)
		}
		return "NotConnected"
	}
	records := c.store.All()
	devices := make([]DeviceInfo, 0, len(records))
	for address, record := range records {
		devices = append(devices, DeviceInfo{
			Address:    address,
			Name:       record.Name,
			Volume:     record.Volume,
			Capability: capability(address),
		})
	}
	c.mu.Unlock()

	names := make([]string, 0, len(devices))
	byName := make(map[string][]DeviceInfo, len(devices))
	for _, device := range devices {
		if _, ok := byName[device.Name]; !ok {
			names = append(names, device.Name)
		}
		byName[device.Name] = append(byName[device.Name], device)
	}
	textutil.SortNames(names)
	sorted := make([]DeviceInfo, 0, len(devices))
	for _, name := range names {
		group := byName[name]
		sort.Slice(group, func(i, j int) bool { return group[i].Address < group[j].Address })
		sorted = append(sorted, group...)
	}

	entries := c.events.Entries()
	events := make([]string, 0, len(entries))
	for _, entry := range entries {
		events = append(events, entry.At.Format("2006-01-02 15:04:05.000")+" "+entry.Message)
	}

	return Snapshot{
		ActiveDevice: target,
		RouteState:   state,
		SystemVolume: c.system.CurrentVolume(),
		Devices:      sorted,
		Events:       events,
	}
}

// Dump renders the snapshot as the plain-text diagnostic report.
func (c *Coordinator) Dump() string {
	snapshot := c.Snapshot()

	var sb strings.Builder
	sb.WriteString("VolumeCoordinator:\n")
	active := snapshot.ActiveDevice
	if active == "" {
		active = "<none>"
	}
	fmt.Fprintf(&sb, "  Active Device: %s (%s)\n", active, snapshot.RouteState)
	fmt.Fprintf(&sb, "  Current System Volume: %d\n", snapshot.SystemVolume)
	sb.WriteString("  Device Volume Memory Map:\n")
	fmt.Fprintf(&sb, "    %-17s : %-14s : %3s : %s\n", "Device Address", "Device Name", "Vol", "AbsVol")
	for _, device := range snapshot.Devices {
		fmt.Fprintf(&sb, "    %-17s : %-14s : %3d : %s\n",
			device.Address,
			textutil.TruncateName(device.Name, displayNameWidth),
			device.Volume,
			device.Capability)
	}
	rendered := strings.TrimRight(c.events.Render(), "\n")
	for _, line := range strings.Split(rendered, "\n") {
		sb.WriteString("  " + line + "\n")
	}
	return sb.String()
}
