package ipc

// StatusRequest fetches daemon status.
type StatusRequest struct{}

// StatusResponse represents combined daemon/coordinator status information.
type StatusResponse struct {
	Running        bool   `json:"running"`
	PID            int    `json:"pid"`
	DatabasePath   string `json:"database_path"`
	LockPath       string `json:"lock_path"`
	ActiveDevice   string `json:"active_device"`
	RouteState     string `json:"route_state"`
	SystemVolume   int    `json:"system_volume"`
	MaxVolume      int    `json:"max_volume"`
	DeviceCount    int    `json:"device_count"`
	MonitorRunning bool   `json:"monitor_running"`
}

// DumpRequest fetches the plain-text diagnostic report.
type DumpRequest struct{}

// DumpResponse carries the rendered report.
type DumpResponse struct {
	Report string `json:"report"`
}

// DevicesRequest lists known devices.
type DevicesRequest struct{}

// Device is one known device row.
type Device struct {
	Address    string `json:"address"`
	Name       string `json:"name"`
	Volume     int    `json:"volume"`
	Capability string `json:"capability"`
}

// DevicesResponse contains the known device rows sorted by display name.
type DevicesResponse struct {
	Devices []Device `json:"devices"`
}

// DeviceConnectedRequest reports a completed capability negotiation.
type DeviceConnectedRequest struct {
	Address        string `json:"address"`
	Name           string `json:"name"`
	AbsoluteVolume bool   `json:"absolute_volume"`
}

// DeviceConnectedResponse acknowledges the report.
type DeviceConnectedResponse struct{}

// DeviceDisconnectedRequest reports a device disconnect.
type DeviceDisconnectedRequest struct {
	Address string `json:"address"`
}

// DeviceDisconnectedResponse acknowledges the report.
type DeviceDisconnectedResponse struct{}

// SetActiveDeviceRequest records routing intent. Empty address clears it.
type SetActiveDeviceRequest struct {
	Address string `json:"address"`
}

// SetActiveDeviceResponse acknowledges the intent.
type SetActiveDeviceResponse struct{}

// RouteConfirmedRequest reports the live audio outputs.
type RouteConfirmedRequest struct {
	Addresses []string `json:"addresses"`
}

// RouteConfirmedResponse acknowledges the confirmation.
type RouteConfirmedResponse struct{}

// SetVolumeRequest applies a remote-initiated volume change in protocol units.
type SetVolumeRequest struct {
	Address string `json:"address"`
	Volume  int    `json:"volume"`
}

// SetVolumeResponse acknowledges the change.
type SetVolumeResponse struct{}

// NotifyVolumeRequest reports a system-side volume observation.
type NotifyVolumeRequest struct {
	Address string `json:"address"`
	Volume  int    `json:"volume"`
}

// NotifyVolumeResponse acknowledges the observation.
type NotifyVolumeResponse struct{}

// GetVolumeRequest fetches the stored volume for a device.
type GetVolumeRequest struct {
	Address string `json:"address"`
}

// GetVolumeResponse carries the stored volume and current capability.
type GetVolumeResponse struct {
	Volume         int  `json:"volume"`
	AbsoluteVolume bool `json:"absolute_volume"`
}

// ForgetRequest removes a device's persisted volume record.
type ForgetRequest struct {
	Address string `json:"address"`
}

// ForgetResponse acknowledges the removal.
type ForgetResponse struct{}

// LogTailRequest fetches log lines based on offset and follow semantics.
type LogTailRequest struct {
	Offset     int64 `json:"offset"`
	Limit      int   `json:"limit"`
	Follow     bool  `json:"follow"`
	WaitMillis int   `json:"wait_millis"`
}

// LogTailResponse returns log lines and the next offset.
type LogTailResponse struct {
	Lines  []string `json:"lines"`
	Offset int64    `json:"offset"`
}

// StopRequest shuts the daemon down.
type StopRequest struct{}

// StopResponse indicates stop result.
type StopResponse struct {
	Stopped bool `json:"stopped"`
}
