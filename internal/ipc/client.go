package ipc

import (
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"time"
)

// Client provides RPC access to the daemon.
type Client struct {
	conn   net.Conn
	client *rpc.Client
}

// Dial connects to the IPC server at the given socket path.
func Dial(path string) (*Client, error) {
	conn, err := net.DialTimeout("unix", path, 2*time.Second)
	if err != nil {
		return nil, err
	}
	rpcClient := rpc.NewClientWithCodec(jsonrpc.NewClientCodec(conn))
	return &Client{conn: conn, client: rpcClient}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	if c.client != nil {
		_ = c.client.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// Status retrieves the daemon status.
func (c *Client) Status() (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.client.Call("Btvol.Status", StatusRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Dump retrieves the plain-text diagnostic report.
func (c *Client) Dump() (*DumpResponse, error) {
	var resp DumpResponse
	if err := c.client.Call("Btvol.Dump", DumpRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Devices lists known devices.
func (c *Client) Devices() (*DevicesResponse, error) {
	var resp DevicesResponse
	if err := c.client.Call("Btvol.Devices", DevicesRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeviceConnected reports a completed capability negotiation for a device.
func (c *Client) DeviceConnected(address, name string, absoluteVolume bool) error {
	req := DeviceConnectedRequest{Address: address, Name: name, AbsoluteVolume: absoluteVolume}
	return c.client.Call("Btvol.DeviceConnected", req, &DeviceConnectedResponse{})
}

// DeviceDisconnected reports a device disconnect.
func (c *Client) DeviceDisconnected(address string) error {
	req := DeviceDisconnectedRequest{Address: address}
	return c.client.Call("Btvol.DeviceDisconnected", req, &DeviceDisconnectedResponse{})
}

// SetActiveDevice records routing intent. Empty address clears it.
func (c *Client) SetActiveDevice(address string) error {
	req := SetActiveDeviceRequest{Address: address}
	return c.client.Call("Btvol.SetActiveDevice", req, &SetActiveDeviceResponse{})
}

// RouteConfirmed reports the live audio outputs.
func (c *Client) RouteConfirmed(addresses []string) error {
	req := RouteConfirmedRequest{Addresses: addresses}
	return c.client.Call("Btvol.RouteConfirmed", req, &RouteConfirmedResponse{})
}

// SetVolume applies a remote-initiated volume change in protocol units.
func (c *Client) SetVolume(address string, protocolVolume int) error {
	req := SetVolumeRequest{Address: address, Volume: protocolVolume}
	return c.client.Call("Btvol.SetVolume", req, &SetVolumeResponse{})
}

// NotifyVolume reports a system-side volume observation for a device.
func (c *Client) NotifyVolume(address string, systemVolume int) error {
	req := NotifyVolumeRequest{Address: address, Volume: systemVolume}
	return c.client.Call("Btvol.NotifyVolume", req, &NotifyVolumeResponse{})
}

// GetVolume returns the stored volume and current capability for a device.
func (c *Client) GetVolume(address string) (*GetVolumeResponse, error) {
	var resp GetVolumeResponse
	if err := c.client.Call("Btvol.GetVolume", GetVolumeRequest{Address: address}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Forget removes a device's persisted volume record.
func (c *Client) Forget(address string) error {
	return c.client.Call("Btvol.Forget", ForgetRequest{Address: address}, &ForgetResponse{})
}

// LogTail returns log lines from the daemon.
func (c *Client) LogTail(req LogTailRequest) (*LogTailResponse, error) {
	var resp LogTailResponse
	if err := c.client.Call("Btvol.LogTail", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Stop requests daemon shutdown.
func (c *Client) Stop() (*StopResponse, error) {
	var resp StopResponse
	if err := c.client.Call("Btvol.Stop", StopRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
