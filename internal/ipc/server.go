package ipc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"os"
	"sync"
	"time"

	"log/slog"

	"btvol/internal/daemon"
	"btvol/internal/logging"
	"btvol/internal/logs"
)

// Server exposes daemon control via JSON-RPC over a Unix domain socket.
type Server struct {
	path      string
	daemon    *daemon.Daemon
	logger    *slog.Logger
	listener  net.Listener
	rpcServer *rpc.Server

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewServer configures the IPC server at the given socket path. The shutdown
// callback, when non-nil, is invoked after a Stop request so the hosting
// process can exit.
func NewServer(ctx context.Context, path string, d *daemon.Daemon, shutdown func(), logger *slog.Logger) (*Server, error) {
	if d == nil {
		return nil, errors.New("ipc server requires daemon")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	if err := os.RemoveAll(path); err != nil {
		return nil, fmt.Errorf("remove existing socket: %w", err)
	}

	listener, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen on socket: %w", err)
	}

	rpcServer := rpc.NewServer()
	srv := &service{daemon: d, shutdown: shutdown, logger: logger}
	if err := rpcServer.RegisterName("Btvol", srv); err != nil {
		listener.Close()
		return nil, fmt.Errorf("register rpc service: %w", err)
	}

	serverCtx, cancel := context.WithCancel(ctx)
	return &Server{
		path:      path,
		daemon:    d,
		logger:    logger,
		listener:  listener,
		rpcServer: rpcServer,
		ctx:       serverCtx,
		cancel:    cancel,
	}, nil
}

// Serve starts accepting RPC connections until the context is canceled.
func (s *Server) Serve() {
	s.logger.Debug("IPC server listening", logging.String("socket", s.path))
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			conn, err := s.listener.Accept()
			if err != nil {
				select {
				case <-s.ctx.Done():
					return
				default:
				}
				s.logger.Warn("accept failed",
					logging.Error(err),
					logging.String(logging.FieldEventType, "ipc_accept_failed"),
					logging.String(logging.FieldImpact, "IPC clients may fail to connect"),
					logging.String(logging.FieldErrorHint, "check socket permissions and restart the daemon if needed"))
				continue
			}
			s.wg.Add(1)
			go func(c net.Conn) {
				defer s.wg.Done()
				s.rpcServer.ServeCodec(jsonrpc.NewServerCodec(c))
			}(conn)
		}
	}()
}

// Close stops the server and removes the socket file.
func (s *Server) Close() {
	s.cancel()
	if s.listener != nil {
		_ = s.listener.Close()
	}
	s.wg.Wait()
	if err := os.RemoveAll(s.path); err != nil {
		s.logger.Warn("failed to remove socket",
			logging.String("socket", s.path),
			logging.Error(err),
			logging.String(logging.FieldEventType, "ipc_socket_cleanup_failed"),
			logging.String(logging.FieldImpact, "stale IPC socket may block future starts"),
			logging.String(logging.FieldErrorHint, "remove the socket file manually or rerun btvol daemon stop"))
	}
}

type service struct {
	daemon   *daemon.Daemon
	shutdown func()
	logger   *slog.Logger
}

func (s *service) log() *slog.Logger {
	if s.logger == nil {
		return logging.NewNop()
	}
	return s.logger.With(logging.String(logging.FieldComponent, "ipc"))
}

func (s *service) Status(_ StatusRequest, resp *StatusResponse) error {
	status := s.daemon.Status()
	resp.Running = status.Running
	resp.PID = status.PID
	resp.DatabasePath = status.DatabasePath
	resp.LockPath = status.LockFilePath
	resp.ActiveDevice = status.ActiveDevice
	resp.RouteState = status.RouteState
	resp.SystemVolume = status.SystemVolume
	resp.MaxVolume = status.MaxVolume
	resp.DeviceCount = status.DeviceCount
	resp.MonitorRunning = status.MonitorRunning
	return nil
}

func (s *service) Dump(_ DumpRequest, resp *DumpResponse) error {
	resp.Report = s.daemon.Dump()
	return nil
}

func (s *service) Devices(_ DevicesRequest, resp *DevicesResponse) error {
	snapshot := s.daemon.Snapshot()
	resp.Devices = make([]Device, 0, len(snapshot.Devices))
	for _, device := range snapshot.Devices {
		resp.Devices = append(resp.Devices, Device{
			Address:    device.Address,
			Name:       device.Name,
			Volume:     device.Volume,
			Capability: device.Capability,
		})
	}
	return nil
}

func (s *service) DeviceConnected(req DeviceConnectedRequest, _ *DeviceConnectedResponse) error {
	s.log().Debug("device connected via IPC",
		logging.String(logging.FieldDevice, req.Address),
		logging.Bool("absolute_volume", req.AbsoluteVolume))
	return s.daemon.DeviceConnected(req.Address, req.Name, req.AbsoluteVolume)
}

func (s *service) DeviceDisconnected(req DeviceDisconnectedRequest, _ *DeviceDisconnectedResponse) error {
	s.log().Debug("device disconnected via IPC",
		logging.String(logging.FieldDevice, req.Address))
	return s.daemon.DeviceDisconnected(req.Address)
}

func (s *service) SetActiveDevice(req SetActiveDeviceRequest, _ *SetActiveDeviceResponse) error {
	s.log().Debug("active device request via IPC",
		logging.String(logging.FieldDevice, req.Address))
	return s.daemon.SetActiveDevice(req.Address)
}

func (s *service) RouteConfirmed(req RouteConfirmedRequest, _ *RouteConfirmedResponse) error {
	s.log().Debug("route confirmation via IPC",
		logging.Int("output_count", len(req.Addresses)))
	return s.daemon.ConfirmRoute(req.Addresses)
}

func (s *service) SetVolume(req SetVolumeRequest, _ *SetVolumeResponse) error {
	return s.daemon.SetVolume(req.Address, req.Volume)
}

func (s *service) NotifyVolume(req NotifyVolumeRequest, _ *NotifyVolumeResponse) error {
	return s.daemon.NotifyVolume(req.Address, req.Volume)
}

func (s *service) GetVolume(req GetVolumeRequest, resp *GetVolumeResponse) error {
	level, absolute, err := s.daemon.GetVolume(req.Address)
	if err != nil {
		return err
	}
	resp.Volume = level
	resp.AbsoluteVolume = absolute
	return nil
}

func (s *service) Forget(req ForgetRequest, _ *ForgetResponse) error {
	s.log().Debug("forget requested via IPC",
		logging.String(logging.FieldDevice, req.Address))
	return s.daemon.Forget(req.Address)
}

func (s *service) LogTail(req LogTailRequest, resp *LogTailResponse) error {
	logPath := s.daemon.LogPath()
	if logPath == "" {
		resp.Offset = 0
		return nil
	}
	wait := time.Duration(req.WaitMillis) * time.Millisecond
	if wait <= 0 && req.Follow {
		wait = time.Second
	}
	ctx := context.Background()
	if req.Follow && wait > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, wait+500*time.Millisecond)
		defer cancel()
	}
	result, err := logs.Tail(ctx, logPath, logs.TailOptions{
		Offset: req.Offset,
		Limit:  req.Limit,
		Follow: req.Follow,
		Wait:   wait,
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			resp.Offset = result.Offset
			return nil
		}
		return err
	}
	resp.Lines = result.Lines
	resp.Offset = result.Offset
	return nil
}

func (s *service) Stop(_ StopRequest, resp *StopResponse) error {
	s.log().Debug("daemon stop requested")
	s.daemon.Stop()
	resp.Stopped = true
	s.log().Info("daemon stopped via IPC",
		logging.String(logging.FieldEventType, "daemon_stop"))
	if s.shutdown != nil {
		s.shutdown()
	}
	return nil
}
