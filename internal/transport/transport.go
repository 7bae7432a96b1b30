// Package transport delivers outbound AVRCP volume-changed messages to the
// Bluetooth stack integration.
//
// The daemon is not itself an AVRCP implementation; it emits volume-changed
// notifications as JSON lines on a unix socket the stack integration owns.
// A send failure is the integration's problem to recover from - messages are
// best-effort and a later state change supersedes a lost one.
package transport

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"btvol/internal/logging"
)

// Message is one outbound volume notification, protocol scale.
type Message struct {
	Address string `json:"address"`
	Volume  int    `json:"volume"`
}

// Transport sends protocol volume-changed messages to a remote device.
type Transport interface {
	SendVolumeChanged(address string, protocolVolume int) error
}

// Nop discards outbound messages. Used when no stack integration socket is
// configured.
type Nop struct{}

// SendVolumeChanged implements Transport.
func (Nop) SendVolumeChanged(string, int) error { return nil }

const sendTimeout = 250 * time.Millisecond

// SocketSender writes messages as JSON lines to a unix domain socket,
// dialing lazily and redialing after a failed write.
type SocketSender struct {
	path   string
	logger *slog.Logger

	mu   sync.Mutex
	conn net.Conn
	enc  *json.Encoder
}

// NewSocketSender creates a sender for the given socket path. No connection
// is made until the first send.
func NewSocketSender(path string, logger *slog.Logger) *SocketSender {
	return &SocketSender{
		path:   path,
		logger: logging.NewComponentLogger(logger, "transport"),
	}
}

// SendVolumeChanged implements Transport. The write carries a short deadline
// so a stalled peer cannot block the caller.
func (s *SocketSender) SendVolumeChanged(address string, protocolVolume int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		conn, err := net.DialTimeout("unix", s.path, sendTimeout)
		if err != nil {
			return fmt.Errorf("dial transport socket: %w", err)
		}
		s.conn = conn
		s.enc = json.NewEncoder(conn)
	}

	_ = s.conn.SetWriteDeadline(time.Now().Add(sendTimeout))
	if err := s.enc.Encode(Message{Address: address, Volume: protocolVolume}); err != nil {
		_ = s.conn.Close()
		s.conn = nil
		s.enc = nil
		return fmt.Errorf("send volume changed: %w", err)
	}
	return nil
}

// Close releases the socket connection if one is open.
func (s *SocketSender) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	s.enc = nil
	return err
}
