package transport_test

import (
	"bufio"
	"encoding/json"
	"net"
	"path/filepath"
	"testing"

	"btvol/internal/logging"
	"btvol/internal/transport"
)

func TestSocketSenderWritesJSONLines(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), "avrcp.sock")
	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer listener.Close()

	received := make(chan transport.Message, 2)
	go func() {
		conn, err := listener.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		scanner := bufio.NewScanner(conn)
		for scanner.Scan() {
			var msg transport.Message
			if json.Unmarshal(scanner.Bytes(), &msg) == nil {
				received <- msg
			}
		}
	}()

	sender := transport.NewSocketSender(socketPath, logging.NewNop())
	defer sender.Close()

	if err := sender.SendVolumeChanged("AA:BB:CC:DD:EE:FF", 64); err != nil {
		t.Fatalf("SendVolumeChanged: %v", err)
	}
	if err := sender.SendVolumeChanged("AA:BB:CC:DD:EE:FF", 127); err != nil {
		t.Fatalf("SendVolumeChanged: %v", err)
	}

	first := <-received
	if first.Address != "AA:BB:CC:DD:EE:FF" || first.Volume != 64 {
		t.Fatalf("unexpected first message: %+v", first)
	}
	second := <-received
	if second.Volume != 127 {
		t.Fatalf("unexpected second message: %+v", second)
	}
}

func TestSocketSenderFailsWithoutPeer(t *testing.T) {
	sender := transport.NewSocketSender(filepath.Join(t.TempDir(), "missing.sock"), logging.NewNop())
	if err := sender.SendVolumeChanged("AA:BB:CC:DD:EE:FF", 10); err == nil {
		t.Fatal("expected dial error")
	}
}

func TestNopDiscards(t *testing.T) {
	var tr transport.Transport = transport.Nop{}
	if err := tr.SendVolumeChanged("AA:BB:CC:DD:EE:FF", 50); err != nil {
		t.Fatalf("Nop send: %v", err)
	}
}
