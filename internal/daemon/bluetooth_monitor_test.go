package daemon

import (
	"testing"

	"github.com/pilebones/go-udev/netlink"
)

func TestExtractDeviceAddress(t *testing.T) {
	tests := []struct {
		name   string
		uevent netlink.UEvent
		want   string
	}{
		{
			name: "address from env",
			uevent: netlink.UEvent{
				Env: map[string]string{"ADDRESS": "AA:BB:CC:DD:EE:FF"},
			},
			want: "AA:BB:CC:DD:EE:FF",
		},
		{
			name: "address from devpath leaf",
			uevent: netlink.UEvent{
				Env: map[string]string{
					"DEVPATH": "/devices/virtual/bluetooth/hci0/hci0:3/dev_AA_BB_CC_DD_EE_FF",
				},
			},
			want: "AA:BB:CC:DD:EE:FF",
		},
		{
			name: "address from kobj when devpath missing",
			uevent: netlink.UEvent{
				KObj: "/devices/virtual/bluetooth/hci0/dev_11_22_33_44_55_66",
				Env:  map[string]string{},
			},
			want: "11:22:33:44:55:66",
		},
		{
			name: "controller event without device leaf",
			uevent: netlink.UEvent{
				Env: map[string]string{"DEVPATH": "/devices/virtual/bluetooth/hci0"},
			},
			want: "",
		},
		{
			name:   "empty event",
			uevent: netlink.UEvent{Env: map[string]string{}},
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractDeviceAddress(tt.uevent); got != tt.want {
				t.Fatalf("extractDeviceAddress = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNormalizeAddress(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{input: "aa:bb:cc:dd:ee:ff", want: "AA:BB:CC:DD:EE:FF"},
		{input: "AA-BB-CC-DD-EE-FF", want: "AA:BB:CC:DD:EE:FF"},
		{input: "  AA:BB:CC:DD:EE:FF ", want: "AA:BB:CC:DD:EE:FF"},
		{input: "", wantErr: true},
		{input: "zz:bb:cc:dd:ee:ff", wantErr: true},
		{input: "aa:bb:cc:dd:ee", wantErr: true},
		{input: "01:23:45:67:89:ab:cd:ef", wantErr: true},
	}

	for _, tt := range tests {
		got, err := normalizeAddress(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("normalizeAddress(%q) accepted, got %q", tt.input, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("normalizeAddress(%q): %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("normalizeAddress(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
