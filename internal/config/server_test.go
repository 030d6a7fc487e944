package config

import (
	"net"
	"testing"
)

func TestIsPrivateIP(t *testing.T) {
	cases := map[string]bool{
		"10.0.0.5":     true,
		"172.16.3.4":   true,
		"192.168.1.1":  true,
		"8.8.8.8":      false,
		"203.0.113.10": false,
	}
	for addr, want := range cases {
		if got := isPrivateIP(net.ParseIP(addr)); got != want {
			t.Errorf("isPrivateIP(%s) = %v, want %v", addr, got, want)
		}
	}
}

func TestDaemonConfig_ListenPicksEphemeralPort(t *testing.T) {
	cfg := &DaemonConfig{Bind: "127.0.0.1", Host: "127.0.0.1", Port: 0}
	lis, advertise, err := cfg.Listen()
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer lis.Close()

	if advertise == "" {
		t.Fatal("expected a non-empty advertise address")
	}
	if lis.Addr().(*net.TCPAddr).Port == 0 {
		t.Fatal("expected Listen to bind a concrete ephemeral port")
	}
}
