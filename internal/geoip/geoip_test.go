// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package geoip

import (
	"net"
	"testing"
)

func TestLookup_Disabled(t *testing.T) {
	g := NewLookup()

	if err := g.Init(""); err != nil {
		t.Fatalf("Init with empty path: %v", err)
	}
	if g.Enabled() {
		t.Error("lookup should be disabled with empty path")
	}
	if got := g.Country("8.8.8.8"); got != "" {
		t.Errorf("disabled lookup returned %q, want empty", got)
	}
}

func TestLookup_MissingDatabase(t *testing.T) {
	g := NewLookup()

	if err := g.Init("/nonexistent/GeoLite2-Country.mmdb"); err == nil {
		t.Error("Init with missing file should fail")
	}
}

func TestIsPrivateIP(t *testing.T) {
	tests := []struct {
		ip      string
		private bool
	}{
		{"127.0.0.1", true},
		{"10.1.2.3", true},
		{"172.16.0.1", true},
		{"192.168.1.1", true},
		{"8.8.8.8", false},
		{"1.1.1.1", false},
		{"fe80::1", true},
		{"2001:4860:4860::8888", false},
	}

	for _, tt := range tests {
		t.Run(tt.ip, func(t *testing.T) {
			ip := net.ParseIP(tt.ip)
			if ip == nil {
				t.Fatalf("failed to parse %q", tt.ip)
			}
			if got := isPrivateIP(ip); got != tt.private {
				t.Errorf("isPrivateIP(%s) = %v, want %v", tt.ip, got, tt.private)
			}
		})
	}
}

func TestLookup_Close(t *testing.T) {
	g := NewLookup()
	_ = g.Init("")

	if err := g.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if g.Enabled() {
		t.Error("lookup should be disabled after Close")
	}
}
