// Copyright (c) 2026 Plume contributors
// SPDX-License-Identifier: GPL-3.0-or-later

package geoip

import (
	"testing"
)

func TestLookupCountry_Uninitialized(t *testing.T) {
	g := NewLookup()
	if got := g.LookupCountry("8.8.8.8"); got != "" {
		t.Errorf("uninitialized lookup = %q, want empty", got)
	}
}

func TestLookupCountry_Disabled(t *testing.T) {
	g := NewLookup()
	if err := g.Init(""); err != nil {
		t.Fatalf("Init with empty path: %v", err)
	}
	if g.IsEnabled() {
		t.Error("IsEnabled = true with no database")
	}

	tests := []struct {
		ip   string
		want string
	}{
		{"10.1.2.3", "LOCAL"},
		{"192.168.1.1", "LOCAL"},
		{"172.16.0.1", "LOCAL"},
		{"127.0.0.1", "LOCAL"},
		{"::1", "LOCAL"},
		{"fe80::1", "LOCAL"},
		{"8.8.8.8", ""}, // public, but no database loaded
		{"not-an-ip", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.ip, func(t *testing.T) {
			if got := g.LookupCountry(tt.ip); got != tt.want {
				t.Errorf("LookupCountry(%q) = %q, want %q", tt.ip, got, tt.want)
			}
		})
	}
}

func TestInit_MissingDatabase(t *testing.T) {
	g := NewLookup()
	if err := g.Init("/nonexistent/GeoLite2-Country.mmdb"); err == nil {
		t.Error("Init with missing file returned nil error")
	}
	if g.IsEnabled() {
		t.Error("IsEnabled = true after failed init")
	}
	// Lookups still degrade gracefully.
	if got := g.LookupCountry("8.8.8.8"); got != "" {
		t.Errorf("lookup after failed init = %q, want empty", got)
	}
}

func TestReload_NoPath(t *testing.T) {
	g := NewLookup()
	_ = g.Init("")
	if err := g.Reload(); err != nil {
		t.Errorf("Reload with no path: %v", err)
	}
}
