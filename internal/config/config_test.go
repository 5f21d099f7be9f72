package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.Hosts) != 1 || cfg.Hosts[0] != "127.0.0.1" {
		t.Errorf("hosts: got %v", cfg.Hosts)
	}
	if cfg.Port != 9042 {
		t.Errorf("port: got %d, want 9042", cfg.Port)
	}
	if cfg.Keyspace != "metrics" || cfg.Table != "data" {
		t.Errorf("keyspace/table: got %q/%q", cfg.Keyspace, cfg.Table)
	}
	if cfg.TTL != 24*time.Hour {
		t.Errorf("ttl: got %v, want 24h", cfg.TTL)
	}
	if cfg.Consistency != "QUORUM" {
		t.Errorf("consistency: got %q, want QUORUM", cfg.Consistency)
	}
	if cfg.Interval != 10*time.Second || cfg.PollInterval != 2*time.Second {
		t.Errorf("intervals: got %v/%v", cfg.Interval, cfg.PollInterval)
	}
	if cfg.RateUnit != time.Second || cfg.DurationUnit != time.Millisecond {
		t.Errorf("units: got %v/%v", cfg.RateUnit, cfg.DurationUnit)
	}
	if cfg.Prefix != "" {
		t.Errorf("prefix: got %q, want empty", cfg.Prefix)
	}
}

func TestLoad_Flags(t *testing.T) {
	args := []string{
		"-a", "cass1.local, cass2.local",
		"-p", "9043",
		"-k", "telemetry",
		"-t", "app.metrics",
		"-ttl", "72h",
		"-c", "LOCAL_QUORUM",
		"-i", "30s",
		"-prefix", "svc.prod",
	}
	cfg, err := Load(args, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.Hosts) != 2 || cfg.Hosts[0] != "cass1.local" || cfg.Hosts[1] != "cass2.local" {
		t.Errorf("hosts: got %v", cfg.Hosts)
	}
	if cfg.Port != 9043 || cfg.Keyspace != "telemetry" || cfg.Table != "app.metrics" {
		t.Errorf("got %d/%q/%q", cfg.Port, cfg.Keyspace, cfg.Table)
	}
	if cfg.TTL != 72*time.Hour || cfg.Consistency != "LOCAL_QUORUM" {
		t.Errorf("got %v/%q", cfg.TTL, cfg.Consistency)
	}
	if cfg.Interval != 30*time.Second || cfg.Prefix != "svc.prod" {
		t.Errorf("got %v/%q", cfg.Interval, cfg.Prefix)
	}
}

func TestLoad_EnvOverridesFlags(t *testing.T) {
	t.Setenv("COLMETRA_HOSTS", "env1,env2,env3")
	t.Setenv("COLMETRA_TABLE", "from_env")
	t.Setenv("COLMETRA_TTL", "1h")

	cfg, err := Load([]string{"-a", "flagged.local", "-t", "from_flag"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.Hosts) != 3 || cfg.Hosts[0] != "env1" {
		t.Errorf("hosts: got %v, want env values", cfg.Hosts)
	}
	if cfg.Table != "from_env" {
		t.Errorf("table: got %q, want from_env", cfg.Table)
	}
	if cfg.TTL != time.Hour {
		t.Errorf("ttl: got %v, want 1h", cfg.TTL)
	}
}

func TestLoad_Invalid(t *testing.T) {
	cases := []struct {
		name string
		args []string
		env  map[string]string
		want string
	}{
		{"zero ttl", []string{"-ttl", "0s"}, nil, "ttl"},
		{"negative interval", []string{"-i", "-5s"}, nil, "interval"},
		{"empty keyspace", []string{"-k", " "}, nil, "keyspace"},
		{"empty table", []string{"-t", ""}, nil, "table"},
		{"bad port", []string{"-p", "0"}, nil, "port"},
		{"no hosts", []string{"-a", " , "}, nil, "contact point"},
		{"zero rate unit", []string{"-rate-unit", "0s"}, nil, "unit"},
		{"bad consistency", []string{"-c", "FAIRLY_SURE"}, nil, "consistency"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := Load(tc.args, nil)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestSplitHosts(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"a,b,c", 3},
		{" a , b ", 2},
		{"", 0},
		{",,", 0},
		{"single", 1},
	}
	for _, tc := range cases {
		if got := splitHosts(tc.in); len(got) != tc.want {
			t.Errorf("splitHosts(%q) = %v, want %d hosts", tc.in, got, tc.want)
		}
	}
}
