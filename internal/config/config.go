// Package config loads reporter configuration from CLI flags and
// environment variables.
package config

import (
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gocql/gocql"
	"github.com/kelseyhightower/envconfig"
)

const envPrefix = "colmetra"

const (
	defaultHosts        = "127.0.0.1"
	defaultPort         = 9042
	defaultKeyspace     = "metrics"
	defaultTable        = "data"
	defaultTTL          = 24 * time.Hour
	defaultConsistency  = "QUORUM"
	defaultInterval     = 10 * time.Second
	defaultPollInterval = 2 * time.Second
	defaultRateUnit     = time.Second
	defaultDurationUnit = time.Millisecond
)

// Config describes one reporter instance. Environment variables use the
// COLMETRA_ prefix (COLMETRA_HOSTS, COLMETRA_TTL, ...).
type Config struct {
	Hosts        []string      `envconfig:"HOSTS"`
	Port         int           `envconfig:"PORT"`
	Keyspace     string        `envconfig:"KEYSPACE"`
	Table        string        `envconfig:"TABLE"`
	TTL          time.Duration `envconfig:"TTL"`
	Consistency  string        `envconfig:"CONSISTENCY"`
	Interval     time.Duration `envconfig:"REPORT_INTERVAL"`
	PollInterval time.Duration `envconfig:"POLL_INTERVAL"`
	Prefix       string        `envconfig:"PREFIX"`
	RateUnit     time.Duration `envconfig:"RATE_UNIT"`
	DurationUnit time.Duration `envconfig:"DURATION_UNIT"`
}

// ENV > CLI > defaults
func Load(args []string, out io.Writer) (Config, error) {
	if out == nil {
		out = io.Discard
	}

	fs := flag.NewFlagSet("colmetra", flag.ContinueOnError)
	fs.SetOutput(out)

	var cfg Config
	var hostsOpt string

	fs.StringVar(&hostsOpt, "a", defaultHosts, "comma-separated Cassandra contact points")
	fs.IntVar(&cfg.Port, "p", defaultPort, "native transport port")
	fs.StringVar(&cfg.Keyspace, "k", defaultKeyspace, "keyspace holding the metric tables")
	fs.StringVar(&cfg.Table, "t", defaultTable, "logical metric table name")
	fs.DurationVar(&cfg.TTL, "ttl", defaultTTL, "expiry for written points")
	fs.StringVar(&cfg.Consistency, "c", defaultConsistency, "write consistency level")
	fs.DurationVar(&cfg.Interval, "i", defaultInterval, "reporting interval")
	fs.DurationVar(&cfg.PollInterval, "poll", defaultPollInterval, "host metrics sampling interval")
	fs.StringVar(&cfg.Prefix, "prefix", "", "dot-prefix for all emitted field names")
	fs.DurationVar(&cfg.RateUnit, "rate-unit", defaultRateUnit, "time unit rates are converted to")
	fs.DurationVar(&cfg.DurationUnit, "duration-unit", defaultDurationUnit, "time unit durations are converted to")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	cfg.Hosts = splitHosts(hostsOpt)

	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("read environment: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if len(c.Hosts) == 0 {
		return fmt.Errorf("at least one contact point is required")
	}
	for _, h := range c.Hosts {
		if strings.TrimSpace(h) == "" {
			return fmt.Errorf("empty contact point in %v", c.Hosts)
		}
	}
	if c.Port <= 0 {
		return fmt.Errorf("port must be > 0, got %d", c.Port)
	}
	if strings.TrimSpace(c.Keyspace) == "" {
		return fmt.Errorf("keyspace must not be empty")
	}
	if strings.TrimSpace(c.Table) == "" {
		return fmt.Errorf("table must not be empty")
	}
	if c.TTL <= 0 {
		return fmt.Errorf("ttl must be > 0, got %v", c.TTL)
	}
	if c.Interval <= 0 {
		return fmt.Errorf("report interval must be > 0, got %v", c.Interval)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be > 0, got %v", c.PollInterval)
	}
	if c.RateUnit <= 0 || c.DurationUnit <= 0 {
		return fmt.Errorf("rate and duration units must be > 0")
	}
	if _, err := gocql.ParseConsistencyWrapper(c.Consistency); err != nil {
		return fmt.Errorf("consistency level %q: %w", c.Consistency, err)
	}
	return nil
}

func splitHosts(s string) []string {
	var hosts []string
	for _, h := range strings.Split(s, ",") {
		if h = strings.TrimSpace(h); h != "" {
			hosts = append(hosts, h)
		}
	}
	return hosts
}
