// Package config loads the server's YAML configuration file into the
// connection classes, listeners, oper accounts, and module stanzas the
// core consumes. The nested mapping here is the same information the
// original XML-like <tag key="value"> blocks carried; see SPEC_FULL.md §6.
package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Class is a named connection policy record (§3 Connection class).
type Class struct {
	Name         string `yaml:"name"`
	Pattern      string `yaml:"pattern"`
	MaxConns     int    `yaml:"max_connections"`
	PingInterval int    `yaml:"ping_interval_seconds"`
	RegTimeout   int    `yaml:"registration_timeout_seconds"`
	CommandRate  int    `yaml:"command_rate"`
	PenaltyCap   int    `yaml:"penalty_cap"`
	SendQMax     int    `yaml:"sendq_max_bytes"`
	RecvQMax     int    `yaml:"recvq_max_bytes"`
	MaxQuitLen   int    `yaml:"max_quit_length"`
}

// Listener binds one address/port, optionally behind TLS, optionally
// pinned to a connection class regardless of the matching rules.
type Listener struct {
	Address string `yaml:"address"`
	Port    int    `yaml:"port"`
	TLS     bool   `yaml:"tls"`
	CertPEM string `yaml:"cert_pem_path"`
	KeyPEM  string `yaml:"key_pem_path"`
	Class   string `yaml:"class"`
}

// Oper is a named operator credential.
type Oper struct {
	Name         string   `yaml:"name"`
	PasswordHash string   `yaml:"password_hash"`
	Class        string   `yaml:"class"`
	Privileges   []string `yaml:"privileges"`
}

// Module names an external module stanza; the loader only records the
// name and opaque settings map, since the module ABI itself is an external
// collaborator (§1).
type Module struct {
	Name     string            `yaml:"name"`
	Settings map[string]string `yaml:"settings"`
}

// Options covers the scalar server-wide options named in §6.
type Options struct {
	SoftLimit   int    `yaml:"softlimit"`
	MaxTargets  int    `yaml:"maxtargets"`
	DNSTimeout  int    `yaml:"dns_timeout_seconds"`
	CaseMapping string `yaml:"case_mapping"`
	XLineMsg    string `yaml:"xline_message"`
}

// Config is the full parsed document.
type Config struct {
	ServerName string     `yaml:"server_name"`
	Network    string     `yaml:"network"`
	Options    Options    `yaml:"options"`
	Listeners  []Listener `yaml:"listeners"`
	Connect    []Class    `yaml:"connect"`
	Opers      []Oper     `yaml:"oper"`
	Modules    []Module   `yaml:"module"`
	BanSeed    string     `yaml:"ban_seed_path"`
	Include    []string   `yaml:"include"`
}

// Load reads and parses path, following any include list into a merged
// Config. A parse error anywhere aborts the whole load and returns an
// error; callers are responsible for leaving the previously running config
// in place on error (§6: "a failed parse leaves the running config
// untouched").
func Load(path string) (*Config, error) {
	cfg, err := loadOne(path)
	if err != nil {
		return nil, err
	}

	for _, inc := range cfg.Include {
		sub, err := loadOne(inc)
		if err != nil {
			return nil, errors.Wrapf(err, "error loading include %q", inc)
		}
		mergeInto(cfg, sub)
	}

	return cfg, nil
}

func loadOne(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "error reading config %q", path)
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, errors.Wrapf(err, "error parsing config %q", path)
	}

	return &cfg, nil
}

// mergeInto appends sub's listeners/classes/opers/modules onto cfg. Scalar
// top-level fields (server name, options) are not overridden by includes,
// matching the original's "defaults come from the root file" behaviour.
func mergeInto(cfg, sub *Config) {
	cfg.Listeners = append(cfg.Listeners, sub.Listeners...)
	cfg.Connect = append(cfg.Connect, sub.Connect...)
	cfg.Opers = append(cfg.Opers, sub.Opers...)
	cfg.Modules = append(cfg.Modules, sub.Modules...)
}

// FindClass resolves a class by name, or nil if no class with that name was
// loaded.
func (c *Config) FindClass(name string) *Class {
	for i := range c.Connect {
		if c.Connect[i].Name == name {
			return &c.Connect[i]
		}
	}
	return nil
}

// FindOper resolves an oper account by name, or nil if absent.
func (c *Config) FindOper(name string) *Oper {
	for i := range c.Opers {
		if c.Opers[i].Name == name {
			return &c.Opers[i]
		}
	}
	return nil
}
