package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roach88/radixrunner/internal/engine"
	"github.com/roach88/radixrunner/internal/memory"
	"github.com/roach88/radixrunner/internal/radix"
	"github.com/roach88/radixrunner/internal/shadow"
)

// Config is a complete run configuration.
type Config struct {
	Label    string         `yaml:"label" json:"label"`
	Database string         `yaml:"database" json:"database"`
	Region   RegionConfig   `yaml:"region" json:"region"`
	Observer ObserverConfig `yaml:"observer" json:"observer"`
	Monitor  MonitorConfig  `yaml:"monitor" json:"monitor"`
	Shadows  []Shadow       `yaml:"shadows" json:"shadows"`
}

// RegionConfig selects the memory region. An empty Path is a private heap
// region; otherwise the file is mapped shared.
type RegionConfig struct {
	Path string `yaml:"path" json:"path"`
	Size int    `yaml:"size" json:"size"`
}

// ObserverConfig configures the observer loop.
type ObserverConfig struct {
	Policy string `yaml:"policy" json:"policy"`
	Yield  bool   `yaml:"yield" json:"yield"`
}

// MonitorConfig configures the status sampler.
type MonitorConfig struct {
	Interval Duration `yaml:"interval" json:"interval"`
}

// Shadow declares one slot.
type Shadow struct {
	Slot     int    `yaml:"slot" json:"slot"`
	Digit    Digit  `yaml:"digit" json:"digit"`
	Divisor  uint32 `yaml:"divisor" json:"divisor"`
	Disabled bool   `yaml:"disabled" json:"disabled"`
}

// ShadowConfig converts the declaration to a slot configuration.
func (s Shadow) ShadowConfig() shadow.Config {
	return shadow.Config{
		Enabled:     !s.Disabled,
		SourceDigit: radix.Digit(s.Digit),
		Divisor:     s.Divisor,
	}
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Region:   RegionConfig{Size: memory.DefaultSize},
		Observer: ObserverConfig{Policy: engine.PolicyLive.String()},
		Monitor:  MonitorConfig{Interval: Duration(engine.DefaultMonitorInterval)},
	}
}

// Validate checks the configuration and returns every problem found.
func (c Config) Validate() error {
	var errs []error

	if c.Region.Size < memory.MinSize || c.Region.Size%8 != 0 {
		errs = append(errs, fmt.Errorf("region.size %d: must be a multiple of 8 and at least %d", c.Region.Size, memory.MinSize))
	}
	if _, err := engine.ParsePolicy(c.Observer.Policy); err != nil {
		errs = append(errs, fmt.Errorf("observer.policy: %w", err))
	}
	if c.Monitor.Interval <= 0 {
		errs = append(errs, fmt.Errorf("monitor.interval %s: must be positive", c.Monitor.Interval))
	}

	if len(c.Shadows) > shadow.MaxSlots {
		errs = append(errs, fmt.Errorf("shadows: %d declared, at most %d", len(c.Shadows), shadow.MaxSlots))
	}
	seen := make(map[int]bool)
	for i, s := range c.Shadows {
		if s.Slot < 0 || s.Slot >= shadow.MaxSlots {
			errs = append(errs, fmt.Errorf("shadows[%d]: slot %d outside 0..%d", i, s.Slot, shadow.MaxSlots-1))
			continue
		}
		if seen[s.Slot] {
			errs = append(errs, fmt.Errorf("shadows[%d]: slot %d declared twice", i, s.Slot))
		}
		seen[s.Slot] = true
		if err := s.ShadowConfig().Validate(); err != nil {
			errs = append(errs, fmt.Errorf("shadows[%d]: %w", i, err))
		}
	}
	return errors.Join(errs...)
}

// Policy returns the parsed observer policy. Call Validate first.
func (c Config) Policy() engine.Policy {
	p, _ := engine.ParsePolicy(c.Observer.Policy)
	return p
}

// Apply writes every declared shadow into tbl. Undeclared slots are left as
// they are.
func (c Config) Apply(tbl *shadow.Table) error {
	for _, s := range c.Shadows {
		if err := tbl.Configure(s.Slot, s.ShadowConfig()); err != nil {
			return fmt.Errorf("apply shadow slot %d: %w", s.Slot, err)
		}
	}
	return nil
}

// ParseShadow parses a command-line shadow declaration of the form
// slot=digit/divisor, e.g. "0=P0/3". A trailing ",off" declares it disabled.
func ParseShadow(s string) (Shadow, error) {
	decl, off := strings.CutSuffix(strings.TrimSpace(s), ",off")

	slotPart, rest, ok := strings.Cut(decl, "=")
	if !ok {
		return Shadow{}, fmt.Errorf("shadow %q: want slot=digit/divisor", s)
	}
	digitPart, divPart, ok := strings.Cut(rest, "/")
	if !ok {
		return Shadow{}, fmt.Errorf("shadow %q: want slot=digit/divisor", s)
	}

	slot, err := strconv.Atoi(slotPart)
	if err != nil {
		return Shadow{}, fmt.Errorf("shadow %q: slot: %w", s, err)
	}
	d, err := radix.ParseDigit(digitPart)
	if err != nil {
		return Shadow{}, fmt.Errorf("shadow %q: %w", s, err)
	}
	div, err := strconv.ParseUint(divPart, 10, 32)
	if err != nil {
		return Shadow{}, fmt.Errorf("shadow %q: divisor: %w", s, err)
	}
	return Shadow{Slot: slot, Digit: Digit(d), Divisor: uint32(div), Disabled: off}, nil
}

// Merge replaces or adds shadows by slot.
func (c *Config) Merge(shadows []Shadow) {
	for _, s := range shadows {
		replaced := false
		for i := range c.Shadows {
			if c.Shadows[i].Slot == s.Slot {
				c.Shadows[i] = s
				replaced = true
				break
			}
		}
		if !replaced {
			c.Shadows = append(c.Shadows, s)
		}
	}
}

// Digit is a radix digit written as "P3", "p3" or 3.
type Digit radix.Digit

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Digit) UnmarshalText(b []byte) error {
	parsed, err := radix.ParseDigit(string(b))
	if err != nil {
		return err
	}
	*d = Digit(parsed)
	return nil
}

// UnmarshalJSON accepts a JSON number or string.
func (d *Digit) UnmarshalJSON(b []byte) error {
	return d.UnmarshalText([]byte(strings.Trim(string(b), `"`)))
}

// UnmarshalYAML accepts a YAML scalar.
func (d *Digit) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: digit must be a scalar", n.Line)
	}
	if err := d.UnmarshalText([]byte(n.Value)); err != nil {
		return fmt.Errorf("line %d: %w", n.Line, err)
	}
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Digit) MarshalText() ([]byte, error) {
	return []byte(radix.Digit(d).String()), nil
}

// Duration is a time.Duration written as "500ms" or "2s".
type Duration time.Duration

// String returns the duration in time.Duration notation.
func (d Duration) String() string { return time.Duration(d).String() }

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	parsed, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// UnmarshalYAML accepts a YAML scalar.
func (d *Duration) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: duration must be a scalar", n.Line)
	}
	if err := d.UnmarshalText([]byte(n.Value)); err != nil {
		return fmt.Errorf("line %d: %w", n.Line, err)
	}
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}
