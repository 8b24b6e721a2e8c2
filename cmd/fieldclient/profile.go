package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/paulmach/orb"
	"gopkg.in/yaml.v3"

	"p9e.in/aquaentry/pkg/workflow"
)

// Profile describes one field run: where to submit, what to enter and how
// the platform capabilities answer.
type Profile struct {
	Server      string        `yaml:"server"`
	Username    string        `yaml:"username"`
	Password    string        `yaml:"password"`
	ProjectType string        `yaml:"project_type,omitempty"`
	Gating      string        `yaml:"gating,omitempty"`
	WaterType   string        `yaml:"water_type"`
	PinID       string        `yaml:"pin_id"`
	Image       string        `yaml:"image,omitempty"`
	Sensor      string        `yaml:"sensor,omitempty"` // api or simulated
	Position    *PositionSpec `yaml:"position,omitempty"`
	Device      *DeviceSpec   `yaml:"device,omitempty"`
	Timeouts    TimeoutSpec   `yaml:"timeouts,omitempty"`
}

// PositionSpec is the scripted locator answer. Omit the block to run
// without a location capability.
type PositionSpec struct {
	Latitude  float64 `yaml:"latitude"`
	Longitude float64 `yaml:"longitude"`
	Error     string  `yaml:"error,omitempty"`
}

// DeviceSpec is the scripted pairing answer. Error takes not_found,
// not_allowed, not_supported or other.
type DeviceSpec struct {
	ID    string `yaml:"id,omitempty"`
	Name  string `yaml:"name,omitempty"`
	Error string `yaml:"error,omitempty"`
}

type TimeoutSpec struct {
	Location time.Duration `yaml:"location,omitempty"`
	Pairing  time.Duration `yaml:"pairing,omitempty"`
	Sensor   time.Duration `yaml:"sensor,omitempty"`
	Submit   time.Duration `yaml:"submit,omitempty"`
}

// LoadProfile reads and validates a YAML profile.
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile: %w", err)
	}
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse profile %s: %w", path, err)
	}
	if err := p.validate(); err != nil {
		return nil, fmt.Errorf("profile %s: %w", path, err)
	}
	return &p, nil
}

func (p *Profile) validate() error {
	if p.Sensor == "" {
		p.Sensor = "api"
	}
	if p.Sensor != "api" && p.Sensor != "simulated" {
		return fmt.Errorf("unknown sensor %q", p.Sensor)
	}
	if _, err := workflow.ParseGating(p.Gating); err != nil {
		return err
	}
	if p.Device != nil && p.Device.Error != "" {
		if _, err := parsePairingKind(p.Device.Error); err != nil {
			return err
		}
	}
	return nil
}

func (p *Profile) timeouts() workflow.Timeouts {
	return workflow.Timeouts{
		Location: p.Timeouts.Location,
		Pairing:  p.Timeouts.Pairing,
		Sensor:   p.Timeouts.Sensor,
		Submit:   p.Timeouts.Submit,
	}
}

func parsePairingKind(s string) (workflow.PairingErrorKind, error) {
	for _, k := range []workflow.PairingErrorKind{
		workflow.PairingNotFound,
		workflow.PairingNotAllowed,
		workflow.PairingNotSupported,
		workflow.PairingOther,
	} {
		if k.String() == s {
			return k, nil
		}
	}
	return workflow.PairingOther, fmt.Errorf("unknown pairing error %q", s)
}

type scriptedLocator struct{ spec PositionSpec }

func (l scriptedLocator) CurrentPosition(ctx context.Context) (orb.Point, error) {
	if err := ctx.Err(); err != nil {
		return orb.Point{}, err
	}
	if l.spec.Error != "" {
		return orb.Point{}, errors.New(l.spec.Error)
	}
	return orb.Point{l.spec.Longitude, l.spec.Latitude}, nil
}

type scriptedPairer struct{ spec DeviceSpec }

func (s scriptedPairer) RequestDevice(ctx context.Context, req workflow.PairingRequest) (workflow.Device, error) {
	if err := ctx.Err(); err != nil {
		return workflow.Device{}, err
	}
	if s.spec.Error != "" {
		kind, _ := parsePairingKind(s.spec.Error)
		return workflow.Device{}, &workflow.PairingError{Kind: kind, Err: errors.New("scripted failure")}
	}
	return workflow.Device{ID: s.spec.ID, Name: s.spec.Name}, nil
}

// capabilities returns nil interfaces for the blocks the profile omits.
func (p *Profile) capabilities() (workflow.Locator, workflow.Pairer) {
	var (
		loc workflow.Locator
		pr  workflow.Pairer
	)
	if p.Position != nil {
		loc = scriptedLocator{spec: *p.Position}
	}
	if p.Device != nil {
		pr = scriptedPairer{spec: *p.Device}
	}
	return loc, pr
}
