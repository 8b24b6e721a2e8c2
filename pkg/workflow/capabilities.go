package workflow

import (
	"context"
	"errors"
	"fmt"

	"github.com/paulmach/orb"
	"p9e.in/aquaentry/models"
)

var (
	// ErrUnsupported means the platform has no such capability.
	ErrUnsupported = errors.New("capability not supported")
	// ErrNoResult means the capability returned without a usable value.
	ErrNoResult = errors.New("capability returned no result")
	// ErrBusy is returned while the same operation is still in flight.
	ErrBusy = errors.New("operation already in progress")
	// ErrLocked is returned when the control for an operation is disabled.
	ErrLocked = errors.New("control is locked until the previous step completes")
	// ErrClosed is returned after a successful submission discarded the record.
	ErrClosed = errors.New("workflow closed")
)

// Locator resolves the current position.
type Locator interface {
	CurrentPosition(ctx context.Context) (orb.Point, error)
}

// PairingRequest is the device filter passed to a Pairer.
type PairingRequest struct {
	AcceptAllDevices bool
	OptionalServices []string
}

// Device is a paired peripheral.
type Device struct {
	ID   string
	Name string
}

// Label returns the name, falling back to the identifier.
func (d Device) Label() string {
	if d.Name != "" {
		return d.Name
	}
	return d.ID
}

// Pairer asks the platform to pick and connect a wireless peripheral.
type Pairer interface {
	RequestDevice(ctx context.Context, req PairingRequest) (Device, error)
}

// PairingErrorKind classifies pairing failures.
type PairingErrorKind int

const (
	PairingOther PairingErrorKind = iota
	PairingNotFound
	PairingNotAllowed
	PairingNotSupported
)

func (k PairingErrorKind) String() string {
	switch k {
	case PairingNotFound:
		return "not_found"
	case PairingNotAllowed:
		return "not_allowed"
	case PairingNotSupported:
		return "not_supported"
	}
	return "other"
}

// PairingError is a categorized pairing failure.
type PairingError struct {
	Kind PairingErrorKind
	Err  error
}

func (e *PairingError) Error() string {
	if e.Err == nil {
		return "pairing failed: " + e.Kind.String()
	}
	return fmt.Sprintf("pairing failed (%s): %v", e.Kind, e.Err)
}

func (e *PairingError) Unwrap() error { return e.Err }

// SensorSource produces one set of readings.
type SensorSource interface {
	Read(ctx context.Context) (models.SensorReadings, error)
}

// ImageDecoder turns an attachment into an inline displayable URL.
type ImageDecoder interface {
	Decode(ctx context.Context, img Attachment) (string, error)
}

// Submission is what a Submitter sends.
type Submission struct {
	Fields map[string]string
	Image  *Attachment
}

// SubmitResult is the decoded server answer.
type SubmitResult struct {
	Success bool   `json:"success"`
	ID      string `json:"id,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Submitter delivers a submission to the backend.
type Submitter interface {
	Submit(ctx context.Context, s Submission) (SubmitResult, error)
}

// MapView renders one marker on an interactive map.
type MapView interface {
	Show(center orb.Point, zoom int)
}

// Navigator leaves the data-entry page.
type Navigator interface {
	Navigate(path string)
}

// BluetoothState is the pairing indicator state.
type BluetoothState int

const (
	BluetoothIdle BluetoothState = iota
	BluetoothScanning
	BluetoothConnected
	BluetoothNotConnected
	BluetoothUnsupported
)

func (s BluetoothState) String() string {
	switch s {
	case BluetoothScanning:
		return "Scanning"
	case BluetoothConnected:
		return "Connected"
	case BluetoothNotConnected:
		return "Not Connected"
	case BluetoothUnsupported:
		return "Bluetooth not supported"
	}
	return "Idle"
}

// BluetoothStatus is the indicator plus the message shown under it.
type BluetoothStatus struct {
	State   BluetoothState
	Message string
}

// Preview is the image preview region.
type Preview struct {
	Visible bool
	URL     string
}

// Notifier presents user-facing feedback.
type Notifier interface {
	Alert(msg string)
	Bluetooth(status BluetoothStatus)
	Preview(p Preview)
	Confirmation(msg string)
	Failure(msg string)
}

type nopNotifier struct{}

func (nopNotifier) Alert(string)              {}
func (nopNotifier) Bluetooth(BluetoothStatus) {}
func (nopNotifier) Preview(Preview)           {}
func (nopNotifier) Confirmation(string)       {}
func (nopNotifier) Failure(string)            {}

type nopNavigator struct{}

func (nopNavigator) Navigate(string) {}
