package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"p9e.in/aquaentry/models"
	"p9e.in/aquaentry/utils"
)

// Gating selects how form controls unlock.
type Gating int

const (
	// GatingSequential unlocks each control only after its predecessor step.
	GatingSequential Gating = iota
	// GatingUnlocked enables every control at initialization.
	GatingUnlocked
)

// ParseGating maps "sequential" or "unlocked" to a Gating.
func ParseGating(s string) (Gating, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "sequential":
		return GatingSequential, nil
	case "unlocked":
		return GatingUnlocked, nil
	}
	return 0, fmt.Errorf("unknown gating mode %q", s)
}

// DeviceInformationService is the optional service requested when pairing.
const DeviceInformationService = "device_information"

// Timeouts bound every asynchronous capability call.
type Timeouts struct {
	Location time.Duration
	Pairing  time.Duration
	Sensor   time.Duration
	Decode   time.Duration
	Submit   time.Duration
}

// DefaultTimeouts are used for any zero field.
var DefaultTimeouts = Timeouts{
	Location: 15 * time.Second,
	Pairing:  60 * time.Second,
	Sensor:   10 * time.Second,
	Decode:   10 * time.Second,
	Submit:   30 * time.Second,
}

// Options wires a Controller to its collaborators. Locator and Pairer may be
// nil when the platform lacks the capability.
type Options struct {
	Gating      Gating
	ProjectType string

	Locator   Locator
	Pairer    Pairer
	Sensor    SensorSource
	Decoder   ImageDecoder
	Submitter Submitter
	Map       MapView
	Notifier  Notifier
	Navigator Navigator
	Logger    *zap.Logger

	Now      func() time.Time
	Sleep    func(time.Duration)
	Timeouts Timeouts
	Dwell    time.Duration
	MapZoom  int
	HomePath string
}

type operation int

const (
	opLocate operation = iota
	opScan
	opSensor
	opSubmit
)

// Controller sequences the data-entry workflow for one form. It is safe for
// use from several goroutines; each asynchronous operation runs at most once
// at a time.
type Controller struct {
	opts Options
	log  *zap.Logger

	mu         sync.Mutex
	record     FormRecord
	progress   *Progress
	enabled    map[Field]bool
	connected  bool
	status     BluetoothStatus
	preview    Preview
	previewSeq uint64
	inflight   map[operation]uint64
	claims     uint64
	closed     bool
}

// New builds a controller and initializes it.
func New(opts Options) *Controller {
	if opts.Sensor == nil {
		opts.Sensor = NewSimulatedSensor(nil)
	}
	if opts.Decoder == nil {
		opts.Decoder = DataURLDecoder{}
	}
	if opts.Notifier == nil {
		opts.Notifier = nopNotifier{}
	}
	if opts.Navigator == nil {
		opts.Navigator = nopNavigator{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Sleep == nil {
		opts.Sleep = time.Sleep
	}
	if opts.Dwell == 0 {
		opts.Dwell = 2 * time.Second
	}
	if opts.MapZoom == 0 {
		opts.MapZoom = 15
	}
	if opts.HomePath == "" {
		opts.HomePath = "/"
	}
	opts.Timeouts = withDefaults(opts.Timeouts)

	c := &Controller{opts: opts, log: opts.Logger.Named("workflow")}
	c.Initialize()
	return c
}

func withDefaults(t Timeouts) Timeouts {
	if t.Location == 0 {
		t.Location = DefaultTimeouts.Location
	}
	if t.Pairing == 0 {
		t.Pairing = DefaultTimeouts.Pairing
	}
	if t.Sensor == 0 {
		t.Sensor = DefaultTimeouts.Sensor
	}
	if t.Decode == 0 {
		t.Decode = DefaultTimeouts.Decode
	}
	if t.Submit == 0 {
		t.Submit = DefaultTimeouts.Submit
	}
	return t
}

// Initialize starts a fresh record: every marker Pending except Location,
// date and time from the clock, controls locked or unlocked per gating mode.
func (c *Controller) Initialize() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.record = FormRecord{ProjectType: c.opts.ProjectType}
	c.record.stamp(c.opts.Now())
	c.progress = newProgress()
	c.enabled = make(map[Field]bool, len(allFields))
	if c.opts.Gating == GatingUnlocked {
		for _, f := range allFields {
			c.enabled[f] = true
		}
	}
	c.connected = false
	c.status = BluetoothStatus{State: BluetoothIdle}
	c.preview = Preview{}
	c.previewSeq++
	c.inflight = make(map[operation]uint64)
	c.closed = false

	c.log.Debug("workflow initialized", zap.Int("gating", int(c.opts.Gating)))
}

// DetectLocation asks the locator for the current position.
func (c *Controller) DetectLocation(ctx context.Context) error {
	claim, err := c.begin(opLocate, -1)
	if err != nil {
		return err
	}
	defer c.end(opLocate, claim)

	if c.opts.Locator == nil {
		c.opts.Notifier.Alert("Geolocation not supported.")
		return fmt.Errorf("detect location: %w", ErrUnsupported)
	}

	ctx, cancel := context.WithTimeout(ctx, c.opts.Timeouts.Location)
	defer cancel()
	pt, err := c.opts.Locator.CurrentPosition(ctx)
	if err == nil {
		err = utils.ValidatePoint(pt)
	}
	if err != nil {
		c.log.Warn("location detection failed", zap.Error(err))
		c.opts.Notifier.Alert("Unable to detect location.")
		return fmt.Errorf("detect location: %w", err)
	}
	pt = utils.RoundPoint(pt)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.record.Location = &pt
	c.enabled[FieldLatitude] = true
	c.enabled[FieldLongitude] = true
	c.enabled[FieldWaterType] = true
	c.progress.done(StepLocation)
	c.mu.Unlock()

	c.log.Info("location detected", zap.Float64("lat", pt.Lat()), zap.Float64("lon", pt.Lon()))
	if c.opts.Map != nil {
		c.opts.Map.Show(pt, c.opts.MapZoom)
	}
	return nil
}

// SelectWaterType records the selected water body. A cleared selection locks
// the Pin ID field again but leaves the progress markers as they were.
func (c *Controller) SelectWaterType(value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.usable(FieldWaterType); err != nil {
		return err
	}

	value = strings.TrimSpace(value)
	if value != "" && !IsWaterType(value) {
		return fmt.Errorf("%w: %q", ErrUnknownWaterType, value)
	}
	c.record.WaterType = value
	if value == "" {
		c.enabled[FieldPinID] = false
		return nil
	}
	c.enabled[FieldPinID] = true
	c.progress.done(StepWaterType)
	return nil
}

// SetPinID records the sampling pin. An empty value locks the scan trigger.
func (c *Controller) SetPinID(value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.usable(FieldPinID); err != nil {
		return err
	}

	value = strings.TrimSpace(value)
	c.record.PinID = value
	if value == "" {
		c.enabled[FieldScan] = false
		return nil
	}
	c.enabled[FieldScan] = true
	c.progress.done(StepPinID)
	return nil
}

// ScanBluetooth runs the full pairing flow. Every call pairs again and
// replaces any earlier connection.
func (c *Controller) ScanBluetooth(ctx context.Context) error {
	claim, err := c.begin(opScan, FieldScan)
	if err != nil {
		return err
	}
	defer c.end(opScan, claim)

	c.setStatus(BluetoothStatus{State: BluetoothScanning})

	if c.opts.Pairer == nil {
		c.mu.Lock()
		c.connected = false
		c.mu.Unlock()
		c.setStatus(BluetoothStatus{State: BluetoothUnsupported, Message: "Bluetooth not supported in this browser."})
		return fmt.Errorf("scan bluetooth: %w", ErrUnsupported)
	}

	ctx, cancel := context.WithTimeout(ctx, c.opts.Timeouts.Pairing)
	defer cancel()
	dev, err := c.opts.Pairer.RequestDevice(ctx, PairingRequest{
		AcceptAllDevices: true,
		OptionalServices: []string{DeviceInformationService},
	})
	if err == nil && dev.Label() == "" {
		err = ErrNoResult
	}
	if err != nil {
		c.log.Warn("bluetooth pairing failed", zap.Error(err))
		c.mu.Lock()
		c.connected = false
		c.record.BluetoothDevice = ""
		c.mu.Unlock()
		c.setStatus(BluetoothStatus{State: BluetoothNotConnected, Message: pairingMessage(err)})
		return fmt.Errorf("scan bluetooth: %w", err)
	}

	name := dev.Label()
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.record.BluetoothDevice = name
	c.connected = true
	c.enabled[FieldReadSensor] = true
	c.progress.done(StepBluetooth)
	c.mu.Unlock()

	c.log.Info("bluetooth device connected", zap.String("device", name))
	c.setStatus(BluetoothStatus{State: BluetoothConnected, Message: "Connected to " + name})
	return nil
}

func pairingMessage(err error) string {
	msg := "No Bluetooth devices found or permission denied."
	var perr *PairingError
	switch {
	case errors.As(err, &perr):
		switch perr.Kind {
		case PairingNotFound:
			msg += " (No devices found or selection cancelled)"
		case PairingNotAllowed:
			msg += " (Permission denied. Make sure to allow Bluetooth access.)"
		case PairingNotSupported:
			msg += " (Web Bluetooth not supported on this device/browser.)"
		}
	case errors.Is(err, context.DeadlineExceeded):
		msg += " (Timed out waiting for a device.)"
	}
	return msg
}

// ReadSensorData fills the seven sensor fields from the sensor source.
func (c *Controller) ReadSensorData(ctx context.Context) error {
	claim, err := c.begin(opSensor, FieldReadSensor)
	if err != nil {
		return err
	}
	defer c.end(opSensor, claim)

	ctx, cancel := context.WithTimeout(ctx, c.opts.Timeouts.Sensor)
	defer cancel()
	readings, err := c.opts.Sensor.Read(ctx)
	if err != nil {
		c.log.Warn("sensor read failed", zap.Error(err))
		c.opts.Notifier.Failure("Unable to read sensor data.")
		return fmt.Errorf("read sensor data: %w", err)
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.record.Readings = &readings
	c.enabled[FieldSensorValues] = true
	c.enabled[FieldImage] = true
	c.enabled[FieldSubmit] = true
	c.progress.done(StepSensor)
	c.mu.Unlock()

	c.log.Info("sensor data read", zap.Any("readings", readings))
	return nil
}

// SetReadings overwrites the sensor values after they became editable.
func (c *Controller) SetReadings(r models.SensorReadings) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.usable(FieldSensorValues); err != nil {
		return err
	}
	c.record.Readings = &r
	return nil
}

// PreviewImage attaches img and shows its preview; nil clears both. A newer
// call supersedes a decode still in flight. Decode failures hide the preview
// and are otherwise ignored.
func (c *Controller) PreviewImage(ctx context.Context, img *Attachment) error {
	c.mu.Lock()
	if err := c.usable(FieldImage); err != nil {
		c.mu.Unlock()
		return err
	}
	c.previewSeq++
	seq := c.previewSeq
	if img == nil {
		c.record.Image = nil
		c.preview = Preview{}
		c.mu.Unlock()
		c.opts.Notifier.Preview(Preview{})
		return nil
	}
	att := *img
	c.record.Image = &att
	c.progress.done(StepImage)
	c.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, c.opts.Timeouts.Decode)
	defer cancel()
	url, err := c.opts.Decoder.Decode(ctx, att)

	c.mu.Lock()
	if seq != c.previewSeq {
		c.mu.Unlock()
		return nil
	}
	if err != nil {
		c.log.Debug("image preview unavailable", zap.String("file", att.Filename), zap.Error(err))
		c.preview = Preview{}
	} else {
		c.preview = Preview{Visible: true, URL: url}
	}
	p := c.preview
	c.mu.Unlock()

	c.opts.Notifier.Preview(p)
	return nil
}

// Submit stamps the record with the current date and time and posts it. On
// success it confirms, waits the dwell and navigates home, discarding the
// record. On any failure the record is kept for another attempt.
func (c *Controller) Submit(ctx context.Context) error {
	claim, err := c.begin(opSubmit, FieldSubmit)
	if err != nil {
		return err
	}
	defer c.end(opSubmit, claim)

	if c.opts.Submitter == nil {
		c.opts.Notifier.Failure("Submission is not available.")
		return fmt.Errorf("submit: %w", ErrUnsupported)
	}

	c.mu.Lock()
	c.record.stamp(c.opts.Now())
	snapshot := c.record.clone()
	c.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, c.opts.Timeouts.Submit)
	defer cancel()
	res, err := c.opts.Submitter.Submit(ctx, Submission{Fields: snapshot.Values(), Image: snapshot.Image})
	if err == nil && !res.Success {
		err = &SubmitError{Reason: res.Error}
	}
	if err != nil {
		c.log.Error("submission failed", zap.String("pin_id", snapshot.PinID), zap.Error(err))
		c.opts.Notifier.Failure(failureMessage(err))
		return fmt.Errorf("submit: %w", err)
	}

	c.mu.Lock()
	c.progress.done(StepImage)
	c.mu.Unlock()

	c.log.Info("submission accepted", zap.String("id", res.ID), zap.String("pin_id", snapshot.PinID))
	c.opts.Notifier.Confirmation("Mission data uplink successful")
	c.opts.Sleep(c.opts.Dwell)

	c.mu.Lock()
	c.closed = true
	c.record = FormRecord{}
	c.mu.Unlock()

	c.opts.Navigator.Navigate(c.opts.HomePath)
	return nil
}

func failureMessage(err error) string {
	reason := err.Error()
	var serr *SubmitError
	if errors.As(err, &serr) && serr.Reason != "" {
		reason = serr.Reason
	}
	return "Submission failed: " + reason + ". Your entries were kept, please try again."
}

// Record returns a copy of the in-progress record.
func (c *Controller) Record() FormRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.record.clone()
}

// State returns the marker of a step.
func (c *Controller) State(s Step) MarkerState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.progress.State(s)
}

// Markers returns every step marker.
func (c *Controller) Markers() map[Step]MarkerState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.progress.Snapshot()
}

// Transitions returns the marker history since the last Initialize.
func (c *Controller) Transitions() []Transition {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.progress.Transitions()
}

// Complete reports whether every step is Done.
func (c *Controller) Complete() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.progress.Complete()
}

// Enabled reports whether a control is currently usable. Controls are
// disabled while their own operation is in flight.
func (c *Controller) Enabled(f Field) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if op, ok := fieldOps[f]; ok && c.inflight[op] != 0 {
		return false
	}
	return c.enabled[f]
}

// Connected reports whether a device is paired.
func (c *Controller) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// BluetoothStatus returns the pairing indicator.
func (c *Controller) BluetoothStatus() BluetoothStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Preview returns the image preview region.
func (c *Controller) Preview() Preview {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.preview
}

// Closed reports whether a successful submission ended the workflow.
func (c *Controller) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

var fieldOps = map[Field]operation{
	FieldScan:       opScan,
	FieldReadSensor: opSensor,
	FieldSubmit:     opSubmit,
}

// begin claims op and returns the claim to hand back to end. gate is the
// control that must be enabled, or -1.
func (c *Controller) begin(op operation, gate Field) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return 0, ErrClosed
	}
	if c.inflight[op] != 0 {
		return 0, ErrBusy
	}
	if gate >= 0 && !c.enabled[gate] {
		return 0, fmt.Errorf("%s: %w", gate, ErrLocked)
	}
	c.claims++
	c.inflight[op] = c.claims
	return c.claims, nil
}

// end releases op only if claim still owns it; an Initialize in between
// may have handed op to a newer call.
func (c *Controller) end(op operation, claim uint64) {
	c.mu.Lock()
	if c.inflight[op] == claim {
		delete(c.inflight, op)
	}
	c.mu.Unlock()
}

// usable must be called with mu held.
func (c *Controller) usable(f Field) error {
	if c.closed {
		return ErrClosed
	}
	if !c.enabled[f] {
		return fmt.Errorf("%s: %w", f, ErrLocked)
	}
	return nil
}

func (c *Controller) setStatus(s BluetoothStatus) {
	c.mu.Lock()
	c.status = s
	c.mu.Unlock()
	c.opts.Notifier.Bluetooth(s)
}
