package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"p9e.in/aquaentry/pkg/logging"
	"p9e.in/aquaentry/pkg/workflow"
)

var (
	profilePath    string
	serverOverride string
	imageOverride  string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the data-entry workflow once and submit",
	Example: `  # Submit using the profile's server
  fieldclient run --profile lake-north.yaml

  # Against a local backend with a site photo
  fieldclient run --profile lake-north.yaml --server http://localhost:8080 --image site.jpg`,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := LoadProfile(profilePath)
		if err != nil {
			return err
		}
		if serverOverride != "" {
			p.Server = serverOverride
		}
		if imageOverride != "" {
			p.Image = imageOverride
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		id, err := runWorkflow(ctx, p, logging.GetLogger(), time.Sleep)
		if err != nil {
			return err
		}
		fmt.Printf("Submitted sample %s\n", id)
		return nil
	},
}

func init() {
	runCmd.Flags().StringVar(&profilePath, "profile", "fieldclient.yaml", "YAML profile describing the run")
	runCmd.Flags().StringVar(&serverOverride, "server", "", "Backend base URL (overrides the profile)")
	runCmd.Flags().StringVar(&imageOverride, "image", "", "Site photo to attach (overrides the profile)")
}

// runWorkflow logs in, walks every step and submits. It returns the id the
// backend assigned to the sample.
func runWorkflow(ctx context.Context, p *Profile, log *zap.Logger, sleep func(time.Duration)) (string, error) {
	if p.Server == "" {
		return "", errors.New("no server configured")
	}
	client := &http.Client{Timeout: time.Minute}

	token, err := login(ctx, client, p)
	if err != nil {
		return "", err
	}

	gating, _ := workflow.ParseGating(p.Gating)
	var sensor workflow.SensorSource
	if p.Sensor == "api" {
		sensor = &workflow.APISensor{BaseURL: p.Server, Token: token, Client: client}
	}
	submitter := &captureSubmitter{next: &workflow.HTTPSubmitter{BaseURL: p.Server, Token: token, Client: client}}
	locator, pairer := p.capabilities()
	nav := &recordingNavigator{}

	c := workflow.New(workflow.Options{
		Gating:      gating,
		ProjectType: p.ProjectType,
		Locator:     locator,
		Pairer:      pairer,
		Sensor:      sensor,
		Submitter:   submitter,
		Map:         &workflow.GeoJSONMap{},
		Notifier:    zapNotifier{log: log.Named("ui")},
		Navigator:   nav,
		Logger:      log,
		Sleep:       sleep,
		Timeouts:    p.timeouts(),
	})

	steps := []struct {
		name string
		fn   func() error
	}{
		{"detect location", func() error { return c.DetectLocation(ctx) }},
		{"select water type", func() error { return c.SelectWaterType(p.WaterType) }},
		{"set pin id", func() error { return c.SetPinID(p.PinID) }},
		{"scan bluetooth", func() error { return c.ScanBluetooth(ctx) }},
		{"read sensor data", func() error { return c.ReadSensorData(ctx) }},
		{"attach image", func() error { return attachImage(ctx, c, p.Image) }},
	}
	for _, s := range steps {
		if err := s.fn(); err != nil {
			// Unlocked forms can still be submitted with a step missing.
			if gating == workflow.GatingUnlocked && !errors.Is(err, workflow.ErrBusy) {
				log.Warn("step failed, continuing", zap.String("step", s.name), zap.Error(err))
				continue
			}
			return "", fmt.Errorf("%s: %w", s.name, err)
		}
	}

	if err := c.Submit(ctx); err != nil {
		return "", err
	}
	log.Info("workflow finished", zap.String("navigated_to", nav.path))
	return submitter.id, nil
}

func attachImage(ctx context.Context, c *workflow.Controller, path string) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return c.PreviewImage(ctx, &workflow.Attachment{
		Filename:    filepath.Base(path),
		ContentType: http.DetectContentType(data),
		Data:        data,
	})
}

type loginResponse struct {
	Token string `json:"token"`
}

func login(ctx context.Context, client *http.Client, p *Profile) (string, error) {
	body, _ := json.Marshal(map[string]string{"username": p.Username, "password": p.Password})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(p.Server, "/")+"/login", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("login: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("login: server returned %s", resp.Status)
	}

	var out loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("login: %w", err)
	}
	if out.Token == "" {
		return "", errors.New("login: empty token")
	}
	return out.Token, nil
}

// captureSubmitter remembers the id of the last accepted submission.
type captureSubmitter struct {
	next workflow.Submitter
	id   string
}

func (s *captureSubmitter) Submit(ctx context.Context, sub workflow.Submission) (workflow.SubmitResult, error) {
	res, err := s.next.Submit(ctx, sub)
	if err == nil && res.Success {
		s.id = res.ID
	}
	return res, err
}

type recordingNavigator struct{ path string }

func (n *recordingNavigator) Navigate(path string) { n.path = path }

// zapNotifier prints user-facing feedback through the logger.
type zapNotifier struct{ log *zap.Logger }

func (n zapNotifier) Alert(msg string) { n.log.Warn(msg) }

func (n zapNotifier) Bluetooth(s workflow.BluetoothStatus) {
	n.log.Info("bluetooth", zap.Stringer("state", s.State), zap.String("message", s.Message))
}

func (n zapNotifier) Preview(p workflow.Preview) {
	n.log.Debug("image preview", zap.Bool("visible", p.Visible), zap.Int("url_bytes", len(p.URL)))
}

func (n zapNotifier) Confirmation(msg string) { n.log.Info(msg) }

func (n zapNotifier) Failure(msg string) { n.log.Error(msg) }
