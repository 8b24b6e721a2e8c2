package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"net/http"
	"strings"
	"sync"
	"time"

	"p9e.in/aquaentry/models"
)

// SimulatedSensor draws every reading uniformly from its fixed range.
type SimulatedSensor struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSimulatedSensor uses rng, or a time-seeded generator when nil.
func NewSimulatedSensor(rng *rand.Rand) *SimulatedSensor {
	if rng == nil {
		seed := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(seed, seed>>1|1))
	}
	return &SimulatedSensor{rng: rng}
}

// Read never fails.
func (s *SimulatedSensor) Read(ctx context.Context) (models.SensorReadings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out models.SensorReadings
	for _, f := range models.SensorFields {
		v := models.Round(f.Min+s.rng.Float64()*(f.Max-f.Min), f.Decimals)
		_ = out.Set(f.Name, v)
	}
	return out, nil
}

// APISensor fetches readings from the backend sensor endpoint.
type APISensor struct {
	BaseURL string
	Token   string
	Client  *http.Client
}

// Read performs GET {BaseURL}/api/sensor_data.
func (s *APISensor) Read(ctx context.Context) (models.SensorReadings, error) {
	var out models.SensorReadings
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(s.BaseURL, "/")+"/api/sensor_data", nil)
	if err != nil {
		return out, err
	}
	if s.Token != "" {
		req.Header.Set("Authorization", "Bearer "+s.Token)
	}
	resp, err := httpClient(s.Client).Do(req)
	if err != nil {
		return out, fmt.Errorf("sensor endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return out, fmt.Errorf("sensor endpoint returned %s", resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return out, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return out, nil
}

func httpClient(c *http.Client) *http.Client {
	if c != nil {
		return c
	}
	return http.DefaultClient
}
