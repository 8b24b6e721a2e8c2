package workflow

import (
	"encoding/json"
	"sync"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// GeoJSONMap is a MapView that keeps a single map instance with one marker
// and exports it as GeoJSON for a tile renderer.
type GeoJSONMap struct {
	mu        sync.Mutex
	instances int
	center    orb.Point
	zoom      int
	marker    *geojson.Feature
}

// Show creates the map on first use and re-centres it afterwards, replacing
// the previous marker.
func (m *GeoJSONMap) Show(center orb.Point, zoom int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.instances == 0 {
		m.instances = 1
	}
	m.center = center
	m.zoom = zoom
	m.marker = geojson.NewFeature(center)
	m.marker.Properties["marker"] = "glow"
}

// Instances reports how many map instances were created (0 or 1).
func (m *GeoJSONMap) Instances() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.instances
}

// View returns the current centre and zoom.
func (m *GeoJSONMap) View() (orb.Point, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.center, m.zoom
}

// MarshalJSON renders the marker layer as a FeatureCollection.
func (m *GeoJSONMap) MarshalJSON() ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	fc := geojson.NewFeatureCollection()
	if m.marker != nil {
		fc.Append(m.marker)
	}
	fc.ExtraMembers = geojson.Properties{"zoom": m.zoom}
	return json.Marshal(fc)
}
