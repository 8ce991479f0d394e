package roadnet

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"taxi-dispatch-system/geo"
)

// Provider supplies raw road networks for a bounding box.
type Provider interface {
	FetchNetwork(ctx context.Context, box BBox) (*RawNetwork, error)
}

// OverpassClient fetches drivable ways from an Overpass API endpoint.
type OverpassClient struct {
	baseURL    string
	httpClient *http.Client
	limiter    *time.Ticker
}

// NewOverpassClient builds a client against the given interpreter URL.
// Requests are spaced out to stay friendly to public Overpass instances.
func NewOverpassClient(baseURL string, timeout time.Duration) *OverpassClient {
	return &OverpassClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    time.NewTicker(500 * time.Millisecond),
	}
}

type overpassElement struct {
	Type  string            `json:"type"`
	ID    int64             `json:"id"`
	Lat   float64           `json:"lat"`
	Lon   float64           `json:"lon"`
	Nodes []int64           `json:"nodes"`
	Tags  map[string]string `json:"tags"`
}

type overpassResponse struct {
	Elements []overpassElement `json:"elements"`
}

func (c *OverpassClient) FetchNetwork(ctx context.Context, box BBox) (*RawNetwork, error) {
	select {
	case <-c.limiter.C:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	query := fmt.Sprintf(
		`[out:json][timeout:25];way["highway"](%f,%f,%f,%f);(._;>;);out body;`,
		box.South, box.West, box.North, box.East,
	)

	form := url.Values{}
	form.Set("data", query)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("building overpass request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("overpass request for %s: %w", box.Key(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("overpass returned status %d for %s", resp.StatusCode, box.Key())
	}

	var decoded overpassResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decoding overpass response: %w", err)
	}
	return networkFromElements(decoded.Elements), nil
}

// networkFromElements turns Overpass nodes and ways into a raw directed
// network. Each way contributes an edge per consecutive node pair, plus
// the reverse edge unless the way is one-way.
func networkFromElements(elements []overpassElement) *RawNetwork {
	raw := &RawNetwork{}
	coords := make(map[int64]RawNode)

	for _, el := range elements {
		if el.Type == "node" {
			node := RawNode{ID: el.ID, Lat: el.Lat, Lon: el.Lon}
			coords[el.ID] = node
			raw.Nodes = append(raw.Nodes, node)
		}
	}

	for _, el := range elements {
		if el.Type != "way" {
			continue
		}
		class := el.Tags["highway"]
		oneway := el.Tags["oneway"] == "yes"

		for i := 0; i+1 < len(el.Nodes); i++ {
			from, okFrom := coords[el.Nodes[i]]
			to, okTo := coords[el.Nodes[i+1]]
			if !okFrom || !okTo {
				continue
			}
			length := geo.HaversineKm(from.Lat, from.Lon, to.Lat, to.Lon) * 1000
			raw.Edges = append(raw.Edges, RawEdge{From: from.ID, To: to.ID, LengthM: length, RoadClass: class})
			if !oneway {
				raw.Edges = append(raw.Edges, RawEdge{From: to.ID, To: from.ID, LengthM: length, RoadClass: class})
			}
		}
	}
	return raw
}
