package pvwatts

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/heliowatt/heliowatt/internal/domain/simulation"
	"github.com/heliowatt/heliowatt/pkg/metrics"
)

const defaultBaseURL = "https://developer.nrel.gov/api/pvwatts/v8.json"

// Constants the estimation API expects on every request.
const (
	groundCoverageRatio  = "0.4"
	useWeatherFileAlbedo = "1"
)

// Client fetches PV yield estimates from the NREL PVWatts API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient builds an API client. The key is mandatory for every call, so it
// is bound once here rather than passed per request.
func NewClient(baseURL, apiKey string) *Client {
	endpoint := strings.TrimSpace(baseURL)
	if endpoint == "" {
		endpoint = defaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(endpoint, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			// hourly responses carry two year-long sample series
			Timeout: 30 * time.Second,
		},
	}
}

// Estimate runs one yield simulation for a site and system configuration.
func (c *Client) Estimate(ctx context.Context, lat, lon float64, cfg simulation.SystemConfig) (simulation.Estimate, error) {
	start := time.Now()
	est, err := c.estimate(ctx, lat, lon, cfg)
	metrics.RecordUpstreamRequest("pvwatts", time.Since(start), err)
	return est, err
}

func (c *Client) estimate(ctx context.Context, lat, lon float64, cfg simulation.SystemConfig) (simulation.Estimate, error) {
	endpoint := c.baseURL + "?" + BuildQuery(c.apiKey, lat, lon, cfg).Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return simulation.Estimate{}, fmt.Errorf("build estimation request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return simulation.Estimate{}, fmt.Errorf("estimation request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return simulation.Estimate{}, &simulation.UpstreamError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(payload)),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return simulation.Estimate{}, fmt.Errorf("read estimation response: %w", err)
	}

	var raw apiResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return simulation.Estimate{}, fmt.Errorf("decode estimation response: %w", err)
	}
	if len(raw.Errors) > 0 {
		return simulation.Estimate{}, fmt.Errorf("estimation api error: %s", strings.Join(raw.Errors, "; "))
	}
	return normalizeResponse(raw)
}

// BuildQuery maps the site coordinates and system configuration onto the
// query parameters the estimation API expects.
func BuildQuery(apiKey string, lat, lon float64, cfg simulation.SystemConfig) url.Values {
	q := url.Values{}
	q.Set("api_key", apiKey)
	q.Set("lat", formatFloat(lat))
	q.Set("lon", formatFloat(lon))
	q.Set("system_capacity", formatFloat(cfg.CapacityKW))
	q.Set("module_type", strconv.Itoa(cfg.ModuleType))
	q.Set("losses", formatFloat(cfg.LossesPct))
	q.Set("array_type", strconv.Itoa(cfg.ArrayType))
	q.Set("tilt", formatFloat(cfg.TiltDeg))
	q.Set("azimuth", formatFloat(cfg.AzimuthDeg))
	q.Set("dc_ac_ratio", formatFloat(cfg.DCACRatio))
	q.Set("timeframe", cfg.Timeframe)
	q.Set("format", "json")
	q.Set("dataset", cfg.Dataset)
	q.Set("radius", strconv.Itoa(cfg.RadiusMiles))
	q.Set("gcr", groundCoverageRatio)
	q.Set("inv_eff", formatFloat(cfg.InverterEffPct))
	q.Set("use_wf_albedo", useWeatherFileAlbedo)
	return q
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

type apiResponse struct {
	Outputs     json.RawMessage `json:"outputs"`
	StationInfo apiStation      `json:"station_info"`
	Errors      []string        `json:"errors"`
}

type apiOutputs struct {
	ACAnnual       float64   `json:"ac_annual"`
	CapacityFactor float64   `json:"capacity_factor"`
	ACMonthly      []float64 `json:"ac_monthly"`
	AC             []float64 `json:"ac"`
	DC             []float64 `json:"dc"`
}

type apiStation struct {
	City              string   `json:"city"`
	State             string   `json:"state"`
	Lat               *float64 `json:"lat"`
	Lon               *float64 `json:"lon"`
	Elev              *float64 `json:"elev"`
	TimeZone          *float64 `json:"time_zone"`
	SolarResourceFile string   `json:"solar_resource_file"`
	Distance          *float64 `json:"distance"`
}

func normalizeResponse(raw apiResponse) (simulation.Estimate, error) {
	est := simulation.Estimate{Station: normalizeStation(raw.StationInfo)}
	if !hasOutputs(raw.Outputs) {
		return est, nil
	}

	var out apiOutputs
	if err := json.Unmarshal(raw.Outputs, &out); err != nil {
		return simulation.Estimate{}, fmt.Errorf("decode estimation outputs: %w", err)
	}
	est.HasOutputs = true
	est.AnnualACKWh = out.ACAnnual
	est.CapacityFactor = out.CapacityFactor
	est.MonthlyACKWh = out.ACMonthly
	est.HourlyAC = out.AC
	est.HourlyDC = out.DC
	return est, nil
}

// hasOutputs reports whether the outputs block is present and non-empty. The
// API returns an empty object when a site has no usable resource data.
func hasOutputs(raw json.RawMessage) bool {
	trimmed := strings.TrimSpace(string(raw))
	return trimmed != "" && trimmed != "null" && trimmed != "{}"
}

func normalizeStation(st apiStation) simulation.Station {
	return simulation.Station{
		City:      st.City,
		State:     st.State,
		Latitude:  st.Lat,
		Longitude: st.Lon,
		Elevation: st.Elev,
		TimeZone:  st.TimeZone,
		Dataset:   st.SolarResourceFile,
		Distance:  st.Distance,
	}
}

var _ simulation.Estimator = (*Client)(nil)
