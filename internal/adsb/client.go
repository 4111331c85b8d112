package adsb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/yegors/flightboard/internal/config"
	"github.com/yegors/flightboard/pkg/logger"
)

const defaultOpenSkyTokenURL = "https://auth.opensky-network.org/auth/realms/opensky-network/protocol/openid-connect/token"

// Client fetches state vectors from the configured telemetry source
type Client struct {
	httpClient *http.Client
	cfg        config.ADSBConfig
	stationLat float64
	stationLon float64
	limiter    *rate.Limiter
	logger     *logger.Logger

	// Cached OpenSky OAuth2 token
	token       string
	tokenExpiry time.Time
	tokenMu     sync.Mutex
}

// NewClient creates a new telemetry client
func NewClient(cfg config.ADSBConfig, stationLat, stationLon float64, log *logger.Logger) *Client {
	timeout := time.Duration(cfg.RequestTimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	// Burst of 1 so back-to-back polls are spaced out
	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerMinute/60.0), 1)
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		cfg:        cfg,
		stationLat: stationLat,
		stationLon: stationLon,
		limiter:    limiter,
		logger:     log.Named("adsb-cli"),
	}
}

// BoundingBox returns the configured OpenSky box, or one derived from the
// station and search radius
func (c *Client) BoundingBox() BoundingBox {
	box := BoundingBox{
		LatMin: c.cfg.OpenSkyBBoxLamin,
		LonMin: c.cfg.OpenSkyBBoxLomin,
		LatMax: c.cfg.OpenSkyBBoxLamax,
		LonMax: c.cfg.OpenSkyBBoxLomax,
	}
	if !box.IsZero() || c.cfg.SearchRadiusNM <= 0 {
		return box
	}
	return BoxAround(c.stationLat, c.stationLon, float64(c.cfg.SearchRadiusNM))
}

// FetchStates fetches state vectors inside the box. Records missing a
// required field are dropped here.
func (c *Client) FetchStates(ctx context.Context, box BoundingBox) ([]StateVector, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	switch c.cfg.SourceType {
	case "local":
		return c.fetchReceiver(ctx, c.cfg.LocalSourceURL, "local", nil, box)
	case "external-adsbexchangelike":
		urlStr := fmt.Sprintf(c.cfg.ExternalSourceURL, c.stationLat, c.stationLon, float64(c.cfg.SearchRadiusNM))
		headers := map[string]string{
			"x-rapidapi-host": c.cfg.APIHost,
			"x-rapidapi-key":  c.cfg.APIKey,
		}
		return c.fetchReceiver(ctx, urlStr, "external-adsbexchangelike", headers, box)
	case "external-opensky":
		return c.fetchOpenSky(ctx, box)
	default:
		return nil, fmt.Errorf("unknown source type: %s", c.cfg.SourceType)
	}
}

// fetchReceiver reads an aircraft.json style document and keeps targets inside the box
func (c *Client) fetchReceiver(ctx context.Context, urlStr, source string, headers map[string]string, box BoundingBox) ([]StateVector, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	c.logger.Debug("Fetching ADS-B data", logger.String("url", urlStr), logger.String("source", source))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var data receiverResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}

	targets := data.targets()
	states := make([]StateVector, 0, len(targets))
	dropped := 0
	for _, t := range targets {
		sv, ok := t.toStateVector(source)
		if !ok {
			dropped++
			continue
		}
		if !box.IsZero() && !box.Contains(sv.Latitude, sv.Longitude) {
			continue
		}
		states = append(states, sv)
	}

	c.logger.Debug("Fetched ADS-B data",
		logger.Int("aircraft_count", len(states)),
		logger.Int("dropped", dropped),
		logger.String("source", source))

	return states, nil
}

// fetchOpenSky queries the OpenSky states/all endpoint for the box.
//
// Authentication:
// - If the credentials file contains an access_token, it is used directly.
// - Otherwise client_id and client_secret are exchanged for a token.
// - Without a credentials file the request is anonymous (rate-limited).
func (c *Client) fetchOpenSky(ctx context.Context, box BoundingBox) ([]StateVector, error) {
	if box.IsZero() {
		return nil, fmt.Errorf("opensky requires a bounding box")
	}

	token, err := c.openSkyToken(ctx)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("lamin", strconv.FormatFloat(box.LatMin, 'f', -1, 64))
	params.Set("lomin", strconv.FormatFloat(box.LonMin, 'f', -1, 64))
	params.Set("lamax", strconv.FormatFloat(box.LatMax, 'f', -1, 64))
	params.Set("lomax", strconv.FormatFloat(box.LonMax, 'f', -1, 64))
	urlStr := c.cfg.OpenSkyURL + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenSky request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	c.logger.Debug("Fetching OpenSky ADS-B data", logger.String("url", urlStr))
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute opensky request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.Debug("Unexpected OpenSky response", logger.Int("status_code", resp.StatusCode), logger.String("body", string(body)))
		if resp.StatusCode == http.StatusUnauthorized {
			c.clearToken()
		}
		return nil, fmt.Errorf("unexpected opensky status code: %d", resp.StatusCode)
	}

	var osResp struct {
		Time   int64           `json:"time"`
		States [][]interface{} `json:"states"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&osResp); err != nil {
		return nil, fmt.Errorf("failed to parse opensky JSON: %w", err)
	}

	states := make([]StateVector, 0, len(osResp.States))
	dropped := 0
	for _, s := range osResp.States {
		sv, ok := openSkyState(s)
		if !ok {
			dropped++
			continue
		}
		states = append(states, sv)
	}

	c.logger.Debug("Fetched OpenSky ADS-B data",
		logger.Int("aircraft_count", len(states)),
		logger.Int("dropped", dropped))

	return states, nil
}

// openSkyToken returns a cached or freshly obtained bearer token, or "" for anonymous access
func (c *Client) openSkyToken(ctx context.Context) (string, error) {
	c.tokenMu.Lock()
	defer c.tokenMu.Unlock()

	if c.token != "" && time.Now().Before(c.tokenExpiry) {
		return c.token, nil
	}

	credPath := c.cfg.OpenSkyCredentialsPath
	if credPath == "" {
		return "", nil
	}
	b, err := os.ReadFile(credPath)
	if os.IsNotExist(err) {
		c.logger.Warn("OpenSky credentials file not found - proceeding as anonymous (rate limits may apply)", logger.String("path", credPath))
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read opensky credentials: %w", err)
	}

	var credMap map[string]interface{}
	if err := json.Unmarshal(b, &credMap); err != nil {
		return "", fmt.Errorf("invalid opensky credentials JSON: %w", err)
	}

	if tok := firstString(credMap, "access_token", "access-token", "accessToken"); tok != "" {
		c.token = tok
		c.tokenExpiry = time.Now().Add(29 * time.Minute)
		return tok, nil
	}

	clientID := firstString(credMap, "client_id", "client-id", "clientId")
	clientSecret := firstString(credMap, "client_secret", "client-secret", "clientSecret")
	if clientID == "" || clientSecret == "" {
		return "", fmt.Errorf("opensky credentials must contain access_token or client_id+client_secret")
	}
	tokenURL := firstString(credMap, "token_url", "token-url", "tokenUrl")
	if tokenURL == "" {
		tokenURL = defaultOpenSkyTokenURL
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", clientID)
	form.Set("client_secret", clientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create opensky token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	c.logger.Debug("Requesting OpenSky OAuth2 token", logger.String("token_url", tokenURL))
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to request opensky token: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("opensky token endpoint error: %d", resp.StatusCode)
	}

	var tokResp struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokResp); err != nil {
		return "", fmt.Errorf("failed to decode opensky token response: %w", err)
	}
	if tokResp.AccessToken == "" {
		return "", fmt.Errorf("opensky token response did not contain access_token")
	}

	expiry := time.Now().Add(29 * time.Minute)
	if tokResp.ExpiresIn > 60 {
		// Small safety margin
		expiry = time.Now().Add(time.Duration(tokResp.ExpiresIn-30) * time.Second)
	}
	c.token = tokResp.AccessToken
	c.tokenExpiry = expiry
	return c.token, nil
}

func (c *Client) clearToken() {
	c.tokenMu.Lock()
	c.token = ""
	c.tokenExpiry = time.Time{}
	c.tokenMu.Unlock()
}

// firstString picks the first non-empty string value among keys
func firstString(m map[string]interface{}, keys ...string) string {
	for _, k := range keys {
		if v, ok := m[k].(string); ok && v != "" {
			return v
		}
	}
	return ""
}
