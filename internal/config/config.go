package config

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/BurntSushi/toml"
)

// Config represents the main application configuration structure
// containing all configuration sections
type Config struct {
	Server     ServerConfig     `toml:"server"`     // HTTP server settings
	Logging    LoggingConfig    `toml:"logging"`    // Application logging settings
	Station    StationConfig    `toml:"station"`    // Home airport geometry
	ADSB       ADSBConfig       `toml:"adsb"`       // Telemetry source settings
	Schedule   ScheduleConfig   `toml:"schedule"`   // Schedule feed settings
	Routes     RoutesConfig     `toml:"routes"`     // Route cache windows
	Classifier ClassifierConfig `toml:"classifier"` // Arrival/departure heuristics
	Poll       PollConfig       `toml:"poll"`       // Telemetry poll cadence
	Storage    StorageConfig    `toml:"storage"`    // Data persistence settings
	WebSocket  WebSocketConfig  `toml:"websocket"`  // Board push settings
}

// ServerConfig contains HTTP server configuration settings
type ServerConfig struct {
	Port               int      `toml:"port"`                  // Primary HTTP port for the server
	Host               string   `toml:"host"`                  // Host address to bind to
	CORSAllowedOrigins []string `toml:"cors_allowed_origins"`  // Origins allowed for CORS requests (use ["*"] for all origins)
	ReadTimeoutSecs    int      `toml:"read_timeout_seconds"`  // Maximum duration for reading the entire request
	WriteTimeoutSecs   int      `toml:"write_timeout_seconds"` // Maximum duration for writing the response
	IdleTimeoutSecs    int      `toml:"idle_timeout_seconds"`  // Keep-alive idle timeout
	AdditionalPorts    []int    `toml:"additional_ports"`      // Additional HTTP ports to listen on
}

// LoggingConfig contains application logging configuration
type LoggingConfig struct {
	Level      string `toml:"level"`        // Log level: "debug", "info", "warn", or "error"
	Format     string `toml:"format"`       // Log format: "json" or "console"
	FilePath   string `toml:"file_path"`    // Optional rotated log file
	MaxSizeMB  int    `toml:"max_size_mb"`  // Rotate after this many megabytes
	MaxBackups int    `toml:"max_backups"`  // Rotated files to keep
	MaxAgeDays int    `toml:"max_age_days"` // Days to keep rotated files
}

// StationConfig describes the home airport
type StationConfig struct {
	AirportCode    string           `toml:"airport_code"`     // ICAO code of the home airport (e.g., "KLAS")
	IATACode       string           `toml:"iata_code"`        // IATA code used by schedule records (e.g., "LAS")
	Latitude       float64          `toml:"latitude"`         // Airport reference point latitude
	Longitude      float64          `toml:"longitude"`        // Airport reference point longitude
	ElevationFeet  int              `toml:"elevation_feet"`   // Field elevation
	AirportsDBPath string           `toml:"airports_db_path"` // Optional OurAirports CSV; overrides latitude/longitude/elevation
	Timezone       string           `toml:"timezone"`         // IANA zone for schedule clock times
	Runways        []RunwayConfig   `toml:"runways"`          // Ordered runway threshold table
	Satellites     []SatelliteField `toml:"satellites"`       // Nearby secondary airports
}

// RunwayConfig is one entry in the runway threshold table
type RunwayConfig struct {
	ID        string  `toml:"id"`
	Latitude  float64 `toml:"latitude"`
	Longitude float64 `toml:"longitude"`
}

// SatelliteField is a secondary airport whose low traffic is excluded
type SatelliteField struct {
	Code      string  `toml:"code"`
	Latitude  float64 `toml:"latitude"`
	Longitude float64 `toml:"longitude"`
}

// ADSBConfig contains telemetry source configuration
type ADSBConfig struct {
	// Allowed values:
	// - "local": a local receiver (dump1090 / tar1090 aircraft.json)
	// - "external-adsbexchangelike": center point + radius provider (RapidAPI style)
	// - "external-opensky": OpenSky REST API with a bounding box and OAuth2 credentials
	SourceType string `toml:"source_type"`

	LocalSourceURL string `toml:"local_source_url"` // URL for local source (e.g., http://192.168.1.10/tar1090/data/aircraft.json)

	ExternalSourceURL string `toml:"external_source_url"` // URL template with lat, lon and distance placeholders
	APIHost           string `toml:"api_host"`            // API host header value (e.g., for RapidAPI)
	APIKey            string `toml:"api_key"`             // API key for the external service
	SearchRadiusNM    int    `toml:"search_radius_nm"`    // Search radius, also used to derive a bounding box

	OpenSkyURL             string  `toml:"opensky_url"`              // states/all endpoint
	OpenSkyCredentialsPath string  `toml:"opensky_credentials_path"` // Path to OpenSky credentials JSON (optional, anonymous otherwise)
	OpenSkyBBoxLamin       float64 `toml:"opensky_bbox_lamin"`       // Bounding box minimum latitude
	OpenSkyBBoxLomin       float64 `toml:"opensky_bbox_lomin"`       // Bounding box minimum longitude
	OpenSkyBBoxLamax       float64 `toml:"opensky_bbox_lamax"`       // Bounding box maximum latitude
	OpenSkyBBoxLomax       float64 `toml:"opensky_bbox_lomax"`       // Bounding box maximum longitude

	RequestTimeoutSecs int     `toml:"request_timeout_seconds"` // HTTP timeout per telemetry request
	RequestsPerMinute  float64 `toml:"requests_per_minute"`     // Client-side request ceiling
	AircraftDBPath     string  `toml:"aircraft_db_path"`        // Aircraft address to type CSV
}

// ScheduleConfig contains schedule feed configuration
type ScheduleConfig struct {
	// Allowed values:
	// - "http": JSON row feed for the arrivals and departures panels
	// - "file": JSON file of rows
	SourceType             string            `toml:"source_type"`
	ArrivalsURL            string            `toml:"arrivals_url"`             // Arrivals panel feed; %s is replaced by the airport code
	DeparturesURL          string            `toml:"departures_url"`           // Departures panel feed; %s is replaced by the airport code
	FilePath               string            `toml:"file_path"`                // Rows file when source_type is "file"
	RefreshIntervalSecs    int               `toml:"refresh_interval_seconds"` // How often to refresh the route cache
	RequestTimeoutSecs     int               `toml:"request_timeout_seconds"`  // HTTP timeout per panel request
	RequestsPerMinute      float64           `toml:"requests_per_minute"`      // Client-side request ceiling
	UserAgent              string            `toml:"user_agent"`               // User-Agent header for panel requests
	AdditionalAirlineNames map[string]string `toml:"airline_names"`            // Extra airline name to IATA entries
	AdditionalIATAToICAO   map[string]string `toml:"iata_to_icao"`             // Extra IATA to ICAO entries
}

// RoutesConfig contains route cache windows
type RoutesConfig struct {
	AdmissionWindowMinutes int `toml:"admission_window_minutes"` // Forward window a record must fall in to be admitted
	ActualGraceMinutes     int `toml:"actual_grace_minutes"`     // How long a record with an actual time survives after it
}

// ClassifierConfig holds the empirically tuned arrival/departure thresholds
type ClassifierConfig struct {
	MinGroundSpeedKts float64 `toml:"min_ground_speed_kts"` // Below this, excluded (taxiing)
	MaxAltitudeFt     float64 `toml:"max_altitude_ft"`      // Above this, excluded (overflight)

	ArrivalMaxAltitudeFt   float64 `toml:"arrival_max_altitude_ft"`
	ArrivalMaxDistanceKm   float64 `toml:"arrival_max_distance_km"`
	ArrivalMaxHeadingDiff  float64 `toml:"arrival_max_heading_diff_deg"`
	DepartureMaxAltitudeFt float64 `toml:"departure_max_altitude_ft"`
	DepartureMaxDistanceKm float64 `toml:"departure_max_distance_km"`

	SatelliteRadiusKm      float64 `toml:"satellite_radius_km"`
	SatelliteMaxAltitudeFt float64 `toml:"satellite_max_altitude_ft"`

	NorthernLatitude      float64 `toml:"northern_latitude"` // Set to 90 to disable the northern-field exclusion
	NorthernMaxAltitudeFt float64 `toml:"northern_max_altitude_ft"`

	// Classification for aircraft without any route record
	UnknownRouteFallback          bool    `toml:"unknown_route_fallback"`
	UnknownRouteMinRateFPM        float64 `toml:"unknown_route_min_rate_fpm"`
	UnknownRouteArrivalMaxAltFt   float64 `toml:"unknown_route_arrival_max_altitude_ft"`
	UnknownRouteDepartureMaxAltFt float64 `toml:"unknown_route_departure_max_altitude_ft"`

	RunwayMaxDistanceKm  float64 `toml:"runway_max_distance_km"`
	RunwayMaxAltitudeFt  float64 `toml:"runway_max_altitude_ft"`
	RunwayMaxHeadingDiff float64 `toml:"runway_max_heading_diff_deg"`

	IgnoredTypes    []string `toml:"ignored_types"`    // Exact type codes to exclude
	IgnoredPrefixes []string `toml:"ignored_prefixes"` // Type code prefixes to exclude
}

// PollConfig contains telemetry poll cadence
type PollConfig struct {
	PeakIntervalSecs   int         `toml:"peak_interval_seconds"`
	MidDayIntervalSecs int         `toml:"midday_interval_seconds"`
	NightIntervalSecs  int         `toml:"night_interval_seconds"`
	PeakWindows        []HourRange `toml:"peak_windows"`
	MidDayWindows      []HourRange `toml:"midday_windows"`
}

// HourRange is a half-open [Start, End) range of local hours
type HourRange struct {
	Start int `toml:"start"`
	End   int `toml:"end"`
}

// StorageConfig contains data persistence configuration
type StorageConfig struct {
	Type             string `toml:"type"`                    // Storage backend type (only "sqlite" is supported)
	SQLitePath       string `toml:"sqlite_path"`             // Database file
	HistoryRetention int    `toml:"history_retention_hours"` // Observation rows older than this are pruned (0 keeps everything)
	PersistRoutes    bool   `toml:"persist_routes"`          // Save the route cache after each refresh and restore it at startup
}

// WebSocketConfig controls the board push feed
type WebSocketConfig struct {
	Enabled         bool `toml:"enabled"`
	SendBufferSize  int  `toml:"send_buffer_size"`
	PingIntervalSec int  `toml:"ping_interval_seconds"`
}

// Load loads the configuration from a TOML file
func Load(path string) (*Config, error) {
	var config Config

	// Check if the file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	if _, err := toml.DecodeFile(path, &config); err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	if config.Station.AirportsDBPath != "" {
		if err := config.loadStationFromCSV(); err != nil {
			return nil, fmt.Errorf("failed to load station details from CSV: %w", err)
		}
	}

	return &config, nil
}

// loadStationFromCSV fills station coordinates from an OurAirports-format CSV
func (c *Config) loadStationFromCSV() error {
	if c.Station.AirportCode == "" {
		return fmt.Errorf("airport_code is required")
	}

	file, err := os.Open(c.Station.AirportsDBPath)
	if err != nil {
		return err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.LazyQuotes = true

	// Skip header
	if _, err := reader.Read(); err != nil {
		return err
	}

	records, err := reader.ReadAll()
	if err != nil {
		return err
	}

	for _, record := range records {
		if len(record) < 7 {
			continue
		}

		// ident (index 1)
		if record[1] != c.Station.AirportCode {
			continue
		}

		lat, err := strconv.ParseFloat(record[4], 64)
		if err != nil {
			return fmt.Errorf("invalid latitude in CSV for %s: %w", c.Station.AirportCode, err)
		}
		lon, err := strconv.ParseFloat(record[5], 64)
		if err != nil {
			return fmt.Errorf("invalid longitude in CSV for %s: %w", c.Station.AirportCode, err)
		}
		c.Station.Latitude = lat
		c.Station.Longitude = lon

		// Elevation might be empty
		if record[6] != "" {
			if elev, err := strconv.ParseFloat(record[6], 64); err == nil {
				c.Station.ElevationFeet = int(elev)
			}
		}

		// iata_code column in the OurAirports layout
		if c.Station.IATACode == "" && len(record) > 13 && record[13] != "" {
			c.Station.IATACode = record[13]
		}
		return nil
	}

	return fmt.Errorf("airport code %s not found in %s", c.Station.AirportCode, c.Station.AirportsDBPath)
}

// LoadWithFallback loads the configuration by checking multiple locations in order of preference
func LoadWithFallback(preferredPath string) (*Config, error) {
	searchPaths := []string{
		preferredPath,         // User-specified path (if provided)
		"configs/config.toml", // configs/ folder
		"config.toml",         // Root directory
	}

	// Remove duplicates while preserving order
	uniquePaths := make([]string, 0, len(searchPaths))
	seen := make(map[string]bool)
	for _, path := range searchPaths {
		if path != "" && !seen[path] {
			uniquePaths = append(uniquePaths, path)
			seen[path] = true
		}
	}

	var lastErr error
	for _, path := range uniquePaths {
		if _, err := os.Stat(path); err == nil {
			config, err := Load(path)
			if err != nil {
				lastErr = fmt.Errorf("failed to load config from %s: %w", path, err)
				continue
			}
			return config, nil
		}
		lastErr = fmt.Errorf("config file not found: %s", path)
	}

	return nil, fmt.Errorf("config file not found in any of the expected locations: %v. Last error: %w", uniquePaths, lastErr)
}

// Validate checks the configuration and fills defaults
func (c *Config) Validate() error {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	portsSeen := map[int]bool{c.Server.Port: true}
	for _, p := range c.Server.AdditionalPorts {
		if p <= 0 || p > 65535 {
			return fmt.Errorf("invalid additional server port: %d", p)
		}
		if portsSeen[p] {
			return fmt.Errorf("duplicate port configured: %d (primary or additional)", p)
		}
		portsSeen[p] = true
	}
	if c.Server.ReadTimeoutSecs == 0 {
		c.Server.ReadTimeoutSecs = 15
	}
	if c.Server.IdleTimeoutSecs == 0 {
		c.Server.IdleTimeoutSecs = 60
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("invalid log format: %s", c.Logging.Format)
	}

	if err := c.ValidateStation(); err != nil {
		return err
	}
	if err := c.ValidateADSB(); err != nil {
		return err
	}
	if err := c.ValidateSchedule(); err != nil {
		return err
	}
	if err := c.ValidateRoutes(); err != nil {
		return err
	}
	if err := c.ValidateClassifier(); err != nil {
		return err
	}
	if err := c.ValidatePoll(); err != nil {
		return err
	}

	if c.Storage.Type == "" {
		c.Storage.Type = "sqlite"
	}
	if c.Storage.Type != "sqlite" {
		return fmt.Errorf("invalid storage type: %s (only 'sqlite' is supported)", c.Storage.Type)
	}
	if c.Storage.SQLitePath == "" {
		return fmt.Errorf("sqlite_path is required when storage type is sqlite")
	}
	if c.Storage.HistoryRetention < 0 {
		return fmt.Errorf("invalid history_retention_hours: %d", c.Storage.HistoryRetention)
	}

	if c.WebSocket.SendBufferSize <= 0 {
		c.WebSocket.SendBufferSize = 16
	}
	if c.WebSocket.PingIntervalSec <= 0 {
		c.WebSocket.PingIntervalSec = 30
	}

	return nil
}

// ValidateStation checks home airport settings and fills the default runway table
func (c *Config) ValidateStation() error {
	s := &c.Station
	if s.AirportCode == "" && s.IATACode == "" {
		return fmt.Errorf("station airport_code or iata_code is required")
	}
	s.AirportCode = strings.ToUpper(strings.TrimSpace(s.AirportCode))
	s.IATACode = strings.ToUpper(strings.TrimSpace(s.IATACode))

	if s.Latitude < -90 || s.Latitude > 90 {
		return fmt.Errorf("invalid station latitude: %f", s.Latitude)
	}
	if s.Longitude < -180 || s.Longitude > 180 {
		return fmt.Errorf("invalid station longitude: %f", s.Longitude)
	}
	if s.Latitude == 0 && s.Longitude == 0 {
		return fmt.Errorf("station latitude/longitude (or airports_db_path) is required")
	}
	if s.ElevationFeet < -2000 || s.ElevationFeet > 30000 {
		return fmt.Errorf("station elevation out of typical range: %d ft", s.ElevationFeet)
	}

	if s.Timezone == "" {
		s.Timezone = "America/Los_Angeles"
	}
	if _, err := time.LoadLocation(s.Timezone); err != nil {
		return fmt.Errorf("invalid station timezone %q: %w", s.Timezone, err)
	}

	if len(s.Runways) == 0 {
		return fmt.Errorf("at least one [[station.runways]] threshold is required")
	}
	ids := make(map[string]bool)
	for i, r := range s.Runways {
		if r.ID == "" {
			return fmt.Errorf("runway #%d: id is required", i+1)
		}
		if ids[r.ID] {
			return fmt.Errorf("runway #%d: duplicate id: %s", i+1, r.ID)
		}
		ids[r.ID] = true
	}

	for i, f := range s.Satellites {
		if f.Latitude < -90 || f.Latitude > 90 || f.Longitude < -180 || f.Longitude > 180 {
			return fmt.Errorf("satellite #%d (%s): invalid coordinates", i+1, f.Code)
		}
	}

	return nil
}

// ValidateADSB checks the telemetry source settings
func (c *Config) ValidateADSB() error {
	a := &c.ADSB
	if a.SourceType == "" {
		a.SourceType = "external-opensky"
	}

	switch a.SourceType {
	case "local":
		if a.LocalSourceURL == "" {
			return fmt.Errorf("local_source_url is required when source_type is local")
		}
	case "external-adsbexchangelike":
		if a.ExternalSourceURL == "" {
			return fmt.Errorf("external_source_url is required when source_type is external-adsbexchangelike")
		}
		if a.APIHost == "" {
			return fmt.Errorf("api_host is required when source_type is external-adsbexchangelike")
		}
		if a.APIKey == "" {
			return fmt.Errorf("api_key is required when source_type is external-adsbexchangelike")
		}
		if a.SearchRadiusNM <= 0 {
			return fmt.Errorf("search_radius_nm must be positive when source_type is external-adsbexchangelike")
		}
	case "external-opensky":
		if a.OpenSkyURL == "" {
			a.OpenSkyURL = "https://opensky-network.org/api/states/all"
		}
		isBBoxSet := a.OpenSkyBBoxLamin != 0 || a.OpenSkyBBoxLamax != 0 ||
			a.OpenSkyBBoxLomin != 0 || a.OpenSkyBBoxLomax != 0
		if !isBBoxSet {
			if a.SearchRadiusNM <= 0 {
				return fmt.Errorf("opensky_bbox_lamin/lomin/lamax/lomax (or positive search_radius_nm) are required when source_type is external-opensky")
			}
		} else {
			if a.OpenSkyBBoxLamin >= a.OpenSkyBBoxLamax {
				return fmt.Errorf("opensky_bbox_lamin must be less than opensky_bbox_lamax")
			}
			if a.OpenSkyBBoxLomin >= a.OpenSkyBBoxLomax {
				return fmt.Errorf("opensky_bbox_lomin must be less than opensky_bbox_lomax")
			}
		}
	default:
		return fmt.Errorf("invalid ADSB source type: %s (must be 'local', 'external-adsbexchangelike', or 'external-opensky')", a.SourceType)
	}

	if a.RequestTimeoutSecs <= 0 {
		a.RequestTimeoutSecs = 5
	}
	if a.RequestsPerMinute < 0 {
		return fmt.Errorf("invalid adsb requests_per_minute: %f", a.RequestsPerMinute)
	}
	return nil
}

// ValidateSchedule checks the schedule feed settings
func (c *Config) ValidateSchedule() error {
	s := &c.Schedule
	if s.SourceType == "" {
		s.SourceType = "http"
	}
	switch s.SourceType {
	case "http":
		if s.ArrivalsURL == "" || s.DeparturesURL == "" {
			return fmt.Errorf("arrivals_url and departures_url are required when schedule source_type is http")
		}
	case "file":
		if s.FilePath == "" {
			return fmt.Errorf("file_path is required when schedule source_type is file")
		}
	default:
		return fmt.Errorf("invalid schedule source type: %s (must be 'http' or 'file')", s.SourceType)
	}

	if s.RefreshIntervalSecs == 0 {
		s.RefreshIntervalSecs = 300
	}
	if s.RefreshIntervalSecs < 0 {
		return fmt.Errorf("invalid schedule refresh interval: %d", s.RefreshIntervalSecs)
	}
	if s.RequestTimeoutSecs <= 0 {
		s.RequestTimeoutSecs = 15
	}
	if s.RequestsPerMinute < 0 {
		return fmt.Errorf("invalid schedule requests_per_minute: %f", s.RequestsPerMinute)
	}
	return nil
}

// ValidateRoutes fills cache window defaults
func (c *Config) ValidateRoutes() error {
	if c.Routes.AdmissionWindowMinutes == 0 {
		c.Routes.AdmissionWindowMinutes = 60
	}
	if c.Routes.ActualGraceMinutes == 0 {
		c.Routes.ActualGraceMinutes = 30
	}
	if c.Routes.AdmissionWindowMinutes < 0 {
		return fmt.Errorf("invalid admission_window_minutes: %d", c.Routes.AdmissionWindowMinutes)
	}
	if c.Routes.ActualGraceMinutes < 0 {
		return fmt.Errorf("invalid actual_grace_minutes: %d", c.Routes.ActualGraceMinutes)
	}
	return nil
}

// ValidateClassifier fills unset thresholds with the tuned defaults
func (c *Config) ValidateClassifier() error {
	cl := &c.Classifier
	def := DefaultClassifier()

	setDefault := func(v *float64, d float64) {
		if *v == 0 {
			*v = d
		}
	}
	setDefault(&cl.MinGroundSpeedKts, def.MinGroundSpeedKts)
	setDefault(&cl.MaxAltitudeFt, def.MaxAltitudeFt)
	setDefault(&cl.ArrivalMaxAltitudeFt, def.ArrivalMaxAltitudeFt)
	setDefault(&cl.ArrivalMaxDistanceKm, def.ArrivalMaxDistanceKm)
	setDefault(&cl.ArrivalMaxHeadingDiff, def.ArrivalMaxHeadingDiff)
	setDefault(&cl.DepartureMaxAltitudeFt, def.DepartureMaxAltitudeFt)
	setDefault(&cl.DepartureMaxDistanceKm, def.DepartureMaxDistanceKm)
	setDefault(&cl.SatelliteRadiusKm, def.SatelliteRadiusKm)
	setDefault(&cl.SatelliteMaxAltitudeFt, def.SatelliteMaxAltitudeFt)
	setDefault(&cl.NorthernLatitude, def.NorthernLatitude)
	setDefault(&cl.NorthernMaxAltitudeFt, def.NorthernMaxAltitudeFt)
	setDefault(&cl.UnknownRouteMinRateFPM, def.UnknownRouteMinRateFPM)
	setDefault(&cl.UnknownRouteArrivalMaxAltFt, def.UnknownRouteArrivalMaxAltFt)
	setDefault(&cl.UnknownRouteDepartureMaxAltFt, def.UnknownRouteDepartureMaxAltFt)
	setDefault(&cl.RunwayMaxDistanceKm, def.RunwayMaxDistanceKm)
	setDefault(&cl.RunwayMaxAltitudeFt, def.RunwayMaxAltitudeFt)
	setDefault(&cl.RunwayMaxHeadingDiff, def.RunwayMaxHeadingDiff)

	if cl.IgnoredTypes == nil {
		cl.IgnoredTypes = def.IgnoredTypes
	}
	if cl.IgnoredPrefixes == nil {
		cl.IgnoredPrefixes = def.IgnoredPrefixes
	}

	if cl.ArrivalMaxHeadingDiff > 180 || cl.RunwayMaxHeadingDiff > 180 {
		return fmt.Errorf("heading thresholds must be between 0 and 180")
	}
	if cl.MinGroundSpeedKts < 0 || cl.MaxAltitudeFt < 0 {
		return fmt.Errorf("classifier speed/altitude limits must be non-negative")
	}
	return nil
}

// ValidatePoll fills cadence defaults and checks hour windows
func (c *Config) ValidatePoll() error {
	p := &c.Poll
	def := DefaultPoll()
	if p.PeakIntervalSecs == 0 {
		p.PeakIntervalSecs = def.PeakIntervalSecs
	}
	if p.MidDayIntervalSecs == 0 {
		p.MidDayIntervalSecs = def.MidDayIntervalSecs
	}
	if p.NightIntervalSecs == 0 {
		p.NightIntervalSecs = def.NightIntervalSecs
	}
	if p.PeakIntervalSecs < 0 || p.MidDayIntervalSecs < 0 || p.NightIntervalSecs < 0 {
		return fmt.Errorf("poll intervals must be positive")
	}
	if p.PeakWindows == nil {
		p.PeakWindows = def.PeakWindows
	}
	if p.MidDayWindows == nil {
		p.MidDayWindows = def.MidDayWindows
	}
	for _, w := range append(append([]HourRange{}, p.PeakWindows...), p.MidDayWindows...) {
		if w.Start < 0 || w.End > 24 || w.Start >= w.End {
			return fmt.Errorf("invalid poll window: %d-%d", w.Start, w.End)
		}
	}
	return nil
}

// Location returns the station time zone; Validate guarantees it loads
func (s StationConfig) Location() *time.Location {
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// HomeCodes returns every code the home airport is known by
func (s StationConfig) HomeCodes() []string {
	var codes []string
	for _, code := range []string{s.IATACode, s.AirportCode} {
		if code != "" {
			codes = append(codes, code)
		}
	}
	return codes
}

// ScheduleCode is the code schedule records use for the home airport
func (s StationConfig) ScheduleCode() string {
	if s.IATACode != "" {
		return s.IATACode
	}
	return s.AirportCode
}
