package board

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/yegors/flightboard/internal/adsb"
	"github.com/yegors/flightboard/internal/classify"
	"github.com/yegors/flightboard/internal/config"
	"github.com/yegors/flightboard/internal/geo"
	"github.com/yegors/flightboard/internal/routes"
	"github.com/yegors/flightboard/internal/schedule"
	"github.com/yegors/flightboard/internal/storage/sqlite"
	"github.com/yegors/flightboard/internal/websocket"
	"github.com/yegors/flightboard/pkg/logger"
)

// TelemetrySource fetches state vectors
type TelemetrySource interface {
	BoundingBox() adsb.BoundingBox
	FetchStates(ctx context.Context, box adsb.BoundingBox) ([]adsb.StateVector, error)
}

// TypeResolver resolves an aircraft's type code
type TypeResolver interface {
	TypeFor(hex, callsign, hint string) string
}

// RouteStore persists route cache snapshots
type RouteStore interface {
	SaveRoutes(records []routes.Record, savedAt time.Time) error
	LoadRoutes() ([]routes.Record, error)
}

// HistoryStore keeps per-cycle observations
type HistoryStore interface {
	InsertObservations(obs []sqlite.Observation) error
	PruneBefore(cutoff time.Time) (int64, error)
}

// Broadcaster pushes messages to connected displays
type Broadcaster interface {
	Broadcast(message *websocket.Message)
}

// Deps are the collaborators of the service. Routes, History and
// Broadcaster may be nil.
type Deps struct {
	Telemetry   TelemetrySource
	Schedule    schedule.Provider
	Parser      *schedule.Parser
	Cache       *routes.Cache
	Engine      *classify.Engine
	Types       TypeResolver
	Routes      RouteStore
	History     HistoryStore
	Broadcaster Broadcaster
}

// Options tune the loops
type Options struct {
	Station          config.StationConfig
	RefreshInterval  time.Duration
	HistoryRetention time.Duration // 0 keeps everything
	Cadence          *Cadence
}

// Status reports the health of both loops
type Status struct {
	LastRefresh   time.Time `json:"last_refresh"`
	RefreshOK     bool      `json:"refresh_ok"`
	LastPoll      time.Time `json:"last_poll"`
	PollOK        bool      `json:"poll_ok"`
	RouteCount    int       `json:"route_count"`
	Arrivals      int       `json:"arrivals"`
	Departures    int       `json:"departures"`
	Band          Band      `json:"band"`
	NextPollAfter string    `json:"next_poll_after"`
}

// Service owns the refresh and poll loops
type Service struct {
	deps    Deps
	opts    Options
	logger  *logger.Logger
	board   atomic.Pointer[Board]
	now     func() time.Time
	homeKey string

	mu          sync.RWMutex
	lastRefresh time.Time
	refreshOK   bool
	lastPoll    time.Time
	pollOK      bool

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewService creates the board service
func NewService(deps Deps, opts Options, log *logger.Logger) *Service {
	if opts.RefreshInterval <= 0 {
		opts.RefreshInterval = 5 * time.Minute
	}
	if opts.Cadence == nil {
		opts.Cadence = NewCadence(config.DefaultPoll(), opts.Station.Location())
	}

	s := &Service{
		deps:    deps,
		opts:    opts,
		logger:  log.Named("board"),
		now:     time.Now,
		homeKey: opts.Station.ScheduleCode(),
		stopCh:  make(chan struct{}),
	}
	s.board.Store(emptyBoard())
	return s
}

// Start restores persisted routes, runs one refresh and one poll, then
// starts both loops in the background
func (s *Service) Start(ctx context.Context) error {
	s.logger.Info("Starting board service",
		logger.String("airport", s.homeKey),
		logger.Duration("refresh_interval", s.opts.RefreshInterval))

	s.restoreRoutes()

	if err := s.Refresh(ctx); err != nil {
		s.logger.Warn("Initial schedule refresh failed", logger.Error(err))
	}
	if _, err := s.Poll(ctx); err != nil {
		s.logger.Warn("Initial telemetry poll failed", logger.Error(err))
	}

	s.wg.Add(2)
	go s.refreshLoop(ctx)
	go s.pollLoop(ctx)

	return nil
}

// Stop stops both loops and waits for them to exit
func (s *Service) Stop() {
	s.stopOnce.Do(func() {
		s.logger.Info("Stopping board service")
		close(s.stopCh)
	})
	s.wg.Wait()
	s.logger.Info("Board service stopped")
}

func (s *Service) restoreRoutes() {
	if s.deps.Routes == nil {
		return
	}
	records, err := s.deps.Routes.LoadRoutes()
	if err != nil {
		s.logger.Warn("Failed to load persisted routes", logger.Error(err))
		return
	}
	restored := s.deps.Cache.Restore(records, s.now())
	s.logger.Info("Restored persisted routes",
		logger.Int("stored", len(records)),
		logger.Int("restored", restored))
}

func (s *Service) refreshLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.opts.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := s.Refresh(ctx); err != nil {
				s.logger.Warn("Schedule refresh failed, keeping cached routes", logger.Error(err))
			}
			s.pruneHistory()
		case <-s.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (s *Service) pollLoop(ctx context.Context) {
	defer s.wg.Done()

	for {
		band, interval := s.opts.Cadence.At(s.now())
		s.logger.Debug("Next poll scheduled",
			logger.String("band", string(band)),
			logger.Duration("interval", interval))

		timer := time.NewTimer(interval)
		select {
		case <-timer.C:
			if _, err := s.Poll(ctx); err != nil {
				s.logger.Warn("Telemetry poll failed, keeping previous board", logger.Error(err))
			}
		case <-s.stopCh:
			timer.Stop()
			return
		case <-ctx.Done():
			timer.Stop()
			return
		}
	}
}

// Refresh fetches the schedule and merges it into the route cache. On a
// provider failure the cache is left untouched.
func (s *Service) Refresh(ctx context.Context) error {
	rows, err := s.deps.Schedule.FetchSchedule(ctx, s.homeKey)
	now := s.now()
	s.setRefreshStatus(now, err == nil)
	if err != nil {
		return err
	}

	records, dropped := s.deps.Parser.Parse(rows, now)
	stats := s.deps.Cache.Merge(records, now)

	s.logger.Info("Route cache refreshed",
		logger.Int("rows", len(rows)),
		logger.Int("unparsable", dropped),
		logger.Int("admitted", stats.Admitted),
		logger.Int("outside_window", stats.Dropped),
		logger.Int("evicted", stats.Evicted),
		logger.Int("size", stats.Size))

	if s.deps.Routes != nil {
		if err := s.deps.Routes.SaveRoutes(s.deps.Cache.Snapshot(), now); err != nil {
			s.logger.Warn("Failed to persist route snapshot", logger.Error(err))
		}
	}
	return nil
}

// Poll fetches telemetry, classifies every aircraft and publishes a new
// board. On a provider failure the previous board stays published.
func (s *Service) Poll(ctx context.Context) (*Board, error) {
	states, err := s.deps.Telemetry.FetchStates(ctx, s.deps.Telemetry.BoundingBox())
	now := s.now()
	s.setPollStatus(now, err == nil)
	if err != nil {
		return s.Board(), err
	}

	b := s.Build(states, now)
	s.board.Store(b)

	s.logger.Debug("Board updated",
		logger.String("cycle_id", b.CycleID),
		logger.String("band", string(b.Band)),
		logger.Int("observed", b.Stats.Observed),
		logger.Int("arrivals", len(b.Arrivals)),
		logger.Int("departures", len(b.Departures)),
		logger.Int("excluded", b.Stats.Excluded))

	if s.deps.Broadcaster != nil {
		s.deps.Broadcaster.Broadcast(boardMessage(b))
	}
	s.recordHistory(b)

	return b, nil
}

// Build classifies states against the current route cache
func (s *Service) Build(states []adsb.StateVector, now time.Time) *Board {
	band, _ := s.opts.Cadence.At(now)
	st := s.opts.Station
	declination := geo.MagneticVariation(st.Latitude, st.Longitude, float64(st.ElevationFeet), now)

	b := &Board{
		CycleID:    uuid.NewString(),
		UpdatedAt:  now,
		Band:       band,
		Arrivals:   []Flight{},
		Departures: []Flight{},
	}

	for _, sv := range states {
		b.Stats.Observed++

		callsign := sv.NormalizedCallsign()
		if callsign == "" {
			b.Stats.NoCallsign++
			continue
		}

		typeCode := s.deps.Types.TypeFor(sv.Hex, callsign, sv.TypeHint)
		rec, known := s.deps.Cache.Lookup(callsign)
		var recPtr *routes.Record
		if known {
			recPtr = &rec
		} else {
			rec = routes.Fallback(callsign)
		}

		res := s.deps.Engine.Classify(sv, typeCode, recPtr)
		if res.Excluded {
			b.Stats.Excluded++
			continue
		}

		f := Flight{
			State:           sv,
			TypeCode:        typeCode,
			Route:           rec,
			RouteKnown:      known,
			DistanceKm:      res.DistanceKm,
			MagneticHeading: geo.MagneticHeading(sv.HeadingDeg, declination),
			Reason:          res.Reason,
		}

		switch res.Class {
		case classify.Arrival:
			f.Runway = res.Runway
			b.Arrivals = append(b.Arrivals, f)
		case classify.Departure:
			b.Departures = append(b.Departures, f)
		default:
			b.Stats.Unclassified++
		}
	}

	sortByAltitude(b.Arrivals)
	sortByAltitude(b.Departures)
	return b
}

func (s *Service) recordHistory(b *Board) {
	if s.deps.History == nil {
		return
	}

	obs := make([]sqlite.Observation, 0, len(b.Arrivals)+len(b.Departures))
	add := func(flights []Flight, class classify.Class) {
		for _, f := range flights {
			obs = append(obs, sqlite.Observation{
				CycleID:         b.CycleID,
				ObservedAt:      b.UpdatedAt,
				Hex:             f.State.Hex,
				Callsign:        f.State.NormalizedCallsign(),
				Class:           class.String(),
				Runway:          f.Runway,
				TypeCode:        f.TypeCode,
				Origin:          f.Route.Origin,
				Destination:     f.Route.Destination,
				Latitude:        f.State.Latitude,
				Longitude:       f.State.Longitude,
				AltitudeFt:      f.State.AltitudeFt,
				GroundSpeedKts:  f.State.GroundSpeedKts,
				HeadingDeg:      f.State.HeadingDeg,
				VerticalRateFPM: f.State.VerticalRateFPM,
				DistanceKm:      f.DistanceKm,
			})
		}
	}
	add(b.Arrivals, classify.Arrival)
	add(b.Departures, classify.Departure)

	if err := s.deps.History.InsertObservations(obs); err != nil {
		s.logger.Warn("Failed to record observations", logger.Error(err))
	}
}

func (s *Service) pruneHistory() {
	if s.deps.History == nil || s.opts.HistoryRetention <= 0 {
		return
	}
	if _, err := s.deps.History.PruneBefore(s.now().Add(-s.opts.HistoryRetention)); err != nil {
		s.logger.Warn("Failed to prune observations", logger.Error(err))
	}
}

// Board returns the latest published board
func (s *Service) Board() *Board {
	return s.board.Load()
}

// Status reports when each loop last ran and whether it succeeded
func (s *Service) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b := s.Board()
	band, interval := s.opts.Cadence.At(s.now())
	return Status{
		LastRefresh:   s.lastRefresh,
		RefreshOK:     s.refreshOK,
		LastPoll:      s.lastPoll,
		PollOK:        s.pollOK,
		RouteCount:    s.deps.Cache.Len(),
		Arrivals:      len(b.Arrivals),
		Departures:    len(b.Departures),
		Band:          band,
		NextPollAfter: interval.String(),
	}
}

func (s *Service) setRefreshStatus(t time.Time, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastRefresh = t
	s.refreshOK = ok
}

func (s *Service) setPollStatus(t time.Time, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastPoll = t
	s.pollOK = ok
}

// HandleMessage answers board requests from WebSocket clients
func (s *Service) HandleMessage(client *websocket.Client, messageType string, data map[string]any) error {
	switch messageType {
	case websocket.MessageTypeBoardRequest:
		if !client.SendMessage(boardMessage(s.Board())) {
			s.logger.Debug("Could not deliver board to client")
		}
	default:
		s.logger.Debug("Ignoring WebSocket message", logger.String("type", messageType))
	}
	return nil
}

func boardMessage(b *Board) *websocket.Message {
	return &websocket.Message{
		Type: websocket.MessageTypeBoardUpdate,
		Data: map[string]any{
			"board": b,
		},
	}
}
