// Package discovery orchestrates the camera discovery pipeline: coalesced
// relay fetches, HTML parsing, and the two-tier cache, behind two public
// lookups plus cache read-through helpers.
package discovery

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hclin/camradar/internal/cache"
	"github.com/hclin/camradar/internal/camera"
	"github.com/hclin/camradar/internal/coalesce"
	"github.com/hclin/camradar/internal/metrics"
	"github.com/hclin/camradar/internal/proxy"
	"github.com/hclin/camradar/internal/scrape"
)

// Fetcher is the relay-side dependency. *proxy.Fetcher satisfies it.
type Fetcher interface {
	Fetch(ctx context.Context, target string) (proxy.Response, error)
}

// Config addresses the origin site.
type Config struct {
	// ListURL is the coordinate-query endpoint; lat/lon are added as query
	// parameters.
	ListURL string
	// DetailURLTemplate builds a per-camera page URL from an id (one %s).
	DetailURLTemplate string
	// SnapshotURLTemplate builds the deterministic snapshot URL (one %s).
	SnapshotURLTemplate string
	// NameSuffix is the heading boilerplate stripped from camera names.
	NameSuffix string
	// CoordPrecision is the decimal-place rounding of the list coalescing
	// key. Zero means coalesce.DefaultCoordPrecision.
	CoordPrecision int
}

// Service answers "which cameras are near here" and "where exactly is this
// camera", deduplicating concurrent identical lookups and caching every
// answer for the rest of the session.
type Service struct {
	cfg     Config
	fetcher Fetcher
	store   *cache.Store
	site    scrape.Site
	flights coalesce.Group
	logger  *zap.Logger
	now     func() time.Time
}

// New builds a Service. logger may be nil.
func New(cfg Config, fetcher Fetcher, store *cache.Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		cfg:     cfg,
		fetcher: fetcher,
		store:   store,
		site: scrape.Site{
			SnapshotURLTemplate: cfg.SnapshotURLTemplate,
			NameSuffix:          cfg.NameSuffix,
		},
		logger: logger,
		now:    time.Now,
	}
}

// ListCamerasNear fetches and parses the origin's list page for the given
// position, merges every newly seen camera into the summary cache, and
// returns the freshly parsed list. Concurrent calls whose coordinates round
// to the same key share one fetch. An empty list is a valid answer.
func (s *Service) ListCamerasNear(ctx context.Context, lat, lon float64) ([]camera.Summary, error) {
	key := coalesce.ListKey(lat, lon, s.cfg.CoordPrecision)
	v, shared, err := s.flights.Do(key, func() (any, error) {
		// The flight is shared by every coalesced caller and must outlive
		// the one that happened to start it; the fetcher's own request
		// timeout bounds it instead.
		return s.fetchList(context.WithoutCancel(ctx), lat, lon)
	})
	if shared {
		metrics.ObserveCoalesced("list")
	}
	if err != nil {
		return nil, &Error{Op: "list", Key: key, Err: err}
	}
	return v.([]camera.Summary), nil
}

func (s *Service) fetchList(ctx context.Context, lat, lon float64) ([]camera.Summary, error) {
	target, err := s.listURL(lat, lon)
	if err != nil {
		return nil, err
	}
	resp, err := s.fetcher.Fetch(ctx, target)
	if err != nil {
		metrics.ObserveFetch("list", outcome(err))
		return nil, err
	}
	metrics.ObserveFetch("list", "ok")

	sums, err := s.site.ParseCameraList(bytes.NewReader(resp.Body), resp.ContentType)
	if err != nil {
		return nil, err
	}
	added := s.store.MergeSummaries(sums)
	metrics.SetCachedCameras(s.store.Len())
	s.logger.Debug("list page parsed",
		zap.Float64("lat", lat),
		zap.Float64("lon", lon),
		zap.Int("cameras", len(sums)),
		zap.Int("new", added),
	)
	return sums, nil
}

// ResolveCameraDetail returns the fully-resolved record for id. A cached
// detail is returned without touching the network. A page that publishes no
// coordinates yields (nil, nil): the camera exists but cannot be placed on
// the map yet, and nothing is cached for it.
func (s *Service) ResolveCameraDetail(ctx context.Context, id string) (*camera.Detail, error) {
	if d, ok := s.store.Detail(id); ok {
		metrics.ObserveCacheHit("detail")
		return &d, nil
	}
	key := coalesce.DetailKey(id)
	v, shared, err := s.flights.Do(key, func() (any, error) {
		return s.fetchDetail(context.WithoutCancel(ctx), id)
	})
	if shared {
		metrics.ObserveCoalesced("detail")
	}
	if err != nil {
		return nil, &Error{Op: "detail", Key: key, Err: err}
	}
	return v.(*camera.Detail), nil
}

func (s *Service) fetchDetail(ctx context.Context, id string) (*camera.Detail, error) {
	target := fmt.Sprintf(s.cfg.DetailURLTemplate, url.PathEscape(id))
	resp, err := s.fetcher.Fetch(ctx, target)
	if err != nil {
		metrics.ObserveFetch("detail", outcome(err))
		return nil, err
	}
	metrics.ObserveFetch("detail", "ok")

	page, err := s.site.ParseCameraDetail(bytes.NewReader(resp.Body), resp.ContentType)
	if err != nil {
		return nil, err
	}
	if page.Lat == nil || page.Lon == nil {
		s.logger.Debug("detail page without coordinates", zap.String("camera", id))
		return (*camera.Detail)(nil), nil
	}

	name := page.Name
	if name == "" {
		name = id
	}
	d := camera.Detail{
		ID:          id,
		Coords:      camera.Coords{Lat: *page.Lat, Lon: *page.Lon},
		Name:        name,
		SnapshotURL: s.site.SnapshotURL(id),
		LiveFeedURL: page.LiveFeedURL,
	}
	s.store.PutDetail(d)
	metrics.SetCachedCameras(s.store.Len())
	return &d, nil
}

// CachedCamera returns whatever the cache knows about id, preferring the
// detail tier. Never blocks, never touches the network.
func (s *Service) CachedCamera(id string) (camera.Record, bool) {
	rec, ok := s.store.Lookup(id)
	if ok {
		if rec.Resolved() {
			metrics.ObserveCacheHit("detail")
		} else {
			metrics.ObserveCacheHit("summary")
		}
	}
	return rec, ok
}

// SnapshotURL returns the deterministic snapshot URL for id with a fresh
// cache-busting timestamp. Recomputed on every call, never cached.
func (s *Service) SnapshotURL(id string) string {
	base := s.site.SnapshotURL(id)
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return base + sep + "t=" + strconv.FormatInt(s.now().UnixMilli(), 10)
}

func (s *Service) listURL(lat, lon float64) (string, error) {
	u, err := url.Parse(s.cfg.ListURL)
	if err != nil {
		return "", fmt.Errorf("parse list url: %w", err)
	}
	q := u.Query()
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	u.RawQuery = q.Encode()
	return u.String(), nil
}
