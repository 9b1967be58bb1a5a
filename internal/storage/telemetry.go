package storage

import (
	"context"
	"log/slog"

	"github.com/lumina-fans/idolcms/internal/storage/entity"
)

// Locator resolves an IP address to an ISO country code, "" when unknown.
type Locator interface {
	CountryCode(ip string) string
}

// Visit describes where an event came from.
type Visit struct {
	IP        string
	UserAgent string
	UserID    string
}

// TelemetryService appends page events. Events are never updated.
type TelemetryService struct {
	coll    *Collection[*entity.Event]
	locator Locator
}

// NewTelemetryService serves coll. locator may be nil.
func NewTelemetryService(coll *Collection[*entity.Event], locator Locator) *TelemetryService {
	return &TelemetryService{coll: coll, locator: locator}
}

// Collection returns the underlying collection.
func (s *TelemetryService) Collection() *Collection[*entity.Event] {
	return s.coll
}

// Record stores ev, stamped with the visitor's user agent and country. The
// client IP itself is not stored.
func (s *TelemetryService) Record(ctx context.Context, v Visit, ev *entity.Event) (*entity.Event, error) {
	if ev.UserAgent == "" {
		ev.UserAgent = v.UserAgent
	}
	if ev.UserID == "" {
		ev.UserID = v.UserID
	}
	if s.locator != nil && v.IP != "" {
		ev.Country = s.locator.CountryCode(v.IP)
	}
	ev, err := s.coll.Create(ev)
	if err != nil {
		return nil, err
	}
	slog.DebugContext(ctx, "telemetry", "type", ev.Type, "path", ev.Path, "country", ev.Country)
	return ev, nil
}
