package services

import (
	"sync"
	"time"
)

// LimitStatus reports the quota position of one client identifier.
type LimitStatus struct {
	Allowed   bool
	Count     int
	Remaining int
}

// RateLimitService bounds the number of chat requests a single client
// identifier may spend per UTC calendar day. Check is a pure read;
// Consume charges one unit; Sweep reclaims records from previous days.
type RateLimitService interface {
	Check(identifier string) LimitStatus
	Consume(identifier string) LimitStatus
	Sweep()
	Limit() int
}

type usageRecord struct {
	date  string
	count int
}

type rateLimitService struct {
	limit   int
	mu      sync.Mutex
	records map[string]*usageRecord
	now     func() time.Time
}

type RateLimitOption func(*rateLimitService)

// WithClock overrides the time source, used by tests to simulate
// date rollover.
func WithClock(now func() time.Time) RateLimitOption {
	return func(s *rateLimitService) { s.now = now }
}

func NewRateLimitService(limit int, opts ...RateLimitOption) RateLimitService {
	s := &rateLimitService{
		limit:   limit,
		records: make(map[string]*usageRecord),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *rateLimitService) Limit() int {
	return s.limit
}

// currentDate returns the UTC day the quota window is keyed by. It is
// recomputed on every call so a midnight rollover takes effect without
// any coordination.
func (s *rateLimitService) currentDate() string {
	return s.now().UTC().Format("2006-01-02")
}

func (s *rateLimitService) Check(identifier string) LimitStatus {
	today := s.currentDate()

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[identifier]
	if !ok || rec.date != today {
		// New identifier or stale record: virtually fresh. Do not
		// materialize anything on the read path.
		return LimitStatus{Allowed: true, Count: 0, Remaining: s.limit}
	}

	if rec.count >= s.limit {
		return LimitStatus{Allowed: false, Count: rec.count, Remaining: 0}
	}

	return LimitStatus{Allowed: true, Count: rec.count, Remaining: s.limit - rec.count}
}

func (s *rateLimitService) Consume(identifier string) LimitStatus {
	today := s.currentDate()

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[identifier]
	if !ok || rec.date != today {
		s.records[identifier] = &usageRecord{date: today, count: 1}
		return LimitStatus{Allowed: true, Count: 1, Remaining: s.limit - 1}
	}

	rec.count++
	return LimitStatus{Allowed: rec.count <= s.limit, Count: rec.count, Remaining: s.limit - rec.count}
}

// Sweep drops every record dated before today. Check and Consume already
// treat stale records as fresh, so this exists purely to bound memory.
func (s *rateLimitService) Sweep() {
	today := s.currentDate()

	s.mu.Lock()
	defer s.mu.Unlock()

	for identifier, rec := range s.records {
		if rec.date != today {
			delete(s.records, identifier)
		}
	}
}
