package ui

import (
	"net/url"
	"saferoom-locator/internal/domain"
	"sync"

	"go.uber.org/zap"
)

// DetailRouter is a SelectionSink that navigates to a shelter's detail
// route instead of blocking on an alert.
type DetailRouter struct {
	log *zap.Logger

	mu      sync.Mutex
	route   string
	current *domain.Shelter
	history []string
}

func NewDetailRouter(log *zap.Logger) *DetailRouter {
	if log == nil {
		log = zap.NewNop()
	}
	return &DetailRouter{log: log.Named("router"), route: "/map"}
}

// DetailRoute is the route of a shelter's detail view.
func DetailRoute(id string) string {
	return "/map/" + url.PathEscape(id)
}

func (r *DetailRouter) ShelterSelected(s domain.Shelter) {
	route := DetailRoute(s.ID)

	r.mu.Lock()
	r.route = route
	r.current = &s
	r.history = append(r.history, route)
	r.mu.Unlock()

	r.log.Info("navigate", zap.String("route", route), zap.Bool("available", s.Available))
}

// Current returns the active route and, on a detail route, its shelter.
func (r *DetailRouter) Current() (string, *domain.Shelter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current == nil {
		return r.route, nil
	}
	s := *r.current
	return r.route, &s
}

func (r *DetailRouter) History() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.history...)
}
