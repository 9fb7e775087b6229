package server

import (
	"net/http"
	"time"
)

// Handler serves the dispatch history API and the live event stream.
// store may be nil when history is disabled.
func Handler(hub *Hub, store DispatchStore, hooks StatusHooks) http.Handler {
	mux := http.NewServeMux()

	registerWSRoute(mux, hub)
	registerAPIRoutes(mux, store, hooks)

	return mux
}

func New(addr string, hub *Hub, store DispatchStore, hooks StatusHooks) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           Handler(hub, store, hooks),
		ReadHeaderTimeout: 10 * time.Second,
	}
}
