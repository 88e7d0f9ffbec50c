package router

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	v1 "imgbind/api/v1"
	"imgbind/internal/auth"
	"imgbind/internal/hub"
	"imgbind/internal/service"
)

// New sets up the application routes and required middleware.
func New(logger *slog.Logger, fetchSvc service.Fetch, events *hub.Hub) *mux.Router {

	r := mux.NewRouter()
	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("ok")); err != nil {
			logger.Error("write healthz response", "err", err)
		}
	}).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	fetchHandler := v1.NewFetchHandler(logger, fetchSvc)

	r.Use(v1.RequestID)
	r.Use(fetchHandler.Log)
	r.Use(auth.Middleware)

	api := r.PathPrefix("/v1").Subrouter()

	if events != nil {
		api.Handle("/events", events).Methods("GET")
	}

	// GETs
	get := api.Methods("GET").Subrouter()
	get.HandleFunc("/fetches", fetchHandler.GetFetches)
	get.HandleFunc("/fetches/{id}", fetchHandler.GetFetch)

	// POSTs
	post := api.Methods("POST").Subrouter()
	post.HandleFunc("/fetches", fetchHandler.AddFetch)
	post.Use(v1.MiddlewareFetchValidation)

	// DELETEs
	del := api.Methods("DELETE").Subrouter()
	del.HandleFunc("/fetches/{id}", fetchHandler.CancelFetch)

	return r
}
