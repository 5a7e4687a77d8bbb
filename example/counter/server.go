package main

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/matrixorigin/multicube/metric"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func newRouter(c *counters) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", promhttp.HandlerFor(metric.Registry(), promhttp.HandlerOpts{}))

	r.Get("/counters", func(w http.ResponseWriter, r *http.Request) {
		names := r.URL.Query()["name"]
		if len(names) == 0 {
			http.Error(w, "missing name", http.StatusBadRequest)
			return
		}

		values, err := c.get(r.Context(), names)
		if err != nil {
			c.logger.Error("fail to get counters",
				zap.Strings("names", names),
				zap.Error(err))
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, values)
	})

	r.Post("/counters/{name}/incr", func(w http.ResponseWriter, r *http.Request) {
		delta := int64(1)
		if by := r.URL.Query().Get("by"); by != "" {
			v, err := strconv.ParseInt(by, 10, 64)
			if err != nil {
				http.Error(w, "invalid by", http.StatusBadRequest)
				return
			}
			delta = v
		}

		name := chi.URLParam(r, "name")
		value, err := c.incr(r.Context(), name, delta)
		if err != nil {
			c.logger.Error("fail to incr counter",
				zap.String("name", name),
				zap.Error(err))
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, value)
	})

	return r
}

func writeJSON(w http.ResponseWriter, value interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(value)
}
