package grafana

import (
	"context"
	"encoding/json"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGrafana serves the grafana endpoints used by the creator
type fakeGrafana struct {
	sync.Mutex
	folders    []string
	dashboards []string
}

func (f *fakeGrafana) router() http.Handler {
	r := chi.NewRouter()
	r.Get("/api/folders", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte("[]"))
	})
	r.Post("/api/folders", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Title string `json:"title"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		f.Lock()
		f.folders = append(f.folders, req.Title)
		f.Unlock()
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"id": 1, "uid": "multicube", "title": req.Title})
	})
	r.Post("/api/dashboards/db", func(w http.ResponseWriter, r *http.Request) {
		body, _ := ioutil.ReadAll(r.Body)
		f.Lock()
		f.dashboards = append(f.dashboards, string(body))
		f.Unlock()
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id": 1, "uid": "executor", "url": "/d/executor", "status": "success", "version": 1,
		})
	})
	return r
}

func TestCreate(t *testing.T) {
	fake := &fakeGrafana{}
	server := httptest.NewServer(fake.router())
	defer server.Close()

	c := NewDashboardCreator(server.URL, "api-key", "Prometheus")
	require.NoError(t, c.Create(context.Background()))

	fake.Lock()
	defer fake.Unlock()
	assert.Equal(t, []string{folderName}, fake.folders)
	require.Len(t, fake.dashboards, 1)
	assert.True(t, strings.Contains(fake.dashboards[0], dashboardName))
	assert.True(t, strings.Contains(fake.dashboards[0], "multicube_executor_batch_total"))
}
