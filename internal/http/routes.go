package http

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"soundbridge/internal/core"
)

const (
	serviceName      = "soundbridge"
	streamMediaType  = "audio/mpeg"
	requestedByParam = "requested_by"

	defaultHistoryLimit = 20
)

// History is the play history the API reads for related tracks and appends to when a stream
// is served. It is also listed and cleared through /v1/history.
type History interface {
	core.History
	Add(url string)
	Recent(n int) []string
	Len() int
	Clear()
}

// Deps are the collaborators behind the routes. Links and History may be empty.
type Deps struct {
	Registry *core.Registry
	Links    core.Links
	History  History
	Metrics  *Metrics
	Gatherer prometheus.Gatherer
	Logger   *zap.Logger
}

type handlers struct {
	Deps
}

func setupRoutes(deps Deps) *http.ServeMux {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Gatherer == nil {
		deps.Gatherer = prometheus.DefaultGatherer
	}
	if deps.History == nil {
		deps.History = noHistory{}
	}
	h := &handlers{Deps: deps}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", statusHandler("ok"))
	mux.HandleFunc("GET /readyz", h.readyz)
	mux.Handle("GET /metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	mux.HandleFunc("GET /v1/resolve", h.resolve)
	mux.HandleFunc("GET /v1/related", h.related)
	mux.HandleFunc("GET /v1/stream", h.stream)
	mux.HandleFunc("GET /v1/history", h.history)
	mux.HandleFunc("DELETE /v1/history", h.clearHistory)
	mux.HandleFunc("GET /{$}", homeHandler)
	return mux
}

func statusHandler(status string) http.HandlerFunc {
	body := `{"status":"` + status + `","service":"` + serviceName + `"}`
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(body))
	}
}

// readyz reports ready once at least one extractor is active.
func (h *handlers) readyz(w http.ResponseWriter, r *http.Request) {
	if h.Registry == nil || len(h.Registry.Identifiers()) == 0 {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"status":"not ready","service":"` + serviceName + `"}`))
		return
	}
	statusHandler("ready")(w, r)
}

func (h *handlers) resolve(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		h.writeError(w, "resolve", http.StatusBadRequest, "missing q parameter")
		return
	}

	result := h.Registry.Handle(r.Context(), query, requestContext(r))
	h.writeJSON(w, "resolve", http.StatusOK, newResultView(result))
}

func (h *handlers) related(w http.ResponseWriter, r *http.Request) {
	target := strings.TrimSpace(r.URL.Query().Get("url"))
	if target == "" {
		h.writeError(w, "related", http.StatusBadRequest, "missing url parameter")
		return
	}

	ext, rest, _, err := h.Registry.Route(target)
	if err != nil {
		h.writeError(w, "related", http.StatusNotFound, err.Error())
		return
	}

	seed := ext.Handle(r.Context(), rest, core.SearchContext{RequestContext: requestContext(r)})
	if seed.Empty() {
		h.writeJSON(w, "related", http.StatusNotFound, newResultView(seed))
		return
	}

	track := seed.Tracks[0]
	result := ext.GetRelatedTracks(r.Context(), track, h.History)
	h.History.Add(track.URL)
	h.writeJSON(w, "related", http.StatusOK, newResultView(result))
}

func (h *handlers) stream(w http.ResponseWriter, r *http.Request) {
	target := strings.TrimSpace(r.URL.Query().Get("url"))
	if target == "" {
		h.writeError(w, "stream", http.StatusBadRequest, "missing url parameter")
		return
	}

	stream, played, err := h.Registry.Play(r.Context(), h.Links, target, requestContext(r))
	if err != nil {
		h.Logger.Warn("Stream request failed", zap.String("url", target), zap.Error(err))
		h.writeError(w, "stream", http.StatusBadGateway, err.Error())
		return
	}
	h.History.Add(played.URL)

	if stream.Body == nil {
		h.Metrics.recordRequest("stream", http.StatusFound)
		http.Redirect(w, r, stream.URL, http.StatusFound)
		return
	}

	defer stream.Body.Close()
	h.Metrics.recordRequest("stream", http.StatusOK)
	w.Header().Set("Content-Type", streamMediaType)
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, stream.Body); err != nil {
		h.Logger.Debug("Stream copy interrupted", zap.String("url", target), zap.Error(err))
	}
}

// history lists the most recently played URLs, newest first.
func (h *handlers) history(w http.ResponseWriter, r *http.Request) {
	limit := defaultHistoryLimit
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			h.writeError(w, "history", http.StatusBadRequest, "invalid limit parameter")
			return
		}
		limit = n
	}

	h.writeJSON(w, "history", http.StatusOK, historyView{Size: h.History.Len(), Tracks: h.History.Recent(limit)})
}

func (h *handlers) clearHistory(w http.ResponseWriter, _ *http.Request) {
	h.History.Clear()
	h.Logger.Info("Play history cleared")
	h.writeJSON(w, "history", http.StatusOK, historyView{Size: h.History.Len(), Tracks: []string{}})
}

func (h *handlers) writeJSON(w http.ResponseWriter, route string, code int, body any) {
	h.Metrics.recordRequest(route, code)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.Logger.Debug("Failed to write response", zap.String("route", route), zap.Error(err))
	}
}

func (h *handlers) writeError(w http.ResponseWriter, route string, code int, message string) {
	h.writeJSON(w, route, code, map[string]string{"error": message})
}

func requestContext(r *http.Request) core.RequestContext {
	return core.RequestContext{RequestedBy: strings.TrimSpace(r.URL.Query().Get(requestedByParam))}
}

type noHistory struct{}

func (noHistory) Contains(string) bool { return false }

func (noHistory) Add(string) {}

func (noHistory) Recent(int) []string { return []string{} }

func (noHistory) Len() int { return 0 }

func (noHistory) Clear() {}

func homeHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`<!DOCTYPE html>
<html>
<head>
    <title>soundbridge</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 40px; }
        .endpoint { margin: 10px 0; }
        .endpoint a { text-decoration: none; color: #0066cc; }
    </style>
</head>
<body>
    <h1>soundbridge</h1>
    <p>SoundCloud resolution, related tracks and cross-provider streaming.</p>

    <h2>Endpoints</h2>
    <div class="endpoint"><a href="/v1/resolve?q=">/v1/resolve?q=</a> - Resolve a URL or search term</div>
    <div class="endpoint"><a href="/v1/related?url=">/v1/related?url=</a> - Related tracks</div>
    <div class="endpoint"><a href="/v1/stream?url=">/v1/stream?url=</a> - Play a track, bridging foreign links</div>
    <div class="endpoint"><a href="/v1/history">/v1/history</a> - Recently played tracks (DELETE clears them)</div>
    <div class="endpoint"><a href="/metrics">/metrics</a> - Prometheus metrics</div>
    <div class="endpoint"><a href="/healthz">/healthz</a> - Health check</div>
    <div class="endpoint"><a href="/readyz">/readyz</a> - Readiness check</div>
</body>
</html>`))
}
