package collect

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/loomlog/loom"
)

// Handler exposes the collector over HTTP for ad-hoc inspection:
//
//	GET /records          all retained records, oldest first
//	GET /records/latest   the newest record, 404 when empty
//	GET /stats            retention counters
//
// /records accepts optional ?category= (exact match) and ?level=
// (minimum, by name) filters.
func Handler(c *Collector) http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/records", handleRecords(c)).Methods(http.MethodGet)
	r.HandleFunc("/records/latest", handleLatest(c)).Methods(http.MethodGet)
	r.HandleFunc("/stats", handleStats(c)).Methods(http.MethodGet)
	return r
}

type recordJSON struct {
	Category  string        `json:"category"`
	Level     string        `json:"level"`
	Event     int           `json:"event,omitempty"`
	Message   string        `json:"message"`
	State     []fieldJSON   `json:"state"`
	Scopes    [][]fieldJSON `json:"scopes,omitempty"`
	Exception *excJSON      `json:"exception,omitempty"`
	Sequence  uint64        `json:"sequence"`
	Time      time.Time     `json:"time"`
}

type fieldJSON struct {
	Key   string      `json:"key"`
	Value interface{} `json:"value"`
}

type excJSON struct {
	Message string   `json:"message"`
	Type    string   `json:"type"`
	Stack   []string `json:"stack,omitempty"`
	Cause   *excJSON `json:"cause,omitempty"`
}

type statsJSON struct {
	Count          int    `json:"count"`
	Evicted        uint64 `json:"evicted"`
	LatestSequence uint64 `json:"latest_sequence"`
}

func handleRecords(c *Collector) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		category := r.URL.Query().Get("category")
		min := loom.LevelTrace
		if s := r.URL.Query().Get("level"); s != "" {
			lvl, err := loom.ParseLevel(s)
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			min = lvl
		}

		recs := c.Snapshot()
		out := make([]recordJSON, 0, len(recs))
		for _, rec := range recs {
			if category != "" && rec.Category != category {
				continue
			}
			if rec.Level < min {
				continue
			}
			out = append(out, toRecordJSON(rec))
		}
		writeJSON(w, out)
	}
}

func handleLatest(c *Collector) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, ok := c.Latest()
		if !ok {
			http.Error(w, "no records", http.StatusNotFound)
			return
		}
		writeJSON(w, toRecordJSON(rec))
	}
}

func handleStats(c *Collector) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats := statsJSON{
			Count:   c.Count(),
			Evicted: c.Evicted(),
		}
		if rec, ok := c.Latest(); ok {
			stats.LatestSequence = rec.Sequence
		}
		writeJSON(w, stats)
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func toRecordJSON(rec *loom.Record) recordJSON {
	out := recordJSON{
		Category: rec.Category,
		Level:    rec.Level.String(),
		Event:    int(rec.Event),
		Message:  rec.Message,
		State:    toFieldsJSON(rec.State),
		Sequence: rec.Sequence,
		Time:     rec.Time,
	}
	for _, frame := range rec.Scopes {
		out.Scopes = append(out.Scopes, toFieldsJSON(frame))
	}
	out.Exception = toExcJSON(rec.Exception)
	return out
}

func toFieldsJSON(fields []loom.Field) []fieldJSON {
	out := make([]fieldJSON, 0, len(fields))
	for _, f := range fields {
		out = append(out, fieldJSON{Key: f.Key, Value: toValueJSON(f.Value)})
	}
	return out
}

// toValueJSON keeps values encodable: nested structures become field
// lists and errors become their messages.
func toValueJSON(v interface{}) interface{} {
	switch x := v.(type) {
	case loom.Structure:
		return toFieldsJSON(x)
	case error:
		return x.Error()
	}
	return v
}

func toExcJSON(e *loom.Exception) *excJSON {
	if e == nil {
		return nil
	}
	return &excJSON{
		Message: e.Message,
		Type:    e.Type,
		Stack:   e.Stack,
		Cause:   toExcJSON(e.Cause),
	}
}
