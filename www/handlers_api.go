package www

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"liftcore/dispatch"
	"liftcore/fleet"
	"liftcore/store"
)

type liftRequestBody struct {
	FloorNumber *int   `json:"floorNumber"`
	Direction   string `json:"direction"`
}

func (h *Handlers) apiCreateLiftRequest(w http.ResponseWriter, r *http.Request) {
	var body liftRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.FloorNumber == nil {
		h.jsonError(w, "invalid request body: want {floorNumber, direction}", http.StatusBadRequest)
		return
	}
	// Unknown directions go through dispatch as IDLE so the rejection is journaled.
	dir, _ := fleet.ParseDirection(body.Direction)

	res, err := h.engine.Dispatcher().Dispatch(dispatch.Request{
		Source:    dispatch.SourceHTTP,
		Floor:     *body.FloorNumber,
		Direction: dir,
	})
	if err != nil {
		h.jsonError(w, err.Error(), dispatchStatus(err))
		return
	}
	h.jsonStatus(w, res, http.StatusCreated)
}

func dispatchStatus(err error) int {
	switch {
	case errors.Is(err, fleet.ErrInvalidFloor), errors.Is(err, fleet.ErrInvalidDirection):
		return http.StatusBadRequest
	case errors.Is(err, dispatch.ErrNoLiftAvailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, fleet.ErrUnknownLift):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

type liftView struct {
	fleet.Snapshot
	Dispatched int `json:"dispatched"`
}

// apiListLifts returns the fleet snapshot, each lift with the number of hall
// calls dispatched to it.
func (h *Handlers) apiListLifts(w http.ResponseWriter, r *http.Request) {
	counts, err := h.engine.DB().CountRequestsByLift()
	if err != nil {
		log.Printf("api: count requests: %v", err)
	}
	lifts := h.engine.Registry().List()
	out := make([]liftView, len(lifts))
	for i, s := range lifts {
		out[i] = liftView{Snapshot: s, Dispatched: counts[s.ID]}
	}
	h.jsonOK(w, out)
}

func (h *Handlers) apiGetLift(w http.ResponseWriter, r *http.Request) {
	s, err := h.engine.Lift(chi.URLParam(r, "id"))
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusNotFound)
		return
	}
	h.jsonOK(w, s)
}

func (h *Handlers) apiLiftAudit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := h.engine.Registry().Get(id); !ok {
		h.jsonError(w, fleet.ErrUnknownLift.Error(), http.StatusNotFound)
		return
	}
	entries, err := h.engine.DB().ListEntityAudit("lift", id)
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []*store.AuditEntry{}
	}
	h.jsonOK(w, entries)
}

func (h *Handlers) apiListRequests(w http.ResponseWriter, r *http.Request) {
	rows, err := h.engine.DB().ListRequests(queryLimit(r, 50))
	if err != nil {
		log.Printf("api: list requests: %v", err)
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if rows == nil {
		rows = []*store.LiftRequest{}
	}
	h.jsonOK(w, rows)
}

func (h *Handlers) apiListAudit(w http.ResponseWriter, r *http.Request) {
	entries, err := h.engine.DB().ListAuditLog(queryLimit(r, 100))
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.jsonOK(w, entries)
}

func (h *Handlers) apiHealthCheck(w http.ResponseWriter, r *http.Request) {
	h.jsonOK(w, map[string]any{
		"status":    "ok",
		"lifts":     len(h.engine.Registry().IDs()),
		"floors":    h.engine.Registry().Floors(),
		"messaging": h.engine.MessagingStatus(),
		"cache":     h.engine.CacheStatus(),
		"database":  h.engine.DB().Driver(),
		"listeners": h.eventHub.ClientCount(),
	})
}

type carCallBody struct {
	Floor *int `json:"floor"`
}

func (h *Handlers) apiCarCall(w http.ResponseWriter, r *http.Request) {
	var body carCallBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Floor == nil {
		h.jsonError(w, "invalid request body: want {floor}", http.StatusBadRequest)
		return
	}
	id := chi.URLParam(r, "id")
	if err := h.engine.CarCall(id, *body.Floor, h.getUsername(r)); err != nil {
		h.jsonError(w, err.Error(), dispatchStatus(err))
		return
	}
	h.jsonStatus(w, map[string]any{"lift_id": id, "floor": *body.Floor}, http.StatusAccepted)
}

func (h *Handlers) apiConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.engine.AppConfig().Redacted()
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.jsonOK(w, cfg)
}

func queryLimit(r *http.Request, def int) int {
	n, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || n <= 0 {
		return def
	}
	if n > 500 {
		return 500
	}
	return n
}

func (h *Handlers) jsonOK(w http.ResponseWriter, data any) {
	h.jsonStatus(w, data, http.StatusOK)
}

func (h *Handlers) jsonStatus(w http.ResponseWriter, data any, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(data)
}

func (h *Handlers) jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
