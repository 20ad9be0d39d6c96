package www

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"liftcore/config"
	"liftcore/engine"
	"liftcore/fleet"
	"liftcore/lift"
	"liftcore/store"
)

func testRouter(t *testing.T) (http.Handler, *engine.Engine) {
	t.Helper()
	db, err := store.Open(&config.DatabaseConfig{
		Driver: "sqlite",
		SQLite: config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "test.db")},
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	cfg := config.Defaults()
	cfg.Fleet = config.FleetConfig{Lifts: 3, Floors: 10, SecondsPerFloor: 1, TravelUnit: 2 * time.Millisecond, Seed: 1}
	cfg.Database.Postgres.Password = "hunter2"
	eng, err := engine.New(engine.Config{AppConfig: cfg, DB: db, Boarding: lift.NoBoarding{}, LogFunc: t.Logf})
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	eng.Start()
	t.Cleanup(eng.Stop)

	handler, stop := NewRouter(eng)
	t.Cleanup(stop)
	return handler, eng
}

func do(t *testing.T, h http.Handler, method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestCreateLiftRequestStatusMapping(t *testing.T) {
	h, eng := testRouter(t)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"created", `{"floorNumber": 4, "direction": "UP"}`, http.StatusCreated},
		{"lowercase direction", `{"floorNumber": 2, "direction": "down"}`, http.StatusCreated},
		{"floor out of range", `{"floorNumber": 10, "direction": "UP"}`, http.StatusBadRequest},
		{"negative floor", `{"floorNumber": -1, "direction": "DOWN"}`, http.StatusBadRequest},
		{"idle direction", `{"floorNumber": 3, "direction": "IDLE"}`, http.StatusBadRequest},
		{"unknown direction", `{"floorNumber": 3, "direction": "SIDEWAYS"}`, http.StatusBadRequest},
		{"missing floor", `{"direction": "UP"}`, http.StatusBadRequest},
		{"malformed", `{"floorNumber":`, http.StatusBadRequest},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/lift-requests", tc.body)
			if rec.Code != tc.want {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tc.want, rec.Body)
			}
		})
	}

	// Two created plus the four that reached dispatch are journaled.
	rows, err := eng.DB().ListRequests(100)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 6 {
		t.Errorf("journal rows = %d, want 6", len(rows))
	}
}

func TestCreateLiftRequestReturnsLift(t *testing.T) {
	h, eng := testRouter(t)

	rec := do(t, h, http.MethodPost, "/lift-requests", `{"floorNumber": 7, "direction": "DOWN"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	var res struct {
		RequestID string `json:"request_id"`
		LiftID    string `json:"lift_id"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&res); err != nil {
		t.Fatal(err)
	}
	if res.RequestID == "" || res.LiftID == "" {
		t.Fatalf("result = %+v", res)
	}
	if _, ok := eng.Registry().Get(res.LiftID); !ok {
		t.Errorf("unknown lift %q in response", res.LiftID)
	}
}

func TestLiftQueries(t *testing.T) {
	h, _ := testRouter(t)

	rec := do(t, h, http.MethodGet, "/api/lifts", "")
	var lifts []fleet.Snapshot
	if err := json.NewDecoder(rec.Body).Decode(&lifts); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(lifts) != 3 || lifts[0].ID != "1" {
		t.Errorf("lifts = %+v", lifts)
	}

	rec = do(t, h, http.MethodGet, "/api/lifts/2", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"id":"2"`) {
		t.Errorf("GET /api/lifts/2 = %d %s", rec.Code, rec.Body)
	}

	rec = do(t, h, http.MethodGet, "/api/lifts/9", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("GET /api/lifts/9 = %d, want 404", rec.Code)
	}

	rec = do(t, h, http.MethodGet, "/api/health", "")
	var health map[string]any
	json.NewDecoder(rec.Body).Decode(&health)
	if health["status"] != "ok" || health["lifts"] != float64(3) || health["floors"] != float64(10) || health["cache"] != "disabled" {
		t.Errorf("health = %v", health)
	}
	if health["database"] != "sqlite" || health["listeners"] != float64(0) {
		t.Errorf("health = %v", health)
	}

	do(t, h, http.MethodPost, "/lift-requests", `{"floorNumber": 1, "direction": "UP"}`)
	rec = do(t, h, http.MethodGet, "/api/requests?limit=1", "")
	var rows []store.LiftRequest
	json.NewDecoder(rec.Body).Decode(&rows)
	if len(rows) != 1 || rows[0].Floor != 1 {
		t.Errorf("requests = %+v", rows)
	}

	rec = do(t, h, http.MethodGet, "/api/lifts", "")
	var views []struct {
		ID         string `json:"id"`
		Dispatched int    `json:"dispatched"`
	}
	json.NewDecoder(rec.Body).Decode(&views)
	total := 0
	for _, v := range views {
		if v.ID == rows[0].LiftID && v.Dispatched != 1 {
			t.Errorf("lift %s dispatched = %d, want 1", v.ID, v.Dispatched)
		}
		total += v.Dispatched
	}
	if total != 1 {
		t.Errorf("dispatched total = %d, want 1", total)
	}
}

func login(t *testing.T, h http.Handler) []*http.Cookie {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/login", `{"username":"admin","password":"admin"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("login = %d %s", rec.Code, rec.Body)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("login set no session cookie")
	}
	return cookies
}

func TestProtectedRoutes(t *testing.T) {
	h, eng := testRouter(t)

	if rec := do(t, h, http.MethodPost, "/api/lifts/1/stops", `{"floor": 3}`); rec.Code != http.StatusUnauthorized {
		t.Errorf("unauthenticated car call = %d, want 401", rec.Code)
	}
	if rec := do(t, h, http.MethodPost, "/login", `{"username":"admin","password":"wrong"}`); rec.Code != http.StatusUnauthorized {
		t.Errorf("bad password = %d, want 401", rec.Code)
	}

	cookies := login(t, h)

	if rec := do(t, h, http.MethodPost, "/api/lifts/1/stops", `{"floor": 3}`, cookies...); rec.Code != http.StatusAccepted {
		t.Errorf("car call = %d %s, want 202", rec.Code, rec.Body)
	}
	entries, _ := eng.DB().ListEntityAudit("lift", "1")
	found := false
	for _, a := range entries {
		if a.Action == "car_call" && a.Actor == "admin" {
			found = true
		}
	}
	if !found {
		t.Errorf("car call not audited with actor: %+v", entries)
	}

	if rec := do(t, h, http.MethodGet, "/api/lifts/1/audit", ""); rec.Code != http.StatusUnauthorized {
		t.Errorf("unauthenticated lift audit = %d, want 401", rec.Code)
	}
	rec := do(t, h, http.MethodGet, "/api/lifts/1/audit", "", cookies...)
	var trail []store.AuditEntry
	json.NewDecoder(rec.Body).Decode(&trail)
	if rec.Code != http.StatusOK || len(trail) == 0 || trail[len(trail)-1].Action != "car_call" {
		t.Errorf("lift audit = %d %+v", rec.Code, trail)
	}
	if rec := do(t, h, http.MethodGet, "/api/lifts/9/audit", "", cookies...); rec.Code != http.StatusNotFound {
		t.Errorf("unknown lift audit = %d, want 404", rec.Code)
	}

	if rec := do(t, h, http.MethodPost, "/api/lifts/9/stops", `{"floor": 3}`, cookies...); rec.Code != http.StatusNotFound {
		t.Errorf("unknown lift = %d, want 404", rec.Code)
	}
	if rec := do(t, h, http.MethodPost, "/api/lifts/1/stops", `{"floor": 30}`, cookies...); rec.Code != http.StatusBadRequest {
		t.Errorf("bad floor = %d, want 400", rec.Code)
	}

	rec = do(t, h, http.MethodGet, "/api/config", "", cookies...)
	if rec.Code != http.StatusOK {
		t.Fatalf("config = %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "hunter2") {
		t.Error("config response leaks the database password")
	}

	rec = do(t, h, http.MethodPost, "/logout", "", cookies...)
	if rec.Code != http.StatusOK {
		t.Errorf("logout = %d", rec.Code)
	}
	if rec := do(t, h, http.MethodGet, "/api/config", "", rec.Result().Cookies()...); rec.Code != http.StatusUnauthorized {
		t.Errorf("config after logout = %d, want 401", rec.Code)
	}
}

func TestEventStream(t *testing.T) {
	h, _ := testRouter(t)
	srv := httptest.NewServer(h)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/events", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET /events: %v", err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("Content-Type = %q", ct)
	}

	post, err := http.Post(srv.URL+"/lift-requests", "application/json", strings.NewReader(`{"floorNumber": 5, "direction": "UP"}`))
	if err != nil {
		t.Fatal(err)
	}
	post.Body.Close()

	sc := bufio.NewScanner(resp.Body)
	found := false
	for !found && sc.Scan() {
		found = sc.Text() == "event: request-dispatched"
	}
	if !found {
		t.Fatalf("stream ended without request-dispatched event: %v", sc.Err())
	}

	health, err := http.Get(srv.URL + "/api/health")
	if err != nil {
		t.Fatal(err)
	}
	defer health.Body.Close()
	var body map[string]any
	json.NewDecoder(health.Body).Decode(&body)
	if body["listeners"] != float64(1) {
		t.Errorf("listeners = %v, want 1", body["listeners"])
	}
}

func TestEventHubDetach(t *testing.T) {
	_, eng := testRouter(t)
	// Only synchronous car-call events from here on.
	eng.Stop()

	hub := NewEventHub()
	hub.Start()
	defer hub.Stop()
	detach := hub.SetupEngineListeners(eng)
	ch := hub.AddClient()
	defer hub.RemoveClient(ch)

	if err := eng.CarCall("1", 2, "admin"); err != nil {
		t.Fatal(err)
	}
	select {
	case evt := <-ch:
		if evt.Event != "car-call" {
			t.Errorf("event = %q, want car-call", evt.Event)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no event before detach")
	}

	detach()
	if err := eng.CarCall("1", 3, "admin"); err != nil {
		t.Fatal(err)
	}
	select {
	case evt := <-ch:
		if evt.Event != "keepalive" {
			t.Errorf("event %q delivered after detach", evt.Event)
		}
	case <-time.After(100 * time.Millisecond):
	}
}
