package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"menuplanner/internal/monitoring"
	"menuplanner/internal/planner"
	"menuplanner/internal/store"
)

func newTestAPI(t *testing.T) (*PlannerAPI, *Hub) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hub := NewHub(zerolog.Nop())
	session := planner.Open(context.Background(), planner.Options{
		Store:    store.NewMemoryStore(),
		Logger:   zerolog.Nop(),
		Notifier: hub,
	})
	api := NewPlannerAPI(session, Options{
		Logger:  zerolog.Nop(),
		Hub:     hub,
		Metrics: monitoring.NewMonitor().Handler(),
	})
	return api, hub
}

func do(t *testing.T, api *PlannerAPI, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	api.Router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestHealth(t *testing.T) {
	api, _ := newTestAPI(t)
	w := do(t, api, "GET", "/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestProducts_AddParsesFreeFormAmount(t *testing.T) {
	api, _ := newTestAPI(t)

	w := do(t, api, "POST", "/api/v1/products", map[string]string{"name": "flour", "amount": "1,5", "unit": "kg"})
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "flour", body["name"])
	assert.Equal(t, map[string]interface{}{"amount": 1.5, "unit": "kg"}, body["quantity"])

	w = do(t, api, "POST", "/api/v1/products", map[string]interface{}{"name": "flour", "amount": 500, "unit": "g"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]interface{}{"amount": 2.0, "unit": "kg"}, decode(t, w)["quantity"])
}

func TestProducts_AddRejectsBadInput(t *testing.T) {
	api, _ := newTestAPI(t)

	tests := []struct {
		name string
		body map[string]string
		code int
	}{
		{"unparseable amount", map[string]string{"name": "milk", "amount": "lots", "unit": "ml"}, http.StatusBadRequest},
		{"unknown unit", map[string]string{"name": "milk", "amount": "1", "unit": "cups"}, http.StatusBadRequest},
		{"empty amount", map[string]string{"name": "milk", "amount": "", "unit": "l"}, http.StatusBadRequest},
		{"missing name", map[string]string{"amount": "1", "unit": "l"}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, api, "POST", "/api/v1/products", tt.body)
			assert.Equal(t, tt.code, w.Code)
			assert.Contains(t, decode(t, w), "error")
		})
	}

	w := do(t, api, "GET", "/api/v1/products", nil)
	assert.JSONEq(t, "[]", w.Body.String())
}

func TestProducts_IncompatibleUnitIsRejected(t *testing.T) {
	api, _ := newTestAPI(t)

	require.Equal(t, http.StatusOK, do(t, api, "POST", "/api/v1/products", map[string]string{"name": "eggs", "amount": "6", "unit": "pcs"}).Code)
	w := do(t, api, "POST", "/api/v1/products", map[string]string{"name": "eggs", "amount": "100", "unit": "g"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProducts_UpdateAndDelete(t *testing.T) {
	api, _ := newTestAPI(t)
	do(t, api, "POST", "/api/v1/products", map[string]string{"name": "milk", "amount": "1", "unit": "l"})

	w := do(t, api, "PUT", "/api/v1/products/milk", map[string]string{"amount": "250", "unit": "ml"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]interface{}{"amount": 250.0, "unit": "ml"}, decode(t, w)["quantity"])

	assert.Equal(t, http.StatusNoContent, do(t, api, "DELETE", "/api/v1/products/milk", nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, api, "DELETE", "/api/v1/products/milk", nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, api, "GET", "/api/v1/products/milk", nil).Code)
}

func TestDishes_CreateFindAndConflict(t *testing.T) {
	api, _ := newTestAPI(t)
	soup := map[string]interface{}{
		"name":        "Soup",
		"description": "Tomato soup",
		"ingredients": map[string]interface{}{"tomato": map[string]string{"amount": "3", "unit": "pcs"}},
	}

	require.Equal(t, http.StatusCreated, do(t, api, "POST", "/api/v1/dishes", soup).Code)
	assert.Equal(t, http.StatusConflict, do(t, api, "POST", "/api/v1/dishes", soup).Code)

	w := do(t, api, "GET", "/api/v1/dishes/Soup", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Tomato soup", decode(t, w)["description"])

	w = do(t, api, "GET", "/api/v1/dishes?ingredient=tomato", nil)
	var found []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &found))
	assert.Len(t, found, 1)

	assert.Equal(t, http.StatusNotFound, do(t, api, "GET", "/api/v1/dishes/Stew", nil).Code)
}

func TestMenu_AssignUpdateAndClear(t *testing.T) {
	api, _ := newTestAPI(t)
	do(t, api, "POST", "/api/v1/products", map[string]string{"name": "flour", "amount": "1000", "unit": "g"})
	do(t, api, "POST", "/api/v1/dishes", map[string]interface{}{
		"name":        "Bread",
		"ingredients": map[string]interface{}{"flour": map[string]string{"amount": "1", "unit": "kg"}},
	})

	w := do(t, api, "GET", "/api/v1/dishes/Bread/availability", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["available"])

	w = do(t, api, "PUT", "/api/v1/menu/monday/morning", map[string]string{"dish": "Bread"})
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "Monday", body["day"])
	assert.Equal(t, "breakfast", body["meal"])

	assert.Equal(t, http.StatusNotFound, do(t, api, "GET", "/api/v1/products/flour", nil).Code)

	w = do(t, api, "PUT", "/api/v1/dishes/Bread", map[string]interface{}{
		"name":        "Bread",
		"description": "Crusty",
		"ingredients": map[string]interface{}{"flour": map[string]string{"amount": "1", "unit": "kg"}},
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1.0, decode(t, w)["slots_updated"])

	w = do(t, api, "GET", "/api/v1/menu/Monday/breakfast", nil)
	dish := decode(t, w)["dish"].(map[string]interface{})
	assert.Equal(t, "Crusty", dish["description"])

	w = do(t, api, "DELETE", "/api/v1/menu/Monday/breakfast", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["cleared"])

	w = do(t, api, "GET", "/api/v1/products/flour", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]interface{}{"amount": 1.0, "unit": "kg"}, decode(t, w)["quantity"])
}

func TestMenu_AssignInsufficientStock(t *testing.T) {
	api, _ := newTestAPI(t)
	do(t, api, "POST", "/api/v1/dishes", map[string]interface{}{
		"name":        "Omelette",
		"ingredients": map[string]interface{}{"eggs": map[string]string{"amount": "3", "unit": "pcs"}},
	})

	w := do(t, api, "PUT", "/api/v1/menu/Tuesday/lunch", map[string]string{"dish": "Omelette"})
	require.Equal(t, http.StatusConflict, w.Code)
	shortages := decode(t, w)["shortages"].([]interface{})
	require.Len(t, shortages, 1)
	assert.Equal(t, "missing", shortages[0].(map[string]interface{})["reason"])

	w = do(t, api, "GET", "/api/v1/menu", nil)
	var slots []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &slots))
	require.Len(t, slots, 21)
	for _, slot := range slots {
		assert.Nil(t, slot["dish"])
	}
}

func TestMenu_BadSlotAndUnknownDish(t *testing.T) {
	api, _ := newTestAPI(t)

	assert.Equal(t, http.StatusBadRequest, do(t, api, "GET", "/api/v1/menu/Funday/lunch", nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, api, "GET", "/api/v1/menu/Monday/supper", nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, api, "PUT", "/api/v1/menu/Monday/lunch", map[string]string{"dish": "Ghost"}).Code)
}

func TestExport(t *testing.T) {
	api, _ := newTestAPI(t)
	do(t, api, "POST", "/api/v1/products", map[string]string{"name": "rice", "amount": "2", "unit": "kg"})

	path := filepath.Join(t.TempDir(), "products.txt")
	w := do(t, api, "POST", "/api/v1/export/products", map[string]string{"path": path})
	require.Equal(t, http.StatusOK, w.Code)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "rice: 2 kg\n", string(data))

	assert.Equal(t, http.StatusBadRequest, do(t, api, "POST", "/api/v1/export/menu", map[string]string{}).Code)
}

func TestMetricsRoute(t *testing.T) {
	api, _ := newTestAPI(t)
	w := do(t, api, "GET", "/metrics", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "menuplanner_uptime_seconds")
}

func TestWebSocketFeed(t *testing.T) {
	api, hub := newTestAPI(t)
	srv := httptest.NewServer(api.Router)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 10*time.Millisecond)

	do(t, api, "POST", "/api/v1/products", map[string]string{"name": "tea", "amount": "100", "unit": "g"})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ev planner.Event
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, planner.EventProductChanged, ev.Type)
	assert.Equal(t, "tea", ev.Subject)
	assert.NotEmpty(t, ev.ID)
}
