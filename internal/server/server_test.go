package server

import (
	"bytes"
	"encoding/json"
	"image/png"
	"io"
	"log"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"StockLens/internal/dataset"
	"StockLens/internal/model"
	"StockLens/internal/render/static"
)

const csvData = `Date,Category,Symbol,Open,High,Low,Close,Volume
2024-01-02,IT,TCS,100,106,99,105,2000
2024-01-01,IT,TCS,98,101,97,100,1000
2024-01-01,IT,INFY,50,52,49,51,500
2024-01-03,IT,TCS,105,105,94,95,3000
2024-01-01,Banking,HDFCBANK,10,11,9,10,100
`

func newTestServer(t *testing.T, multi bool) *httptest.Server {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prices.csv")
	if err := os.WriteFile(path, []byte(csvData), 0o644); err != nil {
		t.Fatal(err)
	}
	s := New(dataset.NewCache(path, dataset.Options{}), Options{
		Title:       "Test Dashboard",
		MultiSymbol: multi,
		Chart:       static.Options{Width: 400, Height: 300},
	})
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return srv
}

func getJSON(t *testing.T, url string, wantStatus int, out any) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != wantStatus {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("GET %s status = %d, want %d: %s", url, resp.StatusCode, wantStatus, body)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
}

// chartView mirrors the JSON shape of a dashboard view.
type chartView struct {
	Selection model.FilterSelection `json:"selection"`
	Chart     struct {
		Type   model.ChartType   `json:"type"`
		Series []json.RawMessage `json:"series"`
	} `json:"chart"`
	Summaries []model.Summary `json:"summaries"`
	Warning   string          `json:"warning"`
}

func TestCategoriesAndSymbols(t *testing.T) {
	srv := newTestServer(t, false)

	var cats []string
	getJSON(t, srv.URL+"/api/categories", http.StatusOK, &cats)
	if !slices.Equal(cats, []string{"IT", "Banking"}) {
		t.Errorf("categories = %v", cats)
	}

	var syms []string
	getJSON(t, srv.URL+"/api/symbols?category=IT", http.StatusOK, &syms)
	if !slices.Equal(syms, []string{"TCS", "INFY"}) {
		t.Errorf("IT symbols = %v", syms)
	}

	syms = nil
	getJSON(t, srv.URL+"/api/symbols?category=Pharma", http.StatusOK, &syms)
	if syms == nil || len(syms) != 0 {
		t.Errorf("unknown category symbols = %v, want []", syms)
	}
}

func TestChart_Line(t *testing.T) {
	srv := newTestServer(t, false)
	var v chartView
	getJSON(t, srv.URL+"/api/chart?category=IT&symbol=TCS&type=Line%20Chart", http.StatusOK, &v)
	if v.Chart.Type != model.ChartLine || len(v.Chart.Series) != 1 {
		t.Fatalf("chart = %+v", v.Chart)
	}
	var ps model.PointSeries
	if err := json.Unmarshal(v.Chart.Series[0], &ps); err != nil {
		t.Fatal(err)
	}
	var closes []float64
	for _, p := range ps.Points {
		closes = append(closes, p.Value)
	}
	if !slices.Equal(closes, []float64{100, 105, 95}) {
		t.Errorf("closes = %v", closes)
	}
	if len(v.Summaries) != 1 || v.Summaries[0].Symbol != "TCS" {
		t.Errorf("summaries = %+v", v.Summaries)
	}
}

func TestChart_Defaults(t *testing.T) {
	srv := newTestServer(t, false)
	var v chartView
	getJSON(t, srv.URL+"/api/chart", http.StatusOK, &v)
	if v.Selection.Category != "IT" || !slices.Equal(v.Selection.Symbols, []string{"TCS"}) || v.Selection.ChartType != model.ChartLine {
		t.Errorf("default selection = %+v", v.Selection)
	}
}

func TestChart_EmptySelectionIsOK(t *testing.T) {
	srv := newTestServer(t, false)
	var v chartView
	getJSON(t, srv.URL+"/api/chart?category=Banking&symbol=TCS&type=candlestick", http.StatusOK, &v)
	if len(v.Chart.Series) != 0 {
		t.Errorf("expected no series, got %d", len(v.Chart.Series))
	}
	if v.Warning == "" {
		t.Error("expected warning for symbol outside category")
	}
}

func TestChart_BadRequests(t *testing.T) {
	srv := newTestServer(t, false)
	for _, q := range []string{
		"?category=IT&symbol=TCS&type=pie",
		"?category=IT&symbol=TCS&symbol=INFY",
	} {
		var body errorBody
		getJSON(t, srv.URL+"/api/chart"+q, http.StatusBadRequest, &body)
		if body.Error == "" {
			t.Errorf("%s: empty error body", q)
		}
	}
}

func TestChart_MultiSymbol(t *testing.T) {
	srv := newTestServer(t, true)
	var v chartView
	getJSON(t, srv.URL+"/api/chart?category=IT&symbol=TCS,INFY&type=volume", http.StatusOK, &v)
	if len(v.Chart.Series) != 2 || len(v.Summaries) != 2 {
		t.Errorf("series=%d summaries=%d, want 2/2", len(v.Chart.Series), len(v.Summaries))
	}
}

func TestTable(t *testing.T) {
	srv := newTestServer(t, false)
	var rows []model.StockRecord
	getJSON(t, srv.URL+"/api/table?category=IT&symbol=TCS", http.StatusOK, &rows)
	if len(rows) != 3 || !rows[0].Date.Before(rows[1].Date) {
		t.Fatalf("rows = %+v", rows)
	}

	resp, err := http.Get(srv.URL + "/api/table?category=IT&symbol=TCS&format=html")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "<table>") || !strings.Contains(string(body), "TCS</td>") {
		t.Errorf("html table = %s", body)
	}
}

func TestChartPNG(t *testing.T) {
	srv := newTestServer(t, false)
	for _, q := range []string{"?category=IT&symbol=TCS&type=combined", "?category=IT&symbol=NOPE"} {
		resp, err := http.Get(srv.URL + "/chart.png" + q)
		if err != nil {
			t.Fatal(err)
		}
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK || resp.Header.Get("Content-Type") != "image/png" {
			t.Fatalf("%s: status %d type %q", q, resp.StatusCode, resp.Header.Get("Content-Type"))
		}
		img, err := png.Decode(bytes.NewReader(body))
		if err != nil {
			t.Fatalf("%s: decode: %v", q, err)
		}
		if img.Bounds().Dx() != 400 {
			t.Errorf("%s: width = %d, want 400", q, img.Bounds().Dx())
		}
	}
}

func TestIndexAndConfig(t *testing.T) {
	srv := newTestServer(t, false)
	resp, err := http.Get(srv.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if !strings.Contains(string(body), "<html") {
		t.Error("index page not served")
	}

	var cfg struct {
		Title      string `json:"title"`
		ChartTypes []struct {
			Value string `json:"value"`
			Label string `json:"label"`
		} `json:"chart_types"`
	}
	getJSON(t, srv.URL+"/api/config", http.StatusOK, &cfg)
	if cfg.Title != "Test Dashboard" || len(cfg.ChartTypes) != 5 || cfg.ChartTypes[0].Label != "Line Chart" {
		t.Errorf("config = %+v", cfg)
	}

	resp, err = http.Get(srv.URL + "/nope")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown path status = %d", resp.StatusCode)
	}
}

func TestDatasetLoadFailure(t *testing.T) {
	s := New(dataset.NewCache(filepath.Join(t.TempDir(), "missing.csv"), dataset.Options{}), Options{})
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()
	var body errorBody
	getJSON(t, srv.URL+"/api/categories", http.StatusInternalServerError, &body)
	if body.Error == "" {
		t.Error("expected error message")
	}
}

func TestWebsocketSelect(t *testing.T) {
	srv := newTestServer(t, false)
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var hello helloMsg
	if err := conn.ReadJSON(&hello); err != nil {
		t.Fatalf("read hello: %v", err)
	}
	if hello.Type != "hello" || hello.ID == "" || !slices.Equal(hello.Categories, []string{"IT", "Banking"}) {
		t.Errorf("hello = %+v", hello)
	}

	if err := conn.WriteJSON(inMsg{Type: "select", Category: "IT", Symbols: []string{"TCS"}, ChartType: "Candlestick"}); err != nil {
		t.Fatal(err)
	}
	var msg struct {
		Type string    `json:"type"`
		View chartView `json:"view"`
	}
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read chart: %v", err)
	}
	if msg.Type != "chart" || msg.View.Chart.Type != model.ChartCandlestick || len(msg.View.Chart.Series) != 1 {
		t.Errorf("chart msg = %+v", msg)
	}

	if err := conn.WriteJSON(inMsg{Type: "select", Category: "IT", ChartType: "pie"}); err != nil {
		t.Fatal(err)
	}
	var errMsg wsErrorMsg
	if err := conn.ReadJSON(&errMsg); err != nil {
		t.Fatalf("read error: %v", err)
	}
	if errMsg.Type != "error" || errMsg.Error == "" {
		t.Errorf("error msg = %+v", errMsg)
	}

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"subscribe"}`)); err != nil {
		t.Fatal(err)
	}
	errMsg = wsErrorMsg{}
	if err := conn.ReadJSON(&errMsg); err != nil {
		t.Fatalf("read error: %v", err)
	}
	if !strings.Contains(errMsg.Error, "unknown message type") {
		t.Errorf("error msg = %+v", errMsg)
	}
}

func TestHub_AddRemoveCounts(t *testing.T) {
	h := newHub()
	a, b := &client{id: "a"}, &client{id: "b"}
	h.add(a)
	if n := h.add(b); n != 2 {
		t.Errorf("add returned %d, want 2", n)
	}
	if n := h.remove(a); n != 1 {
		t.Errorf("remove returned %d, want 1", n)
	}
	if n := h.remove(a); n != 1 {
		t.Errorf("second remove returned %d, want 1", n)
	}
}

func TestWriteJSON_LogsEncodeError(t *testing.T) {
	var logs bytes.Buffer
	log.SetOutput(&logs)
	defer log.SetOutput(os.Stderr)

	rec := httptest.NewRecorder()
	writeJSON(rec, http.StatusOK, map[string]float64{"close": math.NaN()})
	if !strings.Contains(logs.String(), "[ERROR] encode json response") {
		t.Errorf("encode error not logged, log = %q", logs.String())
	}
}

func TestDatasetWithNaNFailsLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prices.csv")
	data := "Date,Category,Symbol,Open,High,Low,Close,Volume\n2024-01-01,IT,TCS,1,2,1,NaN,10\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	srv := httptest.NewServer(New(dataset.NewCache(path, dataset.Options{}), Options{}).Handler())
	defer srv.Close()
	var body errorBody
	getJSON(t, srv.URL+"/api/chart?category=IT&symbol=TCS", http.StatusInternalServerError, &body)
	if !strings.Contains(body.Error, "Close") {
		t.Errorf("error = %q, want it to name the Close column", body.Error)
	}
}
