package sheets

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/andresuchdata/chicken-settlement/backend-go/internal/domain"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
)

var taipei = time.FixedZone("CST", 8*60*60)

func formValues() [][]interface{} {
	return [][]interface{}{
		{"時間戳記", "填表人", "日期", "營業總額", "炸物的訂購 [雞排]", "炸物的訂購 [地瓜]", "炸物的訂購 [棒腿*2]", "炸物的訂購 [雞翅 *3]"},
		{"2025/9/16 上午 11:02:00", "阿明", "2025/9/16", "1,200", "3份", "", "一份", ""},
		// a later correction for the same day wins
		{"2025/9/16 下午 9:15:30", "阿明", "2025/9/16", "1,500", "4份", "2份", "一份", ""},
		{"2025/9/17 下午 8:00:00", "小華", "2025/9/17", "900", "", "", "", "2"},
		{"2025/10/1 下午 8:00:00", "小華", "2025/10/1", "700", "1", "", "", ""},
	}
}

type fakeReader struct {
	values map[string][][]interface{}
	err    error
	reads  int
}

func (f *fakeReader) ReadRange(_ context.Context, a1 string) ([][]interface{}, error) {
	f.reads++
	if f.err != nil {
		return nil, f.err
	}
	return f.values[a1], nil
}

func newFakeSource() (*Source, *fakeReader) {
	reader := &fakeReader{values: map[string][][]interface{}{
		A1("表單回應 1", "A1:Z1000"): formValues(),
		A1("設定", "A1:Z100"): {
			{"品項", "品項", "成本", "售價"},
			{"雞排", "雞排", "85", "175"},
			{"地瓜", "地瓜", "n/a", "80"},
		},
	}}
	return NewSource(reader, SourceConfig{
		MainSheet:     "表單回應 1",
		DataRange:     "A1:Z1000",
		SettingsSheet: "設定",
		SettingsRange: "A1:Z100",
		Location:      taipei,
	}), reader
}

func septemberRange(t *testing.T) domain.DateRange {
	t.Helper()
	rng, err := domain.ParseDateRange("2025-09-16", "2025-09-30", taipei)
	if err != nil {
		t.Fatalf("range: %v", err)
	}
	return rng
}

func TestItemName(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"炸物的訂購 [雞排]":    "雞排",
		"炸物的訂購 [棒腿*2]":  "棒腿",
		"炸物的訂購 [雞翅 *3]": "雞翅",
		"炸物的訂購_地瓜":      "地瓜",
	}
	for header, want := range cases {
		got, ok := ItemName(header)
		if !ok || got != want {
			t.Fatalf("%q want=%s got=%s ok=%v", header, want, got, ok)
		}
	}
	for _, header := range []string{"日期", "營業總額", "炸物的訂購", ""} {
		if _, ok := ItemName(header); ok {
			t.Fatalf("%q should not be an item column", header)
		}
	}
}

func TestParseSubmittedAt(t *testing.T) {
	t.Parallel()

	am, err := ParseSubmittedAt("2025/9/16 上午 11:02:00", taipei)
	if err != nil {
		t.Fatalf("parse am: %v", err)
	}
	pm, err := ParseSubmittedAt("2025/9/16 下午 1:02:00", taipei)
	if err != nil {
		t.Fatalf("parse pm: %v", err)
	}
	if am.Hour() != 11 || pm.Hour() != 13 {
		t.Fatalf("hours unexpected: am=%d pm=%d", am.Hour(), pm.Hour())
	}
	if _, err := ParseSubmittedAt("yesterday", taipei); err == nil {
		t.Fatalf("expected error for garbage")
	}
}

func TestLatestPerDate(t *testing.T) {
	t.Parallel()

	rows := LatestPerDate(RowsFromValues(formValues()), taipei)
	if len(rows) != 3 {
		t.Fatalf("want 3 days, got %d", len(rows))
	}
	if rows[0][ColumnRevenue] != "1,500" {
		t.Fatalf("later submission should win, got %v", rows[0])
	}
}

func TestLatestPerDate_NoTimestamps(t *testing.T) {
	t.Parallel()

	rows := []domain.RawRow{{"日期": "2025/9/16"}, {"日期": "2025/9/16"}}
	if got := LatestPerDate(rows, taipei); len(got) != 2 {
		t.Fatalf("rows without timestamps must pass through, got %d", len(got))
	}
}

func TestLatestPerDate_CountsUnreadableTimestamps(t *testing.T) {
	t.Parallel()

	rows := []domain.RawRow{
		{"時間戳記": "2025/9/16 下午 9:15:30", "日期": "2025/9/16"},
		{"時間戳記": "昨天晚上", "日期": "2025/9/17"},
		{"時間戳記": "", "日期": "2025/9/18"},
	}
	got, dropped := latestPerDate(rows, taipei)
	if len(got) != 1 || dropped != 2 {
		t.Fatalf("want 1 kept and 2 dropped, got kept=%d dropped=%d", len(got), dropped)
	}
	if _, dropped := latestPerDate([]domain.RawRow{{"日期": "2025/9/16"}}, taipei); dropped != 0 {
		t.Fatalf("pass-through must not report drops, got %d", dropped)
	}
}

func TestExpandForm(t *testing.T) {
	t.Parallel()

	rows := ExpandForm(LatestPerDate(RowsFromValues(formValues()), taipei))
	got := map[string]string{}
	for _, r := range rows {
		got[r[ColumnDate]+"/"+r[ColumnProduct]] = r[ColumnQuantity]
	}
	want := map[string]string{
		"2025/9/16/雞排":  "4份",
		"2025/9/16/地瓜":  "2份",
		"2025/9/16/棒腿":  "一份",
		"2025/9/17/雞翅":  "2",
		"2025/10/1/雞排": "1",
	}
	if len(got) != len(want) {
		t.Fatalf("want %d rows, got %v", len(want), got)
	}
	for k, v := range want {
		if got[k] != v {
			t.Fatalf("%s want=%s got=%s", k, v, got[k])
		}
	}
}

func TestReportedRevenue(t *testing.T) {
	t.Parallel()

	rows := LatestPerDate(RowsFromValues(formValues()), taipei)
	got := ReportedRevenue(rows, septemberRange(t), taipei)
	if !got.Equal(decimal.NewFromInt(2400)) {
		t.Fatalf("reported want=2400 got=%s", got)
	}
}

func TestParseSettings(t *testing.T) {
	t.Parallel()

	book := ParseSettings([][]interface{}{
		{"品項", "品項", "成本", "售價"},
		{"雞排", "雞排", "85", "175"},
		{"雞塊", "雞塊", "60", "$120"},
		{"壞資料", "壞資料", "x", "y"},
	})
	if len(book) != 2 {
		t.Fatalf("want 2 entries, got %v", book.Names())
	}
	if p := book["雞塊"]; !p.Price.Equal(decimal.NewFromInt(120)) || !p.Cost.Equal(decimal.NewFromInt(60)) {
		t.Fatalf("nugget unexpected: %+v", p)
	}

	short := ParseSettings([][]interface{}{{"品項", "價格"}, {"雞排", "70"}})
	if p := short["雞排"]; !p.Price.Equal(decimal.NewFromInt(70)) || !p.PriceOnly {
		t.Fatalf("short form unexpected: %+v", p)
	}
}

func TestSource_FetchAndPrices(t *testing.T) {
	t.Parallel()

	src, _ := newFakeSource()
	rng := septemberRange(t)

	rows, err := src.FetchRows(context.Background(), rng)
	if err != nil {
		t.Fatalf("fetch rows: %v", err)
	}
	if len(rows) != 5 {
		t.Fatalf("want 5 item rows, got %d", len(rows))
	}
	reported, err := src.FetchReportedRevenue(context.Background(), rng)
	if err != nil {
		t.Fatalf("reported: %v", err)
	}
	if !reported.Equal(decimal.NewFromInt(2400)) {
		t.Fatalf("reported want=2400 got=%s", reported)
	}

	book, err := src.Prices(context.Background())
	if err != nil {
		t.Fatalf("prices: %v", err)
	}
	if !book["雞排"].Price.Equal(decimal.NewFromInt(175)) {
		t.Fatalf("settings override missing: %+v", book["雞排"])
	}
	if _, ok := book["地瓜"]; ok {
		t.Fatalf("unreadable settings row should be skipped: %+v", book["地瓜"])
	}
}

func TestSource_ReadError(t *testing.T) {
	t.Parallel()

	src, reader := newFakeSource()
	reader.err = errors.New("quota exceeded")
	if _, err := src.FetchRows(context.Background(), septemberRange(t)); err == nil {
		t.Fatalf("expected error")
	}
}

func TestHandler_Rows(t *testing.T) {
	t.Parallel()

	src, _ := newFakeSource()
	router := mux.NewRouter()
	NewHandler(src, taipei).RegisterRoutes(router)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sheets/rows?start=2025-09-16&end=2025-09-30", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status want=200 got=%d body=%s", rec.Code, rec.Body.String())
	}
	var body struct {
		Rows     []map[string]string `json:"rows"`
		Reported string              `json:"reported_revenue"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Rows) != 5 || body.Reported != "2400" {
		t.Fatalf("unexpected body: %+v", body)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sheets/rows?start=2025-09-30&end=2025-09-16", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("inverted range want=400 got=%d", rec.Code)
	}
}
