package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

var salesCSV string

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "settle-test")
	if err != nil {
		panic(err)
	}

	os.Setenv("APP_REPORT_DIR", filepath.Join(dir, "reports"))
	os.Setenv("APP_PRICE_BOOK_FILE", filepath.Join(dir, "prices.json"))
	os.Setenv("SETTLEMENT_TIMEZONE", "Asia/Taipei")
	os.Unsetenv("DATABASE_URL")

	salesCSV = filepath.Join(dir, "sales.csv")
	content := "日期,品項,數量,單價\n" +
		"2025-09-16,雞排,20,20\n" +
		"2025-09-20,雞排,25,20\n" +
		"2025-09-18,雞翅,12,25\n" +
		"2025-09-22,棒腿,8,35\n" +
		"2025-09-30,雞塊,9份,20\n"
	if err := os.WriteFile(salesCSV, []byte(content), 0o644); err != nil {
		panic(err)
	}

	code := m.Run()
	os.RemoveAll(dir)
	os.Exit(code)
}

func run(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	if err := app.Run(append([]string{"settle"}, args...)); err != nil {
		t.Fatalf("settle %v: %v", args, err)
	}
	return out.String()
}

func TestReportCommand_CSV(t *testing.T) {
	out := run(t, "report",
		"--file", salesCSV,
		"--start", "2025-09-16", "--end", "2025-09-30",
		"--cost-basis", "820", "--reported", "820",
		"--format", "csv")

	if !strings.Contains(out, "雞排,45,900") {
		t.Fatalf("missing 雞排 row:\n%s", out)
	}
	if !strings.Contains(out, "合計,74,1660") {
		t.Fatalf("missing summary row:\n%s", out)
	}
}

func TestReportCommand_Text(t *testing.T) {
	out := run(t, "report",
		"--file", salesCSV,
		"--start", "2025-09-16", "--end", "2025-09-30",
		"--cost-basis", "820", "--reported", "820")

	for _, want := range []string{"營收比例：49.4%", "利潤：$840"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q:\n%s", want, out)
		}
	}
}

func TestBatchCommand(t *testing.T) {
	out := run(t, "batch",
		"--file", salesCSV,
		"--start", "2025-09-16", "--end", "2025-09-30",
		"--days", "7", "--workers", "2",
		"--cost-basis", "0", "--reported", "0")

	if !strings.Contains(out, "期數：3（失敗 0）") {
		t.Fatalf("unexpected batch summary:\n%s", out)
	}
	if !strings.Contains(out, "總銷售金額：$1660") {
		t.Fatalf("batch total missing:\n%s", out)
	}
}

func TestPricesSetAndShow(t *testing.T) {
	run(t, "prices", "set", "--cost", "40", "--price", "90", "甜不辣")

	out := run(t, "prices", "show")
	if !strings.Contains(out, "甜不辣") || !strings.Contains(out, "90") {
		t.Fatalf("price not listed:\n%s", out)
	}
}

func TestParseMoney(t *testing.T) {
	if _, err := parseMoney("cost", "-1"); err == nil {
		t.Fatalf("negative cost accepted")
	}
	if _, err := parseMoney("cost", "abc"); err == nil {
		t.Fatalf("garbage accepted")
	}
	if v, err := parseMoney("cost", " 12.5 "); err != nil || v.String() != "12.5" {
		t.Fatalf("want 12.5 got %s err=%v", v, err)
	}
}
