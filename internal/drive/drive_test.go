package drive

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/andresuchdata/chicken-settlement/backend-go/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

var taipei = time.FixedZone("CST", 8*60*60)

func writeXLSX(t *testing.T, path string, rows [][]interface{}) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save xlsx: %v", err)
	}
}

func xlsxBytes(t *testing.T, rows [][]interface{}) []byte {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixture.xlsx")
	writeXLSX(t, path, rows)
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	return b
}

func septemberRange(t *testing.T) domain.DateRange {
	t.Helper()
	rng, err := domain.ParseDateRange("2025-09-16", "2025-09-30", taipei)
	if err != nil {
		t.Fatalf("range: %v", err)
	}
	return rng
}

func TestFileSource_LongFormCSV(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "sales.csv")
	content := "\ufeff日期,品項,數量,單價\n2025-09-16,雞排,3,170\n2025-09-17,雞翅,2,180\n,,,\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	reported := decimal.NewFromInt(500)
	src := NewFileSource(taipei, path)
	src.Reported = &reported

	rows, err := src.FetchRows(context.Background(), septemberRange(t))
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("want 2 rows, got %d", len(rows))
	}
	if rows[0]["日期"] != "2025-09-16" || rows[0]["品項"] != "雞排" {
		t.Fatalf("header BOM not stripped or row wrong: %v", rows[0])
	}

	got, err := src.FetchReportedRevenue(context.Background(), septemberRange(t))
	if err != nil || !got.Equal(reported) {
		t.Fatalf("reported want=%s got=%s err=%v", reported, got, err)
	}
}

func TestFileSource_FormXLSX(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "form.xlsx")
	writeXLSX(t, path, [][]interface{}{
		{"時間戳記", "日期", "營業總額", "炸物的訂購 [雞排]", "炸物的訂購 [雞翅 *3]"},
		{"2025/9/16 上午 10:00:00", "2025/9/16", "800", "2份", ""},
		{"2025/9/16 下午 10:00:00", "2025/9/16", "1000", "3份", "1"},
		{"2025/9/18 下午 9:00:00", "2025/9/18", "600", "", "2"},
	})

	src := NewFileSource(taipei, path)
	rows, err := src.FetchRows(context.Background(), septemberRange(t))
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("want 3 item rows, got %d: %v", len(rows), rows)
	}
	reported, err := src.FetchReportedRevenue(context.Background(), septemberRange(t))
	if err != nil {
		t.Fatalf("reported: %v", err)
	}
	if !reported.Equal(decimal.NewFromInt(1600)) {
		t.Fatalf("reported want=1600 got=%s", reported)
	}
}

func TestFileSource_Errors(t *testing.T) {
	t.Parallel()

	if _, err := NewFileSource(taipei).FetchRows(context.Background(), septemberRange(t)); err == nil {
		t.Fatalf("expected error without files")
	}
	if _, err := NewFileSource(taipei, "sales.txt").FetchRows(context.Background(), septemberRange(t)); err == nil {
		t.Fatalf("expected error for unsupported type")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewFileSource(taipei, "a.csv").FetchRows(ctx, septemberRange(t)); err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

type fakeFiles struct {
	files   []*File
	content map[string][]byte
}

func (f *fakeFiles) ListFiles(context.Context, string) ([]*File, error) {
	return f.files, nil
}

func (f *fakeFiles) DownloadFile(_ context.Context, id string, w io.Writer) error {
	b, ok := f.content[id]
	if !ok {
		return fmt.Errorf("no file %s", id)
	}
	_, err := io.Copy(w, bytes.NewReader(b))
	return err
}

func TestDownloader_DownloadFolder(t *testing.T) {
	t.Parallel()

	files := &fakeFiles{
		files: []*File{
			{ID: "1", Name: "sales.csv"},
			{ID: "2", Name: "form.xlsx"},
			{ID: "3", Name: "photo.jpg"},
		},
		content: map[string][]byte{
			"1": []byte("日期,品項,數量,單價\n2025-09-16,雞排,1,170\n"),
			"2": xlsxBytes(t, [][]interface{}{{"日期", "品項", "數量", "單價"}, {"2025-09-17", "雞塊", "2", "120"}}),
		},
	}

	dir := t.TempDir()
	paths, err := NewDownloader(files).DownloadFolder(context.Background(), DownloadOptions{DownloadDir: dir})
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("want 2 paths, got %v", paths)
	}
	if filepath.Ext(paths[1]) != ".csv" {
		t.Fatalf("xlsx should be converted to csv, got %s", paths[1])
	}
	if _, err := os.Stat(filepath.Join(dir, "form.xlsx")); !os.IsNotExist(err) {
		t.Fatalf("downloaded workbook should be removed")
	}

	rows, err := NewFileSource(taipei, paths...).FetchRows(context.Background(), septemberRange(t))
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(rows) != 2 || rows[1]["品項"] != "雞塊" {
		t.Fatalf("unexpected rows: %v", rows)
	}
}

func TestDownloader_RequiresDir(t *testing.T) {
	t.Parallel()

	if _, err := NewDownloader(&fakeFiles{}).DownloadFolder(context.Background(), DownloadOptions{}); err == nil {
		t.Fatalf("expected error without download dir")
	}
}
