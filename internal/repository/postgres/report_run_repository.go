package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/andresuchdata/chicken-settlement/backend-go/internal/domain"
	"github.com/andresuchdata/chicken-settlement/backend-go/internal/repository"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

const defaultRunLimit = 20

type reportRunRepository struct {
	db *DB
}

func NewReportRunRepository(db *DB) repository.ReportRunRepository {
	return &reportRunRepository{db: db}
}

func (r *reportRunRepository) SaveRun(ctx context.Context, run *domain.ReportRun) (int64, error) {
	var id int64
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		query := `
			INSERT INTO report_runs (
				source, start_date, end_date, total_quantity, total_sales,
				reported_revenue, revenue_ratio, cost_basis, profit,
				skipped_rows, artifact_url, generated_at
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			RETURNING id
		`
		if err := tx.QueryRowContext(ctx, query,
			run.Source,
			run.StartDate,
			run.EndDate,
			run.TotalQuantity,
			run.TotalSales,
			run.ReportedRevenue,
			run.RevenueRatio,
			run.CostBasis,
			run.Profit,
			run.SkippedRows,
			run.ArtifactURL,
			run.GeneratedAt,
		).Scan(&id); err != nil {
			return fmt.Errorf("insert report run: %w", err)
		}

		for _, c := range run.Categories {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO report_run_categories (run_id, category, quantity, revenue) VALUES ($1, $2, $3, $4)`,
				id, string(c.Category), c.TotalQuantity, c.TotalRevenue,
			); err != nil {
				return fmt.Errorf("insert category %s: %w", c.Category, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	run.ID = id
	return id, nil
}

func (r *reportRunRepository) SetArtifactURL(ctx context.Context, id int64, url string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE report_runs SET artifact_url = $1 WHERE id = $2`, url, id)
	if err != nil {
		return fmt.Errorf("update artifact url: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return repository.ErrRunNotFound
	}
	return nil
}

func (r *reportRunRepository) ListRuns(ctx context.Context, filter repository.RunFilter) ([]domain.ReportRun, error) {
	query, args := buildRunListQuery(filter)

	var runs []domain.ReportRun
	if err := sqlx.SelectContext(ctx, r.db, &runs, query, args...); err != nil {
		return nil, fmt.Errorf("list report runs: %w", err)
	}
	return runs, nil
}

func (r *reportRunRepository) GetRun(ctx context.Context, id int64) (*domain.ReportRun, error) {
	var run domain.ReportRun
	err := sqlx.GetContext(ctx, r.db, &run, `SELECT `+runColumns+` FROM report_runs WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get report run %d: %w", id, err)
	}

	var rows []struct {
		Category string          `db:"category"`
		Quantity int64           `db:"quantity"`
		Revenue  decimal.Decimal `db:"revenue"`
	}
	if err := sqlx.SelectContext(ctx, r.db, &rows,
		`SELECT category, quantity, revenue FROM report_run_categories WHERE run_id = $1`, id,
	); err != nil {
		return nil, fmt.Errorf("get report run categories %d: %w", id, err)
	}

	// Stored order is arbitrary; restore report order.
	run.Categories = make([]domain.CategoryAggregate, 0, len(rows))
	for _, known := range domain.Categories() {
		for _, row := range rows {
			if row.Category == string(known) {
				run.Categories = append(run.Categories, domain.CategoryAggregate{
					Category:      known,
					TotalQuantity: row.Quantity,
					TotalRevenue:  row.Revenue,
				})
			}
		}
	}
	return &run, nil
}

const runColumns = `id, source, start_date, end_date, total_quantity, total_sales,
	reported_revenue, revenue_ratio, cost_basis, profit, skipped_rows,
	artifact_url, generated_at, created_at`

func buildRunListQuery(filter repository.RunFilter) (string, []interface{}) {
	var (
		clauses []string
		args    []interface{}
	)
	idx := 1

	if filter.Source != "" {
		clauses = append(clauses, fmt.Sprintf("source = $%d", idx))
		args = append(args, filter.Source)
		idx++
	}
	if filter.From != "" {
		clauses = append(clauses, fmt.Sprintf("end_date >= $%d::date", idx))
		args = append(args, filter.From)
		idx++
	}
	if filter.To != "" {
		clauses = append(clauses, fmt.Sprintf("start_date <= $%d::date", idx))
		args = append(args, filter.To)
		idx++
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultRunLimit
	}

	var b strings.Builder
	b.WriteString("SELECT " + runColumns + " FROM report_runs")
	if len(clauses) > 0 {
		b.WriteString(" WHERE " + strings.Join(clauses, " AND "))
	}
	fmt.Fprintf(&b, " ORDER BY created_at DESC, id DESC LIMIT $%d", idx)
	args = append(args, limit)

	return b.String(), args
}
