package main

import (
	"fmt"

	"github.com/andresuchdata/chicken-settlement/backend-go/internal/domain"
	"github.com/andresuchdata/chicken-settlement/backend-go/internal/repository"
	"github.com/urfave/cli/v2"
)

func historyCommand() *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "List recorded report runs",
		Flags: []cli.Flag{
			newDBURLFlag(true),
			&cli.StringFlag{Name: "source", Usage: "Only runs from this source (sheets, files)"},
			&cli.StringFlag{Name: "from", Usage: "Runs overlapping days on or after this date"},
			&cli.StringFlag{Name: "to", Usage: "Runs overlapping days on or before this date"},
			&cli.IntFlag{Name: "limit", Usage: "Maximum runs to list", Value: 20},
		},
		Before: initDB,
		After:  closeDB,
		Action: listHistory,
	}
}

func listHistory(c *cli.Context) error {
	runs, err := runRepository(c).ListRuns(c.Context, repository.RunFilter{
		Source: c.String("source"),
		From:   c.String("from"),
		To:     c.String("to"),
		Limit:  c.Int("limit"),
	})
	if err != nil {
		return err
	}

	out := c.App.Writer
	if len(runs) == 0 {
		fmt.Fprintln(out, "no report runs recorded")
		return nil
	}

	fmt.Fprintf(out, "%-5s %-7s %-23s %10s %10s %7s %10s\n", "ID", "SOURCE", "RANGE", "SALES", "REPORTED", "RATIO", "PROFIT")
	for _, run := range runs {
		ratio := "N/A"
		if run.RevenueRatio.Valid {
			ratio = run.RevenueRatio.Decimal.StringFixed(1) + "%"
		}
		fmt.Fprintf(out, "%-5d %-7s %-23s %10s %10s %7s %10s\n",
			run.ID,
			run.Source,
			run.StartDate.Format(domain.DateLayout)+".."+run.EndDate.Format(domain.DateLayout),
			run.TotalSales.StringFixed(0),
			run.ReportedRevenue.StringFixed(0),
			ratio,
			run.Profit.StringFixed(0),
		)
	}
	return nil
}
