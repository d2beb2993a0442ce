package main

import (
	"fmt"
	"strings"

	"github.com/andresuchdata/chicken-settlement/backend-go/internal/app"
	"github.com/andresuchdata/chicken-settlement/backend-go/internal/config"
	"github.com/andresuchdata/chicken-settlement/backend-go/internal/pricebook"
	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v2"
)

func pricesCommand() *cli.Command {
	return &cli.Command{
		Name:  "prices",
		Usage: "Show or edit the price book",
		Subcommands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Print the price book",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "sheet",
						Usage: "Include overrides from the settings sheet",
					},
				},
				Action: showPrices,
			},
			{
				Name:      "set",
				Usage:     "Set the cost and price of an item",
				ArgsUsage: "<item>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "cost", Usage: "Purchase cost per unit", Required: true},
					&cli.StringFlag{Name: "price", Usage: "Selling price per unit", Required: true},
				},
				Action: setPrice,
			},
		},
	}
}

func showPrices(c *cli.Context) error {
	cfg := config.Load()
	book := app.LoadPriceBook(cfg)

	if c.Bool("sheet") {
		src, err := app.NewSheetsSource(c.Context, cfg)
		if err != nil {
			return err
		}
		sheetBook, err := src.Prices(c.Context)
		if err != nil {
			return err
		}
		book = book.Merge(sheetBook)
	}

	out := c.App.Writer
	fmt.Fprintf(out, "%-8s %8s %8s\n", "品項", "成本", "售價")
	for _, name := range book.Names() {
		p := book[name]
		cost := p.Cost.String()
		if p.PriceOnly {
			cost = "-"
		}
		fmt.Fprintf(out, "%-8s %8s %8s\n", name, cost, p.Price.String())
	}
	return nil
}

func setPrice(c *cli.Context) error {
	item := strings.TrimSpace(c.Args().First())
	if item == "" {
		return fmt.Errorf("item name is required")
	}

	cost, err := parseMoney("cost", c.String("cost"))
	if err != nil {
		return err
	}
	price, err := parseMoney("price", c.String("price"))
	if err != nil {
		return err
	}

	cfg := config.Load()
	book := app.LoadPriceBook(cfg)
	book.Set(item, cost, price)
	if err := pricebook.SaveFile(cfg.App.PriceBookFile, book); err != nil {
		return err
	}

	fmt.Fprintf(c.App.Writer, "%s：成本 %s，售價 %s\n", item, cost, price)
	return nil
}

func parseMoney(name, raw string) (decimal.Decimal, error) {
	v, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid --%s %q: %w", name, raw, err)
	}
	if v.IsNegative() {
		return decimal.Zero, fmt.Errorf("--%s must not be negative", name)
	}
	return v, nil
}
