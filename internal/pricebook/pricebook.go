package pricebook

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/andresuchdata/chicken-settlement/backend-go/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Price is the purchase cost and selling price of one item. PriceOnly marks
// an entry read without a cost column; its Cost is not meaningful.
type Price struct {
	Cost      decimal.Decimal `json:"cost"`
	Price     decimal.Decimal `json:"price"`
	PriceOnly bool            `json:"price_only,omitempty"`
}

// Book maps product names to prices. A nil Book has no entries.
type Book map[string]Price

// Defaults mirrors the stall's standing price list.
func Defaults() Book {
	return Book{
		"雞排":  {Cost: decimal.NewFromInt(80), Price: decimal.NewFromInt(170)},
		"地瓜":  {Cost: decimal.NewFromInt(35), Price: decimal.NewFromInt(75)},
		"棒腿":  {Cost: decimal.NewFromInt(80), Price: decimal.NewFromInt(170)},
		"雞翅":  {Cost: decimal.NewFromInt(105), Price: decimal.NewFromInt(180)},
		"雞腿":  {Cost: decimal.NewFromInt(80), Price: decimal.NewFromInt(170)},
		"雞塊":  {Cost: decimal.NewFromInt(60), Price: decimal.NewFromInt(120)},
		"雞米花": {Cost: decimal.NewFromInt(50), Price: decimal.NewFromInt(100)},
		"雞柳條": {Cost: decimal.NewFromInt(70), Price: decimal.NewFromInt(140)},
	}
}

// Lookup finds the price for a product name, ignoring surrounding space.
func (b Book) Lookup(name string) (Price, bool) {
	p, ok := b[strings.TrimSpace(name)]
	return p, ok
}

// UnitPrice implements the normalizer's fallback price lookup.
func (b Book) UnitPrice(name string) (decimal.Decimal, bool) {
	p, ok := b.Lookup(name)
	if !ok {
		return decimal.Zero, false
	}
	return p.Price, true
}

// Set stores or replaces a price.
func (b Book) Set(name string, cost, price decimal.Decimal) {
	b[strings.TrimSpace(name)] = Price{Cost: cost, Price: price}
}

// SetPrice stores a selling price only. An existing cost is kept.
func (b Book) SetPrice(name string, price decimal.Decimal) {
	name = strings.TrimSpace(name)
	if cur, ok := b[name]; ok {
		cur.Price = price
		b[name] = cur
		return
	}
	b[name] = Price{Price: price, PriceOnly: true}
}

// Merge returns a copy of b overlaid with other. PriceOnly entries in other
// replace the selling price and keep b's cost.
func (b Book) Merge(other Book) Book {
	out := make(Book, len(b)+len(other))
	for k, v := range b {
		out[k] = v
	}
	for k, v := range other {
		if cur, ok := out[k]; ok && v.PriceOnly {
			cur.Price = v.Price
			out[k] = cur
			continue
		}
		out[k] = v
	}
	return out
}

// Names returns the item names in sorted order.
func (b Book) Names() []string {
	names := make([]string, 0, len(b))
	for name := range b {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CostBasis is Σ quantity × cost over records. Items without a cost
// contribute nothing and are returned in missing.
func (b Book) CostBasis(records []domain.CategorizedRecord) (total decimal.Decimal, missing []string) {
	seen := make(map[string]bool)
	total = decimal.Zero
	for _, r := range records {
		p, ok := b.Lookup(r.ProductName)
		if !ok || p.PriceOnly {
			if !seen[r.ProductName] {
				seen[r.ProductName] = true
				missing = append(missing, r.ProductName)
			}
			continue
		}
		total = total.Add(p.Cost.Mul(decimal.NewFromInt(r.Quantity)))
	}
	return total, missing
}

type fileEntry struct {
	Cost  float64 `json:"cost" mapstructure:"cost"`
	Price float64 `json:"price" mapstructure:"price"`
}

// LoadFile reads a price book from a JSON, YAML or TOML file. A missing file
// yields the defaults.
func LoadFile(path string) (Book, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Defaults(), nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read price book %s: %w", path, err)
	}

	var entries map[string]fileEntry
	if err := v.Unmarshal(&entries); err != nil {
		return nil, fmt.Errorf("decode price book %s: %w", path, err)
	}

	book := make(Book, len(entries))
	for name, e := range entries {
		book.Set(name, decimal.NewFromFloat(e.Cost), decimal.NewFromFloat(e.Price))
	}
	return book, nil
}

// SaveFile writes the book as indented JSON.
func SaveFile(path string, b Book) error {
	entries := make(map[string]fileEntry, len(b))
	for name, p := range b {
		entries[name] = fileEntry{Cost: p.Cost.InexactFloat64(), Price: p.Price.InexactFloat64()}
	}
	payload, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode price book: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create price book dir: %w", err)
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return fmt.Errorf("write price book %s: %w", path, err)
	}
	return nil
}
