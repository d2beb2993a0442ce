package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"strings"

	"github.com/andresuchdata/chicken-settlement/backend-go/internal/config"
	"github.com/andresuchdata/chicken-settlement/backend-go/internal/settlement"
)

const (
	reportKeyPrefix = "settlement:report"
	scanBatchSize   = 100
)

// ReportKey identifies one generated report.
type ReportKey struct {
	Source    string
	Start     string
	End       string
	CostBasis string
}

type ReportCache interface {
	GetReport(ctx context.Context, key ReportKey) (*settlement.Display, bool, error)
	SetReport(ctx context.Context, key ReportKey, report *settlement.Display) error
	InvalidateAll(ctx context.Context) error
}

type redisReportCache struct {
	store *jsonStore
}

type noopReportCache struct{}

func NewReportCache(cfg config.CacheConfig) (ReportCache, error) {
	if !cfg.Enabled {
		return &noopReportCache{}, nil
	}

	store, err := newJSONStore(cfg, reportKeyPrefix)
	if err != nil {
		return nil, err
	}

	return &redisReportCache{store: store}, nil
}

func NewNoopReportCache() ReportCache {
	return &noopReportCache{}
}

func (c *redisReportCache) GetReport(ctx context.Context, key ReportKey) (*settlement.Display, bool, error) {
	var report settlement.Display
	ok, err := c.store.get(ctx, reportID(key), &report)
	if err != nil || !ok {
		return nil, false, err
	}
	return &report, true, nil
}

func (c *redisReportCache) SetReport(ctx context.Context, key ReportKey, report *settlement.Display) error {
	return c.store.set(ctx, reportID(key), report)
}

func (c *redisReportCache) InvalidateAll(ctx context.Context) error {
	return c.store.flush(ctx, scanBatchSize)
}

func (n *noopReportCache) GetReport(ctx context.Context, key ReportKey) (*settlement.Display, bool, error) {
	return nil, false, nil
}

func (n *noopReportCache) SetReport(ctx context.Context, key ReportKey, report *settlement.Display) error {
	return nil
}

func (n *noopReportCache) InvalidateAll(ctx context.Context) error {
	return nil
}

// reportID hashes the normalized key fields.
func reportID(key ReportKey) string {
	source := strings.ToLower(strings.TrimSpace(key.Source))
	if source == "" {
		source = "default"
	}
	cost := strings.TrimSpace(key.CostBasis)
	if cost == "" {
		cost = "pricebook"
	}

	raw := strings.Join([]string{
		"source=" + source,
		"start=" + key.Start,
		"end=" + key.End,
		"cost=" + cost,
	}, "|")
	hash := sha1.Sum([]byte(raw))
	return hex.EncodeToString(hash[:])
}
