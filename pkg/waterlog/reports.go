package waterlog

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// Range is an optional report window in YYYY-MM-DD; blank ends use the server defaults
type Range struct {
	Start string
	End   string
}

func (r Range) values() url.Values {
	query := url.Values{}
	if r.Start != "" {
		query.Set("start_date", r.Start)
	}
	if r.End != "" {
		query.Set("end_date", r.End)
	}
	return query
}

func (c *APIClient) KPIs(ctx context.Context, window Range) (*KPIs, error) {
	var kpis KPIs
	if err := c.do(ctx, http.MethodGet, "/api/v1/reports/kpis", window.values(), nil, &kpis); err != nil {
		return nil, err
	}
	return &kpis, nil
}

func (c *APIClient) DailyTrends(ctx context.Context, days int) ([]DailyTrend, error) {
	query := url.Values{}
	if days > 0 {
		query.Set("days", strconv.Itoa(days))
	}
	var resp struct {
		Trends []DailyTrend `json:"trends"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/reports/trends/daily", query, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Trends, nil
}

func (c *APIClient) TruckPerformance(ctx context.Context, window Range) ([]TruckPerformance, error) {
	var resp struct {
		Trucks []TruckPerformance `json:"trucks"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/reports/trucks/performance", window.values(), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Trucks, nil
}

func (c *APIClient) DriverPerformance(ctx context.Context, window Range, limit int) ([]DriverPerformance, error) {
	query := window.values()
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	var resp struct {
		Drivers []DriverPerformance `json:"drivers"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/reports/drivers/performance", query, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Drivers, nil
}

func (c *APIClient) StatusDistribution(ctx context.Context, window Range) ([]StatusCount, error) {
	var resp struct {
		Distribution []StatusCount `json:"distribution"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/reports/status/distribution", window.values(), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Distribution, nil
}

func (c *APIClient) MonthlySummary(ctx context.Context, months int) ([]MonthlySummary, error) {
	query := url.Values{}
	if months > 0 {
		query.Set("months", strconv.Itoa(months))
	}
	var resp struct {
		Monthly []MonthlySummary `json:"monthly"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/reports/monthly/summary", query, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Monthly, nil
}
