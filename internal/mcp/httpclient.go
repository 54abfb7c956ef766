package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/claude/liftlog/internal/analytics"
	"github.com/claude/liftlog/internal/models"
)

// HTTPClient implements DataSource by calling the liftlog REST API of a
// running `liftlog serve`.
type HTTPClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

var _ DataSource = (*HTTPClient)(nil)

// errNotFound marks a 404 response.
var errNotFound = errors.New("not found")

// NewHTTPClient creates an HTTPClient targeting baseURL. apiKey is sent as
// X-API-Key when set.
func NewHTTPClient(baseURL, apiKey string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPClient) get(ctx context.Context, path string, params url.Values, out any) error {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("httpclient: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("httpclient: read body: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("httpclient: %s: %w", path, errNotFound)
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, body)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("httpclient: decode %s: %w", path, err)
	}
	return nil
}

func timeParams(start, end time.Time) url.Values {
	v := url.Values{}
	v.Set("start", start.Format(time.RFC3339))
	v.Set("end", end.Format(time.RFC3339))
	return v
}

func (c *HTTPClient) Stats(ctx context.Context) (*analytics.Stats, error) {
	var stats analytics.Stats
	if err := c.get(ctx, "/api/v1/analytics/stats", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (c *HTTPClient) Exercises(ctx context.Context) ([]models.Exercise, error) {
	var list []models.Exercise
	if err := c.get(ctx, "/api/v1/exercises", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *HTTPClient) PersonalRecords(ctx context.Context, exerciseID string) ([]analytics.PersonalRecord, error) {
	var records []analytics.PersonalRecord
	params := url.Values{"exercise": {exerciseID}}
	if err := c.get(ctx, "/api/v1/analytics/records", params, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (c *HTTPClient) ProgressTrend(ctx context.Context, exerciseID string) ([]analytics.TrendPoint, error) {
	var points []analytics.TrendPoint
	params := url.Values{"exercise": {exerciseID}}
	if err := c.get(ctx, "/api/v1/analytics/trend", params, &points); err != nil {
		return nil, err
	}
	return points, nil
}

func (c *HTTPClient) MuscleGroupVolume(ctx context.Context, start, end time.Time) (*analytics.MuscleGroupReport, error) {
	var report analytics.MuscleGroupReport
	if err := c.get(ctx, "/api/v1/analytics/muscle-groups", timeParams(start, end), &report); err != nil {
		return nil, err
	}
	return &report, nil
}

func (c *HTTPClient) Workouts(ctx context.Context, start, end time.Time) ([]models.Workout, error) {
	var list []models.Workout
	if err := c.get(ctx, "/api/v1/workouts", timeParams(start, end), &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *HTTPClient) RecentWorkouts(ctx context.Context, limit int) ([]models.Workout, error) {
	var list []models.Workout
	params := url.Values{"limit": {strconv.Itoa(limit)}}
	if err := c.get(ctx, "/api/v1/workouts", params, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *HTTPClient) ActiveMesocycle(ctx context.Context) (*models.Mesocycle, error) {
	var m models.Mesocycle
	if err := c.get(ctx, "/api/v1/mesocycles/active", nil, &m); err != nil {
		if errors.Is(err, errNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

func (c *HTTPClient) Profile(ctx context.Context) (*models.UserProfile, error) {
	var p models.UserProfile
	if err := c.get(ctx, "/api/v1/profile", nil, &p); err != nil {
		if errors.Is(err, errNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (c *HTTPClient) TrainingSummary(ctx context.Context, period string, start, end time.Time) ([]analytics.PeriodSummary, error) {
	var summary []analytics.PeriodSummary
	params := timeParams(start, end)
	params.Set("period", period)
	if err := c.get(ctx, "/api/v1/analytics/summary", params, &summary); err != nil {
		return nil, err
	}
	return summary, nil
}

func (c *HTTPClient) TrainingIntensity(ctx context.Context, start, end time.Time) (*analytics.IntensityReport, error) {
	var report analytics.IntensityReport
	if err := c.get(ctx, "/api/v1/analytics/intensity", timeParams(start, end), &report); err != nil {
		return nil, err
	}
	return &report, nil
}
