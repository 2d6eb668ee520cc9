package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// WellnessEntry is the daily wellness check-in payload. The wire field
// names are the backend's Spanish originals and must not be renamed.
type WellnessEntry struct {
	SleepQuality int    `json:"calidadSueno"`
	MusclePain   int    `json:"dolorMuscular"`
	Fatigue      int    `json:"fatiga"`
	Stress       int    `json:"estres"`
	Notes        string `json:"notas,omitempty"`
	Date         string `json:"fecha"` // YYYY-MM-DD
}

// WellnessRecord is a stored entry with backend bookkeeping
type WellnessRecord struct {
	ID        string `json:"_id"`
	UserID    string `json:"userId"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
	WellnessEntry
}

// AthleteSummary is a roster entry visible to health team and trainers
type AthleteSummary struct {
	ID             string `json:"_id"`
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	SecondLastName string `json:"secondLastName,omitempty"`
	RUT            string `json:"rut"`
	Email          string `json:"email"`
}

// SubmitWellness posts today's check-in. One entry per user per day is
// enforced server-side; a duplicate comes back as a 4xx with the reason
// in the body.
func (c *Client) SubmitWellness(ctx context.Context, entry *WellnessEntry) (*WellnessRecord, error) {
	body, err := c.do(ctx, http.MethodPost, "/wellness", nil, entry)
	if err != nil {
		return nil, err
	}
	record, err := decodeObject[WellnessRecord](body)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// MyWellnessRecords pages through the caller's own check-in history,
// newest first
func (c *Client) MyWellnessRecords(ctx context.Context, limit, offset int) ([]WellnessRecord, error) {
	return c.wellnessRecords(ctx, "/wellness/me", limit, offset)
}

// WellnessRecords pages through another user's history. The backend
// rejects callers without health-team or trainer access.
func (c *Client) WellnessRecords(ctx context.Context, userID string, limit, offset int) ([]WellnessRecord, error) {
	return c.wellnessRecords(ctx, "/wellness/"+url.PathEscape(userID), limit, offset)
}

func (c *Client) wellnessRecords(ctx context.Context, path string, limit, offset int) ([]WellnessRecord, error) {
	if limit <= 0 {
		limit = 30
	}
	if offset < 0 {
		offset = 0
	}
	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))
	query.Set("offset", strconv.Itoa(offset))

	body, err := c.do(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return nil, err
	}
	return decodeList[WellnessRecord](body)
}

// Athletes lists the athletes visible to the caller
func (c *Client) Athletes(ctx context.Context) ([]AthleteSummary, error) {
	body, err := c.do(ctx, http.MethodGet, "/athletes", nil, nil)
	if err != nil {
		return nil, err
	}
	return decodeList[AthleteSummary](body)
}

// AthleteDashboard fetches the aggregated dashboard for one athlete. The
// shape is backend-driven and rendered as-is, so it stays raw here.
func (c *Client) AthleteDashboard(ctx context.Context, athleteID string) ([]byte, error) {
	return c.do(ctx, http.MethodGet, "/dashboard/"+url.PathEscape(athleteID)+"/athlete", nil, nil)
}
