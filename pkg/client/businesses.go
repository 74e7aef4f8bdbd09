package client

import (
	"context"
	"net/url"
	"strconv"
)

// BusinessesClient searches businesses across all indexed reports.
type BusinessesClient struct {
	client *Client
}

// Search returns businesses matching q, best leads first.
func (b *BusinessesClient) Search(ctx context.Context, q SearchQuery) (*SearchResult, error) {
	v := url.Values{}
	if q.Text != "" {
		v.Set("q", q.Text)
	}
	if q.Industry != "" {
		v.Set("industry", q.Industry)
	}
	if q.Location != "" {
		v.Set("location", q.Location)
	}
	if q.MinLeadScore > 0 {
		v.Set("min_lead_score", strconv.FormatFloat(q.MinLeadScore, 'f', -1, 64))
	}
	if q.Offset > 0 {
		v.Set("offset", strconv.Itoa(q.Offset))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}

	var res SearchResult
	if err := b.client.get(ctx, "/businesses/search", v, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

//Personal.AI order the ending
