package client

import (
	"context"
	"net/url"
	"strconv"

	"github.com/google/uuid"

	"github.com/turtacn/MarketScope-Intelligence/pkg/errors"
)

// ReportsClient reads stored reports.
type ReportsClient struct {
	client *Client
}

// ListOptions filters and pages List.  Zero values are omitted.
type ListOptions struct {
	Industry string
	Location string
	Offset   int
	Limit    int
}

func (o ListOptions) values() url.Values {
	v := url.Values{}
	if o.Industry != "" {
		v.Set("industry", o.Industry)
	}
	if o.Location != "" {
		v.Set("location", o.Location)
	}
	if o.Offset > 0 {
		v.Set("offset", strconv.Itoa(o.Offset))
	}
	if o.Limit > 0 {
		v.Set("limit", strconv.Itoa(o.Limit))
	}
	return v
}

func (r *ReportsClient) Get(ctx context.Context, id string) (*Report, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	var rep Report
	if err := r.client.get(ctx, "/reports/"+id, nil, &rep); err != nil {
		return nil, err
	}
	return &rep, nil
}

// List returns report summaries, newest first.
func (r *ReportsClient) List(ctx context.Context, opts ListOptions) (*ReportList, error) {
	var list ReportList
	if err := r.client.get(ctx, "/reports", opts.values(), &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// DownloadURL returns a presigned link to the exported report document.
func (r *ReportsClient) DownloadURL(ctx context.Context, id string) (*DownloadLink, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	var link DownloadLink
	if err := r.client.get(ctx, "/reports/"+id+"/download", nil, &link); err != nil {
		return nil, err
	}
	return &link, nil
}

func validateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return errors.New(errors.ErrCodeValidation, "report id must be a uuid").WithDetail(id)
	}
	return nil
}

//Personal.AI order the ending
