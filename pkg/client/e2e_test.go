package client_test

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/MarketScope-Intelligence/internal/application/analysis"
	"github.com/turtacn/MarketScope-Intelligence/internal/domain/benchmark"
	"github.com/turtacn/MarketScope-Intelligence/internal/domain/report"
	"github.com/turtacn/MarketScope-Intelligence/internal/infrastructure/search/opensearch"
	httpserver "github.com/turtacn/MarketScope-Intelligence/internal/interfaces/http"
	"github.com/turtacn/MarketScope-Intelligence/internal/interfaces/http/handlers"
	"github.com/turtacn/MarketScope-Intelligence/internal/testutil"
	"github.com/turtacn/MarketScope-Intelligence/pkg/client"
)

// The tests in this file run the SDK against the real router and analysis
// service so that request and response shapes cannot drift apart.

type keyExporter struct{}

func (keyExporter) ExportReport(_ context.Context, r *report.MarketReport) (string, error) {
	return "reports/" + r.Industry + "/" + r.ID.String() + ".json", nil
}

type staticLinker struct{}

func (staticLinker) DownloadURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://objects.example/" + key + "?sig=abc", nil
}

type recordingSearcher struct{ got opensearch.BusinessQuery }

func (s *recordingSearcher) SearchBusinesses(_ context.Context, q opensearch.BusinessQuery) (*opensearch.BusinessSearchResult, error) {
	s.got = q
	return &opensearch.BusinessSearchResult{
		Total: 1,
		Hits: []opensearch.BusinessHit{{
			ID:       "r-0",
			Score:    2.5,
			Document: opensearch.BusinessDocument{Name: "Bolt HVAC", Industry: "hvac", LeadScore: 71.5},
		}},
	}, nil
}

type recordingSubmitter struct{ key string }

func (s *recordingSubmitter) SubmitBatch(_ context.Context, key string, _ interface{}) (string, error) {
	s.key = key
	return "evt-42", nil
}

type server struct {
	client    *client.Client
	repo      *testutil.ReportRepository
	searcher  *recordingSearcher
	submitter *recordingSubmitter
}

func newServer(t *testing.T) *server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s := &server{
		repo:      testutil.NewReportRepository(),
		searcher:  &recordingSearcher{},
		submitter: &recordingSubmitter{},
	}
	svc, err := analysis.NewService(benchmark.Defaults(), nil, testutil.NewRecordingLogger(),
		analysis.WithRepository(s.repo), analysis.WithExporter(keyExporter{}))
	require.NoError(t, err)

	router := httpserver.NewRouter(httpserver.RouterConfig{
		MarketHandler:      handlers.NewMarketHandler(svc),
		ReportHandler:      handlers.NewReportHandler(svc, staticLinker{}, 15*time.Minute),
		SearchHandler:      handlers.NewSearchHandler(s.searcher),
		ObservationHandler: handlers.NewObservationHandler(s.submitter),
		MaxBodySize:        1 << 20,
	})
	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)

	s.client, err = client.NewClient(ts.URL, client.WithRetryMax(0))
	require.NoError(t, err)
	return s
}

func austin() client.MarketRequest {
	return client.MarketRequest{
		Location: "Austin, TX",
		Industry: "HVAC",
		Region:   "tx",
		Observations: []client.Observation{
			{SourceID: "gmaps", Name: "Bolt HVAC", Address: "1 Main St", RevenueEstimate: client.Float(900000), Rating: client.Float(4.6), ReviewCount: client.Int(120)},
			{SourceID: "yelp", Name: "BOLT HVAC", Address: "1 main st", Rating: client.Float(4.4)},
			{SourceID: "gmaps", Name: "Comfort Pros", Address: "7 Elm Ave", RevenueEstimate: client.Float(300000), OwnerAgeEstimate: client.Int(66)},
			{SourceID: "gmaps", Name: "   "},
		},
	}
}

func TestE2E_AnalyzeThenFetch(t *testing.T) {
	s := newServer(t)
	ctx := context.Background()

	rep, err := s.client.Markets().Analyze(ctx, austin())
	require.NoError(t, err)
	assert.Equal(t, "Austin, TX", rep.Location)
	assert.Equal(t, "hvac", rep.Industry)
	assert.Equal(t, "TX", rep.Region)
	assert.Equal(t, 2, rep.Metrics.BusinessCount)
	assert.Len(t, rep.Businesses, 2)
	assert.Equal(t, 4, rep.Merge.Input)
	assert.Equal(t, 1, rep.Merge.Skipped)
	assert.Equal(t, 1, rep.Merge.Duplicates)
	require.Len(t, rep.Skipped, 1)
	assert.Equal(t, 3, rep.Skipped[0].Index)
	assert.NotEmpty(t, rep.ExportKey)
	assert.Equal(t, 1, s.repo.Len())
	for _, b := range rep.Businesses {
		assert.NotEmpty(t, b.ID)
		assert.NotEmpty(t, b.Identity.Fingerprint)
		assert.Contains(t, b.LeadFactors, "score")
	}

	got, err := s.client.Reports().Get(ctx, rep.ID)
	require.NoError(t, err)
	assert.Equal(t, rep.ID, got.ID)
	assert.Equal(t, rep.Metrics, got.Metrics)

	list, err := s.client.Reports().List(ctx, client.ListOptions{Industry: "hvac", Limit: 5})
	require.NoError(t, err)
	require.Len(t, list.Reports, 1)
	assert.Equal(t, rep.ID, list.Reports[0].ID)
	assert.Equal(t, 5, list.Limit)

	link, err := s.client.Reports().DownloadURL(ctx, rep.ID)
	require.NoError(t, err)
	assert.Equal(t, rep.ExportKey, link.Key)
	assert.Contains(t, link.URL, rep.ExportKey)
	assert.True(t, link.ExpiresAt.After(time.Now()))
}

func TestE2E_ReportNotFound(t *testing.T) {
	s := newServer(t)

	_, err := s.client.Reports().Get(context.Background(), "7b0c1c1e-8d5e-4c1c-9f0e-2c7b9a1d3e4f")
	require.Error(t, err)
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsNotFound())
	assert.Equal(t, "MKT_004", apiErr.Code)
	assert.NotEmpty(t, apiErr.RequestID)
}

func TestE2E_AnalyzeRejectsBadRegion(t *testing.T) {
	s := newServer(t)
	req := austin()
	req.Region = "Texas"

	_, err := s.client.Markets().Analyze(context.Background(), req)
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 400, apiErr.StatusCode)
	assert.Equal(t, "MKT_001", apiErr.Code)
}

func TestE2E_Compare(t *testing.T) {
	s := newServer(t)
	denver := austin()
	denver.Location = "Denver, CO"
	denver.Region = "CO"
	broken := client.MarketRequest{Location: " ", Industry: "hvac"}

	cmp, err := s.client.Markets().Compare(context.Background(), []client.MarketRequest{austin(), broken, denver})
	require.NoError(t, err)
	assert.True(t, cmp.Partial)
	require.Len(t, cmp.Reports, 3)
	assert.Nil(t, cmp.Reports[1])
	require.Len(t, cmp.Failed, 1)
	assert.Equal(t, 1, cmp.Failed[0].Index)
	assert.Equal(t, "MKT_001", cmp.Failed[0].Code)

	require.Len(t, cmp.Opportunities, 2)
	assert.Equal(t, 1, cmp.Opportunities[0].Rank)
	assert.Equal(t, 2, cmp.Opportunities[1].Rank)
	assert.GreaterOrEqual(t, cmp.Opportunities[0].RollUpScore, cmp.Opportunities[1].RollUpScore)
	assert.NotEmpty(t, cmp.Opportunities[0].ConsolidationTimeline)
}

func TestE2E_Merge(t *testing.T) {
	s := newServer(t)

	res, err := s.client.Markets().Merge(context.Background(), austin().Observations)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Summary.Records)
	assert.Equal(t, 1, res.Summary.Duplicates)
	assert.Len(t, res.Records, 2)
	assert.Len(t, res.Skipped, 1)
}

func TestE2E_Benchmarks(t *testing.T) {
	s := newServer(t)
	ctx := context.Background()

	table, err := s.client.Markets().Benchmarks(ctx)
	require.NoError(t, err)
	assert.Equal(t, "retail", table.DefaultIndustry)
	assert.NotEmpty(t, table.Industries)
	assert.NotEmpty(t, table.Regions)

	hvac, err := s.client.Markets().Benchmark(ctx, "hvac")
	require.NoError(t, err)
	assert.Equal(t, "hvac", hvac.IndustryKey)
	assert.Equal(t, 850000.0, hvac.AvgRevenue)

	_, err = s.client.Markets().Benchmark(ctx, "space_mining")
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsNotFound())
}

func TestE2E_SearchAndBatch(t *testing.T) {
	s := newServer(t)
	ctx := context.Background()

	res, err := s.client.Businesses().Search(ctx, client.SearchQuery{Text: "bolt", Industry: "hvac", MinLeadScore: 50, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, res.Total)
	require.Len(t, res.Hits, 1)
	assert.Equal(t, "Bolt HVAC", res.Hits[0].Document.Name)
	assert.Equal(t, opensearch.BusinessQuery{Text: "bolt", Industry: "hvac", MinLeadScore: 50, Size: 10}, s.searcher.got)

	ack, err := s.client.Markets().SubmitBatch(ctx, austin())
	require.NoError(t, err)
	assert.Equal(t, "evt-42", ack.EventID)
	assert.Equal(t, s.submitter.key, ack.Cohort)
	assert.NotEmpty(t, ack.Cohort)
}

//Personal.AI order the ending
