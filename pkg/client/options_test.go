package client

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptions(t *testing.T) {
	hc := &http.Client{Timeout: time.Second}
	logger := &recordingLogger{}

	c, err := NewClient("http://localhost",
		WithHTTPClient(hc),
		WithLogger(logger),
		WithRetryMax(7),
		WithUserAgent("scout/1"),
		WithHeader("X-Team", "acq"),
		WithHeader("X-Team", "ops"),
	)
	require.NoError(t, err)
	assert.Same(t, hc, c.httpClient)
	assert.Same(t, logger, c.logger)
	assert.Equal(t, 7, c.retryMax)
	assert.Equal(t, "scout/1", c.userAgent)
	assert.Equal(t, []string{"acq", "ops"}, c.headers.Values("X-Team"))
}

func TestOptions_IgnoreInvalidValues(t *testing.T) {
	c, err := NewClient("http://localhost",
		WithHTTPClient(nil),
		WithLogger(nil),
		WithRetryMax(-1),
		WithUserAgent(""),
		WithRequestIDFunc(nil),
	)
	require.NoError(t, err)
	assert.NotNil(t, c.httpClient)
	assert.NotNil(t, c.logger)
	assert.Equal(t, 3, c.retryMax)
	assert.NotEmpty(t, c.userAgent)
	assert.NotNil(t, c.requestID)
}

func TestWithRetryWait(t *testing.T) {
	tests := []struct {
		name             string
		min, max         time.Duration
		wantMin, wantMax time.Duration
	}{
		{"valid", 10 * time.Millisecond, time.Second, 10 * time.Millisecond, time.Second},
		{"equal bounds", time.Second, time.Second, time.Second, time.Second},
		{"zero min", 0, time.Second, 500 * time.Millisecond, 5 * time.Second},
		{"max below min", time.Second, time.Millisecond, 500 * time.Millisecond, 5 * time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewClient("http://localhost", WithRetryWait(tt.min, tt.max))
			require.NoError(t, err)
			assert.Equal(t, tt.wantMin, c.retryWaitMin)
			assert.Equal(t, tt.wantMax, c.retryWaitMax)
		})
	}
}

//Personal.AI order the ending
