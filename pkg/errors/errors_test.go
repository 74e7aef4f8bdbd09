package errors_test

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/MarketScope-Intelligence/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// New / Wrap
// ─────────────────────────────────────────────────────────────────────────────

func TestNew_FieldsAreSetCorrectly(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		code    errors.ErrorCode
		message string
	}{
		{"internal error", errors.ErrCodeInternal, "unexpected failure"},
		{"benchmark invalid", errors.ErrCodeBenchmarkInvalid, "benchmark table is empty"},
		{"negative count", errors.ErrCodeNegativeCount, "business_count=-1"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ae := errors.New(tc.code, tc.message)

			require.NotNil(t, ae)
			assert.Equal(t, tc.code, ae.Code)
			assert.Equal(t, tc.message, ae.Message)
			assert.Empty(t, ae.Detail)
			assert.Nil(t, ae.Cause)
			assert.NotEmpty(t, ae.Stack)
		})
	}
}

func TestError_Format(t *testing.T) {
	t.Parallel()

	ae := errors.New(errors.ErrCodeMarketRequestInvalid, "industry is required")
	assert.Equal(t, "[MKT_001] industry is required", ae.Error())

	withDetail := ae.WithDetail("location=Austin")
	assert.Equal(t, "[MKT_001] industry is required: location=Austin", withDetail.Error())
	assert.Empty(t, ae.Detail, "WithDetail must not mutate the receiver")
}

func TestWrap_NilErrorReturnsNil(t *testing.T) {
	t.Parallel()
	assert.Nil(t, errors.Wrap(nil, errors.ErrCodeInternal, "ignored"))
	assert.Nil(t, errors.Wrapf(nil, errors.ErrCodeInternal, "ignored %d", 1))
}

func TestWrap_PreservesCodeWhenUnknown(t *testing.T) {
	t.Parallel()

	inner := errors.New(errors.ErrCodeDatabaseError, "query failed")
	outer := errors.Wrap(inner, errors.CodeUnknown, "save report")

	assert.Equal(t, errors.ErrCodeDatabaseError, outer.Code)
	assert.True(t, stderrors.Is(outer, inner))
}

func TestWrap_ChainTraversal(t *testing.T) {
	t.Parallel()

	root := fmt.Errorf("connection refused")
	wrapped := errors.Wrap(root, errors.ErrCodeCacheError, "redis get")
	foreign := fmt.Errorf("analyze: %w", wrapped)

	assert.True(t, errors.IsCode(foreign, errors.ErrCodeCacheError))
	assert.False(t, errors.IsCode(foreign, errors.ErrCodeDatabaseError))
	assert.Equal(t, errors.ErrCodeCacheError, errors.GetCode(foreign))
	assert.True(t, errors.Is(foreign, root))

	var ae *errors.AppError
	require.True(t, errors.As(foreign, &ae))
	assert.Equal(t, "redis get", ae.Message)
}

func TestGetCode_NilAndForeign(t *testing.T) {
	t.Parallel()
	assert.Equal(t, errors.CodeOK, errors.GetCode(nil))
	assert.Equal(t, errors.CodeUnknown, errors.GetCode(fmt.Errorf("plain")))
}

func TestIsNotFound(t *testing.T) {
	t.Parallel()

	assert.True(t, errors.IsNotFound(errors.NotFound("x")))
	assert.True(t, errors.IsNotFound(errors.New(errors.ErrCodeReportNotFound, "report")))
	assert.True(t, errors.IsNotFound(errors.New(errors.ErrCodeBenchmarkNotFound, "bmk")))
	assert.False(t, errors.IsNotFound(errors.Internal("boom")))
	assert.False(t, errors.IsNotFound(nil))
}

func TestWithCause_NilReceiver(t *testing.T) {
	t.Parallel()

	var ae *errors.AppError
	assert.Nil(t, ae.WithCause(fmt.Errorf("x")))
	assert.Nil(t, ae.WithDetail("x"))
}

// ─────────────────────────────────────────────────────────────────────────────
// Codes
// ─────────────────────────────────────────────────────────────────────────────

func TestHTTPStatusForCode(t *testing.T) {
	t.Parallel()

	cases := []struct {
		code errors.ErrorCode
		want int
	}{
		{errors.ErrCodeMarketRequestInvalid, http.StatusBadRequest},
		{errors.ErrCodeNegativeCount, http.StatusUnprocessableEntity},
		{errors.ErrCodeReportNotFound, http.StatusNotFound},
		{errors.ErrCodeTooManyRequests, http.StatusTooManyRequests},
		{errors.ErrorCode("NOPE_999"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, errors.HTTPStatusForCode(tc.code), tc.code)
	}
}

func TestEveryCodeHasStatusAndMessage(t *testing.T) {
	t.Parallel()

	for code := range errors.ErrorCodeHTTPStatus {
		assert.NotEqual(t, "unknown error", errors.DefaultMessageForCode(code), code)
	}
	for code := range errors.ErrorCodeMessage {
		_, ok := errors.ErrorCodeHTTPStatus[code]
		assert.True(t, ok, "missing status for %s", code)
	}
}

func TestModuleForCode(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "MKT", errors.ModuleForCode(errors.ErrCodeNegativeCount))
	assert.Equal(t, "BMK", errors.ModuleForCode(errors.ErrCodeBenchmarkInvalid))
	assert.True(t, errors.IsClientError(errors.ErrCodeObservationInvalid))
	assert.False(t, errors.IsClientError(errors.ErrCodeDatabaseError))
}

//Personal.AI order the ending
