package tiktok

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tokpulse/pkg/config"
	errs "tokpulse/pkg/errors"
	"tokpulse/pkg/logger"
	"tokpulse/pkg/ratelimit"
)

// fakeSession simulates the browser session without a browser. The handler
// decides what each fetch returns; sign and fetch calls are counted so tests
// can assert on attempt behavior.
type fakeSession struct {
	params     map[string]string
	token      string
	signature  string
	signErr    error
	signCalls  int
	fetchCalls int
	closed     bool
	handler    func(rawURL string) (string, error)
}

func newFakeSession(handler func(rawURL string) (string, error)) *fakeSession {
	return &fakeSession{
		params:    map[string]string{"aid": "1988", "device_id": "4200000000000000000"},
		token:     "test-token",
		signature: "test-bogus",
		handler:   handler,
	}
}

func (f *fakeSession) CommonParams() map[string]string { return f.params }
func (f *fakeSession) Token() string                   { return f.token }

func (f *fakeSession) Sign(rawURL string) (string, error) {
	f.signCalls++
	if f.signErr != nil {
		return "", f.signErr
	}
	return f.signature, nil
}

func (f *fakeSession) Fetch(rawURL string) (string, error) {
	f.fetchCalls++
	return f.handler(rawURL)
}

func (f *fakeSession) Close() error {
	f.closed = true
	return nil
}

func testRetryConfig() config.RetryConfig {
	return config.RetryConfig{
		MaxAttempts: 3,
		BaseDelay:   time.Millisecond,
		MaxDelay:    5 * time.Millisecond,
	}
}

func testExecutor(session browserSession) *executor {
	limiter := ratelimit.NewTokenBucket(1000, time.Minute)
	return newExecutor(session, limiter, "https://www.example.test", testRetryConfig(), logger.NewTestLogger())
}

func TestExecutorBuildsSignedURL(t *testing.T) {
	var fetched string
	session := newFakeSession(func(rawURL string) (string, error) {
		fetched = rawURL
		return `{"status_code":0}`, nil
	})

	exec := testExecutor(session)
	params := url.Values{}
	params.Set("keyword", "gopher")

	_, err := exec.execute(context.Background(), "/api/search/user/full/", params)
	require.NoError(t, err)

	parsed, err := url.Parse(fetched)
	require.NoError(t, err)
	assert.Equal(t, "/api/search/user/full/", parsed.Path)

	query := parsed.Query()
	assert.Equal(t, "gopher", query.Get("keyword"))
	assert.Equal(t, "1988", query.Get("aid"), "session common params are merged in")
	assert.Equal(t, "test-token", query.Get("msToken"))
	assert.Equal(t, "test-bogus", query.Get("X-Bogus"))
	assert.True(t, strings.HasSuffix(fetched, "&X-Bogus=test-bogus"), "signature is appended after signing")
}

func TestExecutorSignsOncePerRequest(t *testing.T) {
	attempts := 0
	session := newFakeSession(func(rawURL string) (string, error) {
		attempts++
		if attempts < 3 {
			return "", nil
		}
		return `{"status_code":0}`, nil
	})

	exec := testExecutor(session)
	_, err := exec.execute(context.Background(), "/api/user/detail/", url.Values{})
	require.NoError(t, err)

	assert.Equal(t, 1, session.signCalls, "signature is computed once, not per attempt")
	assert.Equal(t, 3, session.fetchCalls)
}

func TestExecutorRetriesEmptyResponse(t *testing.T) {
	attempts := 0
	session := newFakeSession(func(rawURL string) (string, error) {
		attempts++
		if attempts <= 2 {
			return "", nil
		}
		return `{"status_code":0,"ok":true}`, nil
	})

	exec := testExecutor(session)
	raw, err := exec.execute(context.Background(), "/api/post/item_list/", url.Values{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"status_code":0,"ok":true}`, string(raw))
	assert.Equal(t, 3, session.fetchCalls, "two failures then a success means three attempts")
}

func TestExecutorExhaustsRetriesOnUpstreamRejection(t *testing.T) {
	session := newFakeSession(func(rawURL string) (string, error) {
		return `{"status_code":10201}`, nil
	})

	exec := testExecutor(session)
	_, err := exec.execute(context.Background(), "/api/comment/list/", url.Values{})

	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrUpstreamRejected)
	assert.Equal(t, 3, session.fetchCalls, "all attempts are consumed before giving up")
	assert.Contains(t, err.Error(), "max retry attempts")
}

func TestExecutorUpstreamRejectionCarriesCode(t *testing.T) {
	session := newFakeSession(func(rawURL string) (string, error) {
		return `{"status_code":10201}`, nil
	})

	exec := testExecutor(session)
	_, err := exec.execute(context.Background(), "/api/comment/list/", url.Values{})
	require.Error(t, err)

	var apiErr *errs.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, errs.ErrorTypeUpstreamRejected, apiErr.Type)
	assert.Equal(t, 10201, apiErr.Code)
}

func TestExecutorDoesNotRetryMalformedPayload(t *testing.T) {
	session := newFakeSession(func(rawURL string) (string, error) {
		return "<html>blocked</html>", nil
	})

	exec := testExecutor(session)
	_, err := exec.execute(context.Background(), "/api/user/detail/", url.Values{})

	require.Error(t, err)
	var apiErr *errs.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, errs.ErrorTypeParsing, apiErr.Type)
	assert.Equal(t, 1, session.fetchCalls, "parsing failures are terminal")
}

func TestExecutorSignFailureIsTerminal(t *testing.T) {
	session := newFakeSession(func(rawURL string) (string, error) {
		return `{"status_code":0}`, nil
	})
	session.signErr = errs.New(errs.ErrorTypeNetwork, "signer unavailable")

	exec := testExecutor(session)
	_, err := exec.execute(context.Background(), "/api/search/user/full/", url.Values{})

	require.Error(t, err)
	assert.Equal(t, 0, session.fetchCalls)
}

func TestExecutorHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	session := newFakeSession(func(rawURL string) (string, error) {
		cancel()
		return "", nil
	})

	exec := testExecutor(session)
	_, err := exec.execute(ctx, "/api/post/item_list/", url.Values{})

	require.Error(t, err)
	assert.LessOrEqual(t, session.fetchCalls, 2, "cancellation stops the retry loop")
}
