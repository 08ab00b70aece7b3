package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tokpulse/pkg/analyzer"
	"tokpulse/pkg/config"
	errs "tokpulse/pkg/errors"
	"tokpulse/pkg/logger"
	"tokpulse/pkg/tiktok"
)

type fakeScraper struct {
	initErr     error
	initCalls   int
	hits        []tiktok.UserHit
	searchErr   error
	user        *tiktok.UserProfile
	userErr     error
	posts       []tiktok.Post
	postsErr    error
	comments    []tiktok.Comment
	commentsErr error
}

func (f *fakeScraper) Init(ctx context.Context) error {
	f.initCalls++
	return f.initErr
}

func (f *fakeScraper) SearchUsers(ctx context.Context, term string) ([]tiktok.UserHit, error) {
	return f.hits, f.searchErr
}

func (f *fakeScraper) GetUser(ctx context.Context, username string) (*tiktok.UserProfile, error) {
	return f.user, f.userErr
}

func (f *fakeScraper) GetPosts(ctx context.Context, secUID string, limit int) ([]tiktok.Post, error) {
	if f.postsErr != nil {
		return nil, f.postsErr
	}
	if limit < len(f.posts) {
		return f.posts[:limit], nil
	}
	return f.posts, nil
}

func (f *fakeScraper) GetComments(ctx context.Context, postID string, limit int) ([]tiktok.Comment, error) {
	return f.comments, f.commentsErr
}

type fakeAnalyzer struct {
	analyzed chan string
	status   analyzer.Status
	comments []analyzer.TaggedComment
	err      error
}

func newFakeAnalyzer() *fakeAnalyzer {
	return &fakeAnalyzer{
		analyzed: make(chan string, 8),
		status:   analyzer.StatusPending,
	}
}

func (f *fakeAnalyzer) Analyze(username string) {
	f.analyzed <- username
}

func (f *fakeAnalyzer) GetTaggedComments(ctx context.Context, username string) (analyzer.Status, []analyzer.TaggedComment, error) {
	return f.status, f.comments, f.err
}

func newTestServer(scraper *fakeScraper, a *fakeAnalyzer) *Server {
	cfg := config.DefaultConfig()
	s := New(scraper, a, cfg, logger.NewTestLogger())
	s.analyzeDelay = time.Millisecond
	return s
}

func doRequest(s *Server, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestSearchReturnsHits(t *testing.T) {
	scraper := &fakeScraper{
		hits: []tiktok.UserHit{{ID: "1", Username: "gopher", FollowerCount: 10}},
	}
	s := newTestServer(scraper, newFakeAnalyzer())

	rec := doRequest(s, "/search/gopher")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var hits []tiktok.UserHit
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &hits))
	require.Len(t, hits, 1)
	assert.Equal(t, "gopher", hits[0].Username)
	assert.Equal(t, 1, scraper.initCalls, "client is initialized lazily per request")
}

func TestSearchEmptyResultIsArray(t *testing.T) {
	s := newTestServer(&fakeScraper{}, newFakeAnalyzer())

	rec := doRequest(s, "/search/nobody")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestSearchUpstreamFailureMapsToBadGateway(t *testing.T) {
	scraper := &fakeScraper{searchErr: errs.ErrUpstreamRejected}
	s := newTestServer(scraper, newFakeAnalyzer())

	rec := doRequest(s, "/search/gopher")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "error")
}

func TestSearchInitFailureMapsToServiceUnavailable(t *testing.T) {
	scraper := &fakeScraper{initErr: errs.ErrMissingToken}
	s := newTestServer(scraper, newFakeAnalyzer())

	rec := doRequest(s, "/search/gopher")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestUserReturnsProfilePreview(t *testing.T) {
	scraper := &fakeScraper{
		user: &tiktok.UserProfile{ID: "1", SecUID: "sec-1", Username: "gopher"},
		posts: []tiktok.Post{
			{ID: "p1", Text: "latest"},
			{ID: "p0", Text: "older"},
		},
		comments: []tiktok.Comment{{ID: "c1", Text: "nice"}},
	}
	a := newFakeAnalyzer()
	s := newTestServer(scraper, a)

	rec := doRequest(s, "/user/gopher")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		User     *tiktok.UserProfile `json:"user"`
		LastPost *tiktok.Post        `json:"lastPost"`
		Comments []tiktok.Comment    `json:"comments"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, "gopher", resp.User.Username)
	require.NotNil(t, resp.LastPost)
	assert.Equal(t, "p1", resp.LastPost.ID, "only the most recent post is previewed")
	require.Len(t, resp.Comments, 1)
	assert.Equal(t, "c1", resp.Comments[0].ID)
}

func TestUserSchedulesBackgroundAnalysis(t *testing.T) {
	scraper := &fakeScraper{
		user: &tiktok.UserProfile{ID: "1", SecUID: "sec-1", Username: "gopher"},
	}
	a := newFakeAnalyzer()
	s := newTestServer(scraper, a)

	rec := doRequest(s, "/user/gopher")
	require.Equal(t, http.StatusOK, rec.Code)

	select {
	case username := <-a.analyzed:
		assert.Equal(t, "gopher", username)
	case <-time.After(2 * time.Second):
		t.Fatal("analysis was never scheduled")
	}
}

func TestUserPreviewDegradesWhenPostsFail(t *testing.T) {
	scraper := &fakeScraper{
		user:     &tiktok.UserProfile{ID: "1", SecUID: "sec-1", Username: "gopher"},
		postsErr: errs.ErrEmptyResponse,
	}
	s := newTestServer(scraper, newFakeAnalyzer())

	rec := doRequest(s, "/user/gopher")
	require.Equal(t, http.StatusOK, rec.Code, "a failed preview does not fail the profile view")

	var resp struct {
		User     *tiktok.UserProfile `json:"user"`
		LastPost *tiktok.Post        `json:"lastPost"`
		Comments []tiktok.Comment    `json:"comments"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Nil(t, resp.LastPost)
	assert.Empty(t, resp.Comments)
}

func TestUserLookupFailure(t *testing.T) {
	scraper := &fakeScraper{userErr: errs.New(errs.ErrorTypeNetwork, "lookup failed")}
	s := newTestServer(scraper, newFakeAnalyzer())

	rec := doRequest(s, "/user/ghost")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestCommentsDefaultsToPending(t *testing.T) {
	s := newTestServer(&fakeScraper{}, newFakeAnalyzer())

	rec := doRequest(s, "/comments/gopher")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Status   analyzer.Status          `json:"status"`
		Comments []analyzer.TaggedComment `json:"comments"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, analyzer.StatusPending, resp.Status)
	assert.NotNil(t, resp.Comments)
	assert.Empty(t, resp.Comments)
}

func TestCommentsReturnsTaggedResults(t *testing.T) {
	a := newFakeAnalyzer()
	a.status = analyzer.StatusDone
	a.comments = []analyzer.TaggedComment{
		{Comment: tiktok.Comment{ID: "c1", Text: "love it"}, PostID: "p1", Sentiment: "positive", Score: 0.9},
	}
	s := newTestServer(&fakeScraper{}, a)

	rec := doRequest(s, "/comments/gopher")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Status   analyzer.Status          `json:"status"`
		Comments []analyzer.TaggedComment `json:"comments"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, analyzer.StatusDone, resp.Status)
	require.Len(t, resp.Comments, 1)
	assert.Equal(t, "positive", resp.Comments[0].Sentiment)
	assert.Equal(t, "p1", resp.Comments[0].PostID)
}

func TestCommentsNeverTouchesScraper(t *testing.T) {
	scraper := &fakeScraper{}
	s := newTestServer(scraper, newFakeAnalyzer())

	rec := doRequest(s, "/comments/gopher")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, scraper.initCalls)
}

func TestUnknownRouteIs404(t *testing.T) {
	s := newTestServer(&fakeScraper{}, newFakeAnalyzer())

	rec := doRequest(s, "/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
