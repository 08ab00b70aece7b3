package tiktok

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"

	"tokpulse/pkg/config"
	errs "tokpulse/pkg/errors"
	"tokpulse/pkg/logger"
	"tokpulse/pkg/ratelimit"
)

// Client is the scraping facade. It is safe for concurrent use after Init.
type Client struct {
	cfg     *config.Config
	logger  logger.Logger
	limiter ratelimit.Limiter

	// newSession is swapped by tests to avoid launching a browser
	newSession func(ctx context.Context) (browserSession, error)

	mu       sync.Mutex
	session  browserSession
	executor *executor
}

// New creates an uninitialized client. Call Init before issuing requests.
func New(cfg *config.Config, limiter ratelimit.Limiter, log logger.Logger) *Client {
	c := &Client{
		cfg:     cfg,
		logger:  log,
		limiter: limiter,
	}
	c.newSession = func(ctx context.Context) (browserSession, error) {
		return newRodSession(ctx, &cfg.TikTok, log)
	}
	return c
}

// Init starts the browser session. Calling Init on an initialized client is
// a no-op, so callers can initialize lazily without coordination.
func (c *Client) Init(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session != nil {
		return nil
	}

	session, err := c.newSession(ctx)
	if err != nil {
		return err
	}

	c.session = session
	c.executor = newExecutor(session, c.limiter, c.cfg.TikTok.BaseURL, c.cfg.Retry, c.logger)
	return nil
}

// Initialized reports whether the client has a live session
func (c *Client) Initialized() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session != nil
}

// Close tears down the browser session. The client can be re-initialized
// afterwards.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session == nil {
		return nil
	}

	err := c.session.Close()
	c.session = nil
	c.executor = nil
	return err
}

func (c *Client) exec() (*executor, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.executor == nil {
		return nil, errs.ErrNotInitialized
	}
	return c.executor, nil
}

// SearchUsers returns the first page of users matching the search term
func (c *Client) SearchUsers(ctx context.Context, term string) ([]UserHit, error) {
	exec, err := c.exec()
	if err != nil {
		return nil, err
	}

	raw, err := exec.execute(ctx, searchEndpoint, searchParams(term))
	if err != nil {
		return nil, err
	}

	var resp userSearchResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, errs.Newf(errs.ErrorTypeParsing, "failed to parse search response: %v", err)
	}

	hits := make([]UserHit, 0, len(resp.UserList))
	for _, entry := range resp.UserList {
		info := entry.UserInfo
		hits = append(hits, UserHit{
			ID:            info.UID,
			SecUID:        info.SecUID,
			Username:      info.UniqueID,
			Nickname:      info.Nickname,
			Signature:     info.Signature,
			Verified:      info.EnterpriseVerifyReason != "" || info.CustomVerify != "",
			FollowerCount: info.FollowerCount,
			AvatarThumb:   info.AvatarThumb.first(),
		})
	}

	c.logger.DebugWithFields("user search completed", map[string]interface{}{
		"term": term,
		"hits": len(hits),
	})

	return hits, nil
}

// GetUser resolves a username to a full profile
func (c *Client) GetUser(ctx context.Context, username string) (*UserProfile, error) {
	exec, err := c.exec()
	if err != nil {
		return nil, err
	}

	raw, err := exec.execute(ctx, userDetailEndpoint, userDetailParams(username))
	if err != nil {
		return nil, err
	}

	var resp userDetailResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, errs.Newf(errs.ErrorTypeParsing, "failed to parse user detail response: %v", err)
	}

	user := resp.UserInfo.User
	stats := resp.UserInfo.Stats
	return &UserProfile{
		ID:            user.ID,
		SecUID:        user.SecUID,
		Username:      user.UniqueID,
		Nickname:      user.Nickname,
		Signature:     user.Signature,
		Verified:      user.Verified,
		FollowerCount: stats.FollowerCount,
		PostCount:     stats.VideoCount,
		AvatarLarge:   user.AvatarLarger,
		AvatarMedium:  user.AvatarMedium,
		AvatarThumb:   user.AvatarThumb,
	}, nil
}

// GetPosts collects up to limit of the user's most recent posts, paging
// until the upstream is exhausted.
func (c *Client) GetPosts(ctx context.Context, secUID string, limit int) ([]Post, error) {
	exec, err := c.exec()
	if err != nil {
		return nil, err
	}

	posts, err := collectPages(func(cursor string) ([]Post, string, bool, error) {
		raw, err := exec.execute(ctx, postListEndpoint, postListParams(secUID, c.cfg.TikTok.PageSizePosts, cursor))
		if err != nil {
			return nil, "", false, err
		}

		var resp postListResponse
		if err := json.Unmarshal(raw, &resp); err != nil {
			return nil, "", false, errs.Newf(errs.ErrorTypeParsing, "failed to parse post list response: %v", err)
		}

		page := make([]Post, 0, len(resp.ItemList))
		for _, item := range resp.ItemList {
			page = append(page, Post{
				ID:           item.ID,
				Text:         item.Desc,
				Cover:        item.Video.Cover,
				CreateTime:   item.CreateTime,
				DiggCount:    item.Stats.DiggCount,
				ShareCount:   item.Stats.ShareCount,
				PlayCount:    item.Stats.PlayCount,
				CommentCount: item.Stats.CommentCount,
			})
		}
		return page, resp.Cursor, resp.HasMore, nil
	}, limit)

	if err != nil {
		return posts, err
	}

	c.logger.DebugWithFields("posts collected", map[string]interface{}{
		"sec_uid": secUID,
		"count":   len(posts),
	})

	return posts, nil
}

// GetComments collects up to limit comments on the post, paging until the
// upstream is exhausted.
func (c *Client) GetComments(ctx context.Context, postID string, limit int) ([]Comment, error) {
	exec, err := c.exec()
	if err != nil {
		return nil, err
	}

	comments, err := collectPages(func(cursor string) ([]Comment, string, bool, error) {
		raw, err := exec.execute(ctx, commentListEndpoint, commentListParams(postID, c.cfg.TikTok.PageSizeComments, cursor))
		if err != nil {
			return nil, "", false, err
		}

		var resp commentListResponse
		if err := json.Unmarshal(raw, &resp); err != nil {
			return nil, "", false, errs.Newf(errs.ErrorTypeParsing, "failed to parse comment list response: %v", err)
		}

		page := make([]Comment, 0, len(resp.Comments))
		for _, item := range resp.Comments {
			page = append(page, Comment{
				ID:           item.CID,
				Text:         item.Text,
				CreateTime:   item.CreateTime,
				DiggCount:    item.DiggCount,
				Language:     item.CommentLanguage,
				AuthorName:   item.User.Nickname,
				AuthorAvatar: item.User.AvatarThumb.first(),
			})
		}
		return page, strconv.FormatInt(resp.Cursor, 10), resp.HasMore == 1, nil
	}, limit)

	if err != nil {
		return comments, err
	}

	c.logger.DebugWithFields("comments collected", map[string]interface{}{
		"post_id": postID,
		"count":   len(comments),
	})

	return comments, nil
}
