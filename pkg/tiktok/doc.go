// Package tiktok implements a browser-backed scraping client for the TikTok
// web API.
//
// A stealth browser session provides the request signing primitive and the
// fingerprint parameters sent with every call. On top of it sit a signed
// request executor with retry and rate limiting, cursor-paginated collectors,
// and a typed facade:
//
//	client := tiktok.New(cfg, limiter, log)
//	if err := client.Init(ctx); err != nil {
//		return err
//	}
//	defer client.Close()
//
//	hits, err := client.SearchUsers(ctx, "gopher")
//	profile, err := client.GetUser(ctx, "gopher")
//	posts, err := client.GetPosts(ctx, profile.SecUID, 50)
//	comments, err := client.GetComments(ctx, posts[0].ID, 100)
//
// All operations return typed errors from pkg/errors; calls before Init fail
// with ErrNotInitialized.
package tiktok
