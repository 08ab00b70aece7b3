// Package ratelimit provides rate limiting for the upstream scraping API.
//
// It implements a token bucket: a fixed-capacity bucket that refills after a
// specified period, suitable for burst traffic followed by quiet periods. The
// signed request executor waits on the limiter before every fetch.
//
// All rate limiters implement the Limiter interface:
//
//	limiter := ratelimit.NewTokenBucket(60, time.Minute)
//	if err := limiter.Wait(ctx); err != nil {
//		return err // context cancelled while waiting
//	}
package ratelimit
