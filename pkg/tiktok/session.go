package tiktok

import (
	"context"
	"math/rand"
	"net/url"
	"strconv"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"tokpulse/pkg/config"
	errs "tokpulse/pkg/errors"
	"tokpulse/pkg/logger"
)

// browserSession is the in-browser capability surface the client depends on.
// The production implementation drives a stealth Chromium page; tests swap in
// a fake that simulates upstream responses without a browser.
type browserSession interface {
	// CommonParams returns the frozen fingerprint parameter mapping
	// computed at init
	CommonParams() map[string]string
	// Token returns the access token for the session
	Token() string
	// Sign computes the signature value for a request URL using the
	// in-session signing primitive
	Sign(rawURL string) (string, error)
	// Fetch issues a GET from within the session context and returns the
	// raw response body
	Fetch(rawURL string) (string, error)
	// Close releases the browser session
	Close() error
}

// rodSession implements browserSession on a stealth-patched rod page
type rodSession struct {
	browser *rod.Browser
	page    *rod.Page
	headers map[string]string
	params  map[string]string
	token   string
	logger  logger.Logger
}

// newRodSession launches a stealth browser, navigates to the upstream origin,
// harvests the access token, and computes the fingerprint parameter mapping.
func newRodSession(ctx context.Context, cfg *config.TikTokConfig, log logger.Logger) (*rodSession, error) {
	l := launcher.New().
		Headless(cfg.Headless).
		Set("disable-blink-features", "AutomationControlled").
		Set("no-sandbox").
		Set("disable-dev-shm-usage").
		Set("disable-gpu").
		Set("incognito").
		Set("lang", "en-US,en")

	controlURL, err := l.Launch()
	if err != nil {
		return nil, errs.Newf(errs.ErrorTypeNetwork, "failed to launch browser: %v", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, errs.Newf(errs.ErrorTypeNetwork, "failed to connect to browser: %v", err)
	}

	page, err := stealth.Page(browser)
	if err != nil {
		browser.Close()
		return nil, errs.Newf(errs.ErrorTypeNetwork, "failed to create stealth page: %v", err)
	}

	s := &rodSession{
		browser: browser,
		page:    page,
		logger:  log,
	}

	if err := s.bootstrap(ctx, cfg); err != nil {
		browser.Close()
		return nil, err
	}

	return s, nil
}

// bootstrap navigates to the origin, captures outbound headers, resolves the
// access token, and freezes the common parameter mapping.
func (s *rodSession) bootstrap(ctx context.Context, cfg *config.TikTokConfig) error {
	page := s.page.Context(ctx).Timeout(cfg.NavigationTimeout)

	// Capture the headers of the first outbound request so signed API calls
	// blend in with the page's own traffic.
	headers := map[string]string{}
	waitFirstRequest := page.EachEvent(func(e *proto.NetworkRequestWillBeSent) bool {
		for k, v := range e.Request.Headers {
			headers[k] = v.Str()
		}
		return true
	})

	if err := page.Navigate(cfg.BaseURL); err != nil {
		return errs.Newf(errs.ErrorTypeNetwork, "failed to navigate to %s: %v", cfg.BaseURL, err)
	}
	waitFirstRequest()

	if err := page.WaitLoad(); err != nil {
		return errs.Newf(errs.ErrorTypeNetwork, "page load failed: %v", err)
	}

	s.headers = headers

	token := cfg.MsToken
	if token == "" {
		// The token cookie is set by a script shortly after load.
		time.Sleep(time.Second)

		cookies, err := page.Cookies(nil)
		if err != nil {
			return errs.Newf(errs.ErrorTypeNetwork, "failed to read cookies: %v", err)
		}
		for _, c := range cookies {
			if c.Name == "msToken" {
				token = c.Value
				break
			}
		}
		if token == "" {
			return errs.ErrMissingToken
		}
	} else {
		origin, err := url.Parse(cfg.BaseURL)
		if err != nil {
			return errs.Newf(errs.ErrorTypeUnknown, "invalid base URL %q: %v", cfg.BaseURL, err)
		}
		err = page.SetCookies([]*proto.NetworkCookieParam{{
			Name:   "msToken",
			Value:  token,
			Domain: origin.Hostname(),
			Path:   "/",
		}})
		if err != nil {
			return errs.Newf(errs.ErrorTypeNetwork, "failed to set token cookie: %v", err)
		}
	}
	s.token = token

	params, err := s.fingerprint(page)
	if err != nil {
		return err
	}
	s.params = params

	s.logger.InfoWithFields("session initialized", map[string]interface{}{
		"base_url":  cfg.BaseURL,
		"device_id": params["device_id"],
	})

	return nil
}

// fingerprint evaluates real browser properties in-page and combines them
// with randomized but bounded device values into the common parameter set
// sent with every request.
func (s *rodSession) fingerprint(page *rod.Page) (map[string]string, error) {
	userAgent, err := s.evalString(page, `() => navigator.userAgent`)
	if err != nil {
		return nil, err
	}
	language, err := s.evalString(page, `() => navigator.language || navigator.userLanguage`)
	if err != nil {
		return nil, err
	}
	platform, err := s.evalString(page, `() => navigator.platform`)
	if err != nil {
		return nil, err
	}
	timezone, err := s.evalString(page, `() => Intl.DateTimeFormat().resolvedOptions().timeZone`)
	if err != nil {
		return nil, err
	}

	deviceID := strconv.FormatInt(randomRange(1_000_000_000_000_000_000, 9_000_000_000_000_000_000), 10)
	historyLen := strconv.FormatInt(randomRange(1, 10), 10)
	screenHeight := strconv.FormatInt(randomRange(600, 1080), 10)
	screenWidth := strconv.FormatInt(randomRange(800, 1920), 10)

	return map[string]string{
		"aid":              "1988",
		"app_language":     language,
		"app_name":         "tiktok_web",
		"browser_language": language,
		"browser_name":     "Mozilla",
		"browser_online":   "true",
		"browser_platform": platform,
		"browser_version":  userAgent,
		"channel":          "tiktok_web",
		"cookie_enabled":   "true",
		"device_id":        deviceID,
		"device_platform":  "web_pc",
		"focus_state":      "true",
		"from_page":        "user",
		"history_len":      historyLen,
		"is_fullscreen":    "false",
		"is_page_visible":  "true",
		"language":         language,
		"os":               platform,
		"priority_region":  "",
		"referer":          "",
		"region":           "US",
		"screen_height":    screenHeight,
		"screen_width":     screenWidth,
		"tz_name":          timezone,
		"webcast_language": language,
	}, nil
}

func (s *rodSession) evalString(page *rod.Page, js string) (string, error) {
	result, err := page.Eval(js)
	if err != nil {
		return "", errs.Newf(errs.ErrorTypeNetwork, "page eval failed: %v", err)
	}
	return result.Value.Str(), nil
}

// CommonParams returns the frozen fingerprint parameter mapping
func (s *rodSession) CommonParams() map[string]string {
	return s.params
}

// Token returns the session's access token
func (s *rodSession) Token() string {
	return s.token
}

// Sign computes the X-Bogus signature for a request URL via the in-session
// signing primitive. The primitive is loaded asynchronously by the page, so
// we wait for it to appear first.
func (s *rodSession) Sign(rawURL string) (string, error) {
	if err := s.page.Wait(rod.Eval(`() => window.byted_acrawler !== undefined`)); err != nil {
		return "", errs.Newf(errs.ErrorTypeNetwork, "signing primitive not available: %v", err)
	}

	result, err := s.page.Eval(`(u) => window.byted_acrawler.frontierSign(u)`, rawURL)
	if err != nil {
		return "", errs.Newf(errs.ErrorTypeNetwork, "failed to sign request: %v", err)
	}

	return result.Value.Get("X-Bogus").Str(), nil
}

// Fetch issues an in-page GET with the captured session headers. The call
// runs inside the authenticated browser context, so cookies ride along
// transparently.
func (s *rodSession) Fetch(rawURL string) (string, error) {
	result, err := s.page.Eval(`(u, headers) => {
		return fetch(u, { method: "GET", headers })
			.then((response) => response.text())
	}`, rawURL, s.headers)
	if err != nil {
		return "", errs.Newf(errs.ErrorTypeNetwork, "in-page fetch failed: %v", err)
	}

	return result.Value.Str(), nil
}

// Close releases the browser session
func (s *rodSession) Close() error {
	return s.browser.Close()
}

// randomRange returns a random integer in [min, max)
func randomRange(min, max int64) int64 {
	return min + rand.Int63n(max-min)
}
