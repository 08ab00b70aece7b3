package tiktok

import (
	"context"
	"encoding/json"
	"net/url"
	"time"

	"tokpulse/pkg/config"
	errs "tokpulse/pkg/errors"
	"tokpulse/pkg/logger"
	"tokpulse/pkg/ratelimit"
	"tokpulse/pkg/retry"
)

// executor turns an endpoint plus caller params into a signed request and
// runs it with rate limiting and retry. The signature is computed once per
// request; only the fetch and validation are retried.
type executor struct {
	session  browserSession
	limiter  ratelimit.Limiter
	baseURL  string
	retryCfg config.RetryConfig
	logger   logger.Logger
}

func newExecutor(session browserSession, limiter ratelimit.Limiter, baseURL string, retryCfg config.RetryConfig, log logger.Logger) *executor {
	return &executor{
		session:  session,
		limiter:  limiter,
		baseURL:  baseURL,
		retryCfg: retryCfg,
		logger:   log,
	}
}

// execute builds, signs, and runs a request against the endpoint, returning
// the validated raw payload.
func (e *executor) execute(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	rawURL := e.buildURL(endpoint, params)

	signature, err := e.session.Sign(rawURL)
	if err != nil {
		return nil, err
	}
	signedURL := rawURL + "&X-Bogus=" + url.QueryEscape(signature)

	op := func() ([]byte, error) {
		if err := e.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		body, err := e.session.Fetch(signedURL)
		if err != nil {
			return nil, err
		}

		return e.validate(body)
	}

	return retry.DoWithResult(op, &retry.Config{
		MaxAttempts: e.retryCfg.MaxAttempts,
		Backoff: &retry.ExponentialBackoff{
			BaseDelay:    e.retryCfg.BaseDelay,
			MaxDelay:     e.retryCfg.MaxDelay,
			Multiplier:   2.0,
			JitterFactor: 0.1,
		},
		RetryIf: retry.DefaultRetryIf,
		OnRetry: func(attempt int, err error, _ time.Duration) {
			e.logger.WarnWithFields("retrying signed request", map[string]interface{}{
				"endpoint": endpoint,
				"attempt":  attempt,
				"error":    err.Error(),
			})
		},
		Context: ctx,
		Logger:  e.logger,
	})
}

// buildURL merges the session's common parameters, the caller's parameters,
// and the access token into a full request URL. Caller parameters win on
// conflict.
func (e *executor) buildURL(endpoint string, params url.Values) string {
	merged := url.Values{}
	for k, v := range e.session.CommonParams() {
		merged.Set(k, v)
	}
	for k, vs := range params {
		if len(vs) > 0 {
			merged.Set(k, vs[0])
		}
	}
	merged.Set("msToken", e.session.Token())

	return e.baseURL + endpoint + "?" + merged.Encode()
}

// validate rejects empty bodies and payloads whose embedded status code
// signals a logical failure, both of which are retryable.
func (e *executor) validate(body string) ([]byte, error) {
	if body == "" {
		return nil, errs.ErrEmptyResponse
	}

	raw := []byte(body)
	var envelope statusEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, errs.Newf(errs.ErrorTypeParsing, "malformed upstream payload: %v", err)
	}
	if envelope.StatusCode != 0 {
		return nil, errs.ErrUpstreamRejected.WithCode(envelope.StatusCode)
	}

	return raw, nil
}
