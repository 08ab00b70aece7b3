// Package analyzer runs background profile analyses: it walks a user's
// recent posts, classifies the sentiment of their comments, and persists the
// results incrementally under a TTL so readers never wait on a running
// analysis.
package analyzer

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"tokpulse/pkg/config"
	"tokpulse/pkg/logger"
	"tokpulse/pkg/sentiment"
	"tokpulse/pkg/store"
	"tokpulse/pkg/tiktok"
)

// Status is the lifecycle state of a profile analysis
type Status string

const (
	// StatusPending means no analysis has been recorded for the user
	StatusPending Status = "pending"
	// StatusInProgress means an analysis is currently running
	StatusInProgress Status = "in_progress"
	// StatusDone means the last analysis completed
	StatusDone Status = "done"
	// StatusError means the last analysis failed; partial results may exist
	StatusError Status = "error"
)

// TaggedComment is a collected comment with its sentiment classification
type TaggedComment struct {
	tiktok.Comment
	PostID    string  `json:"postId"`
	Sentiment string  `json:"sentiment"`
	Score     float64 `json:"score"`
}

// statusRecord is the persisted shape of an analysis status
type statusRecord struct {
	Status    Status `json:"status"`
	Error     string `json:"error,omitempty"`
	UpdatedAt int64  `json:"updatedAt"`
}

// ScrapingClient is the slice of the scraping facade the analyzer needs
type ScrapingClient interface {
	Init(ctx context.Context) error
	GetUser(ctx context.Context, username string) (*tiktok.UserProfile, error)
	GetPosts(ctx context.Context, secUID string, limit int) ([]tiktok.Post, error)
	GetComments(ctx context.Context, postID string, limit int) ([]tiktok.Comment, error)
}

// Analyzer coordinates profile analyses. A single gate serializes runs
// system-wide so only one browser-heavy analysis is in flight at a time.
type Analyzer struct {
	client     ScrapingClient
	classifier sentiment.Classifier
	store      store.Store
	cfg        config.AnalyzerConfig
	logger     logger.Logger
	gate       chan struct{}
}

// New creates an Analyzer
func New(client ScrapingClient, classifier sentiment.Classifier, st store.Store, cfg config.AnalyzerConfig, log logger.Logger) *Analyzer {
	return &Analyzer{
		client:     client,
		classifier: classifier,
		store:      st,
		cfg:        cfg,
		logger:     log,
		gate:       make(chan struct{}, 1),
	}
}

// Analyze starts an analysis for the user in the background and returns
// immediately. If an analysis for the user is already running, the new
// request is dropped.
func (a *Analyzer) Analyze(username string) {
	go a.run(context.Background(), username)
}

// Run executes an analysis synchronously. Tests and batch callers use this;
// the HTTP path goes through Analyze.
func (a *Analyzer) Run(ctx context.Context, username string) {
	a.run(ctx, username)
}

func (a *Analyzer) run(ctx context.Context, username string) {
	log := a.logger.WithField("username", username)

	status, err := a.currentStatus(ctx, username)
	if err != nil {
		log.WithError(err).Error("failed to read analysis status")
		return
	}
	if status == StatusInProgress {
		log.Info("analysis already in progress, skipping")
		return
	}

	// One analysis at a time across the whole service.
	a.gate <- struct{}{}
	defer func() { <-a.gate }()

	// Another run may have started for this user while we waited.
	status, err = a.currentStatus(ctx, username)
	if err != nil {
		log.WithError(err).Error("failed to read analysis status")
		return
	}
	if status == StatusInProgress {
		log.Info("analysis already in progress, skipping")
		return
	}

	if err := a.client.Init(ctx); err != nil {
		log.WithError(err).Error("failed to initialize scraping client")
		a.setError(ctx, username, err)
		return
	}

	profile, err := a.client.GetUser(ctx, username)
	if err != nil {
		log.WithError(err).Error("failed to resolve user")
		a.setError(ctx, username, err)
		return
	}

	if err := a.setStatus(ctx, username, StatusInProgress, nil); err != nil {
		log.WithError(err).Error("failed to mark analysis in progress")
		return
	}

	log.InfoWithFields("analysis started", map[string]interface{}{
		"sec_uid":   profile.SecUID,
		"max_posts": a.cfg.MaxPosts,
	})

	posts, err := a.client.GetPosts(ctx, profile.SecUID, a.cfg.MaxPosts)
	if err != nil {
		log.WithError(err).Error("failed to collect posts")
		a.setError(ctx, username, err)
		return
	}

	var tagged []TaggedComment
	for _, post := range posts {
		comments, err := a.client.GetComments(ctx, post.ID, a.cfg.MaxComments)
		if err != nil {
			log.WithError(err).ErrorWithFields("failed to collect comments", map[string]interface{}{
				"post_id": post.ID,
			})
			a.persistComments(ctx, username, tagged)
			a.setError(ctx, username, err)
			return
		}

		for _, comment := range comments {
			if !strings.EqualFold(comment.Language, a.cfg.Language) {
				continue
			}

			result, err := a.classifier.Classify(comment.Text)
			if err != nil {
				log.WithError(err).Error("sentiment classification failed")
				a.persistComments(ctx, username, tagged)
				a.setError(ctx, username, err)
				return
			}

			tagged = append(tagged, TaggedComment{
				Comment:   comment,
				PostID:    post.ID,
				Sentiment: result.Label,
				Score:     result.Score,
			})
		}

		// Persist after every post so a crash or failure mid-run still
		// leaves the completed posts readable.
		if err := a.persistComments(ctx, username, tagged); err != nil {
			log.WithError(err).Error("failed to persist tagged comments")
			a.setError(ctx, username, err)
			return
		}
	}

	if err := a.setStatus(ctx, username, StatusDone, nil); err != nil {
		log.WithError(err).Error("failed to mark analysis done")
		return
	}

	log.InfoWithFields("analysis completed", map[string]interface{}{
		"posts":           len(posts),
		"tagged_comments": len(tagged),
	})
}

// GetTaggedComments returns the current status and whatever tagged comments
// have been persisted so far. It never blocks on a running analysis; a user
// with no recorded analysis reports pending with no comments.
func (a *Analyzer) GetTaggedComments(ctx context.Context, username string) (Status, []TaggedComment, error) {
	status, err := a.currentStatus(ctx, username)
	if err != nil {
		return "", nil, err
	}

	raw, found, err := a.store.Get(ctx, store.CommentsKey(username))
	if err != nil {
		return "", nil, err
	}
	if !found {
		return status, []TaggedComment{}, nil
	}

	var comments []TaggedComment
	if err := json.Unmarshal([]byte(raw), &comments); err != nil {
		return "", nil, err
	}

	return status, comments, nil
}

func (a *Analyzer) currentStatus(ctx context.Context, username string) (Status, error) {
	raw, found, err := a.store.Get(ctx, store.StatusKey(username))
	if err != nil {
		return "", err
	}
	if !found {
		return StatusPending, nil
	}

	var record statusRecord
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		return "", err
	}
	return record.Status, nil
}

func (a *Analyzer) setStatus(ctx context.Context, username string, status Status, cause error) error {
	record := statusRecord{
		Status:    status,
		UpdatedAt: time.Now().Unix(),
	}
	if cause != nil {
		record.Error = cause.Error()
	}

	raw, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return a.store.Set(ctx, store.StatusKey(username), string(raw), a.cfg.ResultTTL)
}

func (a *Analyzer) setError(ctx context.Context, username string, cause error) {
	if err := a.setStatus(ctx, username, StatusError, cause); err != nil {
		a.logger.WithError(err).Error("failed to record analysis error")
	}
}

func (a *Analyzer) persistComments(ctx context.Context, username string, comments []TaggedComment) error {
	if comments == nil {
		comments = []TaggedComment{}
	}

	raw, err := json.Marshal(comments)
	if err != nil {
		return err
	}
	return a.store.Set(ctx, store.CommentsKey(username), string(raw), a.cfg.ResultTTL)
}
