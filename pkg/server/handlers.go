package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"tokpulse/pkg/analyzer"
	"tokpulse/pkg/tiktok"
)

// userResponse is the profile view payload: the resolved profile plus a
// preview of the latest post and its comments.
type userResponse struct {
	User     *tiktok.UserProfile `json:"user"`
	LastPost *tiktok.Post        `json:"lastPost,omitempty"`
	Comments []tiktok.Comment    `json:"comments"`
}

// commentsResponse is the analysis read payload
type commentsResponse struct {
	Status   analyzer.Status          `json:"status"`
	Comments []analyzer.TaggedComment `json:"comments"`
}

// handleSearch serves GET /search/{term}
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	term := strings.TrimSpace(chi.URLParam(r, "term"))
	if term == "" {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "search term is required"})
		return
	}

	if err := s.client.Init(r.Context()); err != nil {
		s.writeError(w, err)
		return
	}

	hits, err := s.client.SearchUsers(r.Context(), term)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if hits == nil {
		hits = []tiktok.UserHit{}
	}

	s.writeJSON(w, http.StatusOK, hits)
}

// handleUser serves GET /user/{username}. Besides the profile preview it
// schedules a background analysis of the user shortly after responding.
func (s *Server) handleUser(w http.ResponseWriter, r *http.Request) {
	username := strings.TrimSpace(chi.URLParam(r, "username"))
	if username == "" {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "username is required"})
		return
	}

	if err := s.client.Init(r.Context()); err != nil {
		s.writeError(w, err)
		return
	}

	profile, err := s.client.GetUser(r.Context(), username)
	if err != nil {
		s.writeError(w, err)
		return
	}

	resp := userResponse{User: profile, Comments: []tiktok.Comment{}}

	posts, err := s.client.GetPosts(r.Context(), profile.SecUID, 1)
	if err != nil {
		s.logger.WithError(err).WarnWithFields("post preview unavailable", map[string]interface{}{
			"username": username,
		})
	} else if len(posts) > 0 {
		resp.LastPost = &posts[0]

		comments, err := s.client.GetComments(r.Context(), posts[0].ID, s.cfg.TikTok.PageSizeComments)
		if err != nil {
			s.logger.WithError(err).WarnWithFields("comment preview unavailable", map[string]interface{}{
				"username": username,
				"post_id":  posts[0].ID,
			})
		} else if comments != nil {
			resp.Comments = comments
		}
	}

	// Kick off the analysis after the response is long gone.
	time.AfterFunc(s.analyzeDelay, func() {
		s.analyzer.Analyze(username)
	})

	s.writeJSON(w, http.StatusOK, resp)
}

// handleComments serves GET /comments/{username}. It reads persisted results
// only and never blocks on a running analysis.
func (s *Server) handleComments(w http.ResponseWriter, r *http.Request) {
	username := strings.TrimSpace(chi.URLParam(r, "username"))
	if username == "" {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "username is required"})
		return
	}

	status, comments, err := s.analyzer.GetTaggedComments(r.Context(), username)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if comments == nil {
		comments = []analyzer.TaggedComment{}
	}

	s.writeJSON(w, http.StatusOK, commentsResponse{Status: status, Comments: comments})
}
