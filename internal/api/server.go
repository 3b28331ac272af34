// Package api exposes the response cache over HTTP. The server is the
// serving component that holds the explicit cache instance; the
// generative backend stays with the caller, so a lookup miss is a
// normal 200 response, never an error.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tripline-ai/replycache/pkg/cache"
	"github.com/tripline-ai/replycache/pkg/observability"
)

// Server wires the cache into gin handlers.
type Server struct {
	cache  *cache.ResponseCache
	logger observability.Logger
}

// NewServer creates a Server around an existing cache instance.
func NewServer(c *cache.ResponseCache, logger observability.Logger) *Server {
	if logger == nil {
		logger = observability.NewStandardLogger("api")
	}
	return &Server{cache: c, logger: logger}
}

// Router builds the gin engine with all routes and middleware. A nil
// limiter disables rate limiting.
func (s *Server) Router(limiter *RateLimiter) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), RequestID(), RequestLogger(s.logger))
	if limiter != nil {
		r.Use(RateLimit(limiter))
	}

	r.GET("/healthz", s.handleHealth)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1/cache")
	v1.POST("/lookup", s.handleLookup)
	v1.POST("/entries", s.handleInsert)
	v1.POST("/feedback", s.handleFeedback)
	v1.GET("/metrics", s.handleMetrics)
	v1.POST("/clear", s.handleClear)

	return r
}

type lookupRequest struct {
	Query    string `json:"query"`
	UserID   string `json:"user_id"`
	Language string `json:"language"`
}

type lookupResponse struct {
	Found        bool    `json:"found"`
	Response     string  `json:"response,omitempty"`
	MatchedQuery string  `json:"matched_query,omitempty"`
	Similarity   float64 `json:"similarity,omitempty"`
	MatchType    string  `json:"match_type,omitempty"`
}

func (s *Server) handleLookup(c *gin.Context) {
	var req lookupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.Language == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "language is required"})
		return
	}

	res := s.cache.Lookup(c.Request.Context(), req.Query, req.UserID, req.Language)
	if res == nil {
		c.JSON(http.StatusOK, lookupResponse{Found: false})
		return
	}
	c.JSON(http.StatusOK, lookupResponse{
		Found:        true,
		Response:     res.Response,
		MatchedQuery: res.MatchedQuery,
		Similarity:   res.Similarity,
		MatchType:    string(res.MatchType),
	})
}

type insertRequest struct {
	Query          string   `json:"query"`
	Response       string   `json:"response"`
	UserID         string   `json:"user_id"`
	Language       string   `json:"language"`
	ResponseTimeMs int64    `json:"response_time_ms"`
	Tags           []string `json:"tags"`
}

func (s *Server) handleInsert(c *gin.Context) {
	var req insertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.Language == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "language is required"})
		return
	}

	s.cache.Insert(c.Request.Context(), req.Query, req.Response, req.UserID, req.Language, req.ResponseTimeMs, req.Tags)
	c.JSON(http.StatusAccepted, gin.H{"status": "accepted"})
}

type feedbackRequest struct {
	Query    string `json:"query"`
	UserID   string `json:"user_id"`
	Language string `json:"language"`
	Feedback string `json:"feedback"`
}

func (s *Server) handleFeedback(c *gin.Context) {
	var req feedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	fb := cache.Feedback(req.Feedback)
	if fb != cache.FeedbackPositive && fb != cache.FeedbackNegative {
		c.JSON(http.StatusBadRequest, gin.H{"error": "feedback must be positive or negative"})
		return
	}

	// A feedback call against an unknown key is a silent no-op, so the
	// handler always accepts.
	s.cache.RecordFeedback(c.Request.Context(), req.Query, req.UserID, req.Language, fb)
	c.JSON(http.StatusAccepted, gin.H{"status": "accepted"})
}

func (s *Server) handleMetrics(c *gin.Context) {
	c.JSON(http.StatusOK, s.cache.Metrics(c.Request.Context()))
}

func (s *Server) handleClear(c *gin.Context) {
	s.cache.Clear(c.Request.Context())
	c.Status(http.StatusNoContent)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"entries": s.cache.Size(),
	})
}
