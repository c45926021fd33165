package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/spigell/closai/internal/ai"
	"github.com/spigell/closai/internal/catalog"
	"github.com/spigell/closai/internal/sizing"
	"github.com/spigell/closai/internal/wardrobe"
)

type response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// ProfileData is the body of GET /api/profile.
type ProfileData struct {
	Items     []wardrobe.Item    `json:"items"`
	UserStats wardrobe.UserStats `json:"userStats"`
	IdealSize sizing.Profile     `json:"idealSize"`
}

type recommendRequest struct {
	SizeTable *sizing.Table `json:"sizeTable"`
	Category  string        `json:"category"`
}

// RecommendData is the body of POST /api/recommend. Size is null when no size
// could be recommended.
type RecommendData struct {
	Size     *string           `json:"size"`
	Category string            `json:"category"`
	Scores   []sizing.RowScore `json:"scores"`
}

type summaryRequest struct {
	Reviews []string `json:"reviews"`
}

func ok(c *gin.Context, data any) {
	c.JSON(http.StatusOK, response{Success: true, Data: data})
}

func fail(c *gin.Context, status int, err error) {
	c.JSON(status, response{Success: false, Error: err.Error()})
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// getProfile returns the wardrobe with its ideal-size profile.
// GET /api/profile
func (s *Server) getProfile(c *gin.Context) {
	snap, profile, err := s.deps.Store.IdealSize(c.Request.Context())
	if err != nil {
		s.logger.Error("loading wardrobe", zap.Error(err))
		fail(c, http.StatusInternalServerError, err)
		return
	}
	if profile == nil {
		profile = sizing.Profile{}
	}

	ok(c, ProfileData{Items: snap.Items, UserStats: snap.UserStats, IdealSize: profile})
}

// postProfile applies a wardrobe action.
// POST /api/profile
func (s *Server) postProfile(c *gin.Context) {
	var action wardrobe.Action
	if err := c.ShouldBindJSON(&action); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}

	snap, err := s.deps.Store.Apply(c.Request.Context(), action)
	switch {
	case err == nil:
		ok(c, snap)
	case errors.Is(err, wardrobe.ErrUnknownAction),
		errors.Is(err, wardrobe.ErrInvalidItem),
		errors.Is(err, wardrobe.ErrInvalidFitStatus):
		fail(c, http.StatusBadRequest, err)
	default:
		s.logger.Error("updating wardrobe", zap.String("action", string(action.Type)), zap.Error(err))
		fail(c, http.StatusInternalServerError, err)
	}
}

// recommend picks a size from the posted table using the stored profile.
// POST /api/recommend
func (s *Server) recommend(c *gin.Context) {
	var req recommendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}

	_, profile, err := s.deps.Store.IdealSize(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}

	category := string(wardrobe.Category(req.Category).OrOther())
	data := RecommendData{Category: category, Scores: sizing.Score(req.SizeTable, profile, category)}
	if size, found := sizing.Best(data.Scores); found {
		data.Size = &size
	}
	if data.Scores == nil {
		data.Scores = []sizing.RowScore{}
	}
	ok(c, data)
}

// fitRecommend asks the narrative provider how the size will fit.
// POST /api/fit-recommend
func (s *Server) fitRecommend(c *gin.Context) {
	if s.deps.Narrator == nil {
		fail(c, http.StatusServiceUnavailable, ai.ErrDisabled)
		return
	}

	var req ai.FitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	if strings.TrimSpace(req.RecommendedSize) == "" {
		fail(c, http.StatusBadRequest, errors.New("recommendedSize is required"))
		return
	}

	narrative, err := s.deps.Narrator.Narrate(c.Request.Context(), &req)
	if err != nil {
		s.logger.Warn("fit narrative failed", zap.Error(err))
		fail(c, http.StatusBadGateway, err)
		return
	}
	ok(c, narrative)
}

// summary condenses reviews, falling back to keyword extraction without AI.
// POST /api/summary
func (s *Server) summary(c *gin.Context) {
	var req summaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}

	if s.deps.Summarizer == nil {
		ok(c, ai.FallbackSummary(req.Reviews))
		return
	}

	summary, err := s.deps.Summarizer.Summarize(c.Request.Context(), req.Reviews)
	if err != nil {
		s.logger.Warn("review summary failed", zap.Error(err))
		summary = ai.FallbackSummary(req.Reviews)
	}
	ok(c, summary)
}

// advise fetches a product and recommends a size for it.
// GET /api/advise?url=
func (s *Server) advise(c *gin.Context) {
	if s.deps.Advisor == nil {
		fail(c, http.StatusServiceUnavailable, errors.New("catalog is not configured"))
		return
	}

	ref := strings.TrimSpace(c.Query("url"))
	if ref == "" {
		fail(c, http.StatusBadRequest, errors.New("url is required"))
		return
	}

	advice, err := s.deps.Advisor.Advise(c.Request.Context(), ref)
	switch {
	case err == nil:
		ok(c, advice)
	case errors.Is(err, catalog.ErrInvalidRef):
		fail(c, http.StatusBadRequest, err)
	case errors.Is(err, catalog.ErrNoData):
		fail(c, http.StatusNotFound, err)
	case errors.Is(err, wardrobe.ErrUnreadable):
		fail(c, http.StatusInternalServerError, err)
	default:
		s.logger.Warn("advice failed", zap.String("ref", ref), zap.Error(err))
		fail(c, http.StatusBadGateway, err)
	}
}
