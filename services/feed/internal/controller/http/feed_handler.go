package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"girlfanz/pkg/logger"
	"girlfanz/pkg/middleware"
	"girlfanz/services/feed/internal/entity"
	"girlfanz/services/feed/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type FeedHandler struct {
	feedUseCase usecase.FeedUseCase
	identity    usecase.IdentityProvider
	logger      *logger.Logger
}

func NewFeedHandler(feedUseCase usecase.FeedUseCase, identity usecase.IdentityProvider, logger *logger.Logger) *FeedHandler {
	return &FeedHandler{
		feedUseCase: feedUseCase,
		identity:    identity,
		logger:      logger,
	}
}

type FeedPostResponse struct {
	ID            string    `json:"id"`
	CreatorID     string    `json:"creator_id"`
	Type          string    `json:"type"`
	Visibility    string    `json:"visibility"`
	ContentRating string    `json:"content_rating"`
	Access        string    `json:"access" enums:"full,locked"`
	Content       *string   `json:"content,omitempty"`
	PriceInCents  *int      `json:"price_in_cents,omitempty"`
	IsFreePreview bool      `json:"is_free_preview"`
	IsPinned      bool      `json:"is_pinned"`
	IsSponsored   bool      `json:"is_sponsored"`
	MediaCount    int       `json:"media_count"`
	MediaURLs     []string  `json:"media_urls,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

type FeedResponse struct {
	Posts      []FeedPostResponse `json:"posts"`
	NextCursor *string            `json:"next_cursor"`
	HasMore    bool               `json:"has_more"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// GetFeed godoc
// @Summary      Get feed
// @Description  Reverse-chronological feed. Posts the viewer has not unlocked are returned locked, without content or media URLs.
// @Tags         feed
// @Produce      json
// @Security     BearerAuth
// @Param        cursor query string false "next_cursor from the previous page"
// @Param        limit query int false "Page size (default 20, max 100)"
// @Success      200  {object}  FeedResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      503  {object}  ErrorResponse
// @Router       /feed [get]
func (h *FeedHandler) GetFeed(c *gin.Context) {
	viewer, ok := h.currentViewer(c)
	if !ok {
		return
	}

	page, err := h.feedUseCase.GetFeed(c.Request.Context(), viewer, c.Query("cursor"), queryLimit(c))
	if err != nil {
		h.handleFeedError(c, err)
		return
	}

	c.JSON(http.StatusOK, toFeedResponse(page))
}

// GetCreatorFeed godoc
// @Summary      Get creator feed
// @Description  Feed restricted to one creator's posts, with the same visibility rules as /feed
// @Tags         feed
// @Produce      json
// @Security     BearerAuth
// @Param        creator_id path string true "Creator ID"
// @Param        cursor query string false "next_cursor from the previous page"
// @Param        limit query int false "Page size (default 20, max 100)"
// @Success      200  {object}  FeedResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      503  {object}  ErrorResponse
// @Router       /creators/{creator_id}/feed [get]
func (h *FeedHandler) GetCreatorFeed(c *gin.Context) {
	creatorID := c.Param("creator_id")
	if _, err := uuid.Parse(creatorID); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "InvalidCreatorID",
			Message: "creator_id must be a UUID",
		})
		return
	}

	viewer, ok := h.currentViewer(c)
	if !ok {
		return
	}

	page, err := h.feedUseCase.GetCreatorFeed(c.Request.Context(), viewer, creatorID, c.Query("cursor"), queryLimit(c))
	if err != nil {
		h.handleFeedError(c, err)
		return
	}

	c.JSON(http.StatusOK, toFeedResponse(page))
}

func (h *FeedHandler) currentViewer(c *gin.Context) (entity.Viewer, bool) {
	viewer, err := h.identity.CurrentViewer(c.Request.Context(), c.GetString(middleware.ContextUserID))
	if err != nil {
		h.handleFeedError(c, err)
		return entity.Viewer{}, false
	}
	return viewer, true
}

// queryLimit returns 0 for a missing or malformed limit; the use case
// substitutes the default.
func queryLimit(c *gin.Context) int {
	if limitStr := c.Query("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil {
			return l
		}
	}
	return 0
}

func (h *FeedHandler) handleFeedError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, entity.ErrAgeVerificationRequired):
		c.JSON(http.StatusForbidden, ErrorResponse{
			Error:   "AgeVerificationRequired",
			Message: "Complete age verification to view the feed",
		})
	case errors.Is(err, entity.ErrInvalidCursor):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "InvalidCursor",
			Message: "Cursor is invalid, restart from the first page",
		})
	case errors.Is(err, entity.ErrStoreUnavailable):
		h.logger.Error("Feed store unavailable: %v", err)
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Error:   "FeedUnavailable",
			Message: "Feed is temporarily unavailable",
		})
	default:
		h.logger.Error("Failed to get feed: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "InternalServerError",
			Message: "Failed to get feed",
		})
	}
}

func toFeedResponse(page *entity.FeedPage) FeedResponse {
	posts := make([]FeedPostResponse, len(page.Items))
	for i, item := range page.Items {
		posts[i] = FeedPostResponse{
			ID:            item.ID,
			CreatorID:     item.CreatorID,
			Type:          string(item.Type),
			Visibility:    string(item.Visibility),
			ContentRating: string(item.ContentRating),
			Access:        string(item.Access),
			Content:       item.Content,
			PriceInCents:  item.PriceInCents,
			IsFreePreview: item.IsFreePreview,
			IsPinned:      item.IsPinned,
			IsSponsored:   item.IsSponsored,
			MediaCount:    item.MediaCount,
			MediaURLs:     item.MediaURLs,
			CreatedAt:     item.CreatedAt,
		}
	}

	return FeedResponse{
		Posts:      posts,
		NextCursor: page.NextCursor,
		HasMore:    page.HasMore,
	}
}
