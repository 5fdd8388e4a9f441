package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/yourorg/qa-platform/internal/apperr"
	"github.com/yourorg/qa-platform/internal/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const tagByNamePrefix = "/tag/getTagByName/"

// TagService is the tag query surface used by TagHandler
type TagService interface {
	GetTagCountMap(ctx context.Context) (*model.TagCountMap, error)
	GetTagByName(ctx context.Context, name string) (*model.Tag, error)
}

// TagHandler handles tag-related HTTP requests
type TagHandler struct {
	tagService TagService
	logger     *zap.Logger
}

// NewTagHandler creates a new tag handler
func NewTagHandler(tagService TagService, logger *zap.Logger) *TagHandler {
	return &TagHandler{
		tagService: tagService,
		logger:     logger,
	}
}

// GetTagsWithQuestionNumber lists every tag with its question count
// GET /tag/getTagsWithQuestionNumber
func (h *TagHandler) GetTagsWithQuestionNumber(c *gin.Context) {
	counts, err := h.tagService.GetTagCountMap(c.Request.Context())
	if err == nil && counts == nil {
		err = apperr.New(apperr.KindAggregation, "Error while fetching tag count map")
	}
	if err != nil {
		h.logger.Error("Failed to get tag count map", zap.Error(err), zap.Stringer("kind", apperr.KindOf(err)))
		sendText(c, http.StatusInternalServerError, "Error when fetching tag count map: "+apperr.MessageOf(err))
		return
	}

	c.JSON(http.StatusOK, counts.Counts())
}

// GetTagByName handles retrieving a single tag
// GET /tag/getTagByName/{name}
func (h *TagHandler) GetTagByName(c *gin.Context) {
	name := c.Param("name")

	tag, err := h.tagService.GetTagByName(c.Request.Context(), name)
	if (err == nil && tag == nil) || apperr.Is(err, apperr.KindNotFound) {
		sendTagNotFound(c, name)
		return
	}
	if err != nil {
		h.logger.Error("Failed to get tag", zap.Error(err), zap.String("name", name))
		if msg := apperr.MessageOf(err); msg != "" {
			sendText(c, http.StatusInternalServerError, "Error when fetching tag: "+msg)
		} else {
			sendText(c, http.StatusInternalServerError, "Error when fetching tag")
		}
		return
	}

	c.JSON(http.StatusOK, tag)
}

func sendTagNotFound(c *gin.Context, name string) {
	sendText(c, http.StatusNotFound, "Tag with name \""+name+"\" not found")
}

// NoRoute answers paths the router cannot match. Tag lookups whose name
// cannot be routed (an encoded "/", an empty name) get the tag 404 body.
func (h *TagHandler) NoRoute(c *gin.Context) {
	if name, ok := strings.CutPrefix(c.Request.URL.Path, tagByNamePrefix); ok {
		sendTagNotFound(c, name)
		return
	}
	sendText(c, http.StatusNotFound, "404 page not found")
}

// sendText writes a plain text body
func sendText(c *gin.Context, statusCode int, body string) {
	c.String(statusCode, "%s", body)
}
