package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"assettrack/internal/common"
	"assettrack/internal/wire"
)

func errorResponse(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"error": msg})
}

// fail maps service errors to HTTP statuses. Unrecognized errors are logged
// server-side and surfaced as an opaque 500.
func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, common.ErrValidation), errors.Is(err, common.ErrUnknownTag):
		errorResponse(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, common.ErrNotFound):
		errorResponse(c, http.StatusNotFound, "not found")
	case errors.Is(err, common.ErrAuthRequired):
		errorResponse(c, http.StatusUnauthorized, "invalid credentials")
	default:
		h.log.Error(c.Request.Context(), "request handling failed", "error", err)
		errorResponse(c, http.StatusInternalServerError, "internal error")
	}
}

// Root lists the API surface so a handheld pointed at the wrong path gets
// something navigable back.
func (h *Handler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"register":   "/auth/register",
		"login":      "/auth/login",
		"asset-tags": "/asset-tags",
		"batch":      "/pairs/batch",
		"search":     "/pairs/search",
		"replace":    "/pairs/replace",
		"health":     "/health",
	})
}

// Health is the unauthenticated liveness endpoint the clients probe for
// connectivity detection.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) Register(c *gin.Context) {
	var req wire.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "username and password are required")
		return
	}

	user, err := h.users.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, wire.RegisterResponse{Username: user.Username})
}

func (h *Handler) Login(c *gin.Context) {
	var req wire.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "username and password are required")
		return
	}

	session, err := h.users.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, wire.LoginResponse{
		Token:     session.Token,
		Username:  session.Username,
		ExpiresIn: session.ExpiresIn,
	})
}

// ListAssetTags returns tags changed strictly after the optional since
// parameter (RFC 3339). Without it the full registry is returned.
func (h *Handler) ListAssetTags(c *gin.Context) {
	var since time.Time
	if v := c.Query("since"); v != "" {
		parsed, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			errorResponse(c, http.StatusBadRequest, "since must be an RFC 3339 timestamp")
			return
		}
		since = parsed
	}

	tags, err := h.registry.ListTagsSince(c.Request.Context(), since)
	if err != nil {
		h.fail(c, err)
		return
	}

	records := make([]wire.AssetTagRecord, 0, len(tags))
	for _, tag := range tags {
		records = append(records, wire.AssetTagRecord{
			Tag:        tag.Tag,
			Status:     tag.Status,
			LastSerial: tag.LastSerial,
			UpdatedAt:  tag.UpdatedAt,
		})
	}
	c.JSON(http.StatusOK, records)
}

func (h *Handler) RegisterAssetTag(c *gin.Context) {
	var req wire.RegisterTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "tag is required")
		return
	}

	if err := h.registry.RegisterTag(c.Request.Context(), req.Tag); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// MergeBatch applies one uploaded batch. The response array is positionally
// aligned with the request; per-item refusals are carried in the items, not
// in the HTTP status.
func (h *Handler) MergeBatch(c *gin.Context) {
	var items []wire.BatchItem
	if err := c.ShouldBindJSON(&items); err != nil {
		errorResponse(c, http.StatusBadRequest, "body must be an array of batch items")
		return
	}

	results, err := h.registry.MergeBatch(c.Request.Context(), items, c.GetString(ctxUsername))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, results)
}

func (h *Handler) Search(c *gin.Context) {
	result, err := h.registry.Search(c.Request.Context(), c.Query("asset_tag"), c.Query("serial"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) Replace(c *gin.Context) {
	var req wire.ReplaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "searchBy and value are required")
		return
	}

	resp, err := h.registry.Replace(c.Request.Context(), req, c.GetString(ctxUsername))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
