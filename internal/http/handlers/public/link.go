package public

import (
	"net/http"
	"strconv"

	handlershared "github.com/clickvault/internal/http/handlers/shared"
	"github.com/clickvault/internal/http/response"
	"github.com/clickvault/internal/models"
	"github.com/clickvault/internal/service"

	"github.com/gin-gonic/gin"
)

// CreateLinkRequest 创建短链请求
type CreateLinkRequest struct {
	OriginalURL string `json:"original_url" binding:"required"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// UpdateLinkStatusRequest 启停短链请求
type UpdateLinkStatusRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

func (h *Handler) linkView(link *models.Link) gin.H {
	return gin.H{
		"id":            link.ID,
		"code":          link.Code,
		"short_url":     h.LinkService.ShortURL(link),
		"original_url":  link.OriginalURL,
		"title":         link.Title,
		"description":   link.Description,
		"is_active":     link.IsActive,
		"total_clicks":  link.TotalClicks,
		"unique_clicks": link.UniqueClicks,
		"total_earned":  link.TotalEarned,
		"created_at":    link.CreatedAt,
	}
}

// CreateLink 创建短链
func (h *Handler) CreateLink(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	var req CreateLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	link, err := h.LinkService.Shorten(service.ShortenInput{
		OwnerID:     userID,
		OriginalURL: req.OriginalURL,
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		respondMappedError(c, err, handlershared.CommonErrorRules, response.CodeInternal, "error.link_create_failed")
		return
	}
	response.Success(c, h.linkView(link))
}

// ListMyLinks 我的短链
func (h *Handler) ListMyLinks(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	page, pageSize := handlershared.PageQuery(c)

	links, total, err := h.LinkService.ListByOwner(userID, page, pageSize, c.Query("keyword"))
	if err != nil {
		respondError(c, response.CodeInternal, "error.link_fetch_failed", err)
		return
	}
	items := make([]gin.H, 0, len(links))
	for i := range links {
		items = append(items, h.linkView(&links[i]))
	}
	response.SuccessWithPage(c, items, response.BuildPagination(page, pageSize, total))
}

// GetMyLink 短链详情
func (h *Handler) GetMyLink(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	linkID, ok := parseLinkID(c)
	if !ok {
		return
	}
	link, err := h.LinkService.GetOwned(userID, linkID)
	if err != nil {
		respondMappedError(c, err, handlershared.CommonErrorRules, response.CodeInternal, "error.link_fetch_failed")
		return
	}
	response.Success(c, h.linkView(link))
}

// UpdateMyLinkStatus 启用/停用短链
func (h *Handler) UpdateMyLinkStatus(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	linkID, ok := parseLinkID(c)
	if !ok {
		return
	}
	var req UpdateLinkStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	link, err := h.LinkService.SetActive(userID, linkID, *req.IsActive)
	if err != nil {
		respondMappedError(c, err, handlershared.CommonErrorRules, response.CodeInternal, "error.link_update_failed")
		return
	}
	response.Success(c, h.linkView(link))
}

// GetMyLinkQRCode 短链二维码（PNG）
func (h *Handler) GetMyLinkQRCode(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	linkID, ok := parseLinkID(c)
	if !ok {
		return
	}
	size, _ := strconv.Atoi(c.DefaultQuery("size", "0"))
	png, err := h.LinkService.QRCode(userID, linkID, size)
	if err != nil {
		respondMappedError(c, err, handlershared.CommonErrorRules, response.CodeInternal, "error.qr_generate_failed")
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}
