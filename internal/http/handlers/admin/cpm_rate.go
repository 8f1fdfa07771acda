package admin

import (
	"strconv"
	"strings"

	handlershared "github.com/clickvault/internal/http/handlers/shared"
	"github.com/clickvault/internal/http/response"
	"github.com/clickvault/internal/repository"
	"github.com/clickvault/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

var cpmRateErrorRules = []handlershared.MappedError{
	{Target: service.ErrCountryCodeInvalid, Code: response.CodeBadRequest, Key: "error.country_code_invalid"},
	{Target: service.ErrCpmRateInvalid, Code: response.CodeBadRequest, Key: "error.cpm_rate_invalid"},
	{Target: service.ErrCpmRateExists, Code: response.CodeConflict, Key: "error.cpm_rate_exists"},
	{Target: service.ErrCpmRateNotFound, Code: response.CodeNotFound, Key: "error.cpm_rate_not_found"},
}

type createCpmRateRequest struct {
	CountryCode string  `json:"country_code" binding:"required"`
	CountryName string  `json:"country_name" binding:"required"`
	Tier        int     `json:"tier" binding:"required"`
	Rate        string  `json:"rate" binding:"required"`
	UserCPM     *string `json:"user_cpm"`
	IsActive    *bool   `json:"is_active"`
}

type updateCpmRateRequest struct {
	Rate string `json:"rate" binding:"required"`
	Note string `json:"note"`
}

type cpmRateStatusRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

func parseRateDecimal(raw string) (decimal.Decimal, bool) {
	value, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, false
	}
	return value, true
}

// ListCpmRates 费率表
func (h *Handler) ListCpmRates(c *gin.Context) {
	tier, _ := strconv.Atoi(c.Query("tier"))
	onlyActive := strings.EqualFold(strings.TrimSpace(c.Query("active")), "true")
	rates, err := h.CpmRateService.ListRates(repository.CpmRateListFilter{
		Tier:       tier,
		OnlyActive: onlyActive,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.cpm_rate_fetch_failed", err)
		return
	}
	response.Success(c, rates)
}

// QuoteCpmRate 预览国家当前生效费率
func (h *Handler) QuoteCpmRate(c *gin.Context) {
	quote, err := h.CpmRateService.ResolveRate(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondMappedError(c, err, cpmRateErrorRules, response.CodeInternal, "error.cpm_rate_fetch_failed")
		return
	}
	response.Success(c, quote)
}

// CreateCpmRate 新增国家费率
func (h *Handler) CreateCpmRate(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	var req createCpmRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	rate, ok := parseRateDecimal(req.Rate)
	if !ok {
		respondError(c, response.CodeBadRequest, "error.cpm_rate_invalid", nil)
		return
	}
	input := service.CreateRateInput{
		CountryCode: req.CountryCode,
		CountryName: req.CountryName,
		Tier:        req.Tier,
		Rate:        rate,
		IsActive:    true,
	}
	if req.IsActive != nil {
		input.IsActive = *req.IsActive
	}
	if req.UserCPM != nil && strings.TrimSpace(*req.UserCPM) != "" {
		userCPM, parsed := parseRateDecimal(*req.UserCPM)
		if !parsed {
			respondError(c, response.CodeBadRequest, "error.cpm_rate_invalid", nil)
			return
		}
		input.UserCPM = &userCPM
	}

	created, err := h.CpmRateService.CreateRate(c.Request.Context(), adminID, input)
	if err != nil {
		respondMappedError(c, err, cpmRateErrorRules, response.CodeInternal, "error.cpm_rate_save_failed")
		return
	}
	response.Success(c, created)
}

// UpdateCpmRate 调整国家费率（写入变更历史）
func (h *Handler) UpdateCpmRate(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	var req updateCpmRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	rate, ok := parseRateDecimal(req.Rate)
	if !ok {
		respondError(c, response.CodeBadRequest, "error.cpm_rate_invalid", nil)
		return
	}
	updated, err := h.CpmRateService.UpdateRate(c.Request.Context(), adminID, c.Param("code"), rate, req.Note)
	if err != nil {
		respondMappedError(c, err, cpmRateErrorRules, response.CodeInternal, "error.cpm_rate_save_failed")
		return
	}
	response.Success(c, updated)
}

// UpdateCpmRateStatus 启用/停用费率
func (h *Handler) UpdateCpmRateStatus(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	var req cpmRateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	updated, err := h.CpmRateService.SetRateActive(c.Request.Context(), adminID, c.Param("code"), *req.IsActive)
	if err != nil {
		respondMappedError(c, err, cpmRateErrorRules, response.CodeInternal, "error.cpm_rate_save_failed")
		return
	}
	response.Success(c, updated)
}

// VerifyCpmRate 标记费率已复核
func (h *Handler) VerifyCpmRate(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	updated, err := h.CpmRateService.VerifyRate(c.Request.Context(), adminID, c.Param("code"))
	if err != nil {
		respondMappedError(c, err, cpmRateErrorRules, response.CodeInternal, "error.cpm_rate_save_failed")
		return
	}
	response.Success(c, updated)
}

// ListCpmRateHistory 费率变更历史
func (h *Handler) ListCpmRateHistory(c *gin.Context) {
	page, pageSize := parsePageQuery(c)
	rows, total, err := h.CpmRateService.ListRateHistory(repository.CpmRateHistoryFilter{
		Page:        page,
		PageSize:    pageSize,
		CountryCode: strings.ToUpper(strings.TrimSpace(c.Query("country_code"))),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.cpm_rate_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, rows, response.BuildPagination(page, pageSize, total))
}

// SeedCpmRates 用内置费率表补齐缺失国家
func (h *Handler) SeedCpmRates(c *gin.Context) {
	inserted, err := h.CpmRateService.SeedFromStatic(c.Request.Context())
	if err != nil {
		respondError(c, response.CodeInternal, "error.cpm_rate_save_failed", err)
		return
	}
	response.Success(c, gin.H{"inserted": inserted})
}
