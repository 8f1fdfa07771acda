package service

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"net/url"
	"strings"

	"github.com/clickvault/internal/constants"
	"github.com/clickvault/internal/models"
	"github.com/clickvault/internal/repository"

	qrcode "github.com/skip2/go-qrcode"
)

const (
	linkCodeAlphabet   = "ABCDEFGHJKLMNPQRSTUVWXYZabcdefghjkmnpqrstuvwxyz23456789"
	linkCodeLength     = 6
	linkCodeMaxRetries = 8
	linkQRDefaultSize  = 256
	linkQRMaxSize      = 1024
)

// LinkService 短链服务
type LinkService struct {
	linkRepo  repository.LinkRepository
	userRepo  repository.UserRepository
	publicURL string
}

// NewLinkService 创建短链服务
func NewLinkService(linkRepo repository.LinkRepository, userRepo repository.UserRepository, publicURL string) *LinkService {
	return &LinkService{
		linkRepo:  linkRepo,
		userRepo:  userRepo,
		publicURL: strings.TrimRight(strings.TrimSpace(publicURL), "/"),
	}
}

// ShortenInput 创建短链参数
type ShortenInput struct {
	OwnerID     uint
	OriginalURL string
	Title       string
	Description string
}

// Shorten 创建短链，短码冲突时重试
func (s *LinkService) Shorten(input ShortenInput) (*models.Link, error) {
	target, err := normalizeTargetURL(input.OriginalURL)
	if err != nil {
		return nil, err
	}
	owner, err := s.userRepo.GetByID(input.OwnerID)
	if err != nil {
		return nil, err
	}
	if owner == nil {
		return nil, ErrUserNotFound
	}
	if owner.Status != constants.UserStatusActive {
		return nil, ErrUserDisabled
	}

	for i := 0; i < linkCodeMaxRetries; i++ {
		code, err := generateLinkCode()
		if err != nil {
			return nil, err
		}
		link := &models.Link{
			UserID:      owner.ID,
			Code:        code,
			OriginalURL: target,
			Title:       strings.TrimSpace(input.Title),
			Description: strings.TrimSpace(input.Description),
			IsActive:    true,
		}
		if err := s.linkRepo.Create(link); err != nil {
			if repository.IsUniqueViolation(err) {
				continue
			}
			return nil, err
		}
		return link, nil
	}
	return nil, ErrCodeExhausted
}

// ListByOwner 用户短链列表
func (s *LinkService) ListByOwner(ownerID uint, page, pageSize int, keyword string) ([]models.Link, int64, error) {
	return s.linkRepo.List(repository.LinkListFilter{
		Page:     page,
		PageSize: pageSize,
		UserID:   ownerID,
		Keyword:  keyword,
	})
}

// ListAll 管理端短链列表
func (s *LinkService) ListAll(filter repository.LinkListFilter) ([]models.Link, int64, error) {
	return s.linkRepo.List(filter)
}

// GetOwned 获取属于用户的短链
func (s *LinkService) GetOwned(ownerID, linkID uint) (*models.Link, error) {
	link, err := s.linkRepo.GetByID(linkID)
	if err != nil {
		return nil, err
	}
	if link == nil || link.UserID != ownerID {
		return nil, ErrLinkNotFound
	}
	return link, nil
}

// SetActive 启用/停用短链
func (s *LinkService) SetActive(ownerID, linkID uint, active bool) (*models.Link, error) {
	link, err := s.GetOwned(ownerID, linkID)
	if err != nil {
		return nil, err
	}
	link.IsActive = active
	if err := s.linkRepo.Update(link); err != nil {
		return nil, err
	}
	return link, nil
}

// ResolveForRedirect 按短码解析可跳转的短链
func (s *LinkService) ResolveForRedirect(code string) (*models.Link, error) {
	link, err := s.linkRepo.GetByCode(code)
	if err != nil {
		return nil, err
	}
	if link == nil || !link.IsActive {
		return nil, ErrLinkNotFound
	}
	return link, nil
}

// ShortURL 公开短链地址
func (s *LinkService) ShortURL(link *models.Link) string {
	if link == nil {
		return ""
	}
	return fmt.Sprintf("%s/s/%s", s.publicURL, link.Code)
}

// QRCode 生成短链二维码 PNG
func (s *LinkService) QRCode(ownerID, linkID uint, size int) ([]byte, error) {
	link, err := s.GetOwned(ownerID, linkID)
	if err != nil {
		return nil, err
	}
	if size <= 0 {
		size = linkQRDefaultSize
	}
	if size > linkQRMaxSize {
		size = linkQRMaxSize
	}
	return qrcode.Encode(s.ShortURL(link), qrcode.Medium, size)
}

func normalizeTargetURL(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ErrLinkURLInvalid
	}
	parsed, err := url.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrLinkURLInvalid, err)
	}
	scheme := strings.ToLower(parsed.Scheme)
	if (scheme != "http" && scheme != "https") || parsed.Host == "" {
		return "", fmt.Errorf("%w: only absolute http(s) urls are allowed", ErrLinkURLInvalid)
	}
	return parsed.String(), nil
}

func generateLinkCode() (string, error) {
	var builder strings.Builder
	builder.Grow(linkCodeLength)
	max := big.NewInt(int64(len(linkCodeAlphabet)))
	for i := 0; i < linkCodeLength; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		builder.WriteByte(linkCodeAlphabet[n.Int64()])
	}
	return builder.String(), nil
}
