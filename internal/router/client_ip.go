package router

import (
	"fmt"
	"strings"

	"github.com/clickvault/internal/config"

	"github.com/gin-gonic/gin"
)

// 访客指纹由客户端 IP 派生，转发头只在来自可信代理时采用
func configureClientIP(r *gin.Engine, cfg config.ServerConfig) error {
	var proxies []string
	for _, item := range cfg.TrustedProxies {
		if item = strings.TrimSpace(item); item != "" {
			proxies = append(proxies, item)
		}
	}
	platform, err := trustedPlatformHeader(cfg.TrustedPlatform)
	if err != nil {
		return err
	}
	r.ForwardedByClientIP = true
	r.RemoteIPHeaders = []string{"X-Forwarded-For", "X-Real-IP"}
	if err := r.SetTrustedProxies(proxies); err != nil {
		return fmt.Errorf("trusted proxies: %w", err)
	}
	r.TrustedPlatform = platform
	return nil
}

func trustedPlatformHeader(name string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "":
		return "", nil
	case "cloudflare":
		return gin.PlatformCloudflare, nil
	case "google_app_engine", "gae":
		return gin.PlatformGoogleAppEngine, nil
	default:
		return "", fmt.Errorf("unknown trusted platform %q", name)
	}
}
