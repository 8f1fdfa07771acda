package service

import (
	"strings"

	"github.com/clickvault/internal/constants"
)

var botMarkers = []string{"bot", "crawler", "spider", "slurp", "curl", "wget", "python-requests", "headless", "facebookexternalhit", "preview"}

// ClassifyUserAgent 从 User-Agent 粗分设备与浏览器
func ClassifyUserAgent(userAgent string) (device string, browser string) {
	ua := strings.ToLower(strings.TrimSpace(userAgent))
	if ua == "" {
		return constants.DeviceUnknown, constants.BrowserOther
	}
	return classifyDevice(ua), classifyBrowser(ua)
}

func classifyDevice(ua string) string {
	for _, marker := range botMarkers {
		if strings.Contains(ua, marker) {
			return constants.DeviceBot
		}
	}
	switch {
	case strings.Contains(ua, "ipad"), strings.Contains(ua, "tablet"),
		strings.Contains(ua, "android") && !strings.Contains(ua, "mobile"):
		return constants.DeviceTablet
	case strings.Contains(ua, "mobi"), strings.Contains(ua, "iphone"), strings.Contains(ua, "android"):
		return constants.DeviceMobile
	case strings.Contains(ua, "windows"), strings.Contains(ua, "macintosh"), strings.Contains(ua, "x11"), strings.Contains(ua, "linux"):
		return constants.DeviceDesktop
	default:
		return constants.DeviceUnknown
	}
}

// 顺序有意义：Edge/Opera 的 UA 同时包含 chrome，Chrome 的 UA 同时包含 safari
func classifyBrowser(ua string) string {
	switch {
	case strings.Contains(ua, "edg/"), strings.Contains(ua, "edge/"):
		return constants.BrowserEdge
	case strings.Contains(ua, "opr/"), strings.Contains(ua, "opera"):
		return constants.BrowserOpera
	case strings.Contains(ua, "firefox/"), strings.Contains(ua, "fxios/"):
		return constants.BrowserFirefox
	case strings.Contains(ua, "chrome/"), strings.Contains(ua, "crios/"):
		return constants.BrowserChrome
	case strings.Contains(ua, "safari/"):
		return constants.BrowserSafari
	default:
		return constants.BrowserOther
	}
}
