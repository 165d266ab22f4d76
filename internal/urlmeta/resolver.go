package urlmeta

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"net/http"

	"github.com/xela07ax/brandpulse/internal/domain"
	"go.uber.org/zap"
)

// SocialProfile — предполагаемый профиль бренда в соцсети.
// Данные эвристические: потребители не должны считать их верифицированными.
type SocialProfile struct {
	Platform      string `json:"platform"`
	URL           string `json:"url"`
	Username      string `json:"username"`
	ProfilePicURL string `json:"profile_pic_url,omitempty"`
}

// Metadata — результат разбора пользовательского ввода.
// Скриншот и фавиконка — чистое URL-шаблонирование внешних сервисов,
// никаких сетевых вызовов на этом этапе.
type Metadata struct {
	NormalizedURL  string          `json:"normalized_url"`
	Domain         string          `json:"domain"`
	FaviconURL     string          `json:"favicon_url"`
	ScreenshotURL  string          `json:"screenshot_url"`
	SocialProfiles []SocialProfile `json:"social_profiles"`
}

type Resolver struct {
	screenshotKey string
	client        *http.Client
	logger        *zap.Logger
}

func NewResolver(screenshotKey string, logger *zap.Logger) *Resolver {
	return &Resolver{
		screenshotKey: screenshotKey,
		client:        &http.Client{Timeout: 10 * time.Second},
		logger:        logger.Named("urlmeta"),
	}
}

// Normalize приводит сырой ввод к абсолютному URL.
// Правило: нет схемы — подставляем https://. Хост обязан содержать точку,
// поэтому "http://localhost" отклоняется наравне с мусором.
func Normalize(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", domain.ErrInvalidURL
	}
	if !strings.HasPrefix(s, "http://") && !strings.HasPrefix(s, "https://") {
		s = "https://" + s
	}

	u, err := url.Parse(s)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrInvalidURL, err)
	}
	host := u.Hostname()
	if host == "" || !strings.Contains(host, ".") {
		return "", domain.ErrInvalidURL
	}
	return u.String(), nil
}

// DomainOf извлекает человекочитаемый домен (без ведущего www.).
func DomainOf(normalizedURL string) string {
	u, err := url.Parse(normalizedURL)
	if err != nil || u.Hostname() == "" {
		// best-effort: срезаем схему и путь руками
		s := strings.TrimPrefix(strings.TrimPrefix(normalizedURL, "https://"), "http://")
		s = strings.TrimPrefix(s, "www.")
		if i := strings.IndexByte(s, '/'); i >= 0 {
			s = s[:i]
		}
		if s == "" {
			return "website"
		}
		return s
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}

// Resolve валидирует ввод и собирает производные метаданные.
func (r *Resolver) Resolve(raw string) (*Metadata, error) {
	normalized, err := Normalize(raw)
	if err != nil {
		return nil, fmt.Errorf("urlmeta: %w", err)
	}

	u, _ := url.Parse(normalized)
	domainName := strings.TrimPrefix(u.Hostname(), "www.")

	return &Metadata{
		NormalizedURL:  normalized,
		Domain:         domainName,
		FaviconURL:     fmt.Sprintf("https://www.google.com/s2/favicons?domain=%s&sz=128", u.Hostname()),
		ScreenshotURL:  r.screenshotURL(normalized),
		SocialProfiles: GuessProfiles(domainName),
	}, nil
}

// screenshotURL шаблонирует запрос к рендер-сервису скриншотов.
func (r *Resolver) screenshotURL(target string) string {
	params := url.Values{}
	params.Set("access_key", r.screenshotKey)
	params.Set("url", target)
	params.Set("width", "1200")
	params.Set("height", "800")
	params.Set("format", "jpeg")
	params.Set("quality", "85")
	return "https://api.apiflash.com/v1/urltoimage?" + params.Encode()
}

// GuessProfiles строит best-effort догадки о профилях бренда по первой
// метке домена (acme.com -> @acme). Пустой список — валидный результат.
func GuessProfiles(domainName string) []SocialProfile {
	handle := domainName
	if i := strings.IndexByte(handle, '.'); i >= 0 {
		handle = handle[:i]
	}
	if handle == "" {
		return nil
	}

	return []SocialProfile{
		{
			Platform:      "instagram",
			URL:           "https://instagram.com/" + handle,
			Username:      handle,
			ProfilePicURL: fmt.Sprintf("https://unavatar.io/instagram/%s?fallback=false", handle),
		},
		{
			Platform:      "twitter",
			URL:           "https://twitter.com/" + handle,
			Username:      handle,
			ProfilePicURL: fmt.Sprintf("https://unavatar.io/twitter/%s?fallback=false", handle),
		},
	}
}

// DetectPlatform определяет соцсеть по ссылке. Пустая строка — не соцсеть.
func DetectPlatform(link string) string {
	l := strings.ToLower(link)
	switch {
	case strings.Contains(l, "instagram.com"):
		return "instagram"
	case strings.Contains(l, "twitter.com"):
		return "twitter"
	case strings.Contains(l, "x.com"):
		return "x"
	case strings.Contains(l, "facebook.com"), strings.Contains(l, "fb.com"):
		return "facebook"
	case strings.Contains(l, "linkedin.com"):
		return "linkedin"
	case strings.Contains(l, "youtube.com"), strings.Contains(l, "youtu.be"):
		return "youtube"
	default:
		return ""
	}
}
