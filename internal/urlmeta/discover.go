package urlmeta

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

const discoverUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/108.0.0.0 Safari/537.36"

// DiscoverProfiles скачивает главную страницу и ищет в ней реальные ссылки
// на соцсети. Это обогащение: при любой ошибке вызывающий обязан уметь
// продолжить с эвристическими догадками.
func (r *Resolver) DiscoverProfiles(ctx context.Context, pageURL string) ([]SocialProfile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("urlmeta: failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", discoverUserAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("urlmeta: failed to fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("urlmeta: page fetch returned status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("urlmeta: failed to parse HTML: %w", err)
	}

	// Одна ссылка на платформу, первая найденная выигрывает
	seen := make(map[string]struct{})
	var profiles []SocialProfile

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok {
			return
		}
		platform := DetectPlatform(href)
		if platform == "" {
			return
		}
		if _, dup := seen[platform]; dup {
			return
		}
		seen[platform] = struct{}{}
		profiles = append(profiles, SocialProfile{
			Platform: platform,
			URL:      href,
			Username: usernameFromLink(href),
		})
	})

	r.logger.Debug("social profiles discovered",
		zap.String("url", pageURL),
		zap.Int("count", len(profiles)),
	)
	return profiles, nil
}

// usernameFromLink берет первый сегмент пути как handle профиля.
func usernameFromLink(link string) string {
	u, err := url.Parse(link)
	if err != nil {
		return ""
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		return ""
	}
	return strings.TrimPrefix(parts[0], "@")
}
