package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"eventmarket-backend/internal/app/redis"
	"eventmarket-backend/internal/app/repository"

	"github.com/sirupsen/logrus"
)

const (
	// TTL ответов каталога и карточки поставщика
	ListTTL   = 300 * time.Second
	DetailTTL = 600 * time.Second

	listPrefix   = "vendors:list:"
	detailPrefix = "vendors:detail:"
)

// Gateway кеш-прослойка (cache-aside) над Redis. Недоступность кеша
// никогда не роняет запрос: ошибки логируются, чтение уходит напрямую в БД.
type Gateway struct {
	client *redis.Client
}

func New(client *redis.Client) *Gateway {
	return &Gateway{client: client}
}

// ListKey сериализует нормализованный фильтр в канонический ключ.
// Порядок полей фиксирован, поэтому одинаковые запросы дают одинаковый ключ.
// Свободный текст экранируется: "&" или "=" внутри поискового запроса
// не должны склеивать два разных фильтра в один ключ.
func ListKey(f repository.VendorFilter) string {
	f = f.Normalize()
	return fmt.Sprintf(
		"%scat=%s&city=%s&region=%s&min=%s&max=%s&ver=%s&feat=%s&q=%s&sort=%s.%s&page=%d&limit=%d",
		listPrefix,
		f.Category,
		url.QueryEscape(f.City), url.QueryEscape(f.Region),
		formatFloat(f.MinPrice), formatFloat(f.MaxPrice),
		formatBool(f.Verified), formatBool(f.Featured),
		url.QueryEscape(f.Search), f.SortBy, f.SortOrder, f.Page, f.Limit,
	)
}

// DetailKey ключ карточки по значению поиска (id или slug)
func DetailKey(lookup string) string {
	return detailPrefix + lookup
}

// Get читает и десериализует закешированный ответ.
// false означает промах или недоступность кеша - различие для читателя неважно.
func (g *Gateway) Get(ctx context.Context, key string, dest interface{}) bool {
	if g == nil || g.client == nil {
		return false
	}

	data, err := g.client.GetPayload(ctx, key)
	if err != nil {
		if err != redis.ErrCacheMiss {
			logrus.Warnf("cache get failed for %s: %v", key, err)
		}
		return false
	}

	if err := json.Unmarshal(data, dest); err != nil {
		logrus.Warnf("cache payload corrupted for %s: %v", key, err)
		return false
	}
	return true
}

// Set сериализует и сохраняет ответ с TTL; ошибки проглатываются
func (g *Gateway) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if g == nil || g.client == nil {
		return
	}

	data, err := json.Marshal(value)
	if err != nil {
		logrus.Warnf("cache marshal failed for %s: %v", key, err)
		return
	}
	if err := g.client.SetPayload(ctx, key, data, ttl); err != nil {
		logrus.Warnf("cache set failed for %s: %v", key, err)
	}
}

// Delete удаляет ключи; ошибки проглатываются
func (g *Gateway) Delete(ctx context.Context, keys ...string) {
	if g == nil || g.client == nil {
		return
	}
	if err := g.client.DeletePayload(ctx, keys...); err != nil {
		logrus.Warnf("cache delete failed: %v", err)
	}
}

// InvalidateVendor чистит кеш-след записи после изменения поставщика:
// оба detail-ключа и два фиксированных list-ключа (первая страница каталога
// по умолчанию и первая страница его категории). Остальные list-ключи
// не перечислить без индекса по ключам - они доживают свой TTL,
// поэтому списки могут отдавать устаревший ответ до 300 секунд.
func (g *Gateway) InvalidateVendor(ctx context.Context, vendorID uint, slug, category string) {
	keys := []string{
		DetailKey(strconv.FormatUint(uint64(vendorID), 10)),
		DetailKey(slug),
		ListKey(repository.VendorFilter{}),
		ListKey(repository.VendorFilter{Category: category}),
	}
	g.Delete(ctx, keys...)
}

func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func formatBool(v *bool) string {
	if v == nil {
		return ""
	}
	return strconv.FormatBool(*v)
}
