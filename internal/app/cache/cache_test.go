package cache_test

import (
	"net"
	"strconv"
	"testing"
	"time"

	"eventmarket-backend/internal/app/cache"
	"eventmarket-backend/internal/app/config"
	"eventmarket-backend/internal/app/redis"
	"eventmarket-backend/internal/app/repository"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// newTestGateway поднимает шлюз кеша над miniredis
func newTestGateway(t *testing.T) (*cache.Gateway, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	host, portStr, err := net.SplitHostPort(mr.Addr())
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	client, err := redis.New(t.Context(), config.RedisConfig{
		Host:        host,
		Port:        port,
		DialTimeout: time.Second,
		ReadTimeout: time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return cache.New(client), mr
}

// TestGatewayRoundTrip запись и чтение сериализованного ответа
func TestGatewayRoundTrip(t *testing.T) {
	gw, _ := newTestGateway(t)

	gw.Set(t.Context(), "test:key", payload{Name: "studio", Count: 3}, cache.ListTTL)

	var got payload
	require.True(t, gw.Get(t.Context(), "test:key", &got))
	assert.Equal(t, "studio", got.Name)
	assert.Equal(t, 3, got.Count)
}

// TestGatewayMiss промах возвращает false и не трогает dest
func TestGatewayMiss(t *testing.T) {
	gw, _ := newTestGateway(t)

	var got payload
	assert.False(t, gw.Get(t.Context(), "no:such:key", &got))
	assert.Empty(t, got.Name)
}

// TestGatewayTTL запись исчезает после истечения TTL
func TestGatewayTTL(t *testing.T) {
	gw, mr := newTestGateway(t)

	gw.Set(t.Context(), "test:ttl", payload{Name: "short"}, cache.ListTTL)

	var got payload
	require.True(t, gw.Get(t.Context(), "test:ttl", &got))

	mr.FastForward(cache.ListTTL + time.Second)
	assert.False(t, gw.Get(t.Context(), "test:ttl", &got))
}

// TestListKeyCanonical одинаковые фильтры дают одинаковый ключ,
// разные страницы - разные ключи
func TestListKeyCanonical(t *testing.T) {
	a := cache.ListKey(repository.VendorFilter{Category: "venue", Page: 1, Limit: 20})
	b := cache.ListKey(repository.VendorFilter{Category: "venue", Page: 1, Limit: 20})
	assert.Equal(t, a, b)

	// Нормализация сводит нулевые page/limit к значениям по умолчанию
	c := cache.ListKey(repository.VendorFilter{Category: "venue"})
	assert.Equal(t, a, c)

	d := cache.ListKey(repository.VendorFilter{Category: "venue", Page: 2, Limit: 20})
	assert.NotEqual(t, a, d)

	e := cache.ListKey(repository.VendorFilter{Category: "caterer", Page: 1, Limit: 20})
	assert.NotEqual(t, a, e)
}

// TestListKeyEscapesFreeText "&" и "=" в свободном тексте не должны
// склеивать два разных фильтра в один ключ: без экранирования пара
// {City:"c&region=r"} и {City:"c", Region:"r&region="} давала
// одинаковую строку
func TestListKeyEscapesFreeText(t *testing.T) {
	a := cache.ListKey(repository.VendorFilter{City: "c&region=r"})
	b := cache.ListKey(repository.VendorFilter{City: "c", Region: "r&region="})
	assert.NotEqual(t, a, b)

	c := cache.ListKey(repository.VendorFilter{Search: "dj&sort=name.asc"})
	d := cache.ListKey(repository.VendorFilter{Search: "dj", SortBy: "name", SortOrder: "asc"})
	assert.NotEqual(t, c, d)

	// Экранирование детерминировано: одинаковый текст даёт одинаковый ключ
	assert.Equal(t, a, cache.ListKey(repository.VendorFilter{City: "c&region=r"}))
}

// TestInvalidateVendor чистятся detail-ключи и два фиксированных
// list-ключа; прочие списки доживают свой TTL
func TestInvalidateVendor(t *testing.T) {
	gw, _ := newTestGateway(t)
	ctx := t.Context()

	detailByID := cache.DetailKey("7")
	detailBySlug := cache.DetailKey("studio-x")
	defaultList := cache.ListKey(repository.VendorFilter{})
	categoryList := cache.ListKey(repository.VendorFilter{Category: "venue"})
	otherList := cache.ListKey(repository.VendorFilter{Category: "venue", Page: 2})

	for _, key := range []string{detailByID, detailBySlug, defaultList, categoryList, otherList} {
		gw.Set(ctx, key, payload{Name: key}, cache.ListTTL)
	}

	gw.InvalidateVendor(ctx, 7, "studio-x", "venue")

	var got payload
	assert.False(t, gw.Get(ctx, detailByID, &got))
	assert.False(t, gw.Get(ctx, detailBySlug, &got))
	assert.False(t, gw.Get(ctx, defaultList, &got))
	assert.False(t, gw.Get(ctx, categoryList, &got))

	// Вторая страница категории не входит в фиксированный набор
	assert.True(t, gw.Get(ctx, otherList, &got))
}

// TestGatewayRedisDown недоступный Redis не ломает чтение и запись
func TestGatewayRedisDown(t *testing.T) {
	gw, mr := newTestGateway(t)
	mr.Close()

	var got payload
	assert.False(t, gw.Get(t.Context(), "any", &got))
	gw.Set(t.Context(), "any", payload{Name: "x"}, cache.ListTTL)
	gw.Delete(t.Context(), "any")
}

// TestGatewayNil нулевой шлюз работает как постоянный промах
func TestGatewayNil(t *testing.T) {
	gw := cache.New(nil)

	var got payload
	assert.False(t, gw.Get(t.Context(), "any", &got))
	gw.Set(t.Context(), "any", payload{Name: "x"}, cache.DetailTTL)
	gw.Delete(t.Context(), "any")
}
