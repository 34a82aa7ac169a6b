package amis

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sproutsell/agricredit/pkg/config"
	"github.com/sproutsell/agricredit/pkg/httputil"
	"github.com/sproutsell/agricredit/pkg/logger"
	"github.com/sproutsell/agricredit/pkg/redis"
)

const marketPageHTML = `<!DOCTYPE html>
<html>
<body>
<table class="market-prices">
<thead>
<tr><th>Commodity</th><th>Market</th><th>Unit</th><th>Wholesale</th><th>Retail</th><th>Date</th></tr>
</thead>
<tbody>
<tr><td>Dry Maize</td><td>Nairobi</td><td>90 Kg Bag</td><td>Ksh 4,500.00</td><td>Ksh 55.00</td><td>2026-08-28</td></tr>
<tr><td>Beans Rosecoco</td><td>Mombasa</td><td>90 Kg Bag</td><td>Ksh 9,000.00</td><td>Ksh 120.00</td><td>2026-08-28</td></tr>
<tr><td>Irish Potatoes</td><td>Eldoret</td><td>110 Kg Bag</td><td>-</td><td>Ksh 40.00</td><td>2026-08-27</td></tr>
<tr><td></td><td>Empty</td><td></td><td></td><td></td><td>2026-08-27</td></tr>
<tr><td>Bad Date</td><td>Kisumu</td><td>Bag</td><td>Ksh 100</td><td>Ksh 10</td><td>yesterday</td></tr>
</tbody>
</table>
</body>
</html>`

func TestParsePrices(t *testing.T) {
	prices, err := parsePrices(strings.NewReader(marketPageHTML))
	require.NoError(t, err)
	require.Len(t, prices, 3) // empty commodity and bad date rows skipped

	maize := prices[0]
	assert.Equal(t, "Dry Maize", maize.Commodity)
	assert.Equal(t, "Nairobi", maize.Market)
	assert.Equal(t, "90 Kg Bag", maize.Unit)
	assert.Equal(t, 4500.0, maize.Wholesale)
	assert.Equal(t, 55.0, maize.Retail)
	assert.Equal(t, time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC), maize.Date)

	potatoes := prices[2]
	assert.Equal(t, 0.0, potatoes.Wholesale) // dash cell
	assert.Equal(t, 40.0, potatoes.Retail)
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"Ksh 4,500.00", 4500},
		{"Ksh 55", 55},
		{"120.50", 120.5},
		{"-", 0},
		{"", 0},
		{"n/a", 0},
	}

	for _, tt := range tests {
		assert.Equalf(t, tt.want, parsePrice(tt.in), "input %q", tt.in)
	}
}

func TestFetchPrices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(marketPageHTML))
	}))
	defer server.Close()

	log := logger.NewNop()
	client := NewClient(config.MarketConfig{BaseURL: server.URL}, httputil.New(log).DisableRetry(), log)

	prices, err := client.FetchPrices(context.Background())
	require.NoError(t, err)
	assert.Len(t, prices, 3)
}

func TestServiceCachesPrices(t *testing.T) {
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write([]byte(marketPageHTML))
	}))
	defer server.Close()

	mr := miniredis.RunT(t)
	redisClient, err := redis.NewFromAddr(mr.Addr())
	require.NoError(t, err)
	defer redisClient.Close()

	log := logger.NewNop()
	client := NewClient(config.MarketConfig{BaseURL: server.URL, CacheTTL: 10 * time.Minute}, httputil.New(log).DisableRetry(), log)
	svc := NewService(client, redis.NewCache(redisClient, "agricredit"), log)

	ctx := context.Background()
	first, err := svc.Prices(ctx)
	require.NoError(t, err)
	second, err := svc.Prices(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, hits) // second call served from cache
	assert.Equal(t, len(first), len(second))
}
