package platform_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"datafeed/internal/config"
	"datafeed/internal/httpx/ratelimit"
	"datafeed/internal/platform"
	"datafeed/internal/standard"
)

func TestNewRegistryRegistersEnabledVendors(t *testing.T) {
	t.Parallel()

	// Arrange
	cfg := config.Default()
	cfg.Tiingo.Enabled = false

	// Act
	reg, err := platform.NewRegistry(cfg)

	// Assert
	require.NoError(t, err)
	require.Equal(t, []string{"cboe", "ecb", "fmp"}, reg.Names())
	p, err := reg.Provider("fmp")
	require.NoError(t, err)
	require.Equal(t, []string{
		standard.BalanceSheetGrowth,
		standard.EquityQuote,
		standard.RecentPerformance,
		standard.RevenueBusinessLine,
	}, p.Models())
}

func TestNewExecutorCarriesCredentials(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Credentials.TiingoToken = "tok"

	ex, err := platform.NewExecutor(cfg)

	require.NoError(t, err)
	_, _, err = ex.Registry().Fetcher("tiingo", standard.EquityHistorical)
	require.NoError(t, err)
}

func TestLimiter(t *testing.T) {
	t.Parallel()

	require.IsType(t, &ratelimit.TokenBucket{}, platform.Limiter(config.Vendor{MaxRequestsPerMinute: 60, MinRequestInterval: time.Second}))
	require.IsType(t, &ratelimit.MinInterval{}, platform.Limiter(config.Vendor{MinRequestInterval: time.Second}))
	require.Nil(t, platform.Limiter(config.Vendor{}))
}
