package bootstrap

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestConfigDurationFromYAML(t *testing.T) {
	var c Config
	require.NoError(t, yaml.Unmarshal([]byte(`
app:
  reserve_timeout: 5s
infra:
  redis:
    cache_ttl: 90s
`), &c))
	require.Equal(t, 5*time.Second, time.Duration(c.App.ReserveTimeout))
	require.Equal(t, 90*time.Second, time.Duration(c.Infra.Redis.CacheTTL))

	// 裸纳秒整数仍然兼容
	require.NoError(t, yaml.Unmarshal([]byte("app:\n  reserve_timeout: 1000000000\n"), &c))
	require.Equal(t, time.Second, time.Duration(c.App.ReserveTimeout))

	require.Error(t, yaml.Unmarshal([]byte("app:\n  reserve_timeout: fast\n"), &c))
}
