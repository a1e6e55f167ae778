package bootstrap

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigFromFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
service:
  name: wallet-service
  port: 9090
review_guard:
  backend: zookeeper
  ttl: 45s
pricing:
  plans:
    premium:
      annual: "60000"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Service.Port)
	assert.Equal(t, "zookeeper", cfg.ReviewGuard.Backend)
	assert.Equal(t, 45*time.Second, cfg.ReviewGuard.TTL)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "60000", cfg.Pricing.Plans["premium"]["annual"])
	// 默认值中未被覆盖的部分保留
	assert.Equal(t, "deposit-proofs", cfg.Supabase.ProofBucket)
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "supabase", cfg.Store.Driver)
	assert.Equal(t, 8, cfg.Promotion.CodeLength)
}

func TestValidateRejectsMySQLWithoutDSN(t *testing.T) {
	cfg := Defaults()
	cfg.Store.Driver = "mysql"
	assert.Error(t, cfg.Validate())

	cfg.Store.MySQLDSN = "user:pass@tcp(localhost:3306)/fundgate"
	assert.NoError(t, cfg.Validate())
}

func TestMergeYAMLDoesNotMutateBase(t *testing.T) {
	base := Defaults()
	merged, err := MergeYAML(base, "pricing:\n  plans:\n    premium:\n      annual: \"1\"\n")
	require.NoError(t, err)

	assert.Equal(t, "1", merged.Pricing.Plans["premium"]["annual"])
	assert.Equal(t, "50000", base.Pricing.Plans["premium"]["annual"])
}
