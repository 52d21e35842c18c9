package telemetry

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/MrEthical07/tokenguard"
	"github.com/MrEthical07/tokenguard/store/memstore"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReaderDisabled(t *testing.T) {
	for _, name := range []string{"", "none"} {
		reader, err := NewReader(name, nil, time.Minute)
		require.NoError(t, err)
		assert.Nil(t, reader)
	}
}

func TestNewReaderUnknown(t *testing.T) {
	_, err := NewReader("zipkin", nil, time.Minute)
	assert.Error(t, err)
}

func TestStartFlushesOnStop(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cfg := tokenguard.DefaultConfig()
	cfg.JWT.SigningSecret = []byte("0123456789abcdef0123456789abcdef")
	cfg.Metrics.Enabled = true
	engine, err := tokenguard.New().WithConfig(cfg).WithRedis(rdb).WithPrincipalStore(memstore.New()).Build()
	require.NoError(t, err)

	var out bytes.Buffer
	reader, err := NewReader("stdout", &out, time.Hour)
	require.NoError(t, err)

	stop, err := Start(reader, engine)
	require.NoError(t, err)
	require.NoError(t, stop(context.Background()))
	assert.Contains(t, out.String(), "tokenguard_")
}
