package monitor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redislib "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestRefreshRecordsEveryCheck(t *testing.T) {
	m := New(time.Second, zaptest.NewLogger(t))
	m.Register("ok", func(context.Context) error { return nil })
	m.Register("broken", func(context.Context) error { return errors.New("down") })

	status := m.Refresh(context.Background())
	assert.Equal(t, map[string]bool{"ok": true, "broken": false}, status.Services)
	assert.False(t, m.IsOnline())
	assert.False(t, status.LastCheck.IsZero())
}

func TestRedisCheckAgainstMiniredis(t *testing.T) {
	srv := miniredis.RunT(t)
	client := redislib.NewClient(&redislib.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	m := New(time.Second, zaptest.NewLogger(t))
	m.Register("redis", Redis(client))

	require.NoError(t, m.Start())
	t.Cleanup(func() { m.Stop(context.Background()) })
	assert.True(t, m.IsOnline())

	srv.Close()
	m.Refresh(context.Background())
	assert.False(t, m.GetStatus().Services["redis"])
}

func TestStatusIsCopied(t *testing.T) {
	m := New(time.Second, nil)
	m.Register("a", func(context.Context) error { return nil })
	m.Refresh(context.Background())

	status := m.GetStatus()
	status.Services["a"] = false
	assert.True(t, m.IsOnline())
}
