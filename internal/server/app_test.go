package server

import (
	"context"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/premiumkeeper/internal/logging"
	"github.com/dmitrijs2005/premiumkeeper/internal/server/changelog"
	"github.com/dmitrijs2005/premiumkeeper/internal/server/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	c := &config.Config{}
	c.LoadDefaults()
	dir := t.TempDir()
	c.CatalogPath = filepath.Join(dir, "plates.json")
	c.LedgerPath = filepath.Join(dir, "platespremium.json")
	c.PebbleDir = filepath.Join(dir, "ledger")
	c.ShutdownTimeout = time.Second
	return c
}

func freeAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())
	return addr
}

func TestNewApp_DefaultsToNopPublisher(t *testing.T) {
	app, err := newApp(context.Background(), testConfig(t), logging.Nop{})
	require.NoError(t, err)
	assert.IsType(t, changelog.Nop{}, app.publisher)
	require.NoError(t, app.close())
}

func TestNewApp_KafkaPublisherWhenBrokersSet(t *testing.T) {
	c := testConfig(t)
	c.KafkaBrokers = "127.0.0.1:9092"

	app, err := newApp(context.Background(), c, logging.Nop{})
	require.NoError(t, err)
	assert.IsType(t, &changelog.KafkaPublisher{}, app.publisher)
	require.NoError(t, app.close())
}

func TestNewApp_UnknownLedger(t *testing.T) {
	c := testConfig(t)
	c.LedgerBackend = "redis"
	_, err := newApp(context.Background(), c, logging.Nop{})
	require.Error(t, err)
}

func TestApp_RunStopsOnCancel(t *testing.T) {
	c := testConfig(t)
	c.LedgerBackend = config.LedgerPebble
	c.EndpointAddr = freeAddr(t)

	app, err := newApp(context.Background(), c, logging.Nop{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("app did not stop")
	}
}
