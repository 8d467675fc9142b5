package cli

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"

	"github.com/smeysmey1509/rest-api-node-sub000/internal/api"
	"github.com/smeysmey1509/rest-api-node-sub000/internal/bus"
	"github.com/smeysmey1509/rest-api-node-sub000/internal/config"
	"github.com/smeysmey1509/rest-api-node-sub000/internal/store"
	"github.com/smeysmey1509/rest-api-node-sub000/pkg/conn"
	"github.com/smeysmey1509/rest-api-node-sub000/pkg/exception"
)

func TestRootCommandTree(t *testing.T) {
	root := NewRootCommand("test")

	names := map[string]bool{}
	for _, cmd := range root.Commands() {
		names[cmd.Name()] = true
	}
	for _, want := range []string{"api", "worker", "all", "migrate"} {
		assert.True(t, names[want], want)
	}
	assert.NotNil(t, root.PersistentFlags().Lookup("config"))
}

func TestRootCommandRejectsBadConfig(t *testing.T) {
	root := NewRootCommand("test")
	root.SetArgs([]string{"migrate", "--config", t.TempDir() + "/missing.yaml"})
	require.Error(t, root.Execute())
}

func TestNewServicesServeRouter(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Flags.Import = false

	db, err := conn.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), conn.Option{MaxOpenConns: 1})
	require.NoError(t, err)
	s := store.New(db)
	require.NoError(t, s.Migrate(context.Background()))

	svc, err := newServices(cfg, s, nil)
	require.NoError(t, err)
	assert.Nil(t, svc.importer)

	router := api.NewRouter(svc.deps, api.RateLimit{}, func() bool { return true })
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	req.Header.Set(api.HeaderTenant, "t1")
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestNewServicesWithImporter(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	svc, err := newServices(cfg, nil, nil)
	require.NoError(t, err)
	require.NotNil(t, svc.importer)
	require.NoError(t, svc.importer.Close())
}

func TestSocketConfigUsesWorkerAddr(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	c := socketConfig(cfg)
	assert.Equal(t, cfg.Worker.Addr, c.Addr)
	assert.Zero(t, c.WriteTimeout)
	assert.Equal(t, cfg.HTTP.ShutdownTimeout, c.ShutdownTimeout)
}

type offlineBus struct{ bus.Bus }

func (offlineBus) Connected() bool { return false }

func TestRuntimePing(t *testing.T) {
	db, err := conn.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), conn.Option{MaxOpenConns: 1})
	require.NoError(t, err)

	rt := &runtime{store: store.New(db), bus: bus.NewMemory(8)}
	require.NoError(t, rt.ping(context.Background()))

	rt.bus = offlineBus{}
	err = rt.ping(context.Background())
	require.ErrorIs(t, err, exception.ErrBusClosed)
	assert.Equal(t, exception.KindUnavailable, exception.KindOf(err))
}

func TestProfilerDisabled(t *testing.T) {
	stop, err := startProfiler(config.Profiling{}, "api")
	require.NoError(t, err)
	stop()
}
