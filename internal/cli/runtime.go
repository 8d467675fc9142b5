package cli

import (
	"context"

	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"
	"golang.org/x/sync/errgroup"

	"github.com/smeysmey1509/rest-api-node-sub000/internal/activity"
	"github.com/smeysmey1509/rest-api-node-sub000/internal/api"
	"github.com/smeysmey1509/rest-api-node-sub000/internal/batch"
	"github.com/smeysmey1509/rest-api-node-sub000/internal/bus"
	"github.com/smeysmey1509/rest-api-node-sub000/internal/cart"
	"github.com/smeysmey1509/rest-api-node-sub000/internal/catalog"
	"github.com/smeysmey1509/rest-api-node-sub000/internal/config"
	"github.com/smeysmey1509/rest-api-node-sub000/internal/delivery"
	"github.com/smeysmey1509/rest-api-node-sub000/internal/events"
	"github.com/smeysmey1509/rest-api-node-sub000/internal/model"
	"github.com/smeysmey1509/rest-api-node-sub000/internal/notification"
	"github.com/smeysmey1509/rest-api-node-sub000/internal/pricing"
	"github.com/smeysmey1509/rest-api-node-sub000/internal/promo"
	"github.com/smeysmey1509/rest-api-node-sub000/internal/review"
	"github.com/smeysmey1509/rest-api-node-sub000/internal/store"
	"github.com/smeysmey1509/rest-api-node-sub000/internal/worker"
	"github.com/smeysmey1509/rest-api-node-sub000/pkg/conn"
	"github.com/smeysmey1509/rest-api-node-sub000/pkg/exception"
	"github.com/smeysmey1509/rest-api-node-sub000/pkg/websocket"
)

// runtime holds the shared infrastructure of one process.
type runtime struct {
	cfg   config.Loaded
	pg    *conn.Client
	store *store.Store
	bus   bus.Bus
}

// openRuntime connects to postgres, migrates, and opens the bus.
func openRuntime(ctx context.Context, cfg config.Loaded) (*runtime, error) {
	pg, err := conn.New(cfg.Postgres)
	if err != nil {
		return nil, err
	}
	s := store.New(pg.DB())
	if err := s.Migrate(ctx); err != nil {
		_ = pg.Close()
		return nil, errors.Wrap(err, "migrate")
	}
	b, err := bus.Open(ctx, cfg.Bus)
	if err != nil {
		_ = pg.Close()
		return nil, errors.Wrap(err, "open bus")
	}
	return &runtime{cfg: cfg, pg: pg, store: s, bus: b}, nil
}

func (rt *runtime) Close() {
	if err := rt.bus.Close(); err != nil {
		logs.Errorf("close bus, err: %+v", err)
	}
	if err := rt.pg.Close(); err != nil {
		logs.Errorf("close postgres, err: %+v", err)
	}
}

// ping reports readiness of the database and, for brokers that track it,
// the bus connection.
func (rt *runtime) ping(ctx context.Context) error {
	if err := rt.store.Ping(ctx); err != nil {
		return err
	}
	if c, ok := rt.bus.(interface{ Connected() bool }); ok && !c.Connected() {
		return exception.Wrap(exception.KindUnavailable, "bus disconnected", exception.ErrBusClosed)
	}
	return nil
}

// services are the usecases behind the REST API.
type services struct {
	deps     api.Deps
	importer *batch.Writer[model.Product]
}

func newServices(cfg config.Loaded, s *store.Store, emitter *events.Emitter) (*services, error) {
	var (
		importer *batch.Writer[model.Product]
		imp      catalog.Importer
	)
	if cfg.Flags.Import {
		w, err := batch.NewWriter(cfg.Import.Batch, catalog.ImportSink(s))
		if err != nil {
			return nil, errors.Wrap(err, "new product importer")
		}
		importer, imp = w, w
	}
	return &services{
		importer: importer,
		deps: api.Deps{
			Catalog:      catalog.NewUsecase(s, imp, emitter, cfg.Import.MaxBulk),
			Cart:         cart.NewUsecase(s, pricing.NewEngine(cfg.Pricing), emitter),
			Review:       review.NewUsecase(s, emitter),
			Promo:        promo.NewUsecase(s, emitter),
			Delivery:     delivery.NewUsecase(s, emitter),
			Notification: notification.NewUsecase(s, emitter),
			Activity:     activity.NewUsecase(s),
			Ping:         s.Ping,
		},
	}, nil
}

// serveAPI schedules the REST listener and the product importer on g.
func (rt *runtime) serveAPI(ctx context.Context, g *errgroup.Group) error {
	svc, err := newServices(rt.cfg, rt.store, events.NewEmitter(rt.bus))
	if err != nil {
		return err
	}
	svc.deps.Ping = rt.ping
	if svc.importer != nil {
		if err := svc.importer.Start(ctx); err != nil {
			return errors.Wrap(err, "start product importer")
		}
	}

	var server *api.Server
	router := api.NewRouter(svc.deps, rt.cfg.RateLimit, func() bool { return server.Ready() })
	server = api.NewServer(rt.cfg.HTTP, router)
	g.Go(func() error {
		err := server.Start(ctx)
		// in-flight bulk requests are drained before the importer stops
		if svc.importer != nil {
			if cerr := svc.importer.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}
		return err
	})
	return nil
}

// serveWorker schedules the event consumer and, when sockets are enabled,
// the hub listener on g.
func (rt *runtime) serveWorker(ctx context.Context, g *errgroup.Group) error {
	var (
		hub    *websocket.Hub
		pusher worker.Pusher
	)
	if rt.cfg.Flags.Socket {
		hub = websocket.NewHub(rt.cfg.Socket)
		pusher = hub
	}

	w, err := worker.New(rt.bus, rt.store, pusher, rt.cfg.WorkerOption())
	if err != nil {
		return err
	}
	g.Go(func() error { return w.Run(ctx) })

	if hub == nil {
		logs.Warnf("socket feature disabled, worker serves no http listener")
		return nil
	}

	var server *api.Server
	router := api.NewSocketRouter(hub, rt.cfg.RateLimit, func() bool { return server.Ready() }, rt.ping)
	server = api.NewServer(socketConfig(rt.cfg), router)
	g.Go(func() error {
		err := server.Start(ctx)
		hub.Close()
		return err
	})
	return nil
}

func socketConfig(cfg config.Loaded) api.Config {
	c := cfg.HTTP
	c.Addr = cfg.Worker.Addr
	// sockets are long lived
	c.WriteTimeout = 0
	return c
}

func runAPI(ctx context.Context, cfg config.Loaded) error {
	return run(ctx, cfg, (*runtime).serveAPI)
}

func runWorker(ctx context.Context, cfg config.Loaded) error {
	return run(ctx, cfg, (*runtime).serveWorker)
}

func runAll(ctx context.Context, cfg config.Loaded) error {
	cfg.Bus.Driver = bus.DriverMemory
	return run(ctx, cfg, (*runtime).serveAPI, (*runtime).serveWorker)
}

func run(ctx context.Context, cfg config.Loaded, parts ...func(*runtime, context.Context, *errgroup.Group) error) error {
	ctx, stop := notifyContext(ctx)
	defer stop()

	rt, err := openRuntime(ctx, cfg)
	if err != nil {
		return err
	}
	defer rt.Close()

	g, gctx := errgroup.WithContext(ctx)
	for _, part := range parts {
		if err := part(rt, gctx, g); err != nil {
			stop()
			_ = g.Wait()
			return err
		}
	}
	if err := g.Wait(); err != nil {
		return err
	}
	logs.Infof("shopd stopped")
	return nil
}
