package main

import (
	"context"
	"fmt"
	"math/rand"
	"net"
	"net/http"
	"syscall"
	"time"

	"github.com/oklog/run"
	"github.com/oklog/ulid/v2"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffval"

	"github.com/h7su/debugstore"
	"github.com/h7su/debugstore/storestream"
	"github.com/h7su/debugstore/storeweb"
)

type serveConfig struct {
	*rootConfig

	listenAddr string
	capacity   int
	maxWait    time.Duration
	workload   bool
}

func (cfg *serveConfig) register(fs *ff.FlagSet) {
	fs.AddFlag(ff.FlagConfig{
		LongName: "listen-addr",
		Value:    ffval.NewValueDefault(&cfg.listenAddr, "localhost:8520"),
		Usage:    "HTTP listen address",
	})
	fs.AddFlag(ff.FlagConfig{
		LongName: "capacity",
		Value:    ffval.NewValueDefault(&cfg.capacity, debugstore.DefaultCapacity),
		Usage:    "store event limit",
	})
	fs.AddFlag(ff.FlagConfig{
		LongName: "max-wait",
		Value:    ffval.NewValueDefault(&cfg.maxWait, debugstore.DefaultMaxWait),
		Usage:    "bounded wait for the storage lock",
	})
	fs.AddFlag(ff.FlagConfig{
		LongName:  "workload",
		Value:     ffval.NewValue(&cfg.workload),
		Usage:     "generate a synthetic event workload",
		NoDefault: true,
	})
}

func (cfg *serveConfig) Exec(ctx context.Context, args []string) error {
	instanceID := ulid.Make().String()

	broker := storestream.NewBroker()
	store := debugstore.NewStore(
		debugstore.WithCapacity(cfg.capacity),
		debugstore.WithMaxWait(cfg.maxWait),
		debugstore.WithObserver(broker.Publish),
	)

	store.Record("serve.start", debugstore.Attr{Key: "instance_id", Value: instanceID})

	mux := http.NewServeMux()
	mux.Handle("/stream", storeweb.NewStreamServer(broker))
	mux.Handle("/", storeweb.NewServer(store))

	// The store server instruments its own requests, so an otherwise idle
	// instance still has something to show.
	handler := storeweb.Middleware(store)(mux)

	ln, err := net.Listen("tcp", cfg.listenAddr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	cfg.info.Printf("instance id %s", instanceID)
	cfg.info.Printf("listening on %s", cfg.listenAddr)
	cfg.debug.Printf("capacity %d, max wait %s", cfg.capacity, cfg.maxWait)

	var g run.Group

	{
		httpServer := &http.Server{Handler: handler}
		g.Add(func() error {
			return httpServer.Serve(ln)
		}, func(error) {
			httpServer.Close()
		})
	}

	if cfg.workload {
		ctx, cancel := context.WithCancel(ctx)
		g.Add(func() error {
			return runWorkload(ctx, store)
		}, func(error) {
			cancel()
		})
	}

	{
		g.Add(run.SignalHandler(ctx, syscall.SIGINT, syscall.SIGTERM))
	}

	return g.Run()
}

// runWorkload emits synthetic spans and points at a gentle rate, so demo
// instances have live data to snapshot and stream.
func runWorkload(ctx context.Context, store *debugstore.Store) error {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-ticker.C:
			switch rand.Intn(3) {
			case 0:
				store.Record("workload.tick")
			default:
				id := store.Begin("workload.txn", debugstore.Attr{Key: "n", Value: fmt.Sprint(rand.Intn(100))})
				time.Sleep(time.Duration(rand.Intn(5)) * time.Millisecond)
				store.End(id)
			}
		}
	}
}
