package main

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"syscall"
	"time"

	"github.com/oklog/run"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffval"

	"github.com/h7su/debugstore"
	"github.com/h7su/debugstore/storeweb"
)

type streamConfig struct {
	*rootConfig

	recvBuf       int
	retryInterval time.Duration
}

func (cfg *streamConfig) register(fs *ff.FlagSet) {
	fs.AddFlag(ff.FlagConfig{
		LongName: "recv-buffer",
		Value:    ffval.NewValueDefault(&cfg.recvBuf, 100),
		Usage:    "remote per-subscriber buffer size",
	})
	fs.AddFlag(ff.FlagConfig{
		LongName: "retry-interval",
		Value:    ffval.NewValueDefault(&cfg.retryInterval, time.Second),
		Usage:    "connection retry interval",
	})
}

func (cfg *streamConfig) Exec(ctx context.Context, args []string) error {
	uri := cfg.uri
	if !strings.HasSuffix(uri, "/stream") {
		uri = strings.TrimSuffix(uri, "/") + "/stream"
	}

	client := storeweb.NewStreamClient(uri)
	client.HTTPClient = &http.Client{Transport: storeweb.NewDefaultTransport()}
	client.RecvBuffer = cfg.recvBuf
	client.RetryInterval = cfg.retryInterval

	cfg.info.Printf("streaming from %s", uri)

	events := make(chan debugstore.Event, cfg.recvBuf)

	var g run.Group

	{
		ctx, cancel := context.WithCancel(ctx)
		g.Add(func() error {
			return client.Stream(ctx, events)
		}, func(error) {
			cancel()
		})
	}

	{
		ctx, cancel := context.WithCancel(ctx)
		g.Add(func() error {
			for {
				select {
				case ev := <-events:
					fmt.Fprintln(cfg.stdout, ev.String())
				case <-ctx.Done():
					return ctx.Err()
				}
			}
		}, func(error) {
			cancel()
		})
	}

	{
		g.Add(run.SignalHandler(ctx, syscall.SIGINT, syscall.SIGTERM))
	}

	return g.Run()
}
