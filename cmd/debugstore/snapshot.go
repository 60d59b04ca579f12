package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffval"

	"github.com/h7su/debugstore/storeweb"
)

type snapshotConfig struct {
	*rootConfig

	asJSON bool
}

func (cfg *snapshotConfig) register(fs *ff.FlagSet) {
	fs.AddFlag(ff.FlagConfig{
		LongName:  "json",
		Value:     ffval.NewValue(&cfg.asJSON),
		Usage:     "print the decoded JSON form instead of the wire string",
		NoDefault: true,
	})
}

func (cfg *snapshotConfig) Exec(ctx context.Context, args []string) error {
	client := storeweb.NewClient(&http.Client{
		Transport: storeweb.NewDefaultTransport(),
	}, cfg.uri)

	cfg.debug.Printf("fetching snapshot from %s", cfg.uri)

	if cfg.asJSON {
		data, err := client.SnapshotData(ctx)
		if err != nil {
			return fmt.Errorf("fetch snapshot: %w", err)
		}
		enc := json.NewEncoder(cfg.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	}

	snap, err := client.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("fetch snapshot: %w", err)
	}

	fmt.Fprintln(cfg.stdout, snap)
	return nil
}
