package ezstore_test

import (
	"strings"
	"testing"

	"github.com/h7su/debugstore/ezstore"
)

func TestPackageLevelStore(t *testing.T) {
	id := ezstore.Begin("x")
	if id == 0 {
		t.Fatal("Begin returned the zero sentinel")
	}

	ezstore.End(id)
	ezstore.Record("y")

	snap := ezstore.Snapshot()
	if !strings.HasPrefix(snap, "1,") {
		t.Fatalf("bad snapshot header: %q", snap)
	}
	if !strings.Contains(snap, "N:x") || !strings.Contains(snap, "N:y") {
		t.Fatalf("snapshot missing events: %q", snap)
	}

	if ezstore.Stats().TotalEntries < 3 {
		t.Fatalf("stats: %+v", ezstore.Stats())
	}

	if ezstore.Store() == nil {
		t.Fatal("nil package-level store")
	}

	if h := ezstore.Handler(); h == nil {
		t.Fatal("nil handler")
	}
}
