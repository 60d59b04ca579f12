package debugstore_test

import (
	"strconv"
	"testing"

	"github.com/h7su/debugstore"
)

func BenchmarkStore(b *testing.B) {
	for _, capacity := range []int{16, 256, 4096} {
		b.Run(strconv.Itoa(capacity), func(b *testing.B) {
			s := debugstore.NewStore(debugstore.WithCapacity(capacity))

			b.ReportAllocs()

			b.Run("Record", func(b *testing.B) {
				for i := 0; i < b.N; i++ {
					s.Record("bench")
				}
			})

			b.Run("BeginEnd", func(b *testing.B) {
				for i := 0; i < b.N; i++ {
					s.End(s.Begin("bench"))
				}
			})

			b.Run("Snapshot", func(b *testing.B) {
				var snap string
				for i := 0; i < b.N; i++ {
					snap = s.Snapshot()
				}
				_ = snap
			})
		})
	}
}

func BenchmarkStoreParallel(b *testing.B) {
	for _, backend := range []struct {
		name string
		opts []debugstore.Option
	}{
		{name: "guarded", opts: nil},
		{name: "drain", opts: []debugstore.Option{debugstore.WithDrainStorage()}},
	} {
		b.Run(backend.name, func(b *testing.B) {
			s := debugstore.NewStore(backend.opts...)

			b.ReportAllocs()

			b.RunParallel(func(p *testing.PB) {
				for p.Next() {
					s.End(s.Begin("bench"))
				}
			})
		})
	}
}
