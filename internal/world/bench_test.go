package world_test

import (
	"testing"

	"github.com/san-kum/circlesim/internal/world"
)

func benchWorld(b *testing.B, n int) *world.World[float64] {
	b.Helper()
	opts := world.DefaultOptions[float64](1600, 900)
	w, err := world.New(opts, nil)
	if err != nil {
		b.Fatal(err)
	}
	for i := 0; i < n; i++ {
		if err := w.InsertRandom(); err != nil {
			b.Fatal(err)
		}
	}
	return w
}

func BenchmarkUpdate100(b *testing.B) {
	w := benchWorld(b, 100)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		w.Update(0.001)
	}
}

func BenchmarkUpdate500(b *testing.B) {
	w := benchWorld(b, 500)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		w.Update(0.001)
	}
}

func BenchmarkSnapshot(b *testing.B) {
	w := benchWorld(b, 500)
	w.Update(0.001)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = w.Snapshot()
	}
}
