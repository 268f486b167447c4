package world_test

import (
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/circlesim/internal/physics"
	"github.com/san-kum/circlesim/internal/vec"
	"github.com/san-kum/circlesim/internal/world"
)

func v2(x, y float64) vec.Vector2[float64] { return vec.New(x, y) }

func newWorld(mode world.Boundary, pairwise bool) *world.World[float64] {
	opts := world.DefaultOptions[float64](1600, 900)
	opts.Boundary = mode
	opts.PairwiseGravity = pairwise
	w, err := world.New(opts, nil)
	Expect(err).NotTo(HaveOccurred())
	return w
}

var _ = Describe("World", func() {
	Describe("construction", func() {
		It("rejects an empty arena", func() {
			opts := world.DefaultOptions[float64](0, 900)
			_, err := world.New(opts, nil)
			Expect(err).To(MatchError(physics.ErrInvalidParameter))
		})

		It("rejects restitution outside [0, 1]", func() {
			opts := world.DefaultOptions[float64](100, 100)
			opts.CollisionRestitution = 1.5
			_, err := world.New(opts, nil)
			Expect(err).To(MatchError(physics.ErrInvalidParameter))
		})

		It("starts empty", func() {
			w := newWorld(world.Bounce, true)
			Expect(w.Len()).To(Equal(0))
			Expect(w.Snapshot()).To(BeEmpty())
			Expect(w.TotalEnergy()).To(Equal(0.0))
		})
	})

	Describe("insertion", func() {
		var w *world.World[float64]

		BeforeEach(func() {
			w = newWorld(world.Bounce, true)
		})

		It("keeps explicit parameters", func() {
			Expect(w.Insert(25, 625, v2(200, 500), v2(200, 0))).To(Succeed())

			snap := w.Snapshot()
			Expect(snap).To(HaveLen(1))
			Expect(snap[0].Radius).To(Equal(25.0))
			Expect(snap[0].Mass).To(Equal(625.0))
			Expect(snap[0].Position).To(Equal(v2(200, 500)))
			Expect(snap[0].Velocity).To(Equal(v2(200, 0)))
		})

		It("refuses invalid bodies", func() {
			Expect(w.Insert(0, 1, v2(1, 1), v2(0, 0))).To(MatchError(physics.ErrInvalidParameter))
			Expect(w.Insert(1, -1, v2(1, 1), v2(0, 0))).To(MatchError(physics.ErrInvalidParameter))
			Expect(w.Len()).To(Equal(0))
		})

		It("draws random bodies from the configured distributions", func() {
			for i := 0; i < 200; i++ {
				Expect(w.InsertRandom()).To(Succeed())
			}
			for _, b := range w.Snapshot() {
				Expect(b.Radius).To(BeNumerically(">=", 3))
				Expect(b.Radius).To(BeNumerically("<=", 15))
				Expect(b.Mass).To(BeNumerically("~", b.Radius*b.Radius, 1e-9))
				Expect(b.Position.X).To(BeNumerically(">=", 101))
				Expect(b.Position.X).To(BeNumerically("<=", 1600-101))
				Expect(b.Position.Y).To(BeNumerically(">=", 101))
				Expect(b.Position.Y).To(BeNumerically("<=", 900-101))
			}
		})

		It("fills in radius and mass for point insertion", func() {
			Expect(w.InsertAt(400, 300, 0, 0)).To(Succeed())
			Expect(w.InsertAt(10, 20, 1e17, 30)).To(Succeed())

			snap := w.Snapshot()
			Expect(snap[0].Position).To(Equal(v2(400, 300)))
			Expect(snap[0].Velocity).To(Equal(v2(0, 0)))
			Expect(snap[0].Radius).To(BeNumerically(">=", 5))
			Expect(snap[0].Radius).To(BeNumerically("<=", 10))
			Expect(snap[0].Mass).To(BeNumerically("~", snap[0].Radius*snap[0].Radius, 1e-9))

			Expect(snap[1].Radius).To(Equal(30.0))
			Expect(snap[1].Mass).To(Equal(1e17))
		})

		It("clears everything", func() {
			Expect(w.InsertRandom()).To(Succeed())
			Expect(w.InsertRandom()).To(Succeed())
			w.Clear()
			Expect(w.Len()).To(Equal(0))
			Expect(w.Snapshot()).To(BeEmpty())
		})
	})

	Describe("Update", func() {
		It("does nothing on an empty world", func() {
			w := newWorld(world.Bounce, true)
			Expect(w.Insert(1, 1, v2(10, 10), v2(0, 0))).To(Succeed())
			Expect(w.Insert(1, 1, v2(50, 10), v2(0, 0))).To(Succeed())
			w.Update(0.01)
			Expect(w.Comparisons()).To(Equal(int64(1)))

			w.Clear()
			w.Update(0.01)
			Expect(w.Comparisons()).To(Equal(int64(1)))
			Expect(w.Snapshot()).To(BeEmpty())
		})

		It("visits every unordered pair once", func() {
			w := newWorld(world.NoWrap, false)
			for i := 0; i < 5; i++ {
				Expect(w.Insert(1, 1, v2(float64(i)*100, 0), v2(0, 0))).To(Succeed())
			}
			w.Update(0.01)
			Expect(w.Comparisons()).To(Equal(int64(10)))
		})

		It("integrates global gravity with the pre-step velocity", func() {
			w := newWorld(world.Bounce, false)
			w.SetGravity(v2(0, world.EarthGravity))
			Expect(w.Insert(5, 25, v2(800, 450), v2(0, 0))).To(Succeed())

			w.Update(1)

			b := w.Snapshot()[0]
			Expect(b.Position).To(Equal(v2(800, 450)))
			Expect(b.Velocity).To(Equal(v2(0, world.EarthGravity)))
		})

		It("pulls bodies together with pairwise gravity", func() {
			w := newWorld(world.NoWrap, true)
			Expect(w.Insert(1, 1e17, v2(500, 500), v2(0, 0))).To(Succeed())
			Expect(w.Insert(1, 1, v2(600, 500), v2(0, 0))).To(Succeed())

			w.Update(1)

			force := world.GravitationalConstant * 1e17 / (100 * 100)
			snap := w.Snapshot()
			Expect(snap[1].Velocity.X).To(BeNumerically("~", -force, 1e-9))
			Expect(snap[0].Velocity.X).To(BeNumerically("~", force/1e17, 1e-20))
			Expect(w.TotalMomentum().X).To(BeNumerically("~", 0, 1e-9))
		})

		It("leaves gravity off when pairwise gravity is disabled", func() {
			w := newWorld(world.NoWrap, false)
			Expect(w.Insert(1, 1e17, v2(500, 500), v2(0, 0))).To(Succeed())
			Expect(w.Insert(1, 1, v2(600, 500), v2(0, 0))).To(Succeed())

			w.Update(1)

			Expect(w.TotalEnergy()).To(Equal(0.0))
		})

		It("resolves and separates touching bodies", func() {
			w := newWorld(world.NoWrap, false)
			Expect(w.Insert(1, 1, v2(100, 100), v2(1, 0))).To(Succeed())
			Expect(w.Insert(1, 1, v2(101.5, 100), v2(-1, 0))).To(Succeed())

			w.Update(0)

			snap := w.Snapshot()
			Expect(snap[0].Velocity.X).To(BeNumerically("~", -0.6, 1e-12))
			Expect(snap[1].Velocity.X).To(BeNumerically("~", 0.6, 1e-12))
			Expect(vec.Distance(snap[0].Position, snap[1].Position)).To(BeNumerically("~", 2, 1e-12))
			Expect(snap[0].Position).To(Equal(v2(100, 100)))
		})
	})

	Describe("boundaries", func() {
		It("bounces a body off the left wall and keeps it inside", func() {
			w := newWorld(world.Bounce, false)
			Expect(w.Insert(10, 100, v2(50, 450), v2(-100, 0))).To(Succeed())

			flipped := false
			for i := 0; i < 200 && !flipped; i++ {
				w.Update(0.01)
				flipped = w.Snapshot()[0].Velocity.X > 0
			}
			Expect(flipped).To(BeTrue())
			Expect(w.Snapshot()[0].Velocity.X).To(Equal(100.0))

			for i := 0; i < 50; i++ {
				w.Update(0.01)
				b := w.Snapshot()[0]
				Expect(b.Position.X - b.Radius).To(BeNumerically(">=", 0))
				Expect(b.Velocity.X).To(BeNumerically(">", 0))
			}
		})

		It("only reflects bodies moving into the wall", func() {
			w := newWorld(world.Bounce, false)
			Expect(w.Insert(10, 100, v2(5, 450), v2(50, 0))).To(Succeed())

			w.Update(0)

			b := w.Snapshot()[0]
			Expect(b.Position).To(Equal(v2(10, 450)))
			Expect(b.Velocity).To(Equal(v2(50, 0)))
		})

		It("reflects a body resting exactly on a wall", func() {
			w := newWorld(world.Bounce, false)
			Expect(w.Insert(10, 100, v2(10, 450), v2(-40, 0))).To(Succeed())
			Expect(w.Insert(10, 100, v2(800, 890), v2(0, 25))).To(Succeed())

			w.Update(0)

			snap := w.Snapshot()
			Expect(snap[0].Position).To(Equal(v2(10, 450)))
			Expect(snap[0].Velocity).To(Equal(v2(40, 0)))
			Expect(snap[1].Position).To(Equal(v2(800, 890)))
			Expect(snap[1].Velocity).To(Equal(v2(0, -25)))
		})

		It("handles one X and one Y wall in the same tick", func() {
			w := newWorld(world.Bounce, false)
			Expect(w.Insert(10, 100, v2(1595, 3), v2(20, -30))).To(Succeed())

			w.Update(0)

			b := w.Snapshot()[0]
			Expect(b.Position).To(Equal(v2(1590, 10)))
			Expect(b.Velocity).To(Equal(v2(-20, 30)))
		})

		It("applies the wall restitution", func() {
			opts := world.DefaultOptions[float64](100, 100)
			opts.WallRestitution = 0.5
			opts.PairwiseGravity = false
			w, err := world.New(opts, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(w.Insert(5, 1, v2(97, 50), v2(8, 0))).To(Succeed())

			w.Update(0)

			Expect(w.Snapshot()[0].Velocity).To(Equal(v2(-4, 0)))
		})

		It("wraps both axes in one tick", func() {
			w := newWorld(world.Wrap, false)
			Expect(w.Insert(1, 1, v2(-1, 950), v2(0, 0))).To(Succeed())

			w.Update(0)

			Expect(w.Snapshot()[0].Position).To(Equal(v2(1599, 50)))
		})

		It("leaves escaped bodies alone without a boundary", func() {
			w := newWorld(world.NoWrap, false)
			Expect(w.Insert(1, 1, v2(-40, 2000), v2(0, 0))).To(Succeed())

			w.Update(0)

			Expect(w.Snapshot()[0].Position).To(Equal(v2(-40, 2000)))
		})
	})

	Describe("velocity control", func() {
		It("scales and stops every body", func() {
			w := newWorld(world.Bounce, false)
			Expect(w.Insert(2, 4, v2(100, 100), v2(3, -4))).To(Succeed())
			Expect(w.Insert(2, 4, v2(300, 300), v2(-1.5, 0.25))).To(Succeed())

			w.ScaleAllVelocities(2)
			snap := w.Snapshot()
			Expect(snap[0].Velocity).To(Equal(v2(6, -8)))
			Expect(snap[1].Velocity).To(Equal(v2(-3, 0.5)))

			w.StopAll()
			for _, b := range w.Snapshot() {
				Expect(b.Velocity).To(Equal(v2(0, 0)))
			}
			Expect(w.TotalEnergy()).To(Equal(0.0))
		})

		It("reports energy and momentum", func() {
			w := newWorld(world.Bounce, false)
			Expect(w.Insert(2, 2, v2(100, 100), v2(3, 4))).To(Succeed())
			Expect(w.Insert(2, 1, v2(300, 300), v2(-2, 0))).To(Succeed())

			Expect(w.TotalEnergy()).To(Equal(27.0))
			Expect(w.TotalMomentum()).To(Equal(v2(4, 8)))

			stats := w.Stats()
			Expect(stats.Bodies).To(Equal(2))
			Expect(stats.Energy).To(Equal(27.0))
			Expect(stats.Boundary).To(Equal(world.Bounce))
		})
	})

	Describe("settings", func() {
		It("nudges and replaces gravity", func() {
			w := newWorld(world.Bounce, true)
			w.NudgeGravity(v2(10, 0))
			w.NudgeGravity(v2(0, -10))
			Expect(w.Gravity()).To(Equal(v2(10, -10)))

			w.SetGravity(v2(0, 0))
			Expect(w.Gravity()).To(Equal(v2(0, 0)))
		})

		It("toggles pairwise gravity and the boundary", func() {
			w := newWorld(world.Bounce, true)
			w.SetPairwiseGravity(false)
			Expect(w.PairwiseGravity()).To(BeFalse())

			w.SetBoundary(w.Boundary().Next())
			Expect(w.Boundary()).To(Equal(world.NoWrap))
		})

		DescribeTable("parses boundary names",
			func(in string, want world.Boundary) {
				got, err := world.ParseBoundary(in)
				Expect(err).NotTo(HaveOccurred())
				Expect(got).To(Equal(want))
				Expect(world.ParseBoundary(got.String())).To(Equal(want))
			},
			Entry("none", "none", world.NoWrap),
			Entry("nowrap", "NoWrap", world.NoWrap),
			Entry("wrap", "wrap", world.Wrap),
			Entry("bounce", " bounce ", world.Bounce),
			Entry("default", "", world.Bounce),
		)

		It("rejects unknown boundary names", func() {
			_, err := world.ParseBoundary("teleport")
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("concurrency", func() {
		It("serializes updates, insertions and snapshots", func() {
			w := newWorld(world.Bounce, true)
			const inserts = 100

			var wg sync.WaitGroup
			stop := make(chan struct{})

			wg.Add(2)
			go func() {
				defer wg.Done()
				for {
					select {
					case <-stop:
						return
					default:
						w.Update(0.001)
					}
				}
			}()
			go func() {
				defer wg.Done()
				for {
					select {
					case <-stop:
						return
					default:
						for _, b := range w.Snapshot() {
							_ = b.Position.Length()
						}
					}
				}
			}()

			for i := 0; i < inserts; i++ {
				Expect(w.InsertRandom()).To(Succeed())
				w.ScaleAllVelocities(1)
			}
			close(stop)
			wg.Wait()

			Expect(w.Len()).To(Equal(inserts))
			Expect(w.Snapshot()).To(HaveLen(inserts))
		})
	})
})
