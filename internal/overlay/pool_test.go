package overlay_test

import (
	"errors"
	"io"

	"github.com/charmbracelet/log"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/smear/internal/config"
	"github.com/san-kum/smear/internal/overlay"
	"github.com/san-kum/smear/internal/palette"
)

var errInjected = errors.New("injected failure")

type fakeWindow struct {
	placement overlay.Placement
	visible   bool
	closed    bool
	glyph     rune
	hl        palette.Ref
}

// fakeSurface records every window the pool touches and can be told to
// fail the next N moves, creates, or hides.
type fakeSurface struct {
	windows     map[overlay.WindowID]*fakeWindow
	nextID      overlay.WindowID
	creates     int
	moves       int
	failCreates int
	failMoves   int
	failHides   int
}

func newFakeSurface() *fakeSurface {
	return &fakeSurface{windows: make(map[overlay.WindowID]*fakeWindow)}
}

func (f *fakeSurface) Create(p overlay.Placement) (overlay.WindowID, error) {
	if f.failCreates > 0 {
		f.failCreates--
		return 0, errInjected
	}
	f.creates++
	f.nextID++
	f.windows[f.nextID] = &fakeWindow{placement: p, visible: true}
	return f.nextID, nil
}

func (f *fakeSurface) Move(id overlay.WindowID, p overlay.Placement) error {
	if f.failMoves > 0 {
		f.failMoves--
		return errInjected
	}
	f.moves++
	w := f.windows[id]
	w.placement = p
	w.visible = true
	return nil
}

func (f *fakeSurface) Hide(id overlay.WindowID) error {
	if f.failHides > 0 {
		f.failHides--
		return errInjected
	}
	f.windows[id].visible = false
	return nil
}

func (f *fakeSurface) Close(id overlay.WindowID) error {
	w := f.windows[id]
	w.closed = true
	w.visible = false
	return nil
}

func (f *fakeSurface) SetCell(id overlay.WindowID, glyph rune, hl palette.Ref) error {
	w := f.windows[id]
	w.glyph = glyph
	w.hl = hl
	return nil
}

func (f *fakeSurface) open() int {
	n := 0
	for _, w := range f.windows {
		if !w.closed {
			n++
		}
	}
	return n
}

func (f *fakeSurface) visible() int {
	n := 0
	for _, w := range f.windows {
		if w.visible && !w.closed {
			n++
		}
	}
	return n
}

var _ = Describe("Pool", func() {
	var (
		surf *fakeSurface
		cfg  config.PoolConfig
		pool *overlay.Pool
	)

	BeforeEach(func() {
		surf = newFakeSurface()
		cfg = config.Default().Pool
		pool = overlay.New(surf, cfg, log.New(io.Discard))
	})

	at := func(row, col int) overlay.Placement {
		return overlay.Placement{Row: row, Col: col, Z: cfg.ZIndex}
	}

	acquireRow := func(n int) []overlay.WindowID {
		ids := make([]overlay.WindowID, 0, n)
		for c := 0; c < n; c++ {
			id, err := pool.Acquire(at(1, c))
			Expect(err).NotTo(HaveOccurred())
			ids = append(ids, id)
		}
		return ids
	}

	Describe("acquiring windows", func() {
		It("creates windows on first demand", func() {
			pool.BeginFrame()
			ids := acquireRow(3)
			Expect(ids).To(HaveLen(3))
			Expect(surf.creates).To(Equal(3))

			st := pool.Stats()
			Expect(st.Open).To(Equal(3))
			Expect(st.InUse).To(Equal(3))
			Expect(st.Demand).To(Equal(3))
		})

		It("reuses a window already at the placement without moving it", func() {
			pool.BeginFrame()
			first := acquireRow(1)[0]

			pool.BeginFrame()
			id, err := pool.Acquire(at(1, 0))
			Expect(err).NotTo(HaveOccurred())
			Expect(id).To(Equal(first))
			Expect(surf.moves).To(BeZero())
			Expect(surf.creates).To(Equal(1))
		})

		It("moves an available window to a new placement", func() {
			pool.BeginFrame()
			first := acquireRow(1)[0]

			pool.BeginFrame()
			id, err := pool.Acquire(at(5, 5))
			Expect(err).NotTo(HaveOccurred())
			Expect(id).To(Equal(first))
			Expect(surf.moves).To(Equal(1))
			Expect(surf.creates).To(Equal(1))
			Expect(surf.windows[id].placement).To(Equal(at(5, 5)))
		})

		It("invalidates a window whose move fails and claims the next", func() {
			pool.BeginFrame()
			ids := acquireRow(2)

			pool.BeginFrame()
			surf.failMoves = 1
			id, err := pool.Acquire(at(5, 5))
			Expect(err).NotTo(HaveOccurred())
			Expect(id).To(Equal(ids[1]))
			Expect(pool.Stats().Invalid).To(Equal(1))
		})

		It("surfaces a create failure and keeps serving later cells", func() {
			pool.BeginFrame()
			surf.failCreates = 1
			_, err := pool.Acquire(at(1, 0))
			Expect(err).To(MatchError(errInjected))

			_, err = pool.Acquire(at(1, 1))
			Expect(err).NotTo(HaveOccurred())
			Expect(pool.Stats().Demand).To(Equal(2))
		})
	})

	Describe("frame lifecycle", func() {
		It("hides windows left over from the previous frame", func() {
			pool.BeginFrame()
			acquireRow(3)
			pool.ReleaseUnused()
			Expect(pool.Stats().Hidden).To(BeZero())

			pool.BeginFrame()
			acquireRow(1)
			pool.ReleaseUnused()

			st := pool.Stats()
			Expect(st.InUse).To(Equal(1))
			Expect(st.Hidden).To(Equal(2))
			Expect(surf.visible()).To(Equal(1))
		})

		It("invalidates windows that fail to hide", func() {
			pool.BeginFrame()
			acquireRow(2)

			pool.BeginFrame()
			surf.failHides = 1
			pool.ReleaseUnused()

			st := pool.Stats()
			Expect(st.Invalid).To(Equal(1))
			Expect(st.Hidden).To(Equal(1))
		})

		It("hides everything when the animation settles", func() {
			pool.BeginFrame()
			acquireRow(3)
			pool.HideAll()

			st := pool.Stats()
			Expect(st.InUse).To(BeZero())
			Expect(st.Hidden).To(Equal(3))
			Expect(surf.visible()).To(BeZero())
		})
	})

	Describe("adaptive budget", func() {
		acquireMany := func(n int) {
			for i := 0; i < n; i++ {
				_, err := pool.Acquire(at(i/80, i%80))
				Expect(err).NotTo(HaveOccurred())
			}
		}

		It("starts at the floor and jumps straight up after a spike", func() {
			Expect(pool.Stats().Budget).To(Equal(16))

			pool.BeginFrame()
			acquireMany(120)
			pool.ReleaseUnused()
			Expect(pool.Stats().Budget).To(Equal(128))
		})

		It("clamps at the hard maximum", func() {
			pool.BeginFrame()
			acquireMany(300)
			pool.ReleaseUnused()
			Expect(pool.Stats().Budget).To(Equal(256))
		})

		It("shrinks by at most the margin per frame", func() {
			pool.BeginFrame()
			acquireMany(120)
			pool.ReleaseUnused()
			Expect(pool.Stats().Budget).To(Equal(128))

			pool.BeginFrame()
			pool.ReleaseUnused()
			Expect(pool.Stats().Budget).To(Equal(120))

			pool.BeginFrame()
			pool.ReleaseUnused()
			Expect(pool.Stats().Budget).To(Equal(112))
		})

		It("recovers immediately when demand spikes again", func() {
			pool.BeginFrame()
			acquireMany(120)
			pool.ReleaseUnused()

			pool.BeginFrame()
			pool.ReleaseUnused()
			pool.BeginFrame()
			pool.ReleaseUnused()
			Expect(pool.Stats().Budget).To(Equal(112))

			pool.BeginFrame()
			acquireMany(200)
			pool.ReleaseUnused()
			Expect(pool.Stats().Budget).To(Equal(208))
		})
	})

	Describe("pruning", func() {
		It("closes invalid windows first, then the least recently used", func() {
			pool.BeginFrame()
			ids := acquireRow(4)
			pool.ReleaseUnused()

			pool.BeginFrame()
			_, err := pool.Acquire(at(1, 2))
			Expect(err).NotTo(HaveOccurred())
			_, err = pool.Acquire(at(1, 3))
			Expect(err).NotTo(HaveOccurred())
			pool.ReleaseUnused()

			pool.BeginFrame()
			surf.failMoves = 1
			_, err = pool.Acquire(at(5, 5))
			Expect(err).NotTo(HaveOccurred())
			pool.ReleaseUnused()

			pool.Prune(2)

			Expect(surf.windows[ids[0]].closed).To(BeTrue(), "invalid window should close first")
			Expect(surf.windows[ids[2]].closed).To(BeTrue(), "oldest available window should close next")
			Expect(surf.windows[ids[1]].closed).To(BeFalse())
			Expect(surf.windows[ids[3]].closed).To(BeFalse())
			Expect(pool.Stats().Open).To(Equal(2))
		})

		It("never closes a window in use", func() {
			pool.BeginFrame()
			acquireRow(3)
			pool.Prune(1)

			Expect(pool.Stats().Open).To(Equal(3))
			Expect(surf.open()).To(Equal(3))
		})

		It("purges everything at teardown", func() {
			pool.BeginFrame()
			acquireRow(3)
			pool.Purge()

			Expect(pool.Stats().Open).To(BeZero())
			Expect(surf.open()).To(BeZero())
		})
	})
})
