package physics

import (
	"context"
	"math"
	"sync"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/TFMV/graphpad/graph"
)

// LayoutAlgorithm defines an interface for layout algorithms
type LayoutAlgorithm interface {
	Initialize(store *graph.Store)
	Step() bool // Returns true if stable, false if needs more steps
	Apply(store *graph.Store) error
	GetName() string
}

const (
	// isolatedCharge pushes degree-0 nodes harder so they drift apart.
	isolatedCharge  = -200.0
	connectedCharge = -50.0

	// Bounding box margins, matching the node radius plus label room.
	marginLow  = 15.0
	marginHigh = 30.0
)

// ChargeStrength returns the many-body strength for a node of the given degree.
func ChargeStrength(degree int) float64 {
	if degree == 0 {
		return isolatedCharge
	}
	return connectedCharge
}

// Position coordinates
type position struct {
	x, y float64
}

// Velocity vector components
type velocity struct {
	vx, vy float64
}

// ForceDirectedLayout is a velocity-Verlet simulation with many-body
// repulsion, spring links, a centering force and a bounding box.
type ForceDirectedLayout struct {
	width         float64
	height        float64
	order         []string
	positions     map[string]position
	velocities    map[string]velocity
	degrees       map[string]int
	links         []graph.Edge
	alpha         float64
	alphaMin      float64
	alphaDecay    float64
	velocityDecay float64
	linkDistance  float64
	iterations    int
	maxIterations int
	seed          int64
	noise         opensimplex.Noise
	mu            sync.Mutex
}

// NewForceDirectedLayout creates a new force-directed layout
func NewForceDirectedLayout(width, height float64, seed int64) *ForceDirectedLayout {
	alphaMin := 0.001
	return &ForceDirectedLayout{
		width:         width,
		height:        height,
		positions:     make(map[string]position),
		velocities:    make(map[string]velocity),
		degrees:       make(map[string]int),
		alpha:         1.0,
		alphaMin:      alphaMin,
		alphaDecay:    1 - math.Pow(alphaMin, 1.0/300),
		velocityDecay: 0.4,
		linkDistance:  30,
		maxIterations: 300,
		seed:          seed,
		noise:         opensimplex.New(seed),
	}
}

// SetMaxIterations caps the number of Step calls before the layout reports stable.
func (fd *ForceDirectedLayout) SetMaxIterations(n int) {
	fd.mu.Lock()
	defer fd.mu.Unlock()
	fd.maxIterations = n
}

// GetName returns the name of the layout algorithm
func (fd *ForceDirectedLayout) GetName() string {
	return "Force-Directed Layout"
}

// Initialize copies the store's nodes and edges and reheats the simulation.
// Nodes still at the origin are scattered around the centre with simplex noise.
func (fd *ForceDirectedLayout) Initialize(store *graph.Store) {
	fd.mu.Lock()
	defer fd.mu.Unlock()

	fd.order = fd.order[:0]
	fd.positions = make(map[string]position, store.NodeCount())
	fd.velocities = make(map[string]velocity, store.NodeCount())
	fd.degrees = store.Degrees()
	fd.links = store.Edges()
	fd.alpha = 1.0
	fd.iterations = 0

	i := 0
	store.ForEachNode(func(n graph.Node) {
		fd.order = append(fd.order, n.ID)
		p := position{x: n.X, y: n.Y}
		if n.X == 0 && n.Y == 0 {
			p = fd.scatter(i)
		}
		fd.positions[n.ID] = p
		fd.velocities[n.ID] = velocity{vx: n.VX, vy: n.VY}
		i++
	})
}

// scatter places the i-th node on a noisy spiral around the centre.
func (fd *ForceDirectedLayout) scatter(i int) position {
	radius := 10 * math.Sqrt(0.5+float64(i))
	angle := float64(i) * math.Pi * (3 - math.Sqrt(5))
	jx := fd.noise.Eval2(float64(i)*0.37, 0)
	jy := fd.noise.Eval2(0, float64(i)*0.37)
	return position{
		x: fd.width/2 + radius*math.Cos(angle) + jx*5,
		y: fd.height/2 + radius*math.Sin(angle) + jy*5,
	}
}

// Step performs one iteration of the layout algorithm
func (fd *ForceDirectedLayout) Step() bool {
	fd.mu.Lock()
	defer fd.mu.Unlock()

	if fd.iterations >= fd.maxIterations || fd.alpha < fd.alphaMin {
		return true
	}
	fd.alpha += (0 - fd.alpha) * fd.alphaDecay

	fd.applyLinks()
	fd.applyCharge()

	for _, id := range fd.order {
		v := fd.velocities[id]
		v.vx *= 1 - fd.velocityDecay
		v.vy *= 1 - fd.velocityDecay
		fd.velocities[id] = v

		p := fd.positions[id]
		p.x += v.vx
		p.y += v.vy
		fd.positions[id] = p
	}

	fd.applyCenter()
	fd.applyBounds()

	fd.iterations++
	return fd.alpha < fd.alphaMin || fd.iterations >= fd.maxIterations
}

// applyLinks pulls linked nodes toward linkDistance, weaker for busy nodes.
func (fd *ForceDirectedLayout) applyLinks() {
	for _, e := range fd.links {
		s, okS := fd.positions[e.Source]
		t, okT := fd.positions[e.Target]
		if !okS || !okT {
			continue
		}
		vs := fd.velocities[e.Source]
		vt := fd.velocities[e.Target]

		dx := t.x + vt.vx - s.x - vs.vx
		dy := t.y + vt.vy - s.y - vs.vy
		l := math.Sqrt(dx*dx + dy*dy)
		if l == 0 {
			l = 1e-6
		}

		degS := math.Max(1, float64(fd.degrees[e.Source]))
		degT := math.Max(1, float64(fd.degrees[e.Target]))
		strength := 1 / math.Min(degS, degT)
		bias := degS / (degS + degT)

		k := (l - fd.linkDistance) / l * fd.alpha * strength
		dx *= k
		dy *= k

		vt.vx -= dx * bias
		vt.vy -= dy * bias
		vs.vx += dx * (1 - bias)
		vs.vy += dy * (1 - bias)
		fd.velocities[e.Source] = vs
		fd.velocities[e.Target] = vt
	}
}

// applyCharge applies pairwise many-body forces.
func (fd *ForceDirectedLayout) applyCharge() {
	for i, a := range fd.order {
		pa := fd.positions[a]
		for _, b := range fd.order[i+1:] {
			pb := fd.positions[b]
			dx := pb.x - pa.x
			dy := pb.y - pa.y
			d2 := dx*dx + dy*dy
			if d2 < 1 {
				// coincident nodes get a deterministic nudge
				dx = fd.noise.Eval2(pa.x, pb.y)
				dy = fd.noise.Eval2(pb.x, pa.y)
				d2 = 1
			}

			va := fd.velocities[a]
			vb := fd.velocities[b]
			sa := ChargeStrength(fd.degrees[a])
			sb := ChargeStrength(fd.degrees[b])

			va.vx += dx * sb * fd.alpha / d2
			va.vy += dy * sb * fd.alpha / d2
			vb.vx -= dx * sa * fd.alpha / d2
			vb.vy -= dy * sa * fd.alpha / d2

			fd.velocities[a] = va
			fd.velocities[b] = vb
		}
	}
}

// applyCenter translates every node so the centroid sits mid-canvas.
func (fd *ForceDirectedLayout) applyCenter() {
	if len(fd.order) == 0 {
		return
	}
	var sx, sy float64
	for _, id := range fd.order {
		p := fd.positions[id]
		sx += p.x
		sy += p.y
	}
	n := float64(len(fd.order))
	sx = sx/n - fd.width/2
	sy = sy/n - fd.height/2
	for _, id := range fd.order {
		p := fd.positions[id]
		p.x -= sx
		p.y -= sy
		fd.positions[id] = p
	}
}

// applyBounds clamps positions into the drawable box.
func (fd *ForceDirectedLayout) applyBounds() {
	for _, id := range fd.order {
		p := fd.positions[id]
		p.x = math.Max(marginLow, math.Min(fd.width-marginHigh, p.x))
		p.y = math.Max(marginLow, math.Min(fd.height-marginHigh, p.y))
		fd.positions[id] = p
	}
}

// Apply writes positions and velocities back to the store.
func (fd *ForceDirectedLayout) Apply(store *graph.Store) error {
	fd.mu.Lock()
	defer fd.mu.Unlock()

	for _, id := range fd.order {
		p := fd.positions[id]
		v := fd.velocities[id]
		if err := store.SetPosition(id, p.x, p.y); err != nil {
			return err
		}
		if err := store.SetVelocity(id, v.vx, v.vy); err != nil {
			return err
		}
	}
	return nil
}

// Alpha returns the current simulation heat.
func (fd *ForceDirectedLayout) Alpha() float64 {
	fd.mu.Lock()
	defer fd.mu.Unlock()
	return fd.alpha
}

// SurrealLayout is a creative layout that applies artistic distortions
type SurrealLayout struct {
	baseLayout       LayoutAlgorithm
	noiseGenerator   opensimplex.Noise
	noiseScale       float64
	timeStep         float64
	distortionAmount float64
}

// NewSurrealLayout wraps base and displaces nodes by intensity (0..1) of simplex noise.
func NewSurrealLayout(base LayoutAlgorithm, intensity float64, seed int64) *SurrealLayout {
	return &SurrealLayout{
		baseLayout:       base,
		noiseGenerator:   opensimplex.New(seed),
		noiseScale:       0.03,
		distortionAmount: 20.0 * math.Max(0, math.Min(1, intensity)),
	}
}

// GetName returns the name of the layout algorithm
func (sl *SurrealLayout) GetName() string {
	return "Surreal Layout"
}

// Initialize initializes the surreal layout
func (sl *SurrealLayout) Initialize(store *graph.Store) {
	sl.baseLayout.Initialize(store)
}

// Step performs one iteration of the layout algorithm
func (sl *SurrealLayout) Step() bool {
	return sl.baseLayout.Step()
}

// Apply applies the base layout and then displaces every node by noise.
func (sl *SurrealLayout) Apply(store *graph.Store) error {
	if err := sl.baseLayout.Apply(store); err != nil {
		return err
	}
	for _, n := range store.Nodes() {
		dx := sl.noiseGenerator.Eval3(n.X*sl.noiseScale, n.Y*sl.noiseScale, sl.timeStep)
		dy := sl.noiseGenerator.Eval3(n.X*sl.noiseScale+100, n.Y*sl.noiseScale+100, sl.timeStep)
		if err := store.SetPosition(n.ID, n.X+dx*sl.distortionAmount, n.Y+dy*sl.distortionAmount); err != nil {
			return err
		}
	}
	sl.timeStep += 0.01
	return nil
}

// Run initializes layout from store, steps it until stable, maxSteps, or ctx
// is done, then applies the result. It reports whether the layout settled.
func Run(ctx context.Context, layout LayoutAlgorithm, store *graph.Store, maxSteps int) (bool, error) {
	layout.Initialize(store)
	stable := false
	for i := 0; i < maxSteps && !stable; i++ {
		if err := ctx.Err(); err != nil {
			break
		}
		stable = layout.Step()
	}
	if err := layout.Apply(store); err != nil {
		return stable, err
	}
	return stable, ctx.Err()
}

// GetLayoutAlgorithm returns a layout algorithm by name
func GetLayoutAlgorithm(name string, width, height, noise float64, seed int64) LayoutAlgorithm {
	base := NewForceDirectedLayout(width, height, seed)
	switch name {
	case "surreal":
		return NewSurrealLayout(base, noise, seed)
	default:
		return base
	}
}
