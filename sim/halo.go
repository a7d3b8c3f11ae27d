package sim

// ExchangeVelocityHalo copies the two interior boundary planes between
// adjacent chunks lo (the lower-Z chunk) and hi (the next chunk up in Z),
// for the three velocity components. It runs after the velocity pass and
// before the next stress pass, since the stress kernel is what consumes
// velocity values at the chunk seam (spec.md §4.6).
func ExchangeVelocityHalo(lo, hi *WaveFieldChunk) {
	exchangePlane(lo.Vx, hi.Vx, lo.W, lo.H, lo.Depth())
	exchangePlane(lo.Vy, hi.Vy, lo.W, lo.H, lo.Depth())
	exchangePlane(lo.Vz, hi.Vz, lo.W, lo.H, lo.Depth())
}

// ExchangeStressHalo is the stress-field counterpart of
// ExchangeVelocityHalo, run after the stress pass and before the velocity
// pass.
func ExchangeStressHalo(lo, hi *WaveFieldChunk) {
	exchangePlane(lo.Sxx, hi.Sxx, lo.W, lo.H, lo.Depth())
	exchangePlane(lo.Syy, hi.Syy, lo.W, lo.H, lo.Depth())
	exchangePlane(lo.Szz, hi.Szz, lo.W, lo.H, lo.Depth())
	exchangePlane(lo.Sxy, hi.Sxy, lo.W, lo.H, lo.Depth())
	exchangePlane(lo.Sxz, hi.Sxz, lo.W, lo.H, lo.Depth())
	exchangePlane(lo.Syz, hi.Syz, lo.W, lo.H, lo.Depth())
}

// exchangePlane copies hi's second plane (local z=1) onto lo's last plane
// (local z=depthLo-1), and lo's second-to-last plane (local z=depthLo-2)
// onto hi's first plane (local z=0). Data is copied, never aliased: there
// is no shared backing array between chunks.
func exchangePlane(lo, hi []float32, w, h, depthLo int) {
	planeSize := w * h
	copy(lo[(depthLo-1)*planeSize:depthLo*planeSize], hi[1*planeSize:2*planeSize])
	copy(hi[0:planeSize], lo[(depthLo-2)*planeSize:(depthLo-1)*planeSize])
}

// Pass identifies which half-step is about to run, so ApplyGlobalBoundaries
// knows which field family to mirror.
type Pass int

const (
	StressPass Pass = iota
	VelocityPass
)

// ApplyGlobalBoundaries enforces the free-surface (mirror) boundary
// condition at the domain's six faces, per spec.md §4.6 and the Open
// Question decision in SPEC_FULL.md §13: X/Y mirroring applies to every
// chunk, but Z mirroring only ever touches the first chunk's z=0 face and
// the last chunk's z=depth-1 face — mirroring every resident chunk's Z
// faces would be meaningless for interior chunks, which don't own a domain
// boundary there.
func ApplyGlobalBoundaries(c *WaveFieldChunk, isFirstChunk, isLastChunk bool, pass Pass) {
	if pass == StressPass {
		mirrorXFace(c.Vx, c.W, c.H, c.Depth())
		mirrorYFace(c.Vy, c.W, c.H, c.Depth())
		if isFirstChunk || isLastChunk {
			mirrorZFace(c.Vz, c.W, c.H, c.Depth(), isFirstChunk, isLastChunk)
		}
		return
	}

	mirrorXFace(c.Sxx, c.W, c.H, c.Depth())
	mirrorXFace(c.Sxy, c.W, c.H, c.Depth())
	mirrorXFace(c.Sxz, c.W, c.H, c.Depth())

	mirrorYFace(c.Syy, c.W, c.H, c.Depth())
	mirrorYFace(c.Sxy, c.W, c.H, c.Depth())
	mirrorYFace(c.Syz, c.W, c.H, c.Depth())

	if isFirstChunk || isLastChunk {
		mirrorZFace(c.Szz, c.W, c.H, c.Depth(), isFirstChunk, isLastChunk)
		mirrorZFace(c.Sxz, c.W, c.H, c.Depth(), isFirstChunk, isLastChunk)
		mirrorZFace(c.Syz, c.W, c.H, c.Depth(), isFirstChunk, isLastChunk)
	}
}

func mirrorXFace(field []float32, w, h, depth int) {
	for z := 0; z < depth; z++ {
		for y := 0; y < h; y++ {
			base := y*w + z*w*h
			field[base+0] = field[base+1]
			field[base+w-1] = field[base+w-2]
		}
	}
}

func mirrorYFace(field []float32, w, h, depth int) {
	for z := 0; z < depth; z++ {
		for x := 0; x < w; x++ {
			field[x+0*w+z*w*h] = field[x+1*w+z*w*h]
			field[x+(h-1)*w+z*w*h] = field[x+(h-2)*w+z*w*h]
		}
	}
}

func mirrorZFace(field []float32, w, h, depth int, isFirstChunk, isLastChunk bool) {
	planeSize := w * h
	if isFirstChunk {
		copy(field[0:planeSize], field[planeSize:2*planeSize])
	}
	if isLastChunk {
		copy(field[(depth-1)*planeSize:depth*planeSize], field[(depth-2)*planeSize:(depth-1)*planeSize])
	}
}
