package sim

// WaveFieldChunk is a contiguous Z-slab [StartZ, EndZ) of the full volume:
// the unit of residency and kernel dispatch. Arrays are all allocated iff
// IsResident; an offloaded chunk has a valid OffloadPath and no arrays.
type WaveFieldChunk struct {
	StartZ, EndZ int // global Z range; EndZ-StartZ >= 2 so halos exist
	W, H         int

	Vx, Vy, Vz             []float32
	Sxx, Syy, Szz          []float32
	Sxy, Sxz, Syz          []float32
	Damage                 []float32
	MaxAbsVx, MaxAbsVy, MaxAbsVz []float32

	IsResident  bool
	OffloadPath string
}

// Depth is the chunk's Z extent, EndZ-StartZ.
func (c *WaveFieldChunk) Depth() int { return c.EndZ - c.StartZ }

func (c *WaveFieldChunk) idx(x, y, lz int) int {
	return voxelIndex(c.W, c.H, x, y, lz)
}

// allocate allocates all thirteen field arrays, zero-filled, and marks the
// chunk resident.
func (c *WaveFieldChunk) allocate() {
	n := c.W * c.H * c.Depth()
	c.Vx = make([]float32, n)
	c.Vy = make([]float32, n)
	c.Vz = make([]float32, n)
	c.Sxx = make([]float32, n)
	c.Syy = make([]float32, n)
	c.Szz = make([]float32, n)
	c.Sxy = make([]float32, n)
	c.Sxz = make([]float32, n)
	c.Syz = make([]float32, n)
	c.Damage = make([]float32, n)
	c.MaxAbsVx = make([]float32, n)
	c.MaxAbsVy = make([]float32, n)
	c.MaxAbsVz = make([]float32, n)
	c.IsResident = true
}

// release drops all thirteen arrays and marks the chunk non-resident. It is
// called only after a successful offload.
func (c *WaveFieldChunk) release() {
	c.Vx, c.Vy, c.Vz = nil, nil, nil
	c.Sxx, c.Syy, c.Szz = nil, nil, nil
	c.Sxy, c.Sxz, c.Syz = nil, nil, nil
	c.Damage = nil
	c.MaxAbsVx, c.MaxAbsVy, c.MaxAbsVz = nil, nil, nil
	c.IsResident = false
}

// chunkBytesPerZ returns the per-Z-plane byte footprint of the thirteen
// float32 arrays for a W*H plane: P = W*H*4*16 per spec.md's chunking rule
// (13 real arrays rounded up to a 16-array budget to leave headroom for
// transient per-plane scratch during the kernel pass).
func chunkBytesPerZ(w, h int) int64 {
	return int64(w) * int64(h) * 4 * 16
}

// chunkDepthFor implements the chunking rule: given a target byte budget
// B = max(ChunkSizeMB, 256) * 2^20 and per-Z footprint P, pick
// chunkDepth = clamp(B/P, 8, depth).
func chunkDepthFor(p *SimulationParameters) int {
	mb := p.ChunkSizeMB
	if mb < 256 {
		mb = 256
	}
	budget := int64(mb) * (1 << 20)
	perZ := chunkBytesPerZ(p.Width, p.Height)
	depth := int(budget / perZ)
	return clampInt(depth, 8, p.Depth)
}

// chunkBounds partitions [0, totalDepth) into contiguous [start,end) slabs
// of chunkDepth Z-planes each (the last one shorter if totalDepth doesn't
// divide evenly), folding a trailing remainder shorter than 2 planes into
// the previous slab so every slab can support a halo exchange.
func chunkBounds(chunkDepth, totalDepth int) [][2]int {
	var bounds [][2]int
	for z := 0; z < totalDepth; z += chunkDepth {
		end := z + chunkDepth
		if end > totalDepth {
			end = totalDepth
		}
		bounds = append(bounds, [2]int{z, end})
	}
	if len(bounds) > 1 {
		last := bounds[len(bounds)-1]
		if last[1]-last[0] < 2 {
			bounds[len(bounds)-2][1] = last[1]
			bounds = bounds[:len(bounds)-1]
		}
	}
	return bounds
}

// allocateChunks partitions [0, Depth) into contiguous Z-slabs of
// chunkDepthFor(p) and returns them fully resident and zero-filled, in Z
// order.
func allocateChunks(p *SimulationParameters) []*WaveFieldChunk {
	bounds := chunkBounds(chunkDepthFor(p), p.Depth)

	chunks := make([]*WaveFieldChunk, 0, len(bounds))
	for _, b := range bounds {
		c := &WaveFieldChunk{StartZ: b[0], EndZ: b[1], W: p.Width, H: p.Height}
		c.allocate()
		chunks = append(chunks, c)
	}
	return chunks
}
