package sim

const velocityClamp = 1e4 // m/s, CPU path clamp per spec.md §4.5 step 6

// VelocityPlane runs the velocity kernel (spec.md §4.5) over one Z-plane
// (local index lz) of chunk c's deep interior. Split at plane granularity
// for the same reason as StressPlane.
func VelocityPlane(c *WaveFieldChunk, lz int, ctx StepContext) {
	if lz < 2 || lz > c.Depth()-3 {
		return
	}
	p := ctx.Params
	globalZ := c.StartZ + lz
	dx := p.PixelSize
	damping := p.ArtificialDampingFactor

	for y := 2; y <= c.H-3; y++ {
		for x := 2; x <= c.W-3; x++ {
			if !p.IsMaterialSelected(ctx.Materials.At(x, y, globalZ)) {
				continue
			}
			rho := ctx.Density.At(x, y, globalZ)
			if rho <= 0 {
				continue
			}
			rhoHat := clampedDensity(rho)

			i := c.idx(x, y, lz)

			// Normal stress gradients: one-sided backward differences.
			dSxxDx := (f64(c.Sxx[i]) - f64(c.Sxx[c.idx(x-1, y, lz)])) / dx
			dSyyDy := (f64(c.Syy[i]) - f64(c.Syy[c.idx(x, y-1, lz)])) / dx
			dSzzDz := (f64(c.Szz[i]) - f64(c.Szz[c.idx(x, y, lz-1)])) / dx

			// Shear stress gradients: averaged 2x2 staggered-face stencils,
			// required to avoid checkerboard noise (spec.md §4.5 step 2).
			dSxyDy := 0.25 * ((f64(c.Sxy[i]) + f64(c.Sxy[c.idx(x+1, y, lz)])) -
				(f64(c.Sxy[c.idx(x, y-1, lz)]) + f64(c.Sxy[c.idx(x+1, y-1, lz)]))) / dx
			dSxzDz := 0.25 * ((f64(c.Sxz[i]) + f64(c.Sxz[c.idx(x+1, y, lz)])) -
				(f64(c.Sxz[c.idx(x, y, lz-1)]) + f64(c.Sxz[c.idx(x+1, y, lz-1)]))) / dx

			dSxyDx := 0.25 * ((f64(c.Sxy[i]) + f64(c.Sxy[c.idx(x, y+1, lz)])) -
				(f64(c.Sxy[c.idx(x-1, y, lz)]) + f64(c.Sxy[c.idx(x-1, y+1, lz)]))) / dx
			dSyzDz := 0.25 * ((f64(c.Syz[i]) + f64(c.Syz[c.idx(x, y+1, lz)])) -
				(f64(c.Syz[c.idx(x, y, lz-1)]) + f64(c.Syz[c.idx(x, y+1, lz-1)]))) / dx

			dSxzDx := 0.25 * ((f64(c.Sxz[i]) + f64(c.Sxz[c.idx(x, y, lz+1)])) -
				(f64(c.Sxz[c.idx(x-1, y, lz)]) + f64(c.Sxz[c.idx(x-1, y, lz+1)]))) / dx
			dSyzDy := 0.25 * ((f64(c.Syz[i]) + f64(c.Syz[c.idx(x, y, lz+1)])) -
				(f64(c.Syz[c.idx(x, y-1, lz)]) + f64(c.Syz[c.idx(x, y-1, lz+1)]))) / dx

			ax := (dSxxDx + dSxyDy + dSxzDz) / rhoHat
			ay := (dSxyDx + dSyyDy + dSyzDz) / rhoHat
			az := (dSxzDx + dSyzDy + dSzzDz) / rhoHat

			lapVx := laplacian(c.Vx, c, x, y, lz)
			lapVy := laplacian(c.Vy, c, x, y, lz)
			lapVz := laplacian(c.Vz, c, x, y, lz)

			vx := clampFloat(f64(c.Vx[i])*0.999+ctx.Dt*ax+(damping/6)*lapVx, -velocityClamp, velocityClamp)
			vy := clampFloat(f64(c.Vy[i])*0.999+ctx.Dt*ay+(damping/6)*lapVy, -velocityClamp, velocityClamp)
			vz := clampFloat(f64(c.Vz[i])*0.999+ctx.Dt*az+(damping/6)*lapVz, -velocityClamp, velocityClamp)

			c.Vx[i] = float32(vx)
			c.Vy[i] = float32(vy)
			c.Vz[i] = float32(vz)

			c.MaxAbsVx[i] = float32(maxFloat(f64(c.MaxAbsVx[i]), absFloat(vx)))
			c.MaxAbsVy[i] = float32(maxFloat(f64(c.MaxAbsVy[i]), absFloat(vy)))
			c.MaxAbsVz[i] = float32(maxFloat(f64(c.MaxAbsVz[i]), absFloat(vz)))
		}
	}
}

func f64(v float32) float64 { return float64(v) }

// laplacian computes the 6-point Laplacian of a velocity component at
// (x, y, lz) used as the artificial-viscosity smoothing term.
func laplacian(v []float32, c *WaveFieldChunk, x, y, lz int) float64 {
	center := f64(v[c.idx(x, y, lz)])
	sum := f64(v[c.idx(x-1, y, lz)]) + f64(v[c.idx(x+1, y, lz)]) +
		f64(v[c.idx(x, y-1, lz)]) + f64(v[c.idx(x, y+1, lz)]) +
		f64(v[c.idx(x, y, lz-1)]) + f64(v[c.idx(x, y, lz+1)])
	return sum - 6*center
}
