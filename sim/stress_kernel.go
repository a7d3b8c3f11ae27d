package sim

import "math"

const damageRatePerSecond = 0.2

// StressPlane runs the stress kernel (spec.md §4.4) over one Z-plane
// (local index lz) of chunk c's interior. It is split out at plane
// granularity so a CPU backend can parallelize over Z the way spec.md §5
// requires ("parallelize over Z-planes within a chunk, keeping y,x
// inner"); a GPU backend instead launches one kernel invocation per chunk
// covering every plane.
func StressPlane(c *WaveFieldChunk, lz int, ctx StepContext) {
	if lz < 1 || lz > c.Depth()-2 {
		return
	}
	p := ctx.Params
	globalZ := c.StartZ + lz
	dx := p.PixelSize

	confiningPa := mpaToPascals(p.ConfiningPressureMPa)
	cohesionPa := mpaToPascals(p.CohesionMPa)
	phi := p.FailureAngleDeg * math.Pi / 180
	sinPhi, cosPhi := math.Sin(phi), math.Cos(phi)
	sqrt3 := math.Sqrt(3)

	for y := 1; y <= c.H-2; y++ {
		for x := 1; x <= c.W-2; x++ {
			if !p.IsMaterialSelected(ctx.Materials.At(x, y, globalZ)) {
				continue
			}
			rho := ctx.Density.At(x, y, globalZ)
			if rho <= 0 {
				continue
			}
			e, nu, ok := elasticsAt(p, ctx.Elastics, x, y, globalZ)
			if !ok {
				continue
			}
			mu, lambda := lameParameters(mpaToPascals(e), nu)

			i := c.idx(x, y, lz)
			ixm := c.idx(x-1, y, lz)
			iym := c.idx(x, y-1, lz)
			izm := c.idx(x, y, lz-1)

			dvxdx := (float64(c.Vx[i]) - float64(c.Vx[ixm])) / dx
			dvydy := (float64(c.Vy[i]) - float64(c.Vy[iym])) / dx
			dvzdz := (float64(c.Vz[i]) - float64(c.Vz[izm])) / dx
			dvxdy := (float64(c.Vx[i]) - float64(c.Vx[iym])) / dx
			dvydx := (float64(c.Vy[i]) - float64(c.Vy[ixm])) / dx
			dvxdz := (float64(c.Vx[i]) - float64(c.Vx[izm])) / dx
			dvzdx := (float64(c.Vz[i]) - float64(c.Vz[ixm])) / dx
			dvydz := (float64(c.Vy[i]) - float64(c.Vy[izm])) / dx
			dvzdy := (float64(c.Vz[i]) - float64(c.Vz[iym])) / dx

			epsVol := dvxdx + dvydy + dvzdz
			damage := float64(c.Damage[i])
			d := 1 - 0.9*damage

			sxx := float64(c.Sxx[i])
			syy := float64(c.Syy[i])
			szz := float64(c.Szz[i])
			sxy := float64(c.Sxy[i])
			sxz := float64(c.Sxz[i])
			syz := float64(c.Syz[i])

			if ctx.SourceVal != 0 {
				ddxx, ddyy, ddzz := ctx.Source.sourceStressDelta(ctx.SourceVal, ctx.Materials, x, y, globalZ)
				sxx += ddxx
				syy += ddyy
				szz += ddzz
			}

			sxx += ctx.Dt * d * (lambda*epsVol + 2*mu*dvxdx)
			syy += ctx.Dt * d * (lambda*epsVol + 2*mu*dvydy)
			szz += ctx.Dt * d * (lambda*epsVol + 2*mu*dvzdz)
			sxy += ctx.Dt * d * mu * (dvxdy + dvydx)
			sxz += ctx.Dt * d * mu * (dvxdz + dvzdx)
			syz += ctx.Dt * d * mu * (dvydz + dvzdy)

			if p.UsePlasticModel || p.UseBrittleModel {
				sxx, syy, szz, sxy, sxz, syz, damage = applyYield(
					sxx, syy, szz, sxy, sxz, syz, damage,
					confiningPa, cohesionPa, sinPhi, cosPhi, sqrt3,
					p.UseBrittleModel, p.UsePlasticModel, ctx.Dt,
				)
			}

			c.Sxx[i] = float32(sxx)
			c.Syy[i] = float32(syy)
			c.Szz[i] = float32(szz)
			c.Sxy[i] = float32(sxy)
			c.Sxz[i] = float32(sxz)
			c.Syz[i] = float32(syz)
			c.Damage[i] = float32(clampFloat(damage, 0, 1))
		}
	}
}

// applyYield evaluates the Drucker-Prager-style Mohr-Coulomb yield
// condition and, when violated, either accumulates scalar damage (brittle
// model) or return-maps the deviatoric stress back toward the yield
// surface (plastic model), per spec.md §4.4 step 7.
func applyYield(sxx, syy, szz, sxy, sxz, syz, damage, confiningPa, cohesionPa, sinPhi, cosPhi, sqrt3 float64, brittle, plastic bool, dt float64) (float64, float64, float64, float64, float64, float64, float64) {
	const eps = 1e-12

	meanStress := (sxx+syy+szz)/3 - confiningPa
	dxx := sxx - meanStress
	dyy := syy - meanStress
	dzz := szz - meanStress

	j2 := 0.5*(dxx*dxx+dyy*dyy+dzz*dzz) + sxy*sxy + sxz*sxz + syz*syz
	sqrtJ2 := math.Sqrt(maxFloat(0, j2))

	f := sqrtJ2 + (sinPhi/sqrt3)*meanStress - (cohesionPa*cosPhi)/sqrt3
	if f <= 0 {
		return sxx, syy, szz, sxy, sxz, syz, damage
	}

	if brittle {
		damage = clampFloat(damage+dt*damageRatePerSecond*f/(cohesionPa+eps), 0, 1)
	}

	if plastic {
		r := ((cohesionPa*cosPhi)/sqrt3 - (sinPhi/sqrt3)*meanStress) / (sqrtJ2 + eps)
		if r < 1 {
			dxx *= r
			dyy *= r
			dzz *= r
			sxx = dxx + meanStress
			syy = dyy + meanStress
			szz = dzz + meanStress
			sxy *= r
			sxz *= r
			syz *= r
		}
	}

	return sxx, syy, szz, sxy, sxz, syz, damage
}
