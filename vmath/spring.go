package vmath

// SpringStep advances a critically damped spring toward target using
// semi-implicit Euler. omega is the undamped angular frequency; critical
// damping coefficient is 2*omega.
// Stable for omega*dt < 1, which holds at frame rates the engine targets.
func SpringStep(pos, vel *float64, target, omega, dt float64) {
	accel := -omega*omega*(*pos-target) - 2*omega*(*vel)
	*vel += accel * dt
	*pos += *vel * dt
}

// SpringKick adds an instantaneous velocity impulse to a spring, clamping the
// resulting velocity magnitude so the spring cannot be kicked past maxVel.
func SpringKick(vel *float64, impulse, maxVel float64) {
	*vel = Clamp(*vel+impulse, -maxVel, maxVel)
}
