// Package engine evolves scalar fields on a regular grid by explicit
// gradient descent on
//
//	Ω[C,I] = Σ [ V(C) + κ/2 |∇C|² + β C I ] dx^d
//
// One Step computes every operator on the pre-update fields, applies an
// Euler update, raises C to its positivity floor, re-pins the boundary,
// advances time and records a diagnostics sample. Step never reports
// divergence: callers poll Check after each step and stop on the first
// blow-up, which leaves the engine terminal.
//
// The scheme is only conditionally stable. With the Fixed step sizer the
// caller chooses dt below Params.DiffusiveLimit; the CFL sizer estimates
// dt before every step instead.
package engine
