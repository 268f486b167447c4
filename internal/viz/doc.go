// Package viz draws a running world in the terminal.
//
// [Model] is a Bubble Tea program that renders circles onto a braille
// [Canvas], with a stats panel and an energy chart beside it. The physics
// runs in its own goroutine; the model only reads published snapshots and
// forwards input to the world.
//
// # Key Bindings
//
//	+ / -      scale all velocities by 1.25 / 0.75
//	arrows     nudge gravity by 10
//	space      earth gravity (0, 9.80665)
//	0          zero gravity
//	x          stop every body
//	n, p       insert a random circle
//	c, delete  clear the world
//	r          log a world report
//	b          cycle boundary mode
//	g          toggle pairwise gravity
//	t          cycle themes
//	?          help overlay
//	q          quit
//
// A left click inserts a point-sized body at the cursor; holding shift, alt
// or ctrl inserts a heavy attractor instead.
package viz
