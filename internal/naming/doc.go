// Package naming derives output paths from input files and resolves in-run
// collisions between inputs that map to the same output name.
//
// The mapping is flat: <outputDir>/<input basename without ext>.<ext>.
// Inputs that differ only by extension (clip.mp4, clip.MOV) collide; the
// [CollisionResolver] applies the configured policy.
package naming
