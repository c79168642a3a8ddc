// Package probe runs ffprobe once per file and exposes the few properties
// the converter needs: duration (for percent progress) and the primary
// video stream's geometry and frame rate (for source stats).
package probe
