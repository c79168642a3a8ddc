// Package ffmpeg drives the ffmpeg binary as a [convert.Engine].
//
// A conversion is a single ffmpeg process. Machine-readable progress is
// requested with "-progress pipe:2" and parsed from stderr alongside the
// regular error output, which is kept as a short tail for error
// classification. The source duration, when ffprobe is available, turns
// out_time into a percentage.
package ffmpeg
