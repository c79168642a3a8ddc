// Package pipeline is the batch conversion driver: it prepares the input and
// output directories, lists the recognized videos of the input directory,
// converts them strictly one after another, and reports per-file outcomes
// and a summary.
//
// Only directory preparation and listing failures are fatal. Every per-file
// failure is logged, recorded in the [BatchResult] and the batch moves on.
package pipeline
