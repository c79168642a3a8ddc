// Package convert wraps one invocation of the external transcoding engine
// for one input file.
//
// The engine is push-based: after [Engine.Start] it emits zero or more
// progress events followed by exactly one terminal event (end or error) and
// then closes the channel. [Converter.ConvertOne] collapses that stream into
// a single error result, logging progress along the way and forwarding it
// to an optional progress hook.
package convert
