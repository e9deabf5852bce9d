// Package media is the boundary to the external ffmpeg/ffprobe tools: the
// duration probe, the declarative filter graph and its rendering, the
// transform invocation with streamed progress, and the progress line parser.
package media
