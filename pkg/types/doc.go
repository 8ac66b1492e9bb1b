// Package types defines the core types and interfaces shared by the
// templatepig packages: the filesystem abstraction, the entries produced
// while walking a template, the paths bundle handed to template extension
// points, serialised answer-sets and the host collaborators (prompts,
// notices, output channel) the pipeline talks to.
package types
