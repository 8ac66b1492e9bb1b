// Package sandbox builds the isolated JavaScript execution contexts that run
// template authors' code.
//
// Every Sandbox is its own goja runtime. Author code sees exactly the helper
// set installed by Factory.CreateContext plus the caller's extra bindings:
// case conversion, pluralisation, prompt proxies backed by the host, a few
// read-only filesystem and path helpers, and log. Values never cross
// runtimes directly; answer-sets move between sandboxes as JSON snapshots
// (types.Answers), which also makes every hand-off a deep copy.
package sandbox
