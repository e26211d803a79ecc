// Package metrics provides the observability hooks for docpathfix runs.
//
// Components receive a Recorder through dependency injection. The default is
// NoopRecorder so the corrector never needs nil checks:
//
//	c, _ := pathfix.New(pathfix.Options{Root: root, Recorder: metrics.NoopRecorder{}})
//
// When a metrics file or listen address is configured, the CLI swaps in a
// PrometheusRecorder bound to a private registry. One-shot runs export the
// registry in the node_exporter textfile format with WriteTextfile; watch mode
// can serve it over HTTP with HTTPHandler.
package metrics
