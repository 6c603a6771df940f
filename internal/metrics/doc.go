// Package metrics aggregates the outcome of REST calls made by the generator.
//
// A [Collector] implements the client's recorder hook and keeps per-method
// counts plus an HDR latency histogram:
//
//	collector := metrics.NewCollector()
//	client := restclient.New(baseURL, restclient.WithRecorder(collector))
//	...
//	stats := collector.Stats()
//	logger.Info("request summary", stats.LogArgs()...)
package metrics
