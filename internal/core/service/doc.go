// Package service contains the analysis server's application services.
//
// AnalysisService validates a request, resolves the search depth, serves
// cached results and otherwise runs the engine. Storage and the engine are
// injected through small interfaces so the service can be tested with
// fakes.
package service
