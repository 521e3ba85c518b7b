// Package handler implements the analysis server's HTTP endpoints.
//
// Successful analyses are written as bare AnalysisResult objects. Errors
// are written as {"code", "message"} objects, on the request/response
// endpoint and on the duplex channel alike.
package handler
