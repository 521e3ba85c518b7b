// Package buildinfo exposes build-time version information for the
// evalboard binaries.
//
// Values are injected with ldflags:
//
//	go build -ldflags "-X github.com/yndnr/evalboard/internal/infra/buildinfo.Version=v1.0.0 \
//	  -X github.com/yndnr/evalboard/internal/infra/buildinfo.Commit=$(git rev-parse --short HEAD)" ./cmd/...
package buildinfo
