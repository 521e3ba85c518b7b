package tlsroots

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
)

// ErrNoCertsFound means a CA file held no CERTIFICATE block.
var ErrNoCertsFound = errors.New("tlsroots: no certificates found in PEM file")

// ClientConfig returns the TLS config the CLI uses for wss:// and https://
// servers: system roots plus every certificate in caFile. An empty caFile
// returns nil, which leaves Go's defaults in place.
func ClientConfig(caFile string) (*tls.Config, error) {
	if caFile == "" {
		return nil, nil
	}
	data, err := os.ReadFile(caFile)
	if err != nil {
		return nil, fmt.Errorf("tlsroots: read ca file: %w", err)
	}
	roots, err := x509.SystemCertPool()
	if err != nil {
		roots = x509.NewCertPool()
	}
	if err := appendPEM(roots, data); err != nil {
		return nil, fmt.Errorf("tlsroots: %s: %w", caFile, err)
	}
	return &tls.Config{RootCAs: roots, MinVersion: tls.VersionTLS12}, nil
}

// appendPEM parses each CERTIFICATE block strictly; other block types are
// skipped so a combined cert+key file is accepted.
func appendPEM(roots *x509.CertPool, data []byte) error {
	n := 0
	for {
		var block *pem.Block
		block, data = pem.Decode(data)
		if block == nil {
			break
		}
		if block.Type != "CERTIFICATE" {
			continue
		}
		cert, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return fmt.Errorf("parse certificate %d: %w", n+1, err)
		}
		roots.AddCert(cert)
		n++
	}
	if n == 0 {
		return ErrNoCertsFound
	}
	return nil
}
