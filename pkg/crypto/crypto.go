// Package crypto generates ephemeral certificate chains for the echo
// server's wss listener.
package crypto

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
)

// Bundle is a freshly generated CA and a server certificate signed by it.
type Bundle struct {
	// Pool contains only the CA certificate. Clients trusting it can verify Cert.
	Pool *x509.CertPool
	// CAPEM is the PEM encoded CA certificate, for handing to other processes.
	CAPEM []byte
	// Cert is the server certificate with its private key.
	Cert tls.Certificate
}

// GenerateCertificates creates a new CA and a server certificate valid for
// the given host names and IP addresses.
func GenerateCertificates(hosts ...string) (*Bundle, error) {
	caKeyPEM, caCertPEM, err := generateKeyPair()
	if err != nil {
		return nil, fmt.Errorf("generateKeyPair(): %w", err)
	}

	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(caCertPEM) {
		return nil, fmt.Errorf("adding CA certificate to pool")
	}

	cert, err := generateCertificate(caCertPEM, caKeyPEM, hosts)
	if err != nil {
		return nil, fmt.Errorf("generateCertificate(cert, key, %v): %w", hosts, err)
	}

	return &Bundle{Pool: pool, CAPEM: caCertPEM, Cert: cert}, nil
}
