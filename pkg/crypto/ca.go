package crypto

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"fmt"
	"time"
)

// generateKeyPair generates a CA key pair and self-signed certificate.
// Returns PEM-encoded private key and certificate.
func generateKeyPair() ([]byte, []byte, error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, nil, fmt.Errorf("ecdsa.GenerateKey(P256): %w", err)
	}

	cert, err := generateCACertificate(key)
	if err != nil {
		return nil, nil, fmt.Errorf("generateCACertificate(key): %w", err)
	}

	certPem := pem.EncodeToMemory(&pem.Block{
		Type:  "CERTIFICATE",
		Bytes: cert,
	})

	b, err := x509.MarshalECPrivateKey(key)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to marshal ECDSA private key: %w", err)
	}
	keyPem := pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: b})

	return keyPem, certPem, nil
}

// generateCACertificate creates a self-signed CA certificate with a random common name.
func generateCACertificate(key *ecdsa.PrivateKey) ([]byte, error) {
	cn, err := GenerateRandomString(12)
	if err != nil {
		return nil, fmt.Errorf("generating random common name: %w", err)
	}

	serial, err := randomSerial()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	tml := x509.Certificate{
		NotBefore:    now.Add(-time.Hour),
		NotAfter:     now.Add(24 * time.Hour),
		SerialNumber: serial,
		Subject: pkix.Name{
			CommonName:   "wsconnect CA " + cn,
			Organization: []string{"wsconnect"},
		},
		BasicConstraintsValid: true,
		IsCA:                  true,
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageDigitalSignature,
	}
	cert, err := x509.CreateCertificate(rand.Reader, &tml, &tml, &key.PublicKey, key)
	if err != nil {
		return nil, fmt.Errorf("creating certificate: %w", err)
	}

	return cert, nil
}
