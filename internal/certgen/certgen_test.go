package certgen

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func parseCert(t *testing.T, certPEM []byte) *x509.Certificate {
	t.Helper()
	block, _ := pem.Decode(certPEM)
	if block == nil || block.Type != "CERTIFICATE" {
		t.Fatalf("invalid certificate PEM: %q", certPEM)
	}
	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		t.Fatalf("parse certificate: %v", err)
	}
	return cert
}

func TestGenerateServerCertificate(t *testing.T) {
	certPEM, keyPEM, err := GenerateServerCertificate([]string{"localhost", "127.0.0.1"}, time.Hour)
	if err != nil {
		t.Fatalf("GenerateServerCertificate returned error: %v", err)
	}

	if _, err := tls.X509KeyPair(certPEM, keyPEM); err != nil {
		t.Fatalf("certificate and key do not form a pair: %v", err)
	}

	cert := parseCert(t, certPEM)
	if cert.Subject.CommonName != "localhost" {
		t.Errorf("CommonName = %q; want %q", cert.Subject.CommonName, "localhost")
	}
	if err := cert.VerifyHostname("localhost"); err != nil {
		t.Errorf("VerifyHostname(localhost): %v", err)
	}
	if err := cert.VerifyHostname("127.0.0.1"); err != nil {
		t.Errorf("VerifyHostname(127.0.0.1): %v", err)
	}
	if time.Until(cert.NotAfter) > time.Hour {
		t.Errorf("NotAfter = %v; want within an hour", cert.NotAfter)
	}

	pool := x509.NewCertPool()
	pool.AddCert(cert)
	if _, err := cert.Verify(x509.VerifyOptions{DNSName: "localhost", Roots: pool}); err != nil {
		t.Errorf("self-signed certificate does not verify against itself: %v", err)
	}
}

func TestGenerateServerCertificate_NoHosts(t *testing.T) {
	if _, _, err := GenerateServerCertificate(nil, time.Hour); err == nil {
		t.Fatal("expected error for empty host list")
	}
}

func TestWriteFiles(t *testing.T) {
	certPEM, keyPEM, err := GenerateServerCertificate([]string{"localhost"}, time.Hour)
	if err != nil {
		t.Fatalf("GenerateServerCertificate returned error: %v", err)
	}

	dir := filepath.Join(t.TempDir(), "certs")
	certPath, keyPath, err := WriteFiles(dir, certPEM, keyPEM)
	if err != nil {
		t.Fatalf("WriteFiles returned error: %v", err)
	}

	if _, err := tls.LoadX509KeyPair(certPath, keyPath); err != nil {
		t.Fatalf("LoadX509KeyPair: %v", err)
	}
	info, err := os.Stat(keyPath)
	if err != nil {
		t.Fatalf("stat key: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("key permissions = %o; want 600", perm)
	}
}

func TestWriteFiles_Error(t *testing.T) {
	// a regular file where the directory should be
	blocker := filepath.Join(t.TempDir(), "certs")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := WriteFiles(blocker, []byte("c"), []byte("k")); err == nil {
		t.Fatal("expected error when dir is a file")
	}
}
