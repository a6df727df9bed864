package core

import (
	"crypto/ed25519"
	"crypto/x509"
	"encoding/pem"

	"github.com/pkg/errors"
)

// GenerateKeyPair mints a fresh ed25519 keypair, PEM encoded.
func GenerateKeyPair() (publicPem string, privatePem string, err error) {
	pub, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		return "", "", errors.Wrap(err, "failed to generate keypair")
	}

	qb, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return "", "", errors.Wrap(err, "failed to marshal public key")
	}

	pb, err := x509.MarshalPKCS8PrivateKey(priv)
	if err != nil {
		return "", "", errors.Wrap(err, "failed to marshal private key")
	}

	publicPem = string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: qb}))
	privatePem = string(pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: pb}))

	return publicPem, privatePem, nil
}

// ParsePrivateKey decodes a PEM encoded PKCS8 private key.
func ParsePrivateKey(privatePem string) (any, error) {
	block, _ := pem.Decode([]byte(privatePem))
	if block == nil {
		return nil, errors.New("failed to parse PEM block containing the key")
	}

	priv, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse DER encoded private key")
	}

	return priv, nil
}
