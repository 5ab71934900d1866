package keys

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"
	"path"

	"golang.org/x/crypto/ssh"
)

type KeyPair struct {
	// Public is in authorized_keys format, as Azure expects it.
	Public  []byte
	Private []byte
}

func Generate() (*KeyPair, error) {
	key, err := rsa.GenerateKey(rand.Reader, 4096)
	if err != nil {
		return nil, fmt.Errorf("failed to generate rsa key: %w", err)
	}

	priv := pem.EncodeToMemory(
		&pem.Block{
			Type:  "RSA PRIVATE KEY",
			Bytes: x509.MarshalPKCS1PrivateKey(key),
		},
	)

	publicKey, err := ssh.NewPublicKey(key.Public())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal public key: %w", err)
	}
	return &KeyPair{
		Public:  ssh.MarshalAuthorizedKey(publicKey),
		Private: priv,
	}, nil
}

// Write stores the pair as <dir>/<name> and <dir>/<name>.pub and returns
// the private key path.
func (k *KeyPair) Write(dir, name string) (string, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("failed to create key directory: %w", err)
	}
	privatePath := path.Join(dir, name)
	if err := os.WriteFile(privatePath, k.Private, 0600); err != nil {
		return "", fmt.Errorf("failed to write private key: %w", err)
	}
	if err := os.WriteFile(privatePath+".pub", k.Public, 0644); err != nil {
		return "", fmt.Errorf("failed to write public key: %w", err)
	}
	return privatePath, nil
}
