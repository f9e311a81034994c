// Command jwtkey generates the ECDSA P-256 key the API signs access tokens
// with and prints it in the form JWT_SECRET expects.
package main

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"flag"
	"fmt"
	"os"
	"strings"
)

func main() {
	out := flag.String("out", "", "also write the PEM key to this file (mode 0600)")
	flag.Parse()

	privateKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to generate key: %v\n", err)
		os.Exit(1)
	}

	der, err := x509.MarshalECPrivateKey(privateKey)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to marshal private key: %v\n", err)
		os.Exit(1)
	}
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: der})

	// single line with escaped newlines, as config.Load unescapes it
	fmt.Printf("JWT_SECRET=%s\n", strings.ReplaceAll(strings.TrimSpace(string(keyPEM)), "\n", `\n`))

	if *out != "" {
		if err := os.WriteFile(*out, keyPEM, 0o600); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write private key file: %v\n", err)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "Private key saved to %s\n", *out)
	}
}
