package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
)

const SecretKeyBytesLen = 32

// Print pair of random secrets in '.env' format
// Access and refresh tokens must be signed with different keys
func main() {
	for _, name := range []string{"ACCESS_TOKEN_SECRET", "REFRESH_TOKEN_SECRET"} {
		secret, err := newSecret()
		if err != nil {
			fmt.Fprintf(os.Stderr, "error while generating secret key: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("%s=%s\n", name, secret)
	}
}

func newSecret() (string, error) {
	b := make([]byte, SecretKeyBytesLen)

	_, err := rand.Read(b)
	if err != nil {
		return "", err
	}

	return hex.EncodeToString(b), nil
}
