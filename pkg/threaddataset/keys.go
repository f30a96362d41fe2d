package threaddataset

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

// PSKc derivation parameters.
const (
	PSKcIterations = 16384
	PSKcLength     = 16

	// NetworkKeyLength is the size of a Thread network key.
	NetworkKeyLength = 16
)

// GeneratePSKc derives the pre-shared commissioner key from a passphrase
// of 6 to 255 characters, a network name of 1 to 16 characters and the
// extended PAN id as 16 hex digits. The salt is "Thread", the upper cased
// network name and the extended PAN id octets.
func GeneratePSKc(passphrase, networkName, extPanIDHex string) ([]byte, error) {
	if n := len([]rune(passphrase)); n < 6 || n > 255 {
		return nil, fmt.Errorf("%w: passphrase must be 6 to 255 characters, got %d", ErrInvalidLength, n)
	}
	if n := len([]rune(networkName)); n < 1 || n > 16 {
		return nil, fmt.Errorf("%w: network name must be 1 to 16 characters, got %d", ErrInvalidLength, n)
	}
	if len(extPanIDHex) != 16 {
		return nil, fmt.Errorf("%w: extended PAN id must be 16 hex digits, got %d", ErrInvalidLength, len(extPanIDHex))
	}
	extPanID, err := hex.DecodeString(extPanIDHex)
	if err != nil {
		return nil, fmt.Errorf("%w: extended PAN id: %v", ErrMalformed, err)
	}
	salt := append([]byte("Thread"), strings.ToUpper(networkName)...)
	salt = append(salt, extPanID...)
	return pbkdf2.Key([]byte(passphrase), salt, PSKcIterations, PSKcLength, sha256.New), nil
}

// GenerateNetworkKey reads a random network key from r, or from
// crypto/rand when r is nil.
func GenerateNetworkKey(r io.Reader) ([]byte, error) {
	if r == nil {
		r = rand.Reader
	}
	key := make([]byte, NetworkKeyLength)
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, err
	}
	return key, nil
}
