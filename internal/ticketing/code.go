package ticketing

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
)

const scanCodeBytes = 16

func newScanCode() (string, error) {
	byt := make([]byte, scanCodeBytes)
	if _, err := rand.Read(byt); err != nil {
		return "", err
	}
	return strings.ToUpper(hex.EncodeToString(byt)), nil
}
