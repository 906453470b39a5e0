package capsa

import "github.com/tessarai/capsa-go/internal/b64"

func encodeB64(data []byte) string {
	return b64.Encode(data)
}

func encodeIV(iv []byte) string {
	return b64.Encode(iv)
}

func decodeB64(s string) ([]byte, error) {
	return b64.Decode(s)
}
