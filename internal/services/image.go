package services

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
)

// Allowed image signatures
var imageSignatures = []struct {
	prefix []byte
	mime   string
}{
	{[]byte("\x89PNG"), "image/png"},
	{[]byte("\xFF\xD8\xFF"), "image/jpeg"},
	{[]byte("GIF87a"), "image/gif"},
	{[]byte("GIF89a"), "image/gif"},
}

// DetectImage sniffs the leading bytes and returns the image MIME type.
func DetectImage(data []byte) (string, bool) {
	for _, sig := range imageSignatures {
		if bytes.HasPrefix(data, sig.prefix) {
			return sig.mime, true
		}
	}
	// BMP file header is 14 bytes
	if len(data) >= 14 && bytes.HasPrefix(data, []byte("BM")) {
		return "image/bmp", true
	}
	// RIFF container with a WEBP form type
	if len(data) >= 12 && bytes.Equal(data[:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WEBP")) {
		return "image/webp", true
	}
	return "", false
}

// ContentHash is the hex SHA-256 of the raw bytes, used for duplicate detection.
func ContentHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// imageExtension maps a sniffed MIME type to a file extension for archive keys.
func imageExtension(mime string) string {
	switch mime {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	case "image/bmp":
		return ".bmp"
	}
	return ".bin"
}
