// Package imagehash computes the content digest used to deduplicate
// clipboard images.
//
// The digest is the hex MD5 of the image re-encoded as an uncompressed BMP
// byte stream. Two clipboard payloads with the same pixels therefore share a
// digest even when their original encodings differ.
package imagehash

import (
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"golang.org/x/image/bmp"
)

// Bitmap re-encodes img as an uncompressed BMP byte stream.
func Bitmap(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := bmp.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("bmp encode: %w", err)
	}
	return buf.Bytes(), nil
}

// Sum returns the hex MD5 of buf.
func Sum(buf []byte) string {
	sum := md5.Sum(buf)
	return hex.EncodeToString(sum[:])
}

// Digest decodes data (PNG, BMP, GIF or JPEG) and returns the MD5 of its
// bitmap re-encoding.
func Digest(data []byte) (string, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("image decode: %w", err)
	}
	buf, err := Bitmap(img)
	if err != nil {
		return "", err
	}
	return Sum(buf), nil
}
