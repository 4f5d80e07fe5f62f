package imgutil

import (
	"bytes"
	"errors"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
)

// JPEGMimeType は Compress が返す MIME タイプです。
const JPEGMimeType = "image/jpeg"

// ErrNotSmaller は再エンコードしてもサイズが減らなかったことを表します。
var ErrNotSmaller = errors.New("compressed image is not smaller than the original")

// Compress は画像データ（PNG, GIF, JPEG等）を JPEG に再エンコードします。
// 再エンコード後の方が元より大きい場合は ErrNotSmaller を返すので、呼び出し側は元データを使います。
func Compress(data []byte, quality int) ([]byte, string, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", err
	}

	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, "", err
	}
	if buf.Len() >= len(data) {
		return nil, "", ErrNotSmaller
	}
	return buf.Bytes(), JPEGMimeType, nil
}
