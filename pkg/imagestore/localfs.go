package imagestore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/shouni/go-remote-io/pkg/remoteio"
)

// LocalReader は root ディレクトリ配下に限定した remoteio.InputReader です。
// 実際の読み込みは remoteio.UniversalInputReader に任せ、ここではパスの閉じ込めだけを行います。
type LocalReader struct {
	root  string
	inner remoteio.InputReader
}

// NewLocalReader は root を基点とする LocalReader を作成します。
func NewLocalReader(root string) (*LocalReader, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, errors.New("root is required")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("root の解決に失敗しました: %w", err)
	}
	return &LocalReader{root: abs, inner: remoteio.NewUniversalInputReader(nil, nil)}, nil
}

// Open はファイルを開きます。"file://" プレフィックスは取り除かれます。
func (r *LocalReader) Open(ctx context.Context, uri string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := r.resolve(uri)
	if err != nil {
		return nil, err
	}
	return r.inner.Open(ctx, p)
}

// List は uri 直下の通常ファイルを fn に渡します（再帰はしません）。
func (r *LocalReader) List(ctx context.Context, uri string, fn func(string) error) error {
	dir, err := r.resolve(uri)
	if err != nil {
		return err
	}
	return r.inner.List(ctx, dir, fn)
}

func (r *LocalReader) resolve(uri string) (string, error) {
	if remoteio.IsRemoteURI(uri) {
		return "", fmt.Errorf("リモート URI は扱えません: %s", uri)
	}
	p := strings.TrimPrefix(uri, "file://")
	if !filepath.IsAbs(p) {
		p = filepath.Join(r.root, p)
	}
	p = filepath.Clean(p)
	rel, err := filepath.Rel(r.root, p)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("root の外側へのアクセスは許可されていません: %s", uri)
	}
	return p, nil
}
