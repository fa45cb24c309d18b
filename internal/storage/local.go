package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// LocalStore keeps images in one flat directory that is served statically
type LocalStore struct {
	dir        string
	urlPrefix  string
	compressor Compressor
	now        func() time.Time
}

// NewLocalStore creates dir if needed
func NewLocalStore(dir, urlPrefix string, c Compressor) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStore{dir: dir, urlPrefix: strings.TrimRight(urlPrefix, "/"), compressor: c, now: time.Now}, nil
}

func (s *LocalStore) Save(ctx context.Context, data []byte) (string, error) {
	out, err := s.compressor.Compress(data)
	if err != nil {
		return "", err
	}
	name := NewObjectName(s.now())
	if err := writeAtomic(filepath.Join(s.dir, name), bytes.NewReader(out)); err != nil {
		return "", err
	}
	return s.urlPrefix + "/" + name, nil
}

func (s *LocalStore) Remove(ctx context.Context, url string) error {
	name, err := s.nameFromURL(url)
	if err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (s *LocalStore) nameFromURL(url string) (string, error) {
	name, ok := strings.CutPrefix(url, s.urlPrefix+"/")
	if !ok || name == "" || strings.ContainsAny(name, `/\`) || name == ".." || name == "." {
		return "", fmt.Errorf("not a stored image url: %q", url)
	}
	return name, nil
}

// writeAtomic writes through a .part file so readers never see a partial image
func writeAtomic(path string, r io.Reader) error {
	tmp := path + ".part"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}
