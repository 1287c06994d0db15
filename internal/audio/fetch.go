package audio

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/schollz/beatcrop/internal/storage"
	"github.com/schollz/beatcrop/internal/types"
)

// Downloader fetches an object-store key into a local file.
type Downloader interface {
	DownloadToFile(ctx context.Context, key, dstPath string) error
}

// Fetcher resolves a track path to a decoded buffer. Plain paths are read
// from disk; r2:// paths are downloaded through Remote first. The file
// extension picks the decoder.
type Fetcher struct {
	Remote  Downloader
	TempDir string
}

func (f *Fetcher) Fetch(ctx context.Context, path string) (*types.DecodedAudioBuffer, error) {
	local := path
	if key, ok := storage.ObjectKey(path); ok {
		if f.Remote == nil {
			return nil, fmt.Errorf("fetch %s: no object store configured", path)
		}
		tmp, err := os.CreateTemp(f.TempDir, "beatcrop-*"+filepath.Ext(key))
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", path, err)
		}
		tmp.Close()
		defer os.Remove(tmp.Name())

		log.Printf("downloading %s to %s", key, tmp.Name())
		if err := f.Remote.DownloadToFile(ctx, key, tmp.Name()); err != nil {
			return nil, fmt.Errorf("fetch %s: %w", path, err)
		}
		local = tmp.Name()
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := os.Stat(local); err != nil {
		return nil, fmt.Errorf("fetch %s: %w", path, err)
	}

	buf, err := DecodeFile(local)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", path, err)
	}
	return buf, nil
}
