// Package fetcher downloads dataset files over HTTP(S) or FTP for the
// one-shot fetch command. The serve path never goes through here; it reads
// whatever already sits in the data directory.
package fetcher

import (
	"context"
	"io"
	"net/url"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
)

// Fetcher downloads one remote file and hands back its body. The caller owns
// the body and must close it.
type Fetcher interface {
	Download(ctx context.Context, url string) (io.ReadCloser, error)
}

// ConditionalFetcher is implemented by fetchers that can validate a local
// copy against the remote one. DownloadIfChanged returns the body, the
// current ETag (empty when the server sends none), and whether new content
// was downloaded; when the remote copy still matches etag, the body is nil.
type ConditionalFetcher interface {
	Fetcher
	DownloadIfChanged(ctx context.Context, url, etag string) (io.ReadCloser, string, bool, error)
}

// ForURL picks the fetcher matching the URL scheme.
func ForURL(rawURL string, httpFetcher *HTTPFetcher, ftpFetcher *FTPFetcher) (Fetcher, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, eris.Wrapf(err, "fetcher: parse url %s", rawURL)
	}
	switch u.Scheme {
	case "http", "https":
		return httpFetcher, nil
	case "ftp":
		return ftpFetcher, nil
	default:
		return nil, eris.Errorf("fetcher: unsupported scheme %q in %s", u.Scheme, rawURL)
	}
}

// writeAtomic streams r into path through a temp file in the same directory,
// so an aborted transfer never clobbers a previous good copy.
func writeAtomic(path string, r io.Reader) (int64, error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".part*")
	if err != nil {
		return 0, eris.Wrapf(err, "fetcher: create temp file for %s", path)
	}

	n, err := io.Copy(tmp, r)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmp.Name()) //nolint:errcheck
		return n, eris.Wrapf(err, "fetcher: write %s", path)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name()) //nolint:errcheck
		return n, eris.Wrapf(err, "fetcher: replace %s", path)
	}
	return n, nil
}
