package fetcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/mineral-insights/mineralboard/internal/config"
	"github.com/mineral-insights/mineralboard/internal/dataset"
)

// etagFile remembers, per source URL, the ETag of the copy sitting in the
// data directory, so a re-run can skip files the publisher has not touched.
const etagFile = ".etags.yaml"

// Datasets downloads the configured dataset files into dir, named per the
// manifest. Datasets without a configured URL are skipped, files the server
// reports unchanged are left alone, and any failed download fails the whole
// batch.
func Datasets(ctx context.Context, cfg config.FetchConfig, manifest dataset.Manifest, dir string) error {
	urls := map[string]string{
		dataset.NameSeries:  cfg.SeriesURL,
		dataset.NameSummary: cfg.SummaryURL,
		dataset.NameTech:    cfg.TechURL,
	}

	httpFetcher := NewHTTPFetcher(HTTPOptions{
		UserAgent:  cfg.UserAgent,
		Timeout:    time.Duration(cfg.TimeoutSecs) * time.Second,
		MaxRetries: cfg.MaxRetries,
		RatePerSec: cfg.RatePerSec,
	})
	ftpFetcher := NewFTPFetcher(FTPOptions{
		Timeout: time.Duration(cfg.TimeoutSecs) * time.Second,
	})

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return eris.Wrapf(err, "fetcher: create data dir %s", dir)
	}

	var mu sync.Mutex
	etags := loadETags(dir)

	g, gctx := errgroup.WithContext(ctx)
	for name, rawURL := range urls {
		if rawURL == "" {
			continue
		}
		spec, err := manifest.Spec(name)
		if err != nil {
			return err
		}
		dest := filepath.Join(dir, spec.Path)

		name, rawURL := name, rawURL
		g.Go(func() error {
			f, err := ForURL(rawURL, httpFetcher, ftpFetcher)
			if err != nil {
				return err
			}

			// A remembered ETag only helps when the file it describes is
			// still on disk; otherwise force a full download.
			prev := ""
			if _, statErr := os.Stat(dest); statErr == nil {
				mu.Lock()
				prev = etags[rawURL]
				mu.Unlock()
			}

			etag, n, current, err := fetchDataset(gctx, f, rawURL, dest, prev)
			if err != nil {
				return eris.Wrapf(err, "fetcher: download %s", name)
			}

			mu.Lock()
			if etag == "" {
				delete(etags, rawURL)
			} else {
				etags[rawURL] = etag
			}
			mu.Unlock()

			if current {
				zap.L().Info("dataset unchanged",
					zap.String("dataset", name),
					zap.String("url", rawURL),
				)
				return nil
			}
			zap.L().Info("dataset downloaded",
				zap.String("dataset", name),
				zap.String("url", rawURL),
				zap.String("path", dest),
				zap.Int64("bytes", n),
			)
			return nil
		})
	}

	err := g.Wait()
	if serr := saveETags(dir, etags); serr != nil && err == nil {
		err = serr
	}
	return err
}

// fetchDataset brings one file current. Fetchers that support conditional
// requests get the previous ETag so the server can answer 304; FTP always
// re-downloads. It reports the ETag to remember (empty when the server sends
// none), the bytes written, and whether the local copy was already current.
func fetchDataset(ctx context.Context, f Fetcher, rawURL, dest, prevETag string) (string, int64, bool, error) {
	cf, ok := f.(ConditionalFetcher)
	if !ok {
		body, err := f.Download(ctx, rawURL)
		if err != nil {
			return "", 0, false, err
		}
		defer body.Close() //nolint:errcheck
		n, err := writeAtomic(dest, body)
		return "", n, false, err
	}

	body, etag, changed, err := cf.DownloadIfChanged(ctx, rawURL, prevETag)
	if err != nil {
		return "", 0, false, err
	}
	if !changed {
		return etag, 0, true, nil
	}
	defer body.Close() //nolint:errcheck

	n, err := writeAtomic(dest, body)
	if err != nil {
		return "", n, false, err
	}
	return etag, n, false, nil
}

// loadETags reads the ETag state from dir. Missing or unreadable state just
// means every file gets downloaded in full.
func loadETags(dir string) map[string]string {
	etags := map[string]string{}
	data, err := os.ReadFile(filepath.Join(dir, etagFile))
	if err != nil {
		return etags
	}
	if err := yaml.Unmarshal(data, &etags); err != nil {
		zap.L().Warn("ignoring unreadable etag state", zap.Error(err))
		return map[string]string{}
	}
	return etags
}

func saveETags(dir string, etags map[string]string) error {
	if len(etags) == 0 {
		return nil
	}
	data, err := yaml.Marshal(etags)
	if err != nil {
		return eris.Wrap(err, "fetcher: encode etag state")
	}
	if err := os.WriteFile(filepath.Join(dir, etagFile), data, 0o644); err != nil {
		return eris.Wrap(err, "fetcher: write etag state")
	}
	return nil
}
