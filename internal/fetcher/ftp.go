package fetcher

import (
	"context"
	"io"
	"net"
	"net/url"
	"time"

	"github.com/jlaffaye/ftp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// FTPOptions configures the FTP fetcher.
type FTPOptions struct {
	Timeout time.Duration
}

// FTPFetcher downloads dataset files from anonymous FTP, which a few
// statistical agencies still publish on.
type FTPFetcher struct {
	timeout time.Duration
}

// NewFTPFetcher creates an FTP fetcher. A zero timeout defaults to 30s.
func NewFTPFetcher(opts FTPOptions) *FTPFetcher {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	return &FTPFetcher{timeout: opts.Timeout}
}

// parseFTPURL splits an ftp:// URL into a dial address (host with port, 21
// when unspecified) and the remote path.
func parseFTPURL(rawURL string) (addr, path string, err error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", "", eris.Wrapf(err, "fetcher: parse ftp url %s", rawURL)
	}
	if u.Scheme != "ftp" {
		return "", "", eris.Errorf("fetcher: %s is not an ftp url", rawURL)
	}
	if u.Path == "" {
		return "", "", eris.Errorf("fetcher: ftp url %s names no file", rawURL)
	}

	addr = u.Host
	if _, _, splitErr := net.SplitHostPort(addr); splitErr != nil {
		addr = net.JoinHostPort(addr, "21")
	}
	return addr, u.Path, nil
}

// ftpFile keeps the control connection open while the caller streams the
// retrieved file. Close releases the transfer and the connection.
type ftpFile struct {
	*ftp.Response
	conn *ftp.ServerConn
}

func (f *ftpFile) Close() error {
	err := f.Response.Close()
	if qerr := f.conn.Quit(); err == nil {
		err = qerr
	}
	return err
}

// Download logs in anonymously and retrieves the file named by the URL. The
// caller must close the returned body to release the connection.
func (f *FTPFetcher) Download(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	addr, path, err := parseFTPURL(rawURL)
	if err != nil {
		return nil, err
	}

	zap.L().Debug("ftp retrieve", zap.String("addr", addr), zap.String("path", path))

	conn, err := ftp.Dial(addr, ftp.DialWithContext(ctx), ftp.DialWithTimeout(f.timeout))
	if err != nil {
		return nil, eris.Wrapf(err, "fetcher: dial %s", addr)
	}
	if err := conn.Login("anonymous", "anonymous@"); err != nil {
		conn.Quit() //nolint:errcheck
		return nil, eris.Wrapf(err, "fetcher: anonymous login to %s", addr)
	}

	resp, err := conn.Retr(path)
	if err != nil {
		conn.Quit() //nolint:errcheck
		return nil, eris.Wrapf(err, "fetcher: retrieve %s", path)
	}
	return &ftpFile{Response: resp, conn: conn}, nil
}
