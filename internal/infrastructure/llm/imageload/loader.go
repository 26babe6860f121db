// Package imageload turns scan images into raw bytes for providers that
// cannot fetch URLs themselves.
package imageload

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/netip"
	"net/url"
	"strings"
	"syscall"
	"time"

	"github.com/MagicMike0112/Project-Study-BSH/internal/core/domain"
)

const (
	defaultMaxBytes = 8 << 20
	maxRedirects    = 3
)

var errBlockedAddress = errors.New("address is not publicly routable")

type Image struct {
	MimeType string
	Data     []byte
}

// Base64 returns the image data in standard base64 encoding.
func (i Image) Base64() string {
	return base64.StdEncoding.EncodeToString(i.Data)
}

type Loader struct {
	httpClient *http.Client
	maxBytes   int64
}

// New builds a loader. A client without its own Transport gets one that
// refuses to dial loopback, private, link-local and unspecified addresses,
// so image URLs cannot reach internal services.
func New(httpClient *http.Client, maxBytes int64) *Loader {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	if httpClient.Transport == nil {
		guarded := *httpClient
		guarded.Transport = publicOnlyTransport()
		guarded.CheckRedirect = checkRedirect
		httpClient = &guarded
	}
	if maxBytes <= 0 {
		maxBytes = defaultMaxBytes
	}
	return &Loader{httpClient: httpClient, maxBytes: maxBytes}
}

// Load decodes inline base64 data or downloads the image URL.
func (l *Loader) Load(ctx context.Context, img domain.ImageInput) (Image, error) {
	if img.Base64 != "" {
		data, err := base64.StdEncoding.DecodeString(img.Base64)
		if err != nil {
			return Image{}, domain.WrapError(domain.ErrInvalidInput, "load image", fmt.Errorf("decode base64: %w", err))
		}
		if int64(len(data)) > l.maxBytes {
			return Image{}, domain.WrapError(domain.ErrInvalidInput, "load image", fmt.Errorf("image exceeds %d bytes", l.maxBytes))
		}
		return Image{MimeType: mimeOrSniff(img.MimeType, data), Data: data}, nil
	}
	if img.URL == "" {
		return Image{}, domain.WrapError(domain.ErrInvalidInput, "load image", errors.New("image has neither data nor url"))
	}
	return l.fetch(ctx, img.URL)
}

func (l *Loader) LoadAll(ctx context.Context, images []domain.ImageInput) ([]Image, error) {
	out := make([]Image, 0, len(images))
	for _, img := range images {
		loaded, err := l.Load(ctx, img)
		if err != nil {
			return nil, err
		}
		out = append(out, loaded)
	}
	return out, nil
}

func (l *Loader) fetch(ctx context.Context, url string) (Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Image{}, domain.WrapError(domain.ErrInvalidInput, "load image", err)
	}
	if req.URL.Scheme != "http" && req.URL.Scheme != "https" {
		return Image{}, domain.WrapError(domain.ErrInvalidInput, "load image", fmt.Errorf("unsupported scheme %q", req.URL.Scheme))
	}
	resp, err := l.httpClient.Do(req)
	if err != nil {
		return Image{}, domain.WrapError(domain.ErrInvalidInput, "load image", fmt.Errorf("fetch %s: %w", url, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return Image{}, domain.WrapError(domain.ErrInvalidInput, "load image", fmt.Errorf("fetch %s: %s", url, resp.Status))
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, l.maxBytes+1))
	if err != nil {
		return Image{}, domain.WrapError(domain.ErrInvalidInput, "load image", fmt.Errorf("read %s: %w", url, err))
	}
	if int64(len(data)) > l.maxBytes {
		return Image{}, domain.WrapError(domain.ErrInvalidInput, "load image", fmt.Errorf("image exceeds %d bytes", l.maxBytes))
	}

	mimeType := mimeOrSniff(resp.Header.Get("Content-Type"), data)
	if !strings.HasPrefix(mimeType, "image/") {
		return Image{}, domain.WrapError(domain.ErrInvalidInput, "load image", fmt.Errorf("%s is %s, not an image", url, mimeType))
	}
	return Image{MimeType: mimeType, Data: data}, nil
}

func publicOnlyTransport() *http.Transport {
	dialer := &net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
		Control:   rejectNonPublic,
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = nil
	transport.DialContext = dialer.DialContext
	return transport
}

// rejectNonPublic runs after DNS resolution, so it sees the address that
// is actually dialed.
func rejectNonPublic(_, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return err
	}
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return err
	}
	if !isPublic(addr) {
		return fmt.Errorf("dial %s: %w", host, errBlockedAddress)
	}
	return nil
}

func isPublic(addr netip.Addr) bool {
	addr = addr.Unmap()
	return addr.IsValid() &&
		!addr.IsLoopback() &&
		!addr.IsPrivate() &&
		!addr.IsLinkLocalUnicast() &&
		!addr.IsLinkLocalMulticast() &&
		!addr.IsInterfaceLocalMulticast() &&
		!addr.IsMulticast() &&
		!addr.IsUnspecified()
}

func checkRedirect(req *http.Request, via []*http.Request) error {
	if len(via) >= maxRedirects {
		return fmt.Errorf("stopped after %d redirects", maxRedirects)
	}
	return checkRedirectURL(req.URL)
}

func checkRedirectURL(u *url.URL) error {
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if addr, err := netip.ParseAddr(u.Hostname()); err == nil && !isPublic(addr) {
		return fmt.Errorf("redirect to %s: %w", u.Hostname(), errBlockedAddress)
	}
	return nil
}

func mimeOrSniff(declared string, data []byte) string {
	declared = strings.TrimSpace(declared)
	if semi := strings.IndexByte(declared, ';'); semi >= 0 {
		declared = strings.TrimSpace(declared[:semi])
	}
	if declared != "" && declared != "application/octet-stream" {
		return strings.ToLower(declared)
	}
	return http.DetectContentType(data)
}
