package feed

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
	"golang.org/x/time/rate"

	"github.com/feedgrid-platform/api/internal/blob"
	"github.com/feedgrid-platform/api/internal/secrets"
	"github.com/feedgrid-platform/api/internal/store"
)

// Content is the raw feed payload plus enough metadata to classify it and
// record where it came from.
type Content struct {
	Body        string
	ContentType string
	SourceFile  string
}

// ContentFetcher retrieves a supplier's raw feed content.
type ContentFetcher interface {
	Fetch(ctx context.Context, sp store.Supplier) (Content, error)
}

// Fetcher reads feeds over HTTP or from blob storage. Outbound requests
// share one rate limiter so bursts of runs stay polite toward supplier
// endpoints.
type Fetcher struct {
	client    *http.Client
	blobs     blob.Store
	box       *secrets.Box
	userAgent string
	limiter   *rate.Limiter
}

func NewFetcher(timeout time.Duration, userAgent string, ratePerSec float64, burst int, blobs blob.Store, box *secrets.Box) *Fetcher {
	if ratePerSec <= 0 {
		ratePerSec = 1
	}
	if burst <= 0 {
		burst = 1
	}
	return &Fetcher{
		client:    &http.Client{Timeout: timeout},
		blobs:     blobs,
		box:       box,
		userAgent: userAgent,
		limiter:   rate.NewLimiter(rate.Limit(ratePerSec), burst),
	}
}

// Fetch never mutates persisted state; it only reads from the network or the
// blob store.
func (f *Fetcher) Fetch(ctx context.Context, sp store.Supplier) (Content, error) {
	if sp.SourceKind == store.SourceKindUpload {
		return f.fetchUpload(ctx, sp)
	}
	return f.fetchURL(ctx, sp)
}

func (f *Fetcher) fetchURL(ctx context.Context, sp store.Supplier) (Content, error) {
	if sp.SourceURL == nil || strings.TrimSpace(*sp.SourceURL) == "" {
		return Content{}, &FetchError{Source: sp.Name, Err: fmt.Errorf("supplier has no source url")}
	}
	url := strings.TrimSpace(*sp.SourceURL)

	if err := f.limiter.Wait(ctx); err != nil {
		return Content{}, &FetchError{Source: url, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Content{}, &FetchError{Source: url, Err: err}
	}
	req.Header.Set("User-Agent", f.userAgent)

	if sp.AuthUsername != nil && *sp.AuthUsername != "" && len(sp.AuthPasswordSealed) > 0 {
		password, err := f.box.Open(sp.AuthPasswordSealed)
		if err != nil {
			return Content{}, &FetchError{Source: url, Err: fmt.Errorf("unseal credentials: %w", err)}
		}
		req.SetBasicAuth(*sp.AuthUsername, password)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return Content{}, &FetchError{Source: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Content{}, &FetchError{Source: url, StatusCode: resp.StatusCode, StatusText: http.StatusText(resp.StatusCode)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Content{}, &FetchError{Source: url, Err: err}
	}

	contentType := resp.Header.Get("Content-Type")
	return Content{
		Body:        decodeCharset(body, contentType),
		ContentType: contentType,
		SourceFile:  url,
	}, nil
}

func (f *Fetcher) fetchUpload(ctx context.Context, sp store.Supplier) (Content, error) {
	if sp.SourcePath == nil || *sp.SourcePath == "" {
		return Content{}, &FetchError{Source: sp.Name, Err: fmt.Errorf("supplier has no stored upload")}
	}
	path := *sp.SourcePath

	data, storedType, err := f.blobs.Download(ctx, path)
	if err != nil {
		return Content{}, &FetchError{Source: path, Err: err}
	}

	return Content{
		Body:        string(data),
		ContentType: uploadContentType(path, storedType),
		SourceFile:  path,
	}, nil
}

func uploadContentType(path, storedType string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xml":
		return "application/xml"
	case ".json":
		return "application/json"
	case ".csv":
		return "text/csv"
	}
	if storedType != "" {
		return storedType
	}
	return "application/octet-stream"
}

// decodeCharset converts the body to UTF-8 using the charset parameter of
// the content type. Suppliers still serve windows-1251 and latin-1 feeds;
// anything unrecognized passes through untouched.
func decodeCharset(body []byte, contentType string) string {
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return string(body)
	}
	charset := strings.ToLower(strings.TrimSpace(params["charset"]))
	if charset == "" || charset == "utf-8" || charset == "utf8" {
		return string(body)
	}

	enc, err := htmlindex.Get(charset)
	if err != nil {
		return string(body)
	}
	decoded, _, err := transform.Bytes(enc.NewDecoder(), body)
	if err != nil {
		return string(body)
	}
	return string(decoded)
}
