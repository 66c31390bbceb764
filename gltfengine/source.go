package gltfengine

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/binzume/sceneview/auth"
	"github.com/binzume/sceneview/engine"
	"golang.org/x/oauth2"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrAccessDenied = errors.New("access denied")
)

// Source resolves document keys to content.
type Source interface {
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// EncodeURN returns the urn addressing key.
func EncodeURN(key string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(key))
}

// DecodeURN accepts URL-safe or standard base64, padded or not, with an optional "urn:" prefix.
func DecodeURN(urn string) (string, error) {
	s := strings.TrimRight(strings.TrimPrefix(urn, "urn:"), "=")
	if s == "" {
		return "", fmt.Errorf("empty urn")
	}
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		b, err = base64.RawStdEncoding.DecodeString(s)
	}
	if err != nil {
		return "", fmt.Errorf("invalid urn %q: %w", urn, err)
	}
	return string(b), nil
}

func cleanKey(key string) string {
	return strings.TrimPrefix(path.Clean("/"+key), "/")
}

// DirSource reads documents from a local directory.
type DirSource struct {
	Root string
}

func (s *DirSource) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	f, err := os.Open(filepath.Join(s.Root, filepath.FromSlash(cleanKey(key))))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if errors.Is(err, os.ErrPermission) {
		return nil, fmt.Errorf("%w: %s", ErrAccessDenied, key)
	}
	return f, err
}

// HTTPSource fetches documents below BaseURL with bearer tokens.
type HTTPSource struct {
	BaseURL string
	Client  *http.Client
}

// NewHTTPSource authorizes requests with tokens from p, cached until they expire.
func NewHTTPSource(baseURL string, p engine.AccessTokenProvider) *HTTPSource {
	client := http.DefaultClient
	if p != nil {
		client = oauth2.NewClient(context.Background(), oauth2.ReuseTokenSource(nil, auth.TokenSource(p)))
	}
	return &HTTPSource{BaseURL: baseURL, Client: client}
}

func (s *HTTPSource) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	u, err := url.JoinPath(s.BaseURL, cleanKey(key))
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	res, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	switch {
	case res.StatusCode == http.StatusNotFound:
		res.Body.Close()
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	case res.StatusCode == http.StatusUnauthorized || res.StatusCode == http.StatusForbidden:
		res.Body.Close()
		return nil, fmt.Errorf("%w: %s (%s)", ErrAccessDenied, key, res.Status)
	case res.StatusCode >= 300:
		res.Body.Close()
		return nil, fmt.Errorf("GET %s: %s", u, res.Status)
	}
	return res.Body, nil
}

func errorCode(err error) engine.ErrorCode {
	var urlErr *url.Error
	switch {
	case errors.Is(err, ErrNotFound):
		return engine.ErrorNotFound
	case errors.Is(err, ErrAccessDenied), errors.Is(err, auth.ErrNoToken):
		return engine.ErrorAccessDenied
	case errors.Is(err, context.Canceled):
		return engine.ErrorCanceled
	case errors.As(err, &urlErr):
		return engine.ErrorNetwork
	}
	return engine.ErrorUnknown
}

// sourceHandler resolves external glTF buffers relative to dir.
type sourceHandler struct {
	ctx    context.Context
	source Source
	dir    string
}

func (h *sourceHandler) ReadFullResource(uri string, data []byte) error {
	r, err := h.open(uri)
	if err != nil {
		return err
	}
	defer r.Close()
	_, err = io.ReadFull(r, data)
	return err
}

func (h *sourceHandler) open(uri string) (io.ReadCloser, error) {
	if u, err := url.PathUnescape(uri); err == nil {
		uri = u
	}
	return h.source.Open(h.ctx, path.Join(h.dir, uri))
}
