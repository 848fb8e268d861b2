package texture

import (
	"context"
	"errors"
	"fmt"
	"image"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/echoflaresat/orrery/logging"
)

var ErrUnsupportedScheme = errors.New("unsupported texture reference scheme")

// Loader resolves a texture reference from the body table.
type Loader interface {
	Load(ctx context.Context, ref string) (Texture, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(ctx context.Context, ref string) (Texture, error)

func (f LoaderFunc) Load(ctx context.Context, ref string) (Texture, error) {
	return f(ctx, ref)
}

// FileLoader reads references as paths relative to Root.
type FileLoader struct {
	Root   string
	Logger logging.Logger
}

func (l FileLoader) Load(ctx context.Context, ref string) (Texture, error) {
	if err := ctx.Err(); err != nil {
		return Texture{}, err
	}
	path := ref
	if !filepath.IsAbs(path) && l.Root != "" {
		path = filepath.Join(l.Root, filepath.FromSlash(ref))
	}
	return LoadLogged(ctx, path, l.Logger)
}

// HTTPLoader fetches references that are http(s) URLs.
type HTTPLoader struct {
	Client *http.Client
}

func (l HTTPLoader) Load(ctx context.Context, ref string) (Texture, error) {
	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return Texture{}, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return Texture{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Texture{}, fmt.Errorf("fetch %s: %s", ref, resp.Status)
	}
	img, _, err := image.Decode(resp.Body)
	if err != nil {
		return Texture{}, fmt.Errorf("decode %s: %w", ref, err)
	}
	return FromImage(img), nil
}

// MultiLoader dispatches on the reference form: URLs go to HTTP, anything
// else to Files.
type MultiLoader struct {
	Files FileLoader
	HTTP  HTTPLoader
}

func (l MultiLoader) Load(ctx context.Context, ref string) (Texture, error) {
	u, err := url.Parse(ref)
	if err != nil || u.Scheme == "" || len(u.Scheme) == 1 { // "C:\..." parses as scheme "c"
		return l.Files.Load(ctx, ref)
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return l.HTTP.Load(ctx, ref)
	case "file":
		return l.Files.Load(ctx, u.Path)
	default:
		return Texture{}, fmt.Errorf("%w: %s", ErrUnsupportedScheme, u.Scheme)
	}
}
