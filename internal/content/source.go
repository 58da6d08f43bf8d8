package content

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io/fs"
	"os"
	"path"

	"github.com/conneroisu/coachsite/internal/content/fixtures"
	"github.com/conneroisu/coachsite/internal/errors"
	"gopkg.in/yaml.v3"
)

// Source reads the raw content documents. Implementations must be safe for
// concurrent use.
type Source interface {
	Services(ctx context.Context) ([]Service, error)
	Testimonials(ctx context.Context) ([]RawTestimonial, error)
	BlogPosts(ctx context.Context) ([]RawBlogPost, error)
	SiteConfig(ctx context.Context) (*SiteConfig, error)
}

// extensions are tried in order for every content document.
var extensions = []string{".json", ".yaml", ".yml"}

// FileSource reads content documents from a file system. Each kind lives in
// a file named after it (services.json, blog-posts.yaml, ...).
type FileSource struct {
	fsys fs.FS
	dir  string
}

// NewFileSource reads content from the root of fsys.
func NewFileSource(fsys fs.FS) *FileSource {
	return &FileSource{fsys: fsys}
}

// NewDirSource reads content from a directory on disk.
func NewDirSource(dir string) *FileSource {
	return &FileSource{fsys: os.DirFS(dir), dir: dir}
}

// NewEmbeddedSource reads the default content compiled into the binary.
func NewEmbeddedSource() *FileSource {
	return &FileSource{fsys: fixtures.FS}
}

// Dir returns the directory backing the source, or "" for embedded content.
func (s *FileSource) Dir() string {
	return s.dir
}

// Services implements Source.
func (s *FileSource) Services(ctx context.Context) ([]Service, error) {
	var services []Service
	if err := s.decode(ctx, KindServices, &services); err != nil {
		return nil, err
	}
	return services, nil
}

// Testimonials implements Source.
func (s *FileSource) Testimonials(ctx context.Context) ([]RawTestimonial, error) {
	var testimonials []RawTestimonial
	if err := s.decode(ctx, KindTestimonials, &testimonials); err != nil {
		return nil, err
	}
	return testimonials, nil
}

// BlogPosts implements Source.
func (s *FileSource) BlogPosts(ctx context.Context) ([]RawBlogPost, error) {
	var posts []RawBlogPost
	if err := s.decode(ctx, KindBlogPosts, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// SiteConfig implements Source.
func (s *FileSource) SiteConfig(ctx context.Context) (*SiteConfig, error) {
	var cfg SiteConfig
	if err := s.decode(ctx, KindSiteConfig, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (s *FileSource) decode(ctx context.Context, kind Kind, v interface{}) error {
	if err := ctx.Err(); err != nil {
		return errors.WrapIO(err, errors.ErrCodeContentRead, "content read cancelled", string(kind))
	}

	for _, ext := range extensions {
		name := string(kind) + ext
		data, err := fs.ReadFile(s.fsys, name)
		if stderrors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return errors.WrapIO(err, errors.ErrCodeContentRead, "failed to read content", name)
		}

		if path.Ext(name) == ".json" {
			err = json.Unmarshal(data, v)
		} else {
			err = yaml.Unmarshal(data, v)
		}
		if err != nil {
			return errors.WrapIO(err, errors.ErrCodeContentDecode, "failed to decode content", name)
		}
		return nil
	}

	return errors.WrapIO(fs.ErrNotExist, errors.ErrCodeContentRead, "content file not found", string(kind))
}
