package routefile

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/sextant-dev/sextant/pkg/router"
)

// FileSource serves route documents from a directory. It implements the
// router's RouteLoader contract: a LoadChildren reference is a path relative
// to the source directory.
type FileSource struct {
	dir string
	reg *Registry
}

// NewFileSource creates a source rooted at dir.
func NewFileSource(dir string, reg *Registry) *FileSource {
	return &FileSource{dir: dir, reg: reg}
}

// Load reads, parses and builds the document at the given relative path.
func (s *FileSource) Load(ref string) ([]*router.Route, error) {
	clean := filepath.Clean(ref)
	if filepath.IsAbs(clean) || strings.HasPrefix(clean, "..") {
		return nil, fmt.Errorf("routefile: reference %q escapes the source directory", ref)
	}
	data, err := os.ReadFile(filepath.Join(s.dir, clean))
	if err != nil {
		return nil, fmt.Errorf("routefile: read %q: %w", ref, err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return doc.Build(s.reg)
}

// LoadRoutes implements router.RouteLoader.
func (s *FileSource) LoadRoutes(ctx context.Context, ref string) ([]*router.Route, error) {
	return s.Load(ref)
}

// ObjectGetter is the part of the S3 API the source needs. *s3.Client
// satisfies it.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Source serves route documents from an S3 bucket, so configuration
// bundles can live remotely and be fetched lazily. A LoadChildren reference
// is the object key under the configured prefix.
type S3Source struct {
	client ObjectGetter
	bucket string
	prefix string
	reg    *Registry
}

// NewS3Source creates a source reading from bucket. prefix is prepended to
// every reference, e.g. "routes/".
func NewS3Source(client ObjectGetter, bucket, prefix string, reg *Registry) *S3Source {
	return &S3Source{client: client, bucket: bucket, prefix: prefix, reg: reg}
}

// LoadRoutes implements router.RouteLoader.
func (s *S3Source) LoadRoutes(ctx context.Context, ref string) ([]*router.Route, error) {
	key := s.prefix + ref
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("routefile: get s3://%s/%s: %w", s.bucket, key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("routefile: read s3://%s/%s: %w", s.bucket, key, err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return doc.Build(s.reg)
}
