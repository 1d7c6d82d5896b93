package media

import (
	"bytes"
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/pharmaweb/sitecms/pkg/interfaces"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestMemoryStorageUploadAndDelete(t *testing.T) {
	fixed := time.UnixMilli(1714640000123)
	store := NewMemoryStorage(WithMemoryBaseURL("https://cdn.example.com/"), WithMemoryClock(func() time.Time { return fixed }))

	obj, err := store.Upload(context.Background(), "blog-images", interfaces.ImageUpload{
		Name: "Cover.PNG",
		Body: bytes.NewReader(pngHeader),
	})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if !regexp.MustCompile(`^1714640000123-[0-9a-f-]{36}\.png$`).MatchString(obj.Key) {
		t.Fatalf("unexpected key %q", obj.Key)
	}
	if obj.URL != "https://cdn.example.com/blog-images/"+obj.Key {
		t.Fatalf("unexpected url %q", obj.URL)
	}
	if obj.ContentType != "image/png" || obj.Size != int64(len(pngHeader)) {
		t.Fatalf("unexpected object metadata %+v", obj)
	}
	if data, ct, ok := store.Open("blog-images", obj.Key); !ok || ct != "image/png" || !bytes.Equal(data, pngHeader) {
		t.Fatalf("expected stored bytes to round trip")
	}

	if err := store.Delete(context.Background(), "blog-images", obj.Key); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := store.Delete(context.Background(), "blog-images", obj.Key); !errors.Is(err, ErrObjectNotFound) {
		t.Fatalf("expected ErrObjectNotFound, got %v", err)
	}
	if keys := store.Keys("blog-images"); len(keys) != 0 {
		t.Fatalf("expected bucket to be empty, got %v", keys)
	}
}

func TestMemoryStorageRejectsInvalidUploads(t *testing.T) {
	store := NewMemoryStorage(WithMemoryMaxBytes(8))
	ctx := context.Background()

	cases := []struct {
		name   string
		bucket string
		upload interfaces.ImageUpload
		want   error
	}{
		{"bucket", " ", interfaces.ImageUpload{Body: bytes.NewReader(pngHeader)}, ErrBucketRequired},
		{"nil body", "news-images", interfaces.ImageUpload{}, ErrUploadEmpty},
		{"empty body", "news-images", interfaces.ImageUpload{Body: strings.NewReader("")}, ErrUploadEmpty},
		{"too large", "news-images", interfaces.ImageUpload{Name: "a.png", Body: bytes.NewReader(pngHeader)}, ErrUploadTooLarge},
		{"declared too large", "news-images", interfaces.ImageUpload{Name: "a.png", Size: 100, Body: strings.NewReader("x")}, ErrUploadTooLarge},
		{"not an image", "news-images", interfaces.ImageUpload{Name: "a.txt", Body: strings.NewReader("hello")}, ErrUnsupportedType},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := store.Upload(ctx, tc.bucket, tc.upload); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestMemoryStorageHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewMemoryStorage().Upload(ctx, "b", interfaces.ImageUpload{Body: bytes.NewReader(pngHeader)}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestBlockUploaderReturnsPublicURL(t *testing.T) {
	store := NewMemoryStorage()
	uploader := NewBlockUploader(store, "news-images")

	url, err := uploader.UploadImage(context.Background(), interfaces.ImageUpload{
		Name:        "photo.jpg",
		ContentType: "image/jpeg",
		Body:        strings.NewReader("jpeg-bytes"),
	})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if !strings.HasPrefix(url, "/media/news-images/") || !strings.HasSuffix(url, ".jpg") {
		t.Fatalf("unexpected url %q", url)
	}

	var missing *BlockUploader
	if _, err := missing.UploadImage(context.Background(), interfaces.ImageUpload{}); !errors.Is(err, ErrStorageNotConfigured) {
		t.Fatalf("expected ErrStorageNotConfigured, got %v", err)
	}
}

func TestObjectKeyDropsSuspiciousExtensions(t *testing.T) {
	now := time.UnixMilli(42)
	if key := ObjectKey(now, "weird.name/with?x"); strings.Contains(key, "?") || strings.Contains(key, "/") {
		t.Fatalf("unexpected key %q", key)
	}
	if key := ObjectKey(now, "noext"); !regexp.MustCompile(`^42-[0-9a-f-]{36}$`).MatchString(key) {
		t.Fatalf("unexpected key %q", key)
	}
}
