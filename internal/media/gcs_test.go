package media

import (
	"context"
	"errors"
	"testing"

	"github.com/pharmaweb/sitecms/pkg/interfaces"
)

func TestGCSPublicURL(t *testing.T) {
	cases := []struct {
		name string
		cfg  GCSConfig
		want string
	}{
		{"default", GCSConfig{}, "https://storage.googleapis.com/blog-images/1-a.png"},
		{"cdn", GCSConfig{PublicBaseURL: "https://cdn.example.com/"}, "https://cdn.example.com/blog-images/1-a.png"},
		{"emulator", GCSConfig{EmulatorHost: "http://localhost:4443/"}, "http://localhost:4443/storage/v1/b/blog-images/o/1-a.png?alt=media"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := newGCSStorage(nil, tc.cfg, nil)
			if got := s.PublicURL("blog-images", "/1-a.png"); got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestGCSWithoutClient(t *testing.T) {
	s := newGCSStorage(nil, GCSConfig{}, nil)
	if _, err := s.Upload(context.Background(), "b", interfaces.ImageUpload{}); !errors.Is(err, ErrStorageNotConfigured) {
		t.Fatalf("expected ErrStorageNotConfigured, got %v", err)
	}
	if err := s.Delete(context.Background(), "b", "k"); !errors.Is(err, ErrStorageNotConfigured) {
		t.Fatalf("expected ErrStorageNotConfigured, got %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}
