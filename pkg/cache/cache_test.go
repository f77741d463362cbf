package cache_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/chetangoswami/Ai-Book-Narrator/pkg/cache"
)

func testStore(t *testing.T, s cache.Store) {
	t.Helper()
	ctx := context.Background()

	key := cache.Key{Document: "doc-1", Section: "ch-3", Voice: "nova", Segment: 7}

	if _, err := s.Get(ctx, key); !errors.Is(err, cache.ErrMiss) {
		t.Fatalf("Get on empty store: err = %v, want ErrMiss", err)
	}

	audio := []byte("fake wav payload")
	if err := s.Put(ctx, key, audio); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, err := s.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !bytes.Equal(got, audio) {
		t.Fatalf("Get = %q, want %q", got, audio)
	}

	// Overwrite.
	audio2 := []byte("regenerated payload")
	if err := s.Put(ctx, key, audio2); err != nil {
		t.Fatalf("Put overwrite: %v", err)
	}
	if got, _ := s.Get(ctx, key); !bytes.Equal(got, audio2) {
		t.Fatalf("Get after overwrite = %q, want %q", got, audio2)
	}

	// A different segment of the same section is independent.
	other := key
	other.Segment = 8
	if _, err := s.Get(ctx, other); !errors.Is(err, cache.ErrMiss) {
		t.Fatalf("Get other segment: err = %v, want ErrMiss", err)
	}

	if err := s.Delete(ctx, key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(ctx, key); !errors.Is(err, cache.ErrMiss) {
		t.Fatalf("Get after delete: err = %v, want ErrMiss", err)
	}
	if err := s.Delete(ctx, key); err != nil {
		t.Fatalf("Delete missing: %v", err)
	}
}

func testEvictSection(t *testing.T, s cache.Store) {
	t.Helper()
	ctx := context.Background()

	keep := cache.Key{Document: "doc-1", Section: "ch-1", Voice: "nova", Segment: 0}
	for i := 0; i < 3; i++ {
		k := cache.Key{Document: "doc-1", Section: "ch-2", Voice: "nova", Segment: i}
		if err := s.Put(ctx, k, []byte("a")); err != nil {
			t.Fatalf("Put: %v", err)
		}
	}
	alt := cache.Key{Document: "doc-1", Section: "ch-2", Voice: "onyx", Segment: 0}
	if err := s.Put(ctx, alt, []byte("a")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := s.Put(ctx, keep, []byte("a")); err != nil {
		t.Fatalf("Put: %v", err)
	}

	if err := s.EvictSection(ctx, "doc-1", "ch-2"); err != nil {
		t.Fatalf("EvictSection: %v", err)
	}

	// All voices of ch-2 gone, ch-1 untouched.
	for i := 0; i < 3; i++ {
		k := cache.Key{Document: "doc-1", Section: "ch-2", Voice: "nova", Segment: i}
		if _, err := s.Get(ctx, k); !errors.Is(err, cache.ErrMiss) {
			t.Fatalf("segment %d survived eviction", i)
		}
	}
	if _, err := s.Get(ctx, alt); !errors.Is(err, cache.ErrMiss) {
		t.Fatal("other voice survived eviction")
	}
	if _, err := s.Get(ctx, keep); err != nil {
		t.Fatalf("neighbor section evicted: %v", err)
	}
}

func TestMemory(t *testing.T) {
	s := cache.NewMemory()
	defer s.Close()
	testStore(t, s)
	testEvictSection(t, s)
}

func TestBadger(t *testing.T) {
	s, err := cache.NewBadger(cache.BadgerOptions{InMemory: true})
	if err != nil {
		t.Fatalf("NewBadger: %v", err)
	}
	defer s.Close()
	testStore(t, s)
	testEvictSection(t, s)
}

func TestBadgerRequiresDir(t *testing.T) {
	if _, err := cache.NewBadger(cache.BadgerOptions{}); err == nil {
		t.Fatal("NewBadger without Dir: want error")
	}
}

func TestS3(t *testing.T) {
	s := cache.NewS3(newFakeS3(), "audio-cache", "v1")
	defer s.Close()
	testStore(t, s)
	testEvictSection(t, s)
}

// fakeS3 implements cache.S3Client over a map.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: make(map[string][]byte)}
}

type notFoundErr struct{}

func (notFoundErr) Error() string                 { return "NoSuchKey: not found" }
func (notFoundErr) ErrorCode() string             { return "NoSuchKey" }
func (notFoundErr) ErrorMessage() string          { return "not found" }
func (notFoundErr) ErrorFault() smithy.ErrorFault { return smithy.FaultClient }

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.objects[*in.Key]
	if !ok {
		return nil, notFoundErr{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(v))}, nil
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.objects[*in.Key] = data
	f.mu.Unlock()
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.mu.Lock()
	delete(f.objects, *in.Key)
	f.mu.Unlock()
	return &s3.DeleteObjectOutput{}, nil
}

func (f *fakeS3) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := &s3.ListObjectsV2Output{IsTruncated: aws.Bool(false)}
	for k := range f.objects {
		if strings.HasPrefix(k, *in.Prefix) {
			out.Contents = append(out.Contents, types.Object{Key: aws.String(k)})
		}
	}
	return out, nil
}
