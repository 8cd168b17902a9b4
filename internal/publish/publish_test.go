package publish

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type fakeS3 struct {
	inputs []*s3.PutObjectInput
	bodies [][]byte
	err    error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	body, _ := io.ReadAll(in.Body)
	f.inputs = append(f.inputs, in)
	f.bodies = append(f.bodies, body)
	return &s3.PutObjectOutput{}, nil
}

func TestS3PublisherPublish(t *testing.T) {
	fake := &fakeS3{}
	pub := NewS3PublisherWithClient(fake, "routes", "site/")

	if err := pub.Publish(context.Background(), "/work/app/src/config.tsx", []byte("export const routes = [];\n")); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	if len(fake.inputs) != 1 {
		t.Fatalf("PutObject calls = %d, want 1", len(fake.inputs))
	}
	in := fake.inputs[0]
	if aws.ToString(in.Bucket) != "routes" {
		t.Errorf("Bucket = %q", aws.ToString(in.Bucket))
	}
	if aws.ToString(in.Key) != "site/config.tsx" {
		t.Errorf("Key = %q, want site/config.tsx", aws.ToString(in.Key))
	}
	if aws.ToString(in.ContentType) != "application/typescript; charset=utf-8" {
		t.Errorf("ContentType = %q", aws.ToString(in.ContentType))
	}
	if string(fake.bodies[0]) != "export const routes = [];\n" {
		t.Errorf("Body = %q", fake.bodies[0])
	}
}

func TestS3PublisherError(t *testing.T) {
	cause := errors.New("access denied")
	pub := NewS3PublisherWithClient(&fakeS3{err: cause}, "routes", "")

	err := pub.Publish(context.Background(), "routes_gen.go", nil)
	if !errors.Is(err, cause) {
		t.Errorf("Publish() error = %v, want wrapping %v", err, cause)
	}
}

func TestKey(t *testing.T) {
	pub := NewS3PublisherWithClient(&fakeS3{}, "b", "p/")
	tests := map[string]string{
		"config.tsx":           "p/config.tsx",
		"src/routes/gen.go":    "p/gen.go",
		`C:\app\src\routes.js`: "p/routes.js",
	}
	for name, want := range tests {
		if got := pub.Key(name); got != want {
			t.Errorf("Key(%q) = %q, want %q", name, got, want)
		}
	}
}

func TestContentType(t *testing.T) {
	tests := map[string]string{
		"a.go":  "text/x-go; charset=utf-8",
		"a.ts":  "application/typescript; charset=utf-8",
		"a.jsx": "text/javascript; charset=utf-8",
		"a.mjs": "text/javascript; charset=utf-8",
	}
	for name, want := range tests {
		if got := contentType(name); got != want {
			t.Errorf("contentType(%q) = %q, want %q", name, got, want)
		}
	}
}

func TestNewS3PublisherRequiresBucket(t *testing.T) {
	if _, err := NewS3Publisher(context.Background(), Options{}); err == nil {
		t.Error("NewS3Publisher() without bucket should fail")
	}
}
