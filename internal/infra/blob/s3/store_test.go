package s3

import (
	"context"
	"io"
	"strings"
	"testing"

	"matatucore/internal/blob"
)

func TestMockPutGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMockForTests()

	if _, err := store.Put(ctx, "reports/3/9.json", strings.NewReader("{\"profit\":1}"), blob.PutOptions{ContentType: "application/json"}); err != nil {
		t.Fatalf("put: %v", err)
	}

	info, rc, err := store.Get(ctx, "reports/3/9.json")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer func() { _ = rc.Close() }()
	data, _ := io.ReadAll(rc)
	if string(data) != "{\"profit\":1}" {
		t.Fatalf("unexpected body %q", data)
	}
	if info.Size != int64(len(data)) {
		t.Fatalf("size mismatch: %d vs %d", info.Size, len(data))
	}
}

func TestMockPutIsCreateOnly(t *testing.T) {
	ctx := context.Background()
	store := NewMockForTests()
	if _, err := store.Put(ctx, "k", strings.NewReader("a"), blob.PutOptions{}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, err := store.Put(ctx, "k", strings.NewReader("b"), blob.PutOptions{}); err == nil {
		t.Fatalf("expected duplicate put to fail")
	}
}

func TestMockListByPrefix(t *testing.T) {
	ctx := context.Background()
	store := NewMockForTests()
	for _, key := range []string{"reports/1/a", "reports/1/b", "reports/2/c"} {
		if _, err := store.Put(ctx, key, strings.NewReader("x"), blob.PutOptions{}); err != nil {
			t.Fatalf("put %s: %v", key, err)
		}
	}
	infos, err := store.List(ctx, "reports/1/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(infos) != 2 || infos[0].Key != "reports/1/a" || infos[1].Key != "reports/1/b" {
		t.Fatalf("unexpected listing: %+v", infos)
	}
}

func TestMockPresignProducesURL(t *testing.T) {
	ctx := context.Background()
	store := NewMockForTests()
	url, err := store.PresignURL(ctx, "reports/1/a", blob.SignedURLOptions{})
	if err != nil {
		t.Fatalf("presign: %v", err)
	}
	if !strings.Contains(url, "reports/1/a") {
		t.Fatalf("unexpected url %q", url)
	}
	if _, err := store.PresignURL(ctx, "reports/1/a", blob.SignedURLOptions{Method: "PUT"}); err == nil {
		t.Fatalf("expected PUT presign to be unsupported")
	}
}

func TestOpenFromEnvRequiresBucket(t *testing.T) {
	t.Setenv("MATATUCORE_BLOB_S3_BUCKET", "")
	if _, err := OpenFromEnv(context.Background()); err == nil {
		t.Fatalf("expected missing bucket error")
	}
}
