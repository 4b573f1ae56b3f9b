package preference

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/kapu/skincheck-go/internal/domain"
	"go.uber.org/zap"
)

type fakeJSONStore struct {
	data   map[string][]byte
	getErr error
}

func newFakeJSONStore() *fakeJSONStore {
	return &fakeJSONStore{data: map[string][]byte{}}
}

func (f *fakeJSONStore) Get(_ context.Context, key string, dest any) (bool, error) {
	if f.getErr != nil {
		return false, f.getErr
	}
	raw, ok := f.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (f *fakeJSONStore) Set(_ context.Context, key string, value any, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.data[key] = raw
	return nil
}

func TestStaticStoreParsesLabelsAndTags(t *testing.T) {
	store := NewStaticStore([]string{"건성", "sensitive", "unknown", "dry"})
	got, err := store.CurrentProfile(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := domain.SkinTypeProfile{domain.SkinDry, domain.SkinSensitive}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("profile = %v, want %v", got, want)
	}
}

func TestRedisStoreRoundTrip(t *testing.T) {
	kv := newFakeJSONStore()
	store := NewRedisStore(kv, "profile", nil, zap.NewNop())
	ctx := context.Background()

	profile := domain.NewSkinTypeProfile(domain.SkinOily, domain.SkinAcneProne)
	if err := store.Save(ctx, profile); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := store.CurrentProfile(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(got, profile) {
		t.Fatalf("profile = %v, want %v", got, profile)
	}
	if got.String() != "지성,여드름성" {
		t.Fatalf("labels = %q", got.String())
	}
}

func TestRedisStoreFallsBack(t *testing.T) {
	fallback := NewStaticStore([]string{"normal"})
	want := domain.SkinTypeProfile{domain.SkinNormal}

	missing := NewRedisStore(newFakeJSONStore(), "profile", fallback, zap.NewNop())
	got, err := missing.CurrentProfile(context.Background())
	if err != nil || !reflect.DeepEqual(got, want) {
		t.Fatalf("missing key: profile = %v, err = %v", got, err)
	}

	broken := newFakeJSONStore()
	broken.getErr = errors.New("connection refused")
	failing := NewRedisStore(broken, "profile", fallback, zap.NewNop())
	got, err = failing.CurrentProfile(context.Background())
	if err != nil || !reflect.DeepEqual(got, want) {
		t.Fatalf("read failure: profile = %v, err = %v", got, err)
	}
}
