package storefake

import (
	"context"

	"github.com/jrsteele09/solar-dashboard/session"
)

var _ session.Store = (*FakeStore)(nil)

// FakeStore is an in-memory store whose failures can be scripted. Err, when set, is returned
// from every call. SetErrs fails Set for individual keys only.
type FakeStore struct {
	*session.MemoryStore
	Err     error
	SetErrs map[string]error
}

func NewFakeStore() *FakeStore {
	return &FakeStore{MemoryStore: session.NewMemoryStore()}
}

func (s *FakeStore) Get(ctx context.Context, key string) (string, bool, error) {
	if s.Err != nil {
		return "", false, s.Err
	}
	return s.MemoryStore.Get(ctx, key)
}

func (s *FakeStore) Set(ctx context.Context, key, value string) error {
	if s.Err != nil {
		return s.Err
	}
	if err := s.SetErrs[key]; err != nil {
		return err
	}
	return s.MemoryStore.Set(ctx, key, value)
}

func (s *FakeStore) Delete(ctx context.Context, keys ...string) error {
	if s.Err != nil {
		return s.Err
	}
	return s.MemoryStore.Delete(ctx, keys...)
}
