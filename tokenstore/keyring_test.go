package tokenstore

import (
	"context"
	"errors"
	"testing"

	"github.com/zalando/go-keyring"
)

func TestKeyringStoreRoundTrip(t *testing.T) {
	keyring.MockInit()

	store, err := NewKeyringStore("warcraftlogs-test")
	if err != nil {
		t.Fatalf("NewKeyringStore failed: %v", err)
	}
	ctx := context.Background()

	want := testToken()
	if err := store.Write(ctx, "user_u1", want); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	got, err := store.Read(ctx, "user_u1")
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if got.AccessToken != want.AccessToken || got.RefreshToken != want.RefreshToken {
		t.Errorf("Read = %+v, want %+v", got, want)
	}
}

func TestKeyringStoreReadMissing(t *testing.T) {
	keyring.MockInit()

	store, err := NewKeyringStore("warcraftlogs-test")
	if err != nil {
		t.Fatalf("NewKeyringStore failed: %v", err)
	}

	if _, err := store.Read(context.Background(), "user_unknown"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Read of missing key = %v, want ErrNotFound", err)
	}
}

func TestKeyringStoreDelete(t *testing.T) {
	keyring.MockInit()

	store, err := NewKeyringStore("warcraftlogs-test")
	if err != nil {
		t.Fatalf("NewKeyringStore failed: %v", err)
	}
	ctx := context.Background()

	if err := store.Write(ctx, "user_u1", testToken()); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := store.Delete(ctx, "user_u1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := store.Read(ctx, "user_u1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Read after Delete = %v, want ErrNotFound", err)
	}

	if err := store.Delete(ctx, "user_u1"); err != nil {
		t.Errorf("Delete of absent key failed: %v", err)
	}
}

func TestKeyringStoreClear(t *testing.T) {
	keyring.MockInit()

	store, err := NewKeyringStore("warcraftlogs-test")
	if err != nil {
		t.Fatalf("NewKeyringStore failed: %v", err)
	}
	ctx := context.Background()

	for _, key := range []string{"client_credentials", "user_u1"} {
		if err := store.Write(ctx, key, testToken()); err != nil {
			t.Fatalf("Write(%q) failed: %v", key, err)
		}
	}

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}

	for _, key := range []string{"client_credentials", "user_u1"} {
		if _, err := store.Read(ctx, key); !errors.Is(err, ErrNotFound) {
			t.Errorf("Read(%q) after Clear = %v, want ErrNotFound", key, err)
		}
	}
}

func TestKeyringStoreDefaultService(t *testing.T) {
	store, err := NewKeyringStore("")
	if err != nil {
		t.Fatalf("NewKeyringStore failed: %v", err)
	}
	if store.service != DefaultKeyringService {
		t.Errorf("service = %q, want %q", store.service, DefaultKeyringService)
	}
}
