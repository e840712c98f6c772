package client_test

import (
	"testing"

	"github.com/joshfermano/perpsbot/server/pkg/client"
)

func TestFileStoreRoundTrip(t *testing.T) {
	store, err := client.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore err: %v", err)
	}

	if _, ok, err := store.Get("guestChat"); err != nil || ok {
		t.Fatalf("expected empty store, got ok=%v err=%v", ok, err)
	}

	if err := store.Set("guestChat", `[{"role":"user"}]`); err != nil {
		t.Fatalf("Set err: %v", err)
	}

	value, ok, err := store.Get("guestChat")
	if err != nil || !ok {
		t.Fatalf("Get err: ok=%v err=%v", ok, err)
	}
	if value != `[{"role":"user"}]` {
		t.Fatalf("unexpected value: %q", value)
	}

	if err := store.Remove("guestChat"); err != nil {
		t.Fatalf("Remove err: %v", err)
	}
	if _, ok, _ := store.Get("guestChat"); ok {
		t.Fatal("value survived Remove")
	}
	// Removing again is not an error.
	if err := store.Remove("guestChat"); err != nil {
		t.Fatalf("repeat Remove err: %v", err)
	}
}
