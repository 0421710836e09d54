package registry_test

import (
	"strings"
	"sync"
	"testing"

	"xnmp/internal/logging"
	"xnmp/internal/registry"
)

const prefix = "/org/freedesktop/NativeMessagingProxy"

func TestRegisterProducesUniquePrefixedHandles(t *testing.T) {
	reg := registry.New(prefix, logging.NewNop())

	seen := make(map[string]struct{})
	var mu sync.Mutex
	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			handle, token := reg.Register()
			if token == nil {
				t.Error("nil token from Register")
				return
			}
			mu.Lock()
			defer mu.Unlock()
			if _, dup := seen[handle]; dup {
				t.Errorf("duplicate handle %s", handle)
			}
			seen[handle] = struct{}{}
		}()
	}
	wg.Wait()

	if reg.Len() != 64 {
		t.Fatalf("expected 64 registered hosts, got %d", reg.Len())
	}
	for handle := range seen {
		if !strings.HasPrefix(handle, prefix+"/") {
			t.Fatalf("handle %s missing object path prefix", handle)
		}
		suffix := strings.TrimPrefix(handle, prefix+"/")
		if suffix == "" || strings.ContainsAny(suffix, "/-") {
			t.Fatalf("handle suffix %q is not a plain decimal element", suffix)
		}
	}
}

func TestCancelFiresTokenAndKeepsEntry(t *testing.T) {
	reg := registry.New(prefix, logging.NewNop())
	handle, token := reg.Register()

	reg.Cancel(handle)
	if !token.Fired() {
		t.Fatal("token not fired by Cancel")
	}
	if reg.Len() != 1 {
		t.Fatal("Cancel must leave the entry for the owner to unregister")
	}

	reg.Unregister(handle)
	if reg.Len() != 0 {
		t.Fatal("entry not removed by Unregister")
	}
}

func TestCancelUnknownHandleIsNoOp(t *testing.T) {
	reg := registry.New(prefix, logging.NewNop())
	reg.Cancel(prefix + "/12345")
	reg.Unregister(prefix + "/12345")
	if reg.Len() != 0 {
		t.Fatal("registry should stay empty")
	}
}
