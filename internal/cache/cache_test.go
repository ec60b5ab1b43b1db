package cache

import (
	"testing"

	"github.com/tgrelay/relaybot/internal/core/domain"
)

func TestKey(t *testing.T) {
	tests := []struct {
		name string
		ref  domain.Reference
		want string
	}{
		{
			name: "private chat id",
			ref:  domain.Reference{ChatID: -1002059632753, MessageID: 577843},
			want: "-1002059632753_577843",
		},
		{
			name: "public username",
			ref:  domain.Reference{Username: "ikan_live", MessageID: 29914},
			want: "ikan_live_29914",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Key(tt.ref); got != tt.want {
				t.Errorf("Key(%+v) = %q, want %q", tt.ref, got, tt.want)
			}
		})
	}
}

func TestMemory(t *testing.T) {
	store := NewMemory()

	if _, ok := store.Get("a_1"); ok {
		t.Fatal("Get on empty store returned a record")
	}

	rec := domain.ContentRecord{Text: "hello"}
	store.Put("a_1", rec)

	got, ok := store.Get("a_1")
	if !ok {
		t.Fatal("Get after Put returned no record")
	}

	if got.Text != rec.Text {
		t.Errorf("Get returned %+v, want %+v", got, rec)
	}

	// Same chat referenced by username and by id stays two entries.
	store.Put("name_1", domain.ContentRecord{Text: "other"})

	if _, ok := store.Get("name_1"); !ok {
		t.Error("username-keyed entry missing")
	}

	got, _ = store.Get("a_1")
	if got.Text != "hello" {
		t.Errorf("id-keyed entry overwritten: %+v", got)
	}
}
