package backend

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"payoff/internal/config"
	"payoff/internal/storage"
	"payoff/internal/storage/memory"
)

func TestFromAppConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *config.Config
		want    BackendType
		wantErr bool
	}{
		{"memory", &config.Config{DataBackend: "memory"}, MemoryBackend, false},
		{"sqlite", &config.Config{DataBackend: "sqlite", SQLiteDBPath: "x.db"}, SQLiteBackend, false},
		{"unknown", &config.Config{DataBackend: "sheets"}, "", true},
		{"nil", nil, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromAppConfig(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("FromAppConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got.Type != tt.want {
				t.Errorf("FromAppConfig() Type = %v, want %v", got.Type, tt.want)
			}
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	if err := (Config{Type: SQLiteBackend}).Validate(); err == nil {
		t.Error("Validate() accepted sqlite backend without a path")
	}
	if err := (Config{Type: "postgres"}).Validate(); err == nil {
		t.Error("Validate() accepted an unknown backend")
	}
	if got := GetBackendTypeStrings(); len(got) != 2 {
		t.Errorf("GetBackendTypeStrings() = %v, want 2 entries", got)
	}
}

func TestDefaultFactory_CreateBackend(t *testing.T) {
	ctx := context.Background()
	f := NewFactory(slog.New(slog.NewTextHandler(io.Discard, nil)))

	t.Run("memory", func(t *testing.T) {
		res, err := f.CreateBackend(ctx, Config{Type: MemoryBackend})
		if err != nil {
			t.Fatalf("CreateBackend() error = %v", err)
		}
		defer res.Cleanup()
		if _, ok := res.Store.(*memory.Store); !ok {
			t.Errorf("CreateBackend() store = %T, want *memory.Store", res.Store)
		}
	})

	t.Run("sqlite", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "payoff.db")
		res, err := f.CreateBackend(ctx, Config{Type: SQLiteBackend, SQLiteDBPath: path})
		if err != nil {
			t.Fatalf("CreateBackend() error = %v", err)
		}
		defer res.Cleanup()
		if _, ok := res.Store.(*storage.SQLiteRepository); !ok {
			t.Fatalf("CreateBackend() store = %T, want *storage.SQLiteRepository", res.Store)
		}

		u, err := res.Store.CreateUser(ctx, "alice", "hash")
		if err != nil {
			t.Fatalf("CreateUser() error = %v", err)
		}
		if got, err := res.Store.UserByUsername(ctx, "alice"); err != nil || got.ID != u.ID {
			t.Errorf("UserByUsername() = %+v, %v", got, err)
		}
	})

	t.Run("invalid", func(t *testing.T) {
		if _, err := f.CreateBackend(ctx, Config{Type: "sheets"}); err == nil {
			t.Error("CreateBackend() error = nil for unknown backend")
		}
	})
}
