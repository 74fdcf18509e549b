package ledger

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/redis/go-redis/v9"

	"autoapply-engine/internal/config"
	"autoapply-engine/internal/store"
)

// backends returns one fresh instance of each locally testable backend.
func backends(t *testing.T) map[string]Ledger {
	t.Helper()
	dir := t.TempDir()
	db, err := store.OpenMigrated(filepath.Join(dir, "autoapply.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return map[string]Ledger{
		"file":   NewFile(filepath.Join(dir, "applied_jobs.json")),
		"sqlite": NewSQL(db),
	}
}

func TestRecordThenHas(t *testing.T) {
	ctx := context.Background()
	for name, l := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if l.Has(ctx, "12345") {
				t.Fatalf("empty ledger reports id")
			}
			if err := l.Record(ctx, "12345"); err != nil {
				t.Fatal(err)
			}
			if err := l.Record(ctx, "12345"); err != nil {
				t.Fatal(err)
			}
			if !l.Has(ctx, "12345") {
				t.Fatalf("recorded id missing")
			}
			ids, err := l.List(ctx)
			if err != nil {
				t.Fatal(err)
			}
			if len(ids) != 1 || ids[0] != "12345" {
				t.Fatalf("ids = %v, want exactly one occurrence", ids)
			}
		})
	}
}

func TestFileLedgerSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data", "applied_jobs.json")
	if err := NewFile(path).Record(ctx, "a"); err != nil {
		t.Fatal(err)
	}
	if err := NewFile(path).Record(ctx, "b"); err != nil {
		t.Fatal(err)
	}
	ids, err := ReadIDs(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Join(ids, ",") != "a,b" {
		t.Fatalf("ids = %v", ids)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("tmp file left behind")
	}
}

func TestFileLedgerCorruptFailsOpen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "applied_jobs.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	l := NewFile(path)
	if l.Has(ctx, "1") {
		t.Fatalf("corrupt ledger must report false")
	}
	if err := l.Record(ctx, "1"); err != nil {
		t.Fatalf("record over corrupt file: %v", err)
	}
	if !l.Has(ctx, "1") {
		t.Fatalf("record after corruption lost")
	}
	matches, _ := filepath.Glob(path + ".corrupt-*")
	if len(matches) != 1 {
		t.Fatalf("corrupt file not set aside: %v", matches)
	}
}

func TestRedisUnavailableFailsOpen(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1})
	l := NewRedis(rdb, "autoapply:test")
	defer l.Close()

	if l.Has(context.Background(), "1") {
		t.Fatalf("unreachable redis must report false")
	}
	if err := l.Record(context.Background(), "1"); err == nil {
		t.Fatalf("record against unreachable redis must error")
	}
}

func TestImport(t *testing.T) {
	ctx := context.Background()
	src := filepath.Join(t.TempDir(), "old.json")
	if err := os.WriteFile(src, []byte(`["1", "2", " ", "2", "3"]`), 0o644); err != nil {
		t.Fatal(err)
	}
	ids, err := ReadIDs(src)
	if err != nil {
		t.Fatal(err)
	}

	dst := NewFile(filepath.Join(t.TempDir(), "applied_jobs.json"))
	_ = dst.Record(ctx, "1")

	n, err := Import(ctx, dst, ids)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("added = %d, want 2", n)
	}
	got, _ := dst.List(ctx)
	if strings.Join(got, ",") != "1,2,3" {
		t.Fatalf("ids = %v", got)
	}
}

func TestOpen(t *testing.T) {
	if _, err := Open(config.LedgerConfig{Backend: "sqlite"}, nil); err == nil {
		t.Fatalf("sqlite without db must error")
	}
	if _, err := Open(config.LedgerConfig{Backend: "etcd"}, nil); err == nil {
		t.Fatalf("unknown backend must error")
	}
	l, err := Open(config.LedgerConfig{Backend: "file", Path: filepath.Join(t.TempDir(), "l.json")}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := l.(*FileLedger); !ok {
		t.Fatalf("got %T", l)
	}
}

func TestFileLedgerSyncsDirAfterRename(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "applied_jobs.json")

	var synced []string
	orig := syncDir
	syncDir = func(d string) error {
		// the rename must already be visible when the dir is flushed
		if _, err := os.Stat(path); err != nil {
			t.Errorf("sync before rename: %v", err)
		}
		synced = append(synced, d)
		return orig(d)
	}
	t.Cleanup(func() { syncDir = orig })

	if err := NewFile(path).Record(context.Background(), "a"); err != nil {
		t.Fatal(err)
	}
	if len(synced) != 1 || synced[0] != dir {
		t.Fatalf("synced = %v", synced)
	}
}

func TestFileLedgerDirSyncFailureIsReported(t *testing.T) {
	orig := syncDir
	syncDir = func(string) error { return os.ErrPermission }
	t.Cleanup(func() { syncDir = orig })

	err := NewFile(filepath.Join(t.TempDir(), "applied_jobs.json")).Record(context.Background(), "a")
	if err == nil || !strings.Contains(err.Error(), "fsync dir") {
		t.Fatalf("err = %v", err)
	}
}
