package reliability

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/pragmas/internal/database"
	testingpkg "github.com/aristath/pragmas/internal/testing"
)

type memoryStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted []string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{objects: make(map[string][]byte)}
}

func (m *memoryStore) Upload(_ context.Context, key string, body io.Reader, _ int64) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
	return nil
}

func (m *memoryStore) List(_ context.Context, prefix string) ([]ObjectInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []ObjectInfo
	for key, data := range m.objects {
		if strings.HasPrefix(key, prefix) {
			out = append(out, ObjectInfo{Key: key, Size: int64(len(data))})
		}
	}
	return out, nil
}

func (m *memoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	m.deleted = append(m.deleted, key)
	return nil
}

func TestCreateAndUploadBackup_ArchivesEveryDatabaseWithMetadata(t *testing.T) {
	ledger, audit := testingpkg.NewLedgerAndAudit(t)
	testingpkg.SeedPortfolio(t, ledger, testingpkg.PortfolioID, testingpkg.OwnerID)

	store := newMemoryStore()
	service := NewBackupService(store, []*database.DB{ledger, audit}, t.TempDir(), zerolog.Nop())
	service.now = func() time.Time { return time.Date(2026, 4, 5, 6, 7, 8, 0, time.UTC) }

	name, err := service.CreateAndUploadBackup(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "pragmas-backup-2026-04-05-060708.tar.gz", name)

	gz, err := gzip.NewReader(bytes.NewReader(store.objects[name]))
	require.NoError(t, err)
	tr := tar.NewReader(gz)

	var names []string
	var metadata BackupMetadata
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		names = append(names, header.Name)
		if header.Name == metadataFilename {
			require.NoError(t, json.NewDecoder(tr).Decode(&metadata))
		}
	}

	sort.Strings(names)
	assert.Equal(t, []string{"audit.db", metadataFilename, "ledger.db"}, names)
	require.Len(t, metadata.Databases, 2)
	for _, db := range metadata.Databases {
		assert.True(t, strings.HasPrefix(db.Checksum, "sha256:"))
		assert.Positive(t, db.SizeBytes)
	}
}

func TestRotateOldBackups_KeepsNewestThree(t *testing.T) {
	store := newMemoryStore()
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	for _, age := range []int{1, 40, 50, 60, 70} {
		stamp := now.AddDate(0, 0, -age).Format(backupTimeLayout)
		store.objects[backupPrefix+stamp+backupSuffix] = []byte("x")
	}
	store.objects[backupPrefix+"garbage"+backupSuffix] = []byte("x")

	service := NewBackupService(store, nil, t.TempDir(), zerolog.Nop())
	service.now = func() time.Time { return now }

	deleted, err := service.RotateOldBackups(context.Background(), 30)
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)

	backups, err := service.ListBackups(context.Background())
	require.NoError(t, err)
	require.Len(t, backups, 3)
	assert.True(t, now.AddDate(0, 0, -1).Equal(backups[0].Timestamp))
	assert.Equal(t, int64(24), backups[0].AgeHours)
}

func TestRotateOldBackups_ZeroRetentionKeepsEverything(t *testing.T) {
	store := newMemoryStore()
	now := time.Now().UTC()
	for i := 0; i < 5; i++ {
		store.objects[backupPrefix+now.AddDate(0, 0, -100-i).Format(backupTimeLayout)+backupSuffix] = []byte("x")
	}

	service := NewBackupService(store, nil, t.TempDir(), zerolog.Nop())
	deleted, err := service.RotateOldBackups(context.Background(), 0)
	require.NoError(t, err)
	assert.Zero(t, deleted)
	assert.Empty(t, store.deleted)
}
