package handlers

import (
	"context"
	"io"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/mysqlset/internal/backup"
	"github.com/imamik/mysqlset/internal/config"
	"github.com/imamik/mysqlset/internal/platform/s3"
)

type fakeStore struct {
	buckets []string
	puts    map[string][]byte
	objects []s3.Object
}

func (f *fakeStore) BucketExists(_ context.Context, bucket string) (bool, error) {
	return slices.Contains(f.buckets, bucket), nil
}

func (f *fakeStore) CreateBucket(_ context.Context, bucket string) error {
	f.buckets = append(f.buckets, bucket)
	return nil
}

func (f *fakeStore) PutObject(_ context.Context, _, key string, body io.Reader, _ int64) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	if f.puts == nil {
		f.puts = map[string][]byte{}
	}
	f.puts[key] = data
	return nil
}

func (f *fakeStore) ListObjects(_ context.Context, _, prefix string) ([]s3.Object, error) {
	var out []s3.Object
	for _, o := range f.objects {
		if strings.HasPrefix(o.Key, prefix) {
			out = append(out, o)
		}
	}
	return out, nil
}

func backupConfig() *config.Config {
	cfg := config.Default()
	cfg.Backup = config.BackupConfig{Bucket: "dumps", Endpoint: "http://minio:9000", Region: "us-east-1", PathStyle: true}
	return cfg
}

func useStore(t *testing.T, store *fakeStore) *config.BackupConfig {
	t.Helper()
	t.Setenv(backup.EnvAccessKey, "access")
	t.Setenv(backup.EnvSecretKey, "secret")

	orig := newBackupStore
	t.Cleanup(func() { newBackupStore = orig })

	var got config.BackupConfig
	newBackupStore = func(_ context.Context, cfg config.BackupConfig, accessKey, secretKey string) (backup.Store, error) {
		got = cfg
		if accessKey != "access" || secretKey != "secret" {
			t.Errorf("unexpected credentials %q/%q", accessKey, secretKey)
		}
		return store, nil
	}
	return &got
}

func TestBackup(t *testing.T) {
	kube := newFakeKube(3)
	kube.execOut["mysql-1"] = "-- MySQL dump\nCREATE DATABASE test;\n-- Dump completed on 2026-10-16\n"
	store := &fakeStore{}
	useFakes(t, backupConfig(), kube)
	storeCfg := useStore(t, store)

	output := captureOutput(func() {
		require.NoError(t, Backup(context.Background(), Options{}, false))
	})

	assert.Equal(t, []string{"GetStatefulSet mysql/mysql", "Exec mysql-1 mysql"}, kube.calls)
	assert.Equal(t, []string{"dumps"}, store.buckets)
	require.Len(t, store.puts, 1)
	for key := range store.puts {
		assert.True(t, strings.HasPrefix(key, "mysql/mysql/"), key)
		assert.True(t, strings.HasSuffix(key, ".sql"), key)
	}
	assert.True(t, storeCfg.PathStyle)
	assert.Contains(t, output, "from mysql-1.mysql to s3://dumps/mysql/mysql/")
}

func TestBackup_List(t *testing.T) {
	kube := newFakeKube(3)
	store := &fakeStore{objects: []s3.Object{
		{Key: "mysql/mysql/20261015T000000Z.sql", Size: 10, LastModified: time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)},
		{Key: "mysql/mysql/20261016T000000Z.sql", Size: 20, LastModified: time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC)},
		{Key: "other/ns/x.sql", Size: 1},
	}}
	useFakes(t, backupConfig(), kube)
	useStore(t, store)

	output := captureOutput(func() {
		require.NoError(t, Backup(context.Background(), Options{}, true))
	})

	assert.Empty(t, kube.calls, "listing must not touch the cluster")
	assert.Less(t, strings.Index(output, "20261016T000000Z"), strings.Index(output, "20261015T000000Z"))
	assert.NotContains(t, output, "other/ns")
}

func TestBackup_ListEmpty(t *testing.T) {
	useFakes(t, backupConfig(), newFakeKube(3))
	useStore(t, &fakeStore{})

	output := captureOutput(func() {
		require.NoError(t, Backup(context.Background(), Options{}, true))
	})
	assert.Contains(t, output, "no dumps under s3://dumps/mysql/mysql/")
}

func TestBackup_NotConfigured(t *testing.T) {
	useFakes(t, config.Default(), newFakeKube(3))

	err := Backup(context.Background(), Options{}, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no backup bucket configured")
}

func TestBackup_MissingCredentials(t *testing.T) {
	useFakes(t, backupConfig(), newFakeKube(3))
	t.Setenv(backup.EnvAccessKey, "")
	t.Setenv(backup.EnvSecretKey, "")

	err := Backup(context.Background(), Options{}, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), backup.EnvAccessKey)
}
