package backup

import (
	"context"
	"errors"
	"io"
	"os"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/mysqlset/internal/config"
	"github.com/imamik/mysqlset/internal/platform/s3"
)

type execCall struct {
	namespace, pod, container string
	command                   []string
}

type fakeExec struct {
	output string
	err    error
	calls  []execCall
}

func (f *fakeExec) Exec(_ context.Context, namespace, pod, container string, command []string, w io.Writer) error {
	f.calls = append(f.calls, execCall{namespace, pod, container, command})
	if _, err := io.WriteString(w, f.output); err != nil {
		return err
	}
	return f.err
}

type fakeStore struct {
	buckets []string
	objects map[string][]byte
	listed  []s3.Object
	putErr  error
}

func (f *fakeStore) BucketExists(_ context.Context, bucket string) (bool, error) {
	return slices.Contains(f.buckets, bucket), nil
}

func (f *fakeStore) CreateBucket(_ context.Context, bucket string) error {
	f.buckets = append(f.buckets, bucket)
	return nil
}

func (f *fakeStore) PutObject(_ context.Context, _, key string, body io.Reader, size int64) error {
	if f.putErr != nil {
		return f.putErr
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	if int64(len(data)) != size {
		return errors.New("size does not match body")
	}
	if f.objects == nil {
		f.objects = map[string][]byte{}
	}
	f.objects[key] = data
	return nil
}

func (f *fakeStore) ListObjects(_ context.Context, _, _ string) ([]s3.Object, error) {
	return f.listed, nil
}

const completeDump = "-- MySQL dump 10.13\nCREATE DATABASE test;\n-- Dump completed on 2026-01-01 00:00:00\n"

func backupConfig() *config.Config {
	cfg := config.Default()
	cfg.Backup = config.BackupConfig{Bucket: "backups", Endpoint: "http://minio:9000", Prefix: "db"}
	return cfg
}

func fixedNow() time.Time {
	return time.Date(2026, 3, 4, 5, 6, 7, 0, time.FixedZone("CET", 3600))
}

func TestKey(t *testing.T) {
	t.Parallel()
	cfg := backupConfig()
	assert.Equal(t, "db/mysql/mysql/", Prefix(cfg))
	assert.Equal(t, "db/mysql/mysql/20260304T040607Z.sql", Key(cfg, fixedNow()))

	cfg.Backup.Prefix = ""
	assert.Equal(t, "mysql/mysql/", Prefix(cfg))
}

func newRunner(t *testing.T, exec *fakeExec, store *fakeStore) *Runner {
	t.Helper()
	return &Runner{Exec: exec, Store: store, Config: backupConfig(), Timeout: time.Minute, TempDir: t.TempDir(), Now: fixedNow}
}

func TestRun_UploadsFromFirstReplica(t *testing.T) {
	t.Parallel()
	exec := &fakeExec{output: completeDump}
	store := &fakeStore{}
	r := newRunner(t, exec, store)

	result, err := r.Run(context.Background(), 3)
	require.NoError(t, err)

	assert.Equal(t, "mysql-1.mysql", result.Source)
	assert.Equal(t, "db/mysql/mysql/20260304T040607Z.sql", result.Key)
	assert.Equal(t, int64(len(completeDump)), result.Size)
	assert.Equal(t, []string{"backups"}, store.buckets)
	assert.Equal(t, completeDump, string(store.objects[result.Key]))

	require.Len(t, exec.calls, 1)
	assert.Equal(t, "mysql", exec.calls[0].namespace)
	assert.Equal(t, "mysql-1", exec.calls[0].pod)
	assert.Equal(t, "mysql", exec.calls[0].container)
	assert.Equal(t, "mysqldump", exec.calls[0].command[0])

	entries, err := os.ReadDir(r.TempDir)
	require.NoError(t, err)
	assert.Empty(t, entries, "dump file must be removed after upload")
}

func TestRun_DumpLargerThanLogRotation(t *testing.T) {
	t.Parallel()
	body := "-- MySQL dump 10.13\n" + strings.Repeat("INSERT INTO t VALUES (1);\n", 500_000) + "-- Dump completed on 2026-01-01 00:00:00\n"
	require.Greater(t, len(body), 10<<20)
	store := &fakeStore{}
	r := newRunner(t, &fakeExec{output: body}, store)

	result, err := r.Run(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, int64(len(body)), result.Size)
	assert.Len(t, store.objects[result.Key], len(body))
}

func TestRun_ReusesExistingBucket(t *testing.T) {
	t.Parallel()
	store := &fakeStore{buckets: []string{"backups"}}
	r := newRunner(t, &fakeExec{output: completeDump}, store)

	_, err := r.Run(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"backups"}, store.buckets)
}

func TestRun_SingleReplicaDumpsPrimary(t *testing.T) {
	t.Parallel()
	exec := &fakeExec{output: completeDump}
	r := newRunner(t, exec, &fakeStore{})

	result, err := r.Run(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "mysql-0.mysql", result.Source)
	assert.Equal(t, "mysql-0", exec.calls[0].pod)
}

func TestRun_Errors(t *testing.T) {
	t.Parallel()

	t.Run("not configured", func(t *testing.T) {
		t.Parallel()
		r := &Runner{Exec: &fakeExec{}, Store: &fakeStore{}, Config: config.Default()}
		_, err := r.Run(context.Background(), 3)
		require.ErrorContains(t, err, "no backup bucket configured")
	})

	t.Run("truncated dump", func(t *testing.T) {
		t.Parallel()
		store := &fakeStore{}
		r := newRunner(t, &fakeExec{output: "-- MySQL dump 10.13\n"}, store)
		_, err := r.Run(context.Background(), 3)
		require.ErrorContains(t, err, "incomplete dump")
		assert.Empty(t, store.objects)
	})

	t.Run("trailer not at the end", func(t *testing.T) {
		t.Parallel()
		store := &fakeStore{}
		output := completeDump + strings.Repeat("x", tailSize)
		r := newRunner(t, &fakeExec{output: output}, store)
		_, err := r.Run(context.Background(), 3)
		require.ErrorContains(t, err, "incomplete dump")
		assert.Empty(t, store.objects)
	})

	t.Run("exec failure", func(t *testing.T) {
		t.Parallel()
		store := &fakeStore{}
		r := newRunner(t, &fakeExec{output: "-- MySQL dump", err: errors.New("command terminated with exit code 2")}, store)
		_, err := r.Run(context.Background(), 3)
		require.ErrorContains(t, err, "mysqldump from mysql-1.mysql failed")
		assert.Empty(t, store.objects)
	})

	t.Run("upload failure", func(t *testing.T) {
		t.Parallel()
		store := &fakeStore{putErr: errors.New("access denied")}
		r := newRunner(t, &fakeExec{output: completeDump}, store)
		_, err := r.Run(context.Background(), 3)
		require.ErrorContains(t, err, "access denied")
	})
}

func TestTailWriter(t *testing.T) {
	t.Parallel()
	w := &tailWriter{max: 4}
	for _, chunk := range []string{"ab", "cdef", "g"} {
		n, err := w.Write([]byte(chunk))
		require.NoError(t, err)
		assert.Equal(t, len(chunk), n)
	}
	assert.Equal(t, "defg", string(w.buf))
	assert.Equal(t, int64(7), w.n)
}

func TestList_NewestFirst(t *testing.T) {
	t.Parallel()
	store := &fakeStore{listed: []s3.Object{
		{Key: "db/mysql/mysql/20260101T000000Z.sql"},
		{Key: "db/mysql/mysql/notes.txt"},
		{Key: "db/mysql/mysql/20260301T000000Z.sql"},
	}}
	r := &Runner{Store: store, Config: backupConfig()}

	dumps, err := r.List(context.Background())
	require.NoError(t, err)
	require.Len(t, dumps, 2)
	assert.Equal(t, "db/mysql/mysql/20260301T000000Z.sql", dumps[0].Key)
}

func TestCredentials(t *testing.T) {
	t.Setenv(EnvAccessKey, "")
	t.Setenv(EnvSecretKey, "")
	_, _, err := Credentials()
	require.Error(t, err)
	assert.Contains(t, err.Error(), EnvAccessKey)
	assert.Contains(t, err.Error(), EnvSecretKey)

	t.Setenv(EnvAccessKey, "access")
	t.Setenv(EnvSecretKey, "secret")
	access, secret, err := Credentials()
	require.NoError(t, err)
	assert.Equal(t, "access", access)
	assert.Equal(t, "secret", secret)
}
