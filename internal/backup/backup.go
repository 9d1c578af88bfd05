package backup

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"sort"
	"strings"
	"time"

	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/imamik/mysqlset/internal/config"
	"github.com/imamik/mysqlset/internal/mysql"
	"github.com/imamik/mysqlset/internal/platform/s3"
	"github.com/imamik/mysqlset/internal/util/naming"
)

// Environment variables holding the object storage credentials.
const (
	EnvAccessKey = "MYSQLSET_S3_ACCESS_KEY"
	EnvSecretKey = "MYSQLSET_S3_SECRET_KEY"
)

// TimestampFormat names dump objects. It sorts lexically in time order.
const TimestampFormat = "20060102T150405Z"

// dumpTrailer is the comment mysqldump writes after a complete dump.
const dumpTrailer = "-- Dump completed"

// tailSize bounds how much of the end of a dump is kept to find the trailer.
const tailSize = 256

// Store is the object storage used for dumps.
type Store interface {
	BucketExists(ctx context.Context, bucket string) (bool, error)
	CreateBucket(ctx context.Context, bucket string) error
	PutObject(ctx context.Context, bucket, key string, body io.Reader, size int64) error
	ListObjects(ctx context.Context, bucket, prefix string) ([]s3.Object, error)
}

// Execer runs a command in a container and streams its stdout to w.
type Execer interface {
	Exec(ctx context.Context, namespace, pod, container string, command []string, w io.Writer) error
}

// Result describes an uploaded dump.
type Result struct {
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
	Size   int64  `json:"size"`
	Source string `json:"source"`
}

// Runner takes and lists dumps of one deployment.
type Runner struct {
	Exec    Execer
	Store   Store
	Config  *config.Config
	Timeout time.Duration

	// TempDir holds the dump while it is uploaded. Empty uses os.TempDir.
	TempDir string

	// Now is overridable for tests.
	Now func() time.Time
}

// Credentials reads the access and secret key from the environment.
func Credentials() (accessKey, secretKey string, err error) {
	accessKey = os.Getenv(EnvAccessKey)
	secretKey = os.Getenv(EnvSecretKey)

	var errs []error
	if accessKey == "" {
		errs = append(errs, fmt.Errorf("%s is not set", EnvAccessKey))
	}
	if secretKey == "" {
		errs = append(errs, fmt.Errorf("%s is not set", EnvSecretKey))
	}
	return accessKey, secretKey, errors.Join(errs...)
}

// Prefix returns the key prefix under which dumps of the deployment live,
// with a trailing slash.
func Prefix(cfg *config.Config) string {
	return path.Join(cfg.Backup.Prefix, cfg.Namespace, cfg.Name) + "/"
}

// Key returns the object key for a dump taken at t.
func Key(cfg *config.Config, t time.Time) string {
	return Prefix(cfg) + t.UTC().Format(TimestampFormat) + ".sql"
}

// Run streams a dump from the server container of the replica chosen by
// mysql.DumpSource into a temporary file and uploads it. The dump goes
// through the exec API so its size is not bounded by container log rotation.
func (r *Runner) Run(ctx context.Context, replicas int32) (*Result, error) {
	if !r.Config.Backup.Enabled() {
		return nil, fmt.Errorf("no backup bucket configured")
	}
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	logger := log.FromContext(ctx)
	ordinal := mysql.DumpSource(replicas)
	pod := naming.Pod(r.Config.Name, ordinal)
	source := naming.PodHost(r.Config.Name, ordinal)

	f, err := os.CreateTemp(r.TempDir, "mysqlset-dump-*.sql")
	if err != nil {
		return nil, fmt.Errorf("failed to create dump file: %w", err)
	}
	defer func() {
		_ = f.Close()
		_ = os.Remove(f.Name())
	}()

	logger.Info("dumping databases", "source", source, "file", f.Name())
	tail := &tailWriter{max: tailSize}
	err = r.Exec.Exec(ctx, r.Config.Namespace, pod, mysql.ServerContainer, mysql.DumpCommand(), io.MultiWriter(f, tail))
	if err != nil {
		return nil, fmt.Errorf("mysqldump from %s failed: %w", source, err)
	}
	if !bytes.Contains(tail.buf, []byte(dumpTrailer)) {
		return nil, fmt.Errorf("mysqldump from %s produced an incomplete dump (%d bytes)", source, tail.n)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to rewind dump file: %w", err)
	}

	bucket := r.Config.Backup.Bucket
	exists, err := r.Store.BucketExists(ctx, bucket)
	if err != nil {
		return nil, err
	}
	if !exists {
		logger.Info("creating bucket", "bucket", bucket)
		if err := r.Store.CreateBucket(ctx, bucket); err != nil {
			return nil, err
		}
	}

	key := Key(r.Config, r.now())
	if err := r.Store.PutObject(ctx, bucket, key, f, tail.n); err != nil {
		return nil, err
	}
	logger.Info("uploaded dump", "bucket", bucket, "key", key, "bytes", tail.n)

	return &Result{Bucket: bucket, Key: key, Size: tail.n, Source: source}, nil
}

// tailWriter counts what is written and keeps the last max bytes.
type tailWriter struct {
	max int
	buf []byte
	n   int64
}

func (t *tailWriter) Write(p []byte) (int, error) {
	t.n += int64(len(p))
	t.buf = append(t.buf, p...)
	if over := len(t.buf) - t.max; over > 0 {
		t.buf = append(t.buf[:0], t.buf[over:]...)
	}
	return len(p), nil
}

// List returns the dumps of the deployment, newest first.
func (r *Runner) List(ctx context.Context) ([]s3.Object, error) {
	if !r.Config.Backup.Enabled() {
		return nil, fmt.Errorf("no backup bucket configured")
	}

	objects, err := r.Store.ListObjects(ctx, r.Config.Backup.Bucket, Prefix(r.Config))
	if err != nil {
		return nil, err
	}

	dumps := objects[:0]
	for _, obj := range objects {
		if strings.HasSuffix(obj.Key, ".sql") {
			dumps = append(dumps, obj)
		}
	}
	sort.Slice(dumps, func(i, j int) bool { return dumps[i].Key > dumps[j].Key })
	return dumps, nil
}

func (r *Runner) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}
