package mysql

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	corev1 "k8s.io/api/core/v1"
	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/imamik/mysqlset/internal/config"
	"github.com/imamik/mysqlset/internal/util/naming"
	"github.com/imamik/mysqlset/internal/util/retry"
)

// PodRunner runs a one-shot pod to completion and returns its logs.
type PodRunner interface {
	RunPod(ctx context.Context, pod *corev1.Pod, timeout time.Duration) (string, error)
}

// errNotReplicated is returned while a written message is not yet visible.
var errNotReplicated = errors.New("message not visible yet")

// Verifier writes a message through the primary and checks that it can be
// read back from the replicas.
type Verifier struct {
	Runner PodRunner
	Config *config.Config

	// PodTimeout bounds each client pod.
	PodTimeout time.Duration

	Message string

	// Replica, when >= 0, is an ordinal to read from directly in addition to
	// the read Service.
	Replica int

	// Samples is the number of @@server_id queries sent through the read
	// Service. Zero skips the distribution check.
	Samples int

	// ReadRetry controls how long reads wait for replication to catch up.
	ReadRetry []retry.Option
}

// Report is the outcome of a verification run.
type Report struct {
	Message string `json:"message"`
	Primary string `json:"primary"`

	ReadService    string   `json:"readService"`
	ReadRows       []string `json:"readRows"`
	ReadReplicated bool     `json:"readReplicated"`

	ReplicaHost       string   `json:"replicaHost,omitempty"`
	ReplicaRows       []string `json:"replicaRows,omitempty"`
	ReplicaReplicated bool     `json:"replicaReplicated,omitempty"`

	ServerIDs    []int        `json:"serverIds,omitempty"`
	Distribution Distribution `json:"distribution,omitempty"`
}

// Run performs the write, the reads and the server-id sampling.
func (v *Verifier) Run(ctx context.Context) (*Report, error) {
	logger := log.FromContext(ctx)
	cfg := v.Config

	report := &Report{
		Message:     v.Message,
		Primary:     naming.PrimaryHost(cfg.Name),
		ReadService: naming.ReadService(cfg.Name),
	}

	writePod, err := WritePod(cfg, v.Message)
	if err != nil {
		return nil, err
	}
	if _, err := v.Runner.RunPod(ctx, writePod, v.PodTimeout); err != nil {
		return nil, fmt.Errorf("write through %s failed: %w", report.Primary, err)
	}
	logger.Info("wrote message", "host", report.Primary)

	report.ReadRows, err = v.readUntilVisible(ctx, -1)
	if err != nil && !errors.Is(err, errNotReplicated) {
		return nil, fmt.Errorf("read through %s failed: %w", report.ReadService, err)
	}
	report.ReadReplicated = err == nil

	if v.Replica >= 0 {
		report.ReplicaHost = naming.PodHost(cfg.Name, v.Replica)
		report.ReplicaRows, err = v.readUntilVisible(ctx, v.Replica)
		if err != nil && !errors.Is(err, errNotReplicated) {
			return nil, fmt.Errorf("read from %s failed: %w", report.ReplicaHost, err)
		}
		report.ReplicaReplicated = err == nil
	}

	if v.Samples > 0 {
		out, err := v.Runner.RunPod(ctx, ServerIDPod(cfg, v.Samples), v.PodTimeout)
		if err != nil {
			return nil, fmt.Errorf("server id sampling failed: %w", err)
		}
		report.ServerIDs, err = ParseServerIDs(out)
		if err != nil {
			return nil, err
		}
		report.Distribution, err = Distribute(report.ServerIDs, cfg.ServerIDOffset)
		if err != nil {
			return nil, err
		}
		logger.Info("sampled server ids", "distribution", report.Distribution.Format(cfg.Name))
	}

	return report, nil
}

// readUntilVisible reads test.messages until the message shows up or the
// retry budget is exhausted. The last rows read are returned either way.
func (v *Verifier) readUntilVisible(ctx context.Context, ordinal int) ([]string, error) {
	var rows []string
	err := retry.WithExponentialBackoff(ctx, func() error {
		out, err := v.Runner.RunPod(ctx, ReadPod(v.Config, ordinal), v.PodTimeout)
		if err != nil {
			return retry.Fatal(err)
		}
		rows = ParseMessages(out)
		if !slices.Contains(rows, v.Message) {
			return errNotReplicated
		}
		return nil
	}, append([]retry.Option{retry.WithDescription("read test message")}, v.ReadRetry...)...)

	var fatal *retry.FatalError
	if errors.As(err, &fatal) {
		return rows, fatal.Err
	}
	return rows, err
}

// Passed reports whether every check found the written message.
func (r *Report) Passed() bool {
	if !r.ReadReplicated {
		return false
	}
	if r.ReplicaHost != "" && !r.ReplicaReplicated {
		return false
	}
	return true
}
