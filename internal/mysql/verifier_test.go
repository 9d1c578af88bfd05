package mysql

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"

	"github.com/imamik/mysqlset/internal/config"
	"github.com/imamik/mysqlset/internal/util/retry"
)

// fakeRunner answers client pods by name.
type fakeRunner struct {
	outputs map[string][]string
	errs    map[string]error
	calls   []string
}

func (f *fakeRunner) RunPod(_ context.Context, pod *corev1.Pod, _ time.Duration) (string, error) {
	f.calls = append(f.calls, pod.Name)
	if err := f.errs[pod.Name]; err != nil {
		return "", err
	}
	outs := f.outputs[pod.Name]
	if len(outs) == 0 {
		return "", nil
	}
	out := outs[0]
	if len(outs) > 1 {
		f.outputs[pod.Name] = outs[1:]
	}
	return out, nil
}

func newVerifier(runner PodRunner) *Verifier {
	return &Verifier{
		Runner:     runner,
		Config:     config.Default(),
		PodTimeout: time.Second,
		Message:    "hello",
		Replica:    -1,
		ReadRetry:  []retry.Option{retry.WithMaxRetries(2), retry.WithInitialDelay(time.Millisecond)},
	}
}

func TestVerifier_Run(t *testing.T) {
	t.Parallel()
	runner := &fakeRunner{outputs: map[string][]string{
		"mysql-client-read":      {"hello\n"},
		"mysql-client-read-2":    {"hello\n"},
		"mysql-client-server-id": {"100\n101\n102\n101\n"},
	}}
	v := newVerifier(runner)
	v.Replica = 2
	v.Samples = 4

	report, err := v.Run(context.Background())
	require.NoError(t, err)

	assert.True(t, report.Passed())
	assert.Equal(t, "mysql-0.mysql", report.Primary)
	assert.Equal(t, []string{"hello"}, report.ReadRows)
	assert.Equal(t, "mysql-2.mysql", report.ReplicaHost)
	assert.Equal(t, Distribution{0: 1, 1: 2, 2: 1}, report.Distribution)
	assert.Equal(t, []string{
		"mysql-client-write",
		"mysql-client-read",
		"mysql-client-read-2",
		"mysql-client-server-id",
	}, runner.calls)
}

func TestVerifier_WaitsForReplication(t *testing.T) {
	t.Parallel()
	runner := &fakeRunner{outputs: map[string][]string{
		"mysql-client-read": {"", "older\n", "older\nhello\n"},
	}}
	v := newVerifier(runner)

	report, err := v.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, report.ReadReplicated)
	assert.Equal(t, []string{"older", "hello"}, report.ReadRows)
	assert.Len(t, runner.calls, 4)
}

func TestVerifier_NotReplicated(t *testing.T) {
	t.Parallel()
	runner := &fakeRunner{outputs: map[string][]string{
		"mysql-client-read": {"older\n"},
	}}
	v := newVerifier(runner)

	report, err := v.Run(context.Background())
	require.NoError(t, err)
	assert.False(t, report.ReadReplicated)
	assert.False(t, report.Passed())
	assert.Equal(t, []string{"older"}, report.ReadRows)
}

func TestVerifier_MessageWithEscapedCharacters(t *testing.T) {
	t.Parallel()
	runner := &fakeRunner{outputs: map[string][]string{
		"mysql-client-read": {`C:\\tmp\tdone` + "\n"},
	}}
	v := newVerifier(runner)
	v.Message = "C:\\tmp\tdone"

	report, err := v.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, report.ReadReplicated)
	assert.True(t, report.Passed())
	assert.Len(t, runner.calls, 2)
}

func TestVerifier_WriteFails(t *testing.T) {
	t.Parallel()
	runner := &fakeRunner{errs: map[string]error{"mysql-client-write": errors.New("pod failed")}}

	_, err := newVerifier(runner).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "write through mysql-0.mysql failed")
}

func TestVerifier_ReadFailsWithoutRetry(t *testing.T) {
	t.Parallel()
	runner := &fakeRunner{errs: map[string]error{"mysql-client-read": errors.New("ERROR 2005")}}

	_, err := newVerifier(runner).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ERROR 2005")
	assert.Equal(t, 1, strings.Count(strings.Join(runner.calls, ","), "mysql-client-read"))
}
