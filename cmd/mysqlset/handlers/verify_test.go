package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/mysqlset/internal/config"
	"github.com/imamik/mysqlset/internal/mysql"
)

func TestVerify(t *testing.T) {
	kube := newFakeKube(3)
	kube.podLogs["mysql-client-read"] = "hello\n"
	kube.podLogs["mysql-client-read-2"] = "hello\n"
	kube.podLogs["mysql-client-server-id"] = "100\n101\n102\n101\n"
	useFakes(t, config.Default(), kube)

	output := captureOutput(func() {
		err := Verify(context.Background(), Options{}, VerifyOptions{Message: "hello", Replica: 2, Samples: 4})
		require.NoError(t, err)
	})

	assert.Equal(t, []string{
		"GetStatefulSet mysql/mysql",
		"RunPod mysql-client-write",
		"RunPod mysql-client-read",
		"RunPod mysql-client-read-2",
		"RunPod mysql-client-server-id",
	}, kube.calls)
	assert.Contains(t, output, `Wrote "hello" through mysql-0.mysql`)
	assert.Contains(t, output, "read via mysql-read")
	assert.Contains(t, output, "read via mysql-2.mysql")
	assert.Contains(t, output, "mysql-0=1, mysql-1=2, mysql-2=1")
}

func TestVerify_JSON(t *testing.T) {
	kube := newFakeKube(2)
	kube.podLogs["mysql-client-read"] = "hi\n"
	useFakes(t, config.Default(), kube)

	output := captureOutput(func() {
		err := Verify(context.Background(), Options{}, VerifyOptions{Message: "hi", Replica: -1, JSON: true})
		require.NoError(t, err)
	})

	var report mysql.Report
	require.NoError(t, json.Unmarshal([]byte(output), &report))
	assert.True(t, report.ReadReplicated)
	assert.Equal(t, []string{"hi"}, report.ReadRows)
}

func TestVerify_NotReplicated(t *testing.T) {
	kube := newFakeKube(3)
	kube.podLogs["mysql-client-read"] = "older message\n"
	useFakes(t, config.Default(), kube)

	captureOutput(func() {
		err := Verify(context.Background(), Options{}, VerifyOptions{Message: "hello", Replica: -1})
		require.Error(t, err)
		assert.Contains(t, err.Error(), `message "hello" was not replicated`)
	})
}

func TestVerify_ReplicaOutOfRange(t *testing.T) {
	kube := newFakeKube(2)
	useFakes(t, config.Default(), kube)

	err := Verify(context.Background(), Options{}, VerifyOptions{Message: "hello", Replica: 2})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "replica 2 does not exist")
	assert.False(t, kube.called("RunPod"))
}

func TestVerify_DefaultMessage(t *testing.T) {
	kube := newFakeKube(1)
	kube.podLogs["mysql-client-read"] = "hello\n"
	useFakes(t, config.Default(), kube)

	captureOutput(func() {
		require.NoError(t, Verify(context.Background(), Options{}, VerifyOptions{Replica: -1}))
	})
}

func TestVerify_WriteFails(t *testing.T) {
	kube := newFakeKube(3)
	kube.podErr = errors.New("pod mysql/mysql-client-write failed: ERROR 2003")
	useFakes(t, config.Default(), kube)

	err := Verify(context.Background(), Options{}, VerifyOptions{Message: "hello", Replica: -1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ERROR 2003")
}
