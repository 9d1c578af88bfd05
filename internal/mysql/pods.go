package mysql

import (
	"fmt"
	"strconv"
	"strings"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/imamik/mysqlset/internal/config"
	"github.com/imamik/mysqlset/internal/util/labels"
	"github.com/imamik/mysqlset/internal/util/naming"
)

// ClientContainer is the container name of every client pod.
const ClientContainer = "mysql-client"

// ServerContainer is the mysqld container of each StatefulSet pod.
const ServerContainer = "mysql"

// MaxMessageLength is the width of the message column.
const MaxMessageLength = 250

// Statements.
const (
	createDatabaseSQL = "CREATE DATABASE IF NOT EXISTS test"
	createTableSQL    = "CREATE TABLE IF NOT EXISTS test.messages (message VARCHAR(250))"
	selectMessagesSQL = "SELECT * FROM test.messages"
	selectServerIDSQL = "SELECT @@server_id"
)

// WriteSQL returns the statements that store message in test.messages.
func WriteSQL(message string) string {
	return fmt.Sprintf("%s; %s; INSERT INTO test.messages VALUES ('%s')",
		createDatabaseSQL, createTableSQL, escape(message))
}

// WritePod returns a pod that writes message through the primary.
func WritePod(cfg *config.Config, message string) (*corev1.Pod, error) {
	if message == "" {
		return nil, fmt.Errorf("message must not be empty")
	}
	if len(message) > MaxMessageLength {
		return nil, fmt.Errorf("message is %d characters long, maximum is %d", len(message), MaxMessageLength)
	}
	host := naming.PrimaryHost(cfg.Name)
	return clientPod(cfg, "write", queryCommand(host, WriteSQL(message))), nil
}

// ReadPod returns a pod that reads test.messages. An ordinal < 0 reads
// through the read Service, otherwise from that replica directly.
func ReadPod(cfg *config.Config, ordinal int) *corev1.Pod {
	if ordinal < 0 {
		return clientPod(cfg, "read", queryCommand(naming.ReadService(cfg.Name), selectMessagesSQL))
	}
	purpose := "read-" + strconv.Itoa(ordinal)
	return clientPod(cfg, purpose, queryCommand(naming.PodHost(cfg.Name, ordinal), selectMessagesSQL))
}

// ServerIDPod returns a pod that queries @@server_id through the read
// Service samples times, one connection per sample.
func ServerIDPod(cfg *config.Config, samples int) *corev1.Pod {
	if samples < 1 {
		samples = 1
	}
	script := fmt.Sprintf("for i in $(seq 1 %d); do mysql -h %s -N -B -e '%s'; done",
		samples, naming.ReadService(cfg.Name), selectServerIDSQL)
	return clientPod(cfg, "server-id", []string{"bash", "-ec", script})
}

// DumpCommand dumps all databases of the local server to stdout. It runs
// inside ServerContainer of the source pod.
func DumpCommand() []string {
	return []string{"mysqldump", "-h", "127.0.0.1", "--all-databases", "--single-transaction", "--routines", "--events"}
}

// DumpSource picks the ordinal to dump from: the first replica when there is
// one, so the primary does not carry the load, otherwise the primary.
func DumpSource(replicas int32) int {
	if replicas > 1 {
		return 1
	}
	return 0
}

func queryCommand(host, sql string) []string {
	return []string{"mysql", "-h", host, "-N", "-B", "-e", sql}
}

func clientPod(cfg *config.Config, purpose string, command []string) *corev1.Pod {
	return &corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{
			Name:      naming.ClientPod(cfg.Name, purpose),
			Namespace: cfg.Namespace,
			Labels:    labels.Client(cfg.Name),
		},
		Spec: corev1.PodSpec{
			RestartPolicy: corev1.RestartPolicyNever,
			Containers: []corev1.Container{
				{
					Name:    ClientContainer,
					Image:   cfg.ClientImageOrDefault(),
					Command: command,
				},
			},
		},
	}
}

// escape quotes s for use inside a single-quoted SQL string literal.
func escape(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `'`, `''`)
}
