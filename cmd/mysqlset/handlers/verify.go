package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/imamik/mysqlset/internal/mysql"
	"github.com/imamik/mysqlset/internal/util/naming"
	"github.com/imamik/mysqlset/internal/util/retry"
)

// VerifyOptions are the flags of the test command.
type VerifyOptions struct {
	Message string
	// Replica is an ordinal to read from directly, or -1.
	Replica int
	Samples int
	JSON    bool
}

// Verify writes a row through the primary and reads it back through the read
// Service, then samples which replicas answer the read Service.
func Verify(ctx context.Context, opts Options, to VerifyOptions) error {
	ctx, _ = withLogger(ctx, "test")

	cfg, err := loadConfig(ctx, opts.ConfigPath)
	if err != nil {
		return err
	}

	timeouts := loadTimeouts()
	kc, err := newKubeClient(opts, timeouts)
	if err != nil {
		return err
	}

	sts, err := kc.GetStatefulSet(ctx, cfg.Namespace, cfg.Name)
	if err != nil {
		return err
	}
	replicas := int32(1)
	if sts.Spec.Replicas != nil {
		replicas = *sts.Spec.Replicas
	}
	if to.Replica >= int(replicas) {
		return fmt.Errorf("replica %d does not exist, statefulset %s/%s has %d replicas", to.Replica, cfg.Namespace, cfg.Name, replicas)
	}

	message := to.Message
	if message == "" {
		message = "hello"
	}

	verifier := &mysql.Verifier{
		Runner:     kc,
		Config:     cfg,
		PodTimeout: timeouts.ClientPod,
		Message:    message,
		Replica:    to.Replica,
		Samples:    to.Samples,
		ReadRetry: []retry.Option{
			retry.WithMaxRetries(timeouts.RetryMaxAttempts),
			retry.WithInitialDelay(timeouts.RetryInitialDelay),
			retry.WithMaxDelay(15 * time.Second),
		},
	}

	report, err := verifier.Run(ctx)
	if err != nil {
		return err
	}

	if to.JSON {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal report: %w", err)
		}
		fmt.Println(string(data))
	} else {
		printReport(report, cfg.Name)
	}

	if !report.Passed() {
		return fmt.Errorf("message %q was not replicated", message)
	}
	return nil
}

func printReport(r *mysql.Report, name string) {
	fmt.Printf("Wrote %q through %s\n", r.Message, r.Primary)
	fmt.Println()

	printRow("read via "+r.ReadService, r.ReadReplicated, strings.Join(r.ReadRows, ", "))
	if r.ReplicaHost != "" {
		printRow("read via "+r.ReplicaHost, r.ReplicaReplicated, strings.Join(r.ReplicaRows, ", "))
	}

	if len(r.ServerIDs) > 0 {
		fmt.Println()
		fmt.Printf("  %d queries to %s answered by: %s\n", len(r.ServerIDs), naming.ReadService(name), r.Distribution.Format(name))
	}
	fmt.Println()
}

// printRow prints a check line with a pass/fail marker.
func printRow(name string, ok bool, extra string) {
	indicator := "✅"
	if !ok {
		indicator = "❌"
	}

	if extra != "" {
		fmt.Printf("  %s  %-28s %s\n", indicator, name, extra)
	} else {
		fmt.Printf("  %s  %s\n", indicator, name)
	}
}
