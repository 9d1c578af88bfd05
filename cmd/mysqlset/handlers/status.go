package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"text/tabwriter"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/imamik/mysqlset/internal/inventory"
	"github.com/imamik/mysqlset/internal/ui/tui"
)

// Factory function variables for status - can be replaced in tests.
var (
	collectStatus = inventory.Collect
	runWatchTUI   = tui.RunWatchTUI
)

// StatusOptions are the flags of the status command.
type StatusOptions struct {
	Watch       bool
	UntilReady  bool
	JSON        bool
	MetricsAddr string
}

// Status shows the StatefulSet, its pods and its claims, like
// `kubectl get pods,pvc` scoped to one deployment.
func Status(ctx context.Context, opts Options, so StatusOptions) error {
	ctx, logger := withLogger(ctx, "status")

	cfg, err := loadConfig(ctx, opts.ConfigPath)
	if err != nil {
		return err
	}

	rc, err := newRuntimeClient(opts)
	if err != nil {
		return err
	}

	fetch := func(ctx context.Context) (*inventory.Status, error) {
		return collectStatus(ctx, rc, cfg.Namespace, cfg.Name)
	}

	if !so.Watch && !so.UntilReady {
		status, err := fetch(ctx)
		if err != nil {
			return err
		}
		return printStatus(status, so.JSON)
	}

	var observe func(*inventory.Status)
	if so.MetricsAddr != "" {
		reg := prometheus.NewRegistry()
		recorder := inventory.NewRecorder(reg)
		observe = recorder.Observe

		stop, err := serveMetrics(so.MetricsAddr, reg)
		if err != nil {
			return err
		}
		defer stop()
		logger.Info("serving metrics", "addr", so.MetricsAddr, "path", "/metrics")
	}

	interval := loadTimeouts().PollInterval
	if !so.JSON && isInteractiveTTY() {
		m := tui.NewWatchModel(cfg.Name, cfg.Namespace)
		m.ExitWhenReady = so.UntilReady
		return runWatchTUI(ctx, m, interval, fetch, observe)
	}
	return watchStatus(ctx, fetch, interval, so.JSON, so.UntilReady, observe)
}

// watchStatus prints a snapshot every interval until ctx ends, or until every
// replica is ready when untilReady is set. Fetch errors are logged and the
// loop carries on.
func watchStatus(ctx context.Context, fetch tui.FetchFunc, interval time.Duration, jsonOutput, untilReady bool, observe func(*inventory.Status)) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		status, err := fetch(ctx)
		switch {
		case err != nil && ctx.Err() == nil:
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		case err == nil:
			if observe != nil {
				observe(status)
			}
			if jsonOutput {
				if err := printStatusJSONLine(status); err != nil {
					return err
				}
			} else {
				fmt.Printf("%s  %s\n", time.Now().Format(time.TimeOnly), status.Summary())
			}
			if untilReady && status.Ready() {
				return nil
			}
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func printStatus(status *inventory.Status, jsonOutput bool) error {
	if jsonOutput {
		data, err := json.MarshalIndent(status, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal status: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	if isInteractiveTTY() {
		fmt.Print(tui.RenderOnce(status))
		return nil
	}

	printStatusTable(status)
	return nil
}

func printStatusJSONLine(status *inventory.Status) error {
	data, err := json.Marshal(status)
	if err != nil {
		return fmt.Errorf("failed to marshal status: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

// printStatusTable prints plain tables for pipes and logs.
func printStatusTable(status *inventory.Status) {
	if status.Found {
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "NAME\tREADY\tSTATUS\tRESTARTS\tROLE\tNODE")
		for _, pod := range status.Pods {
			ready := "0/1"
			if pod.Ready {
				ready = "1/1"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n", pod.Name, ready, pod.Phase, pod.Restarts, pod.Role, pod.Node)
		}
		_ = w.Flush()
		fmt.Println()
	}

	if len(status.Claims) > 0 {
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "NAME\tSTATUS\tVOLUME\tCAPACITY\tSTORAGECLASS\tORPHANED")
		for _, claim := range status.Claims {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%t\n",
				claim.Name, claim.Phase, claim.Volume, claim.Capacity, claim.StorageClass, claim.Orphaned)
		}
		_ = w.Flush()
		fmt.Println()
	}

	fmt.Println(status.Summary())
}

// serveMetrics exposes reg on addr until the returned stop func is called.
func serveMetrics(addr string, reg *prometheus.Registry) (func(), error) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Surface bind errors before the watch starts.
	select {
	case err, ok := <-errCh:
		if ok && err != nil {
			return nil, fmt.Errorf("failed to serve metrics on %s: %w", addr, err)
		}
	case <-time.After(100 * time.Millisecond):
	}

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}, nil
}
