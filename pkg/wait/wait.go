package wait

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/cloudbrew/hadoopctl/pkg/errdefs"
	"github.com/cloudbrew/hadoopctl/pkg/log"
	"github.com/cloudbrew/hadoopctl/pkg/metrics"
	"github.com/cloudbrew/hadoopctl/pkg/runner"
)

// DefaultInterval is the fixed delay between probe attempts.
const DefaultInterval = 2 * time.Second

// connectTimeout bounds a single TCP probe attempt.
const connectTimeout = 10 * time.Second

// Probe reports whether the awaited condition holds, with detail for the
// timeout error when it never does.
type Probe func() (ok bool, detail string)

// For blocks until probe succeeds, polling every interval, and returns an
// errdefs.TimeoutError once timeout has elapsed. It never blocks longer than
// timeout plus one interval and supports no external cancellation.
func For(target string, timeout, interval time.Duration, probe Probe) error {
	start := time.Now()
	var detail string
	for {
		ok, d := probe()
		if ok {
			metrics.WaitDuration.WithLabelValues(target).Observe(time.Since(start).Seconds())
			return nil
		}
		detail = d
		if time.Since(start) >= timeout {
			metrics.WaitTimeouts.WithLabelValues(target).Inc()
			return errdefs.NewTimeoutError(target, timeout, detail)
		}
		time.Sleep(interval)
	}
}

// ForConnect waits until addr accepts TCP connections on port.
func ForConnect(addr string, port int, timeout time.Duration) error {
	target := net.JoinHostPort(addr, fmt.Sprint(port))
	return For("connect to "+target, timeout, DefaultInterval, func() (bool, string) {
		conn, err := net.DialTimeout("tcp", target, connectTimeout)
		if err != nil {
			return false, err.Error()
		}
		conn.Close()
		return true, ""
	})
}

// ForHDFS waits until the filesystem reports live DataNodes and has left safe
// mode. Command failures (typically connection refused while the NameNode
// starts) are absorbed and retried until the deadline.
func ForHDFS(r runner.Runner, timeout time.Duration) error {
	waitLog := log.WithComponent("wait")
	return For("hdfs", timeout, DefaultInterval, func() (bool, string) {
		report, err := r.Output(context.Background(), "hdfs", "hdfs", "dfsadmin", "-report")
		if err != nil {
			return false, strings.TrimSpace(report)
		}
		datanodes := strings.Contains(report, "Datanodes available") ||
			strings.Contains(report, "Live datanodes")

		safemode, err := r.Output(context.Background(), "hdfs", "hdfs", "dfsadmin", "-safemode", "get")
		if err != nil {
			return false, strings.TrimSpace(safemode)
		}
		safeModeOff := strings.Contains(safemode, "Safe mode is OFF")

		if !datanodes || !safeModeOff {
			waitLog.Debug().
				Bool("datanodes", datanodes).
				Bool("safemode_off", safeModeOff).
				Msg("HDFS not ready yet")
			return false, strings.TrimSpace(report)
		}
		return true, ""
	})
}

// ForProcess waits until the named Java process appears in the process table.
func ForProcess(name string, timeout time.Duration) error {
	return For("process "+name, timeout, DefaultInterval, func() (bool, string) {
		if len(runner.JavaPIDs(name)) > 0 {
			return true, ""
		}
		return false, "not in process table"
	})
}
