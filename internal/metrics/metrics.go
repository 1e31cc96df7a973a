package metrics

import (
	"fmt"
	"net/http"
	"sync/atomic"
)

var (
	MessagesReceived   atomic.Int64
	DecodeFailures     atomic.Int64
	EventDrops         atomic.Int64
	TransitionDrops    atomic.Int64
	StateWriteFailures atomic.Int64
	DBWriteSuccess     atomic.Int64
	DBWriteFailures    atomic.Int64
)

func HandleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	fmt.Fprintf(w, "telemetry_messages_received_total %d\n", MessagesReceived.Load())
	fmt.Fprintf(w, "telemetry_decode_failures_total %d\n", DecodeFailures.Load())
	fmt.Fprintf(w, "telemetry_event_drops_total %d\n", EventDrops.Load())
	fmt.Fprintf(w, "telemetry_transition_drops_total %d\n", TransitionDrops.Load())
	fmt.Fprintf(w, "telemetry_state_write_failures_total %d\n", StateWriteFailures.Load())
	fmt.Fprintf(w, "telemetry_db_write_success_total %d\n", DBWriteSuccess.Load())
	fmt.Fprintf(w, "telemetry_db_write_failures_total %d\n", DBWriteFailures.Load())
}
