package solver

import (
	"fmt"
	"io"
	"log"
	"os"
)

// WorkerEnv marks a process started by ProcessExecutor as a solver worker.
const WorkerEnv = "WAYPOINT_TSP_WORKER"

// IsWorker reports whether the current process was started as a solver worker.
func IsWorker() bool { return os.Getenv(WorkerEnv) == "1" }

// RunWorker reads one matrix frame from r, runs Heuristic (the lvlath exact
// solver for small instances, local search otherwise) and writes the
// permutation frame to w.
func RunWorker(r io.Reader, w io.Writer) error {
	m, err := ReadMatrix(r)
	if err != nil {
		return fmt.Errorf("tsp worker: %w", err)
	}

	perm := Heuristic(m)

	if err := WritePermutation(w, perm); err != nil {
		return fmt.Errorf("tsp worker: %w", err)
	}
	return nil
}

// MaybeRunWorker turns the current process into a solver worker when it was
// started by ProcessExecutor, and exits. Binaries call it first thing in main
// so that the default executor can re-execute them.
func MaybeRunWorker() {
	if !IsWorker() {
		return
	}
	if err := RunWorker(os.Stdin, os.Stdout); err != nil {
		log.Printf("op=tsp.worker err=%v", err)
		os.Exit(1)
	}
	os.Exit(0)
}
