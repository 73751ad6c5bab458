// Package profilers implement helper functions to set up profiling for the binaries.
//
// If linked, it will install the profiler flags: -prof (HTTP pprof server), -cpu_profile and -mem_profile.
package profilers

import (
	"context"
	"flag"
	"fmt"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
	"net/http"
	_ "net/http/pprof"
	"os"
	"runtime"
	"runtime/pprof"
)

var (
	flagProfiler   = flag.Int("prof", -1, "If set, runs the HTTP profiler at the given port, and keeps the program alive at the end.")
	flagCPUProfile = flag.String("cpu_profile", "", "write cpu profile to `file`")
	flagMemProfile = flag.String("mem_profile", "", "write heap profile to `file` at exit")
	profilerAddr   string

	// globalCtx is set on the call to Setup.
	globalCtx context.Context
)

// Setup starts the HTTP (flag -prof) and CPU profilers (flag -cpu_profile), if they were configured.
// You should follow with a deferred call to OnQuit.
func Setup(ctx context.Context) {
	globalCtx = ctx
	if *flagProfiler >= 0 {
		setupHTTPProfiler()
	}
	if *flagCPUProfile != "" {
		if err := startCPUProfile(*flagCPUProfile); err != nil {
			klog.Exitf("Failed to start CPU profiling: %+v", err)
		}
	}
}

// OnQuit should be called before the exit of the main() function, typically this is setup as a deferred call
// just after Setup.
func OnQuit() {
	// Don't freeze on panic.
	if err := recover(); err != nil {
		panic(err)
	}
	if *flagCPUProfile != "" {
		pprof.StopCPUProfile()
	}
	if *flagMemProfile != "" {
		if err := writeHeapProfile(*flagMemProfile); err != nil {
			klog.Errorf("Failed to write heap profile: %+v", err)
		}
	}
	if *flagProfiler >= 0 {
		httpProfilerOnQuit()
	}
}

// startCPUProfile creates the file and starts the CPU profiling there.
func startCPUProfile(fileName string) error {
	f, err := os.Create(fileName)
	if err != nil {
		return errors.Wrapf(err, "could not create CPU profile %q", fileName)
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		return errors.Wrapf(err, "could not start CPU profile in %q", fileName)
	}
	return nil
}

// writeHeapProfile writes the current heap profile to fileName.
func writeHeapProfile(fileName string) error {
	f, err := os.Create(fileName)
	if err != nil {
		return errors.Wrapf(err, "could not create heap profile %q", fileName)
	}
	defer func() { _ = f.Close() }()
	runtime.GC()
	if err := pprof.WriteHeapProfile(f); err != nil {
		return errors.Wrapf(err, "could not write heap profile to %q", fileName)
	}
	return nil
}

// setupHTTPProfiler starts the profiler if it was enabled by the -prof flag.
func setupHTTPProfiler() {
	profilerAddr = fmt.Sprintf("localhost:%d", *flagProfiler)
	fmt.Printf("Starting profiler on %s/debug/pprof\n", profilerAddr)
	fmt.Printf("- You can access it with: $ go tool pprof %s/debug/pprof/heap\n", profilerAddr)
	fmt.Printf("- Program will be kept alive on end, you will have to interrupt it (Ctrl+C) to exit\n")
	go func() {
		klog.Fatal(http.ListenAndServe(profilerAddr, nil))
	}()
}

// httpProfilerOnQuit keeps the program alive until interrupted, so the profiles can still be read.
func httpProfilerOnQuit() {
	if globalCtx.Err() != nil {
		// Already interrupted.
		return
	}
	fmt.Printf("- Program finished: kept alive with profiler opened at %s/debug/pprof\n", profilerAddr)
	fmt.Printf("- Interrupt (Ctrl+C) to exit\n")
	<-globalCtx.Done()
	fmt.Printf("... exiting ...\n")
}
