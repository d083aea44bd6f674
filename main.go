// SPDX-License-Identifier: MIT
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"eeg/cmd"
	applog "eeg/internal/log"
	"eeg/pkg/build"
)

// main runs one CLI command to completion. An interrupt cancels the
// command's context; sniffing, analysis and ingestion stop at their next
// checkpoint and stores are closed on the way out.
func main() {
	if err := build.Initialize(); err != nil {
		applog.Debugf("build: %v, using development build info", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cmd.Execute(ctx, os.Args[1:], os.Stdout)
	stop()

	_ = applog.Sync()
	if err != nil {
		applog.Fatalf("%v", err)
	}
}
