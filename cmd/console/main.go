// Command console runs the commands discovered in the process class map.
//
// Commands register their constructors with package classmap, typically
// from init functions; importing their packages into a build of this
// command makes them available:
//
//	import _ "example.com/app/commands"
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/roach88/consoleapp/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Execute(ctx, cli.Environment{Stdout: os.Stdout, Stderr: os.Stderr}, os.Args[1:])
	stop()
	os.Exit(code)
}
