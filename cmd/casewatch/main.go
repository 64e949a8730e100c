package main

import (
	"context"

	"casewatch/cmd/casewatch/commands"
	"casewatch/lib/osutil"
)

func main() {
	ctx, stop := osutil.SignalContext(context.Background())
	defer stop()
	commands.ExecuteContext(ctx)
}
