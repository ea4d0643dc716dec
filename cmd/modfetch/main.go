package main

import (
	"modfetch/cmd/modfetch/cmd"
	"modfetch/lib/util/serviceutil"
)

func main() {
	cmd.Execute(serviceutil.SignalContext())
}
