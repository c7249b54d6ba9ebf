package main

import (
	"context"
	"os"

	"github.com/dmitrijs2005/garagekeeper/internal/ctl"
)

func main() {
	os.Exit(ctl.Execute(context.Background(), ctl.DefaultEnv(), os.Args[1:]))
}
