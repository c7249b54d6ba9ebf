package main

import (
	"context"
	"os"

	"github.com/dmitrijs2005/garagekeeper/internal/server"
)

func main() {
	os.Exit(server.Main(context.Background(), os.Args[1:]))
}
