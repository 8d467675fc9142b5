package main

import (
	"os"

	"github.com/yanun0323/logs"

	"github.com/smeysmey1509/rest-api-node-sub000/internal/cli"
)

var version = "dev"

func main() {
	if err := cli.NewRootCommand(version).Execute(); err != nil {
		logs.Errorf("shopd: %+v", err)
		os.Exit(1)
	}
}
