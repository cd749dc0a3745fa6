package main

import (
	"github.com/Rfam/rfcloud/pkg/cli"
)

func main() {
	cli.Execute()
}
