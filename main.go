package main

import (
	"github.com/chronolens/chronolens/cmd"
)

func main() {
	cmd.Execute()
}
