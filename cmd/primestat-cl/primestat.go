package main

import (
	"github.com/primestat/primestat/cmd"
)

func main() {
	cmd.Execute()
}
