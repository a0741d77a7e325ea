package main

import (
	"os"

	"creditrisk/internal/testctl"
)

func main() { os.Exit(testctl.Main()) }
