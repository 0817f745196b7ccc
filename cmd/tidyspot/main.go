package main

import (
	"os"

	"tidyspot/spotservice"
)

func main() {
	if err := spotservice.Run(); err != nil {
		os.Exit(1)
	}
}
