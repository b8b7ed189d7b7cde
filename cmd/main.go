package main

import (
	"os"
	_ "time/tzdata"

	"studyguru-quiz-service/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
