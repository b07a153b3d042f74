package main

import (
	"github.com/joho/godotenv"
	"github.com/kaiyuhsu/cipherlift/cmd"
)

func main() {
	// Load GITHUB_TOKEN and friends from a local .env file when present
	_ = godotenv.Load()

	cmd.Execute()
}
