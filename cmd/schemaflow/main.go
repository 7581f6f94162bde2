package main

import "github.com/aqasim81/schemaflow/internal/cli"

func main() {
	cli.Execute()
}
