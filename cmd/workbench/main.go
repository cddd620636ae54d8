package main

import "github.com/chriscorrea/workbench/internal/cmd"

func main() {
	cmd.Execute()
}
