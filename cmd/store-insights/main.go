package main

import cmd "github.com/rohmanhakim/store-insights/internal/cli"

func main() {
	cmd.Execute()
}
