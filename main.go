package main

import "github.com/maxvaer/dirscout/cmd"

func main() {
	cmd.Execute()
}
