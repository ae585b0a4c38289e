package main

import "github.com/rmirandamx/agentspend/cmd"

func main() {
	cmd.Execute()
}
