package main

import "identity-reconciler/cmd"

func main() {
	cmd.Execute()
}
