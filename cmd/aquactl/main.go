// Package main implements aquactl, a debug tool issuing world calls through
// the binding layer.
package main

import "github.com/aqua-stark/world-binding/cmd/aquactl/cmd"

func main() {
	cmd.Execute()
}
