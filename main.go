// Copyright © 2025 The Wisp authors

package main

import "github.com/wisplang/wisp/cmd"

func main() {
	cmd.Execute()
}
