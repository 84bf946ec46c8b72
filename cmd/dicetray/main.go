// Command dicetray rolls dice specifiers and serves the Telnet dice tray.
package main

import "github.com/cory-johannsen/dicetray/internal/cli"

func main() {
	cli.Execute()
}
