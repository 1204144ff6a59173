package main

import "github.com/tranvd/attendance-kiosk/cmd"

func main() {
	cmd.Execute()
}
