package main

import "oikenops/flowmetrics/cmd"

func main() {
	cmd.Execute()
}
