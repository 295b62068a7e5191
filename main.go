package main

import "github.com/Taichi-iskw/pod-digest/cmd"

func main() {
	cmd.Execute()
}
