package main

import "github.com/kizza7984/bvf-encode/cmd"

func main() {
	cmd.Execute()
}
