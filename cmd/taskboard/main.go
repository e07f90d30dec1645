package main

import (
	"errors"
	"fmt"
	"os"
)

var Version = "dev"

func main() {
	rt := &runtime{}
	err := newRootCmd(rt).Execute()
	err = errors.Join(err, rt.shutdown())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
