package main

import (
	"github.com/shrilakshmikakati/certifiacte-manager-sub001/cmd/certmgr/cmd"
)

func main() {
	cmd.Execute()
}
