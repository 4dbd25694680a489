package main

import (
	"context"
	"fmt"
)

func (cli *commandLine) link(schoolID string) error {
	n, err := cli.usrSvc.LinkPending(context.Background(), schoolID)
	if err != nil {
		return err
	}
	fmt.Printf("linked %d advisors\n", n)
	return nil
}
