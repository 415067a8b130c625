package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kernelapp/kernel/internal/pid"
)

var pidCmd = &cobra.Command{
	Use:   "pid",
	Short: "Generate a v3 PID",
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := pid.New()
		if err != nil {
			return err
		}
		fmt.Println(id)
		return nil
	},
}
