package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ftl/atmodem/serial"
)

func init() {
	rootCmd.AddCommand(portsCmd)
}

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "list the serial ports of this computer",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ports, err := serial.ListPorts()
		if err != nil {
			return err
		}
		if len(ports) == 0 {
			fmt.Println("no serial ports found")
			return nil
		}
		for _, port := range ports {
			if port.IsModem() {
				fmt.Println(green("%s", port))
				continue
			}
			fmt.Println(port)
		}
		return nil
	},
}
