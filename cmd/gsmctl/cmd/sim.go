package cmd

import (
	"fmt"
	"os"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/ftl/atmodem/gsm"
)

func init() {
	rootCmd.AddCommand(simCmd)
	rootCmd.AddCommand(pinCmd)
}

var simCmd = &cobra.Command{
	Use:   "sim",
	Short: "print the status of the SIM card",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		channel, modem, err := openModem(cmd)
		if err != nil {
			return err
		}
		defer channel.Close()

		status, err := modem.GetSimStatus(ctx)
		if err != nil {
			return err
		}
		switch status {
		case gsm.SimReady:
			printField("SIM", green(status.String()))
		case gsm.SimPIN, gsm.SimNetworkPersonalization:
			printField("SIM", yellow(status.String()))
		default:
			printField("SIM", red(status.String()))
		}
		return nil
	},
}

var pinCmd = &cobra.Command{
	Use:   "pin [PIN]",
	Short: "unlock the SIM card",
	Long:  `Unlock the SIM card with the given PIN. Without argument, the PIN is taken from ` + envPIN + ` or asked for.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		channel, modem, err := openModem(cmd)
		if err != nil {
			return err
		}
		defer channel.Close()

		status, err := modem.GetSimStatus(ctx)
		if err != nil {
			return err
		}
		switch status {
		case gsm.SimReady:
			printField("SIM", green("already unlocked"))
			return nil
		case gsm.SimPIN:
		default:
			return fmt.Errorf("SIM cannot be unlocked with a PIN: %s", status)
		}

		pin, err := readPIN(args)
		if err != nil {
			return err
		}
		if err := modem.EnterSimPin(ctx, pin); err != nil {
			return err
		}
		if err := modem.WaitForSIMReady(ctx); err != nil {
			return err
		}
		printField("SIM", green(gsm.SimReady.String()))
		return nil
	},
}

func readPIN(args []string) (gsm.PIN, error) {
	if len(args) == 1 {
		return gsm.PIN(args[0]), nil
	}
	if pin, ok := os.LookupEnv(envPIN); ok {
		return gsm.PIN(pin), nil
	}

	prompt := promptui.Prompt{
		Label: "PIN",
		Mask:  '*',
		Validate: func(s string) error {
			return gsm.PIN(s).Validate()
		},
	}
	pin, err := prompt.Run()
	if err != nil {
		return "", err
	}
	return gsm.PIN(pin), nil
}
