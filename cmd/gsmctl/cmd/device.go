package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(signalCmd)
	rootCmd.AddCommand(batteryCmd)
	rootCmd.AddCommand(clockCmd)
	clockCmd.AddCommand(clockGetCmd)
	clockCmd.AddCommand(clockSetCmd)
}

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "print the product identification of the modem",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		channel, modem, err := openModem(cmd)
		if err != nil {
			return err
		}
		defer channel.Close()

		info, err := modem.GetProductIdentificationInformation(ctx)
		if err != nil {
			return err
		}
		fmt.Println(info)
		return nil
	},
}

var signalCmd = &cobra.Command{
	Use:   "signal",
	Short: "print the signal strength",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		channel, modem, err := openModem(cmd)
		if err != nil {
			return err
		}
		defer channel.Close()

		signal, err := modem.GetSignalStrength(ctx)
		if err != nil {
			return err
		}
		switch {
		case !signal.Known():
			printField("signal", red("unknown"))
		case signal.DBM() < -100:
			printField("signal", yellow(signal.String()))
		default:
			printField("signal", green(signal.String()))
		}
		return nil
	},
}

var batteryCmd = &cobra.Command{
	Use:   "battery",
	Short: "print the battery status",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		channel, modem, err := openModem(cmd)
		if err != nil {
			return err
		}
		defer channel.Close()

		battery, err := modem.GetBatteryStatus(ctx)
		if err != nil {
			return err
		}
		printField("status", battery.Status.String())
		printField("charge level", fmt.Sprintf("%d%%", battery.ChargeLevel))
		return nil
	},
}

var clockCmd = &cobra.Command{
	Use:   "clock",
	Short: "read or set the real time clock of the modem",
}

var clockGetCmd = &cobra.Command{
	Use:   "get",
	Short: "print the time of the modem",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		channel, modem, err := openModem(cmd)
		if err != nil {
			return err
		}
		defer channel.Close()

		t, err := modem.GetDateTime(ctx)
		if err != nil {
			return err
		}
		printField("modem time", t.Format(time.RFC3339))
		printField("offset", time.Until(t).Round(time.Second).String())
		return nil
	},
}

var clockSetCmd = &cobra.Command{
	Use:   "set [RFC3339 time]",
	Short: "set the time of the modem, default is the local time of this computer",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t := time.Now()
		if len(args) == 1 {
			var err error
			t, err = time.Parse(time.RFC3339, args[0])
			if err != nil {
				return err
			}
		}

		ctx := cmd.Context()
		channel, modem, err := openModem(cmd)
		if err != nil {
			return err
		}
		defer channel.Close()

		if err := modem.SetDateTime(ctx, t); err != nil {
			return err
		}
		printField("modem time", green(t.Format(time.RFC3339)))
		return nil
	},
}
