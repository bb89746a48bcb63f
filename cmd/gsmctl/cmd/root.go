package cmd

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/ftl/atmodem/com"
	"github.com/ftl/atmodem/gsm"
	"github.com/ftl/atmodem/serial"
)

var rootCmd = &cobra.Command{
	Use:          "gsmctl",
	Short:        "Control a cellular modem with AT commands",
	Long:         `gsmctl talks to a GSM/LTE modem over its serial AT command interface: query the device, handle the SIM, send and receive SMS, and watch unsolicited notifications.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

const (
	flagPort     = "port"
	flagBaudrate = "baudrate"
	flagTrace    = "trace"
	flagTimeout  = "timeout"
	flagCharset  = "charset"

	envPort     = "GSMCTL_PORT"
	envBaudrate = "GSMCTL_BAUDRATE"
	envPIN      = "GSMCTL_PIN"
)

func init() {
	log.SetFlags(log.Lshortfile | log.LstdFlags)

	pf := rootCmd.PersistentFlags()
	pf.StringP(flagPort, "p", os.Getenv(envPort), "serial port of the modem, empty = autodetect")
	pf.UintP(flagBaudrate, "b", defaultBaudrate(), "baudrate")
	pf.BoolP(flagTrace, "t", false, "trace the AT communication to stderr")
	pf.Duration(flagTimeout, gsm.DefaultTimeouts().Default, "default timeout for AT commands")
	pf.String(flagCharset, "", "TE character set (e.g. IRA, UCS2, 8859-1), empty = leave unchanged")
}

func defaultBaudrate() uint {
	result := serial.DefaultConfig().BaudRate
	value, ok := os.LookupEnv(envBaudrate)
	if !ok {
		return result
	}
	baudrate, err := strconv.ParseUint(value, 10, 32)
	if err != nil {
		log.Printf("invalid %s %q, using %d", envBaudrate, value, result)
		return result
	}
	return uint(baudrate)
}

// openModem opens the AT command channel on the configured serial port and brings the modem into
// a defined state.
func openModem(cmd *cobra.Command) (*com.COM, *gsm.Modem, error) {
	ctx := cmd.Context()
	pf := cmd.Flags()
	config := serial.DefaultConfig()

	var err error
	config.PortName, err = pf.GetString(flagPort)
	if err != nil {
		return nil, nil, err
	}
	config.BaudRate, err = pf.GetUint(flagBaudrate)
	if err != nil {
		return nil, nil, err
	}
	trace, err := pf.GetBool(flagTrace)
	if err != nil {
		return nil, nil, err
	}
	timeout, err := pf.GetDuration(flagTimeout)
	if err != nil {
		return nil, nil, err
	}
	charset, err := pf.GetString(flagCharset)
	if err != nil {
		return nil, nil, err
	}

	if config.PortName == "" {
		config.PortName, err = serial.FindModemPortName()
		if err != nil {
			return nil, nil, fmt.Errorf("cannot find a modem, use --%s: %w", flagPort, err)
		}
		log.Printf("using modem at %s", config.PortName)
	}

	var tracer io.Writer
	if trace {
		tracer = os.Stderr
	}
	channel, err := serial.Open(config, com.WithTrace(tracer), com.WithDefaultTimeout(timeout))
	if err != nil {
		return nil, nil, err
	}

	timeouts := gsm.DefaultTimeouts()
	timeouts.Default = timeout
	modem := gsm.New(channel, gsm.WithTimeouts(timeouts), gsm.WithRetryAttempts(5, 200*time.Millisecond))

	if err := modem.Sync(ctx); err != nil {
		channel.Close()
		return nil, nil, fmt.Errorf("modem does not respond: %w", err)
	}
	if err := modem.DisableEcho(ctx); err != nil {
		channel.Close()
		return nil, nil, err
	}
	if charset != "" {
		if err := modem.SetCharacterSet(ctx, charset); err != nil {
			channel.Close()
			return nil, nil, err
		}
	}

	return channel, modem, nil
}
