package cmd

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ftl/atmodem/at"
	"github.com/ftl/atmodem/gsm"
)

const (
	flagAnswer  = "answer"
	flagNewSms  = "indicate-sms"
	flagShowSms = "show-sms"
)

func init() {
	rootCmd.AddCommand(monitorCmd)

	monitorCmd.Flags().Bool(flagAnswer, false, "answer incoming calls")
	monitorCmd.Flags().Bool(flagNewSms, true, "enable the indication of new SMS")
	monitorCmd.Flags().Bool(flagShowSms, true, "read and print new SMS when they are indicated")
}

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "print unsolicited notifications of the modem until interrupted",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		answer, err := cmd.Flags().GetBool(flagAnswer)
		if err != nil {
			return err
		}
		indicateSms, err := cmd.Flags().GetBool(flagNewSms)
		if err != nil {
			return err
		}
		showSms, err := cmd.Flags().GetBool(flagShowSms)
		if err != nil {
			return err
		}

		channel, modem, err := openModem(cmd)
		if err != nil {
			return err
		}
		defer channel.Close()

		errg, ctx := errgroup.WithContext(cmd.Context())

		if indicateSms {
			if err := modem.SetSmsMessageFormat(ctx, gsm.TextMode); err != nil {
				return err
			}
			if err := modem.SetNewSmsIndication(ctx, 2, 1, 0, 0, 0); err != nil {
				return err
			}
		}

		notifier := gsm.NewNotifier().
			WithIncomingCallCallback(func(gsm.IncomingCall) {
				printEvent(green("incoming call"))
				if !answer {
					return
				}
				if err := modem.AnswerIncomingCall(ctx); err != nil {
					log.Printf("cannot answer the call: %v", err)
				}
			}).
			WithMissedCallCallback(func(e gsm.MissedCall) {
				printEvent(yellow("missed call from %s at %s", e.Number, e.Time))
			}).
			WithSmsReceivedCallback(func(e gsm.SmsReceived) {
				printEvent(green("new SMS in %s at index %d", e.Storage, e.Index))
				if !showSms {
					return
				}
				message, err := modem.ReadSms(ctx, e.Index, false)
				if err != nil {
					log.Printf("cannot read the SMS: %v", err)
					return
				}
				printSms(e.Index, message)
			}).
			WithSmsStatusReportReceivedCallback(func(e gsm.SmsStatusReportReceived) {
				printEvent(green("status report in %s at index %d", e.Storage, e.Index))
			}).
			WithSmsDeliveredCallback(func(e gsm.SmsDelivered) {
				printEvent(green("SMS from %s", e.Sender))
				fmt.Println(e.Body)
			}).
			WithUnknownEventCallback(func(u at.Unsolicited) {
				printEvent(strings.Join(u.Lines(), " | "))
			})
		unsubscribe := channel.OnUnsolicited(notifier.Handle)
		defer unsubscribe()

		errg.Go(func() error {
			select {
			case <-ctx.Done():
				return nil
			case <-channel.Done():
				if channel.Err() != nil {
					return fmt.Errorf("modem disconnected: %w", channel.Err())
				}
				return fmt.Errorf("modem disconnected")
			}
		})
		errg.Go(func() error {
			ticker := time.NewTicker(time.Minute)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return nil
				case <-ticker.C:
					signal, err := modem.GetSignalStrength(ctx)
					if err != nil {
						log.Printf("cannot read the signal strength: %v", err)
						continue
					}
					printEvent(fmt.Sprintf("signal %s", signal))
				}
			}
		})

		log.Print("monitoring, press Ctrl-C to stop")
		return errg.Wait()
	},
}

func printEvent(text string) {
	fmt.Printf("%s %s\n", bold(time.Now().Format("15:04:05")), text)
}
