package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ftl/atmodem/gsm"
)

const (
	flagMarkAsRead = "mark-as-read"
	flagYes        = "yes"
	flagAll        = "all"
)

func init() {
	rootCmd.AddCommand(smsCmd)
	rootCmd.AddCommand(storageCmd)
	smsCmd.AddCommand(smsSendCmd)
	smsCmd.AddCommand(smsListCmd)
	smsCmd.AddCommand(smsReadCmd)
	smsCmd.AddCommand(smsDeleteCmd)

	smsCmd.PersistentFlags().Bool(flagMarkAsRead, false, "mark the read messages as read")
	smsDeleteCmd.Flags().BoolP(flagYes, "y", false, "do not ask for confirmation")
	smsDeleteCmd.Flags().Bool(flagAll, false, "delete all messages, including the unread ones")
}

var smsCmd = &cobra.Command{
	Use:   "sms",
	Short: "send and receive SMS in text mode",
}

var smsSendCmd = &cobra.Command{
	Use:   "send <number> <text>",
	Short: "send an SMS",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		number := gsm.PhoneNumber(args[0])
		if err := number.Validate(); err != nil {
			return err
		}
		text := strings.Join(args[1:], " ")

		ctx := cmd.Context()
		channel, modem, err := openModem(cmd)
		if err != nil {
			return err
		}
		defer channel.Close()

		if err := modem.SetSmsMessageFormat(ctx, gsm.TextMode); err != nil {
			return err
		}

		spinner := newSpinner("sending to " + string(number))
		sendCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		var reference gsm.SmsReference
		errg, errgCtx := errgroup.WithContext(sendCtx)
		errg.Go(func() error {
			defer cancel()
			var err error
			reference, err = modem.SendSms(errgCtx, number, text)
			return err
		})
		errg.Go(func() error {
			ticker := time.NewTicker(100 * time.Millisecond)
			defer ticker.Stop()
			for {
				select {
				case <-errgCtx.Done():
					return spinner.Finish()
				case <-ticker.C:
					spinner.Add(1)
				}
			}
		})
		if err := errg.Wait(); err != nil {
			return err
		}

		printField("sent", green("message reference %d", reference.MessageReference))
		return nil
	},
}

var smsListCmd = &cobra.Command{
	Use:   "list [status]",
	Short: "list the stored messages",
	Long:  `List the stored messages with the given status: "REC UNREAD", "REC READ", "STO UNSENT", "STO SENT", or "ALL" (default).`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		status := gsm.AllSms
		if len(args) == 1 {
			var err error
			status, err = gsm.SmsStatusByName(args[0])
			if err != nil {
				return err
			}
		}
		markAsRead, err := cmd.Flags().GetBool(flagMarkAsRead)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		channel, modem, err := openModem(cmd)
		if err != nil {
			return err
		}
		defer channel.Close()

		if err := modem.SetSmsMessageFormat(ctx, gsm.TextMode); err != nil {
			return err
		}
		messages, err := modem.ListSms(ctx, status, markAsRead)
		if err != nil {
			return err
		}
		for _, message := range messages {
			printSms(message.Index, message.Sms)
		}
		if len(messages) == 0 {
			fmt.Println("no messages")
		}
		return nil
	},
}

var smsReadCmd = &cobra.Command{
	Use:   "read <index>",
	Short: "read the message at the given index",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		index, err := strconv.Atoi(args[0])
		if err != nil {
			return err
		}
		markAsRead, err := cmd.Flags().GetBool(flagMarkAsRead)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		channel, modem, err := openModem(cmd)
		if err != nil {
			return err
		}
		defer channel.Close()

		if err := modem.SetSmsMessageFormat(ctx, gsm.TextMode); err != nil {
			return err
		}
		message, err := modem.ReadSms(ctx, index, markAsRead)
		if err != nil {
			return err
		}
		printSms(index, message)
		return nil
	},
}

var smsDeleteCmd = &cobra.Command{
	Use:   "delete <index>",
	Short: "delete the message at the given index",
	Args:  cobra.RangeArgs(0, 1),
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, err := cmd.Flags().GetBool(flagYes)
		if err != nil {
			return err
		}
		all, err := cmd.Flags().GetBool(flagAll)
		if err != nil {
			return err
		}

		var index int
		var flag *gsm.SmsDeleteFlag
		switch {
		case all:
			deleteAll := gsm.DeleteAll
			flag = &deleteAll
			index = 1
		case len(args) == 1:
			index, err = strconv.Atoi(args[0])
			if err != nil {
				return err
			}
		default:
			return fmt.Errorf("either an index or --%s is required", flagAll)
		}

		if !yes {
			label := fmt.Sprintf("delete message %d?", index)
			if all {
				label = "delete all messages?"
			}
			if !yesNo(label) {
				return nil
			}
		}

		ctx := cmd.Context()
		channel, modem, err := openModem(cmd)
		if err != nil {
			return err
		}
		defer channel.Close()

		if err := modem.DeleteSms(ctx, index, flag); err != nil {
			return err
		}
		printField("deleted", green("ok"))
		return nil
	},
}

var storageCmd = &cobra.Command{
	Use:   "storage [mem1 [mem2 [mem3]]]",
	Short: "print or select the preferred message storages (ME, MT, SM, SR)",
	Args:  cobra.MaximumNArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		channel, modem, err := openModem(cmd)
		if err != nil {
			return err
		}
		defer channel.Close()

		var statuses []gsm.MessageStorageStatus
		if len(args) == 0 {
			statuses, err = modem.GetPreferredMessageStorage(ctx)
		} else {
			storages := make([]gsm.Storage, len(args))
			for i, arg := range args {
				storages[i] = gsm.Storage(strings.ToUpper(arg))
			}
			statuses, err = modem.SetPreferredMessageStorage(ctx, storages...)
		}
		if err != nil {
			return err
		}
		for i, status := range statuses {
			printField(fmt.Sprintf("mem%d", i+1), status.String())
		}

		supported, err := modem.TestDeleteSms(ctx)
		if err != nil {
			return err
		}
		printField("used indexes", fmt.Sprint(supported.Indexes))
		return nil
	},
}

func printSms(index int, message gsm.Sms) {
	fmt.Printf("%s %s %s %s\n", bold(fmt.Sprintf("[%d]", index)), yellow(string(message.Sender)), message.Received.Format(time.RFC3339), message.Status)
	fmt.Println(message.Message)
	fmt.Println()
}
