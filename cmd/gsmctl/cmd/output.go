package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/k0kubun/go-ansi"
	"github.com/manifoldco/promptui"
	"github.com/schollz/progressbar/v3"
)

var (
	yellow = color.New(color.FgHiYellow).SprintfFunc()
	red    = color.New(color.FgRed).SprintfFunc()
	green  = color.New(color.FgGreen).SprintfFunc()
	bold   = color.New(color.Bold).SprintfFunc()
)

func printField(name string, value string) {
	fmt.Printf("%-16s %s\n", bold(name+":"), value)
}

func newSpinner(text string) *progressbar.ProgressBar {
	return progressbar.NewOptions(
		-1,
		progressbar.OptionSetWriter(ansi.NewAnsiStdout()),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetDescription(text),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
	)
}

func yesNo(label string) bool {
	prompt := promptui.Select{
		Label:    label + " [Yes/No]",
		HideHelp: true,
		Items:    []string{"Yes", "No"},
	}
	_, result, err := prompt.Run()
	if err != nil {
		return false
	}
	return result == "Yes"
}
