package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/iwvelando/temple-portal/internal/auth"
	"github.com/iwvelando/temple-portal/pkg/constants"
	"github.com/iwvelando/temple-portal/pkg/output"
	"github.com/iwvelando/temple-portal/pkg/validation"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var tamilDateCmd = &cobra.Command{
	Use:   "tamil-date <YYYY-MM-DD>...",
	Short: "Resolve Gregorian dates to Tamil month dates",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runTamilDate,
}

var transitionsCmd = &cobra.Command{
	Use:   "transitions <year>",
	Short: "List the Tamil month start dates of a Gregorian year",
	Args:  cobra.ExactArgs(1),
	RunE:  runTransitions,
}

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password",
	Short: "Read a password from stdin and print its bcrypt hash for admin.passwordHash",
	Args:  cobra.NoArgs,
	RunE:  runHashPassword,
}

func runTamilDate(cmd *cobra.Command, args []string) error {
	format, err := validation.OutputFormat(outputFormatFlag)
	if err != nil {
		return err
	}
	conf, err := loadSiteConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := initializeLogger(conf.Logging, logLevel)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	calendar, err := conf.BuildCalendar()
	if err != nil {
		return err
	}

	var failed int
	for _, date := range args {
		result, err := calendar.ResolveString(date)
		if err != nil {
			failed++
			logger.Error("failed to resolve Tamil date",
				zap.String("op", "main.tamilDate"),
				zap.String("date", date),
				zap.Error(err),
			)
			continue
		}
		output.ResultFormat(cmd.OutOrStdout(), format, date, result)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d dates could not be resolved", failed, len(args))
	}
	return nil
}

func runTransitions(cmd *cobra.Command, args []string) error {
	format, year, err := validation.TransitionsArgs(outputFormatFlag, args[0])
	if err != nil {
		return err
	}
	conf, err := loadSiteConfig(cmd)
	if err != nil {
		return err
	}
	calendar, err := conf.BuildCalendar()
	if err != nil {
		return err
	}

	transitions := calendar.Transitions(year)
	if format == constants.OutputFormatCSV {
		output.CsvFormat(cmd.OutOrStdout(), year, transitions)
		return nil
	}
	output.PrettyFormat(cmd.OutOrStdout(), year, transitions)
	output.CalibrationNote(cmd.OutOrStdout(), year, calendar.OverriddenYears())
	return nil
}

func runHashPassword(cmd *cobra.Command, _ []string) error {
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return fmt.Errorf("failed to read password from stdin: %w", err)
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return fmt.Errorf("password must not be empty")
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), hash)
	return err
}
