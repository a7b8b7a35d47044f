package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/nerrad567/tellhub/internal/device"
	"github.com/nerrad567/tellhub/internal/infrastructure/config"
	"github.com/nerrad567/tellhub/internal/infrastructure/logging"
)

// listDevices runs one listing through the registry and prints it.
func listDevices(ctx context.Context, configPath string, out io.Writer) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logCfg := cfg.Logging
	logCfg.Output = "stderr"
	registry := newRegistry(cfg, logging.New(logCfg, version))

	devices, err := registry.Refresh(ctx)
	if err != nil {
		return fmt.Errorf("listing devices: %w", err)
	}
	return printDevices(out, devices)
}

var (
	onColour  = color.New(color.FgGreen, color.Bold)
	offColour = color.New(color.FgHiBlack)
)

// printDevices writes a table with the status column last so colour codes
// do not disturb alignment.
func printDevices(out io.Writer, devices []device.Device) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tMODEL\tPROTOCOL\tSTATUS")
	for _, d := range devices {
		status := offColour.Sprint(d.StatusString())
		if d.Status {
			status = onColour.Sprint(d.StatusString())
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", d.ID, d.Name, dash(d.Model), dash(d.Protocol), status)
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("writing device table: %w", err)
	}
	if len(devices) == 0 {
		fmt.Fprintln(out, "no devices")
	}
	return nil
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
