package main

import (
	"context"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/sonnes/dakiya/core"
	"github.com/urfave/cli/v3"
)

func channelsCmd() *cli.Command {
	return &cli.Command{
		Name:  "channels",
		Usage: "List channels with message counts",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "names", Usage: "Print names only, one per line"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			names := cmd.Bool("names")
			resp, err := newClient(cmd).Channels(ctx, !names)
			if err != nil {
				return err
			}

			w := stdout(cmd)
			if names {
				for _, ch := range resp.Channels {
					io.WriteString(w, ch+"\n")
				}
				return nil
			}
			writeChannelTable(w, resp.Channels, resp.Stats)
			return nil
		},
	}
}

func writeChannelTable(w io.Writer, channels []string, stats []core.ChannelStats) {
	byName := make(map[string]core.ChannelStats, len(stats))
	for _, s := range stats {
		byName[s.Channel] = s
	}

	table := newTable(w, []string{"Channel", "Messages", "Latest ID", "Latest"})
	for _, ch := range channels {
		s, ok := byName[ch]
		if !ok {
			table.Append([]string{ch, "0", "-", "-"})
			continue
		}
		table.Append([]string{
			ch,
			strconv.Itoa(s.Count),
			strconv.FormatInt(s.LatestID, 10),
			core.RelativeTime(s.LatestAt),
		})
	}
	table.Render()
}

func newTable(w io.Writer, header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	table.SetNoWhiteSpace(true)
	return table
}
