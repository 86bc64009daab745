package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fxnlabs/hsa-runtime/internal/hsa"
	"github.com/fxnlabs/hsa-runtime/internal/session"
	"github.com/urfave/cli/v2"
)

func agentsCommand() *cli.Command {
	return &cli.Command{
		Name:  "agents",
		Usage: "List agents, their memory regions and the session queue",
		Action: func(c *cli.Context) error {
			return session.Run(configFrom(c), func(s *session.Session) error {
				return printAgents(c.App.Writer, s.Context())
			})
		},
	}
}

func printAgents(w io.Writer, ctx *hsa.Context) error {
	for agent, err := range ctx.Runtime.Agents() {
		if err != nil {
			return err
		}
		info, err := agent.Info()
		if err != nil {
			return err
		}
		marker := ""
		if agent == ctx.Agent {
			marker = " (selected)"
		}
		fmt.Fprintf(w, "%s %s [%s]%s\n", info.Vendor, info.Name, info.DeviceType, marker)
		fmt.Fprintf(w, "  kernel dispatch: %t\n", info.KernelDispatch)
		fmt.Fprintf(w, "  queue sizes:     %d..%d\n", info.QueueMinSize, info.QueueMaxSize)
		for _, region := range info.Regions {
			fmt.Fprintf(w, "  region %-8s %-24s %10s", region.Segment, flagNames(region), humanize.IBytes(region.Size))
			if region.AllocAllowed {
				fmt.Fprintf(w, "  max alloc %s", humanize.IBytes(region.AllocMaxSize))
			}
			fmt.Fprintln(w)
		}
	}

	q := ctx.Queue.Info()
	fmt.Fprintf(w, "queue %d: %s, %d slots, write %d, read %d, %.1f%% used\n",
		q.ID, q.Type, q.Size, q.WriteIndex, q.ReadIndex, q.Utilization*100)
	return nil
}

func flagNames(region hsa.RegionInfo) string {
	if region.Segment != hsa.SegmentGlobal {
		return "-"
	}
	return strings.ToLower(region.Flags.String())
}
