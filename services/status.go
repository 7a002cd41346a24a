package services

import (
	"chat-hub/contract"
	"chat-hub/observability"
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
)

// RenderStatus writes one row per adapter with its identity and counters.
func RenderStatus(w io.Writer, adapters []contract.Adapter, monitor *observability.Monitor) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Adapter", "Self", "Received", "Handled", "Failed", "Other", "Queue"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)

	rows := lo.Map(adapters, func(adapter contract.Adapter, _ int) []string {
		stats := monitor.Stats(adapter.Name())
		self := adapter.SelfUser()
		return []string{
			adapter.Name(),
			fmt.Sprintf("%s (%s)", self.DisplayName(), self.ID),
			strconv.FormatUint(stats.Received, 10),
			strconv.FormatUint(stats.Handled, 10),
			strconv.FormatUint(stats.Failed, 10),
			strconv.FormatUint(stats.Other, 10),
			fmt.Sprintf("%d/%d", stats.QueueLen, stats.QueueCap),
		}
	})
	table.AppendBulk(rows)
	table.Render()
}
