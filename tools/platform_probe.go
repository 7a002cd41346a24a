package main

import (
	"chat-hub/contract"
	"chat-hub/internal"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
)

// platform_probe connects every platform configured in the environment,
// prints who the bot is on each one and exits without consuming events.
func main() {
	timeout := flag.Duration("timeout", 15*time.Second, "Deadline for identifying every platform")
	flag.Parse()

	_ = godotenv.Load()
	config, err := internal.LoadConfig()
	if err != nil {
		log.Fatal("Error while loading config: ", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	adapters, err := internal.BuildAdapters(ctx, logs.GetLoggerFromString(config.LogLevel), config)
	if err != nil {
		log.Fatal("Error while connecting platforms: ", err)
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Adapter", "Self ID", "Nickname", "Display"})
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	table.AppendBulk(lo.Map(adapters, func(a contract.Adapter, _ int) []string {
		self := a.SelfUser()
		return []string{a.Name(), self.ID, self.Nickname, self.DisplayName()}
	}))
	table.Render()

	fmt.Printf("\n%d platform(s) identified\n", len(adapters))
}
