package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/peterh/liner"

	"fabricmux/internal/client"
)

func main() {
	addr := flag.String("addr", "localhost:9090", "Address of a fabricd instance")
	timeout := flag.Duration("timeout", 5*time.Second, "Request timeout (e.g., 5s)")
	flag.Parse()

	log.SetFlags(log.LstdFlags | log.Lshortfile)

	api, conn, err := client.Connect(*addr)
	if err != nil {
		log.Fatalf("failed to connect to fabricd at %s: %v", *addr, err)
	}
	defer conn.Close()
	cli := client.New(api)

	currentAddr := *addr
	fmt.Printf("fabricmux interactive client. Connected to %s\n", currentAddr)
	fmt.Println("Available commands: select/release/list/get/use/exit")

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	for {
		input, err := line.Prompt(fmt.Sprintf("fabricmux[%s]> ", currentAddr))
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) {
				fmt.Println("Aborted")
				continue
			}
			break
		}
		line.AppendHistory(input)

		args := strings.Fields(strings.TrimSpace(input))
		if len(args) == 0 {
			continue
		}
		cmd := args[0]

		ctx, cancel := context.WithTimeout(context.Background(), *timeout)

		switch cmd {
		case "select":
			if len(args) < 4 {
				fmt.Println("Usage: select <matrix> <output> <source-uuid> [nocompanions]")
				cancel()
				continue
			}
			out, err := strconv.Atoi(args[2])
			if err != nil {
				fmt.Printf("invalid output index: %v\n", err)
				cancel()
				continue
			}
			noCompanions := len(args) > 4 && args[4] == "nocompanions"
			start := time.Now()
			err = cli.Select(ctx, args[1], out, args[3], noCompanions)
			if err != nil {
				fmt.Printf("Select failed: %v | latency=%s\n", err, time.Since(start))
			} else {
				fmt.Printf("Select succeeded | latency=%s\n", time.Since(start))
			}

		case "release":
			if len(args) < 3 {
				fmt.Println("Usage: release <matrix> <output>")
				cancel()
				continue
			}
			out, err := strconv.Atoi(args[2])
			if err != nil {
				fmt.Printf("invalid output index: %v\n", err)
				cancel()
				continue
			}
			start := time.Now()
			err = cli.Release(ctx, args[1], out)
			if err != nil {
				fmt.Printf("Release failed: %v | latency=%s\n", err, time.Since(start))
			} else {
				fmt.Printf("Release succeeded | latency=%s\n", time.Since(start))
			}

		case "list":
			if len(args) < 2 {
				fmt.Println("Usage: list <matrix>")
				cancel()
				continue
			}
			start := time.Now()
			sources, err := cli.AvailableSources(ctx, args[1])
			if err != nil {
				fmt.Printf("AvailableSources failed: %v | latency=%s\n", err, time.Since(start))
				cancel()
				continue
			}
			fmt.Printf("Available sources (count=%d) | latency=%s\n", len(sources), time.Since(start))
			for _, s := range sources {
				fmt.Printf("  - %s (%s)\n", s.Name, s.UUID)
			}

		case "get":
			if len(args) < 3 {
				fmt.Println("Usage: get <matrix> <output>")
				cancel()
				continue
			}
			out, err := strconv.Atoi(args[2])
			if err != nil {
				fmt.Printf("invalid output index: %v\n", err)
				cancel()
				continue
			}
			start := time.Now()
			reply, err := cli.GetOutput(ctx, args[1], out)
			if err != nil {
				fmt.Printf("GetOutput failed: %v | latency=%s\n", err, time.Since(start))
				cancel()
				continue
			}
			fmt.Printf("output=%d source=%q uuid=%s locked=%v | latency=%s\n",
				out, reply.Source.Name, reply.Source.UUID, reply.Locked, time.Since(start))

		case "use":
			if len(args) < 2 {
				fmt.Println("Usage: use <addr>")
				cancel()
				continue
			}
			newAddr := args[1]
			newAPI, newConn, err := client.Connect(newAddr)
			if err != nil {
				fmt.Printf("Failed to connect to %s: %v\n", newAddr, err)
				cancel()
				continue
			}
			conn.Close()
			api = newAPI
			conn = newConn
			cli = client.New(api)
			currentAddr = newAddr
			fmt.Printf("Switched connection to %s\n", currentAddr)

		case "exit", "quit":
			fmt.Println("Bye!")
			cancel()
			return

		default:
			fmt.Printf("Unknown command: %s\n", cmd)
		}

		cancel()
	}
}
