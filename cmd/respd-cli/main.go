// Command respd-cli is a line-oriented RESP client for manually poking
// at a running respd server: each input line is split into words,
// sent as a RESP command array, and the reply is printed.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"respd"
	"respd/internal/boot"
	"respd/pkg/logger"
	"respd/resp"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:6379", "server address to connect to")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := &cliHook{replies: make(chan resp.Frame, 1), closed: make(chan struct{})}

	conn, err := respd.Dial(ctx, ch, *addr, respd.WithLogger(logger.Silent()))
	if err != nil {
		fmt.Fprintln(os.Stderr, "respd-cli: "+err.Error())
		os.Exit(1)
	}
	defer conn.Close()

	fmt.Printf("connected to %s\n", *addr)

	scanner := bufio.NewScanner(os.Stdin)
	fmt.Print("> ")
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			fmt.Print("> ")
			continue
		}

		words := strings.Fields(line)
		array := make(resp.Array, 0, len(words))
		for _, w := range words {
			array = append(array, resp.BulkString(w))
		}

		if err := conn.Send(array); err != nil {
			fmt.Fprintln(os.Stderr, "send error: "+err.Error())
			break
		}

		select {
		case reply := <-ch.replies:
			fmt.Println(formatFrame(reply))
		case <-ch.closed:
			fmt.Fprintln(os.Stderr, "connection closed")
			fmt.Print("> ")
			return
		}
		fmt.Print("> ")
	}
}

// cliHook bridges the connection engine's async OnMessage/OnClose
// callbacks back to the synchronous read-eval-print loop above.
type cliHook struct {
	respd.ConnEvent
	replies chan resp.Frame
	closed  chan struct{}
}

func (h *cliHook) OnMessage(c boot.Conn, msg any) {
	if frame, ok := msg.(resp.Frame); ok {
		h.replies <- frame
	}
}

func (h *cliHook) OnClose(c boot.Conn) {
	close(h.closed)
}

func formatFrame(f resp.Frame) string {
	switch v := f.(type) {
	case resp.SimpleString:
		return string(v)
	case resp.SimpleError:
		return "(error) " + string(v)
	case resp.Integer:
		return fmt.Sprintf("(integer) %d", v)
	case resp.BulkString:
		return fmt.Sprintf("%q", string(v))
	case resp.NullBulkString, resp.NullArray, resp.Null:
		return "(nil)"
	case resp.Boolean:
		if v {
			return "(true)"
		}
		return "(false)"
	case resp.Double:
		return fmt.Sprintf("(double) %v", float64(v))
	case resp.Array:
		if len(v) == 0 {
			return "(empty array)"
		}
		lines := make([]string, len(v))
		for i, elem := range v {
			lines[i] = fmt.Sprintf("%d) %s", i+1, formatFrame(elem))
		}
		return strings.Join(lines, "\n")
	case resp.Set:
		lines := make([]string, len(v))
		for i, elem := range v {
			lines[i] = fmt.Sprintf("%d) %s", i+1, formatFrame(elem))
		}
		return strings.Join(lines, "\n")
	default:
		return fmt.Sprintf("%v", f)
	}
}
