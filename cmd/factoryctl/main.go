package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

// factoryctl 是工厂服务的命令行客户端
// 凭证通过 Basic Auth 传给服务端，能力校验由服务端的台账核心完成

var (
	flagAddr     string
	flagUser     string
	flagPassword string
)

func main() {
	root := &cobra.Command{
		Use:           "factoryctl",
		Short:         "Command line client for the bike factory server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flagAddr, "addr", "http://localhost:8080", "server base URL")
	root.PersistentFlags().StringVarP(&flagUser, "user", "u", "admin", "username")
	root.PersistentFlags().StringVarP(&flagPassword, "password", "p", "password", "password")

	root.AddCommand(
		restockCmd(),
		completeCmd(),
		assembleCmd(),
		orderCmd(),
		fulfillCmd(),
		snapshotCmd(),
		stateCmd(),
		reportCmd(),
		saveCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func restockCmd() *cobra.Command {
	var amount int
	cmd := &cobra.Command{
		Use:   "restock <part>",
		Short: "Add raw part stock",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return call("POST", "/api/parts/restock",
				map[string]interface{}{"part": args[0], "amount": amount})
		},
	}
	cmd.Flags().IntVarP(&amount, "amount", "n", 1, "amount to add")
	return cmd
}

func completeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "complete <station>",
		Short: "Record a station completion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return call("POST", "/api/stations/complete",
				map[string]interface{}{"station": args[0]})
		},
	}
}

func assembleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "assemble <model>",
		Short: "Assemble one bike from parts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return call("POST", "/api/bikes/assemble",
				map[string]interface{}{"model": args[0]})
		},
	}
}

func orderCmd() *cobra.Command {
	var customer, contact, address string
	cmd := &cobra.Command{
		Use:   "order <model>",
		Short: "Submit a customer order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return call("POST", "/api/orders", map[string]interface{}{
				"bike_model":       args[0],
				"customer_name":    customer,
				"contact_info":     contact,
				"delivery_address": address,
			})
		},
	}
	cmd.Flags().StringVar(&customer, "customer", "", "customer name")
	cmd.Flags().StringVar(&contact, "contact", "", "contact info")
	cmd.Flags().StringVar(&address, "address", "", "delivery address")
	return cmd
}

func fulfillCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fulfill <order-ref>",
		Short: "Fulfill a pending order from finished bike stock",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return call("POST", "/api/orders/fulfill",
				map[string]interface{}{"ref": args[0]})
		},
	}
}

func snapshotCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "snapshot",
		Short: "Print the full ledger snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return call("GET", "/api/snapshot", nil)
		},
	}
}

func stateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "state",
		Short: "Print the live factory state view",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return call("GET", "/api/state", nil)
		},
	}
}

func reportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Print the production and order summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return call("GET", "/api/report", nil)
		},
	}
}

func saveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "save",
		Short: "Write a full snapshot checkpoint on the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return call("POST", "/api/save", nil)
		},
	}
}

// call 向服务端发起一次请求并把响应打印到标准输出
func call(method, path string, payload interface{}) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, flagAddr+path, body)
	if err != nil {
		return err
	}
	req.SetBasicAuth(flagUser, flagPassword)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	// 美化输出，非 JSON 响应原样打印
	var pretty bytes.Buffer
	if json.Indent(&pretty, data, "", "  ") == nil {
		fmt.Println(pretty.String())
	} else {
		fmt.Print(string(data))
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("server returned %s", resp.Status)
	}
	return nil
}
