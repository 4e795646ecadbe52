package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frankli0324/go-fetch/internal/fetch"
	"github.com/frankli0324/go-fetch/internal/http"
	"github.com/spf13/cobra"
)

var (
	getHeaders []string
	getMethod  string
	getTimeout time.Duration
	getInclude bool
	getOutput  string
)

var getCmd = &cobra.Command{
	Use:   "get URL",
	Short: "Fetch a URL and print the body",
	Long: `Fetch a single URL. the body is streamed to stdout (or --output) as it
arrives; with --include the status line and headers are printed first and
the body is buffered until the fetch completes.

Example:
  gofetch get http://example.com/
  gofetch get -H 'Accept: application/json' -o out.json http://api.test/v1`,
	Args: cobra.ExactArgs(1),
	RunE: runGet,
}

func init() {
	getCmd.Flags().StringArrayVarP(&getHeaders, "header", "H", nil, "Extra request header, repeatable")
	getCmd.Flags().StringVarP(&getMethod, "request", "X", "GET", "Request method")
	getCmd.Flags().DurationVar(&getTimeout, "timeout", 0, "Fetch timeout (default fetcher.timeout)")
	getCmd.Flags().BoolVarP(&getInclude, "include", "i", false, "Print status line and headers")
	getCmd.Flags().StringVarP(&getOutput, "output", "o", "", "Write the body to a file instead of stdout")
	rootCmd.AddCommand(getCmd)
}

func runGet(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	header, err := parseHeaders(getHeaders)
	if err != nil {
		return err
	}

	out := io.Writer(os.Stdout)
	if getOutput != "" {
		f, err := os.Create(getOutput)
		if err != nil {
			return fmt.Errorf("failed to create output: %w", err)
		}
		defer f.Close()
		out = f
	}

	c := newClient(cfg, log, nil)
	defer c.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	req := &http.Request{Method: getMethod, URL: args[0], Header: header}

	if getInclude {
		if getTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, getTimeout)
			defer cancel()
		}
		resp, body, err := c.CtxDo(ctx, req)
		if resp != nil && resp.Status.Code != 0 {
			writeHead(out, resp)
		}
		out.Write(body)
		return err
	}

	// the sink runs on the loop goroutine, it may block on out
	var result error
	h, err := c.Submit(req, fetch.SinkFuncs{
		OnWrite: func(p []byte) error {
			_, err := out.Write(p)
			return err
		},
		OnDone: func(_ *http.Response, err error) { result = err },
	}, getTimeout)
	if err != nil {
		return err
	}
	select {
	case <-h.Done():
	case <-ctx.Done():
		h.Cancel()
		<-h.Done()
	}
	return result
}

func writeHead(w io.Writer, resp *http.Response) {
	fmt.Fprintf(w, "%s\r\n", resp.Status)
	for _, f := range resp.Header {
		fmt.Fprintf(w, "%s: %s\r\n", f.Name, f.Value)
	}
	fmt.Fprint(w, "\r\n")
}
