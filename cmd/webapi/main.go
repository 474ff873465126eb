// Command webapi performs a single Steam Web API call and prints the result.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/pflag"
	"github.com/tidwall/gjson"

	"github.com/samvad-hq/steam-webapi/internal/config"
	"github.com/samvad-hq/steam-webapi/internal/logger"
	"github.com/samvad-hq/steam-webapi/pkg/httpclient"
	"github.com/samvad-hq/steam-webapi/pkg/webapi"
)

const usage = `usage: webapi [flags] <Interface> <Method> [name=value ...]
       webapi [flags] --interfaces

flags:
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	flags := pflag.NewFlagSet("webapi", pflag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.Usage = func() {
		fmt.Fprint(stderr, usage)
		flags.PrintDefaults()
	}
	flags.String("key", "", "Web API key (32 upper-case hex digits)")
	flags.String("host", "", "Web API host")
	flags.Int64("timeout", 0, "HTTP timeout in seconds")
	insecure := flags.Bool("insecure", false, "use http instead of https")
	format := flags.String("format", string(webapi.FormatJSON), "response format: json, vdf or xml")
	version := flags.Int("version", 1, "method version")
	data := flags.Bool("data", false, "check the result envelope and print the result object")
	listInterfaces := flags.Bool("interfaces", false, "list the supported interfaces and methods")

	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}

	cfg, err := config.Load(flags, config.FlagKeys{
		"key":     "api_key",
		"host":    "api_host",
		"timeout": "http_timeout_seconds",
	})
	if err != nil {
		fmt.Fprintf(stderr, "load config: %v\n", err)
		return 1
	}
	if *insecure {
		cfg.APISecure = false
	}

	log, err := logger.Init(cfg)
	if err != nil {
		fmt.Fprintf(stderr, "init logger: %v\n", err)
		return 1
	}
	defer logger.Close()

	client, err := webapi.New(webapi.Options{
		APIKey:    cfg.APIKey,
		Secure:    &cfg.APISecure,
		Host:      cfg.APIHost,
		Transport: httpclient.NewRestyClient(cfg.HTTPTimeout),
		Logger:    log,
	})
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	if err := execute(ctx, client, flags.Args(), request{
		format:     webapi.Format(strings.ToLower(*format)),
		version:    *version,
		data:       *data,
		interfaces: *listInterfaces,
	}, stdout); err != nil {
		if errors.Is(err, errUsage) {
			flags.Usage()
		}
		fmt.Fprintln(stderr, err)
		var httpErr *webapi.HTTPError
		if errors.As(err, &httpErr) && httpErr.Detail != "" {
			fmt.Fprintf(stderr, "server said: %s\n", httpErr.Detail)
		}
		return 1
	}
	return 0
}

var errUsage = errors.New("interface and method are required")

type request struct {
	format     webapi.Format
	version    int
	data       bool
	interfaces bool
}

func execute(ctx context.Context, client *webapi.Client, args []string, req request, out io.Writer) error {
	if req.interfaces {
		list, err := client.Interfaces(ctx)
		if err != nil {
			return err
		}
		printInterfaces(out, list)
		return nil
	}

	if len(args) < 2 {
		return errUsage
	}
	params, err := parseParams(args[2:])
	if err != nil {
		return err
	}

	if req.data {
		if req.format != webapi.FormatJSON {
			return fmt.Errorf("--data requires --format json")
		}
		result, err := client.GetJSONData(ctx, args[0], args[1], req.version, params)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, result.Raw)
		return nil
	}

	body, err := client.Load(ctx, req.format, args[0], args[1], req.version, params)
	if err != nil {
		return err
	}
	fmt.Fprint(out, body)
	if !strings.HasSuffix(body, "\n") {
		fmt.Fprintln(out)
	}
	return nil
}

// parseParams keeps the order the pairs were given in.
func parseParams(pairs []string) (*webapi.Params, error) {
	params := webapi.NewParams()
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid parameter %q (want name=value)", pair)
		}
		params.Set(name, value)
	}
	return params, nil
}

func printInterfaces(out io.Writer, list gjson.Result) {
	list.ForEach(func(_, iface gjson.Result) bool {
		fmt.Fprintln(out, iface.Get("name").String())
		iface.Get("methods").ForEach(func(_, m gjson.Result) bool {
			fmt.Fprintf(out, "  %s v%d\n", m.Get("name").String(), m.Get("version").Int())
			return true
		})
		return true
	})
}
