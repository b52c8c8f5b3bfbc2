// Command dirsearch performs a directory search and prints matching entries,
// one distinguished name per line (or full entries with --attrs).
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	directory "github.com/isometry/go-directory"
)

type options struct {
	URLs     []string `short:"H" long:"url" env:"DIRSEARCH_URL" env-delim:"," description:"Directory server URL (ldap:// or ldaps://)" required:"true"`
	BindDN   string   `short:"D" long:"bind-dn" env:"DIRSEARCH_BIND_DN" description:"DN to bind as; omit for anonymous access"`
	Password string   `short:"w" long:"password" env:"DIRSEARCH_PASSWORD" description:"Bind password"`

	BaseDN     string   `short:"b" long:"base" env:"DIRSEARCH_BASE_DN" description:"Search base DN" required:"true"`
	Scope      string   `short:"s" long:"scope" default:"sub" choice:"base" choice:"one" choice:"sub" description:"Search scope"`
	Filter     string   `short:"f" long:"filter" default:"(objectClass=*)" description:"Search filter"`
	Attributes []string `short:"a" long:"attr" description:"Attribute to request (repeatable); omit for all"`
	PageSize   int      `long:"page-size" default:"500" description:"Page size for paged subtree searches; 0 disables paging"`

	Insecure bool          `long:"insecure" description:"Skip TLS entirely (not recommended)"`
	Timeout  time.Duration `long:"timeout" default:"30s" description:"Network timeout per operation"`
	Verbose  bool          `short:"v" long:"verbose" description:"Enable debug logging"`
}

func main() {
	if err := run(); err != nil {
		if flags.WroteHelp(err) {
			return
		}
		fmt.Fprintln(os.Stderr, "dirsearch:", err)
		os.Exit(1)
	}
}

func run() error {
	// A .env alongside the binary can stand in for flags.
	_ = godotenv.Load()

	var opts options
	if _, err := flags.Parse(&opts); err != nil {
		return err
	}

	level := zerolog.InfoLevel
	if opts.Verbose {
		level = zerolog.DebugLevel
	}
	zl := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}).
		Level(level).
		With().Timestamp().Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := directory.DefaultConfig()
	cfg.URLs = opts.URLs
	cfg.BindDN = opts.BindDN
	cfg.BindPassword = opts.Password
	cfg.SkipTLS = opts.Insecure
	cfg.Timeout = opts.Timeout
	cfg.Logger = directory.NewZerologLogger(zl)

	client, err := directory.NewClient(cfg)
	if err != nil {
		return err
	}
	defer client.Close()

	scope, err := parseScope(opts.Scope)
	if err != nil {
		return err
	}

	set, err := client.Search(ctx, &directory.SearchRequest{
		BaseDN:     opts.BaseDN,
		Scope:      scope,
		Filter:     opts.Filter,
		Attributes: opts.Attributes,
		PageSize:   opts.PageSize,
	})
	if err != nil {
		return err
	}

	cur := directory.NewCursor(set)
	defer cur.Close()

	count := 0
	for dn, entry := range cur.All() {
		count++
		if len(opts.Attributes) == 0 {
			fmt.Println(dn)
			continue
		}

		fmt.Printf("dn: %s\n", dn)
		for _, attr := range entry.Attributes() {
			for _, value := range attr.Values {
				fmt.Printf("%s: %s\n", attr.Name, value)
			}
		}
		fmt.Println()
	}
	if err := cur.Err(); err != nil {
		return err
	}

	zl.Info().Int("entries", count).Int("pages", set.Pages()).Msg("search complete")
	return nil
}

func parseScope(s string) (directory.Scope, error) {
	switch s {
	case "base":
		return directory.ScopeBaseObject, nil
	case "one":
		return directory.ScopeSingleLevel, nil
	case "sub":
		return directory.ScopeWholeSubtree, nil
	default:
		return 0, fmt.Errorf("unknown scope %q", s)
	}
}
