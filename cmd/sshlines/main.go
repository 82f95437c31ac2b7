package main

import (
	"bufio"
	"context"
	"os"
	"time"

	"github.com/alecthomas/kong"
	jsoniter "github.com/json-iterator/go"
	"github.com/willabides/sshlines"
)

var cli struct {
	Sources      []string `kong:"arg,help='captured output to read, formatted as [host[:stream]=]path. path may be a gs://bucket/object url'"`
	Prefix       string   `kong:"help='prefix for host log lines'"`
	NoEmptyLines bool     `kong:"help='skip empty lines'"`
	OnlyJSON     bool     `kong:"name=only-json,help='skip lines that are not valid json objects'"`
	Since        string   `kong:"help='with --only-json, skip lines whose time field is before this RFC3339 time'"`
	JSON         bool     `kong:"name=json,help='write each line as a json record with host and stream'"`
	Log          bool     `kong:"help='write lines through the host logger instead of raw'"`
	LogLevel     string   `kong:"default=info,help='log level: debug, info, warn or error'"`
	LogFile      string   `kong:"help='write logs to this file instead of stderr'"`
	Concurrency  int      `kong:"default=4,help='how many sources to read at once'"`
}

type record struct {
	Host   string `json:"host"`
	Stream string `json:"stream,omitempty"`
	Line   string `json:"line"`
}

func main() {
	k := kong.Parse(&cli)
	var sources []sshlines.Source
	for _, s := range cli.Sources {
		src, err := sshlines.ParseSource(s)
		k.FatalIfErrorf(err, "invalid source")
		sources = append(sources, src)
	}

	lc := sshlines.NewLogContext()
	sink := sshlines.LogSink{Writer: os.Stderr}
	if cli.LogFile != "" {
		sink = sshlines.LogSink{Filename: cli.LogFile, MaxSize: 100, MaxBackups: 3}
	}
	if cli.Log && cli.LogFile == "" {
		sink = sshlines.LogSink{Stdout: true}
	}
	k.FatalIfErrorf(lc.Configure(sink, cli.LogLevel), "error configuring logger")
	defer func() {
		_ = lc.Sync() //nolint:errcheck // nothing to do with this error
	}()

	var filters []sshlines.Filter
	if cli.NoEmptyLines {
		filters = append(filters, sshlines.FilterNotEmpty())
	}
	if cli.OnlyJSON {
		filters = append(filters, sshlines.FilterIsJSONObject(), sshlines.FilterValidJSON())
		if cli.Since != "" {
			since, err := time.Parse(time.RFC3339, cli.Since)
			k.FatalIfErrorf(err, "invalid since time")
			filters = append(filters, sshlines.FilterJSONFields([]sshlines.JSONFieldFilter{{
				Field: "time",
				Filter: sshlines.TimeValueFilter(func(val time.Time) bool {
					return !val.Before(since)
				}),
			}}))
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sc, err := sshlines.ScanSources(ctx, sources, &sshlines.Options{
		Filters:     filters,
		Concurrency: cli.Concurrency,
		Log:         lc,
	})
	k.FatalIfErrorf(err, "error starting scanner")
	defer func() {
		_ = sc.Close() //nolint:errcheck // nothing to do with this error
	}()

	out := bufio.NewWriter(os.Stdout)
	stream := jsoniter.ConfigFastest.BorrowStream(out)
	defer jsoniter.ConfigFastest.ReturnStream(stream)
	for sc.Scan(ctx) {
		line := sc.Line()
		switch {
		case cli.Log:
			prefix := cli.Prefix
			if line.Stream != "" {
				prefix += " [" + line.Stream + "]"
			}
			lc.LogHostLine(line.Host, prefix, line.Data)
		case cli.JSON:
			stream.WriteVal(record{Host: line.Host, Stream: line.Stream, Line: string(line.Data)})
			stream.WriteRaw("\n")
			k.FatalIfErrorf(stream.Flush(), "error writing output")
		default:
			_, err = out.Write(line.Data)
			if err == nil {
				err = out.WriteByte('\n')
			}
			k.FatalIfErrorf(err, "error writing output")
		}
	}
	k.FatalIfErrorf(out.Flush(), "error writing output")
	k.FatalIfErrorf(sc.Err(), "error reading output")
}
