package tao

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/danmuck/taoctl/internal/engine"
	"github.com/danmuck/taoctl/internal/pipe"
	"github.com/danmuck/taoctl/internal/protocol"
)

// Options configure a Client. The zero value gives strict array folding
// and silent diagnostics.
type Options struct {
	// Strictness selects how inconsistent array responses are handled.
	Strictness protocol.Strictness

	// Log receives client diagnostics. The zero Logger stays silent.
	Log zerolog.Logger

	// CommandLog, when set, records every command sent on the session.
	// The caller owns it and closes it after the Client.
	CommandLog *pipe.CommandLog
}

// Client issues typed queries and commands over one engine session.
// It is not safe for concurrent use; callers that share a Client
// serialize access themselves.
type Client struct {
	ch  *pipe.Channel
	dec protocol.Decoder
	log zerolog.Logger
}

// New wraps an established transport in a Client.
func New(t pipe.Transport, opts Options) *Client {
	return &Client{
		ch:  pipe.NewChannel(t, pipe.Config{Log: opts.Log, CommandLog: opts.CommandLog}),
		dec: protocol.NewDecoder(opts.Strictness, opts.Log),
		log: opts.Log,
	}
}

// Launch spawns an engine adapter process and wraps it in a Client.
// The context bounds the spawn, not later calls.
func Launch(ctx context.Context, cfg engine.Config, opts Options) (*Client, error) {
	proc, err := engine.Spawn(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return New(proc, opts), nil
}

// Session reports the session identifier carried by log entries and the
// command history header.
func (c *Client) Session() string { return c.ch.Session() }

// Command sends one command and discards any engine output.
func (c *Client) Command(args ...any) error { return c.ch.Command(args...) }

// Capture sends one command and returns the raw output it produced.
func (c *Client) Capture(args ...any) (string, error) { return c.ch.Capture(args...) }

// Python runs one structured query and returns its records.
func (c *Client) Python(args ...any) ([]protocol.Record, error) { return c.ch.Python(args...) }

// Close shuts the session down. The Client must not be used afterwards.
func (c *Client) Close() error { return c.ch.Close() }

// Properties runs a structured query and folds the response into a
// property map.
func (c *Client) Properties(args ...any) (*protocol.PropertyMap, error) {
	records, err := c.ch.Python(args...)
	if err != nil {
		return nil, err
	}
	return c.dec.Properties(records)
}

// Parameters runs a structured query and folds the response into a
// parameter map, keeping each entry's vary flag.
func (c *Client) Parameters(args ...any) (*protocol.ParamMap, error) {
	records, err := c.ch.Python(args...)
	if err != nil {
		return nil, err
	}
	return c.dec.Parameters(records)
}

// List runs a structured query whose records are (index, value) pairs
// and returns the values in response order.
func (c *Client) List(args ...any) ([]string, error) {
	records, err := c.ch.Python(args...)
	if err != nil {
		return nil, err
	}
	return protocol.ExtractList(records)
}

// Plots returns the available plot template names.
func (c *Client) Plots() ([]string, error) {
	// t selects templates rather than active placements.
	return c.List("plot_list", "t")
}

// CurveData returns the point matrix for one fully qualified curve name
// (plot.graph.curve).
func (c *Client) CurveData(curve string) (protocol.Matrix, error) {
	records, err := c.ch.Python("plot_line", curve)
	if err != nil {
		return protocol.Matrix{}, err
	}
	return protocol.ExtractMatrix(records, protocol.DefaultCurveCols)
}

// CurveNames returns the fully qualified curve names of a plot's first
// graph.
func (c *Client) CurveNames(plot string) ([]string, error) {
	plotProps, err := c.Properties("plot1", plot)
	if err != nil {
		return nil, err
	}
	graphs, ok := plotProps.Array("graph")
	if !ok || len(graphs) == 0 {
		return nil, fmt.Errorf("tao: plot %q has no graphs", plot)
	}
	graph := graphs[0].Str

	graphProps, err := c.Properties("plot_graph", plot+"."+graph)
	if err != nil {
		return nil, err
	}
	curves, ok := graphProps.Array("curve")
	if !ok {
		return nil, nil
	}
	names := make([]string, 0, len(curves))
	for _, curve := range curves {
		names = append(names, plot+"."+graph+"."+curve.Str)
	}
	return names, nil
}

// CurvePlot bundles everything needed to draw one curve.
type CurvePlot struct {
	Name  string
	Graph *protocol.PropertyMap
	Curve *protocol.PropertyMap
	Data  protocol.Matrix
}

// PlotData collects graph settings, curve settings, and point data for
// every curve of a plot.
func (c *Client) PlotData(plot string) ([]CurvePlot, error) {
	names, err := c.CurveNames(plot)
	if err != nil {
		return nil, err
	}
	out := make([]CurvePlot, 0, len(names))
	for _, name := range names {
		graph, err := c.Properties("plot_graph", name)
		if err != nil {
			return nil, err
		}
		curve, err := c.Properties("plot_curve", name)
		if err != nil {
			return nil, err
		}
		data, err := c.CurveData(name)
		if err != nil {
			return nil, err
		}
		out = append(out, CurvePlot{Name: name, Graph: graph, Curve: curve, Data: data})
	}
	return out, nil
}

// ElementData returns one lattice element's attribute table. Empty
// which and who select the model values and general attributes;
// universes are 1-based, so anything below 1 means the first.
func (c *Client) ElementData(universe, branch, element int, which, who string) (*protocol.PropertyMap, error) {
	if universe < 1 {
		universe = 1
	}
	if which == "" {
		which = "model"
	}
	if who == "" {
		who = "general"
	}
	return c.Properties(fmt.Sprintf("lat_ele1 %d@%d>>%d|%s %s", universe, branch, element, which, who))
}

// ReadLattice loads a lattice file into the running engine.
func (c *Client) ReadLattice(filename string) error {
	return c.ch.Command("read", "lattice", filename)
}

// Change applies relative adjustments to the named target, one command
// per attribute in sorted order. It stops at the first failure.
func (c *Client) Change(target string, values map[string]any) error {
	return c.adjust("change", target, values)
}

// Set assigns absolute values to the named target, one command per
// attribute in sorted order. It stops at the first failure.
func (c *Client) Set(target string, values map[string]any) error {
	return c.adjust("set", target, values)
}

func (c *Client) adjust(verb, target string, values map[string]any) error {
	for _, k := range sortedKeys(values) {
		if err := c.ch.Command(verb, target, k, "@", values[k]); err != nil {
			return err
		}
	}
	return nil
}

func sortedKeys(values map[string]any) []string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
