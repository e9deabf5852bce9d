package media

import (
	"fmt"
	"strings"
)

// Arg is one filter argument. Key may be empty for positional values.
type Arg struct {
	Key   string
	Value string
}

// Filter is a single named operation with ordered arguments.
type Filter struct {
	Name string
	Args []Arg
}

// Chain applies a filter sequence to labelled inputs, producing labelled
// outputs.
type Chain struct {
	Inputs  []string
	Filters []Filter
	Outputs []string
}

// Graph is an ordered set of chains. It stays declarative until String
// renders it into ffmpeg filter_complex syntax at the invocation boundary.
type Graph struct {
	Chains []Chain
}

func (a Arg) render() string {
	if a.Key == "" {
		return a.Value
	}
	return a.Key + "=" + a.Value
}

func (f Filter) render() string {
	if len(f.Args) == 0 {
		return f.Name
	}
	parts := make([]string, 0, len(f.Args))
	for _, arg := range f.Args {
		parts = append(parts, arg.render())
	}
	return f.Name + "=" + strings.Join(parts, ":")
}

func (c Chain) render() string {
	var b strings.Builder
	for _, input := range c.Inputs {
		fmt.Fprintf(&b, "[%s]", input)
	}
	filters := make([]string, 0, len(c.Filters))
	for _, filter := range c.Filters {
		filters = append(filters, filter.render())
	}
	b.WriteString(strings.Join(filters, ","))
	for _, output := range c.Outputs {
		fmt.Fprintf(&b, "[%s]", output)
	}
	return b.String()
}

// String renders the graph into ffmpeg filter_complex syntax.
func (g Graph) String() string {
	chains := make([]string, 0, len(g.Chains))
	for _, chain := range g.Chains {
		chains = append(chains, chain.render())
	}
	return strings.Join(chains, ";")
}

// TransformSpec carries the output format and waveform rendering parameters
// for the cover+waveform video.
type TransformSpec struct {
	Width          int
	Height         int
	FPS            int
	WaveformColor  string
	WaveformHeight int
	WaveformY      int
}

// WaveformVideoGraph describes the full transform: a waveform rendered from
// the audio, the cover as a blurred full-bleed background with the original
// centered on top, the composed frame looped for the duration of the audio,
// and the waveform overlaid at a fixed vertical offset.
//
// Input 0 is the cover image, input 1 the audio stream. The final video is
// labelled [v].
func WaveformVideoGraph(spec TransformSpec) Graph {
	wh := fmt.Sprintf("%d", spec.Height)
	ww := fmt.Sprintf("%d", spec.Width)

	return Graph{Chains: []Chain{
		{
			Inputs: []string{"1:a"},
			Filters: []Filter{{
				Name: "showwaves",
				Args: []Arg{
					{Key: "s", Value: fmt.Sprintf("%dx%d", spec.Width, spec.WaveformHeight)},
					{Key: "mode", Value: "cline"},
					{Key: "rate", Value: fmt.Sprintf("%d", spec.FPS)},
					{Key: "colors", Value: spec.WaveformColor},
					{Key: "scale", Value: "sqrt"},
				},
			}},
			Outputs: []string{"wave"},
		},
		{
			Inputs: []string{"0:v"},
			Filters: []Filter{
				{
					Name: "scale",
					Args: []Arg{
						{Value: ww},
						{Value: wh},
						{Key: "force_original_aspect_ratio", Value: "increase"},
					},
				},
				{
					Name: "crop",
					Args: []Arg{{Value: ww}, {Value: wh}},
				},
				{
					Name: "boxblur",
					Args: []Arg{{Value: "20"}, {Value: "5"}},
				},
			},
			Outputs: []string{"bg"},
		},
		{
			Inputs: []string{"0:v"},
			Filters: []Filter{{
				Name: "scale",
				Args: []Arg{
					{Value: ww},
					{Value: wh},
					{Key: "force_original_aspect_ratio", Value: "decrease"},
				},
			}},
			Outputs: []string{"fg"},
		},
		{
			Inputs: []string{"bg", "fg"},
			Filters: []Filter{{
				Name: "overlay",
				Args: []Arg{{Value: "(W-w)/2"}, {Value: "(H-h)/2"}},
			}},
			Outputs: []string{"cover"},
		},
		{
			Inputs: []string{"cover"},
			Filters: []Filter{
				{
					Name: "loop",
					Args: []Arg{
						{Key: "loop", Value: "-1"},
						{Key: "size", Value: "1"},
						{Key: "start", Value: "0"},
					},
				},
				{
					Name: "setpts",
					Args: []Arg{{Value: fmt.Sprintf("N/(%d*TB)", spec.FPS)}},
				},
			},
			Outputs: []string{"looped"},
		},
		{
			Inputs: []string{"looped", "wave"},
			Filters: []Filter{{
				Name: "overlay",
				Args: []Arg{
					{Value: "0"},
					{Value: fmt.Sprintf("%d", spec.WaveformY)},
					{Key: "shortest", Value: "1"},
				},
			}},
			Outputs: []string{"v"},
		},
	}}
}
