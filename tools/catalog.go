package tools

import (
	"math/rand/v2"
	"net/http"
	"os"
	"time"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/hupe1980/agentgraph/tool"
)

// Rand is the randomness used by simulated and random tools. *rand.Rand
// satisfies it.
type Rand interface {
	IntN(n int) int
	Uint64() uint64
	Uint64N(n uint64) uint64
	Float64() float64
}

type globalRand struct{}

func (globalRand) IntN(n int) int          { return rand.IntN(n) }
func (globalRand) Uint64() uint64          { return rand.Uint64() }
func (globalRand) Uint64N(n uint64) uint64 { return rand.Uint64N(n) }
func (globalRand) Float64() float64        { return rand.Float64() }

// Options configures the catalog.
type Options struct {
	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time

	// Rand is used by weather_query and random_generator. Defaults to the
	// process-wide math/rand/v2 source.
	Rand Rand

	// SerpAPIKey enables serpapi_search. Defaults to $SERPAPI_API_KEY.
	SerpAPIKey string

	// SerpAPIURL overrides the search endpoint.
	SerpAPIURL string

	HTTPClient *http.Client
}

func resolve(optFns []func(o *Options)) Options {
	opts := Options{
		Now:        time.Now,
		Rand:       globalRand{},
		SerpAPIKey: os.Getenv("SERPAPI_API_KEY"),
		SerpAPIURL: DefaultSerpAPIURL,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return opts
}

// All returns the six local tools in catalog order.
func All(optFns ...func(o *Options)) []tool.Tool {
	return []tool.Tool{
		NewWeatherTool(optFns...),
		NewCalculatorTool(),
		NewDateTimeTool(optFns...),
		NewTextProcessorTool(),
		NewRandomTool(optFns...),
		NewUnitConverterTool(),
	}
}

// Available returns All plus the network tools whose credentials are configured.
func Available(optFns ...func(o *Options)) []tool.Tool {
	out := All(optFns...)

	if resolve(optFns).SerpAPIKey != "" {
		out = append(out, NewSerpAPITool(optFns...))
	}

	return out
}

// Registry returns a registry holding every available tool.
func Registry(optFns ...func(o *Options)) *tool.Registry {
	return tool.MustRegistry(Available(optFns...)...)
}

// Descriptions returns name, description and argument schema of every
// available tool keyed by name.
func Descriptions(optFns ...func(o *Options)) *orderedmap.OrderedMap[string, tool.Description] {
	return Registry(optFns...).Descriptions()
}
