package tools

import (
	"context"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentgraph/core"
	"github.com/hupe1980/agentgraph/tool"
)

var fixedNow = time.Date(2024, 3, 9, 14, 30, 0, 0, time.UTC)

func fixed(o *Options) {
	o.Now = func() time.Time { return fixedNow }
	o.Rand = rand.New(rand.NewPCG(1, 2))
	o.SerpAPIKey = ""
}

func call(t *testing.T, tl tool.Tool, args map[string]any) string {
	t.Helper()

	out, err := tl.Call(core.NewToolContext(context.Background(), "fc"), args)
	require.NoError(t, err)

	s, ok := out.(string)
	require.True(t, ok, "result should be a string, got %T", out)

	return s
}

func TestCatalog(t *testing.T) {
	names := make([]string, 0)
	for _, tl := range All(fixed) {
		names = append(names, tl.Name())
	}

	assert.Equal(t, []string{"weather_query", "calculator", "datetime_query", "text_processor", "random_generator", "unit_converter"}, names)
	assert.Len(t, Available(fixed), 6)

	withKey := Available(fixed, func(o *Options) { o.SerpAPIKey = "k" })
	assert.Len(t, withKey, 7)
	assert.Equal(t, "serpapi_search", withKey[6].Name())

	desc := Descriptions(fixed)
	assert.Equal(t, 6, desc.Len())

	calc, ok := desc.Get("calculator")
	require.True(t, ok)
	assert.Equal(t, "calculator", calc.Name)
	assert.NotEmpty(t, calc.Description)
	assert.Contains(t, calc.ArgsSchema["properties"], "expression")
}

func TestWeather(t *testing.T) {
	w := NewWeatherTool(fixed)

	var report WeatherReport
	require.NoError(t, json.Unmarshal([]byte(call(t, w, map[string]any{"city": "Beijing", "days": 3.0})), &report))

	assert.Equal(t, "Beijing", report.City)
	assert.Equal(t, "2024-03-09 14:30:00", report.QueryTime)
	require.Len(t, report.Forecast, 3)
	assert.Equal(t, "2024-03-09", report.Forecast[0].Date)
	assert.Equal(t, "2024-03-11", report.Forecast[2].Date)

	for _, f := range report.Forecast {
		assert.Contains(t, weatherConditions, f.Condition)
		assert.True(t, strings.HasSuffix(f.Temperature, "°C"))
		assert.True(t, strings.HasSuffix(f.Humidity, "%"))
		assert.True(t, strings.HasPrefix(f.Wind, "force "))
	}

	require.NoError(t, json.Unmarshal([]byte(call(t, w, map[string]any{"city": "Shanghai"})), &report))
	assert.Len(t, report.Forecast, 1)

	_, err := w.Call(core.NewToolContext(context.Background(), "fc"), map[string]any{"city": "x", "days": 9.0})
	assert.Error(t, err)
}

func TestCalculate(t *testing.T) {
	tests := []struct {
		expr string
		want string
	}{
		{"2 + 3 * 4", "Result: 2 + 3 * 4 = 14"},
		{"sqrt(16) + sin(pi/2)", "Result: sqrt(16) + sin(pi/2) = 5"},
		{"2^10", "Result: 2**10 = 1024"},
		{"max(1, 7, 3)", "Result: max(1, 7, 3) = 7"},
		{"sum([1, 2, 3])", "Result: sum([1, 2, 3]) = 6"},
		{"round(2.567, 2)", "Result: round(2.567, 2) = 2.57"},
		{"abs(-4)", "Result: abs(-4) = 4"},
		{"pow(2, 3)", "Result: pow(2, 3) = 8"},
		{"7 / 2", "Result: 7 / 2 = 3.5"},
		{"floor(7 / 2)", "Result: floor(7 / 2) = 3"},
		{"7 // 2", "Calculation error: floor division '//' is not supported, use floor(a / b)"},
		{"1/0", "Calculation error: division by zero"},
		{"sqrt(-1)", "Calculation error: math domain error"},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			assert.Equal(t, tt.want, Calculate(tt.expr))
		})
	}

	assert.True(t, strings.HasPrefix(Calculate("2 +"), "Calculation error: "))
	assert.True(t, strings.HasPrefix(Calculate("log(-1)"), "Calculation error: "))
	assert.True(t, strings.HasPrefix(Calculate(`os("ls")`), "Calculation error: "))

	assert.Equal(t, "Result: 1 + 1 = 2", call(t, NewCalculatorTool(), map[string]any{"expression": "1 + 1"}))
}

func TestDateTime(t *testing.T) {
	dt := NewDateTimeTool(fixed)

	assert.Equal(t, "Current time: 2024-03-09 14:30:00", call(t, dt, map[string]any{"query_type": "current"}))
	assert.Equal(t, "Formatted time: 09/03/2024", call(t, dt, map[string]any{"query_type": "format", "format_string": "%d/%m/%Y"}))
	assert.Equal(t, "Please provide a format string", call(t, dt, map[string]any{"query_type": "format"}))
	assert.Equal(t, "Calculated time: 2024-03-16 14:30:00", call(t, dt, map[string]any{"query_type": "calculate", "days_offset": 7.0}))
	assert.Equal(t, "Calculated time: 2024-03-08 14:30:00", call(t, dt, map[string]any{"query_type": "calculate", "days_offset": -1.0}))
	assert.Equal(t, "Please provide a days offset", call(t, dt, map[string]any{"query_type": "calculate"}))
	assert.Equal(t, "Unsupported query type", call(t, dt, map[string]any{"query_type": "tomorrow"}))
}

func TestProcessText(t *testing.T) {
	assert.Equal(t, "Text statistics:\nCharacters: 11\nWords: 2\nLines: 1", ProcessText("Hello World", "count", ""))
	assert.Equal(t, "Text statistics:\nCharacters: 0\nWords: 0\nLines: 0", ProcessText("", "count", ""))
	assert.Equal(t, "Uppercase: HELLO", ProcessText("hello", "upper", ""))
	assert.Equal(t, "Lowercase: hello", ProcessText("HeLLo", "lower", ""))
	assert.Equal(t, "Reversed: dlroW olleH", ProcessText("Hello World", "reverse", ""))
	assert.Equal(t, "Reversed: 界世", ProcessText("世界", "reverse", ""))
	assert.Equal(t, `Split result: ["a","b","c"]`, ProcessText("a b c", "split", ""))
	assert.Equal(t, `Split result: ["a","b"]`, ProcessText("a,b", "split", ","))
	assert.Equal(t, "Unsupported operation", ProcessText("x", "rot13", ""))

	assert.Equal(t, "Text statistics:\nCharacters: 4\nWords: 2\nLines: 2", ProcessText("a\nb\n", "count", ""))
}

func TestRandom(t *testing.T) {
	r := NewRandomTool(fixed)

	for range 20 {
		out := call(t, r, map[string]any{"type": "int", "min_value": 1.0, "max_value": 3.0})
		assert.Contains(t, []string{"Random integer: 1", "Random integer: 2", "Random integer: 3"}, out)
	}

	assert.True(t, strings.HasPrefix(call(t, r, map[string]any{"type": "float"}), "Random float: "))
	assert.Contains(t, []string{"Random choice: apple", "Random choice: pear"}, call(t, r, map[string]any{"type": "choice", "choices": []any{"apple", "pear"}}))
	assert.Equal(t, "Please provide a list of choices", call(t, r, map[string]any{"type": "choice"}))
	assert.Len(t, strings.TrimPrefix(call(t, r, map[string]any{"type": "uuid"}), "UUID: "), 36)
	assert.Equal(t, "min_value must not exceed max_value", call(t, r, map[string]any{"type": "int", "min_value": 5.0, "max_value": 1.0}))
	assert.Equal(t, "Unsupported random type", call(t, r, map[string]any{"type": "dice"}))
}

func TestRandom_WideRanges(t *testing.T) {
	exec := tool.NewExecutor(tool.MustRegistry(NewRandomTool(fixed)))

	for _, args := range []string{
		`{"type":"int","min_value":-5000000000000000000,"max_value":5000000000000000000}`,
		`{"type":"int","min_value":0,"max_value":9223372036854775807}`,
		`{"type":"int","min_value":-9223372036854775808,"max_value":9223372036854775807}`,
		`{"type":"float","min_value":-9223372036854775808,"max_value":9223372036854775807}`,
	} {
		res := exec.ExecuteOne(context.Background(), "", core.FunctionCall{ID: "r", Name: "random_generator", Arguments: args})
		require.NoError(t, res.Err, args)

		out, ok := res.Output.(string)
		require.True(t, ok)
		assert.True(t, strings.HasPrefix(out, "Random "), out)
	}

	assert.Equal(t, -3, randomInt(rand.New(rand.NewPCG(3, 4)), -3, -3))
}

func TestConvertUnits(t *testing.T) {
	assert.Equal(t, "Conversion result: 100 cm = 1.0000 m", ConvertUnits(100, "cm", "m", "length"))
	assert.Equal(t, "Conversion result: 1 mile = 1.6093 km", ConvertUnits(1, "mile", "km", "length"))
	assert.Equal(t, "Conversion result: 2 kg = 4.4092 lb", ConvertUnits(2, "kg", "lb", "weight"))
	assert.Equal(t, "Conversion result: 1 hectare = 10000.0000 m2", ConvertUnits(1, "hectare", "m2", "area"))
	assert.Equal(t, "Conversion result: 32°F = 0.00°C", ConvertUnits(32, "F", "C", "temperature"))
	assert.Equal(t, "Conversion result: 100°C = 212.00°F", ConvertUnits(100, "C", "F", "temperature"))
	assert.Equal(t, "Conversion result: 0°C = 273.15K", ConvertUnits(0, "C", "K", "temperature"))
	assert.Equal(t, "Conversion result: 32°F = 273.15K", ConvertUnits(32, "F", "K", "temperature"))
	assert.Equal(t, "Unsupported unit conversion", ConvertUnits(1, "C", "C", "temperature"))
	assert.Equal(t, "Unsupported unit conversion", ConvertUnits(1, "cm", "kg", "length"))
	assert.Equal(t, "Unsupported unit conversion", ConvertUnits(1, "s", "ms", "time"))

	out := call(t, NewUnitConverterTool(), map[string]any{"value": 1.5, "from_unit": "km", "to_unit": "m", "category": "length"})
	assert.Equal(t, "Conversion result: 1.5 km = 1500.0000 m", out)
}

func TestSerpAPI(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "golang", r.URL.Query().Get("q"))
		assert.Equal(t, "2", r.URL.Query().Get("num"))
		assert.Equal(t, "secret", r.URL.Query().Get("api_key"))

		_, _ = w.Write([]byte(`{"organic_results":[
			{"title":"The Go Programming Language","snippet":"Go is expressive.","link":"https://go.dev"},
			{"title":"Go (wiki)","snippet":"A language.","link":"https://wiki"},
			{"title":"Third","link":"https://third"}
		]}`))
	}))
	defer srv.Close()

	s := NewSerpAPITool(func(o *Options) {
		o.SerpAPIKey = "secret"
		o.SerpAPIURL = srv.URL
		o.HTTPClient = srv.Client()
	})

	out := call(t, s, map[string]any{"query": "golang", "num_results": 2.0})
	assert.Equal(t, "Search query: golang\n\nResults:\n1. The Go Programming Language\n   Go is expressive.\n   https://go.dev\n2. Go (wiki)\n   A language.\n   https://wiki", out)
}

func TestSerpAPI_AnswerBoxAndErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") == "bad" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"Invalid API key."}`))

			return
		}

		_, _ = w.Write([]byte(`{"answer_box":{"answer":"42"}}`))
	}))
	defer srv.Close()

	s := NewSerpAPITool(func(o *Options) {
		o.SerpAPIKey = "k"
		o.SerpAPIURL = srv.URL
	})

	assert.Equal(t, "Search query: meaning\n\nResults:\n42", call(t, s, map[string]any{"query": "meaning"}))
	assert.Equal(t, "Search failed: serpapi: Invalid API key.", call(t, s, map[string]any{"query": "bad"}))

	noKey := NewSerpAPITool(func(o *Options) { o.SerpAPIKey = "" })
	assert.Equal(t, "Error: SERPAPI_API_KEY is not set", call(t, noKey, map[string]any{"query": "x"}))
}
