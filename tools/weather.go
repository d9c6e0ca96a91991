package tools

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/hupe1980/agentgraph/core"
	"github.com/hupe1980/agentgraph/tool"
)

var weatherConditions = []string{"sunny", "cloudy", "overcast", "light rain", "moderate rain", "heavy rain", "snow"}

// WeatherArgs are the arguments of weather_query.
type WeatherArgs struct {
	City string `json:"city" jsonschema_description:"City to query, e.g. Beijing, Shanghai, Guangzhou"`
	Days int    `json:"days,omitempty" jsonschema:"minimum=1,maximum=7,default=1" jsonschema_description:"Number of days: 1 is today, at most 7"`
}

// Forecast is a single day of a weather report.
type Forecast struct {
	Date        string `json:"date"`
	Condition   string `json:"condition"`
	Temperature string `json:"temperature"`
	Humidity    string `json:"humidity"`
	Wind        string `json:"wind"`
}

// WeatherReport is the JSON document returned by weather_query.
type WeatherReport struct {
	City      string     `json:"city"`
	QueryTime string     `json:"query_time"`
	Forecast  []Forecast `json:"forecast"`
}

// NewWeatherTool returns weather_query. Data is simulated.
func NewWeatherTool(optFns ...func(o *Options)) *tool.FunctionTool {
	opts := resolve(optFns)

	return tool.NewTypedTool("weather_query", "Look up the weather forecast for a city.",
		func(_ *core.ToolContext, args WeatherArgs) (any, error) {
			days := args.Days
			if days == 0 {
				days = 1
			}

			now := opts.Now()
			report := WeatherReport{
				City:      args.City,
				QueryTime: now.Format(time.DateTime),
				Forecast:  make([]Forecast, 0, days),
			}

			for i := range days {
				report.Forecast = append(report.Forecast, Forecast{
					Date:        now.AddDate(0, 0, i).Format(time.DateOnly),
					Condition:   weatherConditions[opts.Rand.IntN(len(weatherConditions))],
					Temperature: fmt.Sprintf("%d°C", opts.Rand.IntN(45)-10),
					Humidity:    fmt.Sprintf("%d%%", 30+opts.Rand.IntN(61)),
					Wind:        fmt.Sprintf("force %d", 1+opts.Rand.IntN(8)),
				})
			}

			b, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				return nil, err
			}

			return string(b), nil
		})
}
