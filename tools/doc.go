// Package tools provides the built-in tool catalog offered to agents:
// weather_query, calculator, datetime_query, text_processor,
// random_generator, unit_converter and, when a SerpAPI key is configured,
// serpapi_search.
//
// Every tool reports failures of its own domain (an unknown unit, a malformed
// expression) as a plain result string the model can read and react to.
// Schema violations are still rejected by tool.FunctionTool before a tool runs.
//
//	reg := tools.Registry()
//	agent, _ := prebuilt.CreateReactAgent(m, reg)
package tools
