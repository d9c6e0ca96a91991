package tools

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/hupe1980/agentgraph/core"
	"github.com/hupe1980/agentgraph/tool"
)

// DefaultSerpAPIURL is the SerpAPI JSON search endpoint.
const DefaultSerpAPIURL = "https://serpapi.com/search.json"

// SearchArgs are the arguments of serpapi_search.
type SearchArgs struct {
	Query      string `json:"query" jsonschema_description:"Search keywords or question"`
	NumResults int    `json:"num_results,omitempty" jsonschema:"minimum=1,maximum=20,default=5" jsonschema_description:"Number of results, default 5"`
}

// NewSerpAPITool returns serpapi_search, a Google search through SerpAPI.
func NewSerpAPITool(optFns ...func(o *Options)) *tool.FunctionTool {
	opts := resolve(optFns)

	return tool.NewTypedTool("serpapi_search", "Search the internet with SerpAPI.",
		func(tc *core.ToolContext, args SearchArgs) (any, error) {
			if opts.SerpAPIKey == "" {
				return "Error: SERPAPI_API_KEY is not set", nil
			}

			num := args.NumResults
			if num == 0 {
				num = 5
			}

			body, err := serpAPIRequest(tc, opts, args.Query, num)
			if err != nil {
				tc.LogWarn("tool.search.failed", "query", args.Query, "error", err.Error())
				return fmt.Sprintf("Search failed: %v", err), nil
			}

			return fmt.Sprintf("Search query: %s\n\nResults:\n%s", args.Query, summarizeSearch(body, num)), nil
		})
}

func serpAPIRequest(tc *core.ToolContext, opts Options, query string, num int) ([]byte, error) {
	q := url.Values{}
	q.Set("engine", "google")
	q.Set("q", query)
	q.Set("google_domain", "google.com.hk")
	q.Set("gl", "cn")
	q.Set("hl", "zh-cn")
	q.Set("num", strconv.Itoa(num))
	q.Set("api_key", opts.SerpAPIKey)

	req, err := http.NewRequestWithContext(tc.Context(), http.MethodGet, opts.SerpAPIURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := opts.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, err
	}

	if msg := gjson.GetBytes(body, "error"); msg.Exists() {
		return nil, fmt.Errorf("serpapi: %s", msg.String())
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("serpapi: unexpected status %d", resp.StatusCode)
	}

	return body, nil
}

// summarizeSearch prefers a direct answer, then the knowledge graph, then
// the organic results.
func summarizeSearch(body []byte, num int) string {
	doc := gjson.ParseBytes(body)

	for _, path := range []string{"answer_box.answer", "answer_box.snippet", "knowledge_graph.description"} {
		if r := doc.Get(path); r.Exists() && r.String() != "" {
			return r.String()
		}
	}

	var sb strings.Builder

	n := 0

	doc.Get("organic_results").ForEach(func(_, r gjson.Result) bool {
		n++
		fmt.Fprintf(&sb, "%d. %s\n", n, r.Get("title").String())

		if s := r.Get("snippet").String(); s != "" {
			fmt.Fprintf(&sb, "   %s\n", s)
		}

		if l := r.Get("link").String(); l != "" {
			fmt.Fprintf(&sb, "   %s\n", l)
		}

		return n < num
	})

	if n == 0 {
		return "No good search result found"
	}

	return strings.TrimRight(sb.String(), "\n")
}
