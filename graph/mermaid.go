package graph

import (
	"fmt"
	"sort"
	"strings"
)

// Mermaid renders the graph as a Mermaid flowchart. Conditional edges are
// dashed and labelled with their routing key; a router without a path map is
// drawn to every node it could reach.
func (c *Compiled[S]) Mermaid() string {
	var sb strings.Builder

	sb.WriteString("flowchart TD\n")
	fmt.Fprintf(&sb, "\t%s([%s]):::first\n", START, START)

	for _, n := range c.order {
		fmt.Fprintf(&sb, "\t%s(%s)\n", mermaidID(n), n)
	}

	fmt.Fprintf(&sb, "\t%s([%s]):::last\n", END, END)

	sources := append([]string{START}, c.order...)

	for _, from := range sources {
		for _, to := range c.edges[from] {
			fmt.Fprintf(&sb, "\t%s --> %s;\n", mermaidID(from), mermaidID(to))
		}

		br, ok := c.branches[from]
		if !ok {
			continue
		}

		if br.pathMap == nil {
			for _, to := range append(append([]string{}, c.order...), END) {
				fmt.Fprintf(&sb, "\t%s -.-> %s;\n", mermaidID(from), mermaidID(to))
			}

			continue
		}

		keys := make([]string, 0, len(br.pathMap))
		for k := range br.pathMap {
			keys = append(keys, k)
		}

		sort.Strings(keys)

		for _, k := range keys {
			fmt.Fprintf(&sb, "\t%s -. &nbsp;%s&nbsp; .-> %s;\n", mermaidID(from), k, mermaidID(br.pathMap[k]))
		}
	}

	sb.WriteString("\tclassDef default fill:#f2f0ff,line-height:1.2\n")
	sb.WriteString("\tclassDef first fill-opacity:0\n")
	sb.WriteString("\tclassDef last fill:#bfb6fc\n")

	return sb.String()
}

func mermaidID(name string) string {
	return strings.NewReplacer(" ", "_", "-", "_", ".", "_").Replace(name)
}
