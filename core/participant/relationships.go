package participant

import (
	"sort"
	"strings"

	"github.com/siherrmann/caseweaver/model"
)

// parseRelatedRole splits one declared related-role value of the form
// "<target-uri>" or "<target-uri>|<kind>" into a relationship record.
func parseRelatedRole(value string) model.Relationship {
	target, kind, found := strings.Cut(value, "|")
	if !found {
		return model.Relationship{TargetID: value}
	}
	return model.Relationship{TargetID: target, Kind: kind}
}

// BuildRelationshipGraph builds a symmetric adjacency map from the declared
// one-directional relationship lists. Edges are keyed by the source entity
// URI, not the profile id, so profiles whose id diverges from their source
// entity still resolve. For every declared edge A→B both adj[A] contains B
// and adj[B] contains A.
func BuildRelationshipGraph(profiles []*model.ParticipantProfile) map[string][]string {
	adjacency := map[string]map[string]bool{}

	addEdge := func(a, b string) {
		if adjacency[a] == nil {
			adjacency[a] = map[string]bool{}
		}
		adjacency[a][b] = true
	}

	for _, profile := range profiles {
		source := profile.SourceEntityID
		for _, relationship := range profile.Relationships {
			if relationship.TargetID == "" || relationship.TargetID == source {
				continue
			}
			addEdge(source, relationship.TargetID)
			addEdge(relationship.TargetID, source)
		}
	}

	graph := make(map[string][]string, len(adjacency))
	for id, neighbors := range adjacency {
		list := make([]string, 0, len(neighbors))
		for neighbor := range neighbors {
			list = append(list, neighbor)
		}
		sort.Strings(list)
		graph[id] = list
	}

	return graph
}
