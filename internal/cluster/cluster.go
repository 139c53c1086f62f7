package cluster

import (
	"sort"

	"github.com/lehigh-university-libraries/reconciler/internal/records"
	"github.com/lehigh-university-libraries/reconciler/internal/similarity"
)

// DefaultThreshold is the pairwise score at or above which two records of
// one ISBN family are united into a cluster.
const DefaultThreshold = 0.8

// Matcher partitions normalized records into clusters of
// records believed to describe one work or edition.
type Matcher struct {
	scorer    *similarity.Scorer
	threshold float64
}

// NewMatcher builds a matcher. A non-positive threshold selects
// DefaultThreshold.
func NewMatcher(scorer *similarity.Scorer, threshold float64) *Matcher {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Matcher{scorer: scorer, threshold: threshold}
}

// Threshold reports the configured cluster threshold.
func (m *Matcher) Threshold() float64 {
	return m.threshold
}

// Cluster partitions the input: every record lands in exactly one
// cluster. Pairwise similarity is only computed within an ISBN family;
// records without a family form singletons. Unions are transitive by
// design — a record above threshold with two otherwise-disjoint clusters
// pulls them together, which suits near-duplicate source feeds. The
// result is independent of input order: the full pairwise graph is built
// before any union happens, and members and clusters are sorted.
func (m *Matcher) Cluster(recs []records.NormalizedRecord) []records.Cluster {
	if len(recs) == 0 {
		return nil
	}

	byFamily := make(map[string][]int)
	var orphans []int
	for i := range recs {
		if recs[i].Family == "" {
			orphans = append(orphans, i)
			continue
		}
		byFamily[recs[i].Family] = append(byFamily[recs[i].Family], i)
	}

	var clusters []records.Cluster
	for family, members := range byFamily {
		clusters = append(clusters, m.clusterFamily(family, members, recs)...)
	}
	for _, i := range orphans {
		clusters = append(clusters, records.Cluster{
			Members:    []string{recs[i].ID},
			Confidence: 1.0,
		})
	}

	sort.Slice(clusters, func(i, j int) bool {
		return clusters[i].Members[0] < clusters[j].Members[0]
	})
	return clusters
}

// clusterFamily runs union-find over the fully computed pairwise graph of
// one ISBN family.
func (m *Matcher) clusterFamily(family string, members []int, recs []records.NormalizedRecord) []records.Cluster {
	sort.Slice(members, func(i, j int) bool {
		return recs[members[i]].ID < recs[members[j]].ID
	})

	n := len(members)
	ds := newDisjointSet(n)
	scores := make(map[[2]int]float64, n*(n-1)/2)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			score := m.scorer.ScoreRecord(&recs[members[i]], &recs[members[j]])
			scores[[2]int{i, j}] = score
			if score >= m.threshold {
				ds.union(i, j)
			}
		}
	}

	groups := make(map[int][]int)
	for i := 0; i < n; i++ {
		root := ds.find(i)
		groups[root] = append(groups[root], i)
	}

	var clusters []records.Cluster
	for _, group := range groups {
		c := records.Cluster{
			Family:     family,
			Confidence: 1.0,
		}
		for _, i := range group {
			c.Members = append(c.Members, recs[members[i]].ID)
		}
		// Weakest link: minimum pairwise score within the cluster.
		for x := 0; x < len(group); x++ {
			for y := x + 1; y < len(group); y++ {
				i, j := group[x], group[y]
				if i > j {
					i, j = j, i
				}
				if s := scores[[2]int{i, j}]; s < c.Confidence {
					c.Confidence = s
				}
			}
		}
		sort.Strings(c.Members)
		clusters = append(clusters, c)
	}
	return clusters
}

// disjointSet is a union-find structure with path compression and union
// by rank. Clustering state lives only for one resolution pass.
type disjointSet struct {
	parent []int
	rank   []int
}

func newDisjointSet(n int) *disjointSet {
	ds := &disjointSet{
		parent: make([]int, n),
		rank:   make([]int, n),
	}
	for i := range ds.parent {
		ds.parent[i] = i
	}
	return ds
}

func (ds *disjointSet) find(x int) int {
	for ds.parent[x] != x {
		ds.parent[x] = ds.parent[ds.parent[x]]
		x = ds.parent[x]
	}
	return x
}

func (ds *disjointSet) union(x, y int) {
	rx, ry := ds.find(x), ds.find(y)
	if rx == ry {
		return
	}
	if ds.rank[rx] < ds.rank[ry] {
		rx, ry = ry, rx
	}
	ds.parent[ry] = rx
	if ds.rank[rx] == ds.rank[ry] {
		ds.rank[rx]++
	}
}
