package graph

import (
	"testing"

	"github.com/chazu/joinery/pkg/join"
)

func TestComputeHashesDeterministic(t *testing.T) {
	g1, g2 := buildJoinDoc(), buildJoinDoc()
	if err := ComputeHashes(g1); err != nil {
		t.Fatal(err)
	}
	if err := ComputeHashes(g2); err != nil {
		t.Fatal(err)
	}
	for id, n := range g1.Nodes {
		if n.ContentHash.IsZero() {
			t.Errorf("node %s has no hash", n.Label())
		}
		if n.ContentHash != g2.Nodes[id].ContentHash {
			t.Errorf("node %s hash differs between identical graphs", n.Label())
		}
	}
}

func TestComputeHashesPropagatesChildChanges(t *testing.T) {
	g1, g2 := buildJoinDoc(), buildJoinDoc()
	g2.MustLookup("tool").Data = SphereData{Radius: 16}

	if err := ComputeHashes(g1); err != nil {
		t.Fatal(err)
	}
	if err := ComputeHashes(g2); err != nil {
		t.Fatal(err)
	}

	if g1.MustLookup("base").ContentHash != g2.MustLookup("base").ContentHash {
		t.Error("unchanged base should keep its hash")
	}
	if g1.MustLookup("tool").ContentHash == g2.MustLookup("tool").ContentHash {
		t.Error("changed tool should get a new hash")
	}
	if g1.MustLookup("Connect").ContentHash == g2.MustLookup("Connect").ContentHash {
		t.Error("join over a changed tool should get a new hash")
	}
}

func TestComputeHashesIgnoresVisibilityAndName(t *testing.T) {
	g1, g2 := buildJoinDoc(), buildJoinDoc()
	g2.MustLookup("base").Hidden = true
	g2.MustLookup("tool").Name = "renamed"

	if err := ComputeHashes(g1); err != nil {
		t.Fatal(err)
	}
	if err := ComputeHashes(g2); err != nil {
		t.Fatal(err)
	}
	if g1.MustLookup("Connect").ContentHash != g2.MustLookup("Connect").ContentHash {
		t.Error("visibility and names must not change content hashes")
	}
}

func TestComputeHashesJoinParameters(t *testing.T) {
	g1, g2 := buildJoinDoc(), buildJoinDoc()
	jn := g2.MustLookup("Connect")
	jd := jn.Data.(JoinData)
	jd.Refine = true
	jd.Mode = join.Embed
	jn.Data = jd

	if err := ComputeHashes(g1); err != nil {
		t.Fatal(err)
	}
	if err := ComputeHashes(g2); err != nil {
		t.Fatal(err)
	}
	if g1.MustLookup("Connect").ContentHash == g2.MustLookup("Connect").ContentHash {
		t.Error("join parameters must change the hash")
	}
}

func TestComputeHashesCycle(t *testing.T) {
	g := New()
	a, b := NewNodeID("a"), NewNodeID("b")
	g.AddNode(&Node{ID: a, Kind: NodeGroup, Children: []NodeID{b}, Data: GroupData{}})
	g.AddNode(&Node{ID: b, Kind: NodeGroup, Children: []NodeID{a}, Data: GroupData{}})
	if err := ComputeHashes(g); err == nil {
		t.Error("expected cycle error")
	}
}

func TestComputeHashesDangling(t *testing.T) {
	g := New()
	g.AddNode(&Node{ID: NewNodeID("a"), Kind: NodeGroup, Children: []NodeID{NewNodeID("gone")}, Data: GroupData{}})
	if err := ComputeHashes(g); err == nil {
		t.Error("expected dangling reference error")
	}
}
