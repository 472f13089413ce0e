package boundary

import (
	"slices"
)

// Table maps OSM ids to city boundaries and groups ids that were unioned into
// clusters. The zero value is not usable; call NewTable.
type Table struct {
	parent map[uint64]uint64
	values map[uint64][]Boundary
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{
		parent: make(map[uint64]uint64),
		values: make(map[uint64][]Boundary),
	}
}

func (t *Table) add(id uint64) {
	if _, ok := t.parent[id]; !ok {
		t.parent[id] = id
	}
}

// root resolves the cluster root of id without modifying the table, so
// readers may share a Table once it is built.
func (t *Table) root(id uint64) uint64 {
	for t.parent[id] != id {
		id = t.parent[id]
	}
	return id
}

// find is root with path compression. Only mutating methods call it.
func (t *Table) find(id uint64) uint64 {
	root := t.root(id)
	for id != root {
		next := t.parent[id]
		t.parent[id] = root
		id = next
	}
	return root
}

// Append adds b to the boundaries of id.
func (t *Table) Append(id uint64, b Boundary) {
	t.add(id)
	t.values[id] = append(t.values[id], b)
}

// Union puts a and b into the same cluster. Unknown ids are added without
// boundaries.
func (t *Table) Union(a, b uint64) {
	t.add(a)
	t.add(b)
	ra, rb := t.find(a), t.find(b)
	if ra == rb {
		return
	}
	// Keep the smaller id as root so cluster order is stable.
	if rb < ra {
		ra, rb = rb, ra
	}
	t.parent[rb] = ra
}

// Len returns the number of ids in the table.
func (t *Table) Len() int {
	return len(t.parent)
}

// Boundaries returns the boundaries appended for id alone.
func (t *Table) Boundaries(id uint64) []Boundary {
	return t.values[id]
}

// ForEachCluster calls fn once per cluster, in ascending order of each
// cluster's smallest id. ids are sorted; bs concatenates the boundaries of
// those ids in that order, preserving append order per id. It only reads the
// table and is safe for concurrent use.
func (t *Table) ForEachCluster(fn func(ids []uint64, bs []Boundary)) {
	clusters := make(map[uint64][]uint64)
	for id := range t.parent {
		root := t.root(id)
		clusters[root] = append(clusters[root], id)
	}

	roots := make([]uint64, 0, len(clusters))
	for root := range clusters {
		roots = append(roots, root)
	}
	slices.Sort(roots)

	for _, root := range roots {
		ids := clusters[root]
		slices.Sort(ids)
		var bs []Boundary
		for _, id := range ids {
			bs = append(bs, t.values[id]...)
		}
		fn(ids, bs)
	}
}

// Flatten concatenates the boundaries of every cluster.
func Flatten(t *Table) []Boundary {
	var out []Boundary
	t.ForEachCluster(func(_ []uint64, bs []Boundary) {
		out = append(out, bs...)
	})
	return out
}
