// api/model/tree.go
package model

import (
	"strconv"
	"strings"
)

// TreeNode entry types, in display rank order: a node sorts before its own
// asset children.
const (
	TreeEntryNode  = "node"
	TreeEntryAsset = "asset"
)

// TreeNode is one record of a flattened node+asset display sequence. Key is
// always the owning node's ancestry key; asset entries carry ParentID
// pointing back at that node.
type TreeNode struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	Key          string           `json:"key"`
	Type         string           `json:"type"`
	ParentID     string           `json:"parent_id,omitempty"`
	AssetsAmount int              `json:"assets_amount,omitempty"`
	Accounts     []GrantedAccount `json:"accounts_granted,omitempty"`
}

func treeTypeRank(t string) int {
	if t == TreeEntryAsset {
		return 1
	}
	return 0
}

// CompareNodeKeys orders colon-delimited ancestry keys segment by segment,
// numerically where both segments are integers, with a shorter prefix
// sorting before its descendants.
func CompareNodeKeys(a, b string) int {
	as := strings.Split(a, ":")
	bs := strings.Split(b, ":")
	for i := 0; i < len(as) && i < len(bs); i++ {
		if as[i] == bs[i] {
			continue
		}
		ai, aerr := strconv.Atoi(as[i])
		bi, berr := strconv.Atoi(bs[i])
		if aerr == nil && berr == nil {
			if ai < bi {
				return -1
			}
			return 1
		}
		if as[i] < bs[i] {
			return -1
		}
		return 1
	}
	return len(as) - len(bs)
}

// CompareTreeNodes is the display ordering for flattened sequences:
// (owning node ancestry path, type rank, name, id). It keeps every node
// immediately followed by its own assets, in name order, before any sibling
// node appears.
func CompareTreeNodes(a, b TreeNode) int {
	if c := CompareNodeKeys(a.Key, b.Key); c != 0 {
		return c
	}
	if r := treeTypeRank(a.Type) - treeTypeRank(b.Type); r != 0 {
		return r
	}
	if a.Name != b.Name {
		if a.Name < b.Name {
			return -1
		}
		return 1
	}
	if a.ID != b.ID {
		if a.ID < b.ID {
			return -1
		}
		return 1
	}
	return 0
}
