// Package merkle 实现参与者资格证明所用的 Merkle 树。
//
// 约定 (commit 侧与 verify 侧必须一致):
//   - 叶子哈希 = Keccak256(参与者地址的 20 字节)
//   - 父节点 = Keccak256(min(a,b) || max(a,b))，即有序对哈希，
//     验证时无需携带左右方向信息
//   - 层内节点数为奇数时，最后一个节点原样晋级到上一层
//   - 深度为零的树 (单叶子) 的根即叶子本身，对应空证明
package merkle

import (
	"bytes"
	"errors"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

var (
	ErrEmptyLeafSet = errors.New("empty leaf set")
	ErrLeafNotFound = errors.New("leaf not found in tree")
)

// LeafHash 计算参与者地址的叶子哈希
func LeafHash(addr common.Address) common.Hash {
	return crypto.Keccak256Hash(addr.Bytes())
}

// hashPair 按字节升序拼接两个节点后取 Keccak256
func hashPair(a, b common.Hash) common.Hash {
	if bytes.Compare(a.Bytes(), b.Bytes()) > 0 {
		a, b = b, a
	}
	return crypto.Keccak256Hash(a.Bytes(), b.Bytes())
}

// ComputeRoot 由叶子和证明路径自底向上重建根
func ComputeRoot(leaf common.Hash, proof []common.Hash) common.Hash {
	node := leaf
	for _, sibling := range proof {
		node = hashPair(node, sibling)
	}
	return node
}

// Tree 有序对 Keccak256 Merkle 树，commit 侧构建根与证明
type Tree struct {
	// levels[0] 是叶子层，levels[len-1] 只含根
	levels [][]common.Hash
	// index 叶子哈希到叶子下标的映射
	index map[common.Hash]int
}

// NewTree 基于参与者地址集构建 Merkle 树
func NewTree(addrs []common.Address) (*Tree, error) {
	if len(addrs) == 0 {
		return nil, ErrEmptyLeafSet
	}

	leaves := make([]common.Hash, len(addrs))
	index := make(map[common.Hash]int, len(addrs))
	for i, addr := range addrs {
		leaves[i] = LeafHash(addr)
		index[leaves[i]] = i
	}

	levels := [][]common.Hash{leaves}
	for current := leaves; len(current) > 1; {
		next := make([]common.Hash, 0, (len(current)+1)/2)
		for i := 0; i < len(current); i += 2 {
			if i+1 < len(current) {
				next = append(next, hashPair(current[i], current[i+1]))
			} else {
				next = append(next, current[i])
			}
		}
		levels = append(levels, next)
		current = next
	}

	return &Tree{levels: levels, index: index}, nil
}

// Root 返回树根
func (t *Tree) Root() common.Hash {
	top := t.levels[len(t.levels)-1]
	return top[0]
}

// ProofFor 返回地址的包含性证明，自底向上的兄弟节点序列
func (t *Tree) ProofFor(addr common.Address) ([]common.Hash, error) {
	pos, ok := t.index[LeafHash(addr)]
	if !ok {
		return nil, ErrLeafNotFound
	}

	proof := make([]common.Hash, 0, len(t.levels)-1)
	for _, level := range t.levels[:len(t.levels)-1] {
		var sibling int
		if pos%2 == 0 {
			sibling = pos + 1
		} else {
			sibling = pos - 1
		}
		if sibling < len(level) {
			proof = append(proof, level[sibling])
		}
		pos /= 2
	}
	return proof, nil
}
