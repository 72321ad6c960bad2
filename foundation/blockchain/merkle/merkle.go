// Copyright 2017 Cameron Bergoon
// https://github.com/cbergoon/merkletree
// Licensed under the MIT License, see LICENCE file for details.
// This code has been cleaned up, refactored, turned into generics and changed
// to follow the Bitcoin transaction tree convention.

// Package merkle provides an implementation of a merkle tree for validation
// support for the blockchain. Parent nodes are built the way Bitcoin builds
// its transaction tree: both children are byte reversed, concatenated, double
// hashed and the result is reversed again. This allows published block
// merkle roots to be reproduced bit for bit.
package merkle

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"hash"

	"github.com/ardanlabs/powledger/foundation/blockchain/hashing"
)

// ErrNoContent is returned when a tree is requested over an empty set
// of values.
var ErrNoContent = errors.New("cannot construct tree with no content")

// ErrNotFound is returned when the requested value is not a leaf of the tree.
var ErrNotFound = errors.New("unable to find data in tree")

// Hashable represents the behavior concrete data must exhibit to be used in
// the merkle tree. The hash returned is used as the leaf value as is.
type Hashable[T any] interface {
	Hash() ([]byte, error)
	Equals(other T) bool
}

// =============================================================================

// Tree represents a merkle tree that uses data of some type T that exhibits the
// behavior defined by the Hashable constraint.
type Tree[T Hashable[T]] struct {
	Root         *Node[T]
	Leafs        []*Node[T]
	MerkleRoot   []byte
	hashStrategy func() hash.Hash
}

// WithHashStrategy is used to change the default hash strategy of using sha256
// when constructing a new tree.
func WithHashStrategy[T Hashable[T]](hashStrategy func() hash.Hash) func(t *Tree[T]) {
	return func(t *Tree[T]) {
		t.hashStrategy = hashStrategy
	}
}

// NewTree constructs a new merkle tree that uses data of some type T that
// exhibits the behavior defined by the Hashable interface.
func NewTree[T Hashable[T]](values []T, options ...func(t *Tree[T])) (*Tree[T], error) {
	t := Tree[T]{
		hashStrategy: sha256.New,
	}

	for _, option := range options {
		option(&t)
	}

	if err := t.Generate(values); err != nil {
		return nil, err
	}

	return &t, nil
}

// Generate constructs the leafs and nodes of the tree from the specified
// data. If the tree has been generated previously, the tree is re-generated
// from scratch.
func (t *Tree[T]) Generate(values []T) error {
	if len(values) == 0 {
		return ErrNoContent
	}

	leafs := make([]*Node[T], 0, len(values)+1)
	for _, value := range values {
		hash, err := value.Hash()
		if err != nil {
			return err
		}

		leafs = append(leafs, &Node[T]{
			Hash:  hash,
			Value: value,
			leaf:  true,
			Tree:  t,
		})
	}

	// A single value is its own root. No hashing takes place.
	if len(leafs) == 1 {
		t.Root = leafs[0]
		t.Leafs = leafs
		t.MerkleRoot = leafs[0].Hash
		return nil
	}

	root, err := buildIntermediate(leafs, t)
	if err != nil {
		return err
	}

	t.Root = root
	t.Leafs = leafs
	t.MerkleRoot = root.Hash

	return nil
}

// Proof returns the set of hashes and the order of concatenating those
// hashes for proving a value is in the tree. An order of 0 means the proof
// hash is the left child, 1 means it is the right child.
//
// Given the hash of the value and the proof, the root is recomputed like this.
//
//	hash = leafHash
//	for i := range proof {
//		if order[i] == 0 {
//			hash = pair(proof[i], hash)
//		} else {
//			hash = pair(hash, proof[i])
//		}
//	}
//
// The calculated hash should match the merkle root.
func (t *Tree[T]) Proof(data T) ([][]byte, []int64, error) {
	for _, node := range t.Leafs {
		if !node.Value.Equals(data) {
			continue
		}

		var merkleProof [][]byte
		var order []int64
		nodeParent := node.Parent

		for nodeParent != nil {
			if nodeParent.Left == node {
				merkleProof = append(merkleProof, nodeParent.Right.Hash)
				order = append(order, 1) // right leaf, concat second.
			} else {
				merkleProof = append(merkleProof, nodeParent.Left.Hash)
				order = append(order, 0) // left leaf, concat first.
			}
			node = nodeParent
			nodeParent = nodeParent.Parent
		}

		return merkleProof, order, nil
	}

	return nil, nil, ErrNotFound
}

// Verify recalculates the hashes at each level of the tree and checks the
// resulting hash against the stored merkle root.
func (t *Tree[T]) Verify() error {
	calculatedMerkleRoot, err := t.Root.verify()
	if err != nil {
		return err
	}

	if !bytes.Equal(t.MerkleRoot, calculatedMerkleRoot) {
		return errors.New("root hash invalid")
	}

	return nil
}

// Values returns the values stored in the tree in insertion order.
func (t *Tree[T]) Values() []T {
	values := make([]T, len(t.Leafs))
	for i, node := range t.Leafs {
		values[i] = node.Value
	}

	return values
}

// RootHex converts the merkle root byte hash to a hex encoded string.
func (t *Tree[T]) RootHex() string {
	return hashing.EncodeHex(t.MerkleRoot)
}

// pair produces the parent hash for the two child hashes.
func (t *Tree[T]) pair(left []byte, right []byte) ([]byte, error) {
	return pair(t.hashStrategy, left, right)
}

// =============================================================================

// Node represents a node, root, or leaf in the tree. It stores pointers to its
// immediate relationships, a hash, the data if it is a leaf, and other metadata.
type Node[T Hashable[T]] struct {
	Tree   *Tree[T]
	Parent *Node[T]
	Left   *Node[T]
	Right  *Node[T]
	Hash   []byte
	Value  T
	leaf   bool
	dup    bool
}

// verify walks down the tree until hitting a leaf, calculating the hash at
// each level and returning the resulting hash of the node.
func (n *Node[T]) verify() ([]byte, error) {
	if n.leaf {
		return n.Value.Hash()
	}

	leftBytes, err := n.Left.verify()
	if err != nil {
		return nil, err
	}

	rightBytes, err := n.Right.verify()
	if err != nil {
		return nil, err
	}

	return n.Tree.pair(leftBytes, rightBytes)
}

// String returns a string representation of the node.
func (n *Node[T]) String() string {
	return fmt.Sprintf("%t %t %x %v", n.leaf, n.dup, n.Hash, n.Value)
}

// =============================================================================

// buildIntermediate is a helper function that for a given list of nodes,
// constructs the next level of the tree. When a level holds an odd number of
// nodes, the last node is duplicated so every node has a partner. Returns the
// resulting root node of the tree.
func buildIntermediate[T Hashable[T]](nl []*Node[T], t *Tree[T]) (*Node[T], error) {
	if len(nl)%2 == 1 {
		last := nl[len(nl)-1]
		nl = append(nl, &Node[T]{
			Tree:  t,
			Left:  last.Left,
			Right: last.Right,
			Hash:  last.Hash,
			Value: last.Value,
			leaf:  last.leaf,
			dup:   true,
		})
	}

	nodes := make([]*Node[T], 0, len(nl)/2)
	for i := 0; i < len(nl); i += 2 {
		hash, err := t.pair(nl[i].Hash, nl[i+1].Hash)
		if err != nil {
			return nil, err
		}

		n := Node[T]{
			Left:  nl[i],
			Right: nl[i+1],
			Hash:  hash,
			Tree:  t,
		}

		nodes = append(nodes, &n)
		nl[i].Parent = &n
		nl[i+1].Parent = &n
	}

	if len(nodes) == 1 {
		return nodes[0], nil
	}

	return buildIntermediate(nodes, t)
}

// pair reverses both child hashes, concatenates them, double hashes the
// result and reverses the final hash. Copies are used so the children keep
// their original byte order.
func pair(hashStrategy func() hash.Hash, left []byte, right []byte) ([]byte, error) {
	data := make([]byte, 0, len(left)+len(right))
	data = append(data, hashing.Reverse(left)...)
	data = append(data, hashing.Reverse(right)...)

	h := hashStrategy()
	if _, err := h.Write(data); err != nil {
		return nil, err
	}
	first := h.Sum(nil)

	h = hashStrategy()
	if _, err := h.Write(first); err != nil {
		return nil, err
	}

	return hashing.Reverse(h.Sum(nil)), nil
}
