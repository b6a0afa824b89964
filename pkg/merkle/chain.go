// Package merkle chains content-addressed links so that an append-only
// sequence can be checked for reordering or tampering after the fact.
package merkle

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
)

// Link is a single content-addressed entry in a hash chain.
type Link struct {
	// Hash is the content-addressed identifier (SHA-256, hex-encoded)
	Hash string `json:"hash"`

	// ParentHash is the hash of the previous link, nil for the first link.
	ParentHash *string `json:"parent_hash"`

	// Content is the hashable content for the link
	Content any `json:"content"`
}

type input struct {
	Content any    `json:"content"`
	Parent  string `json:"parent,omitempty"`
}

// Hash computes the content address of content linked after parent.
// Pass an empty parent for the first link of a chain.
func Hash(content any, parent string) (string, error) {
	// Canonical JSON encoding for deterministic hashing
	data, err := json.Marshal(input{Content: content, Parent: parent})
	if err != nil {
		return "", fmt.Errorf("marshal hash input: %w", err)
	}

	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:]), nil
}

// Chain tracks the head of an append-only hash chain. The zero value is an
// empty chain. Chain is not safe for concurrent use.
type Chain struct {
	head string
}

// Head returns the hash of the last link, or "" for an empty chain.
func (c *Chain) Head() string {
	return c.head
}

// Append hashes content onto the chain and advances the head.
func (c *Chain) Append(content any) (Link, error) {
	hash, err := Hash(content, c.head)
	if err != nil {
		return Link{}, err
	}

	l := Link{Hash: hash, Content: content}
	if c.head != "" {
		parent := c.head
		l.ParentHash = &parent
	}

	c.head = hash
	return l, nil
}

// Reset empties the chain. The next appended link becomes a root.
func (c *Chain) Reset() {
	c.head = ""
}

// Verify checks that links form an unbroken chain starting at a root, with
// every hash matching its content and parent.
func Verify(links []Link) error {
	prev := ""
	for i, l := range links {
		switch {
		case i == 0 && l.ParentHash != nil:
			return ErrBroken{Index: i, Reason: "first link has a parent"}
		case i > 0 && (l.ParentHash == nil || *l.ParentHash != prev):
			return ErrBroken{Index: i, Reason: "parent does not match previous link"}
		}

		want, err := Hash(l.Content, prev)
		if err != nil {
			return err
		}
		if want != l.Hash {
			return ErrBroken{Index: i, Reason: "hash does not match content"}
		}
		prev = l.Hash
	}

	return nil
}

// ErrBroken is returned by Verify when a chain does not check out.
type ErrBroken struct {
	Index  int
	Reason string
}

func (e ErrBroken) Error() string {
	return "chain broken at link " + strconv.Itoa(e.Index) + ": " + e.Reason
}
