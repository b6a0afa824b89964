package merkle_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/lifeboat/pkg/merkle"
)

var _ = Describe("Chain", func() {
	var chain *merkle.Chain

	BeforeEach(func() {
		chain = &merkle.Chain{}
	})

	Describe("Hash", func() {
		It("produces a valid SHA-256 hex string (64 characters)", func() {
			hash, err := merkle.Hash("test", "")
			Expect(err).NotTo(HaveOccurred())

			Expect(hash).To(HaveLen(64))
			Expect(hash).To(MatchRegexp("^[a-f0-9]{64}$"))
		})

		It("produces consistent hashes for the same content and parent", func() {
			h1, _ := merkle.Hash("same content", "p")
			h2, _ := merkle.Hash("same content", "p")

			Expect(h1).To(Equal(h2))
		})

		It("produces different hashes for same content with different parents", func() {
			h1, _ := merkle.Hash("same content", "")
			h2, _ := merkle.Hash("same content", "p")

			Expect(h1).NotTo(Equal(h2))
		})

		It("fails on content that cannot be encoded", func() {
			_, err := merkle.Hash(make(chan int), "")
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Append", func() {
		Context("when the chain is empty", func() {
			It("creates a root link", func() {
				l, err := chain.Append("hello")
				Expect(err).NotTo(HaveOccurred())

				Expect(l.ParentHash).To(BeNil())
				Expect(l.Content).To(Equal("hello"))
				Expect(chain.Head()).To(Equal(l.Hash))
			})
		})

		Context("when the chain has links", func() {
			It("links each new entry to the previous head", func() {
				l1, _ := chain.Append("one")
				l2, _ := chain.Append("two")
				l3, _ := chain.Append("three")

				Expect(*l2.ParentHash).To(Equal(l1.Hash))
				Expect(*l3.ParentHash).To(Equal(l2.Hash))
				Expect(chain.Head()).To(Equal(l3.Hash))
			})
		})

		It("starts a fresh root after Reset", func() {
			first, _ := chain.Append("one")
			chain.Append("two")

			chain.Reset()
			Expect(chain.Head()).To(BeEmpty())

			again, _ := chain.Append("one")
			Expect(again.ParentHash).To(BeNil())
			Expect(again.Hash).To(Equal(first.Hash))
		})
	})

	Describe("Verify", func() {
		It("accepts an empty chain", func() {
			Expect(merkle.Verify(nil)).To(Succeed())
		})

		It("accepts links produced by Append", func() {
			l1, _ := chain.Append(map[string]string{"role": "user", "content": "Hello"})
			l2, _ := chain.Append(map[string]string{"role": "assistant", "content": "Hi"})

			Expect(merkle.Verify([]merkle.Link{l1, l2})).To(Succeed())
		})

		It("rejects reordered links", func() {
			l1, _ := chain.Append("one")
			l2, _ := chain.Append("two")

			err := merkle.Verify([]merkle.Link{l2, l1})
			Expect(err).To(MatchError(ContainSubstring("link 0")))
		})

		It("rejects altered content", func() {
			l1, _ := chain.Append("one")
			l2, _ := chain.Append("two")
			l2.Content = "changed"

			err := merkle.Verify([]merkle.Link{l1, l2})
			Expect(err).To(Equal(merkle.ErrBroken{Index: 1, Reason: "hash does not match content"}))
		})
	})
})
