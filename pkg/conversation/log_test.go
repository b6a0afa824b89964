package conversation_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/lifeboat/pkg/conversation"
)

var _ = Describe("MemoryLog", func() {
	var log conversation.Log

	user := func(text string) conversation.Turn {
		return conversation.Turn{Role: conversation.RoleUser, Content: text}
	}
	assistant := func(text string) conversation.Turn {
		return conversation.Turn{Role: conversation.RoleAssistant, Content: text}
	}

	BeforeEach(func() {
		log = conversation.NewMemoryLog()
	})

	It("starts empty", func() {
		Expect(log.Len()).To(Equal(0))
		Expect(log.All()).To(BeEmpty())
	})

	Describe("Append", func() {
		It("preserves every prior turn in append order", func() {
			for _, text := range []string{"a", "b", "c"} {
				_, err := log.Append(user(text))
				Expect(err).NotTo(HaveOccurred())
			}

			turns := log.All()
			Expect(turns).To(HaveLen(3))
			Expect(turns[0].Content).To(Equal("a"))
			Expect(turns[1].Content).To(Equal("b"))
			Expect(turns[2].Content).To(Equal("c"))
		})

		It("returns the stored turn with hash and timestamp", func() {
			stored, err := log.Append(user("Hello"))
			Expect(err).NotTo(HaveOccurred())

			Expect(stored.Hash).To(HaveLen(64))
			Expect(stored.ParentHash).To(BeNil())
			Expect(stored.CreatedAt).NotTo(BeZero())
		})

		It("links each turn to the one before it", func() {
			first, _ := log.Append(user("Hello"))
			second, _ := log.Append(assistant("Hi there!"))

			Expect(second.ParentHash).NotTo(BeNil())
			Expect(*second.ParentHash).To(Equal(first.Hash))
			Expect(conversation.Verify(log.All())).To(Succeed())
		})
	})

	Describe("All", func() {
		It("returns a copy that cannot alter the log", func() {
			log.Append(user("original"))

			turns := log.All()
			turns[0].Content = "tampered"

			Expect(log.All()[0].Content).To(Equal("original"))
		})

		It("reflects appends made after a previous read", func() {
			before := log.All()
			log.Append(user("later"))

			Expect(before).To(BeEmpty())
			Expect(log.All()).To(HaveLen(1))
		})
	})

	Describe("Clear", func() {
		It("empties the log regardless of prior content", func() {
			log.Append(user("q"))
			log.Append(assistant("a"))

			log.Clear()
			Expect(log.Len()).To(Equal(0))
			Expect(log.All()).To(BeEmpty())
		})

		It("starts a new chain for later turns", func() {
			log.Append(user("q"))
			log.Clear()

			stored, _ := log.Append(user("fresh"))
			Expect(stored.ParentHash).To(BeNil())
			Expect(conversation.Verify(log.All())).To(Succeed())
		})
	})

	Describe("Verify", func() {
		It("detects an edited turn", func() {
			log.Append(user("q"))
			log.Append(assistant("a"))

			turns := log.All()
			turns[1].Content = "edited"
			Expect(conversation.Verify(turns)).NotTo(Succeed())
		})
	})

	Describe("Payload", func() {
		It("carries the fallback marker to the wire shape", func() {
			stored, _ := log.Append(conversation.Turn{
				Role:     conversation.RoleAssistant,
				Content:  "⚠️ Backend not running!",
				Fallback: true,
			})

			p := stored.Payload()
			Expect(p.Role).To(Equal("assistant"))
			Expect(p.Fallback).To(BeTrue())
			Expect(p.Hash).To(Equal(stored.Hash))
		})
	})
})
