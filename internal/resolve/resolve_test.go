package resolve_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/skaphos/pinkeeper/internal/model"
	"github.com/skaphos/pinkeeper/internal/resolve"
)

var _ = Describe("ResolveBranch", func() {
	It("fails with orphaned revision on an empty list", func() {
		_, err := resolve.ResolveBranch(nil)
		Expect(err).To(MatchError(resolve.ErrOrphanedRevision))
	})

	It("takes the first listed branch", func() {
		branch, err := resolve.ResolveBranch([]string{"origin/release", "origin/main"})
		Expect(err).NotTo(HaveOccurred())
		Expect(branch).To(Equal("origin/release"))
	})

	It("substitutes the default-branch alias target", func() {
		branch, err := resolve.ResolveBranch([]string{"origin/HEAD -> origin/master", "origin/master"})
		Expect(err).NotTo(HaveOccurred())
		Expect(branch).To(Equal("origin/master"))
	})

	It("only rewrites the first entry", func() {
		branch, err := resolve.ResolveBranch([]string{"origin/dev", "origin/HEAD -> origin/main"})
		Expect(err).NotTo(HaveOccurred())
		Expect(branch).To(Equal("origin/dev"))
	})
})

var _ = Describe("Advancer", func() {
	var (
		ctx   context.Context
		query *fakeQuery
		adv   *resolve.Advancer
	)

	BeforeEach(func() {
		ctx = context.Background()
		query = &fakeQuery{
			branches:  map[string][]string{},
			latest:    map[string]string{},
			ancestors: map[string]bool{},
		}
		adv = &resolve.Advancer{Query: query}
	})

	It("always advances HEAD-tracking records", func() {
		rec := model.RepoRecord{Name: "o/r", Version: model.HeadVersion, WatchedPaths: []string{"a"}}
		query.latest["origin/main a"] = "abc1234"

		out, err := adv.Advance(ctx, "/ws", rec, "origin/main")
		Expect(err).NotTo(HaveOccurred())
		Expect(out.Kind).To(Equal(model.OutcomeAdvanced))
		Expect(out.Old).To(Equal(model.HeadVersion))
		Expect(out.Record.Version).To(Equal("abc1234"))
		Expect(query.calls).NotTo(ContainElement(HavePrefix("ancestor")))
	})

	It("keeps the pin when the candidate equals it", func() {
		rec := model.RepoRecord{Name: "o/r", Version: "abc1234", WatchedPaths: []string{"a"}}
		query.latest["origin/main a"] = "abc1234"

		out, err := adv.Advance(ctx, "/ws", rec, "origin/main")
		Expect(err).NotTo(HaveOccurred())
		Expect(out.Kind).To(Equal(model.OutcomeUnchanged))
		Expect(out.Record).To(Equal(rec))
		Expect(query.calls).NotTo(ContainElement(HavePrefix("ancestor")))
	})

	It("never regresses to an ancestor of the current pin", func() {
		rec := model.RepoRecord{Name: "o/r", Version: "newer00", WatchedPaths: []string{"a"}}
		query.latest["origin/main a"] = "older00"
		query.ancestors["older00..newer00"] = true

		out, err := adv.Advance(ctx, "/ws", rec, "origin/main")
		Expect(err).NotTo(HaveOccurred())
		Expect(out.Kind).To(Equal(model.OutcomeUnchanged))
		Expect(out.Record.Version).To(Equal("newer00"))
		Expect(query.calls).To(ContainElement("ancestor older00 newer00"))
	})

	It("advances when the candidate is not an ancestor", func() {
		rec := model.RepoRecord{Name: "o/r", Version: "old0000", WatchedPaths: []string{"a", "b"}}
		query.latest["origin/main a,b"] = "new0000"

		out, err := adv.Advance(ctx, "/ws", rec, "origin/main")
		Expect(err).NotTo(HaveOccurred())
		Expect(out.Kind).To(Equal(model.OutcomeAdvanced))
		Expect(out.Old).To(Equal("old0000"))
		Expect(out.New).To(Equal("new0000"))
		Expect(out.Record.WatchedPaths).To(Equal([]string{"a", "b"}))
		Expect(rec.Version).To(Equal("old0000"))
	})

	It("resolves branch then advances", func() {
		rec := model.RepoRecord{Name: "o/r", Version: "old0000", WatchedPaths: []string{"a"}}
		query.branches["old0000"] = []string{"origin/HEAD -> origin/main", "origin/main"}
		query.latest["origin/main a"] = "new0000"

		out, err := adv.Resolve(ctx, "/ws", rec)
		Expect(err).NotTo(HaveOccurred())
		Expect(out.Branch).To(Equal("origin/main"))
		Expect(out.Kind).To(Equal(model.OutcomeAdvanced))
		Expect(query.calls).To(Equal([]string{
			"branches old0000",
			"log origin/main a",
			"ancestor new0000 old0000",
		}))
	})

	It("reports orphaned revisions with the repository name", func() {
		rec := model.RepoRecord{Name: "o/orphan", Version: "dead000"}
		_, err := adv.Resolve(ctx, "/ws", rec)
		Expect(err).To(MatchError(resolve.ErrOrphanedRevision))
		Expect(err.Error()).To(Equal("orphaned commit o/orphan"))
	})

	It("propagates log failures", func() {
		rec := model.RepoRecord{Name: "o/r", Version: "abc", WatchedPaths: []string{"missing"}}
		_, err := adv.Advance(ctx, "/ws", rec, "origin/main")
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(HavePrefix("o/r: "))
	})
})
